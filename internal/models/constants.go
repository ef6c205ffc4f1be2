package models

// OutOfContext is the exact answer returned when the question cannot be
// answered from the indexed document. The composer prompt instructs the
// model to reply with this string and nothing else.
const OutOfContext = "Out of context"

// ReformulatePrompt instructs the model to rewrite a history-dependent
// question into a standalone one, or pass it through unchanged. It must
// never answer the question.
const ReformulatePrompt = `Given a chat history and the latest user question which might reference context in the chat history, formulate a standalone question which can be understood without the chat history. Do NOT answer the question, just reformulate it if needed and otherwise return it as is.`

// AnswerPromptTemplate is the composer system prompt; the retrieved context
// is stuffed into the %s placeholder.
const AnswerPromptTemplate = `You are a helpful AI assistant answering questions only based on the provided document. IMPORTANT: Keep all responses short and concise - maximum 3 sentences. Provide only the most essential information as a clear overview. Give direct, brief answers that summarize the key points from the document. If the user asks about anything unrelated to this PDF, respond ONLY with: 'Out of context'
Context: %s`
