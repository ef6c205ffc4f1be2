package models

// Page holds the extracted text of a single document page.
type Page struct {
	Number int
	Text   string
}

// Chunk is a bounded segment of document text with positional metadata.
// Start is the offset of the chunk in the joined document text; adjacent
// chunks share the configured overlap.
type Chunk struct {
	Content string
	Page    int
	Seq     int
	Start   int
}

// End returns the offset one past the last character of the chunk.
func (c Chunk) End() int {
	return c.Start + len(c.Content)
}

// ScoredChunk pairs a retrieved chunk with its cosine similarity score.
type ScoredChunk struct {
	Chunk Chunk
	Score float32
}

// Role identifies the author of a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatTurn is one message of the conversation history.
type ChatTurn struct {
	Role    Role
	Content string
}

// IngestResult reports what a successful ingestion produced.
type IngestResult struct {
	Pages  int
	Chunks int
}
