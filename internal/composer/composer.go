package composer

import (
	"context"
	"fmt"
	"strings"

	"pdf-rag/internal/models"
)

// Composer produces an answer grounded in the retrieved chunks. Groundedness,
// the three-sentence cap and the out-of-context sentinel are enforced through
// the instruction contract given to the model; the composer does not verify
// them locally.
type Composer struct {
	llm models.ChatModel
}

func New(llm models.ChatModel) *Composer {
	return &Composer{llm: llm}
}

// Answer composes a reply to the standalone question from the retrieved
// context, with the chat history available for conversational tone.
func (c *Composer) Answer(ctx context.Context, question string, retrieved []models.ScoredChunk, history []models.ChatTurn) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("%w: empty question", models.ErrInvalidInput)
	}

	var contextText strings.Builder
	for _, sc := range retrieved {
		contextText.WriteString(sc.Chunk.Content)
		contextText.WriteString("\n\n")
	}

	system := fmt.Sprintf(models.AnswerPromptTemplate, contextText.String())
	answer, err := c.llm.Complete(ctx, system, history, question)
	if err != nil {
		return "", models.NewCompositionError(err)
	}
	return answer, nil
}
