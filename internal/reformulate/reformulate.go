package reformulate

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"pdf-rag/internal/models"
)

// Reformulator rewrites a history-dependent question into a standalone one.
// The rewrite-or-pass-through behavior is a contract on the model's prompt,
// not a local transformation; the model is instructed never to answer.
type Reformulator struct {
	llm models.ChatModel
}

func New(llm models.ChatModel) *Reformulator {
	return &Reformulator{llm: llm}
}

// Standalone returns a question understandable without the chat history.
// With empty history the question is already standalone, so the model is
// not invoked at all.
func (r *Reformulator) Standalone(ctx context.Context, history []models.ChatTurn, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("%w: empty question", models.ErrInvalidInput)
	}
	if len(history) == 0 {
		return question, nil
	}

	standalone, err := r.llm.Complete(ctx, models.ReformulatePrompt, history, question)
	if err != nil {
		return "", models.NewReformulationError(err)
	}
	if strings.TrimSpace(standalone) == "" {
		return "", models.NewReformulationError(fmt.Errorf("model returned an empty reformulation"))
	}

	log.Debug().Str("question", question).Str("standalone", standalone).Msg("Reformulated question")
	return standalone, nil
}
