package composer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-rag/internal/models"
)

type fakeChat struct {
	reply       string
	err         error
	lastSystem  string
	lastHistory []models.ChatTurn
	lastUser    string
}

func (f *fakeChat) Complete(_ context.Context, system string, history []models.ChatTurn, user string) (string, error) {
	f.lastSystem = system
	f.lastHistory = history
	f.lastUser = user
	return f.reply, f.err
}

func retrieved() []models.ScoredChunk {
	return []models.ScoredChunk{
		{Chunk: models.Chunk{Content: "Sourdough starters need regular feeding.", Seq: 0}, Score: 0.9},
		{Chunk: models.Chunk{Content: "Bread rises best in a warm kitchen.", Seq: 1}, Score: 0.7},
	}
}

func TestAnswerStuffsContextIntoSystemPrompt(t *testing.T) {
	chat := &fakeChat{reply: "Feed the starter regularly and keep the kitchen warm."}
	c := New(chat)

	answer, err := c.Answer(context.Background(), "How do I care for a starter?", retrieved(), nil)
	require.NoError(t, err)
	assert.Equal(t, chat.reply, answer)

	assert.Contains(t, chat.lastSystem, "Sourdough starters need regular feeding.")
	assert.Contains(t, chat.lastSystem, "Bread rises best in a warm kitchen.")
	assert.Contains(t, chat.lastSystem, models.OutOfContext)
	assert.Equal(t, "How do I care for a starter?", chat.lastUser)
}

func TestAnswerPassesHistoryToModel(t *testing.T) {
	history := []models.ChatTurn{
		{Role: models.RoleUser, Content: "earlier question"},
		{Role: models.RoleAssistant, Content: "earlier answer"},
	}
	chat := &fakeChat{reply: "ok"}
	c := New(chat)

	_, err := c.Answer(context.Background(), "next question", retrieved(), history)
	require.NoError(t, err)
	assert.Equal(t, history, chat.lastHistory)
}

func TestAnswerReturnsSentinelVerbatim(t *testing.T) {
	chat := &fakeChat{reply: models.OutOfContext}
	c := New(chat)

	answer, err := c.Answer(context.Background(), "What's the weather today?", retrieved(), nil)
	require.NoError(t, err)
	assert.Equal(t, models.OutOfContext, answer)
}

func TestAnswerWrapsModelFailure(t *testing.T) {
	cause := errors.New("rate limited")
	c := New(&fakeChat{err: cause})

	_, err := c.Answer(context.Background(), "question", retrieved(), nil)
	var cerr *models.CompositionError
	require.ErrorAs(t, err, &cerr)
	assert.ErrorIs(t, err, cause)
}

func TestAnswerRejectsEmptyQuestion(t *testing.T) {
	c := New(&fakeChat{})
	_, err := c.Answer(context.Background(), strings.Repeat(" ", 3), retrieved(), nil)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}
