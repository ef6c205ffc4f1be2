package rag

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"pdf-rag/internal/chunker"
	"pdf-rag/internal/composer"
	"pdf-rag/internal/models"
	"pdf-rag/internal/reformulate"
)

// State is the session lifecycle position.
type State int

const (
	StateEmpty State = iota
	StateProcessing
	StateReady
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateProcessing:
		return "processing"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Session owns one active vector index (or none) and one chat history, and
// wires the ingestion and query pipelines. All dependencies are injected at
// construction; there is no ambient global lookup. A mutex serializes calls
// since the CLI REPL and signal handling may overlap.
type Session struct {
	mu      sync.Mutex
	state   State
	index   models.Index
	history []models.ChatTurn

	loader       models.Loader
	splitter     *chunker.Chunker
	embedder     models.Embedder
	builder      models.IndexBuilder
	reformulator *reformulate.Reformulator
	composer     *composer.Composer
	topK         int
}

func NewSession(loader models.Loader, splitter *chunker.Chunker, embedder models.Embedder, builder models.IndexBuilder, llm models.ChatModel, topK int) *Session {
	if topK <= 0 {
		topK = 3
	}
	return &Session{
		state:        StateEmpty,
		loader:       loader,
		splitter:     splitter,
		embedder:     embedder,
		builder:      builder,
		reformulator: reformulate.New(llm),
		composer:     composer.New(llm),
		topK:         topK,
	}
}

// Ingest runs document -> pages -> chunks -> embeddings -> index. The new
// index is built before the old one is discarded, so a failed replacement
// leaves the session answering questions about the previous document.
// On success the prior index and the chat history are discarded entirely.
func (s *Session) Ingest(ctx context.Context, filePath string) (*models.IngestResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state
	s.state = StateProcessing

	result, newIndex, err := s.buildIndex(ctx, filePath)
	if err != nil {
		s.state = prev
		return nil, err
	}

	if s.index != nil {
		if cerr := s.index.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("Failed to release previous index")
		}
	}
	s.index = newIndex
	s.history = nil
	s.state = StateReady

	log.Info().Str("file", filePath).Int("pages", result.Pages).Int("chunks", result.Chunks).Msg("Document indexed")
	return result, nil
}

func (s *Session) buildIndex(ctx context.Context, filePath string) (*models.IngestResult, models.Index, error) {
	pages, err := s.loader.Load(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read document: %w", err)
	}

	chunks := s.splitter.Chunk(pages)
	if len(chunks) == 0 {
		return nil, nil, fmt.Errorf("%w: document contains no extractable text", models.ErrInvalidInput)
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}
	vectors, err := s.embedder.EmbedMany(ctx, texts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to embed document: %w", err)
	}

	index, err := s.builder.Build(ctx, chunks, vectors)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build index: %w", err)
	}

	return &models.IngestResult{Pages: len(pages), Chunks: len(chunks)}, index, nil
}

// Ask answers a question about the indexed document. Reformulation failures
// degrade to the raw question; embedding, search and composition failures
// abort the call and leave history untouched.
func (s *Session) Ask(ctx context.Context, question string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady {
		return "", fmt.Errorf("%w: upload and process a document first", models.ErrNotReady)
	}

	standalone, err := s.reformulator.Standalone(ctx, s.historyView(), question)
	if err != nil {
		var rerr *models.ReformulationError
		if !errors.As(err, &rerr) {
			return "", err
		}
		log.Warn().Err(err).Msg("Reformulation failed, falling back to the raw question")
		standalone = question
	}

	vector, err := s.embedder.EmbedOne(ctx, standalone)
	if err != nil {
		return "", fmt.Errorf("failed to embed question: %w", err)
	}

	retrieved, err := s.index.Search(ctx, vector, s.topK)
	if err != nil {
		return "", fmt.Errorf("retrieval failed: %w", err)
	}

	answer, err := s.composer.Answer(ctx, standalone, retrieved, s.historyView())
	if err != nil {
		return "", fmt.Errorf("failed to compose answer: %w", err)
	}

	s.history = append(s.history,
		models.ChatTurn{Role: models.RoleUser, Content: question},
		models.ChatTurn{Role: models.RoleAssistant, Content: answer},
	)
	return answer, nil
}

// Reset discards the index and the chat history, returning to EMPTY.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index != nil {
		if err := s.index.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to release index")
		}
		s.index = nil
	}
	s.history = nil
	s.state = StateEmpty
}

// State reports the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// History returns a copy of the conversation so far.
func (s *Session) History() []models.ChatTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.historyView()
}

// historyView hands components a copy; the session alone appends.
func (s *Session) historyView() []models.ChatTurn {
	view := make([]models.ChatTurn, len(s.history))
	copy(view, s.history)
	return view
}
