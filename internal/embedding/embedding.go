package embedding

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"pdf-rag/internal/config"
	"pdf-rag/internal/models"
)

// Adapter implements models.Embedder on top of a langchaingo embedder.
// It validates inputs, L2-normalizes every returned vector and wraps
// transport failures, so downstream similarity is always a dot product
// and never sees a silent zero vector.
type Adapter struct {
	inner embeddings.Embedder
}

func NewAdapter(inner embeddings.Embedder) *Adapter {
	return &Adapter{inner: inner}
}

// NewEmbedder builds the adapter configured by cfg.Provider.
func NewEmbedder(cfg *config.LLMConfig) (*Adapter, error) {
	switch cfg.Provider {
	case "ollama":
		return NewOllamaEmbedder(cfg)
	case "openai":
		return NewOpenAIEmbedder(cfg)
	default:
		return nil, models.NewConfigError("embed_llm.provider", fmt.Sprintf("unknown provider %q", cfg.Provider))
	}
}

// NewOllamaEmbedder targets a local ollama server.
func NewOllamaEmbedder(cfg *config.LLMConfig) (*Adapter, error) {
	opts := []ollama.Option{ollama.WithModel(cfg.Model)}
	if cfg.BaseURL != "" {
		opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
	}
	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, err
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("model", cfg.Model).Str("base_url", cfg.BaseURL).Msg("Initialized ollama embedder")
	return NewAdapter(embedder), nil
}

// NewOpenAIEmbedder targets any openai-compatible embeddings endpoint.
func NewOpenAIEmbedder(cfg *config.LLMConfig) (*Adapter, error) {
	opts := []openai.Option{
		openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
		openai.WithModel(cfg.Model),
		openai.WithEmbeddingModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, err
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("model", cfg.Model).Str("base_url", cfg.BaseURL).Msg("Initialized openai embedder")
	return NewAdapter(embedder), nil
}

// EmbedMany embeds a batch of texts. Every text must be non-empty.
func (a *Adapter) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: no texts to embed", models.ErrInvalidInput)
	}
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			return nil, fmt.Errorf("%w: empty text at position %d", models.ErrInvalidInput, i)
		}
	}

	vectors, err := a.inner.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, models.NewEmbeddingError("batch embedding failed", err)
	}
	if len(vectors) != len(texts) {
		return nil, models.NewEmbeddingError(
			fmt.Sprintf("expected %d vectors, got %d", len(texts), len(vectors)), nil)
	}
	for i := range vectors {
		normalize(vectors[i])
	}
	return vectors, nil
}

// EmbedOne embeds a single non-empty text.
func (a *Adapter) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty text", models.ErrInvalidInput)
	}

	vector, err := a.inner.EmbedQuery(ctx, text)
	if err != nil {
		return nil, models.NewEmbeddingError("query embedding failed", err)
	}
	if len(vector) == 0 {
		return nil, models.NewEmbeddingError("service returned an empty vector", nil)
	}
	normalize(vector)
	return vector, nil
}

// normalize scales v to unit length in place. A zero vector is left alone.
func normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
}
