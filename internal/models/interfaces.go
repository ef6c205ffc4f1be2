package models

import "context"

// Loader extracts page texts from a document file.
type Loader interface {
	Load(path string) ([]Page, error)
}

// Embedder converts text into L2-normalized embedding vectors.
type Embedder interface {
	EmbedMany(ctx context.Context, texts []string) ([][]float32, error)
	EmbedOne(ctx context.Context, text string) ([]float32, error)
}

// ChatModel is a chat-completion service: system prompt, prior turns,
// current user message in, generated text out.
type ChatModel interface {
	Complete(ctx context.Context, system string, history []ChatTurn, user string) (string, error)
}

// Index supports nearest-neighbor search over the chunks it was built with.
// Implementations are immutable after build; Close releases any backing
// storage.
type Index interface {
	Search(ctx context.Context, vector []float32, k int) ([]ScoredChunk, error)
	Len() int
	Close() error
}

// IndexBuilder constructs a fresh Index from chunks and their embeddings.
// Each call produces an independent index; replacing a document means
// building a new one and closing the old.
type IndexBuilder interface {
	Build(ctx context.Context, chunks []Chunk, vectors [][]float32) (Index, error)
}
