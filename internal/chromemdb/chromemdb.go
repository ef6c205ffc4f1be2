package chromemdb

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strconv"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"pdf-rag/internal/helper"
	"pdf-rag/internal/models"
)

const compress = false

// Builder creates chromem-go backed indexes. Every build gets its own
// scoped temporary directory for the persistent store; closing the index
// removes it. baseDir may be empty to use the system temp dir.
type Builder struct {
	baseDir string
}

func NewBuilder(baseDir string) *Builder {
	return &Builder{baseDir: baseDir}
}

// Build embeds nothing itself: it stores the precomputed (vector, chunk)
// pairs in a fresh collection. Chunks and vectors are matched by position.
func (b *Builder) Build(ctx context.Context, chunks []models.Chunk, vectors [][]float32) (models.Index, error) {
	if len(chunks) == 0 {
		return nil, models.NewIndexBuildError("no chunks to index", nil)
	}
	if len(chunks) != len(vectors) {
		return nil, models.NewIndexBuildError(
			fmt.Sprintf("%d chunks but %d vectors", len(chunks), len(vectors)), nil)
	}

	dir, err := os.MkdirTemp(b.baseDir, "pdf-rag-index-")
	if err != nil {
		return nil, models.NewIndexBuildError("failed to create index directory", err)
	}

	db, err := chromem.NewPersistentDB(dir, compress)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, models.NewIndexBuildError("failed to create database", err)
	}

	name, err := helper.GenerateUUID()
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, models.NewIndexBuildError("failed to name collection", err)
	}

	collection, err := db.GetOrCreateCollection("doc-"+name, nil, nil)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, models.NewIndexBuildError("failed to create collection", err)
	}

	docs := make([]chromem.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = chromem.Document{
			ID:      strconv.Itoa(chunk.Seq),
			Content: chunk.Content,
			Metadata: map[string]string{
				"page": strconv.Itoa(chunk.Page),
				"seq":  strconv.Itoa(chunk.Seq),
			},
			Embedding: vectors[i],
		}
	}
	if err := collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		_ = os.RemoveAll(dir)
		return nil, models.NewIndexBuildError("failed to add documents", err)
	}

	log.Debug().Str("dir", dir).Int("entries", len(docs)).Msg("Built vector index")

	bySeq := make(map[int]models.Chunk, len(chunks))
	for _, chunk := range chunks {
		bySeq[chunk.Seq] = chunk
	}
	return &Index{collection: collection, chunks: bySeq, size: len(chunks), dir: dir}, nil
}

// Index is an immutable chromem-go collection plus the chunks it holds.
type Index struct {
	collection *chromem.Collection
	chunks     map[int]models.Chunk
	size       int
	dir        string
}

// Search returns up to k chunks ordered by descending similarity, ties
// broken by original chunk order.
func (ix *Index) Search(ctx context.Context, vector []float32, k int) ([]models.ScoredChunk, error) {
	if k <= 0 {
		k = 3
	}
	if k > ix.size {
		k = ix.size
	}

	results, err := ix.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: vector,
		NResults:       k,
	})
	if err != nil {
		return nil, fmt.Errorf("similarity query failed: %w", err)
	}

	scored := make([]models.ScoredChunk, 0, len(results))
	for _, res := range results {
		seq, err := strconv.Atoi(res.ID)
		if err != nil {
			return nil, fmt.Errorf("unexpected document id %q: %w", res.ID, err)
		}
		scored = append(scored, models.ScoredChunk{Chunk: ix.chunks[seq], Score: res.Similarity})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Chunk.Seq < scored[j].Chunk.Seq
	})
	return scored, nil
}

func (ix *Index) Len() int { return ix.size }

// Close releases the scoped storage directory.
func (ix *Index) Close() error {
	return os.RemoveAll(ix.dir)
}
