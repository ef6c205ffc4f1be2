package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"pdf-rag/internal/config"
	"pdf-rag/internal/helper"
	"pdf-rag/internal/models"
)

// vectorSize is the pgvector column width; the embedding model must produce
// vectors of exactly this dimension when the postgres store is selected.
const vectorSize = 768

// ChunkRow is one indexed chunk. Each index build gets its own table, so a
// replacement document can be indexed fully before the old table is dropped.
type ChunkRow struct {
	bun.BaseModel `bun:"table:chunks,alias:c"`
	ID            int64           `bun:"id,pk,autoincrement"`
	Content       string          `bun:"content,notnull"`
	Page          int             `bun:"page,notnull"`
	Seq           int             `bun:"seq,notnull"`
	Embedding     pgvector.Vector `bun:"embedding,notnull,type:vector(768)"`
}

// Connect opens a bun handle on the configured Postgres instance.
func Connect(cfg *config.StoreConfig) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(cfg.DSN),
		pgdriver.WithPassword(cfg.Password),
	))
	bunDB := bun.NewDB(sqldb, pgdialect.New())
	if cfg.Debug {
		bunDB.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return bunDB
}

// Builder creates pgvector-backed indexes.
type Builder struct {
	db *bun.DB
}

func NewBuilder(db *bun.DB) *Builder {
	return &Builder{db: db}
}

// Build stores the (vector, chunk) pairs in a fresh per-build table.
func (b *Builder) Build(ctx context.Context, chunks []models.Chunk, vectors [][]float32) (models.Index, error) {
	if len(chunks) == 0 {
		return nil, models.NewIndexBuildError("no chunks to index", nil)
	}
	if len(chunks) != len(vectors) {
		return nil, models.NewIndexBuildError(
			fmt.Sprintf("%d chunks but %d vectors", len(chunks), len(vectors)), nil)
	}
	for i, v := range vectors {
		if len(v) != vectorSize {
			return nil, models.NewIndexBuildError(
				fmt.Sprintf("vector %d has dimension %d, store requires %d", i, len(v), vectorSize), nil)
		}
	}

	name, err := helper.GenerateUUID()
	if err != nil {
		return nil, models.NewIndexBuildError("failed to name index table", err)
	}
	table := "chunks_" + strings.ReplaceAll(name, "-", "")[:12]

	if _, err := b.db.NewCreateTable().
		Model((*ChunkRow)(nil)).
		ModelTableExpr(table).
		Exec(ctx); err != nil {
		return nil, models.NewIndexBuildError("failed to create index table", err)
	}

	rows := make([]ChunkRow, len(chunks))
	for i, chunk := range chunks {
		rows[i] = ChunkRow{
			Content:   chunk.Content,
			Page:      chunk.Page,
			Seq:       chunk.Seq,
			Embedding: pgvector.NewVector(vectors[i]),
		}
	}
	if _, err := b.db.NewInsert().
		Model(&rows).
		ModelTableExpr(table).
		Exec(ctx); err != nil {
		_, _ = b.db.NewDropTable().Model((*ChunkRow)(nil)).ModelTableExpr(table).IfExists().Exec(ctx)
		return nil, models.NewIndexBuildError("failed to store chunks", err)
	}

	log.Debug().Str("table", table).Int("entries", len(rows)).Msg("Built pgvector index")
	return &Index{db: b.db, table: table, size: len(chunks)}, nil
}

// Index is an immutable pgvector-backed index over one ingested document.
type Index struct {
	db    *bun.DB
	table string
	size  int
}

type searchRow struct {
	Content  string  `bun:"content"`
	Page     int     `bun:"page"`
	Seq      int     `bun:"seq"`
	Distance float32 `bun:"distance"`
}

// Search returns up to k chunks by ascending cosine distance, ties broken by
// original chunk order. Scores are reported as cosine similarity.
func (ix *Index) Search(ctx context.Context, vector []float32, k int) ([]models.ScoredChunk, error) {
	if k <= 0 {
		k = 3
	}
	if k > ix.size {
		k = ix.size
	}

	var rows []searchRow
	err := ix.db.NewSelect().
		TableExpr(ix.table+" AS c").
		Column("content", "page", "seq").
		ColumnExpr("(embedding <=> ?) AS distance", pgvector.NewVector(vector)).
		OrderExpr("distance ASC, seq ASC").
		Limit(k).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("similarity query failed: %w", err)
	}

	scored := make([]models.ScoredChunk, 0, len(rows))
	for _, row := range rows {
		scored = append(scored, models.ScoredChunk{
			Chunk: models.Chunk{Content: row.Content, Page: row.Page, Seq: row.Seq},
			Score: 1 - row.Distance,
		})
	}
	return scored, nil
}

func (ix *Index) Len() int { return ix.size }

// Close drops the backing table.
func (ix *Index) Close() error {
	_, err := ix.db.NewDropTable().
		Model((*ChunkRow)(nil)).
		ModelTableExpr(ix.table).
		IfExists().
		Exec(context.Background())
	return err
}
