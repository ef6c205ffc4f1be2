package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-rag/internal/models"
)

func reconstruct(t *testing.T, chunks []models.Chunk) string {
	t.Helper()
	var sb strings.Builder
	prevEnd := 0
	for i, chunk := range chunks {
		if i == 0 {
			sb.WriteString(chunk.Content)
		} else {
			shared := prevEnd - chunk.Start
			require.GreaterOrEqual(t, shared, 0, "chunks must not leave gaps")
			require.Less(t, shared, len(chunk.Content), "chunk must add new content")
			sb.WriteString(chunk.Content[shared:])
		}
		prevEnd = chunk.End()
	}
	return sb.String()
}

func TestChunkReconstructsDocument(t *testing.T) {
	texts := []string{
		"Short document.",
		strings.Repeat("A paragraph of text that goes on.\n\n", 80),
		strings.Repeat("word ", 2000),
		strings.Repeat("x", 5000), // no boundaries at all
	}
	for _, text := range texts {
		pages := []models.Page{{Number: 1, Text: text}}
		chunks := New(1000, 200).Chunk(pages)
		require.NotEmpty(t, chunks)
		assert.Equal(t, JoinPages(pages), reconstruct(t, chunks))
	}
}

func TestChunkSizesAndOverlap(t *testing.T) {
	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 200)
	chunks := New(1000, 200).Chunk([]models.Page{{Number: 1, Text: text}})
	require.Greater(t, len(chunks), 1)

	for i, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk.Content), 1000)
		assert.Equal(t, i, chunk.Seq)
		if i > 0 {
			shared := chunks[i-1].End() - chunk.Start
			assert.LessOrEqual(t, shared, 200)
			assert.Greater(t, shared, 0)
		}
	}
}

func TestChunkFivePageDocumentYieldsSixChunks(t *testing.T) {
	// ~4500 characters across 5 pages, word boundary every 10. With
	// size 1000 / overlap 200 the window advances 800 at a time:
	// ceil((4500-200)/800)+1 = 6.
	pageText := strings.Repeat("abcdefghi ", 90) // 900 chars per page
	var pages []models.Page
	for i := 1; i <= 5; i++ {
		pages = append(pages, models.Page{Number: i, Text: pageText})
	}

	chunks := New(1000, 200).Chunk(pages)
	assert.Len(t, chunks, 6)
	assert.Equal(t, JoinPages(pages), reconstruct(t, chunks))
}

func TestChunkShortDocumentYieldsOneChunk(t *testing.T) {
	pages := []models.Page{{Number: 1, Text: "A document shorter than the chunk size."}}
	chunks := New(1000, 200).Chunk(pages)
	require.Len(t, chunks, 1)
	assert.Equal(t, pages[0].Text, chunks[0].Content)
	assert.Equal(t, 1, chunks[0].Page)
	assert.Equal(t, 0, chunks[0].Seq)
}

func TestChunkEmptyDocumentYieldsNothing(t *testing.T) {
	assert.Empty(t, New(1000, 200).Chunk(nil))
	assert.Empty(t, New(1000, 200).Chunk([]models.Page{{Number: 1, Text: "   "}}))
	assert.Empty(t, New(1000, 200).Chunk([]models.Page{{Number: 1}, {Number: 2}}))
}

func TestChunkPrefersParagraphBoundary(t *testing.T) {
	text := strings.Repeat("some words here. ", 55) + "\n\n" + strings.Repeat("more words after the break. ", 50)
	chunks := New(1000, 200).Chunk([]models.Page{{Number: 1, Text: text}})
	require.Greater(t, len(chunks), 1)
	// the first boundary falls in the lookback window, so the cut lands on it
	assert.True(t, strings.HasSuffix(chunks[0].Content, "\n\n"))
}

func TestChunkPageAttribution(t *testing.T) {
	pages := []models.Page{
		{Number: 1, Text: strings.Repeat("first page words here now. ", 40)},  // >1000 chars
		{Number: 2, Text: strings.Repeat("second page words here now. ", 40)},
	}
	chunks := New(1000, 200).Chunk(pages)
	require.Greater(t, len(chunks), 1)
	assert.Equal(t, 1, chunks[0].Page)
	assert.Equal(t, 2, chunks[len(chunks)-1].Page)
	for i := 1; i < len(chunks); i++ {
		assert.GreaterOrEqual(t, chunks[i].Page, chunks[i-1].Page)
	}
}

func TestNewGuardsDegenerateSettings(t *testing.T) {
	chunks := New(-1, -5).Chunk([]models.Page{{Number: 1, Text: "hello world"}})
	require.Len(t, chunks, 1)

	// overlap >= size must still make forward progress
	chunks = New(10, 10).Chunk([]models.Page{{Number: 1, Text: strings.Repeat("abc ", 20)}})
	require.NotEmpty(t, chunks)
	assert.Equal(t, "abc", strings.TrimSpace(chunks[0].Content)[:3])
}
