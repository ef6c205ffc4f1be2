package chunker

import (
	"strings"

	"pdf-rag/internal/models"
)

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 200
)

// Chunker splits a document into overlapping fixed-size chunks, preferring
// to break on paragraph, then sentence, then word boundaries. Chunks are
// exact substrings of the joined page text, so concatenating them minus the
// shared overlap reconstructs the document.
type Chunker struct {
	size    int
	overlap int
}

func New(size, overlap int) *Chunker {
	if size <= 0 {
		size = defaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 2
	}
	return &Chunker{size: size, overlap: overlap}
}

// JoinPages concatenates page texts with a newline separator. Chunk offsets
// refer to this joined text.
func JoinPages(pages []models.Page) string {
	texts := make([]string, len(pages))
	for i, p := range pages {
		texts[i] = p.Text
	}
	return strings.Join(texts, "\n")
}

// Chunk splits the pages into chunks. A document shorter than the chunk size
// yields exactly one chunk; an empty document yields none.
func (c *Chunker) Chunk(pages []models.Page) []models.Chunk {
	text := JoinPages(pages)
	if strings.TrimSpace(text) == "" {
		return nil
	}

	// page start offsets in the joined text, for chunk -> page attribution
	starts := make([]int, len(pages))
	offset := 0
	for i, p := range pages {
		starts[i] = offset
		offset += len(p.Text) + 1
	}

	var chunks []models.Chunk
	start := 0
	seq := 0
	for {
		end := start + c.size
		if end >= len(text) {
			end = len(text)
		} else {
			end = c.breakPoint(text, start, end)
		}
		chunks = append(chunks, models.Chunk{
			Content: text[start:end],
			Page:    pageAt(pages, starts, start),
			Seq:     seq,
			Start:   start,
		})
		if end == len(text) {
			break
		}
		next := end - c.overlap
		if next <= start {
			next = start + 1
		}
		start = next
		seq++
	}
	return chunks
}

// breakPoint moves end back to the nearest structural boundary within the
// lookback window: paragraph break first, then sentence end, then word end.
// Falls back to the hard cut when the window holds no boundary.
func (c *Chunker) breakPoint(text string, start, end int) int {
	lookBack := c.size / 10
	if lookBack > end-start-1 {
		lookBack = end - start - 1
	}
	window := text[end-lookBack : end]

	if i := strings.LastIndex(window, "\n\n"); i >= 0 {
		return end - lookBack + i + 2
	}
	for i := len(window) - 1; i > 0; i-- {
		if isSentenceEnd(window[i-1]) && isSpace(window[i]) {
			return end - lookBack + i + 1
		}
	}
	for i := len(window) - 1; i >= 0; i-- {
		if isSpace(window[i]) {
			return end - lookBack + i + 1
		}
	}
	return end
}

func isSentenceEnd(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t'
}

func pageAt(pages []models.Page, starts []int, offset int) int {
	page := 1
	for i, s := range starts {
		if s > offset {
			break
		}
		page = pages[i].Number
	}
	return page
}
