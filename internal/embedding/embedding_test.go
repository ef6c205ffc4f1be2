package embedding

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-rag/internal/models"
)

type fakeInner struct {
	vectors [][]float32
	err     error
	calls   int
}

func (f *fakeInner) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.vectors) < len(texts) {
		return f.vectors, nil
	}
	return f.vectors[:len(texts)], nil
}

func (f *fakeInner) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vectors[0], nil
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func TestEmbedManyNormalizesVectors(t *testing.T) {
	inner := &fakeInner{vectors: [][]float32{{3, 4}, {0, 5}}}
	adapter := NewAdapter(inner)

	vectors, err := adapter.EmbedMany(context.Background(), []string{"one", "two"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	for _, v := range vectors {
		assert.InDelta(t, 1.0, norm(v), 1e-6)
	}
	assert.InDelta(t, 0.6, float64(vectors[0][0]), 1e-6)
	assert.InDelta(t, 0.8, float64(vectors[0][1]), 1e-6)
}

func TestEmbedOneNormalizes(t *testing.T) {
	adapter := NewAdapter(&fakeInner{vectors: [][]float32{{0, 0, 2}}})
	v, err := adapter.EmbedOne(context.Background(), "query")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, norm(v), 1e-6)
}

func TestEmbedRejectsEmptyInput(t *testing.T) {
	adapter := NewAdapter(&fakeInner{vectors: [][]float32{{1}}})
	ctx := context.Background()

	_, err := adapter.EmbedMany(ctx, nil)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = adapter.EmbedMany(ctx, []string{"ok", "  "})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = adapter.EmbedOne(ctx, "")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestEmbedValidationShortCircuitsRemoteCall(t *testing.T) {
	inner := &fakeInner{vectors: [][]float32{{1}}}
	adapter := NewAdapter(inner)

	_, _ = adapter.EmbedMany(context.Background(), []string{""})
	_, _ = adapter.EmbedOne(context.Background(), "   ")
	assert.Zero(t, inner.calls)
}

func TestEmbedWrapsServiceFailure(t *testing.T) {
	cause := errors.New("connection refused")
	adapter := NewAdapter(&fakeInner{err: cause})
	ctx := context.Background()

	_, err := adapter.EmbedMany(ctx, []string{"text"})
	var eerr *models.EmbeddingError
	require.ErrorAs(t, err, &eerr)
	assert.ErrorIs(t, err, cause)

	_, err = adapter.EmbedOne(ctx, "text")
	require.ErrorAs(t, err, &eerr)
	assert.ErrorIs(t, err, cause)
}

func TestEmbedManyDetectsCountMismatch(t *testing.T) {
	adapter := NewAdapter(&fakeInner{vectors: [][]float32{{1, 0}}})
	_, err := adapter.EmbedMany(context.Background(), []string{"one", "two"})
	var eerr *models.EmbeddingError
	assert.ErrorAs(t, err, &eerr)
}
