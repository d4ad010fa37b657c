package reembed

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quireio/quire/ai/mock"
	"github.com/quireio/quire/core"
	badgerstore "github.com/quireio/quire/storage/badger"
)

func TestRetryWithBackoffSucceedsAfterFailures(t *testing.T) {
	var attempts int
	err := RetryWithBackoff(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	}, 5, time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithBackoffExhaustsAttempts(t *testing.T) {
	sentinel := errors.New("permanent")
	var attempts int
	err := RetryWithBackoff(context.Background(), func() error {
		attempts++
		return sentinel
	}, 3, time.Millisecond)

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithBackoffInvalidAttempts(t *testing.T) {
	err := RetryWithBackoff(context.Background(), func() error { return nil }, 0, time.Millisecond)
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
}

func TestRetryWithBackoffCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error { return errors.New("never reached") }, 3, time.Millisecond)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNormalizeVector(t *testing.T) {
	normalized := NormalizeVector([]float32{3, 4})
	assert.InDelta(t, 0.6, float64(normalized[0]), 1e-6)
	assert.InDelta(t, 0.8, float64(normalized[1]), 1e-6)

	var magnitude float64
	for _, v := range normalized {
		magnitude += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(magnitude), 1e-6)

	zero := NormalizeVector([]float32{0, 0, 0})
	assert.Equal(t, []float32{0, 0, 0}, zero)

	assert.Empty(t, NormalizeVector(nil))
}

func seedChunks(t *testing.T, n int) (*badgerstore.Backend, *Reembedder, *mock.MockEmbedder, func() int) {
	t.Helper()
	chunks, documents, _, backend, err := badgerstore.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	ctx := context.Background()
	require.NoError(t, documents.CreateDocument(ctx, &core.DocumentRecord{
		FileHash: "hash1",
		Filename: "seed.txt",
	}))

	toAdd := make([]*core.Chunk, n)
	for i := range toAdd {
		toAdd[i] = &core.Chunk{
			Content:  string(rune('a'+i%26)) + " chunk content",
			FileHash: "hash1",
			Page:     i,
			Vector:   []float32{1, 0},
		}
	}
	_, err = chunks.AddChunks(ctx, toAdd...)
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	config := &Config{BatchSize: 4, ReportInterval: 4, MaxRetries: 2, RetryDelay: time.Millisecond}
	reembedder := NewReembedder(chunks, documents, embedder, config, &bytes.Buffer{})

	countFn := func() int {
		count, err := chunks.Count(ctx)
		require.NoError(t, err)
		return count
	}
	return backend, reembedder, embedder, countFn
}

func TestReembedderRun(t *testing.T) {
	_, reembedder, embedder, count := seedChunks(t, 10)

	require.NoError(t, reembedder.Run(context.Background()))

	// ceil(10/4) batches, no chunks added or lost.
	assert.Len(t, embedder.BatchSizes(), 3)
	assert.Equal(t, 10, count())
}

func TestReembedderRewritesVectors(t *testing.T) {
	chunks, documents, _, backend, err := badgerstore.NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	require.NoError(t, documents.CreateDocument(ctx, &core.DocumentRecord{
		FileHash: "hash1",
		Filename: "seed.txt",
	}))
	added, err := chunks.AddChunks(ctx, &core.Chunk{
		Content:  "chunk to reembed",
		FileHash: "hash1",
		Vector:   []float32{1, 0, 0},
	})
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i := range vectors {
			vectors[i] = []float32{0, 2, 0}
		}
		return vectors, nil
	}

	reembedder := NewReembedder(chunks, documents, embedder, nil, &bytes.Buffer{})
	require.NoError(t, reembedder.Run(ctx))

	stored, err := chunks.GetChunks(ctx, added[0].Id)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	// Replaced in place and normalized to unit length.
	assert.Equal(t, []float32{0, 1, 0}, stored[0].Vector)
}

func TestReembedderRetriesTransientFailures(t *testing.T) {
	_, reembedder, embedder, _ := seedChunks(t, 4)

	var calls int
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("transient")
		}
		vectors := make([][]float32, len(texts))
		for i := range vectors {
			vectors[i] = []float32{1, 0}
		}
		return vectors, nil
	}

	require.NoError(t, reembedder.Run(context.Background()))
	assert.Equal(t, 2, calls)
}

func TestReembedderEmptyDatabase(t *testing.T) {
	chunks, documents, _, backend, err := badgerstore.NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	var buf bytes.Buffer
	reembedder := NewReembedder(chunks, documents, mock.NewMockEmbedder(), nil, &buf)
	require.NoError(t, reembedder.Run(context.Background()))
	assert.Contains(t, buf.String(), "No chunks found")
}
