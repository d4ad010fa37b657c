package mock

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEmbedderDeterministic(t *testing.T) {
	embedder := NewMockEmbedder()
	ctx := context.Background()

	a, err := embedder.EmbedText(ctx, "same input")
	require.NoError(t, err)
	b, err := embedder.EmbedText(ctx, "same input")
	require.NoError(t, err)
	c, err := embedder.EmbedText(ctx, "different input")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 16)
	assert.Equal(t, 3, embedder.CallCount())
}

func TestMockEmbedderBatch(t *testing.T) {
	embedder := NewMockEmbedder()

	vectors, err := embedder.EmbedTexts(context.Background(), []string{"one", "two", "three"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	assert.Equal(t, []int{3}, embedder.BatchSizes())
}

func TestMockGeneratorStream(t *testing.T) {
	gen := NewMockGenerator("The", " answer", " is", " 42")

	var got []string
	text, err := gen.StreamCompletion(context.Background(), "question", func(ctx context.Context, token string) error {
		got = append(got, token)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "The answer is 42", text)
	assert.Equal(t, []string{"The", " answer", " is", " 42"}, got)
}

func TestMockGeneratorFailMidStream(t *testing.T) {
	gen := NewMockGenerator("a", "b", "c", "d", "e", "f")
	gen.FailAfter = 5
	gen.Err = errors.New("provider gone")

	var count int
	text, err := gen.StreamCompletion(context.Background(), "q", func(ctx context.Context, token string) error {
		count++
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, 5, count)
	assert.Equal(t, "abcde", text)
}
