package retrieval

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quireio/quire/ai/mock"
	"github.com/quireio/quire/core"
	badgerstore "github.com/quireio/quire/storage/badger"
	"github.com/quireio/quire/vectorstore"
)

func newTestRetriever(t *testing.T, contents []string, opts ...Option) *Retriever {
	t.Helper()
	chunks, _, _, backend, err := badgerstore.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	store, err := vectorstore.NewStore(chunks, mock.NewMockEmbedder())
	require.NoError(t, err)

	toInsert := make([]*core.Chunk, len(contents))
	for i, content := range contents {
		toInsert[i] = &core.Chunk{Content: content, FileHash: "hash1", Page: i}
	}
	_, err = store.Upsert(context.Background(), toInsert)
	require.NoError(t, err)

	retriever, err := NewRetriever(store, opts...)
	require.NoError(t, err)
	return retriever
}

func manyContents(n int) []string {
	contents := make([]string, n)
	for i := range contents {
		contents[i] = fmt.Sprintf("document number %d about various topics", i)
	}
	return contents
}

func TestNewRetrieverValidation(t *testing.T) {
	_, err := NewRetriever(nil)
	assert.ErrorIs(t, err, ErrStoreRequired)

	retriever := newTestRetriever(t, []string{"a"})
	_, err = retriever.Retrieve(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestOptionValidation(t *testing.T) {
	chunks, _, _, backend, err := badgerstore.NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()
	store, err := vectorstore.NewStore(chunks, mock.NewMockEmbedder())
	require.NoError(t, err)

	cases := []struct {
		name string
		opt  Option
	}{
		{"zero k", WithK(0)},
		{"negative fetchK", WithFetchK(-1)},
		{"unknown search type", WithSearchType("cosine")},
		{"keepK above rerankK", WithRerank(5, 10)},
		{"zero rerankK", WithRerank(0, 0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRetriever(store, tc.opt)
			assert.ErrorIs(t, err, ErrInvalidParameter)
		})
	}
}

func TestRerankCapsResultCount(t *testing.T) {
	retriever := newTestRetriever(t, manyContents(30),
		WithScoreThreshold(-1),
		WithRerank(20, 5))

	results, err := retriever.Retrieve(context.Background(), "document number 3 about various topics")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(results), 5)
	assert.NotEmpty(t, results)
}

func TestResultsOrderedByScore(t *testing.T) {
	retriever := newTestRetriever(t, manyContents(15), WithScoreThreshold(-1))

	results, err := retriever.Retrieve(context.Background(), "document number 7 about various topics")
	require.NoError(t, err)
	require.NotEmpty(t, results)

	// Exact content match ranks first with similarity 1.0.
	assert.Equal(t, "document number 7 about various topics", results[0].Chunk.Content)
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i].Score, results[i-1].Score)
	}
}

func TestScoreThresholdFilters(t *testing.T) {
	retriever := newTestRetriever(t, manyContents(10), WithScoreThreshold(0.999))

	results, err := retriever.Retrieve(context.Background(), "document number 2 about various topics")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "document number 2 about various topics", results[0].Chunk.Content)
}

func TestWithoutRerankReturnsK(t *testing.T) {
	retriever := newTestRetriever(t, manyContents(30),
		WithScoreThreshold(-1),
		WithoutRerank(),
		WithK(3))

	results, err := retriever.Retrieve(context.Background(), "document number 1 about various topics")
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestMMRSearchType(t *testing.T) {
	retriever := newTestRetriever(t, manyContents(12),
		WithSearchType(SearchMMR),
		WithK(4),
		WithFetchK(10))

	results, err := retriever.Retrieve(context.Background(), "document number 5 about various topics")
	require.NoError(t, err)
	require.Len(t, results, 4)

	// Most relevant candidate always survives MMR selection.
	assert.Equal(t, "document number 5 about various topics", results[0].Chunk.Content)

	seen := map[core.ID]bool{}
	for _, result := range results {
		assert.False(t, seen[result.Chunk.Id])
		seen[result.Chunk.Id] = true
	}
}
