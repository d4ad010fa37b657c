package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quireio/quire/core"
)

func newTestChunker(t *testing.T, opts ...Option) *Chunker {
	t.Helper()
	c, err := New(opts...)
	require.NoError(t, err)
	return c
}

func TestNew_InvalidOptions(t *testing.T) {
	_, err := New(WithChunkSize(0))
	assert.ErrorIs(t, err, ErrInvalidChunkSize)

	_, err = New(WithChunkOverlap(-1))
	assert.ErrorIs(t, err, ErrInvalidChunkOverlap)
}

func TestSplit_MinLengthFilter(t *testing.T) {
	c := newTestChunker(t)

	units := []core.SourceUnit{
		{Content: "short", Page: 0},
		{Content: "This sentence is comfortably longer than the thirty character minimum.", Page: 1},
	}

	chunks := c.Split(units, "hash1")
	require.Len(t, chunks, 1)
	assert.Equal(t, 1, chunks[0].Page)
	assert.Equal(t, "hash1", chunks[0].FileHash)
}

func TestSplit_DeduplicatesExactContent(t *testing.T) {
	c := newTestChunker(t)

	content := "Identical content appearing on two different pages of the file."
	units := []core.SourceUnit{
		{Content: content, Page: 0},
		{Content: content, Page: 1},
	}

	chunks := c.Split(units, "hash1")
	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Page)
}

func TestSplit_HeaderMetadata(t *testing.T) {
	c := newTestChunker(t)

	text := "# Report\n\nOpening remarks that are long enough to survive filtering.\n\n" +
		"## Findings\n\nDetailed findings that are also long enough to be kept here."

	chunks := c.Split([]core.SourceUnit{{Content: text, Page: 0}}, "hash1")
	require.Len(t, chunks, 2)

	assert.Equal(t, "Report", chunks[0].Metadata[core.MetaHeaderPath])
	assert.Equal(t, "Report > Findings", chunks[1].Metadata[core.MetaHeaderPath])

	// Headers stay in the chunk content.
	assert.True(t, strings.HasPrefix(chunks[0].Content, "# Report"))
	assert.True(t, strings.HasPrefix(chunks[1].Content, "## Findings"))
}

func TestSplit_HeaderStackResets(t *testing.T) {
	c := newTestChunker(t)

	text := "# One\n\n## Sub\n\nNested section content that is long enough to keep.\n\n" +
		"# Two\n\nSecond top section content that is long enough to keep."

	chunks := c.Split([]core.SourceUnit{{Content: text, Page: 0}}, "hash1")
	require.Len(t, chunks, 2)

	assert.Equal(t, "One > Sub", chunks[0].Metadata[core.MetaHeaderPath])
	assert.Equal(t, "Two", chunks[1].Metadata[core.MetaHeaderPath])
}

func TestSplit_MergesUnitMetadata(t *testing.T) {
	c := newTestChunker(t)

	unit := core.SourceUnit{
		Content: "# Section\n\nBody text that clears the minimum length requirement.",
		Page:    3,
		Source:  "report.pdf",
		Metadata: map[string]string{
			core.MetaIsOCR: "true",
			core.MetaTitle: "Annual Report",
		},
	}

	chunks := c.Split([]core.SourceUnit{unit}, "hash1")
	require.Len(t, chunks, 1)

	assert.Equal(t, "true", chunks[0].Metadata[core.MetaIsOCR])
	assert.Equal(t, "Annual Report", chunks[0].Metadata[core.MetaTitle])
	assert.Equal(t, "report.pdf", chunks[0].Metadata[core.MetaSource])
	assert.Equal(t, 3, chunks[0].Page)
}

func TestSplit_LargeUnitProducesOverlappingChunks(t *testing.T) {
	c := newTestChunker(t, WithChunkSize(200), WithChunkOverlap(40))

	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("Sentence number with some padding words to build length. ")
	}

	chunks := c.Split([]core.SourceUnit{{Content: b.String(), Page: 0}}, "hash1")
	assert.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk.Content), 200+40)
	}
}

func TestSplit_EmptyUnitSkipped(t *testing.T) {
	c := newTestChunker(t)

	chunks := c.Split([]core.SourceUnit{{Content: "   \n\n  ", Page: 0}}, "hash1")
	assert.Empty(t, chunks)
}

func TestLightNormalize(t *testing.T) {
	assert.Equal(t, "a b", lightNormalize("a \t  b"))
	assert.Equal(t, "a\n\nb", lightNormalize("a\n\n\n\n\nb"))
	assert.Equal(t, "kept\nnewline", lightNormalize("kept\nnewline"))
	assert.Equal(t, "", lightNormalize("  \n "))
}
