package loader

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quireio/quire/core"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(nil, nil)
	require.NoError(t, err)
	return r
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRegistry_Dispatch(t *testing.T) {
	r := newTestRegistry(t)

	tests := []struct {
		name      string
		path      string
		supported bool
	}{
		{name: "pdf", path: "doc.pdf", supported: true},
		{name: "docx", path: "doc.docx", supported: true},
		{name: "html", path: "page.html", supported: true},
		{name: "htm", path: "page.htm", supported: true},
		{name: "markdown", path: "notes.md", supported: true},
		{name: "markdown long", path: "notes.markdown", supported: true},
		{name: "plain text", path: "notes.txt", supported: true},
		{name: "csv", path: "table.csv", supported: true},
		{name: "uppercase extension", path: "DOC.PDF", supported: true},
		{name: "epub unsupported", path: "book.epub", supported: false},
		{name: "no extension", path: "README", supported: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := r.Dispatch(tt.path)
			if tt.supported {
				assert.NoError(t, err)
				assert.NotNil(t, l)
				assert.True(t, r.Supported(tt.path))
				return
			}
			assert.ErrorIs(t, err, core.ErrUnsupportedFormat)
			assert.False(t, r.Supported(tt.path))
		})
	}
}

func TestRegistry_LoadUnsupported(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Load(context.Background(), "archive.zip")
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)
}

func TestRegistry_LoadWrapsParserFailures(t *testing.T) {
	r := newTestRegistry(t)

	// Not a real zip archive, so the docx loader fails.
	path := writeFile(t, "broken.docx", "not a zip")

	_, err := r.Load(context.Background(), path)
	require.Error(t, err)

	var loadErr *core.LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "broken.docx", loadErr.Filename)
}

func TestTextLoader(t *testing.T) {
	r := newTestRegistry(t)
	path := writeFile(t, "notes.txt", "First line continues\nonto a second line. Done.")

	units, err := r.Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, units, 1)

	assert.Equal(t, 0, units[0].Page)
	assert.Equal(t, 1, units[0].TotalPages)
	assert.Equal(t, "notes.txt", units[0].Source)
	assert.Equal(t, "First line continues onto a second line. Done.", units[0].Content)
}

func TestCSVLoader(t *testing.T) {
	r := newTestRegistry(t)
	path := writeFile(t, "table.csv", "name,city\nAda,London\nGrace,Arlington\n")

	units, err := r.Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, units, 2)

	assert.Equal(t, "name: Ada\ncity: London", units[0].Content)
	assert.Equal(t, 0, units[0].Page)
	assert.Equal(t, "name: Grace\ncity: Arlington", units[1].Content)
	assert.Equal(t, 1, units[1].Page)
	assert.Equal(t, 2, units[1].TotalPages)
}

func TestHTMLLoader(t *testing.T) {
	r := newTestRegistry(t)
	html := `<html><head><title>Quarterly Report</title>
<script>var hidden = true;</script></head>
<body><p>Revenue grew this quarter.</p></body></html>`
	path := writeFile(t, "report.html", html)

	units, err := r.Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, units, 1)

	assert.Contains(t, units[0].Content, "Revenue grew this quarter.")
	assert.NotContains(t, units[0].Content, "hidden")
	assert.Equal(t, "Quarterly Report", units[0].Metadata[core.MetaTitle])
}

type stubEngine struct {
	text  string
	err   error
	calls int
}

func (e *stubEngine) Recognize(ctx context.Context, pdfPath string, page int) (string, error) {
	e.calls++
	return e.text, e.err
}

func TestPDFLoader_OCRFallback(t *testing.T) {
	t.Run("filler page gets recognized text and the ocr flag", func(t *testing.T) {
		engine := &stubEngine{text: "Scanned page text."}
		l := &PDFLoader{engine: engine, logger: slog.Default()}

		units, err := l.buildUnits(context.Background(), "scan.pdf",
			[]string{"Embedded text layer.", "-----"}, "", "")
		require.NoError(t, err)
		require.Len(t, units, 2)

		assert.Equal(t, "false", units[0].Metadata[core.MetaIsOCR])
		assert.Equal(t, "Embedded text layer.", units[0].Content)

		assert.Equal(t, "true", units[1].Metadata[core.MetaIsOCR])
		assert.Equal(t, "Scanned page text.", units[1].Content)
		assert.Equal(t, 1, engine.calls)
	})

	t.Run("page is still flagged when recognition fails", func(t *testing.T) {
		engine := &stubEngine{err: errors.New("tesseract exploded")}
		l := &PDFLoader{engine: engine, logger: slog.Default()}

		units, err := l.buildUnits(context.Background(), "scan.pdf",
			[]string{""}, "", "")
		require.NoError(t, err)
		require.Len(t, units, 1)

		assert.Equal(t, "true", units[0].Metadata[core.MetaIsOCR])
		assert.Empty(t, units[0].Content)
		assert.Equal(t, 1, engine.calls)
	})

	t.Run("page is still flagged without an engine", func(t *testing.T) {
		l := &PDFLoader{logger: slog.Default()}

		units, err := l.buildUnits(context.Background(), "scan.pdf",
			[]string{"  \n "}, "", "")
		require.NoError(t, err)
		require.Len(t, units, 1)

		assert.Equal(t, "true", units[0].Metadata[core.MetaIsOCR])
		assert.Empty(t, units[0].Content)
	})
}

func TestIsFillerPage(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{name: "empty", text: "", want: true},
		{name: "whitespace only", text: "  \n\t ", want: true},
		{name: "dashes only", text: "-----", want: true},
		{name: "dashes and whitespace", text: "  --- \n", want: true},
		{name: "real text", text: "actual content", want: false},
		{name: "text with dashes", text: "- a list item", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isFillerPage(tt.text))
		})
	}
}

func TestWithLoaderOption(t *testing.T) {
	_, err := NewRegistry(nil, nil, WithLoader("epub", &TextLoader{}))
	assert.Error(t, err)

	r, err := NewRegistry(nil, nil, WithLoader(".epub", &TextLoader{}))
	require.NoError(t, err)
	assert.True(t, r.Supported("book.epub"))
}
