package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/quireio/quire/core"
	"github.com/quireio/quire/markdown"
)

// HTMLLoader extracts visible text from an HTML document as a single unit.
// Script, style, and noscript subtrees are dropped; the document title, when
// present, is carried as metadata.
type HTMLLoader struct{}

func (l *HTMLLoader) Load(ctx context.Context, path string) ([]core.SourceUnit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open html: %w", err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	doc.Find("script, style, noscript").Remove()

	body := doc.Find("body")
	var text string
	if body.Length() > 0 {
		text = body.Text()
	} else {
		text = doc.Text()
	}
	text = markdown.Normalize(text)

	meta := map[string]string{}
	if title != "" {
		meta[core.MetaTitle] = title
	}

	return []core.SourceUnit{{
		Content:    text,
		Page:       0,
		TotalPages: 1,
		Source:     filepath.Base(path),
		Metadata:   meta,
	}}, nil
}
