package loader

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/quireio/quire/core"
	"github.com/quireio/quire/markdown"
)

// DOCXLoader reads the main document part of a .docx archive and walks its
// XML for text runs. Paragraph ends become newlines so the normalizer can
// rejoin soft wraps the usual way.
type DOCXLoader struct{}

func (l *DOCXLoader) Load(ctx context.Context, path string) ([]core.SourceUnit, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open docx archive: %w", err)
	}
	defer archive.Close()

	var document *zip.File
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			document = f
			break
		}
	}
	if document == nil {
		return nil, fmt.Errorf("docx archive has no word/document.xml")
	}

	rc, err := document.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open document part: %w", err)
	}
	defer rc.Close()

	text, err := extractDocumentText(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document xml: %w", err)
	}

	return []core.SourceUnit{{
		Content:    markdown.Normalize(text),
		Page:       0,
		TotalPages: 1,
		Source:     filepath.Base(path),
		Metadata:   map[string]string{},
	}}, nil
}

// extractDocumentText walks WordprocessingML and collects the character
// data of w:t elements, inserting newlines at paragraph boundaries and
// spaces for explicit tabs and breaks.
func extractDocumentText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var b strings.Builder
	inText := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab", "br":
				b.WriteByte(' ')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}

	return b.String(), nil
}
