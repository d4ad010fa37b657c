package loader

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/quireio/quire/core"
	"github.com/quireio/quire/markdown"
)

// TextLoader reads plain text and Markdown files as a single unit.
type TextLoader struct{}

func (l *TextLoader) Load(ctx context.Context, path string) ([]core.SourceUnit, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return []core.SourceUnit{{
		Content:    markdown.Normalize(string(raw)),
		Page:       0,
		TotalPages: 1,
		Source:     filepath.Base(path),
		Metadata:   map[string]string{},
	}}, nil
}

// CSVLoader emits one unit per data row, rendered as "header: value" lines.
// The row number doubles as the page index so citations can point at a row.
type CSVLoader struct{}

func (l *CSVLoader) Load(ctx context.Context, path string) ([]core.SourceUnit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	units := make([]core.SourceUnit, 0, len(rows)-1)
	for i, row := range rows[1:] {
		var lines []string
		for col, value := range row {
			name := fmt.Sprintf("column %d", col)
			if col < len(header) {
				name = header[col]
			}
			lines = append(lines, fmt.Sprintf("%s: %s", name, value))
		}

		units = append(units, core.SourceUnit{
			Content:    strings.Join(lines, "\n"),
			Page:       i,
			TotalPages: len(rows) - 1,
			Source:     filepath.Base(path),
			Metadata:   map[string]string{},
		})
	}

	return units, nil
}
