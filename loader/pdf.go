// Copyright 2026 Quire Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package loader

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/quireio/quire/core"
	"github.com/quireio/quire/markdown"
	"github.com/quireio/quire/ocr"
)

// PDFLoader extracts the embedded text layer page by page. Pages whose
// layer is empty or filler-only go through the OCR fallback; such pages
// are flagged is_ocr=true whether or not OCR recovered anything, so
// downstream consumers know the text came from image recognition.
type PDFLoader struct {
	engine   ocr.Engine
	restorer *ocr.Restorer
	logger   *slog.Logger
}

func (l *PDFLoader) Load(ctx context.Context, path string) ([]core.SourceUnit, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	total := reader.NumPage()
	title, author := pdfInfo(reader)

	pages := make([]string, 0, total)
	for pageNum := 1; pageNum <= total; pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var text string
		page := reader.Page(pageNum)
		if !page.V.IsNull() {
			// A malformed text layer is treated as an empty page so the
			// OCR fallback gets a chance at it.
			if extracted, err := page.GetPlainText(nil); err == nil {
				text = extracted
			}
		}
		pages = append(pages, text)
	}

	return l.buildUnits(ctx, path, pages, title, author)
}

// buildUnits runs the per-page pipeline over extracted text layers: filler
// detection, OCR fallback, normalization, and metadata.
func (l *PDFLoader) buildUnits(ctx context.Context, path string, pages []string, title, author string) ([]core.SourceUnit, error) {
	units := make([]core.SourceUnit, 0, len(pages))
	for i, text := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		isOCR := false
		if isFillerPage(text) {
			isOCR = true
			text = l.ocrFallback(ctx, path, i)
		}

		text = markdown.Normalize(text)

		meta := map[string]string{
			core.MetaIsOCR: strconv.FormatBool(isOCR),
		}
		if title != "" {
			meta[core.MetaTitle] = title
		}
		if author != "" {
			meta[core.MetaAuthor] = author
		}

		units = append(units, core.SourceUnit{
			Content:    text,
			Page:       i,
			TotalPages: len(pages),
			Source:     filepath.Base(path),
			Metadata:   meta,
		})
	}

	return units, nil
}

// ocrFallback recognizes one page and repairs its whitespace. OCR failure
// degrades to an empty page rather than failing the document.
func (l *PDFLoader) ocrFallback(ctx context.Context, path string, page int) string {
	if l.engine == nil {
		return ""
	}

	l.logger.Info("empty text layer, running OCR",
		"path", path,
		"page", page)

	text, err := l.engine.Recognize(ctx, path, page)
	if err != nil {
		l.logger.Warn("ocr failed",
			"path", path,
			"page", page,
			"error", err)
		return ""
	}
	if l.restorer != nil {
		text = l.restorer.Restore(text)
	}
	if text == "" {
		l.logger.Warn("ocr recovered no text",
			"path", path,
			"page", page)
	}
	return text
}

// isFillerPage reports whether a text layer is empty or holds only dashes,
// the filler some scanners emit for image-only pages.
func isFillerPage(text string) bool {
	trimmed := strings.TrimSpace(text)
	return trimmed == "" || strings.Trim(trimmed, "-") == ""
}

// pdfInfo pulls title and author from the document info dictionary.
func pdfInfo(reader *pdf.Reader) (title, author string) {
	info := reader.Trailer().Key("Info")
	if info.IsNull() {
		return "", ""
	}
	return info.Key("Title").RawString(), info.Key("Author").RawString()
}
