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


// Package loader turns uploaded files into core.SourceUnit slices.
// Each supported format has a dedicated Loader; the Registry owns the
// closed extension table and is the only dispatch point.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/quireio/quire/core"
	"github.com/quireio/quire/ocr"
)

// Loader parses one file format into source units. Implementations must
// set a page index on every unit they emit.
type Loader interface {
	Load(ctx context.Context, path string) ([]core.SourceUnit, error)
}

// Registry maps file extensions to loaders. The table is fixed at
// construction; unknown extensions fail fast with ErrUnsupportedFormat
// before any file I/O happens.
type Registry struct {
	table  map[string]Loader
	logger *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry) error

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithLoader overrides or adds the loader for an extension. The extension
// must include the leading dot.
func WithLoader(ext string, l Loader) Option {
	return func(r *Registry) error {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extension must start with a dot: %q", ext)
		}
		if l == nil {
			return ErrNilLoader
		}
		r.table[strings.ToLower(ext)] = l
		return nil
	}
}

// NewRegistry builds a Registry covering pdf, docx, html, markdown, plain
// text, and csv. The OCR engine and restorer are injected here so the PDF
// loader is fully constructed up front; pass a nil engine to disable the
// OCR fallback.
func NewRegistry(engine ocr.Engine, restorer *ocr.Restorer, opts ...Option) (*Registry, error) {
	logger := slog.Default()

	pdf := &PDFLoader{engine: engine, restorer: restorer, logger: logger}
	text := &TextLoader{}
	html := &HTMLLoader{}
	docx := &DOCXLoader{}
	csv := &CSVLoader{}

	r := &Registry{
		table: map[string]Loader{
			".pdf":      pdf,
			".docx":     docx,
			".html":     html,
			".htm":      html,
			".md":       text,
			".markdown": text,
			".txt":      text,
			".csv":      csv,
		},
		logger: logger,
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	pdf.logger = r.logger

	return r, nil
}

// Supported reports whether the path's extension has a loader.
func (r *Registry) Supported(path string) bool {
	_, ok := r.table[normalizeExt(path)]
	return ok
}

// Extensions returns the supported extensions, for CLI help output.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.table))
	for ext := range r.table {
		exts = append(exts, ext)
	}
	return exts
}

// Dispatch resolves the loader for a path.
func (r *Registry) Dispatch(path string) (Loader, error) {
	l, ok := r.table[normalizeExt(path)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedFormat, normalizeExt(path))
	}
	return l, nil
}

// Load dispatches on extension and parses the file. Every returned unit is
// guaranteed a non-negative page index and a source name; loaders that
// leave a page unset get the unit's position instead. Parser failures come
// back as *core.LoadError.
func (r *Registry) Load(ctx context.Context, path string) ([]core.SourceUnit, error) {
	l, err := r.Dispatch(path)
	if err != nil {
		return nil, err
	}

	units, err := l.Load(ctx, path)
	if err != nil {
		return nil, &core.LoadError{Filename: filepath.Base(path), Err: err}
	}

	for i := range units {
		if units[i].Page < 0 {
			units[i].Page = i
		}
		if units[i].Source == "" {
			units[i].Source = filepath.Base(path)
		}
	}

	r.logger.Debug("loaded file",
		"path", path,
		"units", len(units))

	return units, nil
}

func normalizeExt(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
