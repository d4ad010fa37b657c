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


package ocr

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Engine extracts text from a single PDF page at the image level.
// It is invoked only for pages whose embedded text layer is empty.
type Engine interface {
	// Recognize returns the recognized text for the zero-based page of the
	// PDF at pdfPath. An empty string with nil error means the page really
	// holds no text.
	Recognize(ctx context.Context, pdfPath string, page int) (string, error)
}

// ExecEngine runs OCR by shelling out: pdftoppm renders the page to a PNG,
// tesseract recognizes it. Both binaries must be on PATH unless overridden.
type ExecEngine struct {
	pdftoppmPath  string
	tesseractPath string
	language      string
	dpi           int
}

// ExecEngineOption is a functional option for configuring an ExecEngine.
type ExecEngineOption func(*ExecEngine)

// WithPdftoppmPath overrides the pdftoppm binary location.
func WithPdftoppmPath(path string) ExecEngineOption {
	return func(e *ExecEngine) {
		e.pdftoppmPath = path
	}
}

// WithTesseractPath overrides the tesseract binary location.
func WithTesseractPath(path string) ExecEngineOption {
	return func(e *ExecEngine) {
		e.tesseractPath = path
	}
}

// WithLanguage sets the tesseract language pack. Default "eng".
func WithLanguage(lang string) ExecEngineOption {
	return func(e *ExecEngine) {
		e.language = lang
	}
}

// WithDPI sets the render resolution. Default 300.
func WithDPI(dpi int) ExecEngineOption {
	return func(e *ExecEngine) {
		e.dpi = dpi
	}
}

// NewExecEngine creates an ExecEngine with the given options.
func NewExecEngine(opts ...ExecEngineOption) *ExecEngine {
	e := &ExecEngine{
		pdftoppmPath:  "pdftoppm",
		tesseractPath: "tesseract",
		language:      "eng",
		dpi:           300,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Recognize renders the requested page and runs it through tesseract.
func (e *ExecEngine) Recognize(ctx context.Context, pdfPath string, page int) (string, error) {
	dir, err := os.MkdirTemp("", "quire-ocr-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	// pdftoppm uses one-based page numbers.
	n := strconv.Itoa(page + 1)
	base := filepath.Join(dir, "page")
	render := exec.CommandContext(ctx, e.pdftoppmPath,
		"-f", n, "-l", n, "-r", strconv.Itoa(e.dpi), "-png", pdfPath, base)
	if out, err := render.CombinedOutput(); err != nil {
		return "", fmt.Errorf("pdftoppm failed on page %d: %w: %s", page, err, strings.TrimSpace(string(out)))
	}

	images, err := filepath.Glob(base + "*.png")
	if err != nil || len(images) == 0 {
		return "", fmt.Errorf("pdftoppm produced no image for page %d", page)
	}

	recognize := exec.CommandContext(ctx, e.tesseractPath, images[0], "stdout", "-l", e.language)
	out, err := recognize.Output()
	if err != nil {
		return "", fmt.Errorf("tesseract failed on page %d: %w", page, err)
	}

	return strings.TrimSpace(string(out)), nil
}
