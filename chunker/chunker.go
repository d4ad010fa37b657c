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


// Package chunker splits loaded source units into retrieval-sized chunks.
// Splitting is two-stage: Markdown headers first, then recursive character
// splitting within each section.
package chunker

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/quireio/quire/core"
)

const (
	// DefaultChunkSize is the target chunk size in characters.
	DefaultChunkSize = 1000
	// DefaultChunkOverlap is the character overlap between adjacent chunks.
	DefaultChunkOverlap = 200
	// DefaultMinLength drops fragments too short to be worth retrieving.
	DefaultMinLength = 30
)

// Chunker converts source units into chunks. Chunks below the minimum
// length and exact-content duplicates within one Split call are dropped.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
	minLength    int
	logger       *slog.Logger
}

// Option configures a Chunker.
type Option func(*Chunker) error

// WithChunkSize sets the target chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) error {
		if size < 1 {
			return ErrInvalidChunkSize
		}
		c.chunkSize = size
		return nil
	}
}

// WithChunkOverlap sets the overlap between adjacent chunks.
func WithChunkOverlap(overlap int) Option {
	return func(c *Chunker) error {
		if overlap < 0 {
			return ErrInvalidChunkOverlap
		}
		c.chunkOverlap = overlap
		return nil
	}
}

// WithMinLength sets the minimum chunk content length.
func WithMinLength(length int) Option {
	return func(c *Chunker) error {
		c.minLength = length
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Chunker) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// New creates a Chunker with the given options.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		minLength:    DefaultMinLength,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Split chunks every unit and tags the results with fileHash. A unit whose
// size split fails falls back to a single unsplit chunk instead of aborting
// the document; its page index is clamped to zero when negative.
func (c *Chunker) Split(units []core.SourceUnit, fileHash string) []core.Chunk {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(c.chunkSize),
		textsplitter.WithChunkOverlap(c.chunkOverlap),
	)

	var chunks []core.Chunk
	seen := make(map[string]struct{})

	for _, unit := range units {
		content := lightNormalize(unit.Content)
		if content == "" {
			continue
		}

		failed := false
		for _, section := range splitHeaders(content) {
			pieces, err := splitter.SplitText(section.content)
			if err != nil {
				splitErr := &core.SplitError{Page: unit.Page, Err: err}
				c.logger.Error("chunk split failed, keeping unit whole",
					"source", unit.Source,
					"error", splitErr)
				failed = true
				break
			}

			for _, piece := range pieces {
				piece = lightNormalize(piece)
				if len(piece) < c.minLength {
					continue
				}
				if _, dup := seen[piece]; dup {
					continue
				}
				seen[piece] = struct{}{}

				chunks = append(chunks, core.Chunk{
					Content:  piece,
					FileHash: fileHash,
					Page:     unit.Page,
					Metadata: mergeMetadata(unit, section.headerPath),
				})
			}
		}

		if failed {
			page := unit.Page
			if page < 0 {
				page = 0
			}
			chunks = append(chunks, core.Chunk{
				Content:  content,
				FileHash: fileHash,
				Page:     page,
				Metadata: mergeMetadata(unit, ""),
			})
		}
	}

	return chunks
}

// mergeMetadata combines unit metadata with split-stage metadata; the
// split stage wins on conflicts.
func mergeMetadata(unit core.SourceUnit, headerPath string) map[string]string {
	merged := make(map[string]string, len(unit.Metadata)+2)
	for k, v := range unit.Metadata {
		merged[k] = v
	}
	if headerPath != "" {
		merged[core.MetaHeaderPath] = headerPath
	}
	if _, ok := merged[core.MetaSource]; !ok && unit.Source != "" {
		merged[core.MetaSource] = unit.Source
	}
	return merged
}

type section struct {
	content    string
	headerPath string
}

var headerLineRe = regexp.MustCompile(`^(#{1,3})\s+(.*)$`)

// splitHeaders cuts text at level 1-3 Markdown headers. Header lines stay
// in the section content; the active header stack is recorded as a path so
// retrieval can show where a chunk came from.
func splitHeaders(text string) []section {
	lines := strings.Split(text, "\n")

	var sections []section
	var current []string
	headers := [3]string{}

	flush := func() {
		content := strings.TrimSpace(strings.Join(current, "\n"))
		if content != "" {
			sections = append(sections, section{
				content:    content,
				headerPath: joinHeaders(headers),
			})
		}
		current = current[:0]
	}

	for _, line := range lines {
		if m := headerLineRe.FindStringSubmatch(line); m != nil {
			flush()
			level := len(m[1])
			headers[level-1] = strings.TrimSpace(m[2])
			for i := level; i < 3; i++ {
				headers[i] = ""
			}
		}
		current = append(current, line)
	}
	flush()

	return sections
}

func joinHeaders(headers [3]string) string {
	var parts []string
	for _, h := range headers {
		if h != "" {
			parts = append(parts, h)
		}
	}
	return strings.Join(parts, " > ")
}

var (
	spaceRunRe = regexp.MustCompile(`[ \t]+`)
	blankRunRe = regexp.MustCompile(`\n{3,}`)
)

// lightNormalize collapses space runs and caps blank lines while keeping
// newlines as structure hints for the splitters.
func lightNormalize(text string) string {
	text = spaceRunRe.ReplaceAllString(text, " ")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
