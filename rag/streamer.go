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

package rag

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/quireio/quire/ai"
	"github.com/quireio/quire/core"
	"github.com/quireio/quire/retrieval"
)

// DefaultPreviewLength bounds the source preview shown to clients.
const DefaultPreviewLength = 300

// Streamer answers questions and reports progress as a typed event stream.
type Streamer struct {
	retriever     *retrieval.Retriever
	generator     ai.Generator
	previewLength int
	logger        *slog.Logger
}

// Option configures a Streamer.
type Option func(*Streamer) error

// WithPreviewLength sets the maximum source preview length in runes.
func WithPreviewLength(length int) Option {
	return func(s *Streamer) error {
		if length <= 0 {
			return ErrInvalidPreviewLength
		}
		s.previewLength = length
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Streamer) error {
		s.logger = logger
		return nil
	}
}

// NewStreamer creates a streamer over the given retriever and generator.
func NewStreamer(retriever *retrieval.Retriever, generator ai.Generator, opts ...Option) (*Streamer, error) {
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if generator == nil {
		return nil, ErrGeneratorRequired
	}
	s := &Streamer{
		retriever:     retriever,
		generator:     generator,
		previewLength: DefaultPreviewLength,
		logger:        slog.Default().With("component", "rag"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Stream answers the question, delivering events to emit in order:
// start, retrieving, sources, thinking, token..., done. On failure the
// stream ends with a single error event and no done event; the error is
// also returned.
func (s *Streamer) Stream(ctx context.Context, question string, emit EventFunc) error {
	if strings.TrimSpace(question) == "" {
		return ErrEmptyQuestion
	}

	if err := emit(ctx, Event{Type: EventStart, Message: "Processing question"}); err != nil {
		return err
	}
	if err := emit(ctx, Event{Type: EventRetrieving, Message: "Searching documents"}); err != nil {
		return err
	}

	results, err := s.retriever.Retrieve(ctx, question)
	if err != nil {
		s.logger.ErrorContext(ctx, "retrieval failed", "error", err)
		return s.fail(ctx, emit, err)
	}

	docs := make([]core.RetrievedDocument, len(results))
	sources := make([]Source, len(results))
	for i, result := range results {
		docs[i] = core.RetrievedDocument{
			Chunk:    result.Chunk,
			Score:    result.Score,
			Citation: i + 1,
		}
		sources[i] = Source{
			Citation: i + 1,
			Filename: sourceFilename(result.Chunk),
			Page:     result.Chunk.Page,
			Preview:  s.preview(result.Chunk.Content),
			Score:    result.Score,
		}
	}
	if err := emit(ctx, Event{Type: EventSources, Sources: sources}); err != nil {
		return err
	}
	if err := emit(ctx, Event{Type: EventThinking, Message: "Generating answer"}); err != nil {
		return err
	}

	prompt := buildPrompt(question, docs)

	var emitErr error
	var tokenCount int
	answer, err := s.generator.StreamCompletion(ctx, prompt, func(ctx context.Context, token string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := emit(ctx, Event{Type: EventToken, Token: token}); err != nil {
			emitErr = err
			return err
		}
		tokenCount++
		return nil
	})
	if emitErr != nil {
		return emitErr
	}
	if err != nil {
		genErr := &core.GenerationError{Err: err}
		s.logger.ErrorContext(ctx, "generation failed", "error", err, "partial_len", len(answer))
		return s.fail(ctx, emit, genErr)
	}

	return emit(ctx, Event{
		Type:        EventDone,
		Answer:      answer,
		TokenCount:  tokenCount,
		SourceCount: len(sources),
	})
}

// Ask answers the question without streaming. Returns the answer together
// with the cited documents.
func (s *Streamer) Ask(ctx context.Context, question string) (string, []core.RetrievedDocument, error) {
	if strings.TrimSpace(question) == "" {
		return "", nil, ErrEmptyQuestion
	}

	results, err := s.retriever.Retrieve(ctx, question)
	if err != nil {
		return "", nil, err
	}
	docs := make([]core.RetrievedDocument, len(results))
	for i, result := range results {
		docs[i] = core.RetrievedDocument{
			Chunk:    result.Chunk,
			Score:    result.Score,
			Citation: i + 1,
		}
	}

	answer, err := s.generator.Complete(ctx, buildPrompt(question, docs))
	if err != nil {
		return "", nil, &core.GenerationError{Err: err}
	}
	return answer, docs, nil
}

// fail delivers the terminal error event and returns the underlying error.
// An emit failure takes precedence since the client is unreachable.
func (s *Streamer) fail(ctx context.Context, emit EventFunc, cause error) error {
	event := Event{
		Type:      EventError,
		Error:     cause.Error(),
		ErrorType: errorCategory(cause),
	}
	if err := emit(ctx, event); err != nil {
		return err
	}
	return cause
}

// errorCategory names the pipeline stage that produced the error, so
// clients can tell an embedding outage from a generation one.
func errorCategory(err error) string {
	var embErr *core.EmbeddingError
	var genErr *core.GenerationError
	switch {
	case errors.As(err, &embErr):
		return "EmbeddingError"
	case errors.As(err, &genErr):
		return "GenerationError"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Canceled"
	default:
		return "RetrievalError"
	}
}

// preview collapses whitespace and truncates to the preview length.
func (s *Streamer) preview(content string) string {
	collapsed := strings.Join(strings.Fields(content), " ")
	runes := []rune(collapsed)
	if len(runes) <= s.previewLength {
		return collapsed
	}
	return strings.TrimSpace(string(runes[:s.previewLength])) + "..."
}

func sourceFilename(chunk *core.Chunk) string {
	if source, ok := chunk.Metadata[core.MetaSource]; ok && source != "" {
		return filepath.Base(source)
	}
	return "unknown"
}
