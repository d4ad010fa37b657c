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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// SSEWriter frames events as server-sent events. Each event becomes one
// "data: <json>\n\n" frame, flushed immediately when the writer supports it.
type SSEWriter struct {
	w       io.Writer
	flusher http.Flusher
}

// NewSSEWriter wraps an HTTP response writer for event streaming and sets
// the response headers required by the SSE protocol.
func NewSSEWriter(w http.ResponseWriter) *SSEWriter {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sw := &SSEWriter{w: w}
	if flusher, ok := w.(http.Flusher); ok {
		sw.flusher = flusher
	}
	return sw
}

// NewSSEWriterTo wraps a plain writer. No headers are set and no flushing
// happens; useful for buffers and tests.
func NewSSEWriterTo(w io.Writer) *SSEWriter {
	return &SSEWriter{w: w}
}

// Emit writes one event frame. It satisfies EventFunc.
func (s *SSEWriter) Emit(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := WriteEvent(s.w, event); err != nil {
		return err
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
	return nil
}

// WriteEvent encodes one event as a single SSE data frame. Frames are
// independently parseable.
func WriteEvent(w io.Writer, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}
	return nil
}
