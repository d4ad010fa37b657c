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

import "context"

// EventType identifies one stage of the answer stream.
type EventType string

const (
	// EventStart opens the stream.
	EventStart EventType = "start"

	// EventRetrieving signals that retrieval is underway.
	EventRetrieving EventType = "retrieving"

	// EventSources carries the retrieved sources with citation numbers.
	EventSources EventType = "sources"

	// EventThinking signals that generation is about to begin.
	EventThinking EventType = "thinking"

	// EventToken carries one generated token.
	EventToken EventType = "token"

	// EventDone closes a successful stream with the full answer.
	EventDone EventType = "done"

	// EventError closes a failed stream. No done event follows.
	EventError EventType = "error"
)

// Source describes one retrieved chunk as shown to clients.
type Source struct {
	Citation int     `json:"citation"`
	Filename string  `json:"filename"`
	Page     int     `json:"page"`
	Preview  string  `json:"preview"`
	Score    float32 `json:"score"`
}

// Event is one element of the answer stream. Done events carry the full
// answer plus token and source counts; error events carry the message and
// the error category.
type Event struct {
	Type        EventType `json:"type"`
	Message     string    `json:"message,omitempty"`
	Token       string    `json:"token,omitempty"`
	Sources     []Source  `json:"sources,omitempty"`
	Answer      string    `json:"answer,omitempty"`
	TokenCount  int       `json:"token_count,omitempty"`
	SourceCount int       `json:"source_count,omitempty"`
	Error       string    `json:"error,omitempty"`
	ErrorType   string    `json:"error_type,omitempty"`
}

// EventFunc receives stream events in order. Returning an error aborts
// the stream.
type EventFunc func(ctx context.Context, event Event) error
