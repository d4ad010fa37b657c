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


package core

import (
	"errors"
	"fmt"
)

// Domain validation errors
var (
	// ErrEmptyContent indicates the Content field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrEmptyFileHash indicates a chunk or record is missing its owning file hash.
	ErrEmptyFileHash = errors.New("file hash cannot be empty")

	// ErrNegativePage indicates a page index below zero.
	ErrNegativePage = errors.New("page index cannot be negative")

	// ErrInvalidStatus indicates an invalid DocumentStatus value.
	ErrInvalidStatus = errors.New("invalid document status")
)

// Pipeline failure taxonomy. Each type localizes a failure to one document
// or one source unit so a bad file never aborts a sibling ingestion job.
var (
	// ErrUnsupportedFormat is returned for extensions absent from the loader table.
	// It is raised before any file I/O and no document record is created.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// LoadError reports a parser-level failure on a specific file. The owning
// document is marked FAILED and ingestion of that document stops.
type LoadError struct {
	Filename string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Filename, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// SplitError reports a chunking failure on a single source unit. The caller
// falls back to emitting the unsplit unit rather than failing the document.
type SplitError struct {
	Page int
	Err  error
}

func (e *SplitError) Error() string {
	return fmt.Sprintf("failed to split page %d: %v", e.Page, e.Err)
}

func (e *SplitError) Unwrap() error { return e.Err }

// EmbeddingError reports an embedding-provider failure. Remaining batches of
// the current document are aborted; already-ingested batches are preserved.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding provider: %v", e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// GenerationError reports a chat-generation failure. It is surfaced to the
// caller as a terminal stream error event, never as a partial completion.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
