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

import "fmt"

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Content must not be empty
//   - FileHash must not be empty
//   - Page must not be negative
//
// NOT validated (populated later in the pipeline):
//   - Vector (empty until the chunk is embedded on upsert)
//   - Id (derived from file hash and content at upsert time)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("chunk is nil")
	}

	if chunk.Content == "" {
		return ErrEmptyContent
	}

	if chunk.FileHash == "" {
		return ErrEmptyFileHash
	}

	if chunk.Page < 0 {
		return ErrNegativePage
	}

	return nil
}

// ValidateDocumentRecord validates a DocumentRecord according to domain rules.
func ValidateDocumentRecord(record *DocumentRecord) error {
	if record == nil {
		return fmt.Errorf("document record is nil")
	}

	if record.FileHash == "" {
		return ErrEmptyFileHash
	}

	if err := ValidateStatus(record.Status); err != nil {
		return err
	}

	return nil
}

// ValidateStatus validates that a DocumentStatus has a valid value.
func ValidateStatus(status DocumentStatus) error {
	switch status {
	case StatusProcessing, StatusCompleted, StatusFailed:
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrInvalidStatus, status)
	}
}
