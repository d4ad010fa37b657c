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

package ingestion

import "errors"

var (
	// ErrLoaderRegistryRequired is returned when a Pipeline is built
	// without a loader registry.
	ErrLoaderRegistryRequired = errors.New("loader registry is required")

	// ErrChunkerRequired is returned when a Pipeline is built without a
	// chunker.
	ErrChunkerRequired = errors.New("chunker is required")

	// ErrStoreRequired is returned when a Pipeline is built without a
	// vector store.
	ErrStoreRequired = errors.New("vector store is required")

	// ErrRegistryRequired is returned when a Pipeline is built without a
	// document registry.
	ErrRegistryRequired = errors.New("document registry is required")

	// ErrProgressRequired is returned when a Pipeline is built without a
	// progress store.
	ErrProgressRequired = errors.New("progress store is required")

	// ErrNoContent is returned when a document yields no chunks at all.
	ErrNoContent = errors.New("no content extracted from document")
)
