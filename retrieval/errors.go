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

package retrieval

import "errors"

var (
	// ErrStoreRequired is returned when a Retriever is built without a
	// vector store.
	ErrStoreRequired = errors.New("vector store is required")

	// ErrEmptyQuery is returned when Retrieve is called with no query text.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrInvalidParameter is returned by options given out-of-range values.
	ErrInvalidParameter = errors.New("invalid retrieval parameter")
)
