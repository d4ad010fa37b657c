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

package reembed

import (
	"context"

	"github.com/quireio/quire/core"
	"github.com/quireio/quire/storage"
)

const (
	// DefaultBatchSize is the default number of chunks per batch.
	DefaultBatchSize = 100
)

// ChunkIterator walks every stored chunk in batches, document by document.
type ChunkIterator struct {
	chunks    storage.ChunkRepository
	documents storage.DocumentRegistry
	batchSize int
}

// NewChunkIterator creates a new chunk iterator.
// batchSize: number of chunks passed to fn per call (must be > 0)
func NewChunkIterator(chunks storage.ChunkRepository, documents storage.DocumentRegistry, batchSize int) *ChunkIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &ChunkIterator{
		chunks:    chunks,
		documents: documents,
		batchSize: batchSize,
	}
}

// Count returns the total number of stored chunks.
func (it *ChunkIterator) Count(ctx context.Context) (int, error) {
	return it.chunks.Count(ctx)
}

// ForEach iterates over all chunks, calling fn for each batch. Batches
// never span documents. Iteration stops on the first error from fn.
// Context cancellation is checked between batches.
func (it *ChunkIterator) ForEach(ctx context.Context, fn func([]*core.Chunk) error) error {
	records, err := it.documents.ListDocuments(ctx)
	if err != nil {
		return err
	}

	for _, record := range records {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		chunks, err := it.chunks.GetByFileHash(ctx, record.FileHash)
		if err != nil {
			return err
		}

		for start := 0; start < len(chunks); start += it.batchSize {
			end := start + it.batchSize
			if end > len(chunks) {
				end = len(chunks)
			}

			if err := fn(chunks[start:end]); err != nil {
				return err
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
	}

	return nil
}
