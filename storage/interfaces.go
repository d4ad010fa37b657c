package storage

import (
	"context"
	"time"

	"github.com/quireio/quire/core"
)

// ChunkRepository provides operations for managing document chunks.
// Implementations must be thread-safe and support concurrent access.
type ChunkRepository interface {
	// AddChunks adds one or more chunks to storage.
	// IDs are derived from file hash and content (IDFromContent), so
	// re-adding a document's chunk overwrites in place while identical
	// content in different documents stays distinct records. Sets
	// InsertedAt if not already set.
	// Returns the chunks with IDs and timestamps populated.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// GetChunks retrieves multiple chunks by their IDs.
	// Returns only the chunks that exist (no error for missing chunks).
	GetChunks(ctx context.Context, ids ...core.ID) ([]*core.Chunk, error)

	// GetByFileHash retrieves all chunks belonging to one uploaded document,
	// in insertion order.
	GetByFileHash(ctx context.Context, fileHash string) ([]*core.Chunk, error)

	// DeleteChunks removes chunks by their IDs.
	// Returns ErrNotFound if any chunk doesn't exist.
	DeleteChunks(ctx context.Context, ids ...core.ID) error

	// DeleteByFileHash removes every chunk belonging to one uploaded
	// document. Returns the number of chunks removed.
	DeleteByFileHash(ctx context.Context, fileHash string) (int, error)

	// FindSimilar finds chunks similar to the given vector.
	// Returns up to limit results with similarity >= minSimilarity,
	// ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error)

	// Count returns the total number of stored chunks.
	Count(ctx context.Context) (int, error)

	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the repository and releases resources.
	Close() error
}

// DocumentRegistry tracks the lifecycle of uploaded documents.
type DocumentRegistry interface {
	// CreateDocument registers a new upload in PROCESSING state.
	// Returns ErrDuplicateKey if the file hash is already registered.
	CreateDocument(ctx context.Context, record *core.DocumentRecord) error

	// GetDocument retrieves a document record by file hash.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, fileHash string) (*core.DocumentRecord, error)

	// ListDocuments returns all document records, most recent upload first.
	ListDocuments(ctx context.Context) ([]*core.DocumentRecord, error)

	// MarkCompleted transitions a document to COMPLETED and records its
	// final chunk count and estimated size.
	MarkCompleted(ctx context.Context, fileHash string, chunkCount int, fileSize int64) error

	// MarkFailed transitions a document to FAILED with the cause.
	MarkFailed(ctx context.Context, fileHash string, errorMessage string) error

	// DeleteDocument removes the record and cascades: all chunks with the
	// same file hash and any progress entry are removed too.
	DeleteDocument(ctx context.Context, fileHash string) error

	// Close closes the registry and releases resources.
	Close() error
}

// ProgressStore holds ephemeral ingestion progress, keyed by file hash.
// Entries expire on their own; ttl bounds how long a stale entry can
// outlive a crashed ingestion job.
type ProgressStore interface {
	// Set stores the progress entry with the given time to live.
	Set(ctx context.Context, fileHash string, progress *core.Progress, ttl time.Duration) error

	// Get retrieves the progress entry.
	// Returns ErrNotFound if no entry exists or it has expired.
	Get(ctx context.Context, fileHash string) (*core.Progress, error)

	// Delete removes the progress entry. Deleting a missing entry is not
	// an error.
	Delete(ctx context.Context, fileHash string) error
}
