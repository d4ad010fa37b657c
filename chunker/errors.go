package chunker

import "errors"

var (
	// ErrInvalidChunkSize is returned for a chunk size below one.
	ErrInvalidChunkSize = errors.New("chunk size must be at least 1")

	// ErrInvalidChunkOverlap is returned for a negative chunk overlap.
	ErrInvalidChunkOverlap = errors.New("chunk overlap cannot be negative")
)
