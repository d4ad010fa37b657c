package core

import (
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// FileHash computes the stable per-upload identifier for a document.
// The identifier (typically an upload timestamp) disambiguates repeated
// uploads of the same filename. All chunks belonging to one upload share
// this hash, and deletion cascades through it.
func FileHash(filename, identifier string) string {
	h, _ := blake2b.New(16, nil)
	h.Write([]byte(filename + "-" + identifier))
	return hex.EncodeToString(h.Sum(nil))
}

// Metadata keys shared between loaders, the chunker, and the RAG layer.
const (
	MetaSource     = "source"
	MetaTitle      = "title"
	MetaAuthor     = "author"
	MetaIsOCR      = "is_ocr"
	MetaHeaderPath = "header_path"
)

// SourceUnit is one loaded page or structural section of a document.
// Loaders create units; the chunker consumes them. A unit is immutable
// after creation except for metadata enrichment (OCR flag, file-hash tag).
type SourceUnit struct {
	Content    string
	Page       int
	TotalPages int
	Source     string            // original filename or path
	Metadata   map[string]string // format-specific: title, author, is_ocr
}

// Chunk is a retrieval unit: normalized text plus merged metadata, owned by
// a single uploaded document through FileHash. Content length is always at
// least the configured minimum and unique within one ingestion run.
type Chunk struct {
	Id         ID
	Content    string
	FileHash   string
	Page       int
	Metadata   map[string]string
	Vector     []float32 // embedding, populated on upsert
	InsertedAt time.Time
}

// DocumentStatus tracks the lifecycle of an uploaded document.
type DocumentStatus int

const (
	// StatusProcessing means ingestion is still running.
	StatusProcessing DocumentStatus = iota + 1
	// StatusCompleted means all chunks were embedded and stored.
	StatusCompleted
	// StatusFailed means ingestion aborted; ErrorMessage holds the cause.
	StatusFailed
)

// String returns the status name used in logs and CLI output.
func (s DocumentStatus) String() string {
	switch s {
	case StatusProcessing:
		return "PROCESSING"
	case StatusCompleted:
		return "COMPLETED"
	case StatusFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// DocumentRecord is the registry entry for one uploaded document.
type DocumentRecord struct {
	FileHash     string
	Filename     string
	Status       DocumentStatus
	ChunkCount   int
	FileSize     int64 // estimated from chunk contents; originals are not kept
	ErrorMessage string
	UploadedAt   time.Time
	UpdatedAt    time.Time
}

// Progress is the ephemeral ingestion state keyed by file hash.
// Written at each batch boundary, read by status pollers, and cleared on
// document deletion or a superseding upload.
type Progress struct {
	Percent int // 0-100
	Message string
	Status  string // "running", "completed", "failed"
}

// SearchResult pairs a chunk with its similarity score from vector search.
type SearchResult struct {
	Chunk *Chunk
	Score float32
}

// RetrievedDocument is a chunk plus its query-relevance score and the
// 1-based citation number assigned at query time. Never persisted.
type RetrievedDocument struct {
	Chunk    *Chunk
	Score    float32
	Citation int
}
