package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/quireio/quire/core"
	"github.com/quireio/quire/storage"
)

func TestChunkBasics(t *testing.T) {
	chunks, _, _, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	chunk := &core.Chunk{
		Content:  "The quick brown fox jumps over the lazy dog.",
		FileHash: "hash1",
		Page:     0,
	}

	added, err := chunks.AddChunks(ctx, chunk)
	if err != nil {
		t.Fatalf("Failed to add chunk: %v", err)
	}
	if len(added) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(added))
	}
	if added[0].Id == 0 {
		t.Fatal("Expected a derived ID")
	}
	if added[0].Id != core.IDFromContent(chunk.FileHash+"\x00"+chunk.Content) {
		t.Fatal("Expected ID derived from file hash and content")
	}
	if added[0].InsertedAt.IsZero() {
		t.Fatal("Expected InsertedAt to be set")
	}

	retrieved, err := chunks.GetChunks(ctx, added[0].Id)
	if err != nil {
		t.Fatalf("Failed to get chunk: %v", err)
	}
	if len(retrieved) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(retrieved))
	}
	if retrieved[0].Content != chunk.Content {
		t.Fatalf("Expected %q, got %q", chunk.Content, retrieved[0].Content)
	}
}

func TestChunkGetMissingIsSkipped(t *testing.T) {
	chunks, _, _, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	got, err := chunks.GetChunks(ctx, core.ID(12345))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Expected 0 chunks, got %d", len(got))
	}
}

func TestChunkValidationOnAdd(t *testing.T) {
	chunks, _, _, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	_, err = chunks.AddChunks(ctx, &core.Chunk{Content: "", FileHash: "hash1"})
	if !errors.Is(err, core.ErrEmptyContent) {
		t.Fatalf("Expected ErrEmptyContent, got %v", err)
	}
}

func TestChunkFileHashIndex(t *testing.T) {
	chunks, _, _, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	_, err = chunks.AddChunks(ctx,
		&core.Chunk{Content: "first chunk of document one", FileHash: "hash1", Page: 0},
		&core.Chunk{Content: "second chunk of document one", FileHash: "hash1", Page: 1},
		&core.Chunk{Content: "only chunk of document two", FileHash: "hash2", Page: 0},
	)
	if err != nil {
		t.Fatalf("Failed to add chunks: %v", err)
	}

	got, err := chunks.GetByFileHash(ctx, "hash1")
	if err != nil {
		t.Fatalf("Failed to get by file hash: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 chunks for hash1, got %d", len(got))
	}
	for _, chunk := range got {
		if chunk.FileHash != "hash1" {
			t.Fatalf("Expected file hash hash1, got %s", chunk.FileHash)
		}
	}

	got, err = chunks.GetByFileHash(ctx, "hash3")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Expected 0 chunks for unknown hash, got %d", len(got))
	}
}

func TestChunkDeleteByFileHash(t *testing.T) {
	chunks, _, _, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	_, err = chunks.AddChunks(ctx,
		&core.Chunk{Content: "first chunk of document one", FileHash: "hash1", Page: 0},
		&core.Chunk{Content: "second chunk of document one", FileHash: "hash1", Page: 1},
		&core.Chunk{Content: "only chunk of document two", FileHash: "hash2", Page: 0},
	)
	if err != nil {
		t.Fatalf("Failed to add chunks: %v", err)
	}

	deleted, err := chunks.DeleteByFileHash(ctx, "hash1")
	if err != nil {
		t.Fatalf("Failed to delete by file hash: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("Expected 2 deleted, got %d", deleted)
	}

	count, err := chunks.Count(ctx)
	if err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected 1 remaining chunk, got %d", count)
	}

	remaining, err := chunks.GetByFileHash(ctx, "hash2")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("Expected document two to survive, got %d chunks", len(remaining))
	}
}

func TestChunkDeleteMissing(t *testing.T) {
	chunks, _, _, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	err = chunks.DeleteChunks(ctx, core.ID(999))
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestChunkDedupByContent(t *testing.T) {
	chunks, _, _, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	// Identical content within one document maps to the same key.
	_, err = chunks.AddChunks(ctx,
		&core.Chunk{Content: "identical content", FileHash: "hash1", Page: 0},
		&core.Chunk{Content: "identical content", FileHash: "hash1", Page: 3},
	)
	if err != nil {
		t.Fatalf("Failed to add chunks: %v", err)
	}

	count, err := chunks.Count(ctx)
	if err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected 1 chunk after dedup, got %d", count)
	}
}

func TestChunkSameContentAcrossDocuments(t *testing.T) {
	chunks, _, _, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	// The same content in two documents must be two records: deleting one
	// document must not take the other's chunk with it.
	_, err = chunks.AddChunks(ctx,
		&core.Chunk{Content: "shared boilerplate paragraph", FileHash: "doc-a", Page: 0},
		&core.Chunk{Content: "shared boilerplate paragraph", FileHash: "doc-b", Page: 0},
	)
	if err != nil {
		t.Fatalf("Failed to add chunks: %v", err)
	}

	count, err := chunks.Count(ctx)
	if err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	if count != 2 {
		t.Fatalf("Expected 2 chunks across documents, got %d", count)
	}

	deleted, err := chunks.DeleteByFileHash(ctx, "doc-a")
	if err != nil {
		t.Fatalf("Failed to delete by file hash: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("Expected 1 deleted, got %d", deleted)
	}

	remaining, err := chunks.GetByFileHash(ctx, "doc-b")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("Expected doc-b to keep its chunk, got %d", len(remaining))
	}
	if remaining[0].Content != "shared boilerplate paragraph" {
		t.Fatalf("Unexpected surviving content %q", remaining[0].Content)
	}
}
