package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quireio/quire/core"
	"github.com/quireio/quire/storage"
)

func TestProgressSetGet(t *testing.T) {
	_, _, progress, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	entry := &core.Progress{Percent: 40, Message: "Splitting into chunks...", Status: "running"}
	if err := progress.Set(ctx, "hash1", entry, time.Hour); err != nil {
		t.Fatalf("Failed to set progress: %v", err)
	}

	got, err := progress.Get(ctx, "hash1")
	if err != nil {
		t.Fatalf("Failed to get progress: %v", err)
	}
	if got.Percent != 40 {
		t.Fatalf("Expected 40%%, got %d%%", got.Percent)
	}
	if got.Message != "Splitting into chunks..." {
		t.Fatalf("Unexpected message %q", got.Message)
	}
	if got.Status != "running" {
		t.Fatalf("Unexpected status %q", got.Status)
	}
}

func TestProgressOverwrite(t *testing.T) {
	_, _, progress, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	if err := progress.Set(ctx, "hash1", &core.Progress{Percent: 10, Status: "running"}, time.Hour); err != nil {
		t.Fatalf("Failed to set progress: %v", err)
	}
	if err := progress.Set(ctx, "hash1", &core.Progress{Percent: 100, Status: "completed"}, time.Hour); err != nil {
		t.Fatalf("Failed to overwrite progress: %v", err)
	}

	got, err := progress.Get(ctx, "hash1")
	if err != nil {
		t.Fatalf("Failed to get progress: %v", err)
	}
	if got.Percent != 100 || got.Status != "completed" {
		t.Fatalf("Expected latest entry, got %d%% %q", got.Percent, got.Status)
	}
}

func TestProgressMissing(t *testing.T) {
	_, _, progress, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	_, err = progress.Get(ctx, "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestProgressExpiry(t *testing.T) {
	_, _, progress, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	if err := progress.Set(ctx, "hash1", &core.Progress{Percent: 10, Status: "running"}, 50*time.Millisecond); err != nil {
		t.Fatalf("Failed to set progress: %v", err)
	}

	time.Sleep(120 * time.Millisecond)

	_, err = progress.Get(ctx, "hash1")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected expired entry to read as missing, got %v", err)
	}
}

func TestProgressDeleteIdempotent(t *testing.T) {
	_, _, progress, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	if err := progress.Delete(ctx, "never-set"); err != nil {
		t.Fatalf("Expected delete of missing entry to succeed, got %v", err)
	}

	if err := progress.Set(ctx, "hash1", &core.Progress{Percent: 10, Status: "running"}, time.Hour); err != nil {
		t.Fatalf("Failed to set progress: %v", err)
	}
	if err := progress.Delete(ctx, "hash1"); err != nil {
		t.Fatalf("Failed to delete progress: %v", err)
	}
	if _, err := progress.Get(ctx, "hash1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected entry gone, got %v", err)
	}
}
