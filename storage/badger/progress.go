package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/quireio/quire/core"
	"github.com/quireio/quire/storage"
)

// ProgressStore implements storage.ProgressStore for BadgerDB using TTL
// entries, so stale progress left behind by a crashed job expires on its
// own.
type ProgressStore struct {
	backend *Backend
}

var _ storage.ProgressStore = (*ProgressStore)(nil)

// NewProgressStore creates a new ProgressStore.
func NewProgressStore(backend *Backend) (storage.ProgressStore, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}
	return &ProgressStore{backend: backend}, nil
}

// Set stores the progress entry with the given time to live.
func (s *ProgressStore) Set(ctx context.Context, fileHash string, progress *core.Progress, ttl time.Duration) error {
	entry := badger.NewEntry(makeProgressKey(fileHash), storage.MarshalProgress(progress))
	if ttl > 0 {
		entry = entry.WithTTL(ttl)
	}
	return s.backend.SetEntry(entry)
}

// Get retrieves the progress entry. Expired entries read as missing.
func (s *ProgressStore) Get(ctx context.Context, fileHash string) (*core.Progress, error) {
	var progress *core.Progress

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeProgressKey(fileHash))
		if err == badger.ErrKeyNotFound {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			progress, err = storage.UnmarshalProgress(val)
			return err
		})
	}, false)

	if err != nil {
		return nil, err
	}
	return progress, nil
}

// Delete removes the progress entry; deleting a missing entry is a no-op.
func (s *ProgressStore) Delete(ctx context.Context, fileHash string) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeProgressKey(fileHash)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
