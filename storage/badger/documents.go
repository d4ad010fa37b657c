package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/quireio/quire/core"
	"github.com/quireio/quire/storage"
)

// DocumentRegistry implements storage.DocumentRegistry for BadgerDB.
type DocumentRegistry struct {
	backend *Backend
}

var _ storage.DocumentRegistry = (*DocumentRegistry)(nil)

// NewDocumentRegistry creates a new DocumentRegistry.
func NewDocumentRegistry(backend *Backend) (storage.DocumentRegistry, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}
	return &DocumentRegistry{backend: backend}, nil
}

// Close is a no-op; the underlying backend is owned by the caller.
func (r *DocumentRegistry) Close() error {
	return nil
}

// CreateDocument registers a new upload in PROCESSING state.
func (r *DocumentRegistry) CreateDocument(ctx context.Context, record *core.DocumentRecord) error {
	if record.Status == 0 {
		record.Status = core.StatusProcessing
	}
	if err := core.ValidateDocumentRecord(record); err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(record.FileHash)

		_, err := tx.Get(key)
		if err == nil {
			return storage.ErrDuplicateKey
		}
		if err != badger.ErrKeyNotFound {
			return err
		}

		now := time.Now().UTC()
		if record.UploadedAt.IsZero() {
			record.UploadedAt = now
		}
		record.UpdatedAt = now

		if err := tx.Set(key, storage.MarshalDocumentRecord(record)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetDocument retrieves a document record by file hash.
func (r *DocumentRegistry) GetDocument(ctx context.Context, fileHash string) (*core.DocumentRecord, error) {
	var record *core.DocumentRecord

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		record, err = readDocument(tx, fileHash)
		return err
	}, false)

	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, storage.ErrNotFound
	}
	return record, nil
}

// ListDocuments returns all document records, most recent upload first.
func (r *DocumentRegistry) ListDocuments(ctx context.Context) ([]*core.DocumentRecord, error) {
	var records []*core.DocumentRecord

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var record *core.DocumentRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalDocumentRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			records = append(records, record)
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	slices.SortFunc(records, func(a, b *core.DocumentRecord) int {
		return b.UploadedAt.Compare(a.UploadedAt)
	})

	return records, nil
}

// MarkCompleted transitions a document to COMPLETED with its final counts.
func (r *DocumentRegistry) MarkCompleted(ctx context.Context, fileHash string, chunkCount int, fileSize int64) error {
	return r.updateDocument(fileHash, func(record *core.DocumentRecord) {
		record.Status = core.StatusCompleted
		record.ChunkCount = chunkCount
		record.FileSize = fileSize
		record.ErrorMessage = ""
	})
}

// MarkFailed transitions a document to FAILED with the cause.
func (r *DocumentRegistry) MarkFailed(ctx context.Context, fileHash string, errorMessage string) error {
	return r.updateDocument(fileHash, func(record *core.DocumentRecord) {
		record.Status = core.StatusFailed
		record.ErrorMessage = errorMessage
	})
}

// DeleteDocument removes the record, every chunk with the same file hash,
// and any progress entry. Chunk deletion runs in its own transaction to
// keep transaction sizes bounded on large documents.
func (r *DocumentRegistry) DeleteDocument(ctx context.Context, fileHash string) error {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		record, err := readDocument(tx, fileHash)
		if err != nil {
			return err
		}
		if record == nil {
			return storage.ErrNotFound
		}
		if err := tx.Delete(makeDocumentKey(fileHash)); err != nil {
			return err
		}
		if err := tx.Delete(makeProgressKey(fileHash)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}

	chunks := &ChunkRepository{backend: r.backend}
	_, err = chunks.DeleteByFileHash(ctx, fileHash)
	return err
}

func (r *DocumentRegistry) updateDocument(fileHash string, mutate func(*core.DocumentRecord)) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		record, err := readDocument(tx, fileHash)
		if err != nil {
			return err
		}
		if record == nil {
			return storage.ErrNotFound
		}

		mutate(record)
		record.UpdatedAt = time.Now().UTC()

		if err := tx.Set(makeDocumentKey(fileHash), storage.MarshalDocumentRecord(record)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// readDocument reads a document record; nil without error when missing.
func readDocument(tx *badger.Txn, fileHash string) (*core.DocumentRecord, error) {
	item, err := tx.Get(makeDocumentKey(fileHash))
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var record *core.DocumentRecord
	err = item.Value(func(val []byte) error {
		var err error
		record, err = storage.UnmarshalDocumentRecord(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}
