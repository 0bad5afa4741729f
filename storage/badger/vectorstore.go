package badger

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/sift/core"
	"github.com/poiesic/sift/storage"
)

// VectorStore exposes message records through the flat-map store
// contract: vectors plus string metadata, with enrichment translated
// through the storage metadata codec on both sides. It is a view over
// the same records MessageRepository manages, so there is exactly one
// copy of each enrichment on disk.
type VectorStore struct {
	backend *Backend
}

var _ storage.VectorStore = (*VectorStore)(nil)

// NewVectorStore creates a VectorStore over the backend's message records.
func NewVectorStore(backend *Backend) *VectorStore {
	return &VectorStore{
		backend: backend,
	}
}

// Upsert writes one record's vector and metadata. The message must
// already exist; records are created through MessageRepository, which
// owns the transcript fields the flat map does not carry.
func (s *VectorStore) Upsert(ctx context.Context, id core.ID, vector []float32, meta map[string]string) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := s.upsertOne(tx, id, vector, meta); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// UpsertBatch writes up to storage.MaxBatchSize records in one
// transaction. Oversized batches fail before any write.
func (s *VectorStore) UpsertBatch(ctx context.Context, items []storage.UpsertItem) error {
	if len(items) > storage.MaxBatchSize {
		return fmt.Errorf("%w: %d items", storage.ErrBatchTooLarge, len(items))
	}
	return s.backend.WithTx(func(tx *badger.Txn) error {
		for _, item := range items {
			if err := s.upsertOne(tx, item.Id, item.Vector, item.Meta); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Query returns up to topK nearest neighbors, most similar first. A
// non-nil filter keeps only records whose metadata contains every
// filter entry. Anti-correlated records are floored out, so Distance
// is never negative and downstream boosts cannot flip a score's sign.
func (s *VectorStore) Query(ctx context.Context, vector []float32, topK int, filter map[string]string) ([]storage.Match, error) {
	matches, err := s.backend.FindSimilar(ctx, vector, 0, topK*4)
	if err != nil {
		return nil, err
	}

	var results []storage.Match
	err = s.backend.WithTx(func(tx *badger.Txn) error {
		for _, match := range matches {
			if len(results) >= topK {
				break
			}

			message, err := readMessage(tx, makeMessageKey(match.MessageId))
			if err != nil {
				return err
			}
			if message == nil {
				continue
			}

			meta := storage.EncodeEnrichment(message.Enrichment)
			if !metaContains(meta, filter) {
				continue
			}

			results = append(results, storage.Match{
				Id:       match.MessageId,
				Distance: match.Score,
				Meta:     meta,
			})
		}
		return nil
	}, false)

	return results, err
}

// GetByIds returns the metadata maps for the given ids, skipping
// missing records.
func (s *VectorStore) GetByIds(ctx context.Context, ids ...core.ID) ([]map[string]string, error) {
	if len(ids) > storage.MaxBatchSize {
		return nil, fmt.Errorf("%w: %d ids", storage.ErrBatchTooLarge, len(ids))
	}

	var results []map[string]string
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			message, err := readMessage(tx, makeMessageKey(id))
			if err != nil {
				return err
			}
			if message == nil {
				continue
			}
			results = append(results, storage.EncodeEnrichment(message.Enrichment))
		}
		return nil
	}, false)

	return results, err
}

func (s *VectorStore) upsertOne(tx *badger.Txn, id core.ID, vector []float32, meta map[string]string) error {
	message, err := readMessage(tx, makeMessageKey(id))
	if err != nil {
		return err
	}
	if message == nil {
		return fmt.Errorf("%w: message %d", storage.ErrNotFound, id)
	}

	enrichment, err := storage.DecodeEnrichment(meta)
	if err != nil {
		return err
	}

	if vector != nil {
		message.Vector = vector
	}
	message.Enrichment = enrichment

	return tx.Set(makeMessageKey(id), storage.MarshalMessage(message))
}

// metaContains reports whether meta includes every entry of filter.
func metaContains(meta, filter map[string]string) bool {
	for key, want := range filter {
		if meta[key] != want {
			return false
		}
	}
	return true
}

// readMessage reads a message record within the transaction.
func readMessage(tx *badger.Txn, key []byte) (*core.Message, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var message *core.Message
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		message, unmarshalErr = storage.UnmarshalMessage(val)
		return unmarshalErr
	})
	return message, err
}
