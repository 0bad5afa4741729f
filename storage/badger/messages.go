package badger

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/sift/core"
	"github.com/poiesic/sift/storage"
)

// MessageRepository implements storage.MessageRepository for BadgerDB.
type MessageRepository struct {
	backend *Backend
}

var _ storage.MessageRepository = (*MessageRepository)(nil)

// NewMessageRepository creates a new MessageRepository.
func NewMessageRepository(backend *Backend) *MessageRepository {
	return &MessageRepository{
		backend: backend,
	}
}

// Close is a no-op; the repository holds no resources of its own.
func (r *MessageRepository) Close() error {
	return nil
}

// FindSimilar delegates to the backend.
func (r *MessageRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SimilarityMatch, error) {
	return r.backend.FindSimilar(ctx, vector, minSimilarity, limit)
}

// WithTransaction delegates to the backend.
func (r *MessageRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddMessages adds one or more messages to storage. IDs are derived
// from (session, role, position) by the caller, so re-adding the same
// message overwrites the existing record and keeps its InsertedAt.
func (r *MessageRepository) AddMessages(ctx context.Context, messages ...*core.Message) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, message := range messages {
			if message.Id == 0 {
				return fmt.Errorf("%w: missing id", core.ErrInvalidMessage)
			}

			key := makeMessageKey(message.Id)

			old, err := readMessage(tx, key)
			if err != nil {
				return err
			}

			now := time.Now().UTC()
			if old != nil {
				message.InsertedAt = old.InsertedAt
			} else {
				message.InsertedAt = now
			}
			message.UpdatedAt = now

			value := storage.MarshalMessage(message)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Clean up the stale date index entry on overwrite
			if old != nil && !old.CreatedAt.Equal(message.CreatedAt) {
				if err := tx.Delete(makeMessageDateKey(old.CreatedAt, old.Id)); err != nil {
					return err
				}
			}

			dateKey := makeMessageDateKey(message.CreatedAt, message.Id)
			if err := tx.Set(dateKey, storage.MarshalID(message.Id)); err != nil {
				return err
			}

			posKey := makeSessionPositionKey(message.SessionID, message.Position)
			if err := tx.Set(posKey, storage.MarshalID(message.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// UpdateMessages updates existing messages.
func (r *MessageRepository) UpdateMessages(ctx context.Context, messages ...*core.Message) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, message := range messages {
			key := makeMessageKey(message.Id)

			old, err := readMessage(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			message.InsertedAt = old.InsertedAt
			message.UpdatedAt = time.Now().UTC()

			value := storage.MarshalMessage(message)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			if !old.CreatedAt.Equal(message.CreatedAt) {
				if err := tx.Delete(makeMessageDateKey(old.CreatedAt, old.Id)); err != nil {
					return err
				}
				if err := tx.Set(makeMessageDateKey(message.CreatedAt, message.Id), storage.MarshalID(message.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)
}

// DeleteMessages removes messages and their index entries by ID.
func (r *MessageRepository) DeleteMessages(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeMessageKey(id)

			message, err := readMessage(tx, key)
			if err != nil {
				return err
			}
			if message == nil {
				return storage.ErrNotFound
			}

			if err := tx.Delete(makeMessageDateKey(message.CreatedAt, message.Id)); err != nil {
				return err
			}
			if err := tx.Delete(makeSessionPositionKey(message.SessionID, message.Position)); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetMessage retrieves a single message by ID.
func (r *MessageRepository) GetMessage(ctx context.Context, id core.ID) (*core.Message, error) {
	var result *core.Message
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeMessageKey(id)
		var err error
		result, err = readMessage(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetMessages retrieves multiple messages by their IDs.
func (r *MessageRepository) GetMessages(ctx context.Context, ids ...core.ID) ([]*core.Message, error) {
	var result []*core.Message
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeMessageKey(id)
			message, err := readMessage(tx, key)
			if err != nil {
				return err
			}
			if message != nil {
				result = append(result, message)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetSessionMessages retrieves a session's transcript ordered by
// position ascending, via the session-position index.
func (r *MessageRepository) GetSessionMessages(ctx context.Context, sessionID string) ([]*core.Message, error) {
	var results []*core.Message
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makePartialSessionKey(sessionID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var messageID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				messageID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			message, err := readMessage(tx, makeMessageKey(messageID))
			if err != nil {
				return err
			}
			if message != nil {
				results = append(results, message)
			}
		}
		return nil
	}, false)

	return results, err
}

// GetSessionMessageAt retrieves the message at one position of a
// session without reading the rest of the transcript.
func (r *MessageRepository) GetSessionMessageAt(ctx context.Context, sessionID string, position int) (*core.Message, error) {
	var result *core.Message
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeSessionPositionKey(sessionID, position))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		var messageID core.ID
		if err := item.Value(func(val []byte) error {
			var err error
			messageID, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return err
		}

		result, err = readMessage(tx, makeMessageKey(messageID))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetMessagesByDateRange retrieves messages within a time range.
func (r *MessageRepository) GetMessagesByDateRange(ctx context.Context, start, end time.Time) ([]*core.Message, error) {
	if start.Equal(end) {
		end = start.Add(1 * time.Microsecond)
	}

	var results []*core.Message
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialMessageDateKey(start)
		endKey := makePartialMessageDateKey(end)
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if slices.Compare(key, endKey) > 0 {
				break
			}

			var messageID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				messageID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			message, err := readMessage(tx, makeMessageKey(messageID))
			if err != nil {
				return err
			}
			if message != nil {
				results = append(results, message)
			}
		}
		return nil
	}, false)

	return results, err
}
