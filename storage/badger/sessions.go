// Copyright 2025 Poiesic Systems
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


package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/sift/core"
	"github.com/poiesic/sift/storage"
)

// SessionRepository implements storage.SessionRepository for BadgerDB.
type SessionRepository struct {
	backend *Backend
}

var _ storage.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(backend *Backend) *SessionRepository {
	return &SessionRepository{
		backend: backend,
	}
}

// Close is a no-op; the repository holds no resources of its own.
func (r *SessionRepository) Close() error {
	return nil
}

// PutSession inserts or replaces a session record.
func (r *SessionRepository) PutSession(ctx context.Context, session *core.Session) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		if session.InsertedAt.IsZero() {
			session.InsertedAt = now
		}
		session.UpdatedAt = now

		key := makeSessionKey(session.ID)
		value := storage.MarshalSession(session)
		if err := tx.Set(key, value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetSession retrieves a session by ID.
func (r *SessionRepository) GetSession(ctx context.Context, id string) (*core.Session, error) {
	var session *core.Session
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeSessionKey(id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			session, unmarshalErr = storage.UnmarshalSession(val)
			return unmarshalErr
		})
	}, false)

	return session, err
}

// ListSessions returns sessions filtered by state, ordered by session
// ID. With no states given, every session is returned.
func (r *SessionRepository) ListSessions(ctx context.Context, states ...core.SessionState) ([]*core.Session, error) {
	var results []*core.Session
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(sessionPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var session *core.Session
			if err := iter.Item().Value(func(val []byte) error {
				var unmarshalErr error
				session, unmarshalErr = storage.UnmarshalSession(val)
				return unmarshalErr
			}); err != nil {
				return err
			}

			if len(states) > 0 && !slices.Contains(states, session.State) {
				continue
			}
			results = append(results, session)
		}
		return nil
	}, false)

	return results, err
}
