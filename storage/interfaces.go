package storage

import (
	"context"
	"time"

	"github.com/poiesic/sift/core"
)

// MaxBatchSize is the store's per-call item limit. Batches handed to
// UpsertBatch or GetByIds must not exceed it; use ChunkIDs/ChunkItems
// to split larger sets.
const MaxBatchSize = 166

// Match is one nearest-neighbor hit from the vector store.
type Match struct {
	Id       core.ID
	Distance float32
	Meta     map[string]string
}

// UpsertItem is one record handed to the vector store.
type UpsertItem struct {
	Id     core.ID
	Vector []float32
	Meta   map[string]string
}

// VectorStore is the vector persistence collaborator. Enrichment rides
// along as a flat string map; composite values are string-encoded via
// the metadata codec in this package.
// Implementations must be thread-safe.
type VectorStore interface {
	// Upsert writes one record's vector and metadata.
	Upsert(ctx context.Context, id core.ID, vector []float32, meta map[string]string) error

	// UpsertBatch writes up to MaxBatchSize records in one call.
	// Returns ErrBatchTooLarge for oversized batches.
	UpsertBatch(ctx context.Context, items []UpsertItem) error

	// Query returns up to topK nearest neighbors of vector, most similar
	// first. A non-nil filter keeps only records whose metadata contains
	// every filter entry.
	Query(ctx context.Context, vector []float32, topK int, filter map[string]string) ([]Match, error)

	// GetByIds returns the metadata maps for the given ids, skipping
	// missing records. At most MaxBatchSize ids per call.
	GetByIds(ctx context.Context, ids ...core.ID) ([]map[string]string, error)
}

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// FindSimilar finds messages similar to the given vector.
	// Returns messages with similarity >= minSimilarity, up to limit results,
	// ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SimilarityMatch, error)

	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// MessageRepository provides operations for managing messages.
type MessageRepository interface {
	Repository

	// AddMessages adds one or more messages to storage. IDs are
	// deterministic (session, role, position) and must be set by the
	// caller; re-adding an existing ID overwrites the record.
	// Sets InsertedAt if not already set.
	AddMessages(ctx context.Context, messages ...*core.Message) error

	// UpdateMessages updates existing messages, refreshing UpdatedAt.
	// Returns ErrNotFound if any message doesn't exist.
	UpdateMessages(ctx context.Context, messages ...*core.Message) error

	// GetMessage retrieves a single message by ID.
	// Returns ErrNotFound if the message doesn't exist.
	GetMessage(ctx context.Context, id core.ID) (*core.Message, error)

	// GetMessages retrieves multiple messages by their IDs.
	// Returns only the messages that exist (no error for missing ones).
	GetMessages(ctx context.Context, ids ...core.ID) ([]*core.Message, error)

	// GetSessionMessages retrieves a session's full transcript ordered
	// by position ascending.
	GetSessionMessages(ctx context.Context, sessionID string) ([]*core.Message, error)

	// GetSessionMessageAt retrieves the message at one position of a
	// session without reading the rest of the transcript.
	// Returns ErrNotFound if no message exists at that position.
	GetSessionMessageAt(ctx context.Context, sessionID string, position int) (*core.Message, error)

	// GetMessagesByDateRange retrieves messages within a time range,
	// where start <= CreatedAt < end, ordered by timestamp.
	GetMessagesByDateRange(ctx context.Context, start, end time.Time) ([]*core.Message, error)

	// DeleteMessages removes messages and their indices by ID.
	// Returns ErrNotFound if any message doesn't exist.
	DeleteMessages(ctx context.Context, ids ...core.ID) error
}

// SessionRepository provides operations for managing session records.
type SessionRepository interface {
	// PutSession inserts or replaces a session record.
	PutSession(ctx context.Context, session *core.Session) error

	// GetSession retrieves a session by ID.
	// Returns ErrNotFound if the session doesn't exist.
	GetSession(ctx context.Context, id string) (*core.Session, error)

	// ListSessions returns sessions filtered by state. With no states
	// given, every session is returned. Order is by session ID.
	ListSessions(ctx context.Context, states ...core.SessionState) ([]*core.Session, error)

	// Close releases resources held by the repository.
	Close() error
}

// ChunkIDs splits ids into chunks of at most MaxBatchSize.
func ChunkIDs(ids []core.ID) [][]core.ID {
	if len(ids) == 0 {
		return nil
	}
	chunks := make([][]core.ID, 0, (len(ids)+MaxBatchSize-1)/MaxBatchSize)
	for start := 0; start < len(ids); start += MaxBatchSize {
		end := start + MaxBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

// ChunkItems splits upsert items into chunks of at most MaxBatchSize.
func ChunkItems(items []UpsertItem) [][]UpsertItem {
	if len(items) == 0 {
		return nil
	}
	chunks := make([][]UpsertItem, 0, (len(items)+MaxBatchSize-1)/MaxBatchSize)
	for start := 0; start < len(items); start += MaxBatchSize {
		end := start + MaxBatchSize
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
