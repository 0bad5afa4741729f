package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/sift/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := t.TempDir()
	backend, err := OpenBackend(tmpDir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)

	assert.False(t, backend.IsClosed())

	err = backend.Close()
	require.NoError(t, err)

	assert.True(t, backend.IsClosed())
}

func TestFindSimilar_NoMessages(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	vector := []float32{0.1, 0.2, 0.3}

	results, err := backend.FindSimilar(ctx, vector, 0.5, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFindSimilar_WithMessages(t *testing.T) {
	messageRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		messageRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	now := time.Now().UTC()

	messages := []*core.Message{
		newTestMessage("sess-1", core.RoleUser, 0, "First message", now, []float32{1.0, 0.0, 0.0}),
		newTestMessage("sess-1", core.RoleAssistant, 1, "Second message", now, []float32{0.9, 0.1, 0.0}),
		newTestMessage("sess-1", core.RoleUser, 2, "Third message", now, []float32{0.0, 0.0, 1.0}),
		newTestMessage("sess-1", core.RoleAssistant, 3, "Fourth message without vector", now, nil),
	}

	err = messageRepo.AddMessages(ctx, messages...)
	require.NoError(t, err)

	queryVector := []float32{1.0, 0.0, 0.0}
	results, err := backend.FindSimilar(ctx, queryVector, 0.8, 10)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, messages[0].Id, results[0].MessageId)
	assert.Equal(t, messages[1].Id, results[1].MessageId)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestFindSimilar_Limit(t *testing.T) {
	messageRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		messageRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	now := time.Now().UTC()

	for i := 0; i < 5; i++ {
		role := core.RoleUser
		if i%2 == 1 {
			role = core.RoleAssistant
		}
		msg := newTestMessage("sess-limit", role, i, "message", now, []float32{1.0, 0.0, 0.0})
		require.NoError(t, messageRepo.AddMessages(ctx, msg))
	}

	results, err := backend.FindSimilar(ctx, []float32{1.0, 0.0, 0.0}, 0.5, 3)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestFindSimilar_TiesOrderedByID(t *testing.T) {
	messageRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		messageRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	now := time.Now().UTC()

	a := newTestMessage("sess-tie", core.RoleUser, 0, "same vector a", now, []float32{0.0, 1.0, 0.0})
	b := newTestMessage("sess-tie", core.RoleAssistant, 1, "same vector b", now, []float32{0.0, 1.0, 0.0})
	require.NoError(t, messageRepo.AddMessages(ctx, a, b))

	results, err := backend.FindSimilar(ctx, []float32{0.0, 1.0, 0.0}, 0.5, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Less(t, results[0].MessageId, results[1].MessageId)
}

// newTestMessage builds a message with its deterministic ID set.
func newTestMessage(sessionID string, role core.Role, position int, contents string, createdAt time.Time, vector []float32) *core.Message {
	return &core.Message{
		Id:        core.MessageID(sessionID, role, position),
		SessionID: sessionID,
		Role:      role,
		Contents:  contents,
		Position:  position,
		CreatedAt: createdAt,
		Vector:    vector,
	}
}
