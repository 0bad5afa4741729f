package enrich

import (
	"testing"
	"time"

	"github.com/poiesic/sift/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSession_DropsInvalidEntries(t *testing.T) {
	now := time.Now().UTC()
	raw := []*core.Message{
		{Role: core.RoleUser, Contents: "first valid", Position: 0, CreatedAt: now},
		{Role: core.RoleAssistant, Contents: "   ", Position: 1, CreatedAt: now},
		nil,
		{Role: core.Role(99), Contents: "bad role", Position: 2, CreatedAt: now},
		{Role: core.RoleAssistant, Contents: "second valid", Position: 3, CreatedAt: now},
	}

	sctx, dropped := BuildSession("sess-filter", raw)
	assert.Equal(t, 3, dropped)
	require.Len(t, sctx.Messages, 2)

	// Positions are contiguous over survivors, ids recomputed to match
	for i, message := range sctx.Messages {
		assert.Equal(t, i, message.Position)
		assert.Equal(t, "sess-filter", message.SessionID)
		assert.Equal(t, core.MessageID("sess-filter", message.Role, i), message.Id)
	}
	assert.Equal(t, "first valid", sctx.Messages[0].Contents)
	assert.Equal(t, "second valid", sctx.Messages[1].Contents)
}

func TestBuildSession_OrdersByOriginalPosition(t *testing.T) {
	now := time.Now().UTC()
	raw := []*core.Message{
		{Role: core.RoleAssistant, Contents: "reply", Position: 1, CreatedAt: now},
		{Role: core.RoleUser, Contents: "question", Position: 0, CreatedAt: now},
	}

	sctx, dropped := BuildSession("sess-order", raw)
	assert.Zero(t, dropped)
	require.Len(t, sctx.Messages, 2)
	assert.Equal(t, "question", sctx.Messages[0].Contents)
	assert.Equal(t, "reply", sctx.Messages[1].Contents)
}

func TestBuildSession_Empty(t *testing.T) {
	sctx, dropped := BuildSession("sess-empty", nil)
	assert.Zero(t, dropped)
	assert.Empty(t, sctx.Messages)
}
