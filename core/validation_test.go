package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validMessage() *Message {
	return &Message{
		Id:        MessageID("proj/sess", RoleUser, 0),
		SessionID: "proj/sess",
		Role:      RoleUser,
		Contents:  "the server keeps crashing",
		CreatedAt: time.Now().Add(-time.Minute),
	}
}

func TestValidateMessage(t *testing.T) {
	t.Run("valid message passes", func(t *testing.T) {
		assert.NoError(t, ValidateMessage(validMessage()))
	})

	t.Run("nil message fails", func(t *testing.T) {
		assert.ErrorIs(t, ValidateMessage(nil), ErrInvalidMessage)
	})

	t.Run("empty session fails", func(t *testing.T) {
		msg := validMessage()
		msg.SessionID = ""
		err := ValidateMessage(msg)
		assert.ErrorIs(t, err, ErrInvalidMessage)
		assert.ErrorIs(t, err, ErrEmptySessionID)
	})

	t.Run("whitespace contents fail", func(t *testing.T) {
		msg := validMessage()
		msg.Contents = "   \n\t"
		assert.ErrorIs(t, ValidateMessage(msg), ErrEmptyContent)
	})

	t.Run("unknown role fails", func(t *testing.T) {
		msg := validMessage()
		msg.Role = Role(99)
		assert.ErrorIs(t, ValidateMessage(msg), ErrInvalidRole)
	})

	t.Run("negative position fails", func(t *testing.T) {
		msg := validMessage()
		msg.Position = -1
		assert.ErrorIs(t, ValidateMessage(msg), ErrInvalidPosition)
	})

	t.Run("future timestamp fails", func(t *testing.T) {
		msg := validMessage()
		msg.CreatedAt = time.Now().Add(time.Hour)
		assert.ErrorIs(t, ValidateMessage(msg), ErrInvalidTimestamp)
	})
}

func TestClamps(t *testing.T) {
	assert.Equal(t, 1.0, ClampQuality(0.2))
	assert.Equal(t, 3.0, ClampQuality(4.5))
	assert.Equal(t, 2.1, ClampQuality(2.1))

	assert.Equal(t, 2.0, ClampTopicScore(12.5))
	assert.Equal(t, 0.05, ClampTopicScore(0.05), "low scores are dropped upstream, not clamped up")

	assert.Equal(t, 0.3, ClampConfidence(0.1))
	assert.Equal(t, 2.0, ClampConfidence(2.4))
}
