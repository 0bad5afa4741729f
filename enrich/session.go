package enrich

import (
	"slices"
	"strings"

	"github.com/poiesic/sift/core"
)

// SessionContext is one session's ordered, validated transcript: the
// unit of back-fill work.
type SessionContext struct {
	SessionID string
	Messages  []*core.Message
}

// BuildSession filters a raw transcript down to its valid entries and
// renumbers them contiguously. Entries with empty content or an unknown
// role are dropped, the remainder is ordered by its original position,
// and positions (and the deterministic ids derived from them) are
// reassigned 0..M-1 over the M survivors. Returns the context and the
// number of dropped entries.
func BuildSession(sessionID string, raw []*core.Message) (*SessionContext, int) {
	valid := make([]*core.Message, 0, len(raw))
	dropped := 0

	for _, message := range raw {
		if message == nil ||
			strings.TrimSpace(message.Contents) == "" ||
			core.ValidateRole(message.Role) != nil {
			dropped++
			continue
		}
		valid = append(valid, message)
	}

	slices.SortStableFunc(valid, func(a, b *core.Message) int {
		return a.Position - b.Position
	})

	for i, message := range valid {
		message.SessionID = sessionID
		message.Position = i
		message.Id = core.MessageID(sessionID, message.Role, i)
	}

	return &SessionContext{SessionID: sessionID, Messages: valid}, dropped
}
