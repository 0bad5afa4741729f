package enrich

import (
	"testing"
	"time"

	"github.com/poiesic/sift/core"
	"github.com/poiesic/sift/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transcript(sessionID string, entries ...struct {
	role     core.Role
	contents string
}) []*core.Message {
	now := time.Now().UTC()
	messages := make([]*core.Message, len(entries))
	for i, entry := range entries {
		messages[i] = &core.Message{
			Id:        core.MessageID(sessionID, entry.role, i),
			SessionID: sessionID,
			Role:      entry.role,
			Contents:  entry.contents,
			Position:  i,
			CreatedAt: now.Add(time.Duration(i) * time.Minute),
			Enrichment: Enrich(&core.Message{
				Role:     entry.role,
				Contents: entry.contents,
			}),
		}
	}
	return messages
}

func entry(role core.Role, contents string) struct {
	role     core.Role
	contents string
} {
	return struct {
		role     core.Role
		contents string
	}{role, contents}
}

// applyPatches simulates the store round trip: merge each patch into
// the encoded metadata and decode back into the message.
func applyPatches(t *testing.T, messages []*core.Message, patches []core.Patch) {
	t.Helper()
	byID := make(map[core.ID]*core.Message, len(messages))
	for _, m := range messages {
		byID[m.Id] = m
	}
	for _, patch := range patches {
		m, ok := byID[patch.MessageID]
		require.True(t, ok, "patch for unknown message %d", patch.MessageID)

		meta := storage.MergeFields(storage.EncodeEnrichment(m.Enrichment), patch.Fields)
		merged, err := storage.DecodeEnrichment(meta)
		require.NoError(t, err)
		m.Enrichment = merged
	}
}

func TestBackfill_AdjacencyCorrectness(t *testing.T) {
	messages := transcript("sess-adj",
		entry(core.RoleUser, "My build fails with a linker error"),
		entry(core.RoleAssistant, "Try clearing the build cache first"),
		entry(core.RoleUser, "Hmm, let me check"),
		entry(core.RoleAssistant, "You can also pin the toolchain version"),
	)

	result, err := Backfill(&SessionContext{SessionID: "sess-adj", Messages: messages})
	require.NoError(t, err)
	require.NotEmpty(t, result.Patches)

	applyPatches(t, messages, result.Patches)

	for i := range messages {
		e := messages[i].Enrichment
		if i == 0 {
			assert.Nil(t, e.PreviousID, "first message must have no previous link")
		} else {
			require.NotNil(t, e.PreviousID)
			assert.Equal(t, messages[i-1].Id, *e.PreviousID)
		}
		if i == len(messages)-1 {
			assert.Nil(t, e.NextID, "last message must have no next link")
		} else {
			require.NotNil(t, e.NextID)
			assert.Equal(t, messages[i+1].Id, *e.NextID)
		}
	}

	assert.Equal(t, 1.0, result.ChainCoverage)
}

func TestBackfill_Idempotent(t *testing.T) {
	messages := transcript("sess-idem",
		entry(core.RoleUser, "How do I fix this authentication error?"),
		entry(core.RoleAssistant, "Fixed! I updated the token refresh logic, tests passing"),
		entry(core.RoleUser, "Perfect, that worked!"),
	)
	sctx := &SessionContext{SessionID: "sess-idem", Messages: messages}

	first, err := Backfill(sctx)
	require.NoError(t, err)
	require.NotEmpty(t, first.Patches)

	applyPatches(t, messages, first.Patches)

	second, err := Backfill(sctx)
	require.NoError(t, err)
	assert.Empty(t, second.Patches, "unchanged session must produce an empty diff")
}

func TestBackfill_ValidatedSolution(t *testing.T) {
	// Scenario: question, confirmed fix, positive feedback
	messages := transcript("sess-ok",
		entry(core.RoleUser, "The login endpoint returns 500, any ideas?"),
		entry(core.RoleAssistant, "Fixed! The session store was misconfigured, tests passing"),
		entry(core.RoleUser, "Perfect, that worked!"),
	)

	result, err := Backfill(&SessionContext{SessionID: "sess-ok", Messages: messages})
	require.NoError(t, err)
	applyPatches(t, messages, result.Patches)

	solution := messages[1].Enrichment
	assert.True(t, solution.IsSolutionAttempt)
	assert.Greater(t, solution.SolutionQualityScore, 2.0)
	assert.True(t, solution.IsValidated)
	assert.Greater(t, solution.SolutionConfidence, 1.5)
	assert.LessOrEqual(t, solution.SolutionConfidence, 2.0)
	require.NotNil(t, solution.FeedbackID)
	assert.Equal(t, messages[2].Id, *solution.FeedbackID)

	feedback := messages[2].Enrichment
	require.NotNil(t, feedback.RelatedSolutionID)
	assert.Equal(t, messages[1].Id, *feedback.RelatedSolutionID)
	assert.Equal(t, core.SentimentPositive, feedback.Sentiment)

	assert.Equal(t, 1, result.ValidatedCount)
	assert.Equal(t, 0, result.RefutedCount)
	assert.Equal(t, 1.0, result.FeedbackCoverage)
}

func TestBackfill_RefutedSolution(t *testing.T) {
	messages := transcript("sess-bad",
		entry(core.RoleUser, "The login endpoint returns 500, any ideas?"),
		entry(core.RoleAssistant, "Fixed! The session store was misconfigured, tests passing"),
		entry(core.RoleUser, "Still broken, same error"),
	)

	result, err := Backfill(&SessionContext{SessionID: "sess-bad", Messages: messages})
	require.NoError(t, err)
	applyPatches(t, messages, result.Patches)

	solution := messages[1].Enrichment
	assert.True(t, solution.IsRefuted)
	assert.InDelta(t, 0.3, solution.SolutionConfidence, 1e-9)
	assert.Equal(t, -1.0, solution.ValidationStrength)
	assert.Equal(t, 1, result.RefutedCount)
}

func TestBackfill_ShortSessionsProduceNoLinks(t *testing.T) {
	messages := transcript("sess-solo",
		entry(core.RoleUser, "Just one message here"),
	)

	result, err := Backfill(&SessionContext{SessionID: "sess-solo", Messages: messages})
	require.NoError(t, err)

	applyPatches(t, messages, result.Patches)
	assert.Nil(t, messages[0].Enrichment.PreviousID)
	assert.Nil(t, messages[0].Enrichment.NextID)
	assert.Equal(t, 1.0, result.ChainCoverage)
}

func TestBackfill_ConsecutiveAssistantMessagesLeaveSolutionUnlinked(t *testing.T) {
	messages := transcript("sess-twin",
		entry(core.RoleUser, "Deploy keeps failing"),
		entry(core.RoleAssistant, "Fixed! Rolled back the config change"),
		entry(core.RoleAssistant, "You should also rotate the credentials"),
	)

	result, err := Backfill(&SessionContext{SessionID: "sess-twin", Messages: messages})
	require.NoError(t, err)
	applyPatches(t, messages, result.Patches)

	// Same-role neighbor: no feedback pairing, chain links still set
	assert.Nil(t, messages[1].Enrichment.FeedbackID)
	assert.False(t, messages[1].Enrichment.IsValidated)
	require.NotNil(t, messages[1].Enrichment.NextID)
	assert.Equal(t, messages[2].Id, *messages[1].Enrichment.NextID)
}

func TestBackfill_EmptySession(t *testing.T) {
	_, err := Backfill(&SessionContext{SessionID: "sess-none"})
	assert.ErrorIs(t, err, ErrEmptySession)
}

func TestBackfill_DuplicateIDsAbort(t *testing.T) {
	messages := transcript("sess-dup",
		entry(core.RoleUser, "first"),
		entry(core.RoleUser, "second"),
	)
	messages[1].Id = messages[0].Id
	messages[1].Position = 1

	_, err := Backfill(&SessionContext{SessionID: "sess-dup", Messages: messages})
	assert.ErrorIs(t, err, ErrAdjacencyInconsistency)
}

func TestBackfill_NonContiguousPositionsAbort(t *testing.T) {
	messages := transcript("sess-gap",
		entry(core.RoleUser, "first"),
		entry(core.RoleAssistant, "second"),
	)
	messages[1].Position = 5

	_, err := Backfill(&SessionContext{SessionID: "sess-gap", Messages: messages})
	assert.ErrorIs(t, err, ErrAdjacencyInconsistency)
}
