package storage

import (
	"testing"

	"github.com/poiesic/sift/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeEnrichment_RoundTrip(t *testing.T) {
	prev := core.MessageID("sess-1", core.RoleUser, 0)
	next := core.MessageID("sess-1", core.RoleUser, 2)
	feedback := core.MessageID("sess-1", core.RoleUser, 2)

	tests := []struct {
		name       string
		enrichment core.Enrichment
	}{
		{
			name:       "zero value",
			enrichment: core.Enrichment{},
		},
		{
			name: "solution attempt with chain links",
			enrichment: core.Enrichment{
				DetectedTopics:       map[string]float64{"database": 0.8, "performance": 1.6},
				PrimaryTopic:         "performance",
				TopicConfidence:      1.6,
				SolutionQualityScore: 2.1,
				IsSolutionAttempt:    true,
				SolutionCategory:     core.CategoryCodeFix,
				PreviousID:           &prev,
				NextID:               &next,
				FeedbackID:           &feedback,
				SolutionConfidence:   2.0,
			},
		},
		{
			name: "refuted feedback",
			enrichment: core.Enrichment{
				Sentiment:          core.SentimentNegative,
				IsRefuted:          true,
				SolutionConfidence: 0.3,
				ValidationStrength: 1.0,
				OutcomeCertainty:   1.0,
			},
		},
		{
			name: "awkward float values survive",
			enrichment: core.Enrichment{
				TopicConfidence:    0.30000000000000004,
				SolutionConfidence: 1.0 / 3.0,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := EncodeEnrichment(tt.enrichment)
			decoded, err := DecodeEnrichment(meta)
			require.NoError(t, err)
			assert.True(t, decoded.Equal(tt.enrichment),
				"round trip changed enrichment: %+v vs %+v", decoded, tt.enrichment)
		})
	}
}

func TestEncodeEnrichment_OmitsZeroValues(t *testing.T) {
	meta := EncodeEnrichment(core.Enrichment{})
	assert.Empty(t, meta)

	meta = EncodeEnrichment(core.Enrichment{PrimaryTopic: "api"})
	assert.Equal(t, map[string]string{MetaPrimaryTopic: "api"}, meta)
}

func TestDecodeEnrichment_MalformedValues(t *testing.T) {
	tests := []struct {
		name string
		meta map[string]string
	}{
		{"bad topics json", map[string]string{MetaDetectedTopics: "{not json"}},
		{"bad float", map[string]string{MetaTopicConfidence: "high"}},
		{"bad bool", map[string]string{MetaIsValidated: "yep"}},
		{"bad id", map[string]string{MetaPreviousID: "-3"}},
		{"bad category", map[string]string{MetaSolutionCategory: "miracle"}},
		{"bad sentiment", map[string]string{MetaSentiment: "ecstatic"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeEnrichment(tt.meta)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrCodec)
		})
	}
}

func TestDiffEnrichment_IdenticalIsEmpty(t *testing.T) {
	related := core.MessageID("sess-1", core.RoleAssistant, 1)
	enrichment := core.Enrichment{
		PrimaryTopic:       "debugging",
		TopicConfidence:    1.1,
		Sentiment:          core.SentimentPositive,
		IsValidated:        true,
		RelatedSolutionID:  &related,
		SolutionConfidence: 1.8,
	}

	diff := DiffEnrichment(enrichment, enrichment.Clone())
	assert.Empty(t, diff)
}

func TestDiffEnrichment_ChangesAndDeletions(t *testing.T) {
	next := core.MessageID("sess-1", core.RoleUser, 2)

	before := core.Enrichment{
		PrimaryTopic:       "debugging",
		TopicConfidence:    1.1,
		SolutionConfidence: 1.0,
	}
	after := core.Enrichment{
		PrimaryTopic:       "debugging",
		TopicConfidence:    1.4,
		NextID:             &next,
	}

	diff := DiffEnrichment(before, after)
	require.Len(t, diff, 3)
	assert.Equal(t, "1.4", diff[MetaTopicConfidence])
	assert.NotEmpty(t, diff[MetaNextID])
	// Dropped field shows up as a deletion marker
	assert.Contains(t, diff, MetaSolutionConfidence)
	assert.Equal(t, "", diff[MetaSolutionConfidence])
}

func TestMergeFields(t *testing.T) {
	meta := map[string]string{
		MetaPrimaryTopic:       "debugging",
		MetaTopicConfidence:    "1.1",
		MetaSolutionConfidence: "1",
	}
	fields := map[string]string{
		MetaTopicConfidence:    "1.4",
		MetaSolutionConfidence: "",
		MetaIsValidated:        "true",
	}

	merged := MergeFields(meta, fields)
	assert.Equal(t, map[string]string{
		MetaPrimaryTopic:    "debugging",
		MetaTopicConfidence: "1.4",
		MetaIsValidated:     "true",
	}, merged)

	// Inputs are not mutated
	assert.Equal(t, "1.1", meta[MetaTopicConfidence])
}

func TestChunkIDs(t *testing.T) {
	assert.Nil(t, ChunkIDs(nil))

	ids := make([]core.ID, MaxBatchSize*2+10)
	for i := range ids {
		ids[i] = core.ID(i + 1)
	}

	chunks := ChunkIDs(ids)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], MaxBatchSize)
	assert.Len(t, chunks[1], MaxBatchSize)
	assert.Len(t, chunks[2], 10)
	assert.Equal(t, core.ID(1), chunks[0][0])
	assert.Equal(t, core.ID(MaxBatchSize*2+10), chunks[2][9])
}

func TestChunkItems(t *testing.T) {
	items := make([]UpsertItem, MaxBatchSize+1)
	for i := range items {
		items[i] = UpsertItem{Id: core.ID(i + 1)}
	}

	chunks := ChunkItems(items)
	require.Len(t, chunks, 2)
	assert.Len(t, chunks[0], MaxBatchSize)
	assert.Len(t, chunks[1], 1)
}
