package scoring

import (
	"testing"
	"time"

	"github.com/poiesic/sift/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) Option {
	return WithClock(func() time.Time { return t })
}

func candidate(id core.ID, enrichment core.Enrichment) *core.Message {
	return &core.Message{
		Id:         id,
		SessionID:  "sess-score",
		Role:       core.RoleAssistant,
		Contents:   "Candidate message",
		CreatedAt:  time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Enrichment: enrichment,
	}
}

func TestScore_NeutralDefaults(t *testing.T) {
	engine := NewEngine()

	result := engine.Score(Input{
		BaseSimilarity: 0.8,
		ProjectBoost:   1.0,
		Message:        candidate(1, core.Enrichment{}),
	})

	b := result.Breakdown
	assert.Equal(t, 1.0, b.TopicBoost)
	assert.Equal(t, 1.0, b.QualityBoost)
	assert.Equal(t, 1.0, b.TroubleshootingBoost)
	assert.Equal(t, 1.0, b.ValidationBoost)
	assert.Equal(t, 1.0, b.RecencyBoost)
	assert.Equal(t, 1.0, b.PreferenceMultiplier)
	assert.InDelta(t, 0.8, b.FinalScore, 1e-9)
}

func TestScore_NilMessageNeverErrors(t *testing.T) {
	engine := NewEngine()

	assert.NotPanics(t, func() {
		result := engine.Score(Input{BaseSimilarity: 0.5, ProjectBoost: 1.2})
		assert.InDelta(t, 0.6, result.Breakdown.FinalScore, 1e-9)
	})
}

func TestScore_TopicBoost(t *testing.T) {
	engine := NewEngine()
	enrichment := core.Enrichment{
		DetectedTopics: map[string]float64{"database": 1.6},
	}

	result := engine.Score(Input{
		BaseSimilarity: 1.0,
		ProjectBoost:   1.0,
		Message:        candidate(1, enrichment),
		Query:          core.QueryContext{TopicFocus: "database"},
	})
	assert.InDelta(t, 1.8, result.Breakdown.TopicBoost, 1e-9)

	// Focus on an undetected topic gives no boost
	result = engine.Score(Input{
		BaseSimilarity: 1.0,
		ProjectBoost:   1.0,
		Message:        candidate(1, enrichment),
		Query:          core.QueryContext{TopicFocus: "frontend"},
	})
	assert.Equal(t, 1.0, result.Breakdown.TopicBoost)
}

func TestScore_ValidationPreferences(t *testing.T) {
	engine := NewEngine()
	validated := core.Enrichment{IsValidated: true, SolutionConfidence: 1.9}
	refuted := core.Enrichment{IsRefuted: true, SolutionConfidence: 0.3}
	unknown := core.Enrichment{SolutionConfidence: 1.0}

	tests := []struct {
		name       string
		preference core.ValidationPreference
		enrichment core.Enrichment
		want       float64
	}{
		{"validated_only boosts validated", core.PreferenceValidatedOnly, validated, 2.0},
		{"validated_only suppresses refuted", core.PreferenceValidatedOnly, refuted, 0.1},
		{"validated_only dampens unknown", core.PreferenceValidatedOnly, unknown, 0.7},
		{"include_failures boosts refuted", core.PreferenceIncludeFailures, refuted, 1.5},
		{"include_failures leaves others", core.PreferenceIncludeFailures, validated, 1.0},
		{"neutral uses confidence", core.PreferenceNeutral, validated, 1.9},
		{"neutral defaults missing confidence", core.PreferenceNeutral, core.Enrichment{}, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.Score(Input{
				BaseSimilarity: 1.0,
				ProjectBoost:   1.0,
				Message:        candidate(1, tt.enrichment),
				Query:          core.QueryContext{ValidationPreference: tt.preference},
			})
			assert.InDelta(t, tt.want, result.Breakdown.ValidationBoost, 1e-9)
		})
	}
}

func TestScore_ValidatedOutranksRefuted(t *testing.T) {
	// With validated_only, a refuted candidate must score strictly below
	// a validated one when every other factor is equal
	engine := NewEngine()
	query := core.QueryContext{ValidationPreference: core.PreferenceValidatedOnly}

	validated := engine.Score(Input{
		BaseSimilarity: 0.8,
		ProjectBoost:   1.0,
		Message:        candidate(1, core.Enrichment{IsValidated: true, SolutionQualityScore: 2.0}),
		Query:          query,
	})
	refuted := engine.Score(Input{
		BaseSimilarity: 0.8,
		ProjectBoost:   1.0,
		Message:        candidate(2, core.Enrichment{IsRefuted: true, SolutionQualityScore: 2.0}),
		Query:          query,
	})

	assert.Greater(t, validated.Breakdown.FinalScore, refuted.Breakdown.FinalScore)
}

func TestScore_TroubleshootingBoost(t *testing.T) {
	engine := NewEngine()
	message := candidate(1, core.Enrichment{})
	message.Contents = "The error crashed with a panic, here is the stack trace"

	result := engine.Score(Input{
		BaseSimilarity: 1.0,
		ProjectBoost:   1.0,
		Message:        message,
		Query:          core.QueryContext{TroubleshootingMode: true},
	})
	assert.Greater(t, result.Breakdown.TroubleshootingBoost, 1.0)
	assert.LessOrEqual(t, result.Breakdown.TroubleshootingBoost, 2.5)

	// Off by default
	result = engine.Score(Input{
		BaseSimilarity: 1.0,
		ProjectBoost:   1.0,
		Message:        message,
	})
	assert.Equal(t, 1.0, result.Breakdown.TroubleshootingBoost)
}

func TestScore_RecencyBoost(t *testing.T) {
	now := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	engine := NewEngine(fixedClock(now))

	fresh := candidate(1, core.Enrichment{})
	fresh.CreatedAt = now.Add(-1 * time.Hour)

	stale := candidate(2, core.Enrichment{})
	stale.CreatedAt = now.Add(-60 * 24 * time.Hour)

	query := core.QueryContext{PreferRecent: true}

	freshResult := engine.Score(Input{BaseSimilarity: 1.0, ProjectBoost: 1.0, Message: fresh, Query: query})
	staleResult := engine.Score(Input{BaseSimilarity: 1.0, ProjectBoost: 1.0, Message: stale, Query: query})

	assert.Greater(t, freshResult.Breakdown.RecencyBoost, 1.4)
	assert.Less(t, staleResult.Breakdown.RecencyBoost, 1.1)
	assert.GreaterOrEqual(t, staleResult.Breakdown.RecencyBoost, 1.0)

	// Fresh message also earns the prefer_recent multiplier
	assert.InDelta(t, 1.3, freshResult.Breakdown.PreferenceMultiplier, 1e-9)
	assert.Equal(t, 1.0, staleResult.Breakdown.PreferenceMultiplier)
}

func TestScore_PreferSolutionsMultiplier(t *testing.T) {
	engine := NewEngine()
	query := core.QueryContext{PreferSolutions: true}

	strong := engine.Score(Input{
		BaseSimilarity: 1.0,
		ProjectBoost:   1.0,
		Message:        candidate(1, core.Enrichment{SolutionQualityScore: 2.1}),
		Query:          query,
	})
	weak := engine.Score(Input{
		BaseSimilarity: 1.0,
		ProjectBoost:   1.0,
		Message:        candidate(2, core.Enrichment{SolutionQualityScore: 1.2}),
		Query:          query,
	})

	assert.InDelta(t, 1.8, strong.Breakdown.PreferenceMultiplier, 1e-9)
	assert.Equal(t, 1.0, weak.Breakdown.PreferenceMultiplier)
}

func TestSort_DescendingWithIDTieBreak(t *testing.T) {
	results := []core.ScoredResult{
		{Message: candidate(7, core.Enrichment{}), Breakdown: core.ScoreBreakdown{FinalScore: 0.5}},
		{Message: candidate(3, core.Enrichment{}), Breakdown: core.ScoreBreakdown{FinalScore: 0.9}},
		{Message: candidate(5, core.Enrichment{}), Breakdown: core.ScoreBreakdown{FinalScore: 0.5}},
	}

	Sort(results)

	require.Len(t, results, 3)
	assert.Equal(t, core.ID(3), results[0].Message.Id)
	assert.Equal(t, core.ID(5), results[1].Message.Id)
	assert.Equal(t, core.ID(7), results[2].Message.Id)
}
