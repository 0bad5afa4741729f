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


// Package scoring ranks search candidates by combining embedding
// similarity with the enrichment signal learned during back-fill. Every
// factor is a multiplicative boost and the full breakdown is returned
// with each result, so any ranking can be explained after the fact.
package scoring

import (
	"math"
	"slices"
	"time"

	"github.com/poiesic/sift/analysis"
	"github.com/poiesic/sift/core"
)

// recencyHalfLife is the age at which the recency signal decays to its
// midpoint under prefer_recent.
const recencyHalfLife = 7 * 24 * time.Hour

// Input is one (query, candidate) scoring request. BaseSimilarity and
// ProjectBoost are supplied by the caller: similarity comes from the
// vector store, project affinity from path rules the engine knows
// nothing about.
type Input struct {
	BaseSimilarity float64
	ProjectBoost   float64
	Message        *core.Message
	Query          core.QueryContext
}

// Engine scores candidates. The clock is injectable so recency tests
// don't depend on wall time.
type Engine struct {
	now func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine's time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates a scoring engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Score computes the final score for one candidate. Candidates missing
// enrichment score with every boost at 1.0; scoring never fails.
func (e *Engine) Score(in Input) core.ScoredResult {
	breakdown := core.ScoreBreakdown{
		BaseSimilarity:       in.BaseSimilarity,
		ProjectBoost:         in.ProjectBoost,
		TopicBoost:           1.0,
		QualityBoost:         1.0,
		TroubleshootingBoost: 1.0,
		ValidationBoost:      1.0,
		RecencyBoost:         1.0,
		PreferenceMultiplier: 1.0,
	}
	if breakdown.ProjectBoost <= 0 {
		breakdown.ProjectBoost = 1.0
	}

	if in.Message != nil {
		enrichment := in.Message.Enrichment

		breakdown.TopicBoost = topicBoost(enrichment.DetectedTopics, in.Query.TopicFocus)
		if enrichment.SolutionQualityScore > 0 {
			breakdown.QualityBoost = enrichment.SolutionQualityScore
		}
		if in.Query.TroubleshootingMode {
			breakdown.TroubleshootingBoost = analysis.TroubleshootingSignal(in.Message.Contents)
		}
		breakdown.ValidationBoost = validationBoost(enrichment, in.Query.ValidationPreference)
		breakdown.RecencyBoost = e.recencyBoost(in.Message.CreatedAt, in.Query.PreferRecent)
	}

	if in.Query.PreferSolutions && breakdown.QualityBoost > 1.5 {
		breakdown.PreferenceMultiplier *= 1.8
	}
	if in.Query.PreferRecent && breakdown.RecencyBoost > 1.2 {
		breakdown.PreferenceMultiplier *= 1.3
	}

	breakdown.FinalScore = breakdown.BaseSimilarity *
		breakdown.ProjectBoost *
		breakdown.TopicBoost *
		breakdown.QualityBoost *
		breakdown.TroubleshootingBoost *
		breakdown.ValidationBoost *
		breakdown.RecencyBoost *
		breakdown.PreferenceMultiplier

	return core.ScoredResult{Message: in.Message, Breakdown: breakdown}
}

// Sort orders results by final score descending; equal scores break by
// ascending message id so rankings are deterministic.
func Sort(results []core.ScoredResult) {
	slices.SortFunc(results, func(a, b core.ScoredResult) int {
		if a.Breakdown.FinalScore > b.Breakdown.FinalScore {
			return -1
		}
		if a.Breakdown.FinalScore < b.Breakdown.FinalScore {
			return 1
		}
		aID, bID := resultID(a), resultID(b)
		if aID < bID {
			return -1
		}
		if aID > bID {
			return 1
		}
		return 0
	})
}

func resultID(r core.ScoredResult) core.ID {
	if r.Message == nil {
		return 0
	}
	return r.Message.Id
}

// topicBoost is 1.0 with no focus, otherwise 1.0 + 0.5 * the focused
// topic's detected score. A candidate without the topic gets no boost.
func topicBoost(topics map[string]float64, focus string) float64 {
	if focus == "" {
		return 1.0
	}
	return 1.0 + 0.5*topics[focus]
}

func validationBoost(e core.Enrichment, preference core.ValidationPreference) float64 {
	switch preference {
	case core.PreferenceValidatedOnly:
		if e.IsValidated {
			return 2.0
		}
		if e.IsRefuted {
			return 0.1
		}
		return 0.7
	case core.PreferenceIncludeFailures:
		if e.IsRefuted {
			return 1.5
		}
		return 1.0
	default:
		if e.SolutionConfidence > 0 {
			return e.SolutionConfidence
		}
		return 1.0
	}
}

// recencyBoost maps message age onto [1.0, 1.5] with a 7-day half-life
// when prefer_recent is set; otherwise it is always 1.0.
func (e *Engine) recencyBoost(createdAt time.Time, preferRecent bool) float64 {
	if !preferRecent || createdAt.IsZero() {
		return 1.0
	}

	age := e.now().Sub(createdAt)
	if age < 0 {
		age = 0
	}

	decay := math.Exp2(-float64(age) / float64(recencyHalfLife))
	return 1.0 + 0.5*decay
}
