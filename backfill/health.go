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


package backfill

import (
	"context"
	"time"

	"github.com/poiesic/sift/ai"
	"github.com/poiesic/sift/core"
	"github.com/poiesic/sift/storage"
)

// HealthReport aggregates indexing health across sessions, or for one
// session when requested by id.
type HealthReport struct {
	Sessions          int
	Unprocessed       int
	PartiallyCovered  int
	FullyCovered      int
	NeedsRetry        int
	NeedsManualReview int

	// ChainCoverage and FeedbackCoverage are means over the reported
	// sessions, in [0, 1].
	ChainCoverage    float64
	FeedbackCoverage float64

	ValidatedCount int
	RefutedCount   int

	// AvgRunDuration averages LastRunDuration over sessions that have
	// completed at least one run.
	AvgRunDuration time.Duration

	// EmbeddingMode reports which embedder the process settled on.
	EmbeddingMode string
}

// Reporter builds health reports from session records.
type Reporter struct {
	sessions storage.SessionRepository
	provider ai.Provider
}

// NewReporter creates a health reporter. provider may be nil when no
// embedding stack is wired (mode reports as unknown).
func NewReporter(sessions storage.SessionRepository, provider ai.Provider) (*Reporter, error) {
	if sessions == nil {
		return nil, ErrSessionRepositoryRequired
	}
	return &Reporter{sessions: sessions, provider: provider}, nil
}

// Health reports aggregate health over every session.
func (r *Reporter) Health(ctx context.Context) (*HealthReport, error) {
	sessions, err := r.sessions.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	return r.build(sessions), nil
}

// SessionHealth reports health for a single session.
// Returns storage.ErrNotFound if the session doesn't exist.
func (r *Reporter) SessionHealth(ctx context.Context, sessionID string) (*HealthReport, error) {
	session, err := r.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return r.build([]*core.Session{session}), nil
}

func (r *Reporter) build(sessions []*core.Session) *HealthReport {
	report := &HealthReport{
		Sessions:      len(sessions),
		EmbeddingMode: "unknown",
	}
	if r.provider != nil {
		report.EmbeddingMode = r.provider.Mode().String()
	}
	if len(sessions) == 0 {
		return report
	}

	var (
		chainSum    float64
		feedbackSum float64
		durationSum time.Duration
		ranCount    int
	)
	for _, session := range sessions {
		switch session.State {
		case core.StateUnprocessed:
			report.Unprocessed++
		case core.StatePartiallyCovered:
			report.PartiallyCovered++
		case core.StateFullyCovered:
			report.FullyCovered++
		case core.StateNeedsRetry:
			report.NeedsRetry++
		case core.StateNeedsManualReview:
			report.NeedsManualReview++
		}

		chainSum += session.ChainCoverage
		feedbackSum += session.FeedbackCoverage
		report.ValidatedCount += session.ValidatedCount
		report.RefutedCount += session.RefutedCount

		if !session.LastRunAt.IsZero() {
			durationSum += session.LastRunDuration
			ranCount++
		}
	}

	report.ChainCoverage = chainSum / float64(len(sessions))
	report.FeedbackCoverage = feedbackSum / float64(len(sessions))
	if ranCount > 0 {
		report.AvgRunDuration = durationSum / time.Duration(ranCount)
	}

	return report
}
