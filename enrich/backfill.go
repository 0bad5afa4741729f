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


package enrich

import (
	"fmt"
	"log/slog"

	"github.com/poiesic/sift/analysis"
	"github.com/poiesic/sift/core"
	"github.com/poiesic/sift/storage"
)

// Result is the outcome of one session's back-fill pass.
type Result struct {
	// Patches holds the changed fields per message, empty for an
	// already-covered session.
	Patches []core.Patch

	// ChainCoverage is the fraction of messages after the first with a
	// previous link, once patches apply. 1.0 for complete coverage.
	ChainCoverage float64

	// FeedbackCoverage is the fraction of solution attempts with a
	// linked feedback message. 1.0 when there are no solutions.
	FeedbackCoverage float64

	ValidatedCount int
	RefutedCount   int

	// PairFailures counts solution/feedback pairs whose classification
	// panicked and was skipped. The rest of the session still processed.
	PairFailures int
}

// Backfill computes adjacency links and solution/feedback pairing over
// one full session transcript and returns the metadata patches needed
// to bring the stored enrichment up to date.
//
// The pass is a pure function of the transcript: it recomputes the
// content-only enrichment, layers chain fields on top, and diffs the
// result against what each message currently carries. An unchanged
// session therefore yields no patches.
func Backfill(sctx *SessionContext) (*Result, error) {
	if sctx == nil || len(sctx.Messages) == 0 {
		return nil, ErrEmptySession
	}
	messages := sctx.Messages

	if err := checkInvariants(messages); err != nil {
		return nil, err
	}

	// Recompute content-only enrichment, then adjacency
	desired := make([]core.Enrichment, len(messages))
	for i, message := range messages {
		desired[i] = Enrich(message)
		if i > 0 {
			desired[i].PreviousID = &messages[i-1].Id
		}
		if i < len(messages)-1 {
			desired[i].NextID = &messages[i+1].Id
		}
	}

	result := &Result{}

	// Pair each solution attempt with the immediate next message when
	// it is authored by the other role
	for i := range messages {
		if !desired[i].IsSolutionAttempt {
			continue
		}
		if i+1 >= len(messages) || messages[i+1].Role == messages[i].Role {
			continue
		}

		if ok := classifyPair(messages, desired, i); !ok {
			result.PairFailures++
		}
	}

	for i := range desired {
		if desired[i].IsValidated {
			result.ValidatedCount++
		}
		if desired[i].IsRefuted {
			result.RefutedCount++
		}

		diff := storage.DiffEnrichment(messages[i].Enrichment, desired[i])
		if len(diff) > 0 {
			result.Patches = append(result.Patches, core.Patch{
				MessageID: messages[i].Id,
				Fields:    diff,
			})
		}
	}

	result.ChainCoverage = chainCoverage(desired)
	result.FeedbackCoverage = feedbackCoverage(desired)

	return result, nil
}

// classifyPair links messages[i] (solution) with messages[i+1]
// (feedback) and applies the classifier's effects. A panic inside
// classification is contained to the pair: both sides keep their
// defaults and the session continues.
func classifyPair(messages []*core.Message, desired []core.Enrichment, i int) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("feedback classification failed, skipping pair",
				"session", messages[i].SessionID,
				"position", messages[i].Position,
				"panic", r)
			desired[i].FeedbackID = nil
			desired[i+1].RelatedSolutionID = nil
			ok = false
		}
	}()

	feedback := analysis.ClassifyFeedback(messages[i+1].Contents)

	desired[i].FeedbackID = &messages[i+1].Id
	desired[i+1].RelatedSolutionID = &messages[i].Id
	desired[i+1].Sentiment = feedback.Sentiment

	analysis.ApplyFeedback(&desired[i], feedback)
	return true
}

// checkInvariants rejects transcripts back-fill cannot safely link:
// duplicate ids would create cycles in the chain, and non-contiguous
// positions mean the caller handed over a partial transcript.
func checkInvariants(messages []*core.Message) error {
	seen := make(map[core.ID]int, len(messages))
	for i, message := range messages {
		if message == nil {
			return fmt.Errorf("%w: nil message at index %d", ErrAdjacencyInconsistency, i)
		}
		if message.Position != i {
			return fmt.Errorf("%w: position %d at index %d", ErrAdjacencyInconsistency, message.Position, i)
		}
		if prev, dup := seen[message.Id]; dup {
			return fmt.Errorf("%w: duplicate id %d at indices %d and %d", ErrAdjacencyInconsistency, message.Id, prev, i)
		}
		seen[message.Id] = i
	}
	return nil
}

func chainCoverage(desired []core.Enrichment) float64 {
	if len(desired) <= 1 {
		return 1.0
	}
	covered := 0
	for i := 1; i < len(desired); i++ {
		if desired[i].PreviousID != nil {
			covered++
		}
	}
	return float64(covered) / float64(len(desired)-1)
}

func feedbackCoverage(desired []core.Enrichment) float64 {
	solutions, linked := 0, 0
	for i := range desired {
		if !desired[i].IsSolutionAttempt {
			continue
		}
		solutions++
		if desired[i].FeedbackID != nil {
			linked++
		}
	}
	if solutions == 0 {
		return 1.0
	}
	return float64(linked) / float64(solutions)
}
