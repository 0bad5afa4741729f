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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/sift/core"
	"github.com/poiesic/sift/enrich"
	"github.com/poiesic/sift/storage"
)

// Config holds configuration for a back-fill run.
type Config struct {
	// PoolSize is the number of sessions processed concurrently
	PoolSize int

	// SessionBudget is the wall-clock budget for one session. A session
	// that exceeds it is marked needs_retry and left for the next run.
	SessionBudget time.Duration

	// MaxRetries is the maximum number of attempts for store writes
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// BatchSize is the patch upsert chunk size, capped at the store limit
	BatchSize int

	// ReportInterval is how often to report progress (number of sessions)
	ReportInterval int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		PoolSize:       4,
		SessionBudget:  30 * time.Second,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
		BatchSize:      storage.MaxBatchSize,
		ReportInterval: 10,
	}
}

func (c *Config) normalize() {
	if c.PoolSize < 1 {
		c.PoolSize = 1
	}
	if c.SessionBudget <= 0 {
		c.SessionBudget = 30 * time.Second
	}
	if c.MaxRetries < 1 {
		c.MaxRetries = 1
	}
	if c.BatchSize <= 0 || c.BatchSize > storage.MaxBatchSize {
		c.BatchSize = storage.MaxBatchSize
	}
}

// RunReport summarizes one back-fill run.
type RunReport struct {
	RunID             string
	Candidates        int
	Skipped           int
	PatchesApplied    int
	FullyCovered      int
	PartiallyCovered  int
	NeedsRetry        int
	NeedsManualReview int
	Duration          time.Duration
}

// Runner orchestrates back-fill over every session that still needs it.
type Runner struct {
	messages storage.MessageRepository
	sessions storage.SessionRepository
	vectors  storage.VectorStore
	config   *Config
	progress io.Writer
	logger   *slog.Logger
}

// NewRunner creates a back-fill runner.
// progress: where to write progress output (typically os.Stderr)
func NewRunner(
	messages storage.MessageRepository,
	sessions storage.SessionRepository,
	vectors storage.VectorStore,
	config *Config,
	progress io.Writer,
) (*Runner, error) {
	if messages == nil {
		return nil, ErrMessageRepositoryRequired
	}
	if sessions == nil {
		return nil, ErrSessionRepositoryRequired
	}
	if vectors == nil {
		return nil, ErrVectorStoreRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	config.normalize()
	if progress == nil {
		progress = io.Discard
	}

	return &Runner{
		messages: messages,
		sessions: sessions,
		vectors:  vectors,
		config:   config,
		progress: progress,
		logger:   slog.Default(),
	}, nil
}

// Run executes one back-fill pass. Sessions in needs_manual_review are
// never selected; everything else short of fully covered is fair game.
// Per-session failures are isolated: they mark the session and the run
// continues.
func (r *Runner) Run(ctx context.Context) (*RunReport, error) {
	report := &RunReport{RunID: uuid.NewString()}

	candidates, err := r.sessions.ListSessions(ctx,
		core.StateUnprocessed, core.StatePartiallyCovered, core.StateNeedsRetry)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	report.Candidates = len(candidates)

	if len(candidates) == 0 {
		fmt.Fprintf(r.progress, "No sessions need back-fill\n")
		return report, nil
	}

	fmt.Fprintf(r.progress, "Starting back-fill of %d sessions (pool size: %d)\n",
		len(candidates), r.config.PoolSize)

	tracker := NewProgressTracker(r.progress, len(candidates), r.config.ReportInterval)
	tracker.Start()

	pool, err := ants.NewPool(r.config.PoolSize)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, session := range candidates {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			outcome := r.processSession(ctx, report.RunID, session)

			mu.Lock()
			report.PatchesApplied += outcome.patches
			if outcome.skipped {
				report.Skipped++
			}
			switch outcome.state {
			case core.StateFullyCovered:
				report.FullyCovered++
			case core.StatePartiallyCovered:
				report.PartiallyCovered++
			case core.StateNeedsRetry:
				report.NeedsRetry++
			case core.StateNeedsManualReview:
				report.NeedsManualReview++
			}
			mu.Unlock()

			tracker.Increment(1)
		})
		if submitErr != nil {
			wg.Done()
			r.logger.Error("error submitting session work",
				"session", session.ID, "err", submitErr)
		}
	}
	wg.Wait()

	tracker.Finish()
	report.Duration = tracker.Elapsed()

	fmt.Fprintf(r.progress,
		"Back-fill complete: %d covered, %d partial, %d retry, %d manual review, %d patches in %v\n",
		report.FullyCovered, report.PartiallyCovered, report.NeedsRetry,
		report.NeedsManualReview, report.PatchesApplied,
		report.Duration.Round(time.Millisecond))

	return report, nil
}

type sessionOutcome struct {
	state   core.SessionState
	patches int
	skipped bool
}

// processSession runs one session under its own budget and returns the
// state it landed in.
func (r *Runner) processSession(ctx context.Context, runID string, session *core.Session) sessionOutcome {
	started := time.Now()
	budget, cancel := context.WithTimeout(ctx, r.config.SessionBudget)
	defer cancel()

	covered, err := r.probeCovered(budget, session)
	if err == nil && covered {
		if err := r.refreshCoverage(budget, session); err == nil {
			r.finishSession(ctx, session, core.StateFullyCovered, runID, started)
			return sessionOutcome{state: core.StateFullyCovered, skipped: true}
		}
		// Couldn't read the transcript for figures; take the full path
	}

	transcript, err := r.messages.GetSessionMessages(budget, session.ID)
	if err != nil {
		return r.failSession(ctx, session, runID, started, "failed to load transcript", err)
	}
	if len(transcript) == 0 {
		// Nothing stored yet; leave the session alone
		return sessionOutcome{state: session.State, skipped: true}
	}

	result, err := enrich.Backfill(&enrich.SessionContext{
		SessionID: session.ID,
		Messages:  transcript,
	})
	if err != nil {
		if errors.Is(err, enrich.ErrAdjacencyInconsistency) {
			r.logger.Error("adjacency inconsistency, parking session for review",
				"session", session.ID, "err", err)
			r.finishSession(ctx, session, core.StateNeedsManualReview, runID, started)
			return sessionOutcome{state: core.StateNeedsManualReview}
		}
		return r.failSession(ctx, session, runID, started, "back-fill failed", err)
	}

	applied, err := r.applyPatches(budget, transcript, result.Patches)
	if err != nil {
		return r.failSession(ctx, session, runID, started, "failed to apply patches", err)
	}

	session.ChainCoverage = result.ChainCoverage
	session.FeedbackCoverage = result.FeedbackCoverage
	session.ValidatedCount = result.ValidatedCount
	session.RefutedCount = result.RefutedCount

	state := core.StatePartiallyCovered
	if result.ChainCoverage >= 1.0 {
		state = core.StateFullyCovered
	}
	r.finishSession(ctx, session, state, runID, started)

	return sessionOutcome{state: state, patches: applied}
}

// probeCovered checks the transcript's endpoints: when the first
// message already links forward and the last links backward, a prior
// run covered the chain and the session only needs its record
// corrected, not another enrichment pass.
func (r *Runner) probeCovered(ctx context.Context, session *core.Session) (bool, error) {
	if session.MessageCount < 2 || session.State != core.StateNeedsRetry {
		return false, nil
	}

	first, err := r.messages.GetSessionMessageAt(ctx, session.ID, 0)
	if err != nil {
		return false, err
	}
	if first.Enrichment.NextID == nil {
		return false, nil
	}

	last, err := r.messages.GetSessionMessageAt(ctx, session.ID, session.MessageCount-1)
	if err != nil {
		return false, err
	}
	return last.Enrichment.PreviousID != nil, nil
}

// refreshCoverage recomputes the session's coverage figures from the
// enrichment already stored on its transcript. A session whose run was
// interrupted after its patches landed carries stale figures, often
// zero, on its record.
func (r *Runner) refreshCoverage(ctx context.Context, session *core.Session) error {
	transcript, err := r.messages.GetSessionMessages(ctx, session.ID)
	if err != nil {
		return err
	}

	chained := 0
	solutions, linked := 0, 0
	validated, refuted := 0, 0
	for i, message := range transcript {
		e := message.Enrichment
		if i > 0 && e.PreviousID != nil {
			chained++
		}
		if e.IsSolutionAttempt {
			solutions++
			if e.FeedbackID != nil {
				linked++
			}
		}
		if e.IsValidated {
			validated++
		}
		if e.IsRefuted {
			refuted++
		}
	}

	session.ChainCoverage = 1.0
	if len(transcript) > 1 {
		session.ChainCoverage = float64(chained) / float64(len(transcript)-1)
	}
	session.FeedbackCoverage = 1.0
	if solutions > 0 {
		session.FeedbackCoverage = float64(linked) / float64(solutions)
	}
	session.ValidatedCount = validated
	session.RefutedCount = refuted
	return nil
}

// applyPatches merges each patch into the stored metadata and writes the
// result through the vector store in bounded, retried batches.
func (r *Runner) applyPatches(ctx context.Context, transcript []*core.Message, patches []core.Patch) (int, error) {
	if len(patches) == 0 {
		return 0, nil
	}

	byID := make(map[core.ID]*core.Message, len(transcript))
	for _, message := range transcript {
		byID[message.Id] = message
	}

	items := make([]storage.UpsertItem, 0, len(patches))
	for _, patch := range patches {
		message, ok := byID[patch.MessageID]
		if !ok {
			return 0, fmt.Errorf("%w: patched message %d not in transcript", storage.ErrNotFound, patch.MessageID)
		}
		merged := storage.MergeFields(storage.EncodeEnrichment(message.Enrichment), patch.Fields)
		items = append(items, storage.UpsertItem{
			Id:     message.Id,
			Vector: message.Vector,
			Meta:   merged,
		})
	}

	applied := 0
	for start := 0; start < len(items); start += r.config.BatchSize {
		end := start + r.config.BatchSize
		if end > len(items) {
			end = len(items)
		}
		chunk := items[start:end]

		err := RetryWithBackoff(ctx, func() error {
			return r.vectors.UpsertBatch(ctx, chunk)
		}, r.config.MaxRetries, r.config.RetryDelay)
		if err != nil {
			return applied, err
		}
		applied += len(chunk)
	}

	return applied, nil
}

// finishSession records the run on the session. Uses an uncancelled
// context so a blown budget can still persist the resulting state.
func (r *Runner) finishSession(ctx context.Context, session *core.Session, state core.SessionState, runID string, started time.Time) {
	session.State = state
	session.LastRunID = runID
	session.LastRunAt = started
	session.LastRunDuration = time.Since(started)

	if err := r.sessions.PutSession(context.WithoutCancel(ctx), session); err != nil {
		r.logger.Error("error recording session state",
			"session", session.ID, "state", state, "err", err)
	}
}

func (r *Runner) failSession(ctx context.Context, session *core.Session, runID string, started time.Time, msg string, err error) sessionOutcome {
	r.logger.Error(msg, "session", session.ID, "err", err)
	r.finishSession(ctx, session, core.StateNeedsRetry, runID, started)
	return sessionOutcome{state: core.StateNeedsRetry}
}
