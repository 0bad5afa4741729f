package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/sift/ai"
	"github.com/poiesic/sift/core"
	"github.com/poiesic/sift/enrich"
	"github.com/poiesic/sift/storage"
)

// Pipeline orchestrates message ingestion: validation, content-only
// enrichment, storage, and asynchronous embedding generation.
type Pipeline struct {
	messages      storage.MessageRepository
	sessions      storage.SessionRepository
	provider      ai.Provider
	embeddingPool *ants.Pool
	logger        *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding work.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.embeddingPool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	messages storage.MessageRepository,
	sessions storage.SessionRepository,
	provider ai.Provider,
	opts ...Option,
) (*Pipeline, error) {
	if messages == nil {
		return nil, ErrMessageRepositoryRequired
	}
	if sessions == nil {
		return nil, ErrSessionRepositoryRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		messages:      messages,
		sessions:      sessions,
		provider:      provider,
		embeddingPool: pool,
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Push ingests one message in real time. The message gets its
// deterministic id, content-only enrichment, and is stored immediately;
// the embedding is generated asynchronously. Chain fields stay null
// until the session's next back-fill run.
func (p *Pipeline) Push(ctx context.Context, sessionID string, role core.Role, contents string, createdAt time.Time) (*core.Message, error) {
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	session, err := p.loadOrCreateSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	message := &core.Message{
		SessionID: sessionID,
		Role:      role,
		Contents:  contents,
		Position:  session.MessageCount,
		CreatedAt: createdAt,
	}
	message.Id = core.MessageID(sessionID, role, message.Position)

	if err := core.ValidateMessage(message); err != nil {
		return nil, err
	}

	message.Enrichment = enrich.Enrich(message)

	if err := p.messages.AddMessages(ctx, message); err != nil {
		return nil, err
	}

	session.MessageCount++
	// A new message reopens the chain: the previous tail's next link is
	// now stale, so a fully covered session drops back a state
	if session.State == core.StateFullyCovered {
		session.State = core.StatePartiallyCovered
	}
	if err := p.sessions.PutSession(ctx, session); err != nil {
		return nil, err
	}

	p.submitEmbedding(message.Id)

	return message, nil
}

// Replay re-ingests a full session transcript, replacing whatever was
// stored before. The prior transcript is deleted first, so a shorter
// replay leaves no stale tail and role changes leave no orphan records.
// Invalid entries are dropped and positions renumbered contiguously
// over the survivors. The session resets to unprocessed, which forces
// a complete back-fill re-run.
// Returns the number of stored messages and the number dropped.
func (p *Pipeline) Replay(ctx context.Context, sessionID string, raw []*core.Message) (int, int, error) {
	sctx, dropped := enrich.BuildSession(sessionID, raw)
	if dropped > 0 {
		p.logger.Warn("dropped invalid transcript entries",
			"session", sessionID, "dropped", dropped)
	}

	now := time.Now().UTC()
	for _, message := range sctx.Messages {
		if message.CreatedAt.IsZero() {
			message.CreatedAt = now
		}
		if err := core.ValidateMessage(message); err != nil {
			return 0, dropped, err
		}
		message.Enrichment = enrich.Enrich(message)
	}

	existing, err := p.messages.GetSessionMessages(ctx, sessionID)
	if err != nil {
		return 0, dropped, err
	}
	if len(existing) > 0 {
		stale := make([]core.ID, len(existing))
		for i, message := range existing {
			stale[i] = message.Id
		}
		if err := p.messages.DeleteMessages(ctx, stale...); err != nil {
			return 0, dropped, err
		}
	}

	if len(sctx.Messages) > 0 {
		if err := p.messages.AddMessages(ctx, sctx.Messages...); err != nil {
			return 0, dropped, err
		}
	}

	session, err := p.loadOrCreateSession(ctx, sessionID)
	if err != nil {
		return 0, dropped, err
	}
	session.MessageCount = len(sctx.Messages)
	session.State = core.StateUnprocessed
	session.ChainCoverage = 0
	session.FeedbackCoverage = 0
	if err := p.sessions.PutSession(ctx, session); err != nil {
		return 0, dropped, err
	}

	ids := make([]core.ID, len(sctx.Messages))
	for i, message := range sctx.Messages {
		ids[i] = message.Id
	}
	p.submitEmbedding(ids...)

	return len(sctx.Messages), dropped, nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
}

func (p *Pipeline) loadOrCreateSession(ctx context.Context, sessionID string) (*core.Session, error) {
	session, err := p.sessions.GetSession(ctx, sessionID)
	if err == nil {
		return session, nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		return &core.Session{ID: sessionID, State: core.StateUnprocessed}, nil
	}
	return nil, err
}

func (p *Pipeline) submitEmbedding(ids ...core.ID) {
	if len(ids) == 0 {
		return
	}
	err := p.embeddingPool.Submit(func() {
		if err := p.embedMessages(context.Background(), ids...); err != nil {
			p.logger.Error("error processing embeddings", "err", err)
		}
	})
	if err != nil {
		p.logger.Error("error submitting embedding work", "err", err)
	}
}
