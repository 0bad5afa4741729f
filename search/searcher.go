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


package search

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/sift/ai"
	"github.com/poiesic/sift/core"
	"github.com/poiesic/sift/scoring"
	"github.com/poiesic/sift/storage"
)

// overscanFactor is how many candidates beyond the requested limit the
// vector store is asked for, so ranking boosts can promote candidates
// past the raw similarity cutoff.
const overscanFactor = 4

// Searcher provides ranked semantic search over indexed messages.
type Searcher struct {
	messages storage.MessageRepository
	vectors  storage.VectorStore
	provider ai.Provider
	engine   *scoring.Engine
	cache    *resultCache
	monitor  Monitor
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithMonitor sets a monitor receiving callbacks at each search stage.
func WithMonitor(monitor Monitor) Option {
	return func(s *Searcher) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		s.monitor = monitor
		return nil
	}
}

// WithCacheTTL overrides the result cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Searcher) error {
		if ttl > 0 {
			s.cache.ttl = ttl
		}
		return nil
	}
}

// WithScoringEngine overrides the scoring engine, mainly so tests can
// inject a fixed clock.
func WithScoringEngine(engine *scoring.Engine) Option {
	return func(s *Searcher) error {
		if engine != nil {
			s.engine = engine
		}
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	messages storage.MessageRepository,
	vectors storage.VectorStore,
	provider ai.Provider,
	opts ...Option,
) (*Searcher, error) {
	if messages == nil {
		return nil, ErrMessageRepositoryRequired
	}
	if vectors == nil {
		return nil, ErrVectorStoreRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}

	cache, err := newResultCache(DefaultCacheTTL)
	if err != nil {
		return nil, err
	}

	s := &Searcher{
		messages: messages,
		vectors:  vectors,
		provider: provider,
		engine:   scoring.NewEngine(),
		cache:    cache,
		monitor:  &noopMonitor{},
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			s.cache.close()
			return nil, err
		}
	}

	return s, nil
}

// Close releases the result cache.
func (s *Searcher) Close() {
	s.cache.close()
}

// Search embeds the query, ranks nearest-neighbor candidates with the
// scoring engine, and returns up to limit results ordered by final
// score. Repeated identical searches within the cache TTL are served
// from cache.
func (s *Searcher) Search(ctx context.Context, queryText string, qctx core.QueryContext, limit int) ([]core.ScoredResult, error) {
	if strings.TrimSpace(queryText) == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	s.monitor.Start(queryText)

	key := cacheKey(queryText, qctx, limit)
	if cached, ok := s.cache.get(key); ok {
		s.monitor.CacheHit(queryText)
		return cached, nil
	}

	embedding, err := s.provider.Embedder().EmbedText(ctx, queryText)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", queryText, "err", err)
		return nil, err
	}
	s.monitor.AfterEmbedding(len(embedding))

	overscan := limit * overscanFactor
	if overscan > storage.MaxBatchSize {
		overscan = storage.MaxBatchSize
	}
	matches, err := s.vectors.Query(ctx, embedding, overscan, nil)
	if err != nil {
		s.logger.Error("error querying vector store", "err", err)
		return nil, err
	}

	ids := make([]core.ID, len(matches))
	for i, match := range matches {
		ids[i] = match.Id
	}
	s.monitor.AfterVectorQuery(ids)

	if len(matches) == 0 {
		results := []core.ScoredResult{}
		s.monitor.Finish(results)
		return results, nil
	}

	candidates, err := s.messages.GetMessages(ctx, ids...)
	if err != nil {
		s.logger.Error("error retrieving candidate messages", "count", len(ids), "err", err)
		return nil, err
	}
	byID := make(map[core.ID]*core.Message, len(candidates))
	for _, candidate := range candidates {
		byID[candidate.Id] = candidate
	}

	results := make([]core.ScoredResult, 0, len(matches))
	for _, match := range matches {
		message, ok := byID[match.Id]
		if !ok {
			continue
		}

		// Rank on the metadata that rode along with the match; on a
		// decode failure fall back to the stored enrichment
		enrichment, decodeErr := storage.DecodeEnrichment(match.Meta)
		if decodeErr != nil {
			s.logger.Warn("undecodable candidate metadata", "id", match.Id, "err", decodeErr)
			enrichment = message.Enrichment
		}
		message.Enrichment = enrichment

		results = append(results, s.engine.Score(scoring.Input{
			BaseSimilarity: float64(match.Distance),
			ProjectBoost:   ProjectBoost(qctx.Project, ProjectForSession(message.SessionID)),
			Message:        message,
			Query:          qctx,
		}))
	}

	scoring.Sort(results)
	if len(results) > limit {
		results = results[:limit]
	}

	s.cache.put(key, results)
	s.monitor.Finish(results)

	return results, nil
}

// SearchMode runs Search with the query context a mode preset stands
// for. by_topic without a topic focus fails fast with no side effects.
func (s *Searcher) SearchMode(ctx context.Context, queryText string, mode Mode, topicFocus string, limit int) ([]core.ScoredResult, error) {
	qctx, err := ContextForMode(mode, topicFocus)
	if err != nil {
		return nil, err
	}
	return s.Search(ctx, queryText, qctx, limit)
}
