package search

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/sift/ai/mock"
	"github.com/poiesic/sift/core"
	"github.com/poiesic/sift/storage"
	"github.com/poiesic/sift/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMonitor struct {
	started   int
	cacheHits int
	embedDims int
	queried   []core.ID
	finished  int
}

func (m *recordingMonitor) Start(_ string)                 { m.started++ }
func (m *recordingMonitor) CacheHit(_ string)              { m.cacheHits++ }
func (m *recordingMonitor) AfterEmbedding(d int)           { m.embedDims = d }
func (m *recordingMonitor) AfterVectorQuery(ids []core.ID) { m.queried = ids }
func (m *recordingMonitor) Finish(_ []core.ScoredResult)   { m.finished++ }

func newTestSearcher(t *testing.T, opts ...Option) (*Searcher, storage.MessageRepository, *mock.MockProvider) {
	t.Helper()

	messageRepo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	provider := mock.NewMockProvider()
	searcher, err := NewSearcher(messageRepo, badger.NewVectorStore(backend), provider, opts...)
	require.NoError(t, err)
	t.Cleanup(searcher.Close)

	return searcher, messageRepo, provider
}

func seedCandidate(t *testing.T, repo storage.MessageRepository, sessionID string, position int, contents string, vector []float32, enrichment core.Enrichment) *core.Message {
	t.Helper()

	message := &core.Message{
		Id:         core.MessageID(sessionID, core.RoleAssistant, position),
		SessionID:  sessionID,
		Role:       core.RoleAssistant,
		Contents:   contents,
		Position:   position,
		CreatedAt:  time.Now().Add(-time.Hour),
		Vector:     vector,
		Enrichment: enrichment,
	}
	require.NoError(t, repo.AddMessages(context.Background(), message))
	return message
}

func queryVector() []float32 {
	return []float32{1, 0, 0}
}

func withFixedQueryEmbedding(provider *mock.MockProvider) {
	provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return queryVector(), nil
	}
}

func TestSearch_RanksBySimilarity(t *testing.T) {
	searcher, messageRepo, provider := newTestSearcher(t)
	withFixedQueryEmbedding(provider)

	near := seedCandidate(t, messageRepo, "proj/sess-a", 1,
		"Close match", []float32{1, 0, 0}, core.NewEnrichment())
	far := seedCandidate(t, messageRepo, "proj/sess-b", 1,
		"Weaker match", []float32{0.6, 0.8, 0}, core.NewEnrichment())

	results, err := searcher.Search(context.Background(), "connection timeout fix", core.QueryContext{}, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, near.Id, results[0].Message.Id)
	assert.Equal(t, far.Id, results[1].Message.Id)
	assert.Greater(t, results[0].Breakdown.FinalScore, results[1].Breakdown.FinalScore)
	assert.InDelta(t, 1.0, results[0].Breakdown.BaseSimilarity, 1e-6)
}

func TestSearch_ValidationPreferenceReordersResults(t *testing.T) {
	searcher, messageRepo, provider := newTestSearcher(t)
	withFixedQueryEmbedding(provider)

	validated := core.NewEnrichment()
	validated.IsSolutionAttempt = true
	validated.IsValidated = true
	validated.SolutionConfidence = 1.9

	refuted := core.NewEnrichment()
	refuted.IsSolutionAttempt = true
	refuted.IsRefuted = true
	refuted.SolutionConfidence = 0.3

	// The refuted candidate is closer in embedding space
	refutedMsg := seedCandidate(t, messageRepo, "proj/sess-r", 1,
		"Try downgrading the driver", []float32{1, 0, 0}, refuted)
	validatedMsg := seedCandidate(t, messageRepo, "proj/sess-v", 1,
		"Fixed by increasing the pool size", []float32{0.9, 0.436, 0}, validated)

	qctx := core.QueryContext{ValidationPreference: core.PreferenceValidatedOnly}
	results, err := searcher.Search(context.Background(), "database timeout", qctx, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, validatedMsg.Id, results[0].Message.Id)
	assert.Equal(t, refutedMsg.Id, results[1].Message.Id)
	assert.Equal(t, 2.0, results[0].Breakdown.ValidationBoost)
	assert.Equal(t, 0.1, results[1].Breakdown.ValidationBoost)
}

func TestSearch_ProjectAffinityBoost(t *testing.T) {
	searcher, messageRepo, provider := newTestSearcher(t)
	withFixedQueryEmbedding(provider)

	same := seedCandidate(t, messageRepo, "work/api/sess-1", 1,
		"Same project", []float32{1, 0, 0}, core.NewEnrichment())
	sibling := seedCandidate(t, messageRepo, "work/web/sess-2", 1,
		"Sibling project", []float32{1, 0, 0}, core.NewEnrichment())
	unrelated := seedCandidate(t, messageRepo, "other/sess-3", 1,
		"Unrelated project", []float32{1, 0, 0}, core.NewEnrichment())

	qctx := core.QueryContext{Project: "work/api"}
	results, err := searcher.Search(context.Background(), "anything", qctx, 10)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, same.Id, results[0].Message.Id)
	assert.InDelta(t, 1.5, results[0].Breakdown.ProjectBoost, 1e-9)
	assert.Equal(t, sibling.Id, results[1].Message.Id)
	assert.InDelta(t, 1.2, results[1].Breakdown.ProjectBoost, 1e-9)
	assert.Equal(t, unrelated.Id, results[2].Message.Id)
	assert.InDelta(t, 1.0, results[2].Breakdown.ProjectBoost, 1e-9)
}

func TestSearch_LimitCutsRankedList(t *testing.T) {
	searcher, messageRepo, provider := newTestSearcher(t)
	withFixedQueryEmbedding(provider)

	seedCandidate(t, messageRepo, "proj/sess-1", 1, "First", []float32{1, 0, 0}, core.NewEnrichment())
	seedCandidate(t, messageRepo, "proj/sess-2", 1, "Second", []float32{0.9, 0.436, 0}, core.NewEnrichment())
	seedCandidate(t, messageRepo, "proj/sess-3", 1, "Third", []float32{0.8, 0.6, 0}, core.NewEnrichment())

	results, err := searcher.Search(context.Background(), "query", core.QueryContext{}, 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearch_CacheShortCircuits(t *testing.T) {
	monitor := &recordingMonitor{}
	searcher, messageRepo, provider := newTestSearcher(t, WithMonitor(monitor))
	withFixedQueryEmbedding(provider)

	seedCandidate(t, messageRepo, "proj/sess-1", 1, "Hit", []float32{1, 0, 0}, core.NewEnrichment())

	ctx := context.Background()
	first, err := searcher.Search(ctx, "cached query", core.QueryContext{}, 5)
	require.NoError(t, err)
	searcher.cache.wait()

	calls := provider.GetMockEmbedder().CallCount()
	second, err := searcher.Search(ctx, "cached query", core.QueryContext{}, 5)
	require.NoError(t, err)

	assert.Equal(t, calls, provider.GetMockEmbedder().CallCount(), "cached search must not re-embed")
	assert.Equal(t, 1, monitor.cacheHits)
	assert.Equal(t, len(first), len(second))

	// A different context misses the cache
	_, err = searcher.Search(ctx, "cached query", core.QueryContext{PreferRecent: true}, 5)
	require.NoError(t, err)
	assert.Greater(t, provider.GetMockEmbedder().CallCount(), calls)
}

func TestSearch_ValidatesInput(t *testing.T) {
	searcher, _, provider := newTestSearcher(t)

	_, err := searcher.Search(context.Background(), "   ", core.QueryContext{}, 5)
	assert.ErrorIs(t, err, ErrEmptyQuery)

	_, err = searcher.Search(context.Background(), "query", core.QueryContext{}, 0)
	assert.ErrorIs(t, err, ErrInvalidLimit)

	assert.Zero(t, provider.GetMockEmbedder().CallCount(), "invalid input must not reach the embedder")
}

func TestSearch_EmptyStoreReturnsEmpty(t *testing.T) {
	searcher, _, provider := newTestSearcher(t)
	withFixedQueryEmbedding(provider)

	results, err := searcher.Search(context.Background(), "anything", core.QueryContext{}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchMode_ByTopicRequiresFocus(t *testing.T) {
	searcher, _, provider := newTestSearcher(t)

	_, err := searcher.SearchMode(context.Background(), "query", ModeByTopic, "", 5)
	assert.ErrorIs(t, err, ErrTopicFocusRequired)
	assert.Zero(t, provider.GetMockEmbedder().CallCount(), "failed validation must have no side effects")
}

func TestNewSearcher_RequiresDependencies(t *testing.T) {
	messageRepo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()
	vectors := badger.NewVectorStore(backend)

	_, err = NewSearcher(nil, vectors, mock.NewMockProvider())
	assert.ErrorIs(t, err, ErrMessageRepositoryRequired)

	_, err = NewSearcher(messageRepo, nil, mock.NewMockProvider())
	assert.ErrorIs(t, err, ErrVectorStoreRequired)

	_, err = NewSearcher(messageRepo, vectors, nil)
	assert.ErrorIs(t, err, ErrProviderRequired)
}
