package search

import (
	"strconv"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/poiesic/sift/core"
)

// DefaultCacheTTL bounds how long a cached result set may serve. There
// is no explicit invalidation on new writes; staleness is TTL-only.
const DefaultCacheTTL = 5 * time.Minute

// resultCache is a TTL cache of ranked result sets keyed by the query
// text plus the canonical query context.
type resultCache struct {
	cache *ristretto.Cache[string, []core.ScoredResult]
	ttl   time.Duration
}

func newResultCache(ttl time.Duration) (*resultCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, []core.ScoredResult]{
		NumCounters: 10_000,
		MaxCost:     1_000,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &resultCache{cache: cache, ttl: ttl}, nil
}

// cacheKey canonicalizes one search invocation. Identical query, context,
// and limit always produce identical keys.
func cacheKey(queryText string, qctx core.QueryContext, limit int) string {
	return queryText + "|" + qctx.Key() + "|limit=" + strconv.Itoa(limit)
}

func (c *resultCache) get(key string) ([]core.ScoredResult, bool) {
	return c.cache.Get(key)
}

func (c *resultCache) put(key string, results []core.ScoredResult) {
	c.cache.SetWithTTL(key, results, 1, c.ttl)
}

// wait blocks until buffered writes are applied. Only needed by tests.
func (c *resultCache) wait() {
	c.cache.Wait()
}

func (c *resultCache) close() {
	c.cache.Close()
}
