package search

import "github.com/poiesic/sift/core"

// Monitor provides hooks to observe the search pipeline.
// Implement this interface to track intermediate steps during search.
type Monitor interface {
	Start(query string)
	CacheHit(query string)
	AfterEmbedding(dimensions int)
	AfterVectorQuery(ids []core.ID)
	Finish(results []core.ScoredResult)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)               {}
func (n *noopMonitor) CacheHit(_ string)            {}
func (n *noopMonitor) AfterEmbedding(_ int)         {}
func (n *noopMonitor) AfterVectorQuery(_ []core.ID) {}
func (n *noopMonitor) Finish(_ []core.ScoredResult) {}
