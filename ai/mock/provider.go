// Package mock provides test double implementations of the embedding
// interfaces. The mocks allow tests to run without external AI services
// and enable controlled, deterministic behavior.
package mock

import "github.com/poiesic/sift/ai"

// MockProvider implements ai.Provider over a MockEmbedder.
type MockProvider struct {
	embedder *MockEmbedder
	mode     ai.Mode
}

var _ ai.Provider = (*MockProvider)(nil)

// NewMockProvider creates a provider that reports itself online.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		embedder: NewMockEmbedder(),
		mode:     ai.ModeOnline,
	}
}

// Embedder returns the underlying mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// GetMockEmbedder returns the concrete mock for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// Mode reports the configured mode.
func (p *MockProvider) Mode() ai.Mode {
	return p.mode
}

// SetMode overrides the reported mode.
func (p *MockProvider) SetMode(mode ai.Mode) {
	p.mode = mode
}

// Close is a no-op.
func (p *MockProvider) Close() error {
	return nil
}
