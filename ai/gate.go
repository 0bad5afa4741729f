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


package ai

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Mode is the gate's connectivity state.
type Mode int32

const (
	// ModeChecking means no embedding request has forced a probe yet.
	ModeChecking Mode = iota

	// ModeOnline means the remote embedder answered the probe and
	// serves all requests for the rest of the process.
	ModeOnline

	// ModeOffline means the probe failed and the local fallback serves
	// all requests for the rest of the process.
	ModeOffline
)

// String returns the mode's name.
func (m Mode) String() string {
	switch m {
	case ModeChecking:
		return "checking"
	case ModeOnline:
		return "online"
	case ModeOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// probeRetryDelay is the single backoff applied when the probe is
// rate limited before the gate latches offline.
const probeRetryDelay = 2 * time.Second

// Gate selects between a remote embedder and a local fallback, exactly
// once per process. The first embedding request triggers a reachability
// probe against the remote service; the outcome is latched and never
// revisited, since mixing vectors from two embedding models would make
// their similarities incomparable.
//
// Gate implements both Embedder and Provider.
type Gate struct {
	primary      Embedder
	fallback     Embedder
	probeTimeout time.Duration
	logger       *slog.Logger

	once sync.Once
	mode atomic.Int32
}

var (
	_ Embedder = (*Gate)(nil)
	_ Provider = (*Gate)(nil)
)

// NewGate creates a gate over a remote embedder and a local fallback.
func NewGate(primary, fallback Embedder, probeTimeout time.Duration) *Gate {
	if probeTimeout <= 0 {
		probeTimeout = 5 * time.Second
	}
	return &Gate{
		primary:      primary,
		fallback:     fallback,
		probeTimeout: probeTimeout,
		logger:       slog.Default().With("component", "embedding-gate"),
	}
}

// Mode reports the gate's current state.
func (g *Gate) Mode() Mode {
	return Mode(g.mode.Load())
}

// Embedder returns the gate itself; the probe runs on first use.
func (g *Gate) Embedder() Embedder {
	return g
}

// Close releases nothing; the gate holds no connections of its own.
func (g *Gate) Close() error {
	return nil
}

// EmbedText embeds one text through whichever embedder the gate settles on.
func (g *Gate) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return g.active(ctx).EmbedText(ctx, text)
}

// EmbedTexts embeds a batch through whichever embedder the gate settles on.
func (g *Gate) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	return g.active(ctx).EmbedTexts(ctx, texts)
}

// active resolves the gate on first call and returns the chosen embedder.
func (g *Gate) active(ctx context.Context) Embedder {
	g.once.Do(func() { g.resolve(ctx) })
	if g.Mode() == ModeOnline {
		return g.primary
	}
	return g.fallback
}

// resolve probes the remote embedder once. A rate-limited probe gets a
// single delayed retry; any other failure latches the gate offline
// immediately.
func (g *Gate) resolve(ctx context.Context) {
	err := g.probe(ctx)
	if err != nil && errors.Is(err, ErrRateLimited) {
		g.logger.Warn("embedding probe rate limited, retrying once", "delay", probeRetryDelay)
		select {
		case <-time.After(probeRetryDelay):
			err = g.probe(ctx)
		case <-ctx.Done():
			err = ctx.Err()
		}
	}

	if err != nil {
		g.mode.Store(int32(ModeOffline))
		g.logger.Warn("embedding service unreachable, using local fallback", "err", err)
		return
	}

	g.mode.Store(int32(ModeOnline))
	g.logger.Info("embedding service online")
}

func (g *Gate) probe(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, g.probeTimeout)
	defer cancel()

	vector, err := g.primary.EmbedText(probeCtx, "connectivity probe")
	if err != nil {
		return err
	}
	if len(vector) == 0 {
		return errors.New("probe returned empty vector")
	}
	return nil
}
