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


// Package local provides a deterministic embedder that needs no network.
//
// It hashes token n-grams into a fixed-width vector, so identical text
// always produces identical embeddings and near-identical text lands
// nearby. The quality is far below a real embedding model; it exists so
// ingestion and search keep functioning when the embedding service is
// unreachable, and so tests run hermetically.
package local

import (
	"context"
	"hash/fnv"
	"strings"

	"github.com/poiesic/sift/ai"
)

// Embedder implements ai.Embedder with hashed token features.
type Embedder struct {
	dimensions int
}

var _ ai.Embedder = (*Embedder)(nil)

// NewEmbedder creates a local embedder producing vectors of the given width.
func NewEmbedder(dimensions int) *Embedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &Embedder{dimensions: dimensions}
}

// EmbedText generates a deterministic embedding for one text.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.embed(text), nil
}

// EmbedTexts generates deterministic embeddings for a batch of texts.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vectors[i] = e.embed(text)
	}
	return vectors, nil
}

func (e *Embedder) embed(text string) []float32 {
	vector := make([]float32, e.dimensions)

	tokens := strings.Fields(strings.ToLower(text))
	for i, token := range tokens {
		addFeature(vector, token, 1.0)
		// Bigrams give the vector some word-order sensitivity
		if i+1 < len(tokens) {
			addFeature(vector, token+" "+tokens[i+1], 0.5)
		}
	}

	return ai.NormalizeVector(vector)
}

// addFeature hashes a token into a bucket and a sign, the usual hashing
// trick for fixed-width feature vectors.
func addFeature(vector []float32, token string, weight float32) {
	h := fnv.New64a()
	h.Write([]byte(token))
	sum := h.Sum64()

	bucket := int(sum % uint64(len(vector)))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	vector[bucket] += weight
}
