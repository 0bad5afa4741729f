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


package ingestion

import (
	"context"
	"fmt"

	"github.com/poiesic/sift/core"
)

// embedMessages generates embeddings for the given messages and writes
// the vectors back to the repository.
func (p *Pipeline) embedMessages(ctx context.Context, ids ...core.ID) error {
	messages, err := p.messages.GetMessages(ctx, ids...)
	if err != nil {
		return fmt.Errorf("error loading messages for embedding: %w", err)
	}
	if len(messages) == 0 {
		return nil
	}

	texts := make([]string, len(messages))
	for i, message := range messages {
		texts[i] = message.Contents
	}

	vectors, err := p.provider.Embedder().EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("error generating embeddings: %w", err)
	}
	if len(vectors) != len(messages) {
		return fmt.Errorf("embedding count mismatch: got %d, want %d", len(vectors), len(messages))
	}

	for i, message := range messages {
		message.Vector = vectors[i]
	}

	if err := p.messages.UpdateMessages(ctx, messages...); err != nil {
		return fmt.Errorf("error storing embeddings: %w", err)
	}

	return nil
}
