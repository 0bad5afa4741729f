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


// Package ai provides the embedding abstraction used for semantic search.
//
// The package defines the Embedder interface, a Gate that decides once per
// process whether a remote embedding service is reachable, and vector
// helpers shared by ingestion and search.
//
// # Implementation Packages
//
//   - ai/openai: production implementation using OpenAI-compatible APIs
//   - ai/local: deterministic hash-based embedder, used when offline
//   - ai/mock: test doubles for unit testing without external dependencies
//
// The Gate wraps a primary (remote) and fallback (local) embedder. On the
// first embedding request it probes the primary once: if the probe succeeds
// the gate stays on the remote embedder for the life of the process,
// otherwise it latches to the fallback. Mixed-source vectors within one
// process would make similarity scores meaningless, which is why the
// decision is never revisited.
package ai
