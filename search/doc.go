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


// Package search provides ranked semantic search over indexed messages.
//
// The Searcher embeds the query, pulls nearest-neighbor candidates from
// the vector store, decodes each candidate's enrichment metadata, and
// ranks with the multi-factor scoring engine. Repeated identical
// queries short-circuit through a TTL cache; staleness is bounded by
// the TTL only.
//
// Mode presets (semantic, validated_only, failed_only, recent_only,
// by_topic) pre-populate the query context for common search shapes.
package search
