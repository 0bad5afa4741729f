// Package ingestion provides pipeline orchestration for indexing messages.
//
// The Pipeline type manages two delivery paths:
//   - Push: real-time single-message ingestion with content-only
//     enrichment (chain fields stay null until back-fill)
//   - Replay: full-session re-ingestion, which overwrites the stored
//     transcript and resets the session for a fresh back-fill run
//
// Embedding generation runs asynchronously on a worker pool. Errors
// during async processing are logged but do not fail the ingestion
// operation.
package ingestion
