// Package backfill runs the batch half of the indexing pipeline. A
// Runner selects every session that is not fully covered, recomputes
// adjacency links and solution/feedback pairing for each transcript,
// and applies the resulting metadata patches to the vector store.
//
// Sessions process concurrently on a bounded worker pool, each under
// its own wall-clock budget. A session that blows its budget or fails
// a store write is marked needs_retry and picked up by the next run;
// an adjacency inconsistency parks the session in needs_manual_review.
// One bad session never stops the rest of the run.
package backfill
