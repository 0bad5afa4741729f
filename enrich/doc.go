// Package enrich computes message enrichment in two passes: a
// content-only pass at ingestion time, and a session-wide back-fill
// pass that reconstructs adjacency and solution/feedback pairing once
// a full transcript is available.
//
// Both passes are pure functions of their inputs. Back-fill recomputes
// the content-only pass from scratch and emits only the fields that
// differ from what is stored, so re-running it on an unchanged session
// produces no patches.
package enrich
