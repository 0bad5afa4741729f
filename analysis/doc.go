// Package analysis provides pure, content-only text analysis for
// conversational messages: topic detection, solution quality scoring,
// solution attempt gating, feedback classification, and the
// troubleshooting signal used at ranking time.
//
// Every function in this package is deterministic, CPU-only, and safe
// for concurrent use. None of them error on malformed or empty input;
// they return zero-value results instead.
package analysis
