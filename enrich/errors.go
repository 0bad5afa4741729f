package enrich

import "errors"

var (
	// ErrAdjacencyInconsistency indicates a session transcript violated
	// a structural invariant (duplicate ids, non-contiguous positions).
	// Back-fill aborts for that session only.
	ErrAdjacencyInconsistency = errors.New("adjacency invariant violated")

	// ErrEmptySession indicates back-fill was invoked with no messages.
	ErrEmptySession = errors.New("empty session")
)
