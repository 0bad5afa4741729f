package ai

import "errors"

var (
	// ErrRateLimited indicates the embedding service rejected a request
	// for rate limiting reasons. The gate retries its probe once before
	// latching offline.
	ErrRateLimited = errors.New("embedding service rate limited")

	// ErrEmptyInput indicates an embedding was requested for empty text.
	ErrEmptyInput = errors.New("empty embedding input")
)
