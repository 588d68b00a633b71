package ai

import "errors"

// Transport failures are surfaced as distinct errors so the caller can
// decide whether a retry makes sense. The client itself never retries:
// an evaluation call is paid and non-idempotent.
var (
	ErrUnauthorized       = errors.New("ai: invalid or missing credential")
	ErrRateLimited        = errors.New("ai: rate limit exceeded")
	ErrTimeout            = errors.New("ai: request timed out")
	ErrServiceUnavailable = errors.New("ai: service unavailable")
	ErrEmptyCompletion    = errors.New("ai: no completion returned")
)
