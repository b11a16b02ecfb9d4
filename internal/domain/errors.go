package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrProfileNotFound signals a missing profile.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrPostNotFound signals a missing post.
	ErrPostNotFound = errors.New("post not found")
	// ErrRateLimited signals a denied rate-limit check. Surfaced to the
	// caller as retryable-later; never retried internally.
	ErrRateLimited = errors.New("rate limited")
	// ErrContentRejected signals a moderation rejection. A business rule,
	// not a fault: the author is asked to revise.
	ErrContentRejected = errors.New("content rejected by moderation")
	// ErrEmptyQuery signals a blank search query.
	ErrEmptyQuery = errors.New("empty query")

	// ErrInferenceTransient marks a remote failure worth retrying
	// (model warming up, remote rate limit).
	ErrInferenceTransient = errors.New("inference service transient failure")
	// ErrInferenceUnavailable marks a terminal remote failure. Consumers
	// degrade to nil results; this never propagates to callers.
	ErrInferenceUnavailable = errors.New("inference service unavailable")
)
