package models

import "errors"

// Error kinds surfaced by settlement operations. Every operation is
// atomic, so each of these is fatal for the attempt: nothing is retried
// or repaired by the core itself. Callers match with errors.Is.
var (
	// ErrUnauthorized means the caller lacks the required principal
	// authorization for the operation.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound means a referenced game, currency or player row is
	// absent.
	ErrNotFound = errors.New("not found")

	// ErrInvariantViolation means the operation would break a ledger
	// invariant (negative session sum, exhausted bonus pool, close
	// amount exceeding tracked exposure).
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrRateLimited means a time-gated operation was attempted inside
	// its cooldown window. The caller may retry after the window.
	ErrRateLimited = errors.New("rate limited")

	// ErrExternalVerification means the upstream registry reports the
	// referenced game or token as inactive or unverified.
	ErrExternalVerification = errors.New("external verification failed")
)
