// Package handlers defines HTTP-layer error codes used across all endpoints.
//
// These symbolic codes are mapped to HTTP responses via the fail() helper and
// give machine clients a stable taxonomy that supplements human-readable
// messages. Codes are lowercase snake_case; generic codes mirror common HTTP
// status semantics.
package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeNotFound     = "not_found"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeRankingFailed    = "ranking_failed"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
