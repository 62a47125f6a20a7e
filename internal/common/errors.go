// Package common defines shared constants and sentinel errors used across
// client and server layers of NoteLink. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConflict reports a duplicate-creation race (account, contact edge).
	// Repositories resolve benign races by falling back to a lookup and only
	// surface this for genuinely invalid requests (e.g. a self-edge).
	ErrConflict = errors.New("conflict")

	// ErrTransport reports that the server was unreachable or the request
	// failed in transit. Recoverable; no local state was mutated.
	ErrTransport = errors.New("transport failure")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
