package session

import "errors"

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidMode       = errors.New("invalid mode")
	ErrInvalidLocation   = errors.New("invalid location")
	// ErrStale marks a background result for a superseded generation. The
	// result is dropped and the session is left untouched.
	ErrStale = errors.New("stale result")
)
