package models

import (
	"errors"
	"time"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound     = errors.New("resource not found")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")

	// Authentication
	ErrAuthRequired      = errors.New("authentication required")
	ErrSessionExpired    = errors.New("session expired due to inactivity")
	ErrInvalidPIN        = errors.New("invalid PIN")
	ErrBruteForceBlocked = errors.New("too many failed login attempts")
	ErrRateLimited       = errors.New("rate limit exceeded")

	// Configuration and external actions
	ErrConfiguration       = errors.New("server configuration error")
	ErrUnknownAction       = errors.New("action is not in the allowlist")
	ErrActionFailed        = errors.New("external action failed")
	ErrTargetNotConfigured = errors.New("target address not configured")
	ErrInvalidTarget       = errors.New("target address is not a valid IPv4 address")
)

// RetryAfterError decorates a throttling error with how long the caller
// should wait before trying again
type RetryAfterError struct {
	Err        error
	RetryAfter time.Duration
}

func (e *RetryAfterError) Error() string {
	return e.Err.Error()
}

func (e *RetryAfterError) Unwrap() error {
	return e.Err
}

// RetryAfter extracts the wait hint from err, or zero when there is none
func RetryAfter(err error) time.Duration {
	var rae *RetryAfterError
	if errors.As(err, &rae) {
		return rae.RetryAfter
	}
	return 0
}
