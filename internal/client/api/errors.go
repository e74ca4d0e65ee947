// Package api implements the HTTP client for the task gateway.
package api

import "errors"

// Sentinel errors mapped from gateway responses. Transport failures are
// returned wrapped, so callers can always errors.Is against these.
var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("task not found")
	ErrServer       = errors.New("server error")
)
