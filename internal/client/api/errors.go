package api

import "errors"

// Failure taxonomy for API calls. Callers match with errors.Is; the wrapped
// message carries the HTTP status or transport detail.
var (
	// ErrValidation marks client-side rejections made before any network
	// call (blank fields, malformed OTP code, missing challenge token).
	ErrValidation = errors.New("validation error")

	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrRateLimited   = errors.New("rate limited")
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("already exists")
	ErrUnprocessable = errors.New("invalid input")
	ErrServer        = errors.New("server error")

	// ErrUnavailable marks transport failures: no HTTP response at all.
	ErrUnavailable = errors.New("server unavailable")
)
