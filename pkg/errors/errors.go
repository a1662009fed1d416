package chatlink_errors

import "errors"

// Common errors. Handlers map these onto HTTP status codes.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrLinkExpired   = errors.New("link expired")
	ErrRateLimited   = errors.New("rate limited")
	ErrTooLarge      = errors.New("file too large")
)
