package service

import "errors"

var (
	// ErrConflict: username or email already taken.
	ErrConflict = errors.New("account already exists")
	// ErrInvalidCredentials: bad login, or a bearer token that does not
	// resolve to a user.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken: malformed, expired, tampered or wrong-type token.
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("not enough rights")
	// ErrUpstream wraps a failure of an external service (image host).
	ErrUpstream = errors.New("upstream error")
	// ErrUnavailable: an optional subsystem (search) is not configured.
	ErrUnavailable = errors.New("service unavailable")
)
