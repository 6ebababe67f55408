package goAccount

import "errors"

var (
	// ErrMissingAccessToken is returned when the Authorization header carries no bearer token.
	ErrMissingAccessToken = errors.New("missing access token")
	// ErrInvalidAccessToken is returned when an access token fails signature or structure checks.
	ErrInvalidAccessToken = errors.New("invalid access token")
	// ErrExpiredAccessToken is returned by Authenticate for a well-signed but expired token.
	ErrExpiredAccessToken = errors.New("access token expired")
	// ErrSessionExpiredOrLoggedOut is returned when the renewal credential has no live session entry.
	ErrSessionExpiredOrLoggedOut = errors.New("session expired or logged out")
	// ErrTokenIdentityMismatch is returned when the renewal credential belongs to another account.
	ErrTokenIdentityMismatch = errors.New("token identity mismatch")
	// ErrUpstreamUnavailable is returned when Redis or the user directory cannot be reached.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLoginRateLimited   = errors.New("login rate limited")
	ErrAccountExists      = errors.New("account already exists")
	ErrAccountDropped     = errors.New("account dropped")
	ErrUserNotFound       = errors.New("user not found")
	// ErrInvalidRequest wraps a *validate.ValidationError or a password policy error.
	ErrInvalidRequest = errors.New("invalid request")
	ErrEngineNotReady = errors.New("engine not initialized")
)
