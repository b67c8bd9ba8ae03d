package domain

import "errors"

// Sentinel errors shared across the service and API layers. Anything not in
// this list is treated as an internal storage or infrastructure failure and
// surfaced as a server error.
var (
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password at login. Callers must not be able to tell the two apart.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserExists signals a username or email collision at registration.
	ErrUserExists = errors.New("username or email already exists")

	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidToken covers every token verification failure: bad
	// signature, expired, not yet valid, issuer or audience mismatch.
	ErrInvalidToken = errors.New("invalid token")

	// ErrForbidden means the token verified fine but lacks a required role.
	ErrForbidden = errors.New("access forbidden")

	// ErrTooManyAttempts is returned when the login throttle trips.
	ErrTooManyAttempts = errors.New("too many failed login attempts")

	ErrSubjectNotFound = errors.New("subject not found")
)
