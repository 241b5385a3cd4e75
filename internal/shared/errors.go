package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSessionMissing is returned when no session is attached to the request.
	ErrSessionMissing = errors.New("session missing")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
	// ErrUnknownCompany is returned for a company selector outside the tenant list.
	ErrUnknownCompany = errors.New("unknown company")
	// ErrForeignCompany is returned when a non-admin selects a company other
	// than the one they signed in under.
	ErrForeignCompany = errors.New("company outside session")
)
