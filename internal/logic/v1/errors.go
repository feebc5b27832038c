// Package v1 provides the identity business logic for API version 1:
// credential storage and verification, session issuance and expiry,
// and single-use password-reset links.
//
// Error Handling:
// This package defines sentinel errors that represent the expected,
// recoverable failure conditions of the identity subsystem. They are
// wrapped with context using fmt.Errorf("%w") at the point of
// violation and propagated unmodified to the caller; only the web
// layer maps them to HTTP responses.
//
// Storage failures are never translated into these sentinels. They
// surface as plain wrapped errors so callers can tell a domain
// rejection from a broken backend.
//
// Error Checking (in handlers):
//
//	switch {
//	case errors.Is(err, logicv1.ErrEmailExists):
//	    c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
//	case errors.Is(err, logicv1.ErrUserNotFound):
//	    c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
//	default:
//	    c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
//	}
package v1

import "errors"

// Sentinel errors for identity operations.
// These errors should be wrapped with context using fmt.Errorf("%w") when returned.
var (
	// ErrEmailExists indicates the email is already registered.
	// HTTP Status: 409 Conflict
	ErrEmailExists = errors.New("email already exists")

	// ErrInvalidEmail indicates the email does not match the address grammar.
	// HTTP Status: 400 Bad Request
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrIncorrectName indicates a missing or empty display name.
	// HTTP Status: 400 Bad Request
	ErrIncorrectName = errors.New("incorrect name")

	// ErrInvalidPassword indicates a missing or empty password.
	// HTTP Status: 400 Bad Request
	ErrInvalidPassword = errors.New("invalid password")

	// ErrUserNotFound indicates the user does not exist, or a
	// credential check failed where the two cases must be
	// indistinguishable (don't reveal which).
	// HTTP Status: 404 Not Found
	ErrUserNotFound = errors.New("user not found")

	// ErrNoSession indicates the session token is missing, unknown or expired.
	// HTTP Status: 401 Unauthorized
	ErrNoSession = errors.New("no session")

	// ErrEmailNotFound indicates a reset link was requested for an
	// unregistered email.
	// HTTP Status: 404 Not Found
	ErrEmailNotFound = errors.New("email not found")

	// ErrLinkNotFound indicates the reset token is missing, unknown,
	// expired or already consumed.
	// HTTP Status: 404 Not Found
	ErrLinkNotFound = errors.New("reset link not found")

	// ErrInvalidArgument indicates a programming error in token
	// generation parameters (non-positive length or empty lexicon).
	ErrInvalidArgument = errors.New("invalid argument")
)
