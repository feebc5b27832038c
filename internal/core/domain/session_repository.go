package domain

import (
	"context"
	"time"
)

// SessionRow represents a stored session.
//
// Email is not a foreign key: sessions may outlive mutations of the
// user they were issued for, and remain keyed to the value captured at
// login time.
type SessionRow struct {
	Token     string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// SessionRepository defines the data-access contract for session operations.
// Implementations live in internal/core/repository (Core layer).
type SessionRepository interface {
	// Create inserts a new session. Returns ErrDuplicate when the token
	// already exists (expired or not).
	Create(ctx context.Context, row SessionRow) error

	// GetByToken looks up a session by token.
	// Returns (nil, nil) when the token does not match any session.
	GetByToken(ctx context.Context, token string) (*SessionRow, error)

	// TokenExists reports whether any stored session, active or
	// expired, holds the given token.
	TokenExists(ctx context.Context, token string) (bool, error)

	// Delete removes the session with the given token, if present.
	Delete(ctx context.Context, token string) error
}
