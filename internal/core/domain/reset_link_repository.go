package domain

import (
	"context"
	"time"
)

// ResetLinkRow represents a stored single-use password-reset link.
// Presence of a row means the link has not been consumed yet.
type ResetLinkRow struct {
	Token     string
	Email     string
	ExpiresAt time.Time
}

// ResetLinkRepository defines the data-access contract for reset links.
// Implementations live in internal/core/repository (Core layer).
type ResetLinkRepository interface {
	// Create inserts a new reset link. Returns ErrDuplicate when the
	// token already exists.
	Create(ctx context.Context, row ResetLinkRow) error

	// GetByToken looks up a reset link by token.
	// Returns (nil, nil) when the token does not match any link.
	GetByToken(ctx context.Context, token string) (*ResetLinkRow, error)

	// TokenExists reports whether a stored link holds the given token.
	TokenExists(ctx context.Context, token string) (bool, error)

	// Delete removes the link with the given token, if present.
	Delete(ctx context.Context, token string) error
}
