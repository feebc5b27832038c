package domain

import "context"

// UserRow represents a user record returned from the database.
// It includes the password hash so the Logic layer can verify credentials.
type UserRow struct {
	Email        string
	PasswordHash string
	Name         string
}

// UserRepository defines the data-access contract for user operations.
// Implementations live in internal/core/repository (Core layer).
// The Logic layer depends on this interface only — never on SQL or pgx directly.
type UserRepository interface {
	// GetByEmail returns the user with the given email.
	// Returns (nil, nil) when no user is found.
	GetByEmail(ctx context.Context, email string) (*UserRow, error)

	// ExistsByEmail returns true when a user with the given email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Create inserts a new user. Returns ErrDuplicate when the email is
	// already taken.
	Create(ctx context.Context, email, passwordHash, name string) error

	// UpdatePassword overwrites the stored password hash. A missing
	// email is a silent no-op; callers pre-check existence.
	UpdatePassword(ctx context.Context, email, passwordHash string) error

	// UpdateEmail re-keys the user from oldEmail to newEmail. Returns
	// ErrDuplicate when newEmail is already taken.
	UpdateEmail(ctx context.Context, oldEmail, newEmail string) error

	// UpdateName overwrites the stored display name. A missing email is
	// a silent no-op; callers pre-check existence.
	UpdateName(ctx context.Context, email, name string) error

	// Delete removes the user with the given email, if present.
	Delete(ctx context.Context, email string) error
}
