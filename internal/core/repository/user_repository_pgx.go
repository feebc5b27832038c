package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/duynhne/identity-service/internal/core/domain"
)

// PgxUserRepository implements domain.UserRepository using pgx.
type PgxUserRepository struct {
	pool pool
}

// NewUserRepository creates a new PgxUserRepository.
func NewUserRepository(pool pool) *PgxUserRepository {
	return &PgxUserRepository{pool: pool}
}

// GetByEmail returns the user with the given email.
// Returns (nil, nil) when no user is found.
func (r *PgxUserRepository) GetByEmail(ctx context.Context, email string) (*domain.UserRow, error) {
	query := `SELECT email, password_hash, name FROM users WHERE email = $1`

	var row domain.UserRow
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&row.Email, &row.PasswordHash, &row.Name,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &row, nil
}

// ExistsByEmail returns true when a user with the given email exists.
func (r *PgxUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

// Create inserts a new user. Returns domain.ErrDuplicate when the
// email is already taken.
func (r *PgxUserRepository) Create(ctx context.Context, email, passwordHash, name string) error {
	query := `INSERT INTO users (email, password_hash, name) VALUES ($1, $2, $3)`
	_, err := r.pool.Exec(ctx, query, email, passwordHash, name)
	return mapInsertError(err)
}

// UpdatePassword overwrites the stored password hash.
func (r *PgxUserRepository) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	query := `UPDATE users SET password_hash = $2 WHERE email = $1`
	_, err := r.pool.Exec(ctx, query, email, passwordHash)
	return err
}

// UpdateEmail re-keys the user from oldEmail to newEmail. Returns
// domain.ErrDuplicate when newEmail is already taken.
func (r *PgxUserRepository) UpdateEmail(ctx context.Context, oldEmail, newEmail string) error {
	query := `UPDATE users SET email = $2 WHERE email = $1`
	_, err := r.pool.Exec(ctx, query, oldEmail, newEmail)
	return mapInsertError(err)
}

// UpdateName overwrites the stored display name.
func (r *PgxUserRepository) UpdateName(ctx context.Context, email, name string) error {
	query := `UPDATE users SET name = $2 WHERE email = $1`
	_, err := r.pool.Exec(ctx, query, email, name)
	return err
}

// Delete removes the user with the given email, if present.
func (r *PgxUserRepository) Delete(ctx context.Context, email string) error {
	query := `DELETE FROM users WHERE email = $1`
	_, err := r.pool.Exec(ctx, query, email)
	return err
}
