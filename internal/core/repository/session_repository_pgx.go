package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/duynhne/identity-service/internal/core/domain"
)

// PgxSessionRepository implements domain.SessionRepository using pgx.
type PgxSessionRepository struct {
	pool pool
}

// NewSessionRepository creates a new PgxSessionRepository.
func NewSessionRepository(pool pool) *PgxSessionRepository {
	return &PgxSessionRepository{pool: pool}
}

// Create inserts a new session. Returns domain.ErrDuplicate when the
// token already exists.
func (r *PgxSessionRepository) Create(ctx context.Context, row domain.SessionRow) error {
	query := `INSERT INTO sessions (token, email, issued_at, expires_at) VALUES ($1, $2, $3, $4)`
	_, err := r.pool.Exec(ctx, query, row.Token, row.Email, row.IssuedAt, row.ExpiresAt)
	return mapInsertError(err)
}

// GetByToken looks up a session by token.
// Returns (nil, nil) when the token does not match any session.
func (r *PgxSessionRepository) GetByToken(ctx context.Context, token string) (*domain.SessionRow, error) {
	query := `SELECT token, email, issued_at, expires_at FROM sessions WHERE token = $1`

	var row domain.SessionRow
	err := r.pool.QueryRow(ctx, query, token).Scan(
		&row.Token, &row.Email, &row.IssuedAt, &row.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &row, nil
}

// TokenExists reports whether any stored session holds the given
// token, expired or not.
func (r *PgxSessionRepository) TokenExists(ctx context.Context, token string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM sessions WHERE token = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, token).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

// Delete removes the session with the given token, if present.
func (r *PgxSessionRepository) Delete(ctx context.Context, token string) error {
	query := `DELETE FROM sessions WHERE token = $1`
	_, err := r.pool.Exec(ctx, query, token)
	return err
}
