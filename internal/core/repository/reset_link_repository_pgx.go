package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/duynhne/identity-service/internal/core/domain"
)

// PgxResetLinkRepository implements domain.ResetLinkRepository using pgx.
type PgxResetLinkRepository struct {
	pool pool
}

// NewResetLinkRepository creates a new PgxResetLinkRepository.
func NewResetLinkRepository(pool pool) *PgxResetLinkRepository {
	return &PgxResetLinkRepository{pool: pool}
}

// Create inserts a new reset link. Returns domain.ErrDuplicate when
// the token already exists.
func (r *PgxResetLinkRepository) Create(ctx context.Context, row domain.ResetLinkRow) error {
	query := `INSERT INTO reset_links (token, email, expires_at) VALUES ($1, $2, $3)`
	_, err := r.pool.Exec(ctx, query, row.Token, row.Email, row.ExpiresAt)
	return mapInsertError(err)
}

// GetByToken looks up a reset link by token.
// Returns (nil, nil) when the token does not match any link.
func (r *PgxResetLinkRepository) GetByToken(ctx context.Context, token string) (*domain.ResetLinkRow, error) {
	query := `SELECT token, email, expires_at FROM reset_links WHERE token = $1`

	var row domain.ResetLinkRow
	err := r.pool.QueryRow(ctx, query, token).Scan(
		&row.Token, &row.Email, &row.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &row, nil
}

// TokenExists reports whether a stored link holds the given token.
func (r *PgxResetLinkRepository) TokenExists(ctx context.Context, token string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM reset_links WHERE token = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, token).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

// Delete removes the link with the given token, if present.
func (r *PgxResetLinkRepository) Delete(ctx context.Context, token string) error {
	query := `DELETE FROM reset_links WHERE token = $1`
	_, err := r.pool.Exec(ctx, query, token)
	return err
}
