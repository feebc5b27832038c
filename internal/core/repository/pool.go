// Package repository contains the pgx implementations of the
// data-access contracts declared in internal/core/domain.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/duynhne/identity-service/internal/core/domain"
)

// pool is the subset of *pgxpool.Pool the repositories use. pgxmock
// satisfies it too, so repository tests run without a database.
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// mapInsertError translates a unique-constraint violation into
// domain.ErrDuplicate so the logic layer can retry token generation.
// Every other error is passed through untouched.
func mapInsertError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return fmt.Errorf("constraint %s: %w", pgErr.ConstraintName, domain.ErrDuplicate)
	}
	return err
}
