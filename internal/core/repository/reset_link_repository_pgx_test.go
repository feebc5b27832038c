package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynhne/identity-service/internal/core/domain"
)

func TestPgxResetLinkRepository_CreateAndGet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	expires := time.Date(2026, 8, 1, 12, 30, 0, 0, time.UTC)
	row := domain.ResetLinkRow{Token: "rl-token", Email: "a@b.com", ExpiresAt: expires}

	mock.ExpectExec(`INSERT INTO reset_links`).
		WithArgs(row.Token, row.Email, row.ExpiresAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`SELECT token, email, expires_at FROM reset_links`).
		WithArgs("rl-token").
		WillReturnRows(pgxmock.NewRows([]string{"token", "email", "expires_at"}).
			AddRow(row.Token, row.Email, row.ExpiresAt))

	repo := NewResetLinkRepository(mock)
	require.NoError(t, repo.Create(context.Background(), row))

	got, err := repo.GetByToken(context.Background(), "rl-token")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, row, *got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgxResetLinkRepository_Create_DuplicateToken(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	expires := time.Date(2026, 8, 1, 12, 30, 0, 0, time.UTC)
	mock.ExpectExec(`INSERT INTO reset_links`).
		WithArgs("rl-token", "a@b.com", expires).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "reset_links_pkey"})

	repo := NewResetLinkRepository(mock)
	err = repo.Create(context.Background(), domain.ResetLinkRow{
		Token:     "rl-token",
		Email:     "a@b.com",
		ExpiresAt: expires,
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgxResetLinkRepository_GetByToken_Absent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT token, email, expires_at FROM reset_links`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	repo := NewResetLinkRepository(mock)
	got, err := repo.GetByToken(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgxResetLinkRepository_TokenExists(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("rl-token").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	repo := NewResetLinkRepository(mock)
	exists, err := repo.TokenExists(context.Background(), "rl-token")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgxResetLinkRepository_Delete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM reset_links`).
		WithArgs("rl-token").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	repo := NewResetLinkRepository(mock)
	require.NoError(t, repo.Delete(context.Background(), "rl-token"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
