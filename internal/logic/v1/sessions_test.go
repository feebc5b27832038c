package v1

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionService(repo *fakeSessionRepo) (*SessionService, *time.Time) {
	svc := NewSessionService(repo, 16)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return svc, &now
}

func TestGetNewSession(t *testing.T) {
	repo := newFakeSessionRepo()
	svc, _ := newTestSessionService(repo)
	ctx := context.Background()

	token, err := svc.GetNewSession(ctx, "u@e.com", 100*time.Second)
	require.NoError(t, err)
	assert.Len(t, token, 16)

	row, err := repo.GetByToken(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "u@e.com", row.Email)
	assert.Equal(t, row.IssuedAt.Add(100*time.Second), row.ExpiresAt)
}

func TestGetNewSession_TokensUnique(t *testing.T) {
	repo := newFakeSessionRepo()
	svc, _ := newTestSessionService(repo)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		token, err := svc.GetNewSession(ctx, "u@e.com", time.Hour)
		require.NoError(t, err)
		assert.False(t, seen[token], "duplicate token issued")
		seen[token] = true
	}
}

func TestGetNewSession_RetriesOnInsertRace(t *testing.T) {
	repo := newFakeSessionRepo()
	repo.failCreates = 2
	svc, _ := newTestSessionService(repo)

	token, err := svc.GetNewSession(context.Background(), "u@e.com", time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, 3, repo.creates)
}

func TestVerifySession(t *testing.T) {
	repo := newFakeSessionRepo()
	svc, _ := newTestSessionService(repo)
	ctx := context.Background()

	token, err := svc.GetNewSession(ctx, "u@e.com", time.Hour)
	require.NoError(t, err)

	ok, err := svc.VerifySession(ctx, token)
	require.NoError(t, err)
	assert.True(t, ok)

	for _, bad := range []string{"", "random string", token + "x"} {
		ok, err := svc.VerifySession(ctx, bad)
		require.NoError(t, err)
		assert.False(t, ok, "token %q", bad)
	}
}

func TestVerifySession_LazyExpiry(t *testing.T) {
	repo := newFakeSessionRepo()
	svc, now := newTestSessionService(repo)
	ctx := context.Background()

	token, err := svc.GetNewSession(ctx, "u@e.com", 2*time.Second)
	require.NoError(t, err)

	// Active strictly before the deadline.
	*now = now.Add(1999 * time.Millisecond)
	ok, err := svc.VerifySession(ctx, token)
	require.NoError(t, err)
	assert.True(t, ok)

	// At the deadline the session is expired, reported absent and
	// physically removed.
	*now = now.Add(time.Millisecond)
	ok, err = svc.VerifySession(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok)

	row, err := repo.GetByToken(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, row)

	_, err = svc.GetEmail(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestVerifySession_RealClockExpiry(t *testing.T) {
	if testing.Short() {
		t.Skip("sleeps past a real session deadline")
	}

	repo := newFakeSessionRepo()
	svc := NewSessionService(repo, 16)
	ctx := context.Background()

	token, err := svc.GetNewSession(ctx, "u@e.com", time.Second)
	require.NoError(t, err)

	ok, err := svc.VerifySession(ctx, token)
	require.NoError(t, err)
	assert.True(t, ok)

	time.Sleep(1100 * time.Millisecond)

	ok, err = svc.VerifySession(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetEmail(t *testing.T) {
	repo := newFakeSessionRepo()
	svc, _ := newTestSessionService(repo)
	ctx := context.Background()

	token, err := svc.GetNewSession(ctx, "email@email.com", time.Hour)
	require.NoError(t, err)

	email, err := svc.GetEmail(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "email@email.com", email)

	_, err = svc.GetEmail(ctx, "")
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = svc.GetEmail(ctx, "unknown-token")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestTerminateSession(t *testing.T) {
	repo := newFakeSessionRepo()
	svc, _ := newTestSessionService(repo)
	ctx := context.Background()

	token, err := svc.GetNewSession(ctx, "u@e.com", time.Hour)
	require.NoError(t, err)

	require.NoError(t, svc.TerminateSession(ctx, token))

	ok, err := svc.VerifySession(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok)

	// Second termination is a no-op, not an error.
	require.NoError(t, svc.TerminateSession(ctx, token))
	require.NoError(t, svc.TerminateSession(ctx, ""))
}
