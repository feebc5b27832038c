package v1

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/identity-service/internal/core/domain"
	"github.com/duynhne/identity-service/middleware"
)

// SessionService owns session issuance, verification and termination.
// Expiry is lazy: a session found expired during a lookup is deleted
// on the spot; there is no background sweeper.
type SessionService struct {
	sessions    domain.SessionRepository
	tokenLength int

	// now is swappable for expiry tests.
	now func() time.Time
}

// NewSessionService creates a SessionService issuing tokens of the
// given length.
func NewSessionService(sessions domain.SessionRepository, tokenLength int) *SessionService {
	return &SessionService{
		sessions:    sessions,
		tokenLength: tokenLength,
		now:         time.Now,
	}
}

// GetNewSession mints a session for email valid for ttl and returns
// its token. The email is taken as-is; sessions may be created for
// values the credential store has never seen.
//
// Token uniqueness is pre-checked against all stored sessions, active
// or expired, and enforced by the sessions.token unique constraint;
// losing the insert race triggers a fresh generation.
func (s *SessionService) GetNewSession(ctx context.Context, email string, ttl time.Duration) (string, error) {
	ctx, span := middleware.StartSpan(ctx, "session.create", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	for {
		token, err := GenerateToken(ctx, s.tokenLength, TokenLexicon, s.sessions.TokenExists)
		if err != nil {
			span.RecordError(err)
			return "", fmt.Errorf("generate session token: %w", err)
		}

		issuedAt := s.now()
		row := domain.SessionRow{
			Token:     token,
			Email:     email,
			IssuedAt:  issuedAt,
			ExpiresAt: issuedAt.Add(ttl),
		}
		err = s.sessions.Create(ctx, row)
		if err == nil {
			span.AddEvent("session.created")
			return token, nil
		}
		if errors.Is(err, domain.ErrDuplicate) {
			span.AddEvent("session.token_collision")
			continue
		}
		span.RecordError(err)
		return "", fmt.Errorf("insert session: %w", err)
	}
}

// VerifySession reports whether token belongs to an active session.
// An expired session is deleted as a side effect and reported as
// absent. Unknown and empty tokens are simply false, never an error.
func (s *SessionService) VerifySession(ctx context.Context, token string) (bool, error) {
	row, err := s.lookup(ctx, token)
	if err != nil {
		return false, err
	}
	return row != nil, nil
}

// GetEmail returns the email bound to an active session.
// Fails with ErrNoSession for empty, unknown and expired tokens;
// expired sessions are deleted as a side effect.
func (s *SessionService) GetEmail(ctx context.Context, token string) (string, error) {
	row, err := s.lookup(ctx, token)
	if err != nil {
		return "", err
	}
	if row == nil {
		return "", fmt.Errorf("lookup session: %w", ErrNoSession)
	}
	return row.Email, nil
}

// TerminateSession deletes the session with the given token.
// Terminating an absent token is a no-op.
func (s *SessionService) TerminateSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// lookup fetches the session for token, evicting it when expired.
// Returns (nil, nil) when the token does not name an active session.
func (s *SessionService) lookup(ctx context.Context, token string) (*domain.SessionRow, error) {
	if token == "" {
		return nil, nil
	}

	row, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	if row == nil {
		return nil, nil
	}

	if !s.now().Before(row.ExpiresAt) {
		if err := s.sessions.Delete(ctx, token); err != nil {
			return nil, fmt.Errorf("evict expired session: %w", err)
		}
		return nil, nil
	}

	return row, nil
}
