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

// Mailer delivers password-reset links. Delivery is an external
// collaborator; the SMTP implementation lives in internal/mailer.
type Mailer interface {
	SendResetLink(email, token string) error
}

// ResetLinkService owns single-use password-reset links. A link is
// bound to one registered email at creation, carries its own validity
// window, and is deleted once consumed: token absence means consumed.
//
// Unlike SessionService.GetEmail, lookups here report invalid tokens
// as a null result instead of an error. Callers depend on both
// shapes, so the asymmetry is kept deliberately.
type ResetLinkService struct {
	links       domain.ResetLinkRepository
	users       domain.UserRepository
	hasher      *PasswordHasher
	mailer      Mailer
	tokenLength int
	linkTTL     time.Duration

	now func() time.Time
}

// NewResetLinkService creates a ResetLinkService issuing links valid
// for linkTTL.
func NewResetLinkService(links domain.ResetLinkRepository, users domain.UserRepository, hasher *PasswordHasher, mailer Mailer, tokenLength int, linkTTL time.Duration) *ResetLinkService {
	return &ResetLinkService{
		links:       links,
		users:       users,
		hasher:      hasher,
		mailer:      mailer,
		tokenLength: tokenLength,
		linkTTL:     linkTTL,
		now:         time.Now,
	}
}

// Create mints a reset link for email and returns its token.
// Fails with ErrEmailNotFound unless the email is registered.
func (s *ResetLinkService) Create(ctx context.Context, email string) (string, error) {
	ctx, span := middleware.StartSpan(ctx, "resetlink.create", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	known, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("check email: %w", err)
	}
	if !known {
		return "", fmt.Errorf("create reset link for %q: %w", email, ErrEmailNotFound)
	}

	for {
		token, err := GenerateToken(ctx, s.tokenLength, TokenLexicon, s.links.TokenExists)
		if err != nil {
			span.RecordError(err)
			return "", fmt.Errorf("generate reset token: %w", err)
		}

		row := domain.ResetLinkRow{
			Token:     token,
			Email:     email,
			ExpiresAt: s.now().Add(s.linkTTL),
		}
		err = s.links.Create(ctx, row)
		if err == nil {
			span.AddEvent("resetlink.created")
			return token, nil
		}
		if errors.Is(err, domain.ErrDuplicate) {
			span.AddEvent("resetlink.token_collision")
			continue
		}
		span.RecordError(err)
		return "", fmt.Errorf("insert reset link: %w", err)
	}
}

// Exist reports whether token names a valid, unconsumed reset link.
// Empty, unknown and expired tokens are false, never an error.
func (s *ResetLinkService) Exist(ctx context.Context, token string) (bool, error) {
	row, err := s.lookup(ctx, token)
	if err != nil {
		return false, err
	}
	return row != nil, nil
}

// GetEmail returns the email bound to a valid reset link, or "" when
// the token is empty, unknown or expired. Garbled variations of a
// valid token never resolve to its email.
func (s *ResetLinkService) GetEmail(ctx context.Context, token string) (string, error) {
	row, err := s.lookup(ctx, token)
	if err != nil {
		return "", err
	}
	if row == nil {
		return "", nil
	}
	return row.Email, nil
}

// SendResetLink mints a reset link for email and mails it to the
// address it is bound to. Fails with ErrEmailNotFound for unknown
// emails; delivery failures are storage-grade errors.
func (s *ResetLinkService) SendResetLink(ctx context.Context, email string) error {
	token, err := s.Create(ctx, email)
	if err != nil {
		return err
	}
	if err := s.mailer.SendResetLink(email, token); err != nil {
		return fmt.Errorf("send reset link: %w", err)
	}
	return nil
}

// ResetPassword applies newPassword to the user the link was issued
// for, then consumes the link. Fails with ErrLinkNotFound for invalid
// tokens, ErrInvalidPassword for an empty password, and ErrUserNotFound
// when the bound user was deleted after the link was minted.
func (s *ResetLinkService) ResetPassword(ctx context.Context, token, newPassword string) error {
	ctx, span := middleware.StartSpan(ctx, "resetlink.reset_password", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	row, err := s.lookup(ctx, token)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if row == nil {
		return fmt.Errorf("reset password: %w", ErrLinkNotFound)
	}
	if newPassword == "" {
		return fmt.Errorf("reset password for %q: %w", row.Email, ErrInvalidPassword)
	}

	exists, err := s.users.ExistsByEmail(ctx, row.Email)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return fmt.Errorf("reset password for %q: %w", row.Email, ErrUserNotFound)
	}

	digest, err := s.hasher.Hash(newPassword)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if err := s.users.UpdatePassword(ctx, row.Email, digest); err != nil {
		span.RecordError(err)
		return fmt.Errorf("update password: %w", err)
	}

	// Single use: the link is consumed even though the delete may fail
	// independently of the password update above.
	if err := s.links.Delete(ctx, token); err != nil {
		span.RecordError(err)
		return fmt.Errorf("consume reset link: %w", err)
	}

	span.AddEvent("password.reset")
	return nil
}

// lookup fetches the link for token, evicting it when expired.
// Returns (nil, nil) when the token does not name a valid link.
func (s *ResetLinkService) lookup(ctx context.Context, token string) (*domain.ResetLinkRow, error) {
	if token == "" {
		return nil, nil
	}

	row, err := s.links.GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("query reset link: %w", err)
	}
	if row == nil {
		return nil, nil
	}

	if !s.now().Before(row.ExpiresAt) {
		if err := s.links.Delete(ctx, token); err != nil {
			return nil, fmt.Errorf("evict expired reset link: %w", err)
		}
		return nil, nil
	}

	return row, nil
}
