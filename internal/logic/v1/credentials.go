package v1

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/identity-service/internal/core/domain"
	"github.com/duynhne/identity-service/middleware"
)

// emailPattern is the address grammar users must satisfy: a non-empty
// local part, "@", and a domain containing a dot with a non-empty
// suffix. Whitespace is rejected everywhere. "a@b." and "@b.com" fail.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@.]+$`)

// CredentialService owns user records: registration, credential
// verification, and mutation of password, email and name.
type CredentialService struct {
	users      domain.UserRepository
	sessions   *SessionService
	hasher     *PasswordHasher
	sessionTTL time.Duration
}

// NewCredentialService creates a CredentialService. Successful logins
// mint sessions valid for sessionTTL via the given SessionService.
func NewCredentialService(users domain.UserRepository, sessions *SessionService, hasher *PasswordHasher, sessionTTL time.Duration) *CredentialService {
	return &CredentialService{
		users:      users,
		sessions:   sessions,
		hasher:     hasher,
		sessionTTL: sessionTTL,
	}
}

// AddUser registers a new user.
// Fails with ErrInvalidEmail, ErrIncorrectName or ErrEmailExists.
func (s *CredentialService) AddUser(ctx context.Context, email, password, name string) error {
	ctx, span := middleware.StartSpan(ctx, "credentials.add_user", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	if !emailPattern.MatchString(email) {
		return fmt.Errorf("add user %q: %w", email, ErrInvalidEmail)
	}
	if name == "" {
		return fmt.Errorf("add user %q: %w", email, ErrIncorrectName)
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return fmt.Errorf("add user %q: %w", email, ErrEmailExists)
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		span.RecordError(err)
		return err
	}

	if err := s.users.Create(ctx, email, digest, name); err != nil {
		// The pre-check can lose a race with a concurrent insert.
		if errors.Is(err, domain.ErrDuplicate) {
			return fmt.Errorf("add user %q: %w", email, ErrEmailExists)
		}
		span.RecordError(err)
		return fmt.Errorf("insert user: %w", err)
	}

	span.AddEvent("user.registered")
	return nil
}

// VerifyUser checks the email/password pair and returns a fresh
// session token on success. Bad credentials yield ("", nil) rather
// than an error so callers cannot distinguish an unknown email from a
// wrong password.
func (s *CredentialService) VerifyUser(ctx context.Context, email, password string) (string, error) {
	ctx, span := middleware.StartSpan(ctx, "credentials.verify_user", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	row, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("query user: %w", err)
	}
	if row == nil || !s.hasher.Verify(password, row.PasswordHash) {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		return "", nil
	}

	token, err := s.sessions.GetNewSession(ctx, email, s.sessionTTL)
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	span.SetAttributes(attribute.Bool("auth.success", true))
	span.AddEvent("user.authenticated")
	return token, nil
}

// ChangePassword overwrites the stored digest for email.
// Fails with ErrUserNotFound or ErrInvalidPassword.
func (s *CredentialService) ChangePassword(ctx context.Context, email, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("change password for %q: %w", email, ErrInvalidPassword)
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return fmt.Errorf("change password for %q: %w", email, ErrUserNotFound)
	}

	digest, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, email, digest); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// DeleteUser removes the user after re-verifying the password.
// A missing user and a wrong password fail identically with
// ErrUserNotFound so the response does not leak which was wrong.
func (s *CredentialService) DeleteUser(ctx context.Context, email, password string) error {
	row, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("query user: %w", err)
	}
	if row == nil || !s.hasher.Verify(password, row.PasswordHash) {
		return fmt.Errorf("delete user %q: %w", email, ErrUserNotFound)
	}

	if err := s.users.Delete(ctx, email); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// ChangeEmail re-keys a user from oldEmail to newEmail.
// Fails with ErrUserNotFound or ErrEmailExists. Existing sessions keep
// referencing the old email value.
func (s *CredentialService) ChangeEmail(ctx context.Context, oldEmail, newEmail string) error {
	exists, err := s.users.ExistsByEmail(ctx, oldEmail)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return fmt.Errorf("change email %q: %w", oldEmail, ErrUserNotFound)
	}

	taken, err := s.users.ExistsByEmail(ctx, newEmail)
	if err != nil {
		return fmt.Errorf("check new email: %w", err)
	}
	if taken {
		return fmt.Errorf("change email to %q: %w", newEmail, ErrEmailExists)
	}

	if err := s.users.UpdateEmail(ctx, oldEmail, newEmail); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return fmt.Errorf("change email to %q: %w", newEmail, ErrEmailExists)
		}
		return fmt.Errorf("update email: %w", err)
	}
	return nil
}

// ChangeName overwrites the stored display name.
// Fails with ErrUserNotFound or ErrIncorrectName.
func (s *CredentialService) ChangeName(ctx context.Context, email, name string) error {
	if name == "" {
		return fmt.Errorf("change name for %q: %w", email, ErrIncorrectName)
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return fmt.Errorf("change name for %q: %w", email, ErrUserNotFound)
	}

	if err := s.users.UpdateName(ctx, email, name); err != nil {
		return fmt.Errorf("update name: %w", err)
	}
	return nil
}

// VerifyEmail reports whether a user with the given email exists.
func (s *CredentialService) VerifyEmail(ctx context.Context, email string) (bool, error) {
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	return exists, nil
}

// GetName returns the display name for email.
// Fails with ErrUserNotFound.
func (s *CredentialService) GetName(ctx context.Context, email string) (string, error) {
	row, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("query user: %w", err)
	}
	if row == nil {
		return "", fmt.Errorf("get name for %q: %w", email, ErrUserNotFound)
	}
	return row.Name, nil
}
