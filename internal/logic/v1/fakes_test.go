package v1

import (
	"context"
	"sync"

	"github.com/duynhne/identity-service/internal/core/domain"
)

// In-memory repository fakes. They honour the repository contracts the
// pgx implementations provide: (nil, nil) for absent rows and
// domain.ErrDuplicate for key collisions.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.UserRow
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]domain.UserRow)}
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.UserRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.users[email]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (r *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[email]
	return ok, nil
}

func (r *fakeUserRepo) Create(_ context.Context, email, passwordHash, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[email]; ok {
		return domain.ErrDuplicate
	}
	r.users[email] = domain.UserRow{Email: email, PasswordHash: passwordHash, Name: name}
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, email, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row, ok := r.users[email]; ok {
		row.PasswordHash = passwordHash
		r.users[email] = row
	}
	return nil
}

func (r *fakeUserRepo) UpdateEmail(_ context.Context, oldEmail, newEmail string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.users[oldEmail]
	if !ok {
		return nil
	}
	if _, taken := r.users[newEmail]; taken {
		return domain.ErrDuplicate
	}
	delete(r.users, oldEmail)
	row.Email = newEmail
	r.users[newEmail] = row
	return nil
}

func (r *fakeUserRepo) UpdateName(_ context.Context, email, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row, ok := r.users[email]; ok {
		row.Name = name
		r.users[email] = row
	}
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, email)
	return nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]domain.SessionRow

	// failCreates makes the next n Create calls return ErrDuplicate,
	// simulating lost insert races.
	failCreates int
	creates     int
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]domain.SessionRow)}
}

func (r *fakeSessionRepo) Create(_ context.Context, row domain.SessionRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if r.failCreates > 0 {
		r.failCreates--
		return domain.ErrDuplicate
	}
	if _, ok := r.sessions[row.Token]; ok {
		return domain.ErrDuplicate
	}
	r.sessions[row.Token] = row
	return nil
}

func (r *fakeSessionRepo) GetByToken(_ context.Context, token string) (*domain.SessionRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.sessions[token]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (r *fakeSessionRepo) TokenExists(_ context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[token]
	return ok, nil
}

func (r *fakeSessionRepo) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
	return nil
}

type fakeResetLinkRepo struct {
	mu    sync.Mutex
	links map[string]domain.ResetLinkRow
}

func newFakeResetLinkRepo() *fakeResetLinkRepo {
	return &fakeResetLinkRepo{links: make(map[string]domain.ResetLinkRow)}
}

func (r *fakeResetLinkRepo) Create(_ context.Context, row domain.ResetLinkRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.links[row.Token]; ok {
		return domain.ErrDuplicate
	}
	r.links[row.Token] = row
	return nil
}

func (r *fakeResetLinkRepo) GetByToken(_ context.Context, token string) (*domain.ResetLinkRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.links[token]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (r *fakeResetLinkRepo) TokenExists(_ context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.links[token]
	return ok, nil
}

func (r *fakeResetLinkRepo) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.links, token)
	return nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

type sentMail struct {
	email string
	token string
}

func (m *fakeMailer) SendResetLink(email, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{email: email, token: token})
	return nil
}
