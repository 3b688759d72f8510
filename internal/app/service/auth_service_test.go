package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"sales_system/internal/common"
	"sales_system/internal/common/security"
	"sales_system/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- In-memory fakes for the store collaborators ---

type fakeUserRepo struct {
	users []*model.User
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range r.users {
		if u.Username == user.Username {
			return common.ErrConflict
		}
	}
	clone := *user
	r.users = append(r.users, &clone)
	return nil
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) FindActiveByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username && u.Status == model.StatusActive {
			clone := *u
			return &clone, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) List(_ context.Context) ([]*model.User, error) {
	out := make([]*model.User, 0, len(r.users))
	for _, u := range r.users {
		clone := *u
		out = append(out, &clone)
	}
	return out, nil
}

func (r *fakeUserRepo) UpdatePasswordHash(_ context.Context, userID, hash string) error {
	for _, u := range r.users {
		if u.ID == userID {
			u.HashedPassword = hash
			return nil
		}
	}
	return common.ErrNotFound
}

func (r *fakeUserRepo) storedHash(username string) string {
	for _, u := range r.users {
		if u.Username == username {
			return u.HashedPassword
		}
	}
	return ""
}

type fakeAttemptRepo struct {
	attempts []*model.LoginAttempt
}

func (r *fakeAttemptRepo) CountRecentFailures(_ context.Context, username string, window time.Duration) (int, error) {
	cutoff := time.Now().Add(-window)
	count := 0
	for _, a := range r.attempts {
		if a.Username == username && !a.Success && a.AttemptTime.After(cutoff) {
			count++
		}
	}
	return count, nil
}

func (r *fakeAttemptRepo) Record(_ context.Context, attempt *model.LoginAttempt) error {
	clone := *attempt
	clone.AttemptTime = time.Now()
	r.attempts = append(r.attempts, &clone)
	return nil
}

func (r *fakeAttemptRepo) Clear(_ context.Context, username string) error {
	kept := r.attempts[:0]
	for _, a := range r.attempts {
		if a.Username != username {
			kept = append(kept, a)
		}
	}
	r.attempts = kept
	return nil
}

func (r *fakeAttemptRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	kept := r.attempts[:0]
	for _, a := range r.attempts {
		if a.AttemptTime.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, a)
	}
	r.attempts = kept
	return deleted, nil
}

func (r *fakeAttemptRepo) rowsFor(username string) []*model.LoginAttempt {
	var rows []*model.LoginAttempt
	for _, a := range r.attempts {
		if a.Username == username {
			rows = append(rows, a)
		}
	}
	return rows
}

func (r *fakeAttemptRepo) seedFailures(username string, n int, age time.Duration) {
	for i := 0; i < n; i++ {
		r.attempts = append(r.attempts, &model.LoginAttempt{
			Username:    username,
			IPAddress:   "10.0.0.1",
			Success:     false,
			AttemptTime: time.Now().Add(-age),
		})
	}
}

type fakeSessionStore struct {
	sessions map[string]*model.Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]*model.Session)}
}

func (s *fakeSessionStore) Create(_ context.Context, sess *model.Session) error {
	s.sessions[sess.ID] = sess
	return nil
}

func (s *fakeSessionStore) Get(_ context.Context, id string) (*model.Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return sess, nil
}

func (s *fakeSessionStore) Destroy(_ context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	ok   bool
	sent []sentMail
}

func (m *fakeMailer) Send(to, subject, body string) bool {
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return m.ok
}

// --- Fixtures ---

func testConfig() AuthConfig {
	return AuthConfig{
		AppName:          "Sales System",
		MaxLoginAttempts: 5,
		LockoutWindow:    15 * time.Minute,
		BcryptCost:       bcrypt.MinCost,
	}
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	return hash
}

func newTestAuth(t *testing.T, cfg AuthConfig, users ...*model.User) (*AuthService, *fakeUserRepo, *fakeAttemptRepo, *fakeSessionStore, *fakeMailer) {
	t.Helper()
	userRepo := &fakeUserRepo{users: users}
	attemptRepo := &fakeAttemptRepo{}
	sessions := newFakeSessionStore()
	mailer := &fakeMailer{ok: true}
	svc := NewAuthService(userRepo, attemptRepo, sessions, mailer, cfg)
	return svc, userRepo, attemptRepo, sessions, mailer
}

func activeUser(t *testing.T, id, username, password string) *model.User {
	t.Helper()
	return &model.User{
		ID:             id,
		Username:       username,
		Email:          username + "@example.com",
		FullName:       username,
		HashedPassword: mustHash(t, password),
		Role:           model.RoleUser,
		Status:         model.StatusActive,
	}
}

// --- Authenticate ---

func TestAuthenticateSuccess(t *testing.T) {
	alice := activeUser(t, "u1", "alice", "secret1")
	alice.Role = model.RoleSuper
	svc, _, attempts, sessions, _ := newTestAuth(t, testConfig(), alice)

	sess, err := svc.Authenticate(context.Background(), "alice", "secret1", "10.0.0.1")
	require.NoError(t, err)
	require.NotNil(t, sess)

	assert.Equal(t, "u1", sess.UserID)
	assert.Equal(t, "alice", sess.Username)
	assert.Equal(t, model.RoleSuper, sess.Role)

	stored, err := sessions.Get(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess, stored)
	assert.Len(t, sessions.sessions, 1)

	rows := attempts.rowsFor("alice")
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Success)
}

// Reproduces the canonical recovery scenario: four wrong passwords, then the
// right one on the fifth try, which is still under the lockout limit. The
// success must wipe every prior attempt row for the username.
func TestAuthenticateFailuresThenSuccessClearsAttempts(t *testing.T) {
	alice := activeUser(t, "u1", "alice", "secret1")
	svc, _, attempts, _, _ := newTestAuth(t, testConfig(), alice)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := svc.Authenticate(ctx, "alice", "wrong", "10.0.0.1")
		assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	}
	require.Len(t, attempts.rowsFor("alice"), 4)

	sess, err := svc.Authenticate(ctx, "alice", "secret1", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, alice.Role, sess.Role)

	rows := attempts.rowsFor("alice")
	require.Len(t, rows, 1, "prior failure rows must be cleared on success")
	assert.True(t, rows[0].Success)
}

// The lockout counter is read before the failure row is inserted, so two
// concurrent attempts for the same username can both pass the check before
// either failure lands. That race is accepted as benign; these tests only
// pin the sequential behavior.
func TestAuthenticateLockedOut(t *testing.T) {
	alice := activeUser(t, "u1", "alice", "secret1")
	svc, _, attempts, sessions, _ := newTestAuth(t, testConfig(), alice)
	attempts.seedFailures("alice", 5, time.Minute)

	// Even the correct password is rejected while locked out.
	_, err := svc.Authenticate(context.Background(), "alice", "secret1", "10.0.0.1")
	assert.ErrorIs(t, err, common.ErrLockedOut)

	assert.Len(t, attempts.rowsFor("alice"), 5, "locked-out attempts must not be recorded")
	assert.Empty(t, sessions.sessions)
}

func TestAuthenticateLockoutWindowExpired(t *testing.T) {
	alice := activeUser(t, "u1", "alice", "secret1")
	svc, _, attempts, _, _ := newTestAuth(t, testConfig(), alice)
	attempts.seedFailures("alice", 5, 16*time.Minute) // just outside the window

	sess, err := svc.Authenticate(context.Background(), "alice", "secret1", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "alice", sess.Username)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	svc, _, attempts, sessions, _ := newTestAuth(t, testConfig())

	_, err := svc.Authenticate(context.Background(), "ghost", "whatever", "10.0.0.1")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	rows := attempts.rowsFor("ghost")
	require.Len(t, rows, 1)
	assert.False(t, rows[0].Success)
	assert.Empty(t, sessions.sessions)
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	bob := activeUser(t, "u2", "bob", "hunter22")
	bob.Status = model.StatusInactive
	svc, _, attempts, sessions, _ := newTestAuth(t, testConfig(), bob)

	_, err := svc.Authenticate(context.Background(), "bob", "hunter22", "10.0.0.1")
	assert.ErrorIs(t, err, common.ErrInactiveAccount)

	// The inactive exit happens before the password check and records nothing.
	assert.Empty(t, attempts.rowsFor("bob"))
	assert.Empty(t, sessions.sessions)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	alice := activeUser(t, "u1", "alice", "secret1")
	svc, _, attempts, sessions, _ := newTestAuth(t, testConfig(), alice)

	_, err := svc.Authenticate(context.Background(), "alice", "nope", "10.0.0.1")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	rows := attempts.rowsFor("alice")
	require.Len(t, rows, 1)
	assert.False(t, rows[0].Success)
	assert.Empty(t, sessions.sessions)
}

func TestAuthenticateRehashOnLogin(t *testing.T) {
	alice := activeUser(t, "u1", "alice", "secret1")
	oldHash := alice.HashedPassword // bcrypt.MinCost

	cfg := testConfig()
	cfg.BcryptCost = bcrypt.MinCost + 1
	svc, users, _, _, _ := newTestAuth(t, cfg, alice)

	_, err := svc.Authenticate(context.Background(), "alice", "secret1", "10.0.0.1")
	require.NoError(t, err)

	newHash := users.storedHash("alice")
	assert.NotEqual(t, oldHash, newHash, "hash must be upgraded on login")
	assert.True(t, security.CheckPasswordHash("secret1", newHash))

	cost, err := bcrypt.Cost([]byte(newHash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost+1, cost)
}

// --- Logout ---

func TestLogoutDestroysSession(t *testing.T) {
	alice := activeUser(t, "u1", "alice", "secret1")
	svc, _, _, sessions, _ := newTestAuth(t, testConfig(), alice)
	ctx := context.Background()

	sess, err := svc.Authenticate(ctx, "alice", "secret1", "10.0.0.1")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, sess.ID))

	_, err = sessions.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

// --- ChangePassword ---

func TestChangePasswordWrongCurrent(t *testing.T) {
	alice := activeUser(t, "u1", "alice", "secret1")
	before := alice.HashedPassword
	svc, users, _, _, _ := newTestAuth(t, testConfig(), alice)

	err := svc.ChangePassword(context.Background(), "u1", "wrong", "longenough")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	assert.Equal(t, before, users.storedHash("alice"), "stored hash must be unchanged")
}

func TestChangePasswordUnknownUser(t *testing.T) {
	svc, _, _, _, _ := newTestAuth(t, testConfig())

	err := svc.ChangePassword(context.Background(), "missing", "x", "longenough")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestChangePasswordTooShort(t *testing.T) {
	alice := activeUser(t, "u1", "alice", "secret1")
	before := alice.HashedPassword
	svc, users, _, _, _ := newTestAuth(t, testConfig(), alice)

	err := svc.ChangePassword(context.Background(), "u1", "secret1", "short")
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, before, users.storedHash("alice"))
}

func TestChangePasswordSuccess(t *testing.T) {
	alice := activeUser(t, "u1", "alice", "secret1")
	svc, users, _, _, _ := newTestAuth(t, testConfig(), alice)

	err := svc.ChangePassword(context.Background(), "u1", "secret1", "newsecret")
	require.NoError(t, err)

	hash := users.storedHash("alice")
	assert.True(t, security.CheckPasswordHash("newsecret", hash))
	assert.False(t, security.CheckPasswordHash("secret1", hash))
}

// --- ResetPassword ---

func TestResetPasswordUnknownUser(t *testing.T) {
	svc, _, _, _, mailer := newTestAuth(t, testConfig())

	ok := svc.ResetPassword(context.Background(), "ghost")
	assert.False(t, ok)
	assert.Empty(t, mailer.sent)
}

func TestResetPasswordInactiveUser(t *testing.T) {
	bob := activeUser(t, "u2", "bob", "hunter22")
	bob.Status = model.StatusInactive
	before := bob.HashedPassword
	svc, users, _, _, mailer := newTestAuth(t, testConfig(), bob)

	ok := svc.ResetPassword(context.Background(), "bob")
	assert.False(t, ok)
	assert.Empty(t, mailer.sent)
	assert.Equal(t, before, users.storedHash("bob"))
}

func TestResetPasswordSuccess(t *testing.T) {
	alice := activeUser(t, "u1", "alice", "secret1")
	before := alice.HashedPassword
	svc, users, _, _, mailer := newTestAuth(t, testConfig(), alice)

	ok := svc.ResetPassword(context.Background(), "alice")
	assert.True(t, ok)

	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	assert.Equal(t, "alice@example.com", msg.to)
	assert.Equal(t, "Password Reset - Sales System", msg.subject)

	// The mail carries the only copy of the plaintext; the stored hash must
	// verify against it.
	newPassword := extractPassword(t, msg.body)
	assert.Len(t, newPassword, 16)
	hash := users.storedHash("alice")
	assert.NotEqual(t, before, hash)
	assert.True(t, security.CheckPasswordHash(newPassword, hash))
	assert.False(t, security.CheckPasswordHash("secret1", hash))
}

func TestResetPasswordMailFailure(t *testing.T) {
	alice := activeUser(t, "u1", "alice", "secret1")
	before := alice.HashedPassword
	svc, users, _, _, mailer := newTestAuth(t, testConfig(), alice)
	mailer.ok = false

	ok := svc.ResetPassword(context.Background(), "alice")
	assert.False(t, ok)
	// The hash is persisted before delivery is attempted.
	assert.NotEqual(t, before, users.storedHash("alice"))
}

func extractPassword(t *testing.T, body string) string {
	t.Helper()
	const marker = "New password: "
	idx := strings.Index(body, marker)
	require.GreaterOrEqual(t, idx, 0, fmt.Sprintf("mail body missing password line: %q", body))
	rest := body[idx+len(marker):]
	end := strings.Index(rest, "\n")
	require.GreaterOrEqual(t, end, 0)
	return rest[:end]
}
