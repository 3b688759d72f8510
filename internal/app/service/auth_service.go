package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"sales_system/internal/common"
	"sales_system/internal/common/security"
	"sales_system/internal/domain/model"
	"sales_system/internal/domain/repository"

	"github.com/google/uuid"
)

// SessionStore is the session collaborator contract. Implemented by the
// Redis-backed platform store; Get returns common.ErrNotFound for a session
// that does not exist or was destroyed.
type SessionStore interface {
	Create(ctx context.Context, sess *model.Session) error
	Get(ctx context.Context, id string) (*model.Session, error)
	Destroy(ctx context.Context, id string) error
}

// Mailer is the notification channel contract. Send reports success as a
// boolean only; callers must not learn why a delivery failed.
type Mailer interface {
	Send(to, subject, body string) bool
}

type AuthConfig struct {
	AppName          string
	MaxLoginAttempts int
	LockoutWindow    time.Duration
	BcryptCost       int
}

type AuthService struct {
	userRepo    repository.UserRepository
	attemptRepo repository.LoginAttemptRepository
	sessions    SessionStore
	mailer      Mailer
	cfg         AuthConfig
}

func NewAuthService(
	userRepo repository.UserRepository,
	attemptRepo repository.LoginAttemptRepository,
	sessions SessionStore,
	mailer Mailer,
	cfg AuthConfig,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		attemptRepo: attemptRepo,
		sessions:    sessions,
		mailer:      mailer,
		cfg:         cfg,
	}
}

// Authenticate validates the credentials and, on success, clears the
// username's lockout state and creates a session bound to the user's
// id/username/role. Domain failures are the common.Err* sentinels; anything
// else is an infrastructure fault.
func (s *AuthService) Authenticate(ctx context.Context, username, password, sourceAddr string) (*model.Session, error) {
	failures, err := s.attemptRepo.CountRecentFailures(ctx, username, s.cfg.LockoutWindow)
	if err != nil {
		return nil, fmt.Errorf("count failed attempts for %q: %w", username, err)
	}
	if failures >= s.cfg.MaxLoginAttempts {
		// Locked-out attempts are not recorded; the window must be able to drain.
		log.Printf("auth: login rejected for %q: locked out (%d recent failures)", username, failures)
		return nil, common.ErrLockedOut
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			if recErr := s.recordAttempt(ctx, username, sourceAddr, false); recErr != nil {
				return nil, recErr
			}
			log.Printf("auth: login rejected for %q: unknown username", username)
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user %q: %w", username, err)
	}

	// Status is checked before the password, and without recording an
	// attempt, matching the original system's early exit. The HTTP layer
	// keeps the response indistinguishable from bad credentials.
	if user.Status != model.StatusActive {
		log.Printf("auth: login rejected for %q: inactive account", username)
		return nil, common.ErrInactiveAccount
	}

	if !security.CheckPasswordHash(password, user.HashedPassword) {
		if recErr := s.recordAttempt(ctx, username, sourceAddr, false); recErr != nil {
			return nil, recErr
		}
		log.Printf("auth: login rejected for %q: wrong password", username)
		return nil, common.ErrInvalidCredentials
	}

	if security.PasswordNeedsRehash(user.HashedPassword, s.cfg.BcryptCost) {
		if err := s.persistPassword(ctx, user.ID, password); err != nil {
			return nil, fmt.Errorf("rehash password for %q: %w", username, err)
		}
	}

	if err := s.attemptRepo.Clear(ctx, username); err != nil {
		return nil, fmt.Errorf("clear login attempts for %q: %w", username, err)
	}

	sess := &model.Session{
		ID:       uuid.NewString(),
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session for %q: %w", username, err)
	}

	if err := s.recordAttempt(ctx, username, sourceAddr, true); err != nil {
		return nil, err
	}

	log.Printf("auth: login succeeded for %q (role %s)", username, user.Role)
	return sess, nil
}

// Logout destroys the session, returning the principal to anonymous.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Destroy(ctx, sessionID); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}

// ChangePassword verifies the current password before persisting the new
// one. The minimum-length rule is an addition over the original system,
// which accepted any new password.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("new password must be at least 8 characters: %w", common.ErrValidation)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrInvalidCredentials
		}
		return fmt.Errorf("find user %s: %w", userID, err)
	}

	if !security.CheckPasswordHash(currentPassword, user.HashedPassword) {
		log.Printf("auth: password change rejected for %q: wrong current password", user.Username)
		return common.ErrInvalidCredentials
	}

	if err := s.persistPassword(ctx, userID, newPassword); err != nil {
		return fmt.Errorf("update password for %s: %w", userID, err)
	}
	log.Printf("auth: password changed for %q", user.Username)
	return nil
}

// ResetPassword generates a random password for an active user, persists its
// hash and mails the plaintext to the account's address. Every failure cause
// collapses to false so callers cannot probe which usernames exist.
func (s *AuthService) ResetPassword(ctx context.Context, username string) bool {
	user, err := s.userRepo.FindActiveByUsername(ctx, username)
	if err != nil {
		log.Printf("auth: password reset failed for %q: %v", username, err)
		return false
	}

	newPassword, err := generatePassword()
	if err != nil {
		log.Printf("auth: password reset failed for %q: %v", username, err)
		return false
	}

	if err := s.persistPassword(ctx, user.ID, newPassword); err != nil {
		log.Printf("auth: password reset failed for %q: %v", username, err)
		return false
	}

	subject := "Password Reset - " + s.cfg.AppName
	body := "Your password has been reset.\n\n" +
		"New password: " + newPassword + "\n\n" +
		"Please change your password after logging in."

	return s.mailer.Send(user.Email, subject, body)
}

func (s *AuthService) recordAttempt(ctx context.Context, username, sourceAddr string, success bool) error {
	attempt := &model.LoginAttempt{
		Username:  username,
		IPAddress: sourceAddr,
		Success:   success,
	}
	if err := s.attemptRepo.Record(ctx, attempt); err != nil {
		return fmt.Errorf("record login attempt for %q: %w", username, err)
	}
	return nil
}

func (s *AuthService) persistPassword(ctx context.Context, userID, password string) error {
	hash, err := security.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return err
	}
	return s.userRepo.UpdatePasswordHash(ctx, userID, hash)
}

// generatePassword returns 16 hex characters from a cryptographically secure
// source, matching the original reset format.
func generatePassword() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
