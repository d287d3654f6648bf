// Package auth is the identity service: password credentials, session
// tokens, email verification, and password reset.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/openmun/delegation-api/internal/domain/account"
	"github.com/openmun/delegation-api/internal/domain/person"
	"github.com/openmun/delegation-api/internal/logger"
	"github.com/openmun/delegation-api/internal/metrics"
	"github.com/openmun/delegation-api/internal/storage/postgres"
	"github.com/openmun/delegation-api/internal/validation"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailNotVerified rejects sign-in before any person data is
	// returned; no session is issued.
	ErrEmailNotVerified = errors.New("email not verified")
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrInvalidPassword wraps password validation failures on reset
	ErrInvalidPassword = errors.New("invalid password")
)

// Mailer sends identity-related mail
type Mailer interface {
	SendVerification(ctx context.Context, email, name, token string) error
	SendPasswordReset(ctx context.Context, email, name, token string) error
}

// Reconciler runs the post-verification update sequence for a person
type Reconciler interface {
	Reconcile(ctx context.Context, personID uuid.UUID) error
}

// Config carries the tunables of the identity service
type Config struct {
	VerificationTTL time.Duration
	ResetTTL        time.Duration
}

// Service implements sign-in, email verification, and password reset on top
// of the account store
type Service struct {
	store      postgres.RepositoryContainer
	hasher     BcryptHasher
	tokens     *TokenManager
	mailer     Mailer
	reconciler Reconciler
	cfg        Config
	validator  validation.SignupValidation
	log        *log.Logger
}

// NewService creates a new identity service
func NewService(store postgres.RepositoryContainer, hasher BcryptHasher, tokens *TokenManager, mailer Mailer, reconciler Reconciler, cfg Config) *Service {
	if cfg.VerificationTTL <= 0 {
		cfg.VerificationTTL = 48 * time.Hour
	}
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = 2 * time.Hour
	}
	return &Service{
		store:      store,
		hasher:     hasher,
		tokens:     tokens,
		mailer:     mailer,
		reconciler: reconciler,
		cfg:        cfg,
		log:        logger.Service("auth"),
	}
}

// SignIn checks the credentials and returns a session token with the signed
// in person. An unverified account is rejected before any person data is
// loaded. Signing in to a verified account whose person record has not yet
// been reconciled triggers the reconciliation (the login re-check).
func (s *Service) SignIn(ctx context.Context, email, password string) (string, *person.Person, error) {
	acc, err := s.store.Accounts().GetByEmail(email)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			metrics.SignInsTotal.WithLabelValues("invalid_credentials").Inc()
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to load account: %w", err)
	}

	if err := s.hasher.Compare(acc.PasswordHash, password); err != nil {
		metrics.SignInsTotal.WithLabelValues("invalid_credentials").Inc()
		return "", nil, ErrInvalidCredentials
	}

	if !acc.EmailVerified {
		s.log.Debug("sign-in rejected, email not verified", "account_id", acc.ID)
		metrics.SignInsTotal.WithLabelValues("unverified").Inc()
		return "", nil, ErrEmailNotVerified
	}

	p, err := s.store.People().GetByID(acc.ID.String())
	if err != nil {
		return "", nil, fmt.Errorf("failed to load person: %w", err)
	}

	if !p.Verified {
		if err := s.reconciler.Reconcile(ctx, p.ID); err != nil {
			// The session is still issued; reconciliation re-runs on the
			// next trigger.
			s.log.Error("reconciliation failed during sign-in", "person_id", p.ID, "error", err)
		} else if refreshed, err := s.store.People().GetByID(p.ID.String()); err == nil {
			p = refreshed
		}
	}

	token, err := s.tokens.Issue(p.ID, string(p.Role))
	if err != nil {
		return "", nil, err
	}

	s.log.Info("delegate signed in", "person_id", p.ID, "role", p.Role)
	metrics.SignInsTotal.WithLabelValues("ok").Inc()
	return token, p, nil
}

// VerifyEmail consumes a verification token, marks the account verified,
// and runs the reconciliation sequence.
func (s *Service) VerifyEmail(ctx context.Context, tokenString string) error {
	t, err := s.store.Tokens().Consume(tokenString, account.TokenKindVerification)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("failed to consume verification token: %w", err)
	}
	if t.Expired() {
		s.log.Debug("expired verification token", "account_id", t.AccountID)
		return ErrInvalidToken
	}

	if err := s.store.Accounts().MarkEmailVerified(t.AccountID.String()); err != nil {
		return fmt.Errorf("failed to mark account verified: %w", err)
	}

	s.log.Info("email verified", "account_id", t.AccountID)
	return s.reconciler.Reconcile(ctx, t.AccountID)
}

// ResendVerification issues a fresh verification token and emails it. An
// unknown or already-verified email is a silent no-op so the endpoint does
// not leak which addresses are registered.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	acc, err := s.store.Accounts().GetByEmail(email)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			s.log.Debug("resend requested for unknown email")
			return nil
		}
		return fmt.Errorf("failed to load account: %w", err)
	}
	if acc.EmailVerified {
		return nil
	}

	if err := s.store.Tokens().DeleteForAccount(acc.ID.String(), account.TokenKindVerification); err != nil {
		return fmt.Errorf("failed to clear stale tokens: %w", err)
	}

	t := account.NewToken(acc.ID, account.TokenKindVerification, s.cfg.VerificationTTL)
	if err := s.store.Tokens().Create(t); err != nil {
		return fmt.Errorf("failed to create verification token: %w", err)
	}

	name := ""
	if p, err := s.store.People().GetByID(acc.ID.String()); err == nil {
		name = p.Name
	}
	return s.mailer.SendVerification(ctx, acc.Email, name, t.Token)
}

// RequestPasswordReset issues a reset token and emails it. Unknown emails
// are a silent no-op.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	acc, err := s.store.Accounts().GetByEmail(email)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			s.log.Debug("reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("failed to load account: %w", err)
	}

	if err := s.store.Tokens().DeleteForAccount(acc.ID.String(), account.TokenKindReset); err != nil {
		return fmt.Errorf("failed to clear stale tokens: %w", err)
	}

	t := account.NewToken(acc.ID, account.TokenKindReset, s.cfg.ResetTTL)
	if err := s.store.Tokens().Create(t); err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}

	name := ""
	if p, err := s.store.People().GetByID(acc.ID.String()); err == nil {
		name = p.Name
	}
	return s.mailer.SendPasswordReset(ctx, acc.Email, name, t.Token)
}

// ResetPassword consumes a reset token and replaces the account password
func (s *Service) ResetPassword(_ context.Context, tokenString, newPassword string) error {
	if err := s.validator.ValidatePassword(newPassword); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPassword, err)
	}

	t, err := s.store.Tokens().Consume(tokenString, account.TokenKindReset)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("failed to consume reset token: %w", err)
	}
	if t.Expired() {
		return ErrInvalidToken
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.store.Accounts().UpdatePassword(t.AccountID.String(), hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.log.Info("password reset", "account_id", t.AccountID)
	return nil
}
