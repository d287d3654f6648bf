// Package registration holds the signup and verification-reconciliation
// core: capacity checks, country slot allocation, and the one-time
// post-verification updates.
package registration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/openmun/delegation-api/internal/domain/account"
	"github.com/openmun/delegation-api/internal/domain/person"
	"github.com/openmun/delegation-api/internal/domain/profile"
	"github.com/openmun/delegation-api/internal/logger"
	"github.com/openmun/delegation-api/internal/metrics"
	"github.com/openmun/delegation-api/internal/storage/postgres"
	"github.com/openmun/delegation-api/internal/validation"
)

// Hasher hashes signup passwords. Implemented by the auth package.
type Hasher interface {
	Hash(password string) (string, error)
}

// Mailer sends delegate-facing mail. Implemented by the mailer package.
type Mailer interface {
	SendVerification(ctx context.Context, email, name, token string) error
}

// Config carries the tunables of the registration service
type Config struct {
	VerificationTTL time.Duration
}

// Service implements the registration workflow: validate a signup against
// community capacity and slot availability, create the identity, and write
// the initial person record. It also runs the idempotent verification
// reconciliation sequence.
type Service struct {
	store     postgres.RepositoryContainer
	hasher    Hasher
	mailer    Mailer
	cfg       Config
	validator validation.SignupValidation
	log       *log.Logger

	// reconciliation runs are serialized per person so concurrent
	// triggers (login plus verify endpoint) cannot double-apply.
	reconciles singleflight.Group
}

// NewService creates a new registration service
func NewService(store postgres.RepositoryContainer, hasher Hasher, mailer Mailer, cfg Config) *Service {
	if cfg.VerificationTTL <= 0 {
		cfg.VerificationTTL = 48 * time.Hour
	}
	return &Service{
		store:  store,
		hasher: hasher,
		mailer: mailer,
		cfg:    cfg,
		log:    logger.Service("registration"),
	}
}

// RegisterRequest is a signup submission for a community seat
type RegisterRequest struct {
	Email       string    `json:"email"`
	Password    string    `json:"password"`
	Name        string    `json:"name"`
	CommunityID uuid.UUID `json:"community_id"`
	Country     string    `json:"country"`
}

// Register validates the request against current capacity and slot
// availability, creates the account, claims the country slot, and writes the
// unverified person record. Account, person, and slot claim commit in one
// transaction; the seat counter is not touched until verification.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*person.Person, error) {
	if err := s.validateRequest(req); err != nil {
		metrics.SignupsTotal.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	comm, err := s.store.Communities().GetByID(req.CommunityID.String())
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			metrics.SignupsTotal.WithLabelValues("community_not_found").Inc()
			return nil, ErrCommunityNotFound
		}
		return nil, fmt.Errorf("failed to load community: %w", err)
	}

	// Advisory checks against a possibly-stale read. The slot claim below
	// is the authoritative guard.
	if !comm.HasCapacity() {
		s.log.Debug("signup rejected, community full",
			"community_id", comm.ID, "occupied", comm.OccupiedSeats, "capacity", comm.SeatCapacity)
		metrics.SignupsTotal.WithLabelValues("community_full").Inc()
		return nil, ErrCommunityFull
	}
	slot, ok := comm.SlotFor(req.Country)
	if !ok || slot.AssigneeID != "" {
		s.log.Debug("signup rejected, country unavailable",
			"community_id", comm.ID, "country", req.Country)
		metrics.SignupsTotal.WithLabelValues("country_unavailable").Inc()
		return nil, ErrCountryUnavailable
	}

	if _, err := s.store.Accounts().GetByEmail(req.Email); err == nil {
		metrics.SignupsTotal.WithLabelValues("email_taken").Inc()
		return nil, ErrEmailAlreadyRegistered
	} else if !errors.Is(err, postgres.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	id := uuid.New()
	newPerson := person.NewPerson(id, req.Name, req.Email, req.CommunityID, req.Country)
	verification := account.NewToken(id, account.TokenKindVerification, s.cfg.VerificationTTL)

	err = s.store.WithinTransaction(func(tx postgres.RepositoryContainer) error {
		if err := tx.Accounts().Create(account.NewAccount(id, req.Email, hash)); err != nil {
			if errors.Is(err, postgres.ErrDuplicate) {
				return ErrEmailAlreadyRegistered
			}
			return fmt.Errorf("failed to create account: %w", err)
		}
		if err := tx.People().Create(newPerson); err != nil {
			return fmt.Errorf("failed to create person: %w", err)
		}
		if err := tx.Communities().ClaimCountrySlot(req.CommunityID.String(), req.Country, id.String()); err != nil {
			if errors.Is(err, postgres.ErrSlotTaken) {
				return ErrCountryUnavailable
			}
			return fmt.Errorf("failed to claim country slot: %w", err)
		}
		return tx.Tokens().Create(verification)
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailAlreadyRegistered):
			metrics.SignupsTotal.WithLabelValues("email_taken").Inc()
		case errors.Is(err, ErrCountryUnavailable):
			metrics.SignupsTotal.WithLabelValues("country_unavailable").Inc()
		default:
			metrics.SignupsTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	// The account exists from here on. A mail failure is surfaced but not
	// rolled back; the delegate can request a re-send.
	if err := s.mailer.SendVerification(ctx, req.Email, req.Name, verification.Token); err != nil {
		s.log.Error("verification email failed after signup",
			"person_id", id, "email", req.Email, "error", err)
		metrics.SignupsTotal.WithLabelValues("email_failed").Inc()
		return newPerson, fmt.Errorf("%w: %v", ErrVerificationEmailFailed, err)
	}

	s.log.Info("delegate registered",
		"person_id", id, "community_id", req.CommunityID, "country", req.Country)
	metrics.SignupsTotal.WithLabelValues("ok").Inc()
	return newPerson, nil
}

// validateRequest applies field-level validation to a signup request
func (s *Service) validateRequest(req RegisterRequest) error {
	if err := s.validator.ValidateName(req.Name); err != nil {
		return err
	}
	if err := s.validator.ValidateSignupEmail(req.Email); err != nil {
		return err
	}
	if err := s.validator.ValidatePassword(req.Password); err != nil {
		return err
	}
	if err := s.validator.ValidateCountry(req.Country); err != nil {
		return err
	}
	if req.CommunityID == uuid.Nil {
		return errors.New("community_id is required")
	}
	return nil
}

// Reconcile performs the one-time post-verification updates for a person:
// mark verified, ensure the profile exists, and count the seat. Each step is
// guarded by a stored flag, so running it again is a no-op. Concurrent calls
// for the same person collapse into a single run.
func (s *Service) Reconcile(ctx context.Context, personID uuid.UUID) error {
	_, err, _ := s.reconciles.Do(personID.String(), func() (interface{}, error) {
		return nil, s.reconcile(ctx, personID)
	})
	return err
}

func (s *Service) reconcile(_ context.Context, personID uuid.UUID) error {
	p, err := s.store.People().GetByID(personID.String())
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			metrics.ReconciliationsTotal.WithLabelValues("error").Inc()
			return ErrPersonNotFound
		}
		metrics.ReconciliationsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to load person: %w", err)
	}

	if p.Verified && p.MemberCountApplied {
		metrics.ReconciliationsTotal.WithLabelValues("noop").Inc()
		return nil
	}

	if !p.Verified {
		if err := s.store.People().MarkVerified(p.ID.String()); err != nil {
			metrics.ReconciliationsTotal.WithLabelValues("error").Inc()
			return fmt.Errorf("failed to mark person verified: %w", err)
		}
		s.log.Info("person verified", "person_id", p.ID)
	}

	if p.HasCommunity() {
		exists, err := s.store.Profiles().Exists(p.ID.String())
		if err != nil {
			metrics.ReconciliationsTotal.WithLabelValues("error").Inc()
			return fmt.Errorf("failed to check profile: %w", err)
		}
		if !exists {
			prof := profile.NewProfile(p.ID, p.Name, p.Email, *p.CommunityID, p.Country)
			if err := s.store.Profiles().Create(prof); err != nil && !errors.Is(err, postgres.ErrDuplicate) {
				metrics.ReconciliationsTotal.WithLabelValues("error").Inc()
				return fmt.Errorf("failed to create profile: %w", err)
			}
			s.log.Info("profile created", "person_id", p.ID, "community_id", *p.CommunityID)
		}

		if !p.MemberCountApplied {
			// Row-locked read-modify-write inside the store; concurrent
			// increments from different signups serialize there. The
			// capacity upper bound is deliberately not enforced here.
			if err := s.store.Communities().IncrementOccupiedSeats(p.CommunityID.String()); err != nil {
				metrics.ReconciliationsTotal.WithLabelValues("error").Inc()
				return fmt.Errorf("failed to increment occupied seats: %w", err)
			}
			if err := s.store.People().MarkMemberCountApplied(p.ID.String()); err != nil {
				metrics.ReconciliationsTotal.WithLabelValues("error").Inc()
				return fmt.Errorf("failed to mark member count applied: %w", err)
			}
			s.log.Info("seat counted", "person_id", p.ID, "community_id", *p.CommunityID)
		}
	}

	metrics.ReconciliationsTotal.WithLabelValues("applied").Inc()
	return nil
}
