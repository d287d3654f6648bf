package postgres

import (
	"errors"

	"github.com/openmun/delegation-api/internal/domain/account"
	"github.com/openmun/delegation-api/internal/domain/community"
	"github.com/openmun/delegation-api/internal/domain/event"
	"github.com/openmun/delegation-api/internal/domain/person"
	"github.com/openmun/delegation-api/internal/domain/profile"
)

// Sentinel errors shared by all repository implementations. Services match
// on these instead of backend-specific error values.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
	// ErrSlotTaken is returned when a country slot claim loses to an
	// earlier assignee.
	ErrSlotTaken = errors.New("country slot already assigned")
)

// AccountRepository persists identity-provider accounts
type AccountRepository interface {
	Create(acc *account.Account) error
	GetByID(id string) (*account.Account, error)
	GetByEmail(email string) (*account.Account, error)
	MarkEmailVerified(id string) error
	UpdatePassword(id, passwordHash string) error
}

// TokenRepository persists one-time verification and reset tokens
type TokenRepository interface {
	Create(t *account.Token) error
	// Consume atomically fetches and deletes a token of the given kind.
	Consume(token string, kind account.TokenKind) (*account.Token, error)
	DeleteForAccount(accountID string, kind account.TokenKind) error
}

// PersonRepository persists delegate records
type PersonRepository interface {
	Create(p *person.Person) error
	GetByID(id string) (*person.Person, error)
	GetByEmail(email string) (*person.Person, error)
	MarkVerified(id string) error
	MarkMemberCountApplied(id string) error
	GetCommunityMembers(communityID string) ([]*person.Person, error)
	CountMembersApplied(communityID string) (int64, error)
}

// CommunityRepository persists communities and their country slots
type CommunityRepository interface {
	Create(c *community.Community) error
	GetByID(id string) (*community.Community, error)
	GetAll() ([]*community.Community, error)
	// ClaimCountrySlot assigns the slot to assigneeID only if it is still
	// unassigned; returns ErrSlotTaken otherwise.
	ClaimCountrySlot(communityID, country, assigneeID string) error
	// IncrementOccupiedSeats bumps the counter by one if the community
	// exists. The seat-capacity upper bound is not enforced here.
	IncrementOccupiedSeats(communityID string) error
	UpdateLogoURL(communityID, logoURL string) error
}

// ProfileRepository persists public post-verification profiles
type ProfileRepository interface {
	Create(p *profile.Profile) error
	GetByID(id string) (*profile.Profile, error)
	Exists(id string) (bool, error)
}

// EventRepository persists conference calendar events
type EventRepository interface {
	Create(e *event.Event) error
	GetByID(id string) (*event.Event, error)
	GetAll() ([]*event.Event, error)
	Delete(id string) error
}

// RepositoryContainer gives access to all repositories and to a
// transactional scope over them.
type RepositoryContainer interface {
	Accounts() AccountRepository
	Tokens() TokenRepository
	People() PersonRepository
	Communities() CommunityRepository
	Profiles() ProfileRepository
	Events() EventRepository

	// WithinTransaction runs fn against a container whose repositories
	// share one transaction. The transaction commits when fn returns nil
	// and rolls back otherwise.
	WithinTransaction(fn func(RepositoryContainer) error) error

	Health() error
}
