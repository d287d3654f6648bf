// Package memory provides a thread-safe in-memory implementation of the
// repository interfaces, used by package tests and local development.
package memory

import (
	"sync"

	"github.com/openmun/delegation-api/internal/domain/account"
	"github.com/openmun/delegation-api/internal/domain/community"
	"github.com/openmun/delegation-api/internal/domain/event"
	"github.com/openmun/delegation-api/internal/domain/person"
	"github.com/openmun/delegation-api/internal/domain/profile"
	"github.com/openmun/delegation-api/internal/storage/postgres"
)

// Store implements postgres.RepositoryContainer backed by in-process maps
type Store struct {
	mu sync.RWMutex

	accounts    map[string]*account.Account
	tokens      map[string]*account.Token
	people      map[string]*person.Person
	communities map[string]*community.Community
	profiles    map[string]*profile.Profile
	events      map[string]*event.Event
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		accounts:    make(map[string]*account.Account),
		tokens:      make(map[string]*account.Token),
		people:      make(map[string]*person.Person),
		communities: make(map[string]*community.Community),
		profiles:    make(map[string]*profile.Profile),
		events:      make(map[string]*event.Event),
	}
}

func (s *Store) Accounts() postgres.AccountRepository		{ return (*accountRepo)(s) }
func (s *Store) Tokens() postgres.TokenRepository		{ return (*tokenRepo)(s) }
func (s *Store) People() postgres.PersonRepository		{ return (*personRepo)(s) }
func (s *Store) Communities() postgres.CommunityRepository	{ return (*communityRepo)(s) }
func (s *Store) Profiles() postgres.ProfileRepository		{ return (*profileRepo)(s) }
func (s *Store) Events() postgres.EventRepository		{ return (*eventRepo)(s) }

// WithinTransaction runs fn against the same store. The in-memory backend
// offers atomicity through the store mutex per operation but no rollback;
// tests that need failure injection wrap the container instead.
func (s *Store) WithinTransaction(fn func(postgres.RepositoryContainer) error) error {
	return fn(s)
}

// Health always succeeds for the in-memory backend
func (s *Store) Health() error { return nil }

type accountRepo Store

func (r *accountRepo) Create(acc *account.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[acc.ID.String()]; exists {
		return postgres.ErrDuplicate
	}
	for _, existing := range r.accounts {
		if existing.Email == acc.Email {
			return postgres.ErrDuplicate
		}
	}
	cp := *acc
	r.accounts[acc.ID.String()] = &cp
	return nil
}

func (r *accountRepo) GetByID(id string) (*account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acc, exists := r.accounts[id]
	if !exists {
		return nil, postgres.ErrNotFound
	}
	cp := *acc
	return &cp, nil
}

func (r *accountRepo) GetByEmail(email string) (*account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, acc := range r.accounts {
		if acc.Email == email {
			cp := *acc
			return &cp, nil
		}
	}
	return nil, postgres.ErrNotFound
}

func (r *accountRepo) MarkEmailVerified(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, exists := r.accounts[id]
	if !exists {
		return postgres.ErrNotFound
	}
	acc.EmailVerified = true
	return nil
}

func (r *accountRepo) UpdatePassword(id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, exists := r.accounts[id]
	if !exists {
		return postgres.ErrNotFound
	}
	acc.PasswordHash = passwordHash
	return nil
}

type tokenRepo Store

func (r *tokenRepo) Create(t *account.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tokens[t.Token]; exists {
		return postgres.ErrDuplicate
	}
	cp := *t
	r.tokens[t.Token] = &cp
	return nil
}

func (r *tokenRepo) Consume(token string, kind account.TokenKind) (*account.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, exists := r.tokens[token]
	if !exists || t.Kind != kind {
		return nil, postgres.ErrNotFound
	}
	delete(r.tokens, token)
	cp := *t
	return &cp, nil
}

func (r *tokenRepo) DeleteForAccount(accountID string, kind account.TokenKind) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, t := range r.tokens {
		if t.AccountID.String() == accountID && t.Kind == kind {
			delete(r.tokens, key)
		}
	}
	return nil
}

type personRepo Store

func (r *personRepo) Create(p *person.Person) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.people[p.ID.String()]; exists {
		return postgres.ErrDuplicate
	}
	cp := *p
	r.people[p.ID.String()] = &cp
	return nil
}

func (r *personRepo) GetByID(id string) (*person.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.people[id]
	if !exists {
		return nil, postgres.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *personRepo) GetByEmail(email string) (*person.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.people {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, postgres.ErrNotFound
}

func (r *personRepo) MarkVerified(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, exists := r.people[id]
	if !exists {
		return postgres.ErrNotFound
	}
	p.Verified = true
	return nil
}

func (r *personRepo) MarkMemberCountApplied(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, exists := r.people[id]
	if !exists {
		return postgres.ErrNotFound
	}
	p.MemberCountApplied = true
	return nil
}

func (r *personRepo) GetCommunityMembers(communityID string) ([]*person.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var members []*person.Person
	for _, p := range r.people {
		if p.CommunityID != nil && p.CommunityID.String() == communityID {
			cp := *p
			members = append(members, &cp)
		}
	}
	return members, nil
}

func (r *personRepo) CountMembersApplied(communityID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, p := range r.people {
		if p.CommunityID != nil && p.CommunityID.String() == communityID && p.MemberCountApplied {
			count++
		}
	}
	return count, nil
}

type communityRepo Store

func (r *communityRepo) Create(c *community.Community) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.communities[c.ID.String()]; exists {
		return postgres.ErrDuplicate
	}
	for _, existing := range r.communities {
		if existing.Name == c.Name {
			return postgres.ErrDuplicate
		}
	}
	cp := *c
	cp.Slots = append([]community.CountrySlot(nil), c.Slots...)
	r.communities[c.ID.String()] = &cp
	return nil
}

func (r *communityRepo) GetByID(id string) (*community.Community, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.communities[id]
	if !exists {
		return nil, postgres.ErrNotFound
	}
	cp := *c
	cp.Slots = append([]community.CountrySlot(nil), c.Slots...)
	return &cp, nil
}

func (r *communityRepo) GetAll() ([]*community.Community, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	communities := make([]*community.Community, 0, len(r.communities))
	for _, c := range r.communities {
		cp := *c
		cp.Slots = append([]community.CountrySlot(nil), c.Slots...)
		communities = append(communities, &cp)
	}
	return communities, nil
}

func (r *communityRepo) ClaimCountrySlot(communityID, country, assigneeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, exists := r.communities[communityID]
	if !exists {
		return postgres.ErrNotFound
	}
	for i := range c.Slots {
		if c.Slots[i].Country == country {
			if c.Slots[i].AssigneeID != "" {
				return postgres.ErrSlotTaken
			}
			c.Slots[i].AssigneeID = assigneeID
			return nil
		}
	}
	return postgres.ErrSlotTaken
}

func (r *communityRepo) IncrementOccupiedSeats(communityID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, exists := r.communities[communityID]
	if !exists {
		return postgres.ErrNotFound
	}
	c.OccupiedSeats++
	return nil
}

func (r *communityRepo) UpdateLogoURL(communityID, logoURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, exists := r.communities[communityID]
	if !exists {
		return postgres.ErrNotFound
	}
	c.LogoURL = logoURL
	return nil
}

type profileRepo Store

func (r *profileRepo) Create(p *profile.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.profiles[p.ID.String()]; exists {
		return postgres.ErrDuplicate
	}
	cp := *p
	r.profiles[p.ID.String()] = &cp
	return nil
}

func (r *profileRepo) GetByID(id string) (*profile.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.profiles[id]
	if !exists {
		return nil, postgres.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *profileRepo) Exists(id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.profiles[id]
	return exists, nil
}

type eventRepo Store

func (r *eventRepo) Create(e *event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.events[e.ID.String()]; exists {
		return postgres.ErrDuplicate
	}
	cp := *e
	r.events[e.ID.String()] = &cp
	return nil
}

func (r *eventRepo) GetByID(id string) (*event.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.events[id]
	if !exists {
		return nil, postgres.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *eventRepo) GetAll() ([]*event.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := make([]*event.Event, 0, len(r.events))
	for _, e := range r.events {
		cp := *e
		events = append(events, &cp)
	}
	return events, nil
}

func (r *eventRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.events[id]; !exists {
		return postgres.ErrNotFound
	}
	delete(r.events, id)
	return nil
}
