package registration

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmun/delegation-api/internal/domain/community"
	"github.com/openmun/delegation-api/internal/storage/memory"
	"github.com/openmun/delegation-api/internal/storage/postgres"
)

type stubHasher struct{}

func (stubHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

type sentMail struct {
	Email string
	Name  string
	Token string
}

type recordingMailer struct {
	failNext bool
	sent     []sentMail
}

func (m *recordingMailer) SendVerification(_ context.Context, email, name, token string) error {
	if m.failNext {
		m.failNext = false
		return fmt.Errorf("smtp connection refused")
	}
	m.sent = append(m.sent, sentMail{Email: email, Name: name, Token: token})
	return nil
}

func newTestService(t *testing.T) (*Service, *memory.Store, *recordingMailer) {
	t.Helper()
	store := memory.NewStore()
	mail := &recordingMailer{}
	svc := NewService(store, stubHasher{}, mail, Config{})
	return svc, store, mail
}

func seedCommunity(t *testing.T, store *memory.Store, capacity int, countries ...string) *community.Community {
	t.Helper()
	comm := community.NewCommunity("Security Council", capacity, countries)
	require.NoError(t, store.Communities().Create(comm))
	return comm
}

func signupRequest(comm *community.Community, email, country string) RegisterRequest {
	return RegisterRequest{
		Email:       email,
		Password:    "delegate-pass",
		Name:        "Test Delegate",
		CommunityID: comm.ID,
		Country:     country,
	}
}

func TestRegisterCreatesIdentityAndClaimsSlot(t *testing.T) {
	svc, store, mail := newTestService(t)
	comm := seedCommunity(t, store, 5, "France", "Spain")

	p, err := svc.Register(context.Background(), signupRequest(comm, "alice@example.org", "France"))
	require.NoError(t, err)
	require.NotNil(t, p)

	acc, err := store.Accounts().GetByEmail("alice@example.org")
	require.NoError(t, err)
	assert.False(t, acc.EmailVerified)
	assert.Equal(t, "hashed:delegate-pass", acc.PasswordHash)
	assert.Equal(t, p.ID, acc.ID, "account and person share an id")

	stored, err := store.People().GetByID(p.ID.String())
	require.NoError(t, err)
	assert.False(t, stored.Verified)
	assert.False(t, stored.MemberCountApplied)
	assert.Equal(t, "France", stored.Country)

	reloaded, err := store.Communities().GetByID(comm.ID.String())
	require.NoError(t, err)
	slot, ok := reloaded.SlotFor("France")
	require.True(t, ok)
	assert.Equal(t, p.ID.String(), slot.AssigneeID, "slot is claimed at signup")
	assert.Equal(t, 0, reloaded.OccupiedSeats, "seat is not counted before verification")

	require.Len(t, mail.sent, 1)
	assert.Equal(t, "alice@example.org", mail.sent[0].Email)
	assert.NotEmpty(t, mail.sent[0].Token)
}

func TestRegisterRejectsUnknownCommunity(t *testing.T) {
	svc, store, _ := newTestService(t)
	seedCommunity(t, store, 5, "France")

	req := RegisterRequest{
		Email:       "bob@example.org",
		Password:    "delegate-pass",
		Name:        "Bob",
		CommunityID: uuid.New(),
		Country:     "France",
	}
	_, err := svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, ErrCommunityNotFound)
}

func TestRegisterRejectsFullCommunity(t *testing.T) {
	svc, store, _ := newTestService(t)
	comm := seedCommunity(t, store, 1, "France", "Spain")

	_, err := svc.Register(context.Background(), signupRequest(comm, "first@example.org", "France"))
	require.NoError(t, err)
	p, err := store.People().GetByEmail("first@example.org")
	require.NoError(t, err)
	require.NoError(t, svc.Reconcile(context.Background(), p.ID))

	_, err = svc.Register(context.Background(), signupRequest(comm, "second@example.org", "Spain"))
	assert.ErrorIs(t, err, ErrCommunityFull)

	_, accErr := store.Accounts().GetByEmail("second@example.org")
	assert.ErrorIs(t, accErr, postgres.ErrNotFound, "rejected signup leaves no account behind")
}

func TestRegisterRejectsUnavailableCountry(t *testing.T) {
	svc, store, _ := newTestService(t)
	comm := seedCommunity(t, store, 5, "France", "Spain")

	_, err := svc.Register(context.Background(), signupRequest(comm, "alice@example.org", "France"))
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), signupRequest(comm, "bob@example.org", "France"))
	assert.ErrorIs(t, err, ErrCountryUnavailable, "claimed country cannot be taken twice")

	_, err = svc.Register(context.Background(), signupRequest(comm, "bob@example.org", "Atlantis"))
	assert.ErrorIs(t, err, ErrCountryUnavailable, "country outside the community's slots")
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, store, _ := newTestService(t)
	comm := seedCommunity(t, store, 5, "France", "Spain")

	_, err := svc.Register(context.Background(), signupRequest(comm, "alice@example.org", "France"))
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), signupRequest(comm, "alice@example.org", "Spain"))
	assert.ErrorIs(t, err, ErrEmailAlreadyRegistered)

	reloaded, err := store.Communities().GetByID(comm.ID.String())
	require.NoError(t, err)
	slot, _ := reloaded.SlotFor("Spain")
	assert.Empty(t, slot.AssigneeID, "failed signup does not hold the slot")
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	svc, store, _ := newTestService(t)
	comm := seedCommunity(t, store, 5, "France")

	cases := []struct {
		name string
		req  RegisterRequest
	}{
		{"short password", RegisterRequest{Email: "a@b.org", Password: "short", Name: "Al", CommunityID: comm.ID, Country: "France"}},
		{"missing name", RegisterRequest{Email: "a@b.org", Password: "delegate-pass", CommunityID: comm.ID, Country: "France"}},
		{"bad email", RegisterRequest{Email: "not-an-email", Password: "delegate-pass", Name: "Al", CommunityID: comm.ID, Country: "France"}},
		{"missing country", RegisterRequest{Email: "a@b.org", Password: "delegate-pass", Name: "Al", CommunityID: comm.ID}},
		{"missing community", RegisterRequest{Email: "a@b.org", Password: "delegate-pass", Name: "Al", Country: "France"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.req)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

func TestRegisterSurfacesMailFailureButKeepsAccount(t *testing.T) {
	svc, store, mail := newTestService(t)
	comm := seedCommunity(t, store, 5, "France")
	mail.failNext = true

	p, err := svc.Register(context.Background(), signupRequest(comm, "alice@example.org", "France"))
	assert.ErrorIs(t, err, ErrVerificationEmailFailed)
	require.NotNil(t, p, "the created person is returned alongside the mail error")

	_, accErr := store.Accounts().GetByEmail("alice@example.org")
	assert.NoError(t, accErr, "account survives the mail failure for a later re-send")
}

// Seat counting trails signups: a signup holds a country slot immediately but
// the occupied counter moves only when that member's verification reconciles.
func TestSeatCountingWaitsForVerification(t *testing.T) {
	svc, store, _ := newTestService(t)
	comm := seedCommunity(t, store, 5, "France", "Spain", "Japan", "Brazil", "Kenya")
	ctx := context.Background()

	for i, country := range []string{"Japan", "Brazil", "Kenya"} {
		email := fmt.Sprintf("member%d@example.org", i)
		_, err := svc.Register(ctx, signupRequest(comm, email, country))
		require.NoError(t, err)
		p, err := store.People().GetByEmail(email)
		require.NoError(t, err)
		require.NoError(t, svc.Reconcile(ctx, p.ID))
	}
	// A fourth member who verified
	_, err := svc.Register(ctx, signupRequest(comm, "fourth@example.org", "Spain"))
	require.NoError(t, err)
	fourth, err := store.People().GetByEmail("fourth@example.org")
	require.NoError(t, err)
	require.NoError(t, svc.Reconcile(ctx, fourth.ID))

	reloaded, err := store.Communities().GetByID(comm.ID.String())
	require.NoError(t, err)
	require.Equal(t, 4, reloaded.OccupiedSeats)

	// France signs up but has not verified yet
	_, err = svc.Register(ctx, signupRequest(comm, "france@example.org", "France"))
	require.NoError(t, err)

	reloaded, err = store.Communities().GetByID(comm.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 4, reloaded.OccupiedSeats, "unverified signup does not count a seat")

	france, err := store.People().GetByEmail("france@example.org")
	require.NoError(t, err)
	require.NoError(t, svc.Reconcile(ctx, france.ID))

	reloaded, err = store.Communities().GetByID(comm.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 5, reloaded.OccupiedSeats, "verification moves the counter")
}

// The increment step deliberately has no upper-bound check: members admitted
// while seats were advisory-free may verify past capacity.
func TestReconcileCountsPastCapacity(t *testing.T) {
	svc, store, _ := newTestService(t)
	comm := seedCommunity(t, store, 1, "France", "Spain")
	ctx := context.Background()

	_, err := svc.Register(ctx, signupRequest(comm, "france@example.org", "France"))
	require.NoError(t, err)
	_, err = svc.Register(ctx, signupRequest(comm, "spain@example.org", "Spain"))
	require.NoError(t, err, "capacity check is advisory while both are unverified")

	for _, email := range []string{"france@example.org", "spain@example.org"} {
		p, err := store.People().GetByEmail(email)
		require.NoError(t, err)
		require.NoError(t, svc.Reconcile(ctx, p.ID))
	}

	reloaded, err := store.Communities().GetByID(comm.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.OccupiedSeats, "increment does not clamp at capacity")
}

func TestReconcileIsIdempotent(t *testing.T) {
	svc, store, _ := newTestService(t)
	comm := seedCommunity(t, store, 5, "France")
	ctx := context.Background()

	_, err := svc.Register(ctx, signupRequest(comm, "alice@example.org", "France"))
	require.NoError(t, err)
	p, err := store.People().GetByEmail("alice@example.org")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Reconcile(ctx, p.ID))
	}

	reloaded, err := store.Communities().GetByID(comm.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.OccupiedSeats, "repeated reconciliation counts the seat once")

	stored, err := store.People().GetByID(p.ID.String())
	require.NoError(t, err)
	assert.True(t, stored.Verified)
	assert.True(t, stored.MemberCountApplied)

	prof, err := store.Profiles().GetByID(p.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "France", prof.Country)
}

func TestReconcileUnknownPerson(t *testing.T) {
	svc, _, _ := newTestService(t)
	err := svc.Reconcile(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrPersonNotFound)
}

// The occupied counter and the number of members with their seat applied
// must agree after any sequence of signups and reconciliations.
func TestSeatCounterMatchesAppliedMembers(t *testing.T) {
	svc, store, _ := newTestService(t)
	comm := seedCommunity(t, store, 10, "France", "Spain", "Japan", "Brazil")
	ctx := context.Background()

	emails := []string{"a@example.org", "b@example.org", "c@example.org", "d@example.org"}
	countries := []string{"France", "Spain", "Japan", "Brazil"}
	for i, email := range emails {
		_, err := svc.Register(ctx, signupRequest(comm, email, countries[i]))
		require.NoError(t, err)
	}

	// Only half of them verify
	for _, email := range emails[:2] {
		p, err := store.People().GetByEmail(email)
		require.NoError(t, err)
		require.NoError(t, svc.Reconcile(ctx, p.ID))
	}

	reloaded, err := store.Communities().GetByID(comm.ID.String())
	require.NoError(t, err)
	applied, err := store.People().CountMembersApplied(comm.ID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(reloaded.OccupiedSeats), applied)
	assert.Equal(t, 2, reloaded.OccupiedSeats)
}

func TestConcurrentReconcilesCountOnce(t *testing.T) {
	svc, store, _ := newTestService(t)
	comm := seedCommunity(t, store, 5, "France")
	ctx := context.Background()

	_, err := svc.Register(ctx, signupRequest(comm, "alice@example.org", "France"))
	require.NoError(t, err)
	p, err := store.People().GetByEmail("alice@example.org")
	require.NoError(t, err)

	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			errs <- svc.Reconcile(ctx, p.ID)
		}()
	}
	for i := 0; i < 8; i++ {
		require.NoError(t, <-errs)
	}

	reloaded, err := store.Communities().GetByID(comm.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.OccupiedSeats)
}

func TestRegisterLosesSlotRace(t *testing.T) {
	// Another signup can claim the country between the advisory read and
	// the transactional claim; the loser gets ErrCountryUnavailable.
	svc, store, _ := newTestService(t)
	comm := seedCommunity(t, store, 5, "France", "Spain")
	ctx := context.Background()

	_, err := svc.Register(ctx, signupRequest(comm, "first@example.org", "France"))
	require.NoError(t, err)

	// Hand-claim Spain under the service's feet to simulate the race.
	require.NoError(t, store.Communities().ClaimCountrySlot(comm.ID.String(), "Spain", uuid.NewString()))

	_, err = svc.Register(ctx, signupRequest(comm, "second@example.org", "Spain"))
	assert.ErrorIs(t, err, ErrCountryUnavailable)
	_, accErr := store.Accounts().GetByEmail("second@example.org")
	assert.Error(t, accErr, "losing the slot race must not leave an account")
}

