package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	id := uuid.New()

	signed, err := m.Issue(id, "admin")
	require.NoError(t, err)

	claims, err := m.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, id.String(), claims.Subject)
	assert.Equal(t, "admin", claims.Role)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", time.Hour)
	verifier := NewTokenManager("secret-b", time.Hour)

	signed, err := issuer.Issue(uuid.New(), "user")
	require.NoError(t, err)

	_, err = verifier.Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestTokenRejectsExpired(t *testing.T) {
	m := NewTokenManager("secret", time.Nanosecond)

	signed, err := m.Issue(uuid.New(), "user")
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	_, err = m.Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestTokenRejectsGarbage(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	for _, tokenString := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := m.Parse(tokenString)
		assert.ErrorIs(t, err, ErrInvalidSession)
	}
}
