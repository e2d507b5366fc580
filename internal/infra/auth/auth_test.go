package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/reverio/leadgen/internal/entity"
)

func TestSessionRoundTrip(t *testing.T) {
	m := NewSessionManager("test-secret", time.Hour)

	token, expires, err := m.Issue("user-1", "anna@example.se", entity.RoleAdmin)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	s, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", s.UserID)
	assert.Equal(t, "anna@example.se", s.Email)
	assert.True(t, s.IsAdmin())
}

func TestSessionRejectsTampering(t *testing.T) {
	m := NewSessionManager("test-secret", time.Hour)
	token, _, err := m.Issue("user-1", "anna@example.se", entity.RoleCustomer)
	require.NoError(t, err)

	_, err = NewSessionManager("other-secret", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = m.Parse(token + "x")
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = m.Parse("")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionExpires(t *testing.T) {
	m := NewSessionManager("test-secret", time.Minute)
	issued := time.Now()
	m.now = func() time.Time { return issued }
	token, _, err := m.Issue("user-1", "anna@example.se", entity.RoleCustomer)
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionRejectsNoneAlgorithm(t *testing.T) {
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewSessionManager("test-secret", time.Hour).Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestBcryptHasher(t *testing.T) {
	h := &BcryptHasher{Cost: bcrypt.MinCost}

	hash, err := h.Hash("hemligt123")
	require.NoError(t, err)
	assert.NotEqual(t, "hemligt123", hash)

	assert.NoError(t, h.Compare(hash, "hemligt123"))
	assert.Error(t, h.Compare(hash, "fel-lösenord"))
}
