package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret", "orange-marketplace", "orange-api", time.Hour)
	require.NoError(t, err)

	token, err := issuer.Issue("user-1", "creator", "priya@example.com", "Priya Sharma")
	require.NoError(t, err)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "creator", claims.Role)
	assert.Equal(t, "priya@example.com", claims.Email)
	assert.Equal(t, "Priya Sharma", claims.Name)
	assert.Equal(t, "orange-marketplace", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenIssuer_Rejects(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret", "orange-marketplace", "orange-api", time.Hour)
	require.NoError(t, err)

	t.Run("other secret", func(t *testing.T) {
		other, err := NewTokenIssuer("another-secret", "orange-marketplace", "orange-api", time.Hour)
		require.NoError(t, err)
		token, err := other.Issue("user-1", "creator", "", "")
		require.NoError(t, err)

		_, err = issuer.Parse(token)
		assert.Error(t, err)
	})

	t.Run("other audience", func(t *testing.T) {
		other, err := NewTokenIssuer("test-secret", "orange-marketplace", "someone-else", time.Hour)
		require.NoError(t, err)
		token, err := other.Issue("user-1", "creator", "", "")
		require.NoError(t, err)

		_, err = issuer.Parse(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		old, err := NewTokenIssuer("test-secret", "orange-marketplace", "orange-api", time.Minute)
		require.NoError(t, err)
		old.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, err := old.Issue("user-1", "creator", "", "")
		require.NoError(t, err)

		_, err = issuer.Parse(token)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := issuer.Parse("not.a.token")
		assert.Error(t, err)
	})
}

func TestNewTokenIssuer_Validation(t *testing.T) {
	_, err := NewTokenIssuer("", "iss", "aud", time.Hour)
	assert.Error(t, err)

	issuer, err := NewTokenIssuer("secret", "iss", "aud", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenTTL, issuer.ttl)

	_, err = issuer.Issue("", "creator", "", "")
	assert.Error(t, err)
}
