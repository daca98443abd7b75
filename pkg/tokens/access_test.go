package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAccess_RoundTrip(t *testing.T) {
	t.Parallel()

	secret := []byte("test-jwt-secret")
	exp := time.Now().Add(15 * time.Minute).UTC()

	tok, err := SignAccess(42, "admin", exp, secret)
	require.NoError(t, err)

	claims, err := AccessClaimsFromToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "42", claims.Subject)
	assert.WithinDuration(t, exp, claims.ExpiresAt.Time, time.Second)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestAccessClaimsFromToken_Rejects(t *testing.T) {
	t.Parallel()

	secret := []byte("test-jwt-secret")

	expired, err := SignAccess(1, "user", time.Now().Add(-time.Minute), secret)
	require.NoError(t, err)
	_, err = AccessClaimsFromToken(expired, secret)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	good, err := SignAccess(1, "user", time.Now().Add(time.Minute), secret)
	require.NoError(t, err)
	_, err = AccessClaimsFromToken(good, []byte("other-secret"))
	assert.Error(t, err)

	_, err = AccessClaimsFromToken("not-a-token", secret)
	assert.Error(t, err)
}

func TestAccessClaims_UserID_Invalid(t *testing.T) {
	t.Parallel()

	for _, sub := range []string{"", "abc", "0", "-3"} {
		c := AccessClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: sub}}
		_, err := c.UserID()
		assert.Error(t, err, sub)
	}
}
