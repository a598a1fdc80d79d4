package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	claims := NewTokenClaims("user-1", time.Now().Add(time.Hour).Unix())

	token, err := GenerateJWT(claims, secret)
	require.NoError(t, err)

	parsed, err := VerifyToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", parsed.GetUser())
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	claims := NewTokenClaims("user-1", time.Now().Add(time.Hour).Unix())
	token, err := GenerateJWT(claims, []byte("right"))
	require.NoError(t, err)

	_, err = VerifyToken(token, []byte("wrong"))
	assert.ErrorIs(t, err, ErrInvalidJWT)
}

func TestVerifyToken_Expired(t *testing.T) {
	secret := []byte("test-secret")
	claims := NewTokenClaims("user-1", time.Now().Add(-time.Hour).Unix())
	token, err := GenerateJWT(claims, secret)
	require.NoError(t, err)

	_, err = VerifyToken(token, secret)
	assert.Error(t, err)
}

func TestVerifyToken_Garbage(t *testing.T) {
	_, err := VerifyToken("not-a-token", []byte("secret"))
	assert.ErrorIs(t, err, ErrInvalidJWT)
}
