package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

const testSecret = "unit-test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	at, err := NewAccessToken(testSecret, "jperez", 30)
	assert.NoError(t, err)
	assert.NotEmpty(t, at.Token)
	assert.WithinDuration(t, time.Now().UTC().Add(30*time.Minute), at.Exp, 5*time.Second)

	sub, err := VerifyAccessToken(testSecret, at.Token)
	assert.NoError(t, err)
	assert.Equal(t, "jperez", sub)
}

func TestVerifyAccessToken_WrongSecret(t *testing.T) {
	at, err := NewAccessToken(testSecret, "jperez", 30)
	assert.NoError(t, err)

	_, err = VerifyAccessToken("other-secret", at.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyAccessToken_Expired(t *testing.T) {
	at, err := NewAccessToken(testSecret, "jperez", -1)
	assert.NoError(t, err)

	_, err = VerifyAccessToken(testSecret, at.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyAccessToken_Garbage(t *testing.T) {
	_, err := VerifyAccessToken(testSecret, "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyAccessToken_RejectsUnsignedToken(t *testing.T) {
	// alg=none must never pass, whatever the claims say.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "jperez",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	assert.NoError(t, err)

	_, err = VerifyAccessToken(testSecret, raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshJWTRoundTrip(t *testing.T) {
	raw, err := NewRefreshJWT(testSecret, "jperez", 42, 30)
	assert.NoError(t, err)

	sub, err := VerifyRefreshJWT(testSecret, raw)
	assert.NoError(t, err)
	assert.Equal(t, "jperez", sub)
}

func TestVerifyRefreshJWT_RejectsAccessToken(t *testing.T) {
	// An access token has no type claim, so it must not pass as a refresh
	// token even though signature and expiry are fine.
	at, err := NewAccessToken(testSecret, "jperez", 30)
	assert.NoError(t, err)

	_, err = VerifyRefreshJWT(testSecret, at.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewOpaqueToken(t *testing.T) {
	a, err := NewOpaqueToken()
	assert.NoError(t, err)
	b, err := NewOpaqueToken()
	assert.NoError(t, err)

	// 64 random bytes, unpadded base64url.
	assert.Len(t, a, 86)
	assert.NotEqual(t, a, b)
	assert.NotContains(t, a, "+")
	assert.NotContains(t, a, "/")
	assert.NotContains(t, a, "=")
}
