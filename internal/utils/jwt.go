package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/rand"     // secure random number generation
	"encoding/base64" // URL-safe encoding for opaque session tokens
	"errors"          // sentinel error for failed verification
	"time"            // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
	"github.com/google/uuid"       // unique jti claim for refresh JWTs
)

// ErrInvalidToken is returned by the verify helpers for every failure mode:
// wrong signing algorithm, bad signature, malformed payload, missing claims
// or an expired token.  Callers never learn which check failed.
var ErrInvalidToken = errors.New("invalid token")

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the JWT string.  Exp stores the expiration
// timestamp as a time.Time.  Access tokens are short-lived and encoded
// in the Authorization header when calling protected endpoints.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for a user.  It takes the
// signing secret, the username and a TTL in minutes.  The subject claim
// carries the username; the identity middleware resolves it back to a user
// record on every protected request.  Claims: sub, exp, iat.
func NewAccessToken(secret, username string, ttlMin int) (AccessToken, error) {
	// Calculate the expiration time by adding the TTL to the current UTC time.
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub": username,
		"exp": exp.Unix(),
		"iat": time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// VerifyAccessToken checks the signature and expiry of an access token and
// returns the subject (username).  Any decode, signature or expiry problem
// results in ErrInvalidToken; the function never panics or leaks parser
// details to the caller.
func VerifyAccessToken(secret, raw string) (string, error) {
	claims, err := parseHS256(secret, raw)
	if err != nil {
		return "", ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}

// NewRefreshJWT signs a refresh-shaped JWT carrying a `type: "refresh"`
// marker and a random jti.  The live refresh flow persists and looks up the
// opaque token from NewOpaqueToken instead; this JWT variant is kept as a
// verifiable codec for clients that store a self-describing token.
func NewRefreshJWT(secret, username string, userID uint64, ttlDays int) (string, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour)
	claims := jwt.MapClaims{
		"sub":     username,
		"user_id": userID,
		"type":    "refresh",
		"jti":     uuid.NewString(),
		"exp":     exp.Unix(),
		"iat":     time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// VerifyRefreshJWT mirrors VerifyAccessToken and additionally requires the
// `type` claim to equal "refresh".  It returns the subject (username).
func VerifyRefreshJWT(secret, raw string) (string, error) {
	claims, err := parseHS256(secret, raw)
	if err != nil {
		return "", ErrInvalidToken
	}
	if typ, ok := claims["type"].(string); !ok || typ != "refresh" {
		return "", ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}

// parseHS256 parses and validates a token signed with HS256 and the given
// secret.  The signing-method check rejects tokens signed with any other
// algorithm before the signature is even verified.
func parseHS256(secret, raw string) (jwt.MapClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// NewOpaqueToken returns a cryptographically random, URL-safe session token.
// 64 bytes of entropy are encoded with unpadded base64url, producing an
// 86-character string.  This opaque value is what the session store indexes
// and what clients present on /refresh and /logout.
func NewOpaqueToken() (string, error) {
	buf := make([]byte, 64)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
