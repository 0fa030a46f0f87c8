package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("secret123", 4)
	assert.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	assert.True(t, VerifyPassword(hash, "secret123"))
	assert.False(t, VerifyPassword(hash, "secret124"))
}

func TestHashPassword_Salted(t *testing.T) {
	a, err := HashPassword("secret123", 4)
	assert.NoError(t, err)
	b, err := HashPassword("secret123", 4)
	assert.NoError(t, err)
	// bcrypt embeds a random salt, so two hashes of the same input differ.
	assert.NotEqual(t, a, b)
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	assert.False(t, VerifyPassword("not-a-bcrypt-hash", "secret123"))
	assert.False(t, VerifyPassword("", "secret123"))
}
