package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Abcd1234", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.True(t, VerifyPassword(hash, "Abcd1234"))
	assert.False(t, VerifyPassword(hash, "abcd1234"))
	assert.False(t, VerifyPassword(hash, ""))
}

func TestVerifyPassword_GarbageHash(t *testing.T) {
	assert.False(t, VerifyPassword("not-a-bcrypt-hash", "Abcd1234"))
}

func TestDummyHashIsValidBcrypt(t *testing.T) {
	// The dummy hash must be parseable by bcrypt so the login path burns
	// a real comparison for unknown emails.
	_, err := bcrypt.Cost([]byte(DummyHash))
	require.NoError(t, err)
	assert.False(t, VerifyPassword(DummyHash, "Abcd1234"))
}
