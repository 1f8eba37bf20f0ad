package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)

	assert.NoError(t, VerifyPassword(hash, "password123"))
	assert.Error(t, VerifyPassword(hash, "wrong-password"))
}

func TestHashPassword_Salted(t *testing.T) {
	a, err := HashPassword("password123")
	require.NoError(t, err)
	b, err := HashPassword("password123")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}
