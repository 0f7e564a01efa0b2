package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_SaltedAndVerifiable(t *testing.T) {
	first, err := HashPassword("secret1", bcrypt.MinCost)
	require.NoError(t, err)
	second, err := HashPassword("secret1", bcrypt.MinCost)
	require.NoError(t, err)

	require.NotEqual(t, "secret1", first)
	require.NotEqual(t, first, second)

	require.NoError(t, ComparePassword(first, "secret1"))
	require.NoError(t, ComparePassword(second, "secret1"))
	require.ErrorIs(t, ComparePassword(first, "secret2"), bcrypt.ErrMismatchedHashAndPassword)
}

func TestHashPassword_DefaultCost(t *testing.T) {
	hashed, err := HashPassword("secret1", 0)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hashed))
	require.NoError(t, err)
	require.Equal(t, DefaultBcryptCost, cost)
}
