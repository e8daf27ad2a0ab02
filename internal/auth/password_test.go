package auth_test

import (
	"testing"

	"github.com/cleansweep/litterwatch/internal/auth"
	"github.com/stretchr/testify/require"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := auth.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NotEqual(t, "correct horse battery staple", hash)

	require.NoError(t, auth.ComparePassword(hash, "correct horse battery staple"))
	require.ErrorIs(t, auth.ComparePassword(hash, "wrong password"), auth.ErrInvalidCredentials)
}
