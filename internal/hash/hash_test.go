package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPasswordIsSalted(t *testing.T) {
	first, err := HashPassword("password")
	require.NoError(t, err)
	second, err := HashPassword("password")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.True(t, CheckPassword(first, "password"))
	require.True(t, CheckPassword(second, "password"))
}

func TestCheckPasswordRejectsWrongPassword(t *testing.T) {
	h, err := HashPassword("password")
	require.NoError(t, err)

	require.False(t, CheckPassword(h, "otra"))
	require.False(t, CheckPassword(h, ""))
	require.False(t, CheckPassword("not-a-bcrypt-hash", "password"))
}
