package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRandBytes(t *testing.T) {
	a, err := RandBytes(32)
	require.NoError(t, err)
	require.Len(t, a, 32)

	b, err := RandBytes(32)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestWipeBytes(t *testing.T) {
	b := []byte("secret")
	WipeBytes(b)
	require.Equal(t, make([]byte, 6), b)

	// nil must not panic
	WipeBytes(nil)
}
