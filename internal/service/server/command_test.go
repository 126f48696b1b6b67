package server

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestResolveListenAddress covers override, config extraction and error paths.
func TestResolveListenAddress(t *testing.T) {
	t.Parallel()

	addr, err := resolveListenAddress("panic.example.com:8787", "")
	require.NoError(t, err)
	require.Equal(t, ":8787", addr)

	addr, err = resolveListenAddress("panic.example.com:8787", "127.0.0.1:9999")
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9999", addr)

	_, err = resolveListenAddress("", "")
	require.ErrorIs(t, err, ErrNoServerAddress)

	_, err = resolveListenAddress("no-port", "")
	require.Error(t, err)
}
