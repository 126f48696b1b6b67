package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields, defaults and format validations.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Missing socket.
	require.Error(t, Validate(new(Config)))

	// Bad socket.
	require.Error(t, Validate(&Config{ServerAddress: "bad:address"}))

	// Unknown storage backend.
	require.Error(t, Validate(&Config{ServerAddress: "127.0.0.1:0", Storage: "etcd"}))

	// Volume out of range.
	require.Error(t, Validate(&Config{ServerAddress: "127.0.0.1:0", Volume: 1.5}))

	// Defaults are filled in.
	cfg := &Config{ServerAddress: "127.0.0.1:0"}
	require.NoError(t, Validate(cfg))
	require.Equal(t, StorageFile, cfg.Storage)
	require.Equal(t, DefaultStateFilename, cfg.StateFile)
	require.Equal(t, DefaultCountdownSeconds, cfg.CountdownSeconds)
	require.InDelta(t, DefaultVolume, cfg.Volume, 1e-9)
	require.Equal(t, DefaultTimeout, cfg.Timeout)

	// SQLite backend defaults to the database filename.
	cfg = &Config{ServerAddress: "127.0.0.1:0", Storage: StorageSQLite}
	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultSQLiteFilename, cfg.StateFile)

	// Location endpoint must be a valid URI when present.
	cfg = &Config{ServerAddress: "127.0.0.1:0", LocationEndpoint: "::not-a-url"}
	require.Error(t, Validate(cfg))

	cfg = &Config{ServerAddress: "127.0.0.1:0", LocationEndpoint: "https://geo.local/fix"}
	require.NoError(t, Validate(cfg))
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	cfg := &Config{
		ServerAddress:    "127.0.0.1:8787",
		Storage:          StorageSQLite,
		CountdownSeconds: 5,
		Volume:           0.4,
		LocationEndpoint: "https://geo.local/fix",
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.ServerAddress, loaded.ServerAddress)
	require.Equal(t, cfg.Storage, loaded.Storage)
	require.Equal(t, cfg.CountdownSeconds, loaded.CountdownSeconds)
	require.InDelta(t, cfg.Volume, loaded.Volume, 1e-9)

	// File exists with restricted permissions.
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

// TestLoad_MissingFile verifies a helpful error for an absent settings file.
func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
