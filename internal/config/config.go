package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends for the alert snapshot.
const (
	// StorageFile persists the snapshot as a JSON file.
	StorageFile = "file"
	// StorageSQLite persists the snapshot in an embedded sqlite database.
	StorageSQLite = "sqlite"
)

// Config holds settings shared by the panic-button binaries.
type Config struct {
	// ServerAddress is the host:port of the intent HTTP API.
	ServerAddress string `yaml:"server_addr"`
	// Storage selects the snapshot backend: "file" or "sqlite".
	Storage string `yaml:"storage"`
	// StateFile is the path of the snapshot file or database.
	StateFile string `yaml:"state_file"`
	// CountdownSeconds is the cancellation window before the alarm sounds.
	CountdownSeconds int `yaml:"countdown_seconds"`
	// Volume is the initial alarm volume in [0, 1].
	Volume float64 `yaml:"volume"`
	// LocationEndpoint is the optional geolocation service URL.
	LocationEndpoint string `yaml:"location_endpoint"`
	// Timeout is the duration for network operations and API calls.
	Timeout time.Duration `yaml:"timeout"`
}

const (
	// DefaultConfigFilename is the default filename for connection settings.
	DefaultConfigFilename = "panic-button-settings.yaml"

	// DefaultStateFilename is the default filename for the snapshot JSON.
	DefaultStateFilename = "panic-button-state.json"

	// DefaultSQLiteFilename is the default filename for the snapshot database.
	DefaultSQLiteFilename = "panic-button-state.db"

	// DefaultCountdownSeconds is the default cancellation window.
	DefaultCountdownSeconds = 3

	// DefaultVolume is the default alarm volume.
	DefaultVolume = 1.0

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 5 * time.Second

	// DefaultFilePermissions is the default file permission for config and state files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errServerSocketRequired is returned when server address is missing.
	errServerSocketRequired = errors.New("server address must be provided")
	// errUnknownStorage is returned for an unrecognised storage backend.
	errUnknownStorage = errors.New(`storage must be "file" or "sqlite"`)
	// errVolumeOutOfRange is returned when volume is outside [0, 1].
	errVolumeOutOfRange = errors.New("volume must be between 0 and 1")
)

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and formatting,
// filling defaults for optional ones.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.ServerAddress == "" {
		return errServerSocketRequired
	}

	if _, err := net.ResolveTCPAddr("tcp", cfg.ServerAddress); err != nil {
		return fmt.Errorf("invalid server socket: %w", err)
	}

	if cfg.Storage == "" {
		cfg.Storage = StorageFile
	}

	if cfg.Storage != StorageFile && cfg.Storage != StorageSQLite {
		return errUnknownStorage
	}

	if cfg.StateFile == "" {
		cfg.StateFile = DefaultStateFilename
		if cfg.Storage == StorageSQLite {
			cfg.StateFile = DefaultSQLiteFilename
		}
	}

	if cfg.CountdownSeconds <= 0 {
		cfg.CountdownSeconds = DefaultCountdownSeconds
	}

	if cfg.Volume == 0 {
		cfg.Volume = DefaultVolume
	}

	if cfg.Volume < 0 || cfg.Volume > 1 {
		return errVolumeOutOfRange
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.LocationEndpoint == "" {
		return nil
	}

	if _, err := url.ParseRequestURI(cfg.LocationEndpoint); err != nil {
		return fmt.Errorf("invalid location endpoint URI: %w", err)
	}

	return nil
}
