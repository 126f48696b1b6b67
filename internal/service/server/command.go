package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	api "github.com/oshokin/panic-button/internal/api/http/alert"
	"github.com/oshokin/panic-button/internal/config"
	"github.com/oshokin/panic-button/internal/location"
	"github.com/oshokin/panic-button/internal/logger"
	"github.com/oshokin/panic-button/internal/output"
	repository "github.com/oshokin/panic-button/internal/repository/state"
	service "github.com/oshokin/panic-button/internal/service/alert"
)

// Options controls the panic-server process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the HTTP server.
	ListenAddress string
	// StateFile specifies the path to persist the alert snapshot.
	StateFile string
}

// ErrNoServerAddress indicates missing server configuration.
var ErrNoServerAddress = errors.New("no server address configured")

// shutdownTimeout bounds the graceful HTTP shutdown.
const shutdownTimeout = 5 * time.Second

// Run starts the HTTP server and blocks until the context is canceled or
// the server stops. Configuration is loaded first, then the snapshot
// repository, the state machine collaborators and the transport.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "panic-server")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	// Use StateFile from config unless overridden by command line option.
	stateFile := cfg.StateFile
	if opts.StateFile != "" {
		stateFile = opts.StateFile
	}

	listenAddress, err := resolveListenAddress(cfg.ServerAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	repo, cleanup, err := openRepository(ctx, cfg.Storage, stateFile)
	if err != nil {
		return fmt.Errorf("open state repository: %w", err)
	}

	defer cleanup()

	svc, err := service.New(ctx, repo,
		service.WithDriver(output.NewBeeper()),
		service.WithProvider(newProvider(cfg)),
		service.WithCountdown(cfg.CountdownSeconds),
		service.WithVolume(cfg.Volume),
	)
	if err != nil {
		return fmt.Errorf("initialise service: %w", err)
	}

	httpServer := &http.Server{
		Addr:              listenAddress,
		Handler:           api.NewServer(svc).Router(),
		ReadHeaderTimeout: cfg.Timeout,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	logger.InfoKV(ctx, "Panic server listening",
		"listen_address", listenAddress,
		"storage", cfg.Storage,
		"state_file", stateFile,
		"countdown_seconds", cfg.CountdownSeconds)

	// Done channel is closed after Shutdown finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.ErrorKV(ctx, "HTTP shutdown failed", "error", err)
		}

		close(done)
	}()

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve HTTP: %w", err)
	}

	<-done
	logger.Info(ctx, "HTTP server stopped")

	return nil
}

// openRepository builds the configured snapshot repository and a cleanup
// function releasing its resources.
func openRepository(
	ctx context.Context,
	storage, stateFile string,
) (repository.Repository, func(), error) {
	switch storage {
	case config.StorageSQLite:
		repo, err := repository.OpenSQLite(ctx, stateFile)
		if err != nil {
			return nil, nil, err
		}

		cleanup := func() {
			if err := repo.Close(); err != nil {
				logger.ErrorKV(ctx, "Close state database failed", "error", err)
			}
		}

		return repo, cleanup, nil
	default:
		return repository.NewFileRepository(stateFile), func() {}, nil
	}
}

// newProvider picks the location provider: the configured HTTP endpoint, or
// a provider that always denies when none is set.
func newProvider(cfg *config.Config) location.Provider {
	if cfg.LocationEndpoint == "" {
		return &location.Static{}
	}

	return location.NewHTTPProvider(cfg.LocationEndpoint)
}

// resolveListenAddress determines the listen address for the HTTP server.
// If override is provided, uses it directly. Otherwise extracts port from configAddr.
func resolveListenAddress(configAddr, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	// Extract port from config address (e.g., "panic.example.com:8787" -> ":8787").
	_, port, err := net.SplitHostPort(configAddr)
	if err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	// Bind on all interfaces using the configured port.
	return ":" + port, nil
}
