package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/panic-button/internal/config"
	"github.com/oshokin/panic-button/internal/logger"
	"github.com/oshokin/panic-button/internal/service/server"
	"github.com/oshokin/panic-button/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// stateFile path where alert state is persisted.
	stateFile string
	// logLevel for the process-wide logger.
	logLevel string

	// rootCmd represents the base command for running the panic server.
	rootCmd = &cobra.Command{
		Use:   "panic-server [listen-address]",
		Short: "Run the panic alert server and manage alert state.",
		Long: `Starts the HTTP server that owns the panic alert state machine.

The server listens on the specified address or uses settings from configuration file.
Only the port from server_addr config is used for listening (e.g., :8080).
Listen address can be provided as argument to override config (e.g., :9090, 0.0.0.0:8080).
Alert state and the event log are persisted for recovery across restarts.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			applyLogLevel()

			// Use listen address argument if provided, otherwise rely on config.
			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			options := &server.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				StateFile:     stateFile,
			}

			return server.Run(ctx, options)
		},
	}
)

// Execute runs the panic-server CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// applyLogLevel parses the log-level flag, leaving the default on garbage input.
func applyLogLevel() {
	if level, ok := logger.ParseLogLevel(logLevel); ok {
		logger.SetLevel(level)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().
		StringVarP(&stateFile, "state-file", "s", "", "path to persist alert state (overrides config)")
	rootCmd.PersistentFlags().
		StringVarP(&logLevel, "log-level", "l", "info", "logging level: debug, info, warn, error or fatal")
}
