package cmd

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/panic-button/internal/config"
	"github.com/oshokin/panic-button/internal/logger"
	"github.com/oshokin/panic-button/internal/service/button"
	"github.com/oshokin/panic-button/internal/service/client"
	"github.com/oshokin/panic-button/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// serverAddress overrides the server address from config.
	serverAddress string
	// logLevel for the process-wide logger.
	logLevel string

	// rootCmd represents the base command for the panic button CLI.
	rootCmd = &cobra.Command{
		Use:   "panic-button",
		Short: "Control the panic alert from the command line.",
		Long: `Command-line client for the panic alert server.

Arm or disarm the button, trigger the alert, cancel the countdown, stop
the alarm, inspect the state and event log, attach a note, adjust the
alarm volume or print the shareable panic message.
Server address is taken from the configuration file unless overridden.`,
	}
)

// options builds the shared command options from global flags.
func options() *button.Options {
	return &button.Options{
		ConfigPath:    configPath,
		ServerAddress: serverAddress,
	}
}

// intentCommand builds a subcommand that submits a single intent.
func intentCommand(use, short string, intent client.Intent) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return button.RunIntent(c.Context(), options(), intent, c.OutOrStdout())
		},
	}
}

// Execute runs the panic-button CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	// Setup graceful shutdown handling.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
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
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().
		StringVarP(&serverAddress, "server", "a", "", "server address (overrides config)")
	rootCmd.PersistentFlags().
		StringVarP(&logLevel, "log-level", "l", "info", "logging level: debug, info, warn, error or fatal")

	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		applyLogLevel()
	}

	rootCmd.AddCommand(
		intentCommand("arm", "Arm the panic button.", client.IntentArm),
		intentCommand("disarm", "Disarm the panic button and silence the alarm.", client.IntentDisarm),
		intentCommand("trigger", "Trigger the alert countdown.", client.IntentTrigger),
		intentCommand("cancel", "Cancel a running countdown.", client.IntentCancel),
		intentCommand("stop", "Stop the alarm, leaving the button armed.", client.IntentStop),
		escapeCommand(),
		statusCommand(),
		logCommand(),
		messageCommand(),
		noteCommand(),
		volumeCommand(),
	)
}

// escapeCommand cancels the countdown or stops the alarm, whichever applies.
func escapeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "escape",
		Short: "Cancel the countdown if counting down, otherwise stop the alarm.",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return button.RunEscape(c.Context(), options(), c.OutOrStdout())
		},
	}
}

func statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the current alert state.",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return button.RunStatus(c.Context(), options(), c.OutOrStdout())
		},
	}
}

func logCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "log",
		Short: "Print the event log, newest entry first.",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return button.RunLog(c.Context(), options(), c.OutOrStdout())
		},
	}
}

func messageCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "message",
		Short: "Print the shareable panic message.",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return button.RunMessage(c.Context(), options(), c.OutOrStdout())
		},
	}
}

func noteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "note <text>",
		Short: "Attach a note to the alert.",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return button.RunNote(c.Context(), options(), args[0], c.OutOrStdout())
		},
	}
}

func volumeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "volume <level>",
		Short: "Set the alarm volume between 0 and 1.",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			level, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return err
			}

			return button.RunVolume(c.Context(), options(), level, c.OutOrStdout())
		},
	}
}
