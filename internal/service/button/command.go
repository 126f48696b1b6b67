package button

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/oshokin/panic-button/internal/config"
	domain "github.com/oshokin/panic-button/internal/domain/alert"
	"github.com/oshokin/panic-button/internal/logger"
	"github.com/oshokin/panic-button/internal/service/client"
)

// Options configures the panic-button CLI commands.
type Options struct {
	// ConfigPath to the YAML settings file, defaults to the standard filename if empty.
	ConfigPath string
	// ServerAddress overrides the server address from config when specified.
	ServerAddress string
}

// dial loads the settings and connects a client to the panic server.
func dial(opts *Options) (*client.Client, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	address := cfg.ServerAddress
	if opts.ServerAddress != "" {
		address = opts.ServerAddress
	}

	c, err := client.New(address, client.WithCallTimeout(cfg.Timeout))
	if err != nil {
		return nil, fmt.Errorf("connect to panic server: %w", err)
	}

	return c, nil
}

// RunIntent submits a single intent and prints the resulting state.
func RunIntent(ctx context.Context, opts *Options, intent client.Intent, out io.Writer) error {
	ctx = logger.WithName(ctx, "panic-button")

	c, err := dial(opts)
	if err != nil {
		return err
	}

	status, err := c.SendIntent(ctx, intent)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Intent accepted", "intent", string(intent), "mode", status.Mode.String())
	renderStatus(out, status)

	return nil
}

// RunEscape performs the keyboard-escape mapping: cancel the countdown when
// counting down, stop the alarm when triggered, otherwise do nothing.
func RunEscape(ctx context.Context, opts *Options, out io.Writer) error {
	ctx = logger.WithName(ctx, "panic-button")

	c, err := dial(opts)
	if err != nil {
		return err
	}

	status, err := c.State(ctx)
	if err != nil {
		return err
	}

	var intent client.Intent

	switch status.Mode {
	case domain.ModeCountingDown:
		intent = client.IntentCancel
	case domain.ModeTriggered:
		intent = client.IntentStop
	case domain.ModeDisarmed, domain.ModeArmed:
		logger.Info(ctx, "Nothing to cancel")
		renderStatus(out, status)

		return nil
	}

	status, err = c.SendIntent(ctx, intent)
	if err != nil {
		return err
	}

	renderStatus(out, status)

	return nil
}

// RunStatus prints the current state as a table.
func RunStatus(ctx context.Context, opts *Options, out io.Writer) error {
	ctx = logger.WithName(ctx, "panic-button")

	c, err := dial(opts)
	if err != nil {
		return err
	}

	status, err := c.State(ctx)
	if err != nil {
		return err
	}

	renderStatus(out, status)

	return nil
}

// RunLog prints the event log as a table, newest entry first.
func RunLog(ctx context.Context, opts *Options, out io.Writer) error {
	ctx = logger.WithName(ctx, "panic-button")

	c, err := dial(opts)
	if err != nil {
		return err
	}

	entries, err := c.Log(ctx)
	if err != nil {
		return err
	}

	renderLog(out, entries)

	return nil
}

// RunMessage prints the shareable panic message.
func RunMessage(ctx context.Context, opts *Options, out io.Writer) error {
	ctx = logger.WithName(ctx, "panic-button")

	c, err := dial(opts)
	if err != nil {
		return err
	}

	message, err := c.Message(ctx)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(out, message)

	return nil
}

// RunNote attaches a note to the alert.
func RunNote(ctx context.Context, opts *Options, text string, out io.Writer) error {
	ctx = logger.WithName(ctx, "panic-button")

	c, err := dial(opts)
	if err != nil {
		return err
	}

	status, err := c.Note(ctx, text)
	if err != nil {
		return err
	}

	renderStatus(out, status)

	return nil
}

// RunVolume updates the alarm volume.
func RunVolume(ctx context.Context, opts *Options, volume float64, out io.Writer) error {
	ctx = logger.WithName(ctx, "panic-button")

	c, err := dial(opts)
	if err != nil {
		return err
	}

	status, err := c.SetVolume(ctx, volume)
	if err != nil {
		return err
	}

	renderStatus(out, status)

	return nil
}

// renderStatus writes the status table.
func renderStatus(out io.Writer, status *domain.Status) {
	countdown := "-"
	if status.Countdown != nil {
		countdown = fmt.Sprintf("%ds", *status.Countdown)
	}

	coords := "-"
	if status.Coords != nil {
		coords = status.Coords.String()
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Mode", "Countdown", "Sounding", "Volume", "Location", "Note"})
	t.AppendRow(table.Row{
		status.Mode.String(),
		countdown,
		status.Sounding,
		fmt.Sprintf("%.0f%%", status.Volume*100),
		coords,
		status.Note,
	})
	t.Render()
}

// renderLog writes the event log table.
func renderLog(out io.Writer, entries []domain.LogEntry) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Time", "Kind", "Message"})

	for _, e := range entries {
		t.AppendRow(table.Row{
			e.Timestamp.Format(time.RFC3339),
			string(e.Kind),
			e.Message,
		})
	}

	t.Render()
}
