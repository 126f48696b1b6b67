package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/oshokin/panic-button/internal/config"
	domain "github.com/oshokin/panic-button/internal/domain/alert"
)

// Intent names one of the five state machine intents.
type Intent string

// The intent surface of the panic server.
const (
	IntentArm     Intent = "arm"
	IntentDisarm  Intent = "disarm"
	IntentTrigger Intent = "trigger"
	IntentCancel  Intent = "cancel"
	IntentStop    Intent = "stop"
)

// Valid reports whether the intent is one of the five known ones.
func (i Intent) Valid() bool {
	switch i {
	case IntentArm, IntentDisarm, IntentTrigger, IntentCancel, IntentStop:
		return true
	default:
		return false
	}
}

// Client wraps the panic-server HTTP API with convenience helpers.
type Client struct {
	// baseURL is the server root, e.g. http://127.0.0.1:8787.
	baseURL string
	// http is the underlying HTTP client.
	http *http.Client
	// callTimeout is the default timeout for individual API calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errUnknownIntent is returned for an unrecognised intent name.
	errUnknownIntent = errors.New("unknown intent")
)

// New builds a client for the panic server at address (host:port).
// The transport is plain HTTP; deploy on a trusted network or terminate TLS
// in a proxy.
func New(address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	c := &Client{
		baseURL:     "http://" + address,
		http:        &http.Client{},
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// SendIntent submits one of the five intents and returns the resulting state.
func (c *Client) SendIntent(ctx context.Context, intent Intent) (*domain.Status, error) {
	if !intent.Valid() {
		return nil, fmt.Errorf("%w: %q", errUnknownIntent, intent)
	}

	var status domain.Status
	if err := c.call(ctx, http.MethodPost, "/v1/intents/"+string(intent), nil, &status); err != nil {
		return nil, fmt.Errorf("send intent %s: %w", intent, err)
	}

	return &status, nil
}

// State retrieves the current alert status.
func (c *Client) State(ctx context.Context) (*domain.Status, error) {
	var status domain.Status
	if err := c.call(ctx, http.MethodGet, "/v1/state", nil, &status); err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}

	return &status, nil
}

// Log retrieves the event log, newest entry first.
func (c *Client) Log(ctx context.Context) ([]domain.LogEntry, error) {
	var entries []domain.LogEntry
	if err := c.call(ctx, http.MethodGet, "/v1/log", nil, &entries); err != nil {
		return nil, fmt.Errorf("get log: %w", err)
	}

	return entries, nil
}

// Message retrieves the shareable panic message.
func (c *Client) Message(ctx context.Context) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}

	if err := c.call(ctx, http.MethodGet, "/v1/message", nil, &resp); err != nil {
		return "", fmt.Errorf("get message: %w", err)
	}

	return resp.Message, nil
}

// Note attaches a free-text note to the alert.
func (c *Client) Note(ctx context.Context, text string) (*domain.Status, error) {
	body := map[string]string{"text": text}

	var status domain.Status
	if err := c.call(ctx, http.MethodPost, "/v1/note", body, &status); err != nil {
		return nil, fmt.Errorf("set note: %w", err)
	}

	return &status, nil
}

// SetVolume updates the alarm volume.
func (c *Client) SetVolume(ctx context.Context, volume float64) (*domain.Status, error) {
	body := map[string]float64{"volume": volume}

	var status domain.Status
	if err := c.call(ctx, http.MethodPut, "/v1/volume", body, &status); err != nil {
		return nil, fmt.Errorf("set volume: %w", err)
	}

	return &status, nil
}

// call issues one API request and decodes the JSON answer into out.
func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	var reader io.Reader = http.NoBody

	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}

		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(callCtx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}

		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("server answered %s: %s", resp.Status, apiErr.Error)
		}

		return fmt.Errorf("server answered %s", resp.Status)
	}

	if out == nil {
		return nil
	}

	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
