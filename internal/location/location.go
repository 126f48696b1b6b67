package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	domain "github.com/oshokin/panic-button/internal/domain/alert"
)

// ErrDenied indicates the platform refused to provide a position.
// Timeouts and transport failures are treated the same way by callers:
// a denial entry in the event log, never a failed transition.
var ErrDenied = errors.New("location access denied")

// DefaultTimeout bounds a single fix attempt.
const DefaultTimeout = 10 * time.Second

// Provider fetches a best-effort coordinate, single shot, no tracking.
type Provider interface {
	FetchOnce(ctx context.Context) (*domain.Coordinate, error)
}

// HTTPProvider resolves the current position through a JSON geolocation
// endpoint. The endpoint is expected to answer GET with a body like
// {"latitude": 55.75583, "longitude": 37.61730}.
type HTTPProvider struct {
	// endpoint is the geolocation service URL.
	endpoint string
	// client is the underlying HTTP client.
	client *http.Client
	// timeout bounds each fix attempt.
	timeout time.Duration
}

// HTTPOption configures an HTTPProvider.
type HTTPOption func(*HTTPProvider)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(p *HTTPProvider) {
		if c != nil {
			p.client = c
		}
	}
}

// WithTimeout overrides the per-fix timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(p *HTTPProvider) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// NewHTTPProvider creates a provider against the given endpoint URL.
func NewHTTPProvider(endpoint string, opts ...HTTPOption) *HTTPProvider {
	p := &HTTPProvider{
		endpoint: endpoint,
		client:   &http.Client{},
		timeout:  DefaultTimeout,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// FetchOnce requests a single position fix. Any refusal, timeout or
// malformed answer surfaces as an error wrapping ErrDenied.
func (p *HTTPProvider) FetchOnce(ctx context.Context) (*domain.Coordinate, error) {
	if p.endpoint == "" {
		return nil, ErrDenied
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build location request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDenied, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: endpoint returned %s", ErrDenied, resp.Status)
	}

	var coord domain.Coordinate
	if err := json.NewDecoder(resp.Body).Decode(&coord); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrDenied, err)
	}

	return &coord, nil
}

// Static always answers with a fixed coordinate, or denies when none is set.
// It serves offline installations and tests.
type Static struct {
	// Coord is the coordinate to return; nil means denial.
	Coord *domain.Coordinate
}

// FetchOnce returns the configured coordinate or ErrDenied.
func (s *Static) FetchOnce(_ context.Context) (*domain.Coordinate, error) {
	if s == nil || s.Coord == nil {
		return nil, ErrDenied
	}

	return s.Coord.Clone(), nil
}
