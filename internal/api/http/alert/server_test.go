package alert

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/panic-button/internal/domain/alert"
	"github.com/oshokin/panic-button/internal/location"
	service "github.com/oshokin/panic-button/internal/service/alert"
	"github.com/oshokin/panic-button/internal/timer"
)

// silentDriver satisfies the output driver without side effects.
type silentDriver struct{}

func (silentDriver) Start(float64) error { return nil }
func (silentDriver) Stop()               {}

// newTestAPI wires a real state machine behind the HTTP handler.
func newTestAPI(t *testing.T) (*httptest.Server, *timer.Manual) {
	t.Helper()

	manual := timer.NewManual()

	svc, err := service.New(context.Background(), nil,
		service.WithScheduler(manual),
		service.WithDriver(silentDriver{}),
		service.WithProvider(&location.Static{Coord: &domain.Coordinate{Latitude: 1, Longitude: 2}}),
		service.WithSynchronousEffects(),
	)
	require.NoError(t, err)

	server := httptest.NewServer(NewServer(svc).Router())
	t.Cleanup(server.Close)

	return server, manual
}

// doJSON issues a request and decodes the JSON answer into out.
func doJSON(t *testing.T, method, url, body string, out any) int {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, reader)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	defer func() {
		_ = resp.Body.Close()
	}()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}

	return resp.StatusCode
}

// TestHealth verifies the liveness probe.
func TestHealth(t *testing.T) {
	t.Parallel()

	server, _ := newTestAPI(t)

	var body map[string]string

	code := doJSON(t, http.MethodGet, server.URL+"/health", "", &body)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "ok", body["status"])
}

// TestIntents_FullLifecycle drives arm, trigger, tick, stop over HTTP.
func TestIntents_FullLifecycle(t *testing.T) {
	t.Parallel()

	server, manual := newTestAPI(t)

	var status domain.Status

	code := doJSON(t, http.MethodPost, server.URL+"/v1/intents/arm", "", &status)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, domain.ModeArmed, status.Mode)

	code = doJSON(t, http.MethodPost, server.URL+"/v1/intents/trigger", "", &status)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, domain.ModeCountingDown, status.Mode)
	require.NotNil(t, status.Countdown)

	for i := 0; i < 3; i++ {
		require.True(t, manual.Fire())
	}

	code = doJSON(t, http.MethodGet, server.URL+"/v1/state", "", &status)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, domain.ModeTriggered, status.Mode)
	require.True(t, status.Sounding)

	code = doJSON(t, http.MethodPost, server.URL+"/v1/intents/stop", "", &status)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, domain.ModeArmed, status.Mode)
	require.False(t, status.Sounding)
}

// TestIntents_InvalidTransitionIsSilentNoOp verifies intent endpoints answer
// 200 with unchanged state instead of erroring.
func TestIntents_InvalidTransitionIsSilentNoOp(t *testing.T) {
	t.Parallel()

	server, _ := newTestAPI(t)

	var status domain.Status

	code := doJSON(t, http.MethodPost, server.URL+"/v1/intents/cancel", "", &status)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, domain.ModeDisarmed, status.Mode)

	code = doJSON(t, http.MethodPost, server.URL+"/v1/intents/stop", "", &status)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, domain.ModeDisarmed, status.Mode)
}

// TestLogEndpoint verifies newest-first entries reach the wire.
func TestLogEndpoint(t *testing.T) {
	t.Parallel()

	server, _ := newTestAPI(t)

	var entries []domain.LogEntry

	code := doJSON(t, http.MethodGet, server.URL+"/v1/log", "", &entries)
	require.Equal(t, http.StatusOK, code)
	require.Empty(t, entries)

	doJSON(t, http.MethodPost, server.URL+"/v1/intents/arm", "", nil)

	code = doJSON(t, http.MethodGet, server.URL+"/v1/log", "", &entries)
	require.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, entries)
	require.Equal(t, domain.KindLocation, entries[0].Kind)
	require.Equal(t, domain.KindArmed, entries[len(entries)-1].Kind)
}

// TestNoteAndMessage verifies the note lands in the shareable message.
func TestNoteAndMessage(t *testing.T) {
	t.Parallel()

	server, _ := newTestAPI(t)

	var status domain.Status

	code := doJSON(t, http.MethodPost, server.URL+"/v1/note", `{"text":"third floor"}`, &status)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "third floor", status.Note)

	var msg struct {
		Message string `json:"message"`
	}

	code = doJSON(t, http.MethodGet, server.URL+"/v1/message", "", &msg)
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, msg.Message, "PANIC ALERT")
	require.Contains(t, msg.Message, "third floor")

	// Malformed body.
	code = doJSON(t, http.MethodPost, server.URL+"/v1/note", `{"text":`, nil)
	require.Equal(t, http.StatusBadRequest, code)
}

// TestVolumeEndpoint verifies validation and persistence of the volume.
func TestVolumeEndpoint(t *testing.T) {
	t.Parallel()

	server, _ := newTestAPI(t)

	var status domain.Status

	code := doJSON(t, http.MethodPut, server.URL+"/v1/volume", `{"volume":0.3}`, &status)
	require.Equal(t, http.StatusOK, code)
	require.InDelta(t, 0.3, status.Volume, 1e-9)

	var apiErr struct {
		Error string `json:"error"`
	}

	code = doJSON(t, http.MethodPut, server.URL+"/v1/volume", `{"volume":2}`, &apiErr)
	require.Equal(t, http.StatusBadRequest, code)
	require.NotEmpty(t, apiErr.Error)
}
