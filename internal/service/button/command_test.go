package button

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/panic-button/internal/config"
)

// newTestOptions starts a stub API server and writes a settings file
// pointing the CLI at it.
func newTestOptions(t *testing.T, handler http.HandlerFunc) *Options {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	parsed, err := url.Parse(server.URL)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), config.DefaultConfigFilename)
	require.NoError(t, config.Save(path, &config.Config{ServerAddress: parsed.Host}))

	return &Options{ConfigPath: path}
}

// TestRunIntent verifies intent submission and status rendering.
func TestRunIntent(t *testing.T) {
	t.Parallel()

	opts := newTestOptions(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/intents/arm", r.URL.Path)

		_, _ = w.Write([]byte(`{"mode":"armed","volume":1}`))
	})

	var out bytes.Buffer

	require.NoError(t, RunIntent(context.Background(), opts, "arm", &out))
	require.Contains(t, out.String(), "armed")
	require.Contains(t, out.String(), "100%")
}

// TestRunEscape_CancelsCountdown verifies the escape mapping while counting down.
func TestRunEscape_CancelsCountdown(t *testing.T) {
	t.Parallel()

	var cancelled bool

	opts := newTestOptions(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/state":
			_, _ = w.Write([]byte(`{"mode":"counting_down","countdown":2,"volume":1}`))
		case "/v1/intents/cancel":
			cancelled = true

			_, _ = w.Write([]byte(`{"mode":"armed","volume":1}`))
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	})

	var out bytes.Buffer

	require.NoError(t, RunEscape(context.Background(), opts, &out))
	require.True(t, cancelled)
	require.Contains(t, out.String(), "armed")
}

// TestRunEscape_StopsAlarm verifies the escape mapping while triggered.
func TestRunEscape_StopsAlarm(t *testing.T) {
	t.Parallel()

	var stopped bool

	opts := newTestOptions(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/state":
			_, _ = w.Write([]byte(`{"mode":"triggered","sounding":true,"volume":1}`))
		case "/v1/intents/stop":
			stopped = true

			_, _ = w.Write([]byte(`{"mode":"armed","volume":1}`))
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	})

	var out bytes.Buffer

	require.NoError(t, RunEscape(context.Background(), opts, &out))
	require.True(t, stopped)
}

// TestRunEscape_NoOpWhenIdle verifies no intent is sent from resting modes.
func TestRunEscape_NoOpWhenIdle(t *testing.T) {
	t.Parallel()

	opts := newTestOptions(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/state", r.URL.Path)

		_, _ = w.Write([]byte(`{"mode":"disarmed","volume":1}`))
	})

	var out bytes.Buffer

	require.NoError(t, RunEscape(context.Background(), opts, &out))
	require.Contains(t, out.String(), "disarmed")
}

// TestRunLog verifies log rendering, newest entry first.
func TestRunLog(t *testing.T) {
	t.Parallel()

	opts := newTestOptions(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/log", r.URL.Path)

		_, _ = w.Write([]byte(`[
			{"id":"2","kind":"armed","message":"Panic button armed","timestamp":"2026-08-31T12:00:01Z"},
			{"id":"1","kind":"note","message":"heading home","timestamp":"2026-08-31T12:00:00Z"}
		]`))
	})

	var out bytes.Buffer

	require.NoError(t, RunLog(context.Background(), opts, &out))

	rendered := out.String()
	require.Contains(t, rendered, "Panic button armed")
	require.Contains(t, rendered, "heading home")
	require.Less(t, bytes.Index(out.Bytes(), []byte("armed")), bytes.Index(out.Bytes(), []byte("note")))
}

// TestRunMessage verifies the shareable message passthrough.
func TestRunMessage(t *testing.T) {
	t.Parallel()

	opts := newTestOptions(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/message", r.URL.Path)

		_, _ = w.Write([]byte(`{"message":"PANIC ALERT · 2026-08-31T12:00:00Z"}`))
	})

	var out bytes.Buffer

	require.NoError(t, RunMessage(context.Background(), opts, &out))
	require.Contains(t, out.String(), "PANIC ALERT")
}

// TestRunVolume verifies the volume update round trip.
func TestRunVolume(t *testing.T) {
	t.Parallel()

	opts := newTestOptions(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/v1/volume", r.URL.Path)

		_, _ = w.Write([]byte(`{"mode":"disarmed","volume":0.5}`))
	})

	var out bytes.Buffer

	require.NoError(t, RunVolume(context.Background(), opts, 0.5, &out))
	require.Contains(t, out.String(), "50%")
}
