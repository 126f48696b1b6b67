package formatter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/panic-button/internal/domain/alert"
)

// TestMapsLink verifies the deep-link format and nil handling.
func TestMapsLink(t *testing.T) {
	t.Parallel()

	require.Empty(t, MapsLink(nil))

	link := MapsLink(&domain.Coordinate{Latitude: 55.755826, Longitude: 37.6173})
	require.Equal(t, "https://maps.google.com/?q=55.75583,37.61730", link)
}

// TestAlertMessage verifies all segment combinations of the panic message.
func TestAlertMessage(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	coord := &domain.Coordinate{Latitude: 1, Longitude: 2}

	require.Equal(t,
		"PANIC ALERT · 2024-05-01T12:30:00Z",
		AlertMessage(ts, nil, ""))

	require.Equal(t,
		"PANIC ALERT · 2024-05-01T12:30:00Z @ https://maps.google.com/?q=1.00000,2.00000",
		AlertMessage(ts, coord, ""))

	require.Equal(t,
		"PANIC ALERT · 2024-05-01T12:30:00Z @ https://maps.google.com/?q=1.00000,2.00000 · need help",
		AlertMessage(ts, coord, "  need help  "))

	require.Equal(t,
		"PANIC ALERT · 2024-05-01T12:30:00Z · need help",
		AlertMessage(ts, nil, "need help"))
}
