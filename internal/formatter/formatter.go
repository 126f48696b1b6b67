// Package formatter builds the outward-facing alert strings: the shareable
// panic message and the maps deep-link. The core only supplies these
// strings; launching share sheets, dialers or browsers is presentation work
// that lives outside this repository.
package formatter

import (
	"fmt"
	"strings"
	"time"

	domain "github.com/oshokin/panic-button/internal/domain/alert"
)

// mapsBaseURL is the deep-link prefix understood by common map applications.
const mapsBaseURL = "https://maps.google.com/?q="

// MapsLink returns a deep-link to the coordinate, or an empty string when no
// coordinate is known.
func MapsLink(coord *domain.Coordinate) string {
	if coord == nil {
		return ""
	}

	return fmt.Sprintf("%s%.5f,%.5f", mapsBaseURL, coord.Latitude, coord.Longitude)
}

// AlertMessage renders the shareable panic message:
//
//	PANIC ALERT · <timestamp>[ @ <maps-link>][ · <note>]
//
// The location and note segments are omitted when unknown.
func AlertMessage(timestamp time.Time, coord *domain.Coordinate, note string) string {
	var b strings.Builder

	b.WriteString("PANIC ALERT · ")
	b.WriteString(timestamp.Format(time.RFC3339))

	if link := MapsLink(coord); link != "" {
		b.WriteString(" @ ")
		b.WriteString(link)
	}

	if note = strings.TrimSpace(note); note != "" {
		b.WriteString(" · ")
		b.WriteString(note)
	}

	return b.String()
}
