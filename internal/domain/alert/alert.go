package alert

import (
	"fmt"
	"time"
)

// Mode enumerates the lifecycle states of the panic button.
// Exactly one mode is in effect at any time; it is the sole source of truth
// for side-effect gating.
type Mode string

const (
	// ModeDisarmed means the button is idle and cannot trigger an alert.
	ModeDisarmed Mode = "disarmed"
	// ModeArmed means the button is ready to trigger an alert.
	ModeArmed Mode = "armed"
	// ModeCountingDown means an alert was requested and the cancellation
	// window is open.
	ModeCountingDown Mode = "counting_down"
	// ModeTriggered means the alarm is sounding.
	ModeTriggered Mode = "triggered"
)

// String returns the mode name.
func (m Mode) String() string {
	return string(m)
}

// Valid reports whether m is one of the four enumerated modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeDisarmed, ModeArmed, ModeCountingDown, ModeTriggered:
		return true
	default:
		return false
	}
}

// EntryKind classifies event log entries.
type EntryKind string

const (
	// KindArmed records that the button was armed.
	KindArmed EntryKind = "armed"
	// KindDisarmed records that the button was disarmed.
	KindDisarmed EntryKind = "disarmed"
	// KindTriggered records that an alert was requested.
	KindTriggered EntryKind = "triggered"
	// KindCancelled records that a countdown or an active alarm was stopped.
	KindCancelled EntryKind = "cancelled"
	// KindLocation records a location fix or a location denial.
	KindLocation EntryKind = "location"
	// KindNote records free text attached by the user.
	KindNote EntryKind = "note"
)

// LogEntry is a single immutable record in the event log.
type LogEntry struct {
	// ID uniquely identifies the entry, preserved verbatim across restarts.
	ID string `json:"id"`
	// Kind classifies the entry.
	Kind EntryKind `json:"kind"`
	// Message is the human-readable description.
	Message string `json:"message"`
	// Timestamp is when the entry was created.
	Timestamp time.Time `json:"timestamp"`
}

// Coordinate is a last-known-good geographic position.
type Coordinate struct {
	// Latitude in decimal degrees.
	Latitude float64 `json:"latitude"`
	// Longitude in decimal degrees.
	Longitude float64 `json:"longitude"`
}

// String formats the coordinate with five decimal places,
// the precision used in location log entries.
func (c Coordinate) String() string {
	return fmt.Sprintf("%.5f, %.5f", c.Latitude, c.Longitude)
}

// Clone returns a copy of the coordinate, handling nil safely.
func (c *Coordinate) Clone() *Coordinate {
	if c == nil {
		return nil
	}

	cloned := *c

	return &cloned
}

// Snapshot is the persisted view of the alert state.
// The countdown is deliberately absent: a pending countdown does not survive
// a restart, only the armed and triggered flags do.
type Snapshot struct {
	// Armed mirrors whether the button is armed.
	Armed bool `json:"armed"`
	// Triggered mirrors whether the alarm is active.
	Triggered bool `json:"triggered"`
	// Volume is the alarm volume in [0, 1].
	Volume float64 `json:"volume"`
	// Logs is the event log, newest entry first.
	Logs []LogEntry `json:"logs"`
	// Coords is the last-known coordinate, absent until the first fix.
	Coords *Coordinate `json:"coords,omitempty"`
}

// Mode derives the lifecycle mode encoded by the snapshot flags.
// A pending countdown is never persisted, so CountingDown cannot be restored.
func (s *Snapshot) Mode() Mode {
	switch {
	case s.Triggered:
		return ModeTriggered
	case s.Armed:
		return ModeArmed
	default:
		return ModeDisarmed
	}
}

// Clone returns a deep copy of the snapshot to avoid leaking internal references.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}

	cloned := &Snapshot{
		Armed:     s.Armed,
		Triggered: s.Triggered,
		Volume:    s.Volume,
		Coords:    s.Coords.Clone(),
	}

	if s.Logs != nil {
		cloned.Logs = make([]LogEntry, len(s.Logs))
		copy(cloned.Logs, s.Logs)
	}

	return cloned
}
