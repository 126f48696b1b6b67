package alert

// Status is the read-only view of the state machine handed to transports
// and presentation collaborators.
type Status struct {
	// Mode is the current lifecycle mode.
	Mode Mode `json:"mode"`
	// Countdown is the remaining ticks, present iff counting down.
	Countdown *int `json:"countdown,omitempty"`
	// Sounding reports whether the alarm output is active.
	Sounding bool `json:"sounding"`
	// Volume is the configured alarm volume.
	Volume float64 `json:"volume"`
	// Coords is the last-known coordinate, if any.
	Coords *Coordinate `json:"coords,omitempty"`
	// Note is the latest attached note.
	Note string `json:"note,omitempty"`
}
