// Package location fetches best-effort, single-shot position fixes.
//
// Providers never run continuous tracking; a fix either succeeds with a
// coordinate or fails with an ErrDenied-wrapped error that the state machine
// turns into a denial log entry.
package location
