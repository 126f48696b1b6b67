// Package output drives the audible and haptic alarm signal.
//
// The Driver interface is what the state machine owns exclusively; the
// Beeper implementation stands in for real alarm hardware using terminal
// bell pulses and a no-op keep-awake hint.
package output
