// Package alert implements the alert lifecycle state machine, the core of
// the panic button.
//
// The Service owns the current mode (disarmed, armed, counting down,
// triggered), the countdown timer and the alarm output handle, and
// orchestrates the timer, output, location and persistence collaborators in
// response to user intents. Transitions are discrete steps serialised by a
// mutex; asynchronous results re-validate the mode before mutating state.
package alert
