// Package alert exposes the user intent surface of the state machine as a
// small HTTP/JSON API: the five intents (arm, disarm, trigger, cancel,
// stop), the note and volume operations, read endpoints for state, log and
// the shareable message, and a liveness probe.
package alert
