// Package eventlog keeps the append-only, newest-first audit trail of alert
// lifecycle events and location updates.
package eventlog
