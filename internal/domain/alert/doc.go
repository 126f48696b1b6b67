// Package alert contains core domain types for the panic button business
// logic.
//
// It defines the lifecycle Mode enum, the immutable LogEntry audit record,
// the last-known Coordinate and the persisted Snapshot, with Clone helpers
// to avoid leaking internal references.
package alert
