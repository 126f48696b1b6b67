// Package server wires configuration, persistence, the state machine and
// the HTTP transport into the long-running panic-server process.
package server
