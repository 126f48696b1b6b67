// Package button implements the panic-button CLI commands: intent
// submission, the escape convenience, and table rendering of server state.
package button
