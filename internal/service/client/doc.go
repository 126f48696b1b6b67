// Package client implements the HTTP client of the panic-server API used by
// the panic-button CLI.
package client
