// Package config defines settings used by the panic-button binaries and
// provides helpers to load, validate and save them in YAML format.
//
// The Config type holds the intent API address, the snapshot storage
// backend, the countdown window and the alarm volume.
package config
