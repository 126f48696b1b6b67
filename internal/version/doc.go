// Package version exposes build metadata (semantic version, commit, build
// time) injected via ldflags, and a cobra `version` subcommand shared by all
// binaries.
package version
