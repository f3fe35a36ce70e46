// ============================================================================
// rallyscore - Volleyball Rally Scorekeeper
// ============================================================================
//
// Package:     version
// Description: Central version management for the CLI and its services
// Author:      msto63
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package version

import (
	"fmt"
	"runtime"
)

// Version constants
const (
	// Platform version
	Platform = "0.1.0"

	// Component versions
	Notation = "0.1.0"
	Server   = "0.1.0"
	Board    = "0.1.0"
)

// Set at build time via -ldflags "-X .../version.Commit=..."
var (
	Commit    = "dev"
	BuildDate = "unknown"
)

// ComponentVersion returns the version for a given component name
func ComponentVersion(name string) string {
	switch name {
	case "notation":
		return Notation
	case "server":
		return Server
	case "board":
		return Board
	default:
		return Platform
	}
}

// Info returns a one-line description of the build
func Info() string {
	return fmt.Sprintf("rallyscore %s (commit %s, built %s, %s)", Platform, Commit, BuildDate, runtime.Version())
}
