// ============================================================================
// rallyscore - Volleyball Rally Scorekeeper
// ============================================================================
//
// Package:     logging
// Description: Log levels and their parsing from configuration
// Author:      msto63
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package logging

import (
	"fmt"
	"strings"
)

// Level represents log severity
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the level
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// ShortString returns the four-letter tag used by the text formatter
func (l Level) ShortString() string {
	switch l {
	case LevelDebug:
		return "DEBU"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERRO"
	default:
		return "UNKN"
	}
}

// ParseLevel converts a configuration string to a Level
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "trace":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error", "fatal":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("invalid log level: %q", level)
	}
}
