// File: team.go
// Title: Teams, Players and Notation Prefixes
// Description: Defines the two sides of a match, player numbers and the
//              fixed prefix configuration that maps a notation character
//              to a team.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package domain

import (
	"fmt"
	"unicode"
)

// Team identifies one side of the match
type Team uint8

const (
	Away Team = iota
	Home
)

// Opponent returns the other side
func (t Team) Opponent() Team {
	if t == Away {
		return Home
	}
	return Away
}

// String returns the display name of the team
func (t Team) String() string {
	switch t {
	case Away:
		return "Away"
	case Home:
		return "Home"
	default:
		return "Unknown"
	}
}

// MarshalText encodes the team as "Away" or "Home"
func (t Team) MarshalText() ([]byte, error) {
	if t != Away && t != Home {
		return nil, fmt.Errorf("invalid team: %d", uint8(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText decodes "Away" or "Home"
func (t *Team) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Away":
		*t = Away
	case "Home":
		*t = Home
	default:
		return fmt.Errorf("invalid team: %q", string(text))
	}
	return nil
}

// MaxPlayer is the highest player number expressible in notation (two digits)
const MaxPlayer = 99

// Player is a shirt number between 0 and 99
type Player uint8

// NewPlayer validates a player number
func NewPlayer(n int) (Player, error) {
	if n < 0 || n > MaxPlayer {
		return 0, fmt.Errorf("player number out of range: %d", n)
	}
	return Player(n), nil
}

// Config holds the two prefix characters that introduce every token
type Config struct {
	AwayPrefix rune
	HomePrefix rune
}

// DefaultConfig returns the '@' (away) / '!' (home) configuration
func DefaultConfig() Config {
	return Config{
		AwayPrefix: '@',
		HomePrefix: '!',
	}
}

// Validate checks that the prefixes are usable in notation.
// Letters and digits are rejected because they collide with player numbers,
// action codes and zones.
func (c Config) Validate() error {
	if c.AwayPrefix == c.HomePrefix {
		return fmt.Errorf("away and home prefix must differ, both are %q", c.AwayPrefix)
	}
	for _, p := range []rune{c.AwayPrefix, c.HomePrefix} {
		if p == 0 || unicode.IsSpace(p) {
			return fmt.Errorf("prefix must be a visible character, got %q", p)
		}
		if p < unicode.MaxASCII && (unicode.IsLetter(p) || unicode.IsDigit(p)) {
			return fmt.Errorf("prefix must not be a letter or digit, got %q", p)
		}
	}
	return nil
}

// TeamOf maps a prefix character to its team
func (c Config) TeamOf(r rune) (Team, bool) {
	switch r {
	case c.AwayPrefix:
		return Away, true
	case c.HomePrefix:
		return Home, true
	default:
		return Away, false
	}
}

// Prefix returns the prefix character of a team
func (c Config) Prefix(t Team) rune {
	if t == Home {
		return c.HomePrefix
	}
	return c.AwayPrefix
}
