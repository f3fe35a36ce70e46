// File: lexer.go
// Title: Notation Cursor and Lexeme Readers
// Description: Character cursor with one-character lookahead and the
//              single-character classifiers for team prefix, player number,
//              serve position, zone, subzone and height.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package notation

import (
	"github.com/msto63/rallyscore/internal/volley/domain"
)

// cursor walks the characters of one token
type cursor struct {
	input []rune
	pos   int
}

func newCursor(token string) *cursor {
	return &cursor{input: []rune(token)}
}

// peek returns the current character without consuming it
func (c *cursor) peek() (rune, bool) {
	if c.pos >= len(c.input) {
		return 0, false
	}
	return c.input[c.pos], true
}

// next consumes and returns the current character
func (c *cursor) next() (rune, bool) {
	r, ok := c.peek()
	if ok {
		c.pos++
	}
	return r, ok
}

// done reports whether the whole token was consumed
func (c *cursor) done() bool {
	return c.pos >= len(c.input)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// readTeam consumes a mandatory team prefix
func readTeam(cfg domain.Config, c *cursor) (domain.Team, error) {
	r, ok := c.next()
	if !ok {
		return domain.Away, newReason(KindTeamPrefix)
	}
	team, ok := cfg.TeamOf(r)
	if !ok {
		return domain.Away, newReason(KindTeamPrefix)
	}
	return team, nil
}

// readPlayer consumes one mandatory digit and an optional second digit
func readPlayer(c *cursor) (domain.Player, error) {
	first, ok := c.next()
	if !ok || !isDigit(first) {
		return 0, newReason(KindPlayer)
	}
	number := int(first - '0')
	if second, ok := c.peek(); ok && isDigit(second) {
		c.next()
		number = number*10 + int(second-'0')
	}
	return domain.NewPlayer(number)
}

func servePositionOf(r rune) (domain.ServePosition, bool) {
	if r < 'A' || r > 'F' {
		return domain.ServePositionNone, false
	}
	return domain.ServePositionA + domain.ServePosition(r-'A'), true
}

func subZoneOf(r rune) (domain.SubZone, bool) {
	if r < 'A' || r > 'D' {
		return domain.SubZoneNone, false
	}
	return domain.SubZoneA + domain.SubZone(r-'A'), true
}

func heightOf(r rune) (domain.Height, bool) {
	switch r {
	case 'L':
		return domain.HeightLow, true
	case 'M':
		return domain.HeightMid, true
	case 'H':
		return domain.HeightHigh, true
	default:
		return domain.HeightNone, false
	}
}

// readServePosition consumes a serve position letter if one is next
func readServePosition(c *cursor) domain.ServePosition {
	r, ok := c.peek()
	if !ok {
		return domain.ServePositionNone
	}
	pos, ok := servePositionOf(r)
	if ok {
		c.next()
	}
	return pos
}

// readHeight consumes a height letter if one is next
func readHeight(c *cursor) domain.Height {
	r, ok := c.peek()
	if !ok {
		return domain.HeightNone
	}
	h, ok := heightOf(r)
	if ok {
		c.next()
	}
	return h
}

// readSubZone consumes a subzone letter if one is next
func readSubZone(c *cursor) domain.SubZone {
	r, ok := c.peek()
	if !ok {
		return domain.SubZoneNone
	}
	sz, ok := subZoneOf(r)
	if ok {
		c.next()
	}
	return sz
}

// readZone consumes an optional zone. A zone is a court digit 1-9 with an
// optional subzone, or one of '0' (out of bounds), 'N' (net), 'V' (overpass).
func readZone(c *cursor) (domain.Zone, error) {
	r, ok := c.next()
	if !ok {
		return domain.Zone{}, nil
	}
	switch {
	case r >= '1' && r <= '9':
		return domain.CourtZone(uint8(r-'0'), readSubZone(c))
	case r == '0':
		return domain.OutOfBounds, nil
	case r == 'N':
		return domain.Net, nil
	case r == 'V':
		return domain.Overpass, nil
	default:
		return domain.Zone{}, newReason(KindInvalidInput)
	}
}
