// File: parser.go
// Title: Rally Notation Parser
// Description: Recursive descent over one rally string. Splits the rally
//              into tokens, tags each with its ordinal position and parses
//              it into a typed action. The first token follows the serve
//              grammar, every later token the in-play grammar.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package notation

import (
	"strings"

	"github.com/msto63/rallyscore/internal/volley/domain"
)

// Position is the ordinal place of a token in its rally
type Position int

const (
	PositionOnly Position = iota
	PositionFirst
	PositionMiddle
	PositionLast
)

// String returns a readable position name
func (p Position) String() string {
	switch p {
	case PositionOnly:
		return "only"
	case PositionFirst:
		return "first"
	case PositionMiddle:
		return "middle"
	case PositionLast:
		return "last"
	default:
		return "unknown"
	}
}

// Opening reports whether the token opens the rally and must be a serve
func (p Position) Opening() bool {
	return p == PositionOnly || p == PositionFirst
}

// PositionOf returns the position of token i in a rally of n tokens
func PositionOf(i, n int) Position {
	switch {
	case n == 1:
		return PositionOnly
	case i == 0:
		return PositionFirst
	case i == n-1:
		return PositionLast
	default:
		return PositionMiddle
	}
}

// Separator splits the tokens of a rally
const Separator = " "

// ParseRally parses a whole rally. It stops at the first defective token
// and returns a *Reason located at that token's index.
func ParseRally(cfg domain.Config, rally string) ([]domain.Action, error) {
	rally = strings.TrimSpace(rally)
	if rally == "" {
		return nil, newReason(KindNoActions)
	}

	tokens := strings.Split(rally, Separator)
	actions := make([]domain.Action, 0, len(tokens))
	for i, token := range tokens {
		action, err := ParseAction(cfg, token, PositionOf(i, len(tokens)))
		if err != nil {
			if r, ok := AsReason(err); ok {
				return nil, r.WithLocation(i)
			}
			return nil, newReason(KindInvalidInput).WithLocation(i)
		}
		actions = append(actions, action)
	}
	return actions, nil
}

// ParseAction parses one token. Failures are *Reason values located at 0;
// ParseRally re-anchors them to the token index.
func ParseAction(cfg domain.Config, token string, pos Position) (domain.Action, error) {
	c := newCursor(token)

	team, err := readTeam(cfg, c)
	if err != nil {
		return domain.Action{}, err
	}

	player, err := readPlayer(c)
	if err != nil {
		return domain.Action{}, err
	}

	var actionType domain.ActionType
	if pos.Opening() {
		actionType, err = parseOpening(c)
	} else {
		actionType, err = parseInPlay(cfg, c)
	}
	if err != nil {
		return domain.Action{}, err
	}

	if !c.done() {
		return domain.Action{}, newReason(KindInvalidInput)
	}

	return domain.Action{
		Team:       team,
		Player:     player,
		ActionType: actionType,
	}, nil
}

// parseOpening accepts only a serve: S [position] [zone [subzone]]
func parseOpening(c *cursor) (domain.ActionType, error) {
	code, ok := c.next()
	if !ok {
		return nil, newReason(KindInvalidInput)
	}
	if code != 'S' {
		return nil, newReason(KindFirstActionNotServe)
	}

	position := readServePosition(c)
	zone, err := readZone(c)
	if err != nil {
		return nil, err
	}
	return domain.Serve{Position: position, Zone: zone}, nil
}

// parseInPlay handles every code allowed after the serve
func parseInPlay(cfg domain.Config, c *cursor) (domain.ActionType, error) {
	code, ok := c.next()
	if !ok {
		return nil, newReason(KindInvalidInput)
	}

	switch code {
	case 'R', 'P':
		height := readHeight(c)
		zone, err := readZone(c)
		if err != nil {
			return nil, err
		}
		if code == 'R' {
			return domain.Receive{Height: height, Zone: zone}, nil
		}
		return domain.Pass{Height: height, Zone: zone}, nil

	case 'E':
		return domain.Set{}, nil

	case 'H':
		zone, err := readZone(c)
		if err != nil {
			return nil, err
		}
		return domain.Hit{Zone: zone}, nil

	case 'B':
		team, err := readTeam(cfg, c)
		if err != nil {
			return nil, err
		}
		zone, err := readZone(c)
		if err != nil {
			return nil, err
		}
		return domain.Block{Team: team, Zone: zone}, nil

	case 'F':
		zone, err := readZone(c)
		if err != nil {
			return nil, err
		}
		return domain.Freeball{Zone: zone}, nil

	case 'S':
		return nil, newReason(KindServeNotFirstAction)

	default:
		return nil, newReason(KindInvalidInput)
	}
}
