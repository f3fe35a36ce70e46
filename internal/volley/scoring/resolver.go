// File: resolver.go
// Title: Rally Scoring Resolver
// Description: Decides who won a rally from its last action and, where the
//              rule needs it, the action before it. Also derives the
//              per-player statistic deltas of the rally.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package scoring

import (
	"errors"
	"fmt"

	"github.com/msto63/rallyscore/internal/volley/domain"
)

var (
	// ErrNoActions is returned for an empty action list
	ErrNoActions = errors.New("no actions to score")
	// ErrUnknownAction is returned for an action type outside the closed set
	ErrUnknownAction = errors.New("unknown action type")
)

func credit(a domain.Action) *domain.Scored {
	return &domain.Scored{Team: a.Team, Player: a.Player, ActionType: a.ActionType}
}

// scores credits actor with the rally, which goes to actor's team
func scores(actor domain.Action) domain.WhoScored {
	return domain.WhoScored{Scored: credit(actor), PointTo: actor.Team}
}

// faults blames actor, the rally goes to the opponent
func faults(actor domain.Action) domain.WhoScored {
	return domain.WhoScored{Faulted: credit(actor), PointTo: actor.Team.Opponent()}
}

// Resolve computes the verdict of a rally
func Resolve(actions []domain.Action) (domain.WhoScored, error) {
	if len(actions) == 0 {
		return domain.WhoScored{}, ErrNoActions
	}

	last := actions[len(actions)-1]
	var related *domain.Action
	if len(actions) > 1 {
		related = &actions[len(actions)-2]
	}

	switch at := last.ActionType.(type) {
	case domain.Serve:
		if at.Zone.IsError() {
			return faults(last), nil
		}
		return scores(last), nil

	case domain.Receive:
		return resolveFirstContact(last, related, at.Zone), nil

	case domain.Pass:
		return resolveFirstContact(last, related, at.Zone), nil

	case domain.Set:
		// TODO: blame the action that caused the over-set once sets carry a zone
		return faults(last), nil

	case domain.Hit:
		if at.Zone.IsError() {
			return faults(last), nil
		}
		return scores(last), nil

	case domain.Block:
		return resolveBlock(last, related, at), nil

	case domain.Freeball:
		if at.Zone.IsError() {
			return faults(last), nil
		}
		return scores(last), nil

	default:
		return domain.WhoScored{}, fmt.Errorf("%w: %T", ErrUnknownAction, last.ActionType)
	}
}

// resolveFirstContact covers receive and pass: an overpass scores, anything
// else ending the rally credits the previous action.
func resolveFirstContact(last domain.Action, related *domain.Action, zone domain.Zone) domain.WhoScored {
	if zone.Kind() == domain.ZoneOverpass {
		return scores(last)
	}
	if related != nil {
		return scores(*related)
	}
	return faults(last)
}

// resolveBlock distinguishes a block naming the opposing side that stays in
// court from every other block outcome.
func resolveBlock(last domain.Action, related *domain.Action, block domain.Block) domain.WhoScored {
	if block.Team != last.Team && block.Zone.InCourtOrAbsent() {
		if related != nil {
			return domain.WhoScored{Faulted: credit(*related), PointTo: last.Team}
		}
		return scores(last)
	}
	if related != nil {
		return scores(*related)
	}
	return faults(last)
}
