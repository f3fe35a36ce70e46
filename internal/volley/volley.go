// File: volley.go
// Title: Rally Resolution Entry Point
// Description: Composes the notation parser, the scoring resolver and the
//              match aggregator into the single operation a host calls per
//              rally, plus the Ok/Fail result envelope sent back to hosts.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package volley

import (
	"encoding/json"
	"errors"

	"github.com/msto63/rallyscore/internal/volley/domain"
	"github.com/msto63/rallyscore/internal/volley/match"
	"github.com/msto63/rallyscore/internal/volley/notation"
	"github.com/msto63/rallyscore/internal/volley/scoring"
)

// ResolveRally parses text, scores the rally and folds it into state.
// On failure state is returned unchanged with a *notation.Reason.
func ResolveRally(cfg domain.Config, text string, state match.MatchState) (match.MatchState, domain.Rally, error) {
	actions, err := notation.ParseRally(cfg, text)
	if err != nil {
		return state, domain.Rally{}, err
	}

	rally, update, err := scoring.Score(actions)
	if err != nil {
		// the parser only yields non-empty lists of known actions
		return state, domain.Rally{}, notation.ErrInvalidInput.WithLocation(len(actions) - 1)
	}

	return state.Update(update), rally, nil
}

// Result is the envelope returned to hosts: exactly one of Ok or Fail is set
type Result struct {
	Ok   *match.MatchState `json:"Ok,omitempty"`
	Fail *notation.Reason  `json:"Fail,omitempty"`
}

// Resolve runs ResolveRally and wraps the outcome in a Result
func Resolve(cfg domain.Config, text string, state match.MatchState) Result {
	next, _, err := ResolveRally(cfg, text, state)
	if err != nil {
		return Failure(err)
	}
	return Result{Ok: &next}
}

// Failure wraps err in a Fail result. Errors that are not a Reason become
// InvalidInput at token 0.
func Failure(err error) Result {
	if r, ok := notation.AsReason(err); ok {
		return Result{Fail: r}
	}
	return Result{Fail: notation.ErrInvalidInput.WithLocation(0)}
}

// Err returns the failure as an error, or nil for an Ok result
func (r Result) Err() error {
	if r.Fail != nil {
		return r.Fail
	}
	return nil
}

// ErrEmptyResult is returned when decoding an envelope with neither branch
var ErrEmptyResult = errors.New("result has neither Ok nor Fail")

// DecodeResult parses an envelope produced by a host-facing transport
func DecodeResult(data []byte) (Result, error) {
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return Result{}, err
	}
	if r.Ok == nil && r.Fail == nil {
		return Result{}, ErrEmptyResult
	}
	return r, nil
}
