// ============================================================================
// rallyscore - Volleyball Rally Scorekeeper
// ============================================================================
//
// Package:     scoreboard
// Description: Scoring backends for the scoreboard: in-memory or stored match
// Author:      msto63
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package scoreboard

import (
	"context"

	"github.com/msto63/rallyscore/internal/volley"
	"github.com/msto63/rallyscore/internal/volley/domain"
	"github.com/msto63/rallyscore/internal/volley/match"
	"github.com/msto63/rallyscore/internal/volley/service"
	"github.com/msto63/rallyscore/internal/volley/store"
)

// Scorer applies rallies for the board
type Scorer interface {
	// State returns the current state
	State(ctx context.Context) (match.MatchState, error)
	// Score applies one rally and returns the canonical rally and new state
	Score(ctx context.Context, rally string) (domain.Rally, match.MatchState, error)
	// Undo drops the last rally
	Undo(ctx context.Context) (match.MatchState, error)
	// Notation returns the prefix configuration
	Notation() domain.Config
}

// LocalScorer keeps the match in memory
type LocalScorer struct {
	cfg    domain.Config
	states []match.MatchState
}

// NewLocalScorer creates an in-memory scorer starting a new match
func NewLocalScorer(cfg domain.Config) *LocalScorer {
	return &LocalScorer{cfg: cfg, states: []match.MatchState{match.New()}}
}

func (l *LocalScorer) current() match.MatchState {
	return l.states[len(l.states)-1]
}

// State returns the current state
func (l *LocalScorer) State(ctx context.Context) (match.MatchState, error) {
	return l.current(), nil
}

// Score applies a rally. A finished match rejects further rallies.
func (l *LocalScorer) Score(ctx context.Context, rally string) (domain.Rally, match.MatchState, error) {
	cur := l.current()
	if cur.Finished() {
		return domain.Rally{}, cur, service.ErrMatchFinished
	}
	next, r, err := volley.ResolveRally(l.cfg, rally, cur)
	if err != nil {
		return domain.Rally{}, cur, err
	}
	l.states = append(l.states, next)
	return r, next, nil
}

// Undo drops the last rally
func (l *LocalScorer) Undo(ctx context.Context) (match.MatchState, error) {
	if len(l.states) == 1 {
		return l.current(), store.ErrNoRallies
	}
	l.states = l.states[:len(l.states)-1]
	return l.current(), nil
}

// Notation returns the prefix configuration
func (l *LocalScorer) Notation() domain.Config { return l.cfg }

// SessionScorer scores a match stored by the session service
type SessionScorer struct {
	svc     *service.Service
	matchID string
}

// NewSessionScorer creates a scorer bound to a stored match
func NewSessionScorer(svc *service.Service, matchID string) *SessionScorer {
	return &SessionScorer{svc: svc, matchID: matchID}
}

// State loads the stored state
func (s *SessionScorer) State(ctx context.Context) (match.MatchState, error) {
	m, err := s.svc.Get(ctx, s.matchID)
	if err != nil {
		return match.MatchState{}, err
	}
	return m.State, nil
}

// Score applies and stores a rally
func (s *SessionScorer) Score(ctx context.Context, rally string) (domain.Rally, match.MatchState, error) {
	out, err := s.svc.Apply(ctx, s.matchID, rally)
	if err != nil {
		return domain.Rally{}, match.MatchState{}, err
	}
	return out.Rally, out.State, nil
}

// Undo removes the last stored rally
func (s *SessionScorer) Undo(ctx context.Context) (match.MatchState, error) {
	return s.svc.Undo(ctx, s.matchID)
}

// Notation returns the prefix configuration of the service
func (s *SessionScorer) Notation() domain.Config { return s.svc.Notation() }
