// File: state.go
// Title: Match State Aggregation
// Description: Authoritative match state (sets, points, player statistics)
//              and the pure update that folds one rally into it, applying
//              the set ceiling, two-point margin and best-of-five rules.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package match

import (
	"fmt"

	"github.com/msto63/rallyscore/internal/volley/domain"
)

// Set and match rules
const (
	SetsToWin       = 3
	SetCeiling      = 25
	DecidingCeiling = 15
	MinMargin       = 2
	DecidingSet     = 5
)

// Status is the lifecycle of a match
type Status uint8

const (
	StatusInProgress Status = iota
	StatusFinished
)

// String returns "InProgress" or "Finished"
func (s Status) String() string {
	if s == StatusFinished {
		return "Finished"
	}
	return "InProgress"
}

// MarshalText encodes the status name
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes the status name
func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "InProgress":
		*s = StatusInProgress
	case "Finished":
		*s = StatusFinished
	default:
		return fmt.Errorf("invalid match status: %q", string(text))
	}
	return nil
}

// TeamStats is the running record of one side
type TeamStats struct {
	Sets        uint8         `json:"sets" yaml:"sets"`
	Points      uint8         `json:"points" yaml:"points"`
	PlayerStats StatsByPlayer `json:"playerStats" yaml:"player_stats"`
}

func (t TeamStats) clone() TeamStats {
	t.PlayerStats = t.PlayerStats.Clone()
	return t
}

// MatchState is the whole match. It is a value: Update returns a new state
// and never modifies the receiver.
type MatchState struct {
	AwayTeam TeamStats `json:"awayTeam" yaml:"away_team"`
	HomeTeam TeamStats `json:"homeTeam" yaml:"home_team"`
	Status   Status    `json:"status" yaml:"status"`
}

// UpdateMatchState carries the outcome of one rally into the aggregator
type UpdateMatchState struct {
	PointTo         domain.Team
	AwayPlayerStats StatsByPlayer
	HomePlayerStats StatsByPlayer
}

// New returns the state of a match before the first rally
func New() MatchState {
	return MatchState{
		AwayTeam: TeamStats{PlayerStats: StatsByPlayer{}},
		HomeTeam: TeamStats{PlayerStats: StatsByPlayer{}},
		Status:   StatusInProgress,
	}
}

// Team returns the record of one side
func (s MatchState) Team(t domain.Team) TeamStats {
	if t == domain.Home {
		return s.HomeTeam
	}
	return s.AwayTeam
}

// Clone returns a deep copy
func (s MatchState) Clone() MatchState {
	s.AwayTeam = s.AwayTeam.clone()
	s.HomeTeam = s.HomeTeam.clone()
	return s
}

// Finished reports whether the match has ended
func (s MatchState) Finished() bool {
	return s.Status == StatusFinished
}

// SetNumber returns the 1-based number of the set in progress
func (s MatchState) SetNumber() int {
	return int(s.AwayTeam.Sets) + int(s.HomeTeam.Sets) + 1
}

// Ceiling returns the points needed to win the set in progress.
// The fifth set is the deciding set and is played to 15.
func (s MatchState) Ceiling() int {
	if s.SetNumber() == DecidingSet {
		return DecidingCeiling
	}
	return SetCeiling
}

// SetWinner returns the side that has won the current set, if any.
// The leader wins once it reaches the ceiling with a margin of two.
func (s MatchState) SetWinner() (domain.Team, bool) {
	var winner domain.Team
	var winning, losing TeamStats
	switch {
	case s.AwayTeam.Points > s.HomeTeam.Points:
		winner, winning, losing = domain.Away, s.AwayTeam, s.HomeTeam
	case s.HomeTeam.Points > s.AwayTeam.Points:
		winner, winning, losing = domain.Home, s.HomeTeam, s.AwayTeam
	default:
		return domain.Away, false
	}

	if int(winning.Points) >= s.Ceiling() && winning.Points-losing.Points >= MinMargin {
		return winner, true
	}
	return domain.Away, false
}

// Update folds one rally into the state and returns the new state
func (s MatchState) Update(u UpdateMatchState) MatchState {
	next := s.Clone()

	if u.PointTo == domain.Home {
		next.HomeTeam.Points++
	} else {
		next.AwayTeam.Points++
	}

	if winner, ok := next.SetWinner(); ok {
		next.AwayTeam.Points = 0
		next.HomeTeam.Points = 0
		if winner == domain.Home {
			next.HomeTeam.Sets++
		} else {
			next.AwayTeam.Sets++
		}
	}

	if next.AwayTeam.Sets >= SetsToWin || next.HomeTeam.Sets >= SetsToWin {
		next.Status = StatusFinished
	}

	next.AwayTeam.PlayerStats = next.AwayTeam.PlayerStats.MergeInto(u.AwayPlayerStats)
	next.HomeTeam.PlayerStats = next.HomeTeam.PlayerStats.MergeInto(u.HomePlayerStats)

	return next
}
