package scoreboard

import (
	"github.com/msto63/rallyscore/internal/volley/domain"
	"github.com/msto63/rallyscore/internal/volley/match"
)

// Message types for tea.Cmd async operations

// stateLoadedMsg carries the state the board opens with
type stateLoadedMsg struct {
	state match.MatchState
	err   error
}

// rallyScoredMsg is sent when a typed rally was applied or rejected
type rallyScoredMsg struct {
	input string
	rally domain.Rally
	state match.MatchState
	err   error
}

// undoneMsg is sent after the last rally was dropped
type undoneMsg struct {
	state match.MatchState
	err   error
}
