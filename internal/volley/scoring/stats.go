package scoring

import (
	"github.com/msto63/rallyscore/internal/volley/domain"
	"github.com/msto63/rallyscore/internal/volley/match"
)

// category selects the counted stat category of an action type.
// Receives, passes, sets and freeballs are not counted.
func category(stats *match.PlayerStats, at domain.ActionType) *match.PlayerScores {
	switch at.(type) {
	case domain.Serve:
		return &stats.Serves
	case domain.Hit:
		return &stats.Hits
	case domain.Block:
		return &stats.Blocks
	default:
		return nil
	}
}

type deltas map[domain.Team]match.StatsByPlayer

func (d deltas) bump(team domain.Team, player domain.Player, at domain.ActionType, apply func(*match.PlayerScores)) {
	stats, ok := d[team][player]
	if !ok {
		stats = match.PlayerStats{Player: player}
	}
	scores := category(&stats, at)
	if scores == nil {
		return
	}
	apply(scores)
	d[team][player] = stats
}

// Deltas derives the per-player statistic changes of one rally. Every
// counted action increments its actor's All; the credited or blamed actor
// of the verdict additionally gets one Scored or Faults.
func Deltas(actions []domain.Action, who domain.WhoScored) match.UpdateMatchState {
	d := deltas{
		domain.Away: match.StatsByPlayer{},
		domain.Home: match.StatsByPlayer{},
	}

	for _, a := range actions {
		d.bump(a.Team, a.Player, a.ActionType, func(s *match.PlayerScores) { s.All++ })
	}
	if s := who.Scored; s != nil {
		d.bump(s.Team, s.Player, s.ActionType, func(ps *match.PlayerScores) { ps.Scored++ })
	}
	if f := who.Faulted; f != nil {
		d.bump(f.Team, f.Player, f.ActionType, func(ps *match.PlayerScores) { ps.Faults++ })
	}

	return match.UpdateMatchState{
		PointTo:         who.PointTo,
		AwayPlayerStats: d[domain.Away],
		HomePlayerStats: d[domain.Home],
	}
}

// Score resolves the verdict and the deltas of a rally in one step
func Score(actions []domain.Action) (domain.Rally, match.UpdateMatchState, error) {
	who, err := Resolve(actions)
	if err != nil {
		return domain.Rally{}, match.UpdateMatchState{}, err
	}
	return domain.Rally{Actions: actions, Who: who}, Deltas(actions, who), nil
}
