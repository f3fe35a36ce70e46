package match

import "github.com/msto63/rallyscore/internal/volley/domain"

// PlayerScores counts one stat category for one player. All counts every
// occurrence, Scored and Faults only attributed rally outcomes.
type PlayerScores struct {
	Scored uint32 `json:"scored" yaml:"scored"`
	Faults uint32 `json:"faults" yaml:"faults"`
	All    uint32 `json:"all" yaml:"all"`
}

// Merge adds two score triples element-wise
func (s PlayerScores) Merge(other PlayerScores) PlayerScores {
	return PlayerScores{
		Scored: s.Scored + other.Scored,
		Faults: s.Faults + other.Faults,
		All:    s.All + other.All,
	}
}

// PlayerStats is the cumulative record of one player
type PlayerStats struct {
	Player domain.Player `json:"player" yaml:"player"`
	Hits   PlayerScores  `json:"hits" yaml:"hits"`
	Blocks PlayerScores  `json:"blocks" yaml:"blocks"`
	Serves PlayerScores  `json:"serves" yaml:"serves"`
}

// Merge adds the categories of two records of the same player
func (s PlayerStats) Merge(other PlayerStats) PlayerStats {
	return PlayerStats{
		Player: s.Player,
		Hits:   s.Hits.Merge(other.Hits),
		Blocks: s.Blocks.Merge(other.Blocks),
		Serves: s.Serves.Merge(other.Serves),
	}
}

// StatsByPlayer maps player numbers to their records
type StatsByPlayer map[domain.Player]PlayerStats

// Clone returns an independent copy
func (m StatsByPlayer) Clone() StatsByPlayer {
	out := make(StatsByPlayer, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// MergeInto returns a copy of m with delta added; players absent from
// delta are left unchanged.
func (m StatsByPlayer) MergeInto(delta StatsByPlayer) StatsByPlayer {
	out := m.Clone()
	for player, d := range delta {
		current, ok := out[player]
		if !ok {
			current = PlayerStats{Player: player}
		}
		out[player] = current.Merge(d)
	}
	return out
}
