package match

import (
	"encoding/json"
	"testing"

	"github.com/msto63/rallyscore/internal/volley/domain"
)

func stateWith(awaySets, awayPoints, homeSets, homePoints uint8) MatchState {
	s := New()
	s.AwayTeam.Sets, s.AwayTeam.Points = awaySets, awayPoints
	s.HomeTeam.Sets, s.HomeTeam.Points = homeSets, homePoints
	return s
}

func TestUpdate_Points(t *testing.T) {
	tests := []struct {
		name       string
		start      MatchState
		pointTo    domain.Team
		wantSets   [2]uint8 // away, home
		wantPoints [2]uint8 // away, home
		wantStatus Status
	}{
		{
			name:       "First point",
			start:      New(),
			pointTo:    domain.Home,
			wantPoints: [2]uint8{0, 1},
		},
		{
			name:       "Deuce at 25-24 is not a set",
			start:      stateWith(0, 24, 0, 24),
			pointTo:    domain.Away,
			wantPoints: [2]uint8{25, 24},
		},
		{
			name:     "Set won at 25-23",
			start:    stateWith(0, 24, 0, 23),
			pointTo:  domain.Away,
			wantSets: [2]uint8{1, 0},
		},
		{
			name:     "Extended set won at 31-29",
			start:    stateWith(1, 29, 1, 30),
			pointTo:  domain.Home,
			wantSets: [2]uint8{1, 2},
		},
		{
			name:       "15 is not enough outside the deciding set",
			start:      stateWith(1, 14, 1, 10),
			pointTo:    domain.Away,
			wantSets:   [2]uint8{1, 1},
			wantPoints: [2]uint8{15, 10},
		},
		{
			name:       "Third set finishes the match",
			start:      stateWith(0, 20, 2, 24),
			pointTo:    domain.Home,
			wantSets:   [2]uint8{0, 3},
			wantStatus: StatusFinished,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.start.Update(UpdateMatchState{PointTo: tt.pointTo})
			if sets := [2]uint8{got.AwayTeam.Sets, got.HomeTeam.Sets}; sets != tt.wantSets {
				t.Errorf("Sets = %v, want %v", sets, tt.wantSets)
			}
			if points := [2]uint8{got.AwayTeam.Points, got.HomeTeam.Points}; points != tt.wantPoints {
				t.Errorf("Points = %v, want %v", points, tt.wantPoints)
			}
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", got.Status, tt.wantStatus)
			}
		})
	}
}

func TestUpdate_DecidingSet(t *testing.T) {
	s := stateWith(2, 13, 2, 13)
	if s.Ceiling() != DecidingCeiling {
		t.Fatalf("Ceiling() = %d, want %d", s.Ceiling(), DecidingCeiling)
	}

	s = s.Update(UpdateMatchState{PointTo: domain.Away})
	if s.AwayTeam.Points != 14 || s.AwayTeam.Sets != 2 {
		t.Fatalf("After first point: %d points, %d sets", s.AwayTeam.Points, s.AwayTeam.Sets)
	}
	if s.Finished() {
		t.Fatal("Match should still be in progress at 14-13")
	}

	s = s.Update(UpdateMatchState{PointTo: domain.Away})
	if s.AwayTeam.Sets != 3 {
		t.Errorf("Away sets = %d, want 3", s.AwayTeam.Sets)
	}
	if s.AwayTeam.Points != 0 || s.HomeTeam.Points != 0 {
		t.Errorf("Points = %d-%d, want 0-0", s.AwayTeam.Points, s.HomeTeam.Points)
	}
	if s.Status != StatusFinished {
		t.Errorf("Status = %s, want Finished", s.Status)
	}
}

func TestCeiling(t *testing.T) {
	for away := uint8(0); away < 3; away++ {
		for home := uint8(0); home < 3; home++ {
			s := stateWith(away, 0, home, 0)
			want := SetCeiling
			if away+home == 4 {
				want = DecidingCeiling
			}
			if got := s.Ceiling(); got != want {
				t.Errorf("Ceiling() at %d-%d = %d, want %d", away, home, got, want)
			}
		}
	}
}

func TestUpdate_ResetsPointsOnlyWithSet(t *testing.T) {
	s := New()
	for i := 0; i < 200 && !s.Finished(); i++ {
		team := domain.Away
		if i%3 == 0 {
			team = domain.Home
		}
		next := s.Update(UpdateMatchState{PointTo: team})
		setsChanged := next.AwayTeam.Sets+next.HomeTeam.Sets != s.AwayTeam.Sets+s.HomeTeam.Sets
		reset := next.AwayTeam.Points == 0 && next.HomeTeam.Points == 0
		if setsChanged != reset {
			t.Fatalf("Rally %d: sets changed=%v but points reset=%v", i, setsChanged, reset)
		}
		s = next
	}
	if !s.Finished() {
		t.Fatal("Match should finish within 200 rallies")
	}
}

func TestUpdate_FinishedIsMonotonic(t *testing.T) {
	s := stateWith(3, 0, 1, 0)
	s.Status = StatusFinished

	for _, team := range []domain.Team{domain.Home, domain.Away, domain.Home} {
		s = s.Update(UpdateMatchState{PointTo: team})
		if s.Status != StatusFinished {
			t.Fatalf("Status reverted to %s", s.Status)
		}
	}
}

func TestUpdate_DoesNotMutateInput(t *testing.T) {
	start := New()
	start.AwayTeam.PlayerStats[1] = PlayerStats{Player: 1, Serves: PlayerScores{All: 1}}

	next := start.Update(UpdateMatchState{
		PointTo:         domain.Away,
		AwayPlayerStats: StatsByPlayer{1: {Player: 1, Serves: PlayerScores{Scored: 1, All: 1}}},
	})

	if start.AwayTeam.Points != 0 {
		t.Errorf("Input points mutated: %d", start.AwayTeam.Points)
	}
	if start.AwayTeam.PlayerStats[1].Serves.All != 1 {
		t.Errorf("Input stats mutated: %+v", start.AwayTeam.PlayerStats[1])
	}
	if got := next.AwayTeam.PlayerStats[1].Serves; got != (PlayerScores{Scored: 1, All: 2}) {
		t.Errorf("Merged serves = %+v", got)
	}
}

func TestUpdate_MergesStatsPerTeam(t *testing.T) {
	start := New()
	start.HomeTeam.PlayerStats[4] = PlayerStats{Player: 4, Hits: PlayerScores{All: 3, Scored: 1}}
	start.HomeTeam.PlayerStats[9] = PlayerStats{Player: 9, Blocks: PlayerScores{All: 2}}

	next := start.Update(UpdateMatchState{
		PointTo:         domain.Home,
		HomePlayerStats: StatsByPlayer{4: {Player: 4, Hits: PlayerScores{All: 1, Scored: 1}}},
		AwayPlayerStats: StatsByPlayer{7: {Player: 7, Serves: PlayerScores{All: 1}}},
	})

	if got := next.HomeTeam.PlayerStats[4].Hits; got != (PlayerScores{Scored: 2, All: 4}) {
		t.Errorf("Player 4 hits = %+v", got)
	}
	if got := next.HomeTeam.PlayerStats[9]; got != start.HomeTeam.PlayerStats[9] {
		t.Errorf("Player 9 changed: %+v", got)
	}
	if got := next.AwayTeam.PlayerStats[7]; got.Player != 7 || got.Serves.All != 1 {
		t.Errorf("Player 7 = %+v", got)
	}
}

func TestPlayerScores_MergeLaws(t *testing.T) {
	samples := []PlayerScores{
		{},
		{Scored: 1},
		{Faults: 2, All: 5},
		{Scored: 3, Faults: 1, All: 9},
	}
	zero := PlayerScores{}

	for _, a := range samples {
		if a.Merge(zero) != a || zero.Merge(a) != a {
			t.Errorf("Zero is not an identity for %+v", a)
		}
		for _, b := range samples {
			if a.Merge(b) != b.Merge(a) {
				t.Errorf("Merge not commutative for %+v, %+v", a, b)
			}
			for _, c := range samples {
				if a.Merge(b).Merge(c) != a.Merge(b.Merge(c)) {
					t.Errorf("Merge not associative for %+v, %+v, %+v", a, b, c)
				}
			}
		}
	}
}

func TestMatchState_JSON(t *testing.T) {
	s := stateWith(1, 5, 2, 7)
	s.HomeTeam.PlayerStats[12] = PlayerStats{Player: 12, Hits: PlayerScores{Scored: 1, All: 2}}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if raw["status"] != "InProgress" {
		t.Errorf("status = %v, want InProgress", raw["status"])
	}
	home := raw["homeTeam"].(map[string]interface{})
	if home["points"].(float64) != 7 {
		t.Errorf("homeTeam.points = %v", home["points"])
	}
	if _, ok := home["playerStats"].(map[string]interface{})["12"]; !ok {
		t.Errorf("playerStats missing key 12: %v", home["playerStats"])
	}

	var back MatchState
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal(MatchState) error = %v", err)
	}
	if back.HomeTeam.PlayerStats[12] != s.HomeTeam.PlayerStats[12] {
		t.Errorf("Round trip lost stats: %+v", back.HomeTeam.PlayerStats[12])
	}
}
