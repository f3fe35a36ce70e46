package scoring

import (
	"errors"
	"testing"

	"github.com/msto63/rallyscore/internal/volley/domain"
	"github.com/msto63/rallyscore/internal/volley/match"
	"github.com/msto63/rallyscore/internal/volley/notation"
)

func mustParse(t *testing.T, rally string) []domain.Action {
	t.Helper()
	actions, err := notation.ParseRally(domain.DefaultConfig(), rally)
	if err != nil {
		t.Fatalf("ParseRally(%q) error = %v", rally, err)
	}
	return actions
}

type expectation struct {
	team   domain.Team
	player domain.Player
	kind   string
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		rally   string
		scored  *expectation
		faulted *expectation
		pointTo domain.Team
	}{
		{"Serve in court scores", "@1SA4", &expectation{domain.Away, 1, "Serve"}, nil, domain.Away},
		{"Serve out of bounds faults", "@1SA0", nil, &expectation{domain.Away, 1, "Serve"}, domain.Home},
		{"Serve into the net faults", "!3SN", nil, &expectation{domain.Home, 3, "Serve"}, domain.Away},
		{"Serve without zone scores", "@1S", &expectation{domain.Away, 1, "Serve"}, nil, domain.Away},
		{"Hit out of bounds faults", "@1SA4 !2H0", nil, &expectation{domain.Home, 2, "Hit"}, domain.Away},
		{"Hit into the net faults", "@1S4 !2R !3E !4HN", nil, &expectation{domain.Home, 4, "Hit"}, domain.Away},
		{"Hit in court scores", "@1S4 !2R !3E !4H5", &expectation{domain.Home, 4, "Hit"}, nil, domain.Home},
		{"Hit without zone scores", "@1S4 !2R !3E !4H", &expectation{domain.Home, 4, "Hit"}, nil, domain.Home},
		{"Receive overpass scores", "@1S4 !2RV", &expectation{domain.Home, 2, "Receive"}, nil, domain.Home},
		{"Failed receive credits the serve", "@1S4 !2RL", &expectation{domain.Away, 1, "Serve"}, nil, domain.Away},
		{"Pass overpass scores", "@1S4 !2R !3PHV", &expectation{domain.Home, 3, "Pass"}, nil, domain.Home},
		{"Failed pass credits the previous contact", "@1S4 !2R !3P", &expectation{domain.Home, 2, "Receive"}, nil, domain.Home},
		{"Set blames the setter", "@1S4 !2R !3E", nil, &expectation{domain.Home, 3, "Set"}, domain.Away},
		{"Block of opposing side blames the attacker", "@1S4 !2R !3E !4H @5B!", nil, &expectation{domain.Home, 4, "Hit"}, domain.Away},
		{"Block of opposing side in court blames the attacker", "@1S4 !2R !3E !4H @5B!3", nil, &expectation{domain.Home, 4, "Hit"}, domain.Away},
		{"Block naming own side credits the attacker", "@1S4 !2R !3E !4H @5B@", &expectation{domain.Home, 4, "Hit"}, nil, domain.Home},
		{"Block out of bounds credits the attacker", "@1S4 !2R !3E !4H @5B!0", &expectation{domain.Home, 4, "Hit"}, nil, domain.Home},
		{"Block into the net credits the attacker", "@1S4 !2R !3E !4H @5B!N", &expectation{domain.Home, 4, "Hit"}, nil, domain.Home},
		{"Freeball in court scores", "@1S4 !2R !3F5", &expectation{domain.Home, 3, "Freeball"}, nil, domain.Home},
		{"Freeball out of bounds faults", "@1S4 !2R !3F0", nil, &expectation{domain.Home, 3, "Freeball"}, domain.Away},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			who, err := Resolve(mustParse(t, tt.rally))
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if who.PointTo != tt.pointTo {
				t.Errorf("PointTo = %v, want %v", who.PointTo, tt.pointTo)
			}
			checkScored(t, "Scored", who.Scored, tt.scored)
			checkScored(t, "Faulted", who.Faulted, tt.faulted)
			if who.Scored == nil && who.Faulted == nil {
				t.Error("Verdict names neither a scorer nor a fault")
			}
		})
	}
}

func checkScored(t *testing.T, field string, got *domain.Scored, want *expectation) {
	t.Helper()
	if want == nil {
		if got != nil {
			t.Errorf("%s = %+v, want none", field, *got)
		}
		return
	}
	if got == nil {
		t.Errorf("%s = none, want %+v", field, *want)
		return
	}
	if got.Team != want.team || got.Player != want.player || got.ActionType.Kind() != want.kind {
		t.Errorf("%s = %v %d %s, want %v %d %s", field,
			got.Team, got.Player, got.ActionType.Kind(), want.team, want.player, want.kind)
	}
}

func TestResolve_WithoutRelatedAction(t *testing.T) {
	receive := domain.Action{Team: domain.Home, Player: 2, ActionType: domain.Receive{}}
	who, _ := Resolve([]domain.Action{receive})
	if who.Faulted == nil || who.Faulted.Player != 2 || who.PointTo != domain.Away {
		t.Errorf("Lone receive: %+v", who)
	}

	block := domain.Action{Team: domain.Away, Player: 5, ActionType: domain.Block{Team: domain.Home}}
	who, _ = Resolve([]domain.Action{block})
	if who.Scored == nil || who.Scored.Player != 5 || who.PointTo != domain.Away {
		t.Errorf("Lone block of opposing side: %+v", who)
	}

	ownBlock := domain.Action{Team: domain.Away, Player: 5, ActionType: domain.Block{Team: domain.Away}}
	who, _ = Resolve([]domain.Action{ownBlock})
	if who.Faulted == nil || who.Faulted.Player != 5 || who.PointTo != domain.Home {
		t.Errorf("Lone block of own side: %+v", who)
	}
}

func TestResolve_Errors(t *testing.T) {
	if _, err := Resolve(nil); !errors.Is(err, ErrNoActions) {
		t.Errorf("Resolve(nil) error = %v, want ErrNoActions", err)
	}
	if _, err := Resolve([]domain.Action{{Team: domain.Away, Player: 1}}); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("Resolve(untyped) error = %v, want ErrUnknownAction", err)
	}
}

func TestDeltas(t *testing.T) {
	actions := mustParse(t, "@1S4 !2R !3E !4H @5B!")
	_, update, err := Score(actions)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}

	if update.PointTo != domain.Away {
		t.Errorf("PointTo = %v, want Away", update.PointTo)
	}

	wantAway := match.StatsByPlayer{
		1: {Player: 1, Serves: match.PlayerScores{All: 1}},
		5: {Player: 5, Blocks: match.PlayerScores{All: 1}},
	}
	wantHome := match.StatsByPlayer{
		4: {Player: 4, Hits: match.PlayerScores{All: 1, Faults: 1}},
	}
	compareStats(t, "away", update.AwayPlayerStats, wantAway)
	compareStats(t, "home", update.HomePlayerStats, wantHome)
}

func TestDeltas_UncountedCategory(t *testing.T) {
	_, update, err := Score(mustParse(t, "@1S4 !2RV"))
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if len(update.HomePlayerStats) != 0 {
		t.Errorf("Receive should not be counted: %+v", update.HomePlayerStats)
	}
	if got := update.AwayPlayerStats[1].Serves; got != (match.PlayerScores{All: 1}) {
		t.Errorf("Serve stats = %+v", got)
	}
}

func TestDeltas_AcePlayerCountedOnce(t *testing.T) {
	_, update, err := Score(mustParse(t, "!10S5"))
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if got := update.HomePlayerStats[10].Serves; got != (match.PlayerScores{Scored: 1, All: 1}) {
		t.Errorf("Serve stats = %+v", got)
	}
}

func compareStats(t *testing.T, side string, got, want match.StatsByPlayer) {
	t.Helper()
	if len(got) != len(want) {
		t.Errorf("%s: %d players, want %d (%+v)", side, len(got), len(want), got)
	}
	for player, w := range want {
		if g := got[player]; g != w {
			t.Errorf("%s player %d = %+v, want %+v", side, player, g, w)
		}
	}
}
