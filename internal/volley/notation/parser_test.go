package notation

import (
	"errors"
	"testing"

	"github.com/msto63/rallyscore/internal/volley/domain"
)

func TestParseRally(t *testing.T) {
	cfg := domain.DefaultConfig()

	tests := []struct {
		name  string
		input string
		check func(t *testing.T, actions []domain.Action)
	}{
		{
			name:  "Serve with position and zone",
			input: "@1SA4",
			check: func(t *testing.T, actions []domain.Action) {
				if len(actions) != 1 {
					t.Fatalf("Expected 1 action, got %d", len(actions))
				}
				a := actions[0]
				if a.Team != domain.Away || a.Player != 1 {
					t.Errorf("Expected Away 1, got %v %d", a.Team, a.Player)
				}
				serve, ok := a.ActionType.(domain.Serve)
				if !ok {
					t.Fatalf("Expected Serve, got %T", a.ActionType)
				}
				if serve.Position != domain.ServePositionA {
					t.Errorf("Expected position A, got %v", serve.Position)
				}
				if !serve.Zone.InCourt() || serve.Zone.Number() != 4 {
					t.Errorf("Expected zone 4, got %s", serve.Zone)
				}
			},
		},
		{
			name:  "Serve without modifiers",
			input: "!7S",
			check: func(t *testing.T, actions []domain.Action) {
				serve := actions[0].ActionType.(domain.Serve)
				if serve.Position != domain.ServePositionNone || serve.Zone.Present() {
					t.Errorf("Expected bare serve, got %+v", serve)
				}
				if actions[0].Team != domain.Home {
					t.Errorf("Expected Home, got %v", actions[0].Team)
				}
			},
		},
		{
			name:  "Two digit player and subzone",
			input: "@12S5C",
			check: func(t *testing.T, actions []domain.Action) {
				a := actions[0]
				if a.Player != 12 {
					t.Errorf("Expected player 12, got %d", a.Player)
				}
				serve := a.ActionType.(domain.Serve)
				if serve.Position != domain.ServePositionNone {
					t.Errorf("Expected no position, got %v", serve.Position)
				}
				if serve.Zone.Number() != 5 || serve.Zone.SubZone() != domain.SubZoneC {
					t.Errorf("Expected zone 5C, got %s", serve.Zone)
				}
			},
		},
		{
			name:  "Serve out of bounds",
			input: "@1SA0",
			check: func(t *testing.T, actions []domain.Action) {
				serve := actions[0].ActionType.(domain.Serve)
				if serve.Zone.Kind() != domain.ZoneOutOfBounds {
					t.Errorf("Expected out of bounds, got %s", serve.Zone)
				}
			},
		},
		{
			name:  "Full rally",
			input: "@1SB6 !4RH7A !2E !9H3 @5B!N",
			check: func(t *testing.T, actions []domain.Action) {
				if len(actions) != 5 {
					t.Fatalf("Expected 5 actions, got %d", len(actions))
				}
				recv, ok := actions[1].ActionType.(domain.Receive)
				if !ok {
					t.Fatalf("Expected Receive, got %T", actions[1].ActionType)
				}
				if recv.Height != domain.HeightHigh || recv.Zone.Number() != 7 || recv.Zone.SubZone() != domain.SubZoneA {
					t.Errorf("Unexpected receive %+v", recv)
				}
				if _, ok := actions[2].ActionType.(domain.Set); !ok {
					t.Errorf("Expected Set, got %T", actions[2].ActionType)
				}
				hit := actions[3].ActionType.(domain.Hit)
				if hit.Zone.Number() != 3 {
					t.Errorf("Expected hit to zone 3, got %s", hit.Zone)
				}
				block := actions[4].ActionType.(domain.Block)
				if block.Team != domain.Home || block.Zone.Kind() != domain.ZoneNet {
					t.Errorf("Expected block !N, got %+v", block)
				}
				if actions[4].Team != domain.Away {
					t.Errorf("Expected acting team Away, got %v", actions[4].Team)
				}
			},
		},
		{
			name:  "Pass overpass and freeball",
			input: "@3S !1PV @2F4",
			check: func(t *testing.T, actions []domain.Action) {
				pass := actions[1].ActionType.(domain.Pass)
				if pass.Height != domain.HeightNone || pass.Zone.Kind() != domain.ZoneOverpass {
					t.Errorf("Expected overpass pass, got %+v", pass)
				}
				fb := actions[2].ActionType.(domain.Freeball)
				if fb.Zone.Number() != 4 {
					t.Errorf("Expected freeball to 4, got %s", fb.Zone)
				}
			},
		},
		{
			name:  "Surrounding whitespace is ignored",
			input: "  @1S4 !2H  ",
			check: func(t *testing.T, actions []domain.Action) {
				if len(actions) != 2 {
					t.Errorf("Expected 2 actions, got %d", len(actions))
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actions, err := ParseRally(cfg, tt.input)
			if err != nil {
				t.Fatalf("ParseRally(%q) error = %v", tt.input, err)
			}
			tt.check(t, actions)
		})
	}
}

func TestParseRally_Errors(t *testing.T) {
	cfg := domain.DefaultConfig()

	tests := []struct {
		name     string
		input    string
		kind     Kind
		location int
	}{
		{"Empty rally", "", KindNoActions, 0},
		{"Blank rally", "   ", KindNoActions, 0},
		{"Invalid prefix", "X1SA4", KindTeamPrefix, 0},
		{"Missing player", "@SA4", KindPlayer, 0},
		{"Missing action code", "@1", KindInvalidInput, 0},
		{"First action not serve", "@1H4", KindFirstActionNotServe, 0},
		{"Serve in second position", "@1S4 !2S", KindServeNotFirstAction, 1},
		{"Unknown action code", "@1S4 !2X", KindInvalidInput, 1},
		{"Block without team", "@1S4 !2B", KindTeamPrefix, 1},
		{"Block with bad team", "@1S4 !2BX4", KindTeamPrefix, 1},
		{"Invalid zone", "@1S4 !2HZ", KindInvalidInput, 1},
		{"Subzone on special zone", "@1S0A", KindInvalidInput, 0},
		{"Trailing garbage", "@1S4AA", KindInvalidInput, 0},
		{"Bad subzone", "@1S4E", KindInvalidInput, 0},
		{"Double space", "@1S4  !2H", KindTeamPrefix, 1},
		{"Error in last token", "@1S4 !2R !3E !4HQ", KindInvalidInput, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actions, err := ParseRally(cfg, tt.input)
			if err == nil {
				t.Fatalf("Expected error for %q, got actions %v", tt.input, actions)
			}
			if actions != nil {
				t.Errorf("Expected no actions on failure, got %v", actions)
			}
			r, ok := AsReason(err)
			if !ok {
				t.Fatalf("Expected *Reason, got %T", err)
			}
			if r.Kind != tt.kind {
				t.Errorf("Expected kind %s, got %s", tt.kind, r.Kind)
			}
			if r.Location != tt.location {
				t.Errorf("Expected location %d, got %d", tt.location, r.Location)
			}
			if r.ErrorMsg == "" {
				t.Error("Expected a human readable message")
			}
		})
	}
}

func TestParseRally_FailsFast(t *testing.T) {
	_, err := ParseRally(domain.DefaultConfig(), "@1H4 X !2S")
	r, ok := AsReason(err)
	if !ok {
		t.Fatalf("Expected *Reason, got %v", err)
	}
	if r.Kind != KindFirstActionNotServe || r.Location != 0 {
		t.Errorf("Expected first defect at token 0, got %s at %d", r.Kind, r.Location)
	}
}

func TestParseRally_CustomPrefixes(t *testing.T) {
	cfg := domain.Config{AwayPrefix: '<', HomePrefix: '>'}

	actions, err := ParseRally(cfg, "<3S4 >8B<2")
	if err != nil {
		t.Fatalf("ParseRally() error = %v", err)
	}
	if actions[0].Team != domain.Away || actions[1].Team != domain.Home {
		t.Errorf("Unexpected teams %v %v", actions[0].Team, actions[1].Team)
	}
	block := actions[1].ActionType.(domain.Block)
	if block.Team != domain.Away {
		t.Errorf("Expected block team Away, got %v", block.Team)
	}

	if _, err := ParseRally(cfg, "@3S4"); !errors.Is(err, ErrTeamPrefix) {
		t.Errorf("Expected team prefix error with custom prefixes, got %v", err)
	}
}

func TestParseRally_Deterministic(t *testing.T) {
	cfg := domain.DefaultConfig()
	input := "@1SB6 !4RH7A !2E !9H3 @5B!N"

	first, err := ParseRally(cfg, input)
	if err != nil {
		t.Fatalf("ParseRally() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := ParseRally(cfg, input)
		if err != nil {
			t.Fatalf("ParseRally() error = %v", err)
		}
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("Run %d differs at action %d: %v vs %v", i, j, first[j], again[j])
			}
		}
	}
}

func TestParseAction_Positions(t *testing.T) {
	cfg := domain.DefaultConfig()

	for _, pos := range []Position{PositionOnly, PositionFirst} {
		if _, err := ParseAction(cfg, "@1S", pos); err != nil {
			t.Errorf("Serve at %s: unexpected error %v", pos, err)
		}
		if _, err := ParseAction(cfg, "@1E", pos); !errors.Is(err, ErrFirstActionNotServe) {
			t.Errorf("Set at %s: expected FirstActionNotServe, got %v", pos, err)
		}
	}
	for _, pos := range []Position{PositionMiddle, PositionLast} {
		if _, err := ParseAction(cfg, "@1E", pos); err != nil {
			t.Errorf("Set at %s: unexpected error %v", pos, err)
		}
		if _, err := ParseAction(cfg, "@1S", pos); !errors.Is(err, ErrServeNotFirstAction) {
			t.Errorf("Serve at %s: expected ServeNotFirstAction, got %v", pos, err)
		}
	}
}

func TestPositionOf(t *testing.T) {
	tests := []struct {
		i, n int
		want Position
	}{
		{0, 1, PositionOnly},
		{0, 3, PositionFirst},
		{1, 3, PositionMiddle},
		{2, 3, PositionLast},
		{1, 2, PositionLast},
	}
	for _, tt := range tests {
		if got := PositionOf(tt.i, tt.n); got != tt.want {
			t.Errorf("PositionOf(%d, %d) = %s, want %s", tt.i, tt.n, got, tt.want)
		}
	}
}

func TestAction_NotationRoundTrip(t *testing.T) {
	cfg := domain.DefaultConfig()
	inputs := []string{"@1SA4", "!12S5C", "@3S", "!4RH7A", "!2E", "!9H0", "@5B!N", "@6PLV", "!8F9D"}

	for i, in := range inputs {
		pos := PositionMiddle
		if i < 3 {
			pos = PositionFirst
		}
		a, err := ParseAction(cfg, in, pos)
		if err != nil {
			t.Fatalf("ParseAction(%q) error = %v", in, err)
		}
		if got := a.Notation(cfg); got != in {
			t.Errorf("Notation() = %q, want %q", got, in)
		}
	}
}
