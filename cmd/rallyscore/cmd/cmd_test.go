package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/msto63/rallyscore/internal/volley"
	"github.com/msto63/rallyscore/internal/volley/domain"
	"github.com/msto63/rallyscore/internal/volley/match"
)

func TestWriteResult(t *testing.T) {
	ok := volley.Resolve(domain.DefaultConfig(), "@1SA4", match.New())
	fail := volley.Resolve(domain.DefaultConfig(), "@1", match.New())
	if ok.Ok == nil || fail.Fail == nil {
		t.Fatalf("unexpected fixtures: ok=%+v fail=%+v", ok, fail)
	}

	tests := []struct {
		name   string
		format string
		result volley.Result
		want   string
	}{
		{"text ok", "text", ok, "Home 0 (0) - (1) 0 Away"},
		{"text fail", "text", fail, "Rejected at token 1:"},
		{"json ok", "json", ok, `{"Ok":{`},
		{"json fail", "json", fail, `{"Fail":{`},
		{"yaml fail", "yaml", fail, "fail:\n  kind:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := writeResult(&buf, tt.format, tt.result); err != nil {
				t.Fatalf("writeResult() error = %v", err)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output = %q, want it to contain %q", buf.String(), tt.want)
			}
		})
	}

	if err := writeResult(&bytes.Buffer{}, "xml", ok); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestStateFiles(t *testing.T) {
	state, _, err := volley.ResolveRally(domain.DefaultConfig(), "!4SA4", match.New())
	if err != nil {
		t.Fatalf("ResolveRally() error = %v", err)
	}

	for _, name := range []string{"state.json", "state.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := writeState(path, state); err != nil {
				t.Fatalf("writeState() error = %v", err)
			}
			got, err := readState(path)
			if err != nil {
				t.Fatalf("readState() error = %v", err)
			}
			if got.HomeTeam.Points != 1 || got.AwayTeam.Points != 0 {
				t.Errorf("points = %d-%d, want 1-0", got.HomeTeam.Points, got.AwayTeam.Points)
			}
			if got.HomeTeam.PlayerStats == nil || got.AwayTeam.PlayerStats == nil {
				t.Error("player stats not initialized")
			}
		})
	}

	empty := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := readState(empty)
	if err != nil {
		t.Fatalf("readState(empty) error = %v", err)
	}
	if got.SetNumber() != 1 {
		t.Errorf("empty file should be a new match, set = %d", got.SetNumber())
	}
}

func TestScoreLine(t *testing.T) {
	s := match.New()
	s.HomeTeam.Sets = 2
	s.HomeTeam.Points = 12
	s.AwayTeam.Points = 9
	if got, want := scoreLine(s), "Home 2 (12) - (9) 0 Away"; got != want {
		t.Errorf("scoreLine() = %q, want %q", got, want)
	}
}

// execute runs the root command against a config that points at a temp database
func execute(t *testing.T, configPath string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", configPath}, args...))
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestMatchCommands(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "rallyscore.toml")
	content := fmt.Sprintf("[general]\nlog_level = \"error\"\n\n[store]\npath = %q\n", filepath.Join(dir, "matches.db"))
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	id := strings.TrimSpace(execute(t, configPath, "match", "new", "--home", "Sharks", "--away", "Eagles"))
	if id == "" {
		t.Fatal("match new printed no id")
	}

	out := execute(t, configPath, "match", "apply", id, "@1S4", "!2R", "!3E", "!4H5")
	if !strings.Contains(out, "#1 point Home") {
		t.Errorf("apply output = %q", out)
	}

	out = execute(t, configPath, "match", "show", id)
	for _, want := range []string{"Sharks", "Eagles", "Home 0 (1) - (0) 0 Away"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}

	out = execute(t, configPath, "match", "history", id)
	if !strings.Contains(out, "@1S4 !2R !3E !4H5") {
		t.Errorf("history output = %q", out)
	}

	out = execute(t, configPath, "match", "undo", id)
	if !strings.Contains(out, "Home 0 (0) - (0) 0 Away") {
		t.Errorf("undo output = %q", out)
	}

	out = execute(t, configPath, "match", "list", "--json")
	var listed []map[string]interface{}
	if err := json.Unmarshal([]byte(out), &listed); err != nil {
		t.Fatalf("list --json: %v\n%s", err, out)
	}
	if len(listed) != 1 || listed[0]["id"] != id {
		t.Errorf("listed = %v", listed)
	}
	matchJSON = false

	execute(t, configPath, "match", "delete", id)
}
