package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/msto63/rallyscore/internal/volley"
	"github.com/msto63/rallyscore/internal/volley/match"
	"github.com/msto63/rallyscore/internal/volley/server"
	coregrpc "github.com/msto63/rallyscore/pkg/core/grpc"
	"github.com/msto63/rallyscore/pkg/core/logging"
)

var (
	scoreStateFile string
	scoreOutput    string
	scoreRemote    string
	scoreWrite     bool
)

var scoreCmd = &cobra.Command{
	Use:   "score <rally>",
	Short: "Resolve a rally against a match state",
	Long: `Resolves a rally and prints the resulting match state.

The state is read from --state (JSON, or YAML for .yaml/.yml files); without
it a new match is assumed. With --write the new state replaces the file, so
a match can be kept in a file rally by rally.

Output formats:
  json - the {"Ok": state} / {"Fail": reason} envelope
  yaml - the state or the failure as YAML
  text - a score line

Examples:
  rallyscore score "@1SA4 !2H0"
  rallyscore score --state match.json --write "!7S5"
  rallyscore score --remote localhost:9300 --output json @1SA4`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.Flags().StringVar(&scoreStateFile, "state", "", "match state file (JSON or YAML)")
	scoreCmd.Flags().StringVarP(&scoreOutput, "output", "o", "text", "output format: text, json, yaml")
	scoreCmd.Flags().StringVar(&scoreRemote, "remote", "", "resolve on a running server (gRPC address)")
	scoreCmd.Flags().BoolVar(&scoreWrite, "write", false, "write the new state back to --state")
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var state *match.MatchState
	if scoreStateFile != "" {
		s, err := readState(scoreStateFile)
		if err != nil {
			return err
		}
		state = &s
	}

	text := rallyArg(args)
	var result volley.Result
	if scoreRemote != "" {
		result, err = resolveRemote(scoreRemote, newLogger(cfg, "rallyscore-cli"), text, state)
		if err != nil {
			return err
		}
	} else {
		prefixes, err := cfg.NotationConfig()
		if err != nil {
			return err
		}
		start := match.New()
		if state != nil {
			start = *state
		}
		result = volley.Resolve(prefixes, text, start)
	}
	if result.Ok == nil && result.Fail == nil {
		return volley.ErrEmptyResult
	}

	if err := writeResult(cmd.OutOrStdout(), scoreOutput, result); err != nil {
		return err
	}

	if result.Fail != nil {
		return result.Fail
	}
	if scoreWrite && scoreStateFile != "" {
		return writeState(scoreStateFile, *result.Ok)
	}
	return nil
}

func resolveRemote(addr string, logger *logging.Logger, text string, state *match.MatchState) (volley.Result, error) {
	clientCfg := coregrpc.DefaultClientConfig(addr)
	clientCfg.Logger = logger
	conn, err := coregrpc.Dial(clientCfg)
	if err != nil {
		return volley.Result{}, err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.NewRallyClient(conn).ResolveRally(ctx, text, state)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// readState loads a match state; an empty file is a new match
func readState(path string) (match.MatchState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && scoreWrite {
			return match.New(), nil
		}
		return match.MatchState{}, fmt.Errorf("failed to read state: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return match.New(), nil
	}

	state := match.New()
	if isYAML(path) {
		err = yaml.Unmarshal(data, &state)
	} else {
		err = json.Unmarshal(data, &state)
	}
	if err != nil {
		return match.MatchState{}, fmt.Errorf("failed to parse state %s: %w", path, err)
	}
	if state.AwayTeam.PlayerStats == nil {
		state.AwayTeam.PlayerStats = match.StatsByPlayer{}
	}
	if state.HomeTeam.PlayerStats == nil {
		state.HomeTeam.PlayerStats = match.StatsByPlayer{}
	}
	return state, nil
}

func writeState(path string, state match.MatchState) error {
	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(state)
	} else {
		data, err = json.MarshalIndent(state, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// failureYAML is the YAML shape of a rejected rally
type failureYAML struct {
	Fail struct {
		Kind     string `yaml:"kind"`
		ErrorMsg string `yaml:"error_msg"`
		Location int    `yaml:"location"`
	} `yaml:"fail"`
}

func writeResult(w io.Writer, format string, result volley.Result) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		return enc.Encode(result)

	case "yaml":
		var v interface{} = result.Ok
		if result.Fail != nil {
			var f failureYAML
			f.Fail.Kind = string(result.Fail.Kind)
			f.Fail.ErrorMsg = result.Fail.ErrorMsg
			f.Fail.Location = result.Fail.Location
			v = f
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()

	case "text":
		if result.Fail != nil {
			_, err := fmt.Fprintf(w, "Rejected at token %d: %s\n", result.Fail.Location+1, result.Fail.ErrorMsg)
			return err
		}
		_, err := fmt.Fprintln(w, scoreLine(*result.Ok))
		return err

	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// scoreLine renders home sets and points against away points and sets
func scoreLine(s match.MatchState) string {
	line := fmt.Sprintf("Home %d (%d) - (%d) %d Away",
		s.HomeTeam.Sets, s.HomeTeam.Points, s.AwayTeam.Points, s.AwayTeam.Sets)
	if s.Finished() {
		line += "  MATCH FINISHED"
	}
	return line
}
