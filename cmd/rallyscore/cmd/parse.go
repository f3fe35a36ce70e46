package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msto63/rallyscore/internal/volley/domain"
	"github.com/msto63/rallyscore/internal/volley/notation"
	"github.com/msto63/rallyscore/internal/volley/scoring"
)

var parseJSON bool

var parseCmd = &cobra.Command{
	Use:   "parse <rally>",
	Short: "Show the actions of a rally and who won it",
	Long: `Parses a rally and prints its actions and the scoring verdict.

Examples:
  rallyscore parse "@1S4 !2R !3E !4H5"
  rallyscore parse --json @7S5`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "print the rally as JSON")
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	prefixes, err := cfg.NotationConfig()
	if err != nil {
		return err
	}

	text := rallyArg(args)
	actions, err := notation.ParseRally(prefixes, text)
	if err != nil {
		return err
	}
	who, err := scoring.Resolve(actions)
	if err != nil {
		return err
	}
	rally := domain.Rally{Actions: actions, Who: who}

	out := cmd.OutOrStdout()
	if parseJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rally)
	}

	for i, a := range actions {
		fmt.Fprintf(out, "%2d  %-5s %-3d %-9s %s\n", i, a.Team, a.Player, a.ActionType.Kind(), a.Notation(prefixes))
	}
	fmt.Fprintf(out, "Point: %s\n", who.PointTo)
	if who.Scored != nil {
		fmt.Fprintf(out, "Scored: %c%d %s\n", prefixes.Prefix(who.Scored.Team), who.Scored.Player, who.Scored.ActionType.Kind())
	}
	if who.Faulted != nil {
		fmt.Fprintf(out, "Fault:  %c%d %s\n", prefixes.Prefix(who.Faulted.Team), who.Faulted.Player, who.Faulted.ActionType.Kind())
	}
	return nil
}
