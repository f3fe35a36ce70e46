package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/rallyscore/internal/volley/service"
	"github.com/msto63/rallyscore/internal/volley/store"
	"github.com/msto63/rallyscore/pkg/core/config"
)

var (
	matchName  string
	matchAway  string
	matchHome  string
	matchLimit int
	matchJSON  bool
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Manage stored matches",
	Long: `Creates stored matches, applies rallies to them and browses their history.

Examples:
  rallyscore match new --home Sharks --away Eagles
  rallyscore match apply <id> "@1S4 !2R !3E !4H5"
  rallyscore match history <id>
  rallyscore match undo <id>`,
}

var matchNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a match",
	Args:  cobra.NoArgs,
	RunE: withService(func(ctx context.Context, w io.Writer, svc *service.Service, args []string) error {
		m, err := svc.NewMatch(ctx, service.NewMatchRequest{Name: matchName, AwayName: matchAway, HomeName: matchHome})
		if err != nil {
			return err
		}
		fmt.Fprintln(w, m.ID)
		return nil
	}),
}

var matchListCmd = &cobra.Command{
	Use:   "list",
	Short: "List matches, most recently updated first",
	Args:  cobra.NoArgs,
	RunE: withService(func(ctx context.Context, w io.Writer, svc *service.Service, args []string) error {
		matches, err := svc.List(ctx, matchLimit, 0)
		if err != nil {
			return err
		}
		if matchJSON {
			return printJSON(w, matches)
		}
		if len(matches) == 0 {
			fmt.Fprintln(w, "No matches")
			return nil
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tHOME\tAWAY\tSCORE\tRALLIES\tUPDATED")
		for _, m := range matches {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d-%d\t%d\t%s\n",
				m.ID, m.Name, m.HomeName, m.AwayName,
				m.State.HomeTeam.Sets, m.State.AwayTeam.Sets,
				m.Rallies, m.UpdatedAt.Local().Format(time.DateTime))
		}
		return tw.Flush()
	}),
}

var matchShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a match and its current score",
	Args:  cobra.ExactArgs(1),
	RunE: withService(func(ctx context.Context, w io.Writer, svc *service.Service, args []string) error {
		m, err := svc.Get(ctx, args[0])
		if err != nil {
			return err
		}
		if matchJSON {
			return printJSON(w, m)
		}
		printMatch(w, m)
		return nil
	}),
}

var matchApplyCmd = &cobra.Command{
	Use:   "apply <id> <rally>",
	Short: "Score a rally in a match",
	Args:  cobra.MinimumNArgs(2),
	RunE: withService(func(ctx context.Context, w io.Writer, svc *service.Service, args []string) error {
		out, err := svc.Apply(ctx, args[0], rallyArg(args[1:]))
		if err != nil {
			return err
		}
		if matchJSON {
			return printJSON(w, out)
		}
		fmt.Fprintf(w, "#%d point %s\n", out.Seq, out.Rally.Who.PointTo)
		fmt.Fprintln(w, scoreLine(out.State))
		return nil
	}),
}

var matchHistoryCmd = &cobra.Command{
	Use:   "history <id>",
	Short: "List the rallies of a match",
	Args:  cobra.ExactArgs(1),
	RunE: withService(func(ctx context.Context, w io.Writer, svc *service.Service, args []string) error {
		rallies, err := svc.History(ctx, args[0])
		if err != nil {
			return err
		}
		if matchJSON {
			return printJSON(w, rallies)
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "#\tPOINT\tSCORE\tRALLY")
		for _, r := range rallies {
			fmt.Fprintf(tw, "%d\t%s\t%d-%d\t%s\n", r.Seq, r.PointTo,
				r.State.HomeTeam.Points, r.State.AwayTeam.Points, r.Notation)
		}
		return tw.Flush()
	}),
}

var matchUndoCmd = &cobra.Command{
	Use:   "undo <id>",
	Short: "Remove the last rally of a match",
	Args:  cobra.ExactArgs(1),
	RunE: withService(func(ctx context.Context, w io.Writer, svc *service.Service, args []string) error {
		state, err := svc.Undo(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(w, scoreLine(state))
		return nil
	}),
}

var matchDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a match and its rallies",
	Args:  cobra.ExactArgs(1),
	RunE: withService(func(ctx context.Context, w io.Writer, svc *service.Service, args []string) error {
		if err := svc.Delete(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(w, "Deleted %s\n", args[0])
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(matchCmd)
	matchCmd.AddCommand(matchNewCmd, matchListCmd, matchShowCmd, matchApplyCmd,
		matchHistoryCmd, matchUndoCmd, matchDeleteCmd)

	matchCmd.PersistentFlags().BoolVar(&matchJSON, "json", false, "print JSON")
	matchNewCmd.Flags().StringVar(&matchName, "name", "", "match name")
	matchNewCmd.Flags().StringVar(&matchAway, "away", "", "away team name")
	matchNewCmd.Flags().StringVar(&matchHome, "home", "", "home team name")
	matchListCmd.Flags().IntVar(&matchLimit, "limit", 20, "maximum number of matches")
}

type serviceFunc func(ctx context.Context, w io.Writer, svc *service.Service, args []string) error

// withService opens the store for the duration of one subcommand
func withService(fn serviceFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runWithService(cmd.Context(), cfg, cmd.OutOrStdout(), args, fn)
	}
}

func runWithService(ctx context.Context, cfg *config.Config, w io.Writer, args []string, fn serviceFunc) error {
	if ctx == nil {
		ctx = context.Background()
	}
	svc, st, err := openService(cfg, newLogger(cfg, "rallyscore-cli"))
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(ctx, w, svc, args)
}

func printMatch(w io.Writer, m *store.Match) {
	if m.Name != "" {
		fmt.Fprintf(w, "%s\n", m.Name)
	}
	fmt.Fprintf(w, "ID:       %s\n", m.ID)
	fmt.Fprintf(w, "Home:     %s\n", teamName(m.HomeName, "Home"))
	fmt.Fprintf(w, "Away:     %s\n", teamName(m.AwayName, "Away"))
	fmt.Fprintf(w, "Rallies:  %d\n", m.Rallies)
	fmt.Fprintf(w, "Set:      %d\n", m.State.SetNumber())
	fmt.Fprintf(w, "Score:    %s\n", scoreLine(m.State))
}

func teamName(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
