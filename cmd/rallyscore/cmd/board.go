package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/msto63/rallyscore/internal/tui/scoreboard"
	"github.com/msto63/rallyscore/internal/volley/service"
	"github.com/msto63/rallyscore/pkg/core/logging"
)

var (
	boardMatchID string
	boardSave    bool
	boardName    string
	boardAway    string
	boardHome    string
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Interactive terminal scoreboard",
	Long: `Opens the scoreboard. Type a rally and press enter to score it.

Without flags the match lives in memory only. --save stores a new match in
the database, --match continues a stored match.

Examples:
  rallyscore board
  rallyscore board --save --name "League final" --home Sharks --away Eagles
  rallyscore board --match 0b6f4c1e-...`,
	Args: cobra.NoArgs,
	RunE: runBoard,
}

func init() {
	rootCmd.AddCommand(boardCmd)
	boardCmd.Flags().StringVar(&boardMatchID, "match", "", "continue a stored match")
	boardCmd.Flags().BoolVar(&boardSave, "save", false, "store the match in the database")
	boardCmd.Flags().StringVar(&boardName, "name", "", "match name")
	boardCmd.Flags().StringVar(&boardAway, "away", "", "away team name")
	boardCmd.Flags().StringVar(&boardHome, "home", "", "home team name")
}

func runBoard(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	boardCfg := scoreboard.Config{
		Title:    cfg.General.Name,
		AwayName: boardAway,
		HomeName: boardHome,
	}

	var scorer scoreboard.Scorer
	if boardMatchID == "" && !boardSave {
		prefixes, err := cfg.NotationConfig()
		if err != nil {
			return err
		}
		scorer = scoreboard.NewLocalScorer(prefixes)
	} else {
		// The board owns the terminal; only errors may be logged.
		logger := newLogger(cfg, "rallyscore-board").WithLevel(logging.LevelError)
		svc, st, err := openService(cfg, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := context.Background()
		id := boardMatchID
		if id == "" {
			m, err := svc.NewMatch(ctx, service.NewMatchRequest{Name: boardName, AwayName: boardAway, HomeName: boardHome})
			if err != nil {
				return err
			}
			id = m.ID
		}
		m, err := svc.Get(ctx, id)
		if err != nil {
			return err
		}
		boardCfg.AwayName = m.AwayName
		boardCfg.HomeName = m.HomeName
		if m.Name != "" {
			boardCfg.Title = m.Name
		}
		scorer = scoreboard.NewSessionScorer(svc, id)
		defer fmt.Fprintf(cmd.OutOrStdout(), "Match %s saved\n", id)
	}

	p := tea.NewProgram(scoreboard.New(scorer, boardCfg), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		printError("scoreboard failed", err)
		return err
	}
	return nil
}
