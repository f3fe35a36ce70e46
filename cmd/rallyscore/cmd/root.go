package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/msto63/rallyscore/internal/volley/service"
	"github.com/msto63/rallyscore/internal/volley/store"
	"github.com/msto63/rallyscore/pkg/core/cache"
	"github.com/msto63/rallyscore/pkg/core/config"
	"github.com/msto63/rallyscore/pkg/core/logging"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "rallyscore",
	Short: "rallyscore - volleyball rally scorekeeper",
	Long: `rallyscore turns typed rally notation into scores.

A rally is a space separated list of actions, e.g. "@1S4 !2R !3E !4H5".
Each action names a team prefix (@ away, ! home by default), a player
number and an action code (S serve, R receive, P pass, E set, H hit,
B block, F freeball) with optional modifiers.

Commands:
  parse    - show the actions of a rally
  score    - resolve a rally against a match state
  board    - interactive terminal scoreboard
  match    - stored matches and their rally history
  serve    - gRPC and HTTP/WebSocket server`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./configs/rallyscore.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig reads --config or falls back to the environment lookup
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}
	return config.LoadFromEnv()
}

// newLogger builds a logger from the general config section
func newLogger(cfg *config.Config, name string) *logging.Logger {
	level := cfg.General.LogLevel
	if verbose {
		level = "debug"
	}
	return logging.NewLogger(logging.LoggerConfig{
		ServiceName: name,
		Level:       level,
		Format:      cfg.General.LogFormat,
		Output:      os.Stderr,
	})
}

// openService opens the match store and the session service on top of it
func openService(cfg *config.Config, logger *logging.Logger) (*service.Service, *store.SQLiteMatchStore, error) {
	notation, err := cfg.NotationConfig()
	if err != nil {
		return nil, nil, err
	}

	st, err := store.NewSQLiteMatchStore(store.SQLiteConfig{Path: cfg.Store.Path})
	if err != nil {
		return nil, nil, err
	}

	svc, err := service.NewService(st, service.Config{
		Notation: notation,
		Logger:   logger,
		Cache:    cache.Config{MaxItems: cfg.Store.CacheSize, TTL: cfg.Store.CacheTTL.Duration},
	})
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	return svc, st, nil
}

// rallyArg joins the positional arguments into one rally
func rallyArg(args []string) string {
	return strings.Join(args, " ")
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
}
