// dropmerge is a falling-block merge puzzle for the terminal.
//
// Usage:
//
//	dropmerge list              - List board variants
//	dropmerge play [variant]    - Play a variant (default: dropmerge)
//	dropmerge menu              - Pick a variant interactively
//	dropmerge scores <variant>  - Show high scores for a variant
//	dropmerge serve             - Start SSH server for remote play
//	dropmerge serve-ws          - Start WebSocket server
//
// Global flags:
//
//	--fps <rate>    - Set tick rate (default: 30)
//	--seed <value>  - Set RNG seed for reproducible next values
//	--db <path>     - Set database path (default: ~/.dropmerge/scores.db)
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/drop-merge/internal/games/dropmerge"
)

var (
	// Global flags
	flagFPS      int
	flagSeed     int64
	flagDBPath   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dropmerge",
	Short: "Drop Merge - drop numbered blocks and merge equal neighbours",
	Long: `Drop Merge is a falling-block puzzle. Drop 2s, 4s and 8s into a
5x8 board; equal neighbours merge into their sum, chains score combos.

Available commands:
  list      - Show board variants
  play      - Play a variant directly
  menu      - Interactive variant picker
  scores    - View high scores
  serve     - Start SSH server for remote play
  serve-ws  - Start WebSocket server

Examples:
  dropmerge play
  dropmerge play dropmerge_tall --difficulty easy
  dropmerge menu
  dropmerge serve --ssh :2222
  dropmerge serve-ws --addr :8080`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if flagFPS <= 0 {
			return fmt.Errorf("--fps must be positive, got %d", flagFPS)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 30, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.dropmerge/scores.db", "Path to scores database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(serveWSCmd)
}

// newLogger creates a timestamped logger writing to w.
func newLogger(w *os.File, prefix string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	if level, err := log.ParseLevel(flagLogLevel); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warn("unknown log level, using info", "level", flagLogLevel)
	}
	return logger
}

// gameLogger returns a logger for the game while the terminal is owned by the
// UI. Without a log file nothing is logged.
func gameLogger(path string) (*log.Logger, func()) {
	if path == "" {
		return nil, func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: cannot open log file: %v\n", err)
		return nil, func() {}
	}
	logger := newLogger(f, "dropmerge")
	dropmerge.SetLogger(logger)
	return logger, func() { f.Close() }
}
