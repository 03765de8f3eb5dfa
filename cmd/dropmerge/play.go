package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/drop-merge/internal/core"
	"github.com/vovakirdan/drop-merge/internal/games/dropmerge"
	"github.com/vovakirdan/drop-merge/internal/platform/tui"
	"github.com/vovakirdan/drop-merge/internal/registry"
	"github.com/vovakirdan/drop-merge/internal/storage"
)

var (
	flagConfig     string
	flagDifficulty string
	flagLogFile    string
	flagNewGame    bool
)

var playCmd = &cobra.Command{
	Use:   "play [variant]",
	Short: "Play a variant",
	Long: `Start playing the specified variant, resuming the saved game if any.

Controls:
  Left/Right, h/l  - Move the drop cursor
  Space/Enter/Down - Drop at the cursor
  1-9              - Drop straight into that column
  U                - Undo the last drop (once per game by default)
  R                - Restart
  P                - Pause
  Esc/B, Q         - Save and quit

Difficulty options:
  easy   - Three undos per game
  normal - Configured undo allowance
  hard   - No undo, 16s join the next values

Examples:
  dropmerge play
  dropmerge play dropmerge_tall
  dropmerge play --difficulty hard
  dropmerge play --config ./my-board.yaml
  dropmerge play --new --log ./dropmerge.log`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func init() {
	for _, cmd := range []*cobra.Command{playCmd, menuCmd} {
		cmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
		cmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard")
		cmd.Flags().StringVar(&flagLogFile, "log", "", "Write game logs to this file")
	}
	playCmd.Flags().BoolVar(&flagNewGame, "new", false, "Discard the saved game and start fresh")
}

// terminalConfig builds the runtime config from the terminal size and flags.
func terminalConfig() core.RuntimeConfig {
	width, height := 80, 24 // Defaults
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}
	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}
}

func openStore() *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
		// Continue without storage - game still works
		return nil
	}
	return store
}

func runPlay(_ *cobra.Command, args []string) {
	variantID := dropmerge.VariantClassic
	if len(args) == 1 {
		variantID = args[0]
	}

	if !registry.Exists(variantID) {
		fmt.Fprintf(os.Stderr, "Error: unknown variant %q\n", variantID)
		fmt.Fprintln(os.Stderr, "Run 'dropmerge list' to see available variants.")
		os.Exit(1)
	}

	dropmerge.SetConfigPath(flagConfig)
	dropmerge.SetDifficultyPreset(flagDifficulty)
	logger, closeLog := gameLogger(flagLogFile)
	defer closeLog()

	game, err := registry.Create(variantID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
		os.Exit(1)
	}

	store := openStore()
	if store != nil && flagNewGame {
		if err := store.DeleteSession(variantID, storage.LocalPlayer); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	runErr := tui.Run(game, store, terminalConfig(), logger)

	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
		os.Exit(1)
	}
}
