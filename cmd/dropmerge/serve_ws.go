package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/drop-merge/internal/config"
	"github.com/vovakirdan/drop-merge/internal/games/dropmerge"
	"github.com/vovakirdan/drop-merge/internal/registry"
	"github.com/vovakirdan/drop-merge/internal/transport/ws"
)

var (
	flagWSAddr    string
	flagWSVariant string
)

var serveWSCmd = &cobra.Command{
	Use:   "serve-ws",
	Short: "Start the WebSocket server",
	Long: `Serve one variant over WebSocket at /ws?player=<name>.

Clients send {"type":"drop","col":n}, {"type":"undo"} and {"type":"restart"}.
The server answers with state, frame, combo and error messages; frames of a
turn are paced like the terminal game. Top scores are at GET /scores.

Examples:
  dropmerge serve-ws
  dropmerge serve-ws --addr :9000 --variant dropmerge_tall
  dropmerge serve-ws --difficulty hard --db ./scores.db`,
	Run: runServeWS,
}

func init() {
	serveWSCmd.Flags().StringVar(&flagWSAddr, "addr", ":8080", "HTTP listen address (host:port)")
	serveWSCmd.Flags().StringVar(&flagWSVariant, "variant", dropmerge.VariantClassic, "Variant served to every client")
	serveWSCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
	serveWSCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard")
}

func runServeWS(_ *cobra.Command, _ []string) {
	logger := newLogger(os.Stderr, "dropmerge-ws")

	if !registry.Exists(flagWSVariant) {
		logger.Fatal("unknown variant", "variant", flagWSVariant)
	}

	gameCfg, err := config.Load(flagWSVariant, flagConfig)
	if err != nil {
		logger.Warn("using default config", "variant", flagWSVariant, "err", err)
		gameCfg = config.DefaultFor(flagWSVariant)
	}
	config.ApplyPreset(&gameCfg, config.DifficultyPreset(flagDifficulty))

	store := openStore()
	if store != nil {
		defer store.Close()
	}

	srv := ws.New(ws.Options{
		Variant: flagWSVariant,
		Config:  gameCfg,
		Store:   store,
		Logger:  logger,
		Seed:    flagSeed,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Starting drop-merge WebSocket server on %s\n", flagWSAddr)
	if err := srv.ListenAndServe(ctx, flagWSAddr); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}
