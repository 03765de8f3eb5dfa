package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/drop-merge/internal/config"
	"github.com/vovakirdan/drop-merge/internal/registry"
	"github.com/vovakirdan/drop-merge/internal/storage"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List board variants",
	Long:  `Shows every registered variant with its board size and, when a scores database exists, games played and best score.`,
	Run:   runList,
}

func runList(_ *cobra.Command, _ []string) {
	games := registry.List()

	if len(games) == 0 {
		fmt.Println("No variants available.")
		return
	}

	// Stats are optional
	var stats map[string]*storage.GameStats
	if store, err := storage.Open(flagDBPath); err == nil {
		stats, _ = store.GetAllGamesStats()
		store.Close()
	}

	fmt.Println("Available variants:")
	fmt.Println()

	maxIDLen := 2 // "ID" header
	for _, g := range games {
		maxIDLen = max(maxIDLen, len(g.ID))
	}

	fmt.Printf("  %-*s  %-20s  %-5s  %6s  %6s\n", maxIDLen, "ID", "Title", "Board", "Played", "Best")
	fmt.Printf("  %-*s  %-20s  %-5s  %6s  %6s\n", maxIDLen, "--", "-----", "-----", "------", "----")

	for _, g := range games {
		cfg := config.DefaultFor(g.ID)
		board := fmt.Sprintf("%dx%d", cfg.Grid.Width, cfg.Grid.Height)
		played, best := 0, 0
		if s, ok := stats[g.ID]; ok {
			played, best = s.GamesCount, s.HighScore
		}
		fmt.Printf("  %-*s  %-20s  %-5s  %6d  %6d\n", maxIDLen, g.ID, g.Title, board, played, best)
	}

	fmt.Println()
	fmt.Println("Run 'dropmerge play <id>' to play a variant.")
}
