package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/drop-merge/internal/registry"
	"github.com/vovakirdan/drop-merge/internal/storage"
)

var (
	flagScoresLimit  int
	flagScoresPlayer string
	flagScoresClear  bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores <variant>",
	Short: "Show high scores for a variant",
	Long: `Display the top scores for the specified variant.

Examples:
  dropmerge scores dropmerge
  dropmerge scores dropmerge_tall --limit 20
  dropmerge scores dropmerge --player alice
  dropmerge scores dropmerge --clear`,
	Args: cobra.ExactArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of scores to show")
	scoresCmd.Flags().StringVar(&flagScoresPlayer, "player", storage.LocalPlayer, "Player whose best score is shown (SSH user or WebSocket player)")
	scoresCmd.Flags().BoolVar(&flagScoresClear, "clear", false, "Delete all scores of the variant")
}

func runScores(_ *cobra.Command, args []string) {
	variantID := args[0]

	if !registry.Exists(variantID) {
		fmt.Fprintf(os.Stderr, "Error: unknown variant %q\n", variantID)
		fmt.Fprintln(os.Stderr, "Run 'dropmerge list' to see available variants.")
		os.Exit(1)
	}

	game, err := registry.Create(variantID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
		os.Exit(1)
	}
	title := game.Title()

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening scores database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if flagScoresClear {
		if err := store.ClearScores(variantID); err != nil {
			fmt.Fprintf(os.Stderr, "Error clearing scores: %v\n", err)
			return
		}
		fmt.Printf("Scores for %s cleared.\n", title)
		return
	}

	scores, err := store.TopScores(variantID, flagScoresLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving scores: %v\n", err)
		return
	}

	fmt.Printf("High Scores - %s\n", title)
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'dropmerge play %s' to set the first high score!\n", variantID)
		return
	}

	fmt.Printf("  %-4s  %-12s  %-8s  %-6s  %s\n", "Rank", "Player", "Score", "Tile", "Date")
	fmt.Printf("  %-4s  %-12s  %-8s  %-6s  %s\n", "----", "------", "-----", "----", "----")

	for i, entry := range scores {
		player := entry.Player
		if player == storage.LocalPlayer {
			player = "local"
		}
		fmt.Printf("  %-4d  %-12s  %-8d  %-6d  %s\n",
			i+1, player, entry.Score, entry.MaxTile, entry.CreatedAt.Format("2006-01-02 15:04"))
	}

	fmt.Println()
	if best, err := store.HighScore(variantID, flagScoresPlayer); err == nil {
		fmt.Printf("Best: %d\n", best)
	}
}
