package dropmerge

import (
	"github.com/vovakirdan/drop-merge/internal/engine"
	"github.com/vovakirdan/drop-merge/internal/session"
)

// StateType is the coarse state shown to the player.
type StateType string

const (
	StatePlaying     StateType = "playing"
	StateProcessing  StateType = "processing"
	StateGameOver    StateType = "game_over"
	StatePaused      StateType = "paused"
	StatePausedSmall StateType = "paused_small_window"
)

// Snapshot captures the game state for determinism tests and replays.
type Snapshot struct {
	Tick          uint64
	Variant       string
	Score         int
	HighScore     int
	NextValue     int
	Cursor        int
	Combo         int
	UndoAllowance int
	Blocks        []engine.Block
	MaxTile       int
	State         StateType
}

// Snapshot returns the current game snapshot.
func (g *Game) Snapshot() Snapshot {
	state := StatePlaying
	switch {
	case g.tooSmall:
		state = StatePausedSmall
	case g.paused:
		state = StatePaused
	case g.processing:
		state = StateProcessing
	case g.sess.Phase == session.PhaseGameOver:
		state = StateGameOver
	}

	return Snapshot{
		Tick:          g.tick,
		Variant:       g.variantID,
		Score:         g.sess.Score,
		HighScore:     g.sess.HighScore,
		NextValue:     g.sess.NextValue,
		Cursor:        g.cursor,
		Combo:         g.combo,
		UndoAllowance: g.sess.UndoAllowance,
		Blocks:        append([]engine.Block(nil), g.sess.Grid.Blocks...),
		MaxTile:       g.sess.Grid.MaxValue(),
		State:         state,
	}
}
