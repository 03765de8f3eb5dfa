package session

import (
	"encoding/json"
	"fmt"

	"github.com/vovakirdan/drop-merge/internal/engine"
)

// savedState is the persisted shape of a Session. Pointer fields tell a
// missing key apart from a zero value.
type savedState struct {
	Blocks        []engine.Block `json:"blocks"`
	Score         *int           `json:"score,omitempty"`
	NextValue     *int           `json:"nextValue,omitempty"`
	Phase         Phase          `json:"phase,omitempty"`
	UndoAllowance *int           `json:"undoAllowance,omitempty"`
	UndoSnapshot  *UndoSnapshot  `json:"undoSnapshot,omitempty"`
	IsNewGame     bool           `json:"isNewGame,omitempty"`
}

// Marshal encodes the resumable part of a session. The high score is
// persisted separately.
func Marshal(s Session) ([]byte, error) {
	blocks := s.Grid.Blocks
	if blocks == nil {
		blocks = []engine.Block{}
	}
	score, next, allowance := s.Score, s.NextValue, s.UndoAllowance
	return json.Marshal(savedState{
		Blocks:        blocks,
		Score:         &score,
		NextValue:     &next,
		Phase:         s.Phase,
		UndoAllowance: &allowance,
		UndoSnapshot:  s.Undo,
		IsNewGame:     s.IsNewGame,
	})
}

// Unmarshal decodes a saved session for the given rules.
// Missing fields fall back to new-game defaults; unparsable data or blocks
// that break the grid invariants are an error.
func Unmarshal(data []byte, highScore int, env Env) (Session, error) {
	var saved savedState
	if err := json.Unmarshal(data, &saved); err != nil {
		return Session{}, fmt.Errorf("session: cannot decode saved state: %w", err)
	}

	grid := engine.NewGrid(env.Rules.Dims, saved.Blocks...)
	if err := grid.Validate(); err != nil {
		return Session{}, fmt.Errorf("session: invalid saved grid: %w", err)
	}

	s := Session{
		Grid:          grid,
		HighScore:     highScore,
		UndoAllowance: env.Rules.UndoAllowance,
		Phase:         PhasePlaying,
		IsNewGame:     saved.IsNewGame,
	}
	if saved.Score != nil && *saved.Score >= 0 {
		s.Score = *saved.Score
	}
	if saved.NextValue != nil && engine.IsPowerOfTwo(*saved.NextValue) {
		s.NextValue = *saved.NextValue
	} else {
		s.NextValue = env.nextValue()
	}
	if saved.Phase == PhaseGameOver {
		s.Phase = PhaseGameOver
	}
	if saved.UndoAllowance != nil && *saved.UndoAllowance >= 0 {
		s.UndoAllowance = *saved.UndoAllowance
	}
	if saved.UndoSnapshot != nil {
		snap := engine.NewGrid(env.Rules.Dims, saved.UndoSnapshot.Blocks...)
		if snap.Validate() == nil {
			s.Undo = &UndoSnapshot{Blocks: snap.Blocks, Score: max(saved.UndoSnapshot.Score, 0)}
		}
	}
	s.HighScore = max(s.HighScore, s.Score)

	return s, nil
}
