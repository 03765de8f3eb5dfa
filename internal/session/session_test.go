package session

import (
	"errors"
	"testing"

	"github.com/vovakirdan/drop-merge/internal/engine"
)

func testEnv(values ...int) Env {
	if len(values) == 0 {
		values = []int{2}
	}
	return Env{
		Rules:  DefaultRules(),
		Values: &SequenceSource{Values: values},
		IDs:    &engine.SequenceIDs{Prefix: "s"},
	}
}

func TestNewGame(t *testing.T) {
	env := testEnv(4)
	s := NewGame(120, env)

	if s.Grid.Len() != 0 {
		t.Errorf("new game has %d blocks", s.Grid.Len())
	}
	if s.Score != 0 || s.HighScore != 120 {
		t.Errorf("Score = %d, HighScore = %d, want 0 and 120", s.Score, s.HighScore)
	}
	if s.NextValue != 4 {
		t.Errorf("NextValue = %d, want 4", s.NextValue)
	}
	if s.Phase != PhasePlaying || !s.IsNewGame {
		t.Errorf("Phase = %s, IsNewGame = %v", s.Phase, s.IsNewGame)
	}
	if s.UndoAllowance != DefaultUndoAllowance || s.Undo != nil {
		t.Errorf("UndoAllowance = %d, Undo = %v", s.UndoAllowance, s.Undo)
	}
	if s.CanUndo() {
		t.Error("CanUndo should be false before the first drop")
	}
}

func TestApplyDropScoresAndDrawsNext(t *testing.T) {
	env := testEnv(2, 2, 8)
	s := NewGame(0, env) // next = 2

	s, out, err := ApplyDrop(s, 0, env) // next = 2
	if err != nil {
		t.Fatalf("first drop: %v", err)
	}
	if out.ScoreDelta != 0 || s.Score != 0 {
		t.Errorf("first drop scored %d", out.ScoreDelta)
	}
	if s.NextValue != 2 {
		t.Errorf("NextValue = %d, want 2", s.NextValue)
	}
	if s.IsNewGame {
		t.Error("IsNewGame should be cleared by the first drop")
	}

	s, out, err = ApplyDrop(s, 0, env)
	if err != nil {
		t.Fatalf("second drop: %v", err)
	}
	if out.ScoreDelta != 4 || s.Score != 4 || s.HighScore != 4 {
		t.Errorf("Score = %d, HighScore = %d, want 4 and 4", s.Score, s.HighScore)
	}
	if s.NextValue != 8 {
		t.Errorf("NextValue = %d, want 8", s.NextValue)
	}
	if b, ok := s.Grid.At(7, 0); !ok || b.Value != 4 {
		t.Errorf("expected merged 4 at (7, 0), got %+v", b)
	}
}

func TestApplyDropRejected(t *testing.T) {
	env := testEnv()
	s := NewGame(0, env)

	got, _, err := ApplyDrop(s, env.Rules.Dims.Width, env)
	if !errors.Is(err, engine.ErrColumnOutOfRange) {
		t.Fatalf("error = %v, want ErrColumnOutOfRange", err)
	}
	if got.Undo != nil || !got.IsNewGame || got.Grid.Len() != 0 {
		t.Error("rejected drop changed the session")
	}
}

func TestApplyDropKeepsInput(t *testing.T) {
	env := testEnv()
	s := NewGame(0, env)
	s, _, _ = ApplyDrop(s, 1, env)

	before := s.Grid.Len()
	_, _, err := ApplyDrop(s, 3, env)
	if err != nil {
		t.Fatalf("ApplyDrop: %v", err)
	}
	if s.Grid.Len() != before {
		t.Errorf("input session grid changed: %d -> %d blocks", before, s.Grid.Len())
	}
}

func TestApplyDropHighScoreNeverDrops(t *testing.T) {
	env := testEnv()
	s := NewGame(1000, env)
	s, _, _ = ApplyDrop(s, 0, env)
	s, _, _ = ApplyDrop(s, 0, env)

	if s.Score != 4 {
		t.Fatalf("Score = %d, want 4", s.Score)
	}
	if s.HighScore != 1000 {
		t.Errorf("HighScore = %d, want 1000", s.HighScore)
	}
}

func TestUndo(t *testing.T) {
	env := testEnv()
	s := NewGame(0, env)
	s, _, _ = ApplyDrop(s, 0, env)
	s, _, _ = ApplyDrop(s, 0, env) // merges into 4, score 4

	if !s.CanUndo() {
		t.Fatal("CanUndo should be true after a drop")
	}
	next := s.NextValue

	undone, err := Undo(s)
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if undone.Score != 0 {
		t.Errorf("Score after undo = %d, want 0", undone.Score)
	}
	if undone.HighScore != 4 {
		t.Errorf("HighScore after undo = %d, want 4", undone.HighScore)
	}
	if b, ok := undone.Grid.At(7, 0); !ok || b.Value != 2 || undone.Grid.Len() != 1 {
		t.Errorf("grid after undo = %+v", undone.Grid.Blocks)
	}
	if undone.NextValue != next {
		t.Errorf("NextValue after undo = %d, want %d", undone.NextValue, next)
	}
	if undone.UndoAllowance != 0 || undone.Undo != nil {
		t.Errorf("UndoAllowance = %d, Undo = %v", undone.UndoAllowance, undone.Undo)
	}

	if _, err := Undo(undone); !errors.Is(err, ErrNoUndo) {
		t.Errorf("second Undo error = %v, want ErrNoUndo", err)
	}
}

func TestUndoAllowanceSpent(t *testing.T) {
	env := testEnv()
	s := NewGame(0, env)
	s, _, _ = ApplyDrop(s, 0, env)
	s, _ = Undo(s)
	s, _, _ = ApplyDrop(s, 1, env)

	if s.Undo == nil {
		t.Fatal("drop should store a snapshot")
	}
	if _, err := Undo(s); !errors.Is(err, ErrNoUndo) {
		t.Errorf("Undo with no allowance = %v, want ErrNoUndo", err)
	}
}

func TestFirstDropResetsAllowance(t *testing.T) {
	env := testEnv()
	s := NewGame(0, env)
	s.UndoAllowance = 0 // e.g. restored from a stale save

	s, _, err := ApplyDrop(s, 0, env)
	if err != nil {
		t.Fatalf("ApplyDrop: %v", err)
	}
	if s.UndoAllowance != env.Rules.UndoAllowance {
		t.Errorf("UndoAllowance = %d, want %d", s.UndoAllowance, env.Rules.UndoAllowance)
	}
}

func TestGameOverWhenGridLocks(t *testing.T) {
	env := Env{
		Rules: Rules{
			Dims:          engine.Dims{Width: 1, Height: 2},
			Values:        []int{2, 4},
			UndoAllowance: 1,
			MaxCycles:     engine.DefaultMaxCycles,
		},
		Values: &SequenceSource{Values: []int{2, 4, 8}},
		IDs:    &engine.SequenceIDs{},
	}
	s := NewGame(0, env) // next = 2

	s, _, err := ApplyDrop(s, 0, env)
	if err != nil || s.GameOver() {
		t.Fatalf("first drop: err = %v, phase = %s", err, s.Phase)
	}
	s, out, err := ApplyDrop(s, 0, env)
	if err != nil {
		t.Fatalf("second drop: %v", err)
	}
	if out.GameOver {
		t.Error("no block should be above the ceiling")
	}
	if !s.GameOver() {
		t.Fatal("locked grid should end the game")
	}

	if _, _, err := ApplyDrop(s, 0, env); !errors.Is(err, ErrGameOver) {
		t.Errorf("drop after game over = %v, want ErrGameOver", err)
	}
	if _, err := Undo(s); !errors.Is(err, ErrGameOver) {
		t.Errorf("undo after game over = %v, want ErrGameOver", err)
	}
	if s.CanUndo() {
		t.Error("CanUndo should be false after game over")
	}
}

func TestRestart(t *testing.T) {
	env := testEnv()
	s := NewGame(2, env)
	s, _, _ = ApplyDrop(s, 0, env)
	s, _, _ = ApplyDrop(s, 0, env)

	r := Restart(s, env)
	if r.Grid.Len() != 0 || r.Score != 0 {
		t.Errorf("restart kept state: %d blocks, score %d", r.Grid.Len(), r.Score)
	}
	if r.HighScore != 4 {
		t.Errorf("HighScore = %d, want 4", r.HighScore)
	}
	if !r.IsNewGame || r.Undo != nil || r.UndoAllowance != 1 {
		t.Errorf("restart did not reset undo: %+v", r)
	}
}

func TestRulesValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Rules)
		wantErr bool
	}{
		{"defaults", func(*Rules) {}, false},
		{"zero width", func(r *Rules) { r.Dims.Width = 0 }, true},
		{"empty values", func(r *Rules) { r.Values = nil }, true},
		{"odd value", func(r *Rules) { r.Values = []int{2, 3} }, true},
		{"negative undo", func(r *Rules) { r.UndoAllowance = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := DefaultRules()
			tt.mutate(&r)
			if err := r.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRandomSourceStaysInSet(t *testing.T) {
	src := NewRandomSource(42)
	seen := map[int]bool{}
	for range 300 {
		v := src.Next(DefaultValues)
		if v != 2 && v != 4 && v != 8 {
			t.Fatalf("value %d not in set", v)
		}
		seen[v] = true
	}
	if len(seen) != 3 {
		t.Errorf("expected all values to appear, got %v", seen)
	}
}

func TestRandomSourceDeterministic(t *testing.T) {
	a, b := NewRandomSource(7), NewRandomSource(7)
	for i := range 50 {
		if a.Next(DefaultValues) != b.Next(DefaultValues) {
			t.Fatalf("sources with equal seeds diverged at %d", i)
		}
	}
}
