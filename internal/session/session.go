// Package session holds the state of one drop-merge game between turns:
// score, high score, the single-use undo slot, the next value and the phase.
// Every operation returns a new Session; the one passed in is left as is.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/drop-merge/internal/engine"
)

// Phase is the coarse game phase.
type Phase string

const (
	PhasePlaying  Phase = "playing"
	PhaseGameOver Phase = "gameover"
)

var (
	ErrGameOver = errors.New("session: game is over")
	ErrNoUndo   = errors.New("session: nothing to undo")
)

// DefaultUndoAllowance is the number of undos granted to a new game.
const DefaultUndoAllowance = 1

// DefaultValues is the set next values are drawn from.
var DefaultValues = []int{2, 4, 8}

// Rules is the static configuration of a game variant.
type Rules struct {
	Dims          engine.Dims
	Values        []int
	UndoAllowance int
	MaxCycles     int
}

// DefaultRules returns the classic 5x8 rules.
func DefaultRules() Rules {
	return Rules{
		Dims:          engine.DefaultDims(),
		Values:        append([]int(nil), DefaultValues...),
		UndoAllowance: DefaultUndoAllowance,
		MaxCycles:     engine.DefaultMaxCycles,
	}
}

// Validate checks that the rules describe a playable game.
func (r Rules) Validate() error {
	if r.Dims.Width <= 0 || r.Dims.Height <= 0 {
		return fmt.Errorf("session: invalid grid size %dx%d", r.Dims.Width, r.Dims.Height)
	}
	if len(r.Values) == 0 {
		return errors.New("session: empty value set")
	}
	for _, v := range r.Values {
		if !engine.IsPowerOfTwo(v) {
			return fmt.Errorf("session: value %d is not a power of two", v)
		}
	}
	if r.UndoAllowance < 0 {
		return fmt.Errorf("session: negative undo allowance %d", r.UndoAllowance)
	}
	return nil
}

// Env bundles the rules with the injectable sources a session needs.
type Env struct {
	Rules  Rules
	Values ValueSource
	IDs    engine.IDSource
}

// NewEnv creates an Env with a seeded random value source and UUID ids.
func NewEnv(rules Rules, seed int64) Env {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return Env{
		Rules:  rules,
		Values: NewRandomSource(seed),
		IDs:    engine.UUIDSource{},
	}
}

func (e Env) nextValue() int {
	if e.Values == nil || len(e.Rules.Values) == 0 {
		return DefaultValues[0]
	}
	return e.Values.Next(e.Rules.Values)
}

func (e Env) turnOptions() engine.TurnOptions {
	return engine.TurnOptions{MaxCycles: e.Rules.MaxCycles, IDs: e.IDs}
}

// UndoSnapshot is the pre-drop state restored by Undo.
type UndoSnapshot struct {
	Blocks []engine.Block `json:"blocks"`
	Score  int            `json:"score"`
}

// Session is the full between-turns game state.
type Session struct {
	Grid          engine.Grid
	Score         int
	HighScore     int
	NextValue     int
	Undo          *UndoSnapshot
	UndoAllowance int
	Phase         Phase
	IsNewGame     bool
}

// NewGame starts an empty game, keeping the given high score.
func NewGame(highScore int, env Env) Session {
	return Session{
		Grid:          engine.NewGrid(env.Rules.Dims),
		HighScore:     highScore,
		NextValue:     env.nextValue(),
		UndoAllowance: env.Rules.UndoAllowance,
		Phase:         PhasePlaying,
		IsNewGame:     true,
	}
}

// Clone returns a deep copy of the session.
func (s Session) Clone() Session {
	out := s
	out.Grid = s.Grid.Clone()
	if s.Undo != nil {
		snap := UndoSnapshot{
			Blocks: append([]engine.Block(nil), s.Undo.Blocks...),
			Score:  s.Undo.Score,
		}
		out.Undo = &snap
	}
	return out
}

// GameOver reports whether the session has ended.
func (s Session) GameOver() bool {
	return s.Phase == PhaseGameOver
}

// CanUndo reports whether Undo would succeed.
func (s Session) CanUndo() bool {
	return s.Phase == PhasePlaying && s.Undo != nil && s.UndoAllowance > 0
}

// ApplyDrop drops NextValue into col and resolves the turn.
// A rejected drop returns the input session and a wrapped engine or session error.
func ApplyDrop(s Session, col int, env Env) (Session, engine.TurnOutcome, error) {
	if s.Phase == PhaseGameOver {
		return s, engine.TurnOutcome{}, ErrGameOver
	}

	out, err := engine.RunTurn(s.Grid, s.NextValue, col, env.turnOptions())
	if err != nil {
		return s, engine.TurnOutcome{}, fmt.Errorf("session: drop rejected: %w", err)
	}

	next := s.Clone()
	next.Undo = &UndoSnapshot{
		Blocks: append([]engine.Block(nil), s.Grid.Blocks...),
		Score:  s.Score,
	}
	if next.IsNewGame {
		next.UndoAllowance = env.Rules.UndoAllowance
		next.IsNewGame = false
	}

	next.Grid = out.Final
	next.Score += out.ScoreDelta
	next.HighScore = max(next.HighScore, next.Score)

	if out.GameOver || engine.IsLocked(out.Final) {
		next.Phase = PhaseGameOver
	} else {
		next.Phase = PhasePlaying
	}
	next.NextValue = env.nextValue()

	return next, out, nil
}

// Undo restores the pre-drop grid and score of the last turn.
// The high score is not lowered and the next value is kept.
func Undo(s Session) (Session, error) {
	if s.Phase == PhaseGameOver {
		return s, ErrGameOver
	}
	if s.Undo == nil || s.UndoAllowance <= 0 {
		return s, ErrNoUndo
	}

	next := s.Clone()
	next.Grid = engine.NewGrid(s.Grid.Dims, s.Undo.Blocks...)
	next.Score = s.Undo.Score
	next.Undo = nil
	next.UndoAllowance--
	return next, nil
}

// Restart abandons the current game and starts a new one, keeping the high score.
func Restart(s Session, env Env) Session {
	return NewGame(max(s.HighScore, s.Score), env)
}
