package engine

import (
	"errors"
	"fmt"
)

// DefaultMaxCycles bounds the merge/gravity cycles of one turn.
const DefaultMaxCycles = 10

// Drop rejections. A rejected drop leaves every input untouched.
var (
	ErrColumnOutOfRange = errors.New("engine: column out of range")
	ErrColumnFull       = errors.New("engine: column is full")
	ErrInvalidValue     = errors.New("engine: value is not a positive power of two")
)

// TurnOptions tunes RunTurn.
type TurnOptions struct {
	MaxCycles int      // Cycle cap; DefaultMaxCycles when <= 0
	IDs       IDSource // Id source for dropped and merged blocks; UUIDs when nil
}

// DefaultTurnOptions returns the options used by the classic game.
func DefaultTurnOptions() TurnOptions {
	return TurnOptions{
		MaxCycles: DefaultMaxCycles,
		IDs:       UUIDSource{},
	}
}

// FrameKind tells what produced a frame.
type FrameKind int

const (
	FrameDrop  FrameKind = iota // Dropped block settled
	FrameCycle                  // Merge and/or gravity cycle
)

// String returns a human-readable name for the frame kind.
func (k FrameKind) String() string {
	switch k {
	case FrameDrop:
		return "drop"
	case FrameCycle:
		return "cycle"
	default:
		return "unknown"
	}
}

// Frame is one intermediate grid of a turn, in presentation order.
type Frame struct {
	Kind   FrameKind `json:"kind"`
	Grid   Grid      `json:"grid"`
	Diff   Diff      `json:"diff"`
	Gained int       `json:"gained"` // Raw merge value of this cycle
	Scored int       `json:"scored"` // Gained multiplied by Combo
	Combo  int       `json:"combo"`  // Combo level of this cycle, 0 without merges
}

// ComboEvent is raised once for every combo level >= 2 reached in a turn.
type ComboEvent struct {
	Level  int `json:"level"`
	Scored int `json:"scored"`
}

// TurnOutcome is everything a host needs to present and apply a turn.
type TurnOutcome struct {
	Dropped    Block        `json:"dropped"`
	Frames     []Frame      `json:"frames"`
	ScoreDelta int          `json:"score_delta"`
	PeakCombo  int          `json:"peak_combo"` // Highest level at which a merge happened
	Combos     []ComboEvent `json:"combos,omitempty"`
	Final      Grid         `json:"final"`
	GameOver   bool         `json:"game_over"`
	Cycles     int          `json:"cycles"`
	// Truncated is set when the cycle cap stopped resolution while merges
	// were still possible.
	Truncated bool `json:"truncated"`
}

// CanDrop checks whether a block may be dropped into col.
func CanDrop(g Grid, col int) error {
	if col < 0 || col >= g.Dims.Width {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrColumnOutOfRange, col, g.Dims.Width)
	}
	if g.ColumnCount(col) >= g.Dims.Height {
		return fmt.Errorf("%w: column %d", ErrColumnFull, col)
	}
	return nil
}

// RunTurn drops a block of the given value into col and resolves the grid
// until it settles or the cycle cap is reached.
func RunTurn(g Grid, value, col int, opts TurnOptions) (TurnOutcome, error) {
	if !IsPowerOfTwo(value) {
		return TurnOutcome{}, fmt.Errorf("%w: %d", ErrInvalidValue, value)
	}
	if err := CanDrop(g, col); err != nil {
		return TurnOutcome{}, err
	}

	maxCycles := opts.MaxCycles
	if maxCycles <= 0 {
		maxCycles = DefaultMaxCycles
	}
	ids := opts.IDs
	if ids == nil {
		ids = UUIDSource{}
	}

	dropped := Block{ID: ids.NextID(), Value: value, Row: -1, Col: col}
	withDrop := g.Clone()
	withDrop.Blocks = append(withDrop.Blocks, dropped)

	current, _ := ResolveGravity(withDrop)
	out := TurnOutcome{
		Frames: []Frame{{
			Kind: FrameDrop,
			Grid: current,
			Diff: DiffGrids(g, current),
		}},
	}
	for _, b := range current.Blocks {
		if b.ID == dropped.ID {
			out.Dropped = b
			break
		}
	}

	combo := 1
	settled := false
	for out.Cycles < maxCycles {
		mr := ResolveMerges(current, ids)

		frame := Frame{Kind: FrameCycle}
		if mr.Merged {
			frame.Gained = mr.Gained
			frame.Scored = mr.Gained * combo
			frame.Combo = combo
			out.ScoreDelta += frame.Scored
			out.PeakCombo = combo
			if combo >= 2 {
				out.Combos = append(out.Combos, ComboEvent{Level: combo, Scored: frame.Scored})
			}
			combo++
		}

		next, moved := ResolveGravity(mr.Grid)
		if mr.Merged || moved {
			frame.Grid = next
			frame.Diff = DiffGrids(current, next)
			out.Frames = append(out.Frames, frame)
		}
		current = next

		if !mr.Merged && !moved {
			settled = true
			break
		}
		out.Cycles++
	}

	out.Final = current
	out.GameOver = current.HasOverflow()
	out.Truncated = !settled && HasMergeablePair(current)
	return out, nil
}

// IsLocked reports whether no column can take another block.
func IsLocked(g Grid) bool {
	for col := range g.Dims.Width {
		if g.ColumnCount(col) < g.Dims.Height {
			return false
		}
	}
	return true
}
