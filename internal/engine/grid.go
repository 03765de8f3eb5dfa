// Package engine implements the turn resolution of the drop-merge puzzle:
// gravity, merging, combo scoring and game-over detection.
// It has no external state: every operation takes a Grid value and returns a
// new one, leaving the input untouched.
package engine

import (
	"fmt"
	"sort"
)

// Default grid dimensions.
const (
	DefaultWidth  = 5
	DefaultHeight = 8
)

// Dims holds the fixed size of a grid.
type Dims struct {
	Width  int `json:"width"`  // Number of columns
	Height int `json:"height"` // Number of playable rows
}

// DefaultDims returns the classic 5x8 grid.
func DefaultDims() Dims {
	return Dims{Width: DefaultWidth, Height: DefaultHeight}
}

// Block is a single numbered tile.
// Row 0 is the top playable row; negative rows are above the ceiling.
type Block struct {
	ID    string `json:"id"`
	Value int    `json:"value"`
	Row   int    `json:"row"`
	Col   int    `json:"col"`
}

// Grid is a set of blocks placed on a Dims-sized board.
// At most one block may occupy a (row, col) cell.
type Grid struct {
	Dims   Dims    `json:"dims"`
	Blocks []Block `json:"blocks"`
}

// NewGrid creates a grid holding a copy of the given blocks.
func NewGrid(dims Dims, blocks ...Block) Grid {
	g := Grid{Dims: dims, Blocks: make([]Block, len(blocks))}
	copy(g.Blocks, blocks)
	return g
}

// Clone returns a deep copy of the grid.
func (g Grid) Clone() Grid {
	return NewGrid(g.Dims, g.Blocks...)
}

// Len returns the number of blocks.
func (g Grid) Len() int {
	return len(g.Blocks)
}

// At returns the block at (row, col), if any.
func (g Grid) At(row, col int) (Block, bool) {
	for _, b := range g.Blocks {
		if b.Row == row && b.Col == col {
			return b, true
		}
	}
	return Block{}, false
}

// ColumnCount returns how many blocks sit in the given column.
func (g Grid) ColumnCount(col int) int {
	n := 0
	for _, b := range g.Blocks {
		if b.Col == col {
			n++
		}
	}
	return n
}

// Column returns the blocks of a column ordered from bottom to top.
func (g Grid) Column(col int) []Block {
	var blocks []Block
	for _, b := range g.Blocks {
		if b.Col == col {
			blocks = append(blocks, b)
		}
	}
	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].Row > blocks[j].Row
	})
	return blocks
}

// HasOverflow reports whether any block sits above the ceiling.
func (g Grid) HasOverflow() bool {
	for _, b := range g.Blocks {
		if b.Row < 0 {
			return true
		}
	}
	return false
}

// MaxValue returns the highest block value, or 0 for an empty grid.
func (g Grid) MaxValue() int {
	maxVal := 0
	for _, b := range g.Blocks {
		maxVal = max(maxVal, b.Value)
	}
	return maxVal
}

// Validate checks the grid invariants: columns in range, rows below the
// bottom edge, power-of-two values, unique ids and one block per cell.
func (g Grid) Validate() error {
	if g.Dims.Width <= 0 || g.Dims.Height <= 0 {
		return fmt.Errorf("engine: invalid grid size %dx%d", g.Dims.Width, g.Dims.Height)
	}

	type cell struct{ row, col int }
	cells := make(map[cell]string, len(g.Blocks))
	ids := make(map[string]bool, len(g.Blocks))

	for _, b := range g.Blocks {
		if b.Col < 0 || b.Col >= g.Dims.Width {
			return fmt.Errorf("engine: block %q column %d out of range", b.ID, b.Col)
		}
		if b.Row >= g.Dims.Height {
			return fmt.Errorf("engine: block %q row %d below grid", b.ID, b.Row)
		}
		if !IsPowerOfTwo(b.Value) {
			return fmt.Errorf("engine: block %q has invalid value %d", b.ID, b.Value)
		}
		if b.ID == "" || ids[b.ID] {
			return fmt.Errorf("engine: duplicate or empty block id %q", b.ID)
		}
		ids[b.ID] = true

		c := cell{b.Row, b.Col}
		if other, taken := cells[c]; taken {
			return fmt.Errorf("engine: blocks %q and %q share cell (%d, %d)", other, b.ID, b.Row, b.Col)
		}
		cells[c] = b.ID
	}
	return nil
}

// IsPowerOfTwo reports whether v is a positive power of two.
func IsPowerOfTwo(v int) bool {
	return v > 0 && v&(v-1) == 0
}

// cellIndex maps playable cells to indexes into g.Blocks (-1 when empty).
// Blocks above the ceiling are not indexed.
func (g Grid) cellIndex() [][]int {
	idx := make([][]int, g.Dims.Height)
	for r := range idx {
		idx[r] = make([]int, g.Dims.Width)
		for c := range idx[r] {
			idx[r][c] = -1
		}
	}
	for i, b := range g.Blocks {
		if b.Row >= 0 && b.Row < g.Dims.Height && b.Col >= 0 && b.Col < g.Dims.Width {
			idx[b.Row][b.Col] = i
		}
	}
	return idx
}
