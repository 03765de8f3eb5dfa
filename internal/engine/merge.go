package engine

// Merge describes one pair of equal blocks replaced by a doubled block.
type Merge struct {
	Consumed   [2]string // Ids of the merged pair (survivor position first)
	Result     Block     // Newly created block
	Horizontal bool      // Horizontal pass (left survives) or vertical (bottom survives)
}

// MergeResult is the outcome of a single merge pass.
type MergeResult struct {
	Grid   Grid
	Gained int  // Sum of the values of all created blocks
	Merged bool // At least one pair was merged
	Merges []Merge
}

// ResolveMerges runs one merge pass over a settled grid.
//
// The horizontal pass scans rows top to bottom and columns left to right,
// placing the result at the left block. The vertical pass scans columns left
// to right and rows bottom to top, placing the result at the bottom block.
// A block takes part in at most one merge per call; chains happen only in
// later passes once gravity has settled the grid again.
func ResolveMerges(g Grid, ids IDSource) MergeResult {
	if ids == nil {
		ids = UUIDSource{}
	}

	cells := g.cellIndex()
	claimed := make([]bool, len(g.Blocks))
	var merges []Merge
	gained := 0

	tryPair := func(survivor, other int, horizontal bool) {
		if survivor < 0 || other < 0 || claimed[survivor] || claimed[other] {
			return
		}
		a, b := g.Blocks[survivor], g.Blocks[other]
		if a.Value != b.Value {
			return
		}
		claimed[survivor] = true
		claimed[other] = true

		result := Block{
			ID:    ids.NextID(),
			Value: a.Value * 2,
			Row:   a.Row,
			Col:   a.Col,
		}
		gained += result.Value
		merges = append(merges, Merge{
			Consumed:   [2]string{a.ID, b.ID},
			Result:     result,
			Horizontal: horizontal,
		})
	}

	// Horizontal pass
	for r := range g.Dims.Height {
		for c := 0; c < g.Dims.Width-1; c++ {
			tryPair(cells[r][c], cells[r][c+1], true)
		}
	}

	// Vertical pass
	for c := range g.Dims.Width {
		for r := g.Dims.Height - 1; r > 0; r-- {
			tryPair(cells[r][c], cells[r-1][c], false)
		}
	}

	if len(merges) == 0 {
		return MergeResult{Grid: g.Clone()}
	}

	out := Grid{Dims: g.Dims, Blocks: make([]Block, 0, len(g.Blocks)-len(merges))}
	for i, b := range g.Blocks {
		if !claimed[i] {
			out.Blocks = append(out.Blocks, b)
		}
	}
	for _, m := range merges {
		out.Blocks = append(out.Blocks, m.Result)
	}

	return MergeResult{
		Grid:   out,
		Gained: gained,
		Merged: true,
		Merges: merges,
	}
}

// HasMergeablePair reports whether any two in-grid neighbours share a value.
// Unlike ResolveMerges it creates nothing.
func HasMergeablePair(g Grid) bool {
	cells := g.cellIndex()
	for r := range g.Dims.Height {
		for c := range g.Dims.Width {
			i := cells[r][c]
			if i < 0 {
				continue
			}
			v := g.Blocks[i].Value
			if c+1 < g.Dims.Width && cells[r][c+1] >= 0 && g.Blocks[cells[r][c+1]].Value == v {
				return true
			}
			if r+1 < g.Dims.Height && cells[r+1][c] >= 0 && g.Blocks[cells[r+1][c]].Value == v {
				return true
			}
		}
	}
	return false
}
