package engine

import "sort"

// ResolveGravity compacts every column so blocks rest on the lowest free rows.
// The relative order inside a column never changes; only gaps are removed.
// Blocks above the ceiling take part and stay negative if the column is full.
// Returns the new grid and whether any block moved.
func ResolveGravity(g Grid) (Grid, bool) {
	out := g.Clone()
	moved := false

	for col := range out.Dims.Width {
		var idx []int
		for i, b := range out.Blocks {
			if b.Col == col {
				idx = append(idx, i)
			}
		}

		// Bottom-most first
		sort.SliceStable(idx, func(a, b int) bool {
			return out.Blocks[idx[a]].Row > out.Blocks[idx[b]].Row
		})

		nextRow := out.Dims.Height - 1
		for _, i := range idx {
			if out.Blocks[i].Row != nextRow {
				out.Blocks[i].Row = nextRow
				moved = true
			}
			nextRow--
		}
	}

	return out, moved
}
