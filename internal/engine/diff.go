package engine

// Diff lists which blocks changed between two grids, by id.
// Presentation layers derive their transient flags (landed, merged, new) from it.
type Diff struct {
	Created []string `json:"created,omitempty"`
	Removed []string `json:"removed,omitempty"`
	Moved   []string `json:"moved,omitempty"`
}

// Empty reports whether nothing changed.
func (d Diff) Empty() bool {
	return len(d.Created) == 0 && len(d.Removed) == 0 && len(d.Moved) == 0
}

// DiffGrids compares two grids. Created and Moved follow the order of after,
// Removed follows the order of before.
func DiffGrids(before, after Grid) Diff {
	prev := make(map[string]Block, len(before.Blocks))
	for _, b := range before.Blocks {
		prev[b.ID] = b
	}
	next := make(map[string]bool, len(after.Blocks))

	var d Diff
	for _, b := range after.Blocks {
		next[b.ID] = true
		old, ok := prev[b.ID]
		switch {
		case !ok:
			d.Created = append(d.Created, b.ID)
		case old.Row != b.Row || old.Col != b.Col:
			d.Moved = append(d.Moved, b.ID)
		}
	}
	for _, b := range before.Blocks {
		if !next[b.ID] {
			d.Removed = append(d.Removed, b.ID)
		}
	}
	return d
}
