package engine

import (
	"math/rand"
	"testing"
)

func TestResolveMerges(t *testing.T) {
	dims := DefaultDims()

	type want struct {
		value, row, col int
	}

	tests := []struct {
		name    string
		blocks  []Block
		gained  int
		merged  bool
		created []want // Blocks produced by merges, in scheduling order
		kept    []string
	}{
		{
			name:    "horizontal pair keeps left position",
			blocks:  []Block{blk("a", 2, 7, 0), blk("b", 2, 7, 1)},
			gained:  4,
			merged:  true,
			created: []want{{4, 7, 0}},
		},
		{
			name:    "vertical pair keeps bottom position",
			blocks:  []Block{blk("a", 2, 7, 0), blk("b", 2, 6, 0)},
			gained:  4,
			merged:  true,
			created: []want{{4, 7, 0}},
		},
		{
			name:    "horizontal triple merges leftmost pair only",
			blocks:  []Block{blk("a", 2, 7, 0), blk("b", 2, 7, 1), blk("c", 2, 7, 2)},
			gained:  4,
			merged:  true,
			created: []want{{4, 7, 0}},
			kept:    []string{"c"},
		},
		{
			name:    "horizontal pass claims before vertical",
			blocks:  []Block{blk("a", 2, 7, 0), blk("b", 2, 7, 1), blk("c", 2, 6, 0)},
			gained:  4,
			merged:  true,
			created: []want{{4, 7, 0}},
			kept:    []string{"c"},
		},
		{
			name: "vertical stack of four makes two pairs",
			blocks: []Block{
				blk("a", 2, 7, 0),
				blk("b", 2, 6, 0),
				blk("c", 2, 5, 0),
				blk("d", 2, 4, 0),
			},
			gained:  8,
			merged:  true,
			created: []want{{4, 7, 0}, {4, 5, 0}},
		},
		{
			name:   "distinct values do not merge",
			blocks: []Block{blk("a", 2, 7, 0), blk("b", 4, 7, 1), blk("c", 8, 6, 0)},
			gained: 0,
			merged: false,
			kept:   []string{"a", "b", "c"},
		},
		{
			name:   "blocks above the ceiling are ignored",
			blocks: []Block{blk("a", 2, 0, 0), blk("b", 2, -1, 0)},
			gained: 0,
			merged: false,
			kept:   []string{"a", "b"},
		},
		{
			name:   "non-adjacent equal values do not merge",
			blocks: []Block{blk("a", 4, 7, 0), blk("b", 4, 7, 2)},
			gained: 0,
			merged: false,
			kept:   []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids := &SequenceIDs{Prefix: "m"}
			result := ResolveMerges(NewGrid(dims, tt.blocks...), ids)

			if result.Merged != tt.merged {
				t.Errorf("Merged = %v, want %v", result.Merged, tt.merged)
			}
			if result.Gained != tt.gained {
				t.Errorf("Gained = %d, want %d", result.Gained, tt.gained)
			}
			if len(result.Merges) != len(tt.created) {
				t.Fatalf("got %d merges, want %d", len(result.Merges), len(tt.created))
			}
			for i, w := range tt.created {
				got := result.Merges[i].Result
				if got.Value != w.value || got.Row != w.row || got.Col != w.col {
					t.Errorf("merge %d result = %+v, want value %d at (%d, %d)", i, got, w.value, w.row, w.col)
				}
				if _, ok := findBlock(result.Grid, got.ID); !ok {
					t.Errorf("merge %d result %s missing from grid", i, got.ID)
				}
			}
			for _, id := range tt.kept {
				if _, ok := findBlock(result.Grid, id); !ok {
					t.Errorf("unmerged block %s missing from grid", id)
				}
			}
			if want := len(tt.blocks) - len(tt.created); result.Grid.Len() != want {
				t.Errorf("grid has %d blocks, want %d", result.Grid.Len(), want)
			}
		})
	}
}

func TestResolveMergesDoesNotMutateInput(t *testing.T) {
	g := NewGrid(DefaultDims(), blk("a", 2, 7, 0), blk("b", 2, 7, 1))
	ResolveMerges(g, &SequenceIDs{})

	if g.Len() != 2 || g.Blocks[0].ID != "a" || g.Blocks[1].ID != "b" {
		t.Errorf("input grid mutated: %+v", g.Blocks)
	}
}

// randomSettledGrid builds a settled grid with values from {2, 4, 8}.
func randomSettledGrid(rng *rand.Rand, dims Dims) Grid {
	ids := &SequenceIDs{Prefix: "r"}
	var blocks []Block
	for col := range dims.Width {
		height := rng.Intn(dims.Height + 1)
		for i := range height {
			blocks = append(blocks, Block{
				ID:    ids.NextID(),
				Value: 2 << rng.Intn(3),
				Row:   dims.Height - 1 - i,
				Col:   col,
			})
		}
	}
	return NewGrid(dims, blocks...)
}

func TestResolveMergesProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	dims := DefaultDims()

	for i := range 200 {
		g := randomSettledGrid(rng, dims)
		before := make(map[string]Block, g.Len())
		for _, b := range g.Blocks {
			before[b.ID] = b
		}

		result := ResolveMerges(g, &SequenceIDs{Prefix: "m"})

		claimed := make(map[string]bool)
		sum := 0
		for _, m := range result.Merges {
			for _, id := range m.Consumed {
				if claimed[id] {
					t.Fatalf("grid %d: block %s claimed by more than one merge", i, id)
				}
				claimed[id] = true
			}

			a, b := before[m.Consumed[0]], before[m.Consumed[1]]
			if a.Value != b.Value {
				t.Errorf("grid %d: merged unequal values %d and %d", i, a.Value, b.Value)
			}
			if m.Result.Value != a.Value+b.Value {
				t.Errorf("grid %d: result value %d, want %d", i, m.Result.Value, a.Value+b.Value)
			}
			if m.Result.Row != a.Row || m.Result.Col != a.Col {
				t.Errorf("grid %d: result not at survivor position", i)
			}
			sum += m.Result.Value
		}

		if sum != result.Gained {
			t.Errorf("grid %d: Gained = %d, sum of results = %d", i, result.Gained, sum)
		}
		if result.Merged != (len(result.Merges) > 0) {
			t.Errorf("grid %d: Merged flag inconsistent", i)
		}
		if err := result.Grid.Validate(); err != nil {
			t.Errorf("grid %d: invalid merge output: %v", i, err)
		}
	}
}

func TestHasMergeablePair(t *testing.T) {
	dims := DefaultDims()

	if HasMergeablePair(NewGrid(dims)) {
		t.Error("empty grid has no pairs")
	}
	if !HasMergeablePair(NewGrid(dims, blk("a", 2, 7, 3), blk("b", 2, 7, 4))) {
		t.Error("horizontal pair not detected")
	}
	if !HasMergeablePair(NewGrid(dims, blk("a", 8, 7, 3), blk("b", 8, 6, 3))) {
		t.Error("vertical pair not detected")
	}
	if HasMergeablePair(NewGrid(dims, blk("a", 2, 7, 3), blk("b", 4, 6, 3))) {
		t.Error("distinct values reported as pair")
	}
}
