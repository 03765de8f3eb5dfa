package registry

import (
	"testing"

	"github.com/vovakirdan/drop-merge/internal/core"
)

type stubGame struct{ id string }

func (g stubGame) ID() string                          { return g.id }
func (g stubGame) Title() string                       { return "Stub " + g.id }
func (g stubGame) Reset(core.RuntimeConfig)            {}
func (g stubGame) Step(core.InputFrame) core.StepResult { return core.StepResult{} }
func (g stubGame) Render(*core.Screen)                 {}
func (g stubGame) State() core.GameState               { return core.GameState{} }

func TestRegisterCreateList(t *testing.T) {
	Register("zz_stub_b", func() Game { return stubGame{"zz_stub_b"} })
	Register("zz_stub_a", func() Game { return stubGame{"zz_stub_a"} })

	if !Exists("zz_stub_a") || Exists("zz_missing") {
		t.Error("Exists reports wrong membership")
	}

	g, err := Create("zz_stub_a")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if g.ID() != "zz_stub_a" {
		t.Errorf("created %q", g.ID())
	}
	if _, err := Create("zz_missing"); err == nil {
		t.Error("unknown variant should fail")
	}

	var ids []string
	for _, info := range List() {
		ids = append(ids, info.ID)
		if info.ID == "zz_stub_b" && info.Title != "Stub zz_stub_b" {
			t.Errorf("title = %q", info.Title)
		}
	}
	ia, ib := -1, -1
	for i, id := range ids {
		switch id {
		case "zz_stub_a":
			ia = i
		case "zz_stub_b":
			ib = i
		}
	}
	if ia < 0 || ib < 0 || ia > ib {
		t.Errorf("List not sorted by id: %v", ids)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register("zz_dup", func() Game { return stubGame{"zz_dup"} })

	defer func() {
		if recover() == nil {
			t.Error("duplicate Register should panic")
		}
	}()
	Register("zz_dup", func() Game { return stubGame{"zz_dup"} })
}
