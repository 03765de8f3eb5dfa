package dropmerge

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vovakirdan/drop-merge/internal/core"
	"github.com/vovakirdan/drop-merge/internal/engine"
	"github.com/vovakirdan/drop-merge/internal/session"
)

// Ticks of 100ms: the drop frame lasts 3 ticks and cycle frames 2.
var testCfg = core.RuntimeConfig{
	ScreenW:  80,
	ScreenH:  24,
	TickRate: 10,
	Seed:     42,
}

// newTestGame creates a game from a temporary config file with the given
// grid size. Next values are always 2 unless overridden.
func newTestGame(t *testing.T, width, height int) *Game {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dropmerge.yaml")
	yaml := fmt.Sprintf("grid:\n  width: %d\n  height: %d\npacing:\n  drop_ms: 300\n  cycle_ms: 200\n", width, height)
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	SetConfigPath(path)
	t.Cleanup(func() { SetConfigPath("") })

	g := New()
	g.Reset(testCfg)
	g.env.Values = &session.SequenceSource{Values: []int{2}}
	g.env.IDs = &engine.SequenceIDs{Prefix: "b"}
	g.sess.NextValue = 2
	return g
}

func press(a core.Action) core.InputFrame {
	in := core.NewInputFrame()
	in.Set(a)
	return in
}

// settle steps empty frames until playback ends and returns the tick count.
func settle(t *testing.T, g *Game) int {
	t.Helper()
	for i := 1; i <= 200; i++ {
		if res := g.Step(core.NewInputFrame()); res.Settled {
			if g.Processing() {
				t.Fatal("Settled reported while still processing")
			}
			return i
		}
	}
	t.Fatal("playback never settled")
	return 0
}

func TestResetStartsEmptyGame(t *testing.T) {
	g := newTestGame(t, 5, 8)
	snap := g.Snapshot()

	if snap.Variant != VariantClassic || snap.State != StatePlaying {
		t.Errorf("snapshot = %+v", snap)
	}
	if len(snap.Blocks) != 0 || snap.Score != 0 {
		t.Errorf("new game not empty: %+v", snap)
	}
	if snap.Cursor != 2 {
		t.Errorf("cursor = %d, want 2", snap.Cursor)
	}
	if snap.UndoAllowance != 1 {
		t.Errorf("undo allowance = %d, want 1", snap.UndoAllowance)
	}
}

func TestCursorMovementClamps(t *testing.T) {
	g := newTestGame(t, 5, 8)

	for range 4 {
		g.Step(press(core.ActionLeft))
	}
	if g.cursor != 0 {
		t.Errorf("cursor = %d, want 0", g.cursor)
	}
	for range 10 {
		g.Step(press(core.ActionRight))
	}
	if g.cursor != 4 {
		t.Errorf("cursor = %d, want 4", g.cursor)
	}
}

func TestDropPlaybackPacing(t *testing.T) {
	g := newTestGame(t, 5, 8)

	res := g.Step(press(core.ActionDrop))
	if res.Settled || !g.Processing() {
		t.Fatal("drop should start playback")
	}
	if b, ok := g.display.At(7, 2); !ok || b.Value != 2 {
		t.Errorf("drop frame not shown: %+v", g.display.Blocks)
	}

	if ticks := settle(t, g); ticks != 3 {
		t.Errorf("settled after %d ticks, want 3", ticks)
	}
}

func TestDropsIgnoredWhileProcessing(t *testing.T) {
	g := newTestGame(t, 5, 8)

	g.Step(press(core.ActionDrop))
	g.Step(press(core.ActionDrop))
	in := core.NewInputFrame()
	in.SetColumn(0)
	g.Step(in)
	g.Step(press(core.ActionUndo))
	settle(t, g)

	if n := len(g.Snapshot().Blocks); n != 1 {
		t.Errorf("blocks = %d, want 1", n)
	}
}

func TestComboPlayback(t *testing.T) {
	g := newTestGame(t, 5, 8)
	dims := g.sess.Grid.Dims
	s := g.sess
	s.Grid = engine.NewGrid(dims,
		engine.Block{ID: "a", Value: 4, Row: 7, Col: 2},
		engine.Block{ID: "c", Value: 2, Row: 6, Col: 2},
	)
	g.startSession(s)

	g.Step(press(core.ActionDrop))
	if got := g.State().Score; got != 0 {
		t.Errorf("score during drop frame = %d, want 0", got)
	}

	// drop frame (3 ticks) + cycle 1 (2) + cycle 2 (2)
	if ticks := settle(t, g); ticks != 7 {
		t.Errorf("settled after %d ticks, want 7", ticks)
	}

	state := g.State()
	if state.Score != 20 || state.HighScore != 20 {
		t.Errorf("state = %+v, want score and high score 20", state)
	}
	if g.combo != 2 {
		t.Errorf("combo banner = %d, want 2", g.combo)
	}

	screen := core.NewScreen(testCfg.ScreenW, testCfg.ScreenH)
	g.Render(screen)
	if !strings.Contains(screen.String(), "COMBO x2!") {
		t.Error("combo banner not rendered")
	}

	// A turn without merges hides the banner as soon as it starts
	g.sess.NextValue = 8
	g.Step(press(core.ActionLeft))
	g.Step(press(core.ActionDrop))
	if g.combo != 0 {
		t.Errorf("combo banner = %d after a turn without merges", g.combo)
	}
}

func TestScoreRisesDuringPlayback(t *testing.T) {
	g := newTestGame(t, 5, 8)
	s := g.sess
	s.Grid = engine.NewGrid(s.Grid.Dims, engine.Block{ID: "a", Value: 2, Row: 7, Col: 2})
	g.startSession(s)

	g.Step(press(core.ActionDrop))
	if g.State().Score != 0 {
		t.Error("score should not include merges not shown yet")
	}
	for range 3 {
		g.Step(core.NewInputFrame())
	}
	if !g.Processing() || g.State().Score != 4 {
		t.Errorf("after merge frame: processing %v, score %d", g.Processing(), g.State().Score)
	}
}

func TestColumnKeyDrops(t *testing.T) {
	g := newTestGame(t, 5, 8)

	in := core.NewInputFrame()
	in.SetColumn(7)
	g.Step(in)
	if g.Processing() {
		t.Fatal("out of range column should be ignored")
	}

	in = core.NewInputFrame()
	in.SetColumn(4)
	g.Step(in)
	settle(t, g)

	if _, ok := g.sess.Grid.At(7, 4); !ok {
		t.Errorf("expected block in column 4: %+v", g.sess.Grid.Blocks)
	}
	if g.cursor != 4 {
		t.Errorf("cursor = %d, want 4", g.cursor)
	}
}

func TestUndoRestoresAndSettles(t *testing.T) {
	g := newTestGame(t, 5, 8)

	g.Step(press(core.ActionDrop))
	settle(t, g)
	g.Step(press(core.ActionDrop))
	settle(t, g)
	if g.State().Score != 4 {
		t.Fatalf("score = %d, want 4", g.State().Score)
	}

	res := g.Step(press(core.ActionUndo))
	if !res.Settled {
		t.Error("undo should report Settled")
	}
	if res.State.Score != 0 || res.State.HighScore != 4 {
		t.Errorf("after undo: %+v", res.State)
	}
	if n := len(g.Snapshot().Blocks); n != 1 {
		t.Errorf("blocks after undo = %d, want 1", n)
	}

	if g.Step(press(core.ActionUndo)).Settled {
		t.Error("second undo should be refused")
	}
}

func TestGameOverAndRestart(t *testing.T) {
	g := newTestGame(t, 1, 2)
	g.env.Values = &session.SequenceSource{Values: []int{4}}

	g.Step(press(core.ActionDrop)) // 2
	settle(t, g)
	g.Step(press(core.ActionDrop)) // 4 on top, grid locked
	if g.State().GameOver {
		t.Error("game over must wait for playback")
	}
	settle(t, g)

	if !g.State().GameOver || g.Snapshot().State != StateGameOver {
		t.Fatalf("expected game over, state %+v", g.State())
	}

	screen := core.NewScreen(testCfg.ScreenW, testCfg.ScreenH)
	g.Render(screen)
	if !strings.Contains(screen.String(), "GAME OVER") {
		t.Error("game over message not rendered")
	}

	if g.Step(press(core.ActionUndo)).Settled {
		t.Error("undo after game over should be refused")
	}

	res := g.Step(press(core.ActionRestart))
	if !res.Settled || res.State.GameOver {
		t.Errorf("restart result = %+v", res)
	}
	if len(g.Snapshot().Blocks) != 0 {
		t.Error("restart should clear the board")
	}
}

func TestPauseBlocksInput(t *testing.T) {
	g := newTestGame(t, 5, 8)

	g.Step(press(core.ActionPause))
	if !g.State().Paused {
		t.Fatal("game should be paused")
	}
	g.Step(press(core.ActionDrop))
	if g.Processing() {
		t.Error("drop accepted while paused")
	}

	g.Step(press(core.ActionPause))
	g.Step(press(core.ActionDrop))
	if !g.Processing() {
		t.Error("drop refused after resume")
	}
}

func TestStateRoundTrip(t *testing.T) {
	g := newTestGame(t, 5, 8)
	g.Step(press(core.ActionDrop))
	settle(t, g)
	g.Step(press(core.ActionDrop))
	settle(t, g)

	data, err := g.MarshalState()
	if err != nil {
		t.Fatalf("MarshalState: %v", err)
	}

	restored := newTestGame(t, 5, 8)
	if err := restored.RestoreState(data, 100); err != nil {
		t.Fatalf("RestoreState: %v", err)
	}

	a, b := g.Snapshot(), restored.Snapshot()
	if a.Score != b.Score || len(a.Blocks) != len(b.Blocks) || a.NextValue != b.NextValue {
		t.Errorf("restored %+v, want %+v", b, a)
	}
	if b.HighScore != 100 {
		t.Errorf("high score = %d, want 100", b.HighScore)
	}

	if err := restored.RestoreState([]byte("{"), 0); err == nil {
		t.Error("corrupt data should fail")
	}
	if restored.Snapshot().Score != a.Score {
		t.Error("failed restore changed the game")
	}
}

func TestRestoreWithoutSaveKeepsHighScore(t *testing.T) {
	g := newTestGame(t, 5, 8)
	if err := g.RestoreState(nil, 77); err != nil {
		t.Fatalf("RestoreState: %v", err)
	}
	if g.State().HighScore != 77 {
		t.Errorf("high score = %d, want 77", g.State().HighScore)
	}
}

func TestDeterministicNextValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	a, b := New(), New()
	a.Reset(testCfg)
	b.Reset(testCfg)

	for i := range 20 {
		if a.sess.NextValue != b.sess.NextValue {
			t.Fatalf("next values diverged at drop %d", i)
		}
		a.Step(press(core.ActionDrop))
		b.Step(press(core.ActionDrop))
		for a.Processing() {
			a.Step(core.NewInputFrame())
		}
		for b.Processing() {
			b.Step(core.NewInputFrame())
		}
	}
}

func TestRenderTooSmall(t *testing.T) {
	g := newTestGame(t, 5, 8)
	g.Reset(core.RuntimeConfig{ScreenW: 20, ScreenH: 10, TickRate: 10, Seed: 1})

	screen := core.NewScreen(20, 10)
	g.Render(screen)
	if !strings.Contains(screen.String(), "Window too small") {
		t.Error("too small message missing")
	}
	if !g.State().Paused {
		t.Error("too small window should pause")
	}
}

func TestRenderBoard(t *testing.T) {
	g := newTestGame(t, 5, 8)
	g.Step(press(core.ActionDrop))
	settle(t, g)

	screen := core.NewScreen(testCfg.ScreenW, testCfg.ScreenH)
	g.Render(screen)
	out := screen.String()

	for _, want := range []string{"Drop Merge", "Score: 0", "Next:", "Undo: 1", "▼"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}

	// The settled 2 sits on the bottom row of the board, column 2
	boardX := (testCfg.ScreenW - (5*cellWidth + 2)) / 2
	cell := screen.GetCell(boardX+1+2*cellWidth+2, hudHeight+8)
	if cell.Rune != '2' || cell.Color != core.ValueColor(2) {
		t.Errorf("bottom cell = %+v", cell)
	}
}
