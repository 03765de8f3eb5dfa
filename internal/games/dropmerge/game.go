// Package dropmerge hosts the drop-merge puzzle on the tick-driven game
// interface: a column cursor, paced playback of turn frames, the combo
// banner, undo and restart.
package dropmerge

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/drop-merge/internal/config"
	"github.com/vovakirdan/drop-merge/internal/core"
	"github.com/vovakirdan/drop-merge/internal/engine"
	"github.com/vovakirdan/drop-merge/internal/registry"
	"github.com/vovakirdan/drop-merge/internal/session"
)

// Variant ids.
const (
	VariantClassic = "dropmerge"
	VariantTall    = "dropmerge_tall"
)

// Game implements registry.Game and registry.Resumable.
type Game struct {
	variantID string
	title     string

	cfg      config.GameConfig
	env      session.Env
	sess     session.Session
	tick     uint64
	tickRate int

	cursor int

	// Playback of the current turn. display is what the player sees; it lags
	// sess.Grid until every frame has been shown.
	processing   bool
	pending      []engine.Frame
	wait         int
	display      engine.Grid
	highlight    engine.Diff
	displayScore int
	combo        int // Banner level, 0 when hidden

	screenW  int
	screenH  int
	paused   bool
	tooSmall bool

	logger *log.Logger
}

// Package-level settings applied on the next Reset.
var (
	configPath       string
	difficultyPreset string
	logger           = log.New(io.Discard)
)

// SetConfigPath sets a custom config file path.
func SetConfigPath(path string) {
	configPath = path
}

// SetDifficultyPreset sets the difficulty preset (easy, normal, hard).
func SetDifficultyPreset(preset string) {
	difficultyPreset = preset
}

// SetLogger sets the logger used by games created afterwards.
func SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard)
	}
	logger = l
}

// New creates the classic 5x8 variant.
func New() *Game {
	return &Game{variantID: VariantClassic, title: "Drop Merge", logger: logger}
}

// NewTall creates the 5x10 variant.
func NewTall() *Game {
	return &Game{variantID: VariantTall, title: "Drop Merge (Tall)", logger: logger}
}

func init() {
	registry.Register(VariantClassic, func() registry.Game {
		return New()
	})
	registry.Register(VariantTall, func() registry.Game {
		return NewTall()
	})
}

// ID returns the variant id.
func (g *Game) ID() string {
	return g.variantID
}

// Title returns the display name.
func (g *Game) Title() string {
	return g.title
}

// Reset loads the variant config and starts a new game.
// The high score of the previous game is kept.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	g.cfg = g.loadConfig()

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g.env = session.NewEnv(g.cfg.Rules(), seed)

	g.tickRate = cfg.TickRate
	if g.tickRate <= 0 {
		g.tickRate = core.DefaultConfig().TickRate
	}
	g.tick = 0
	g.screenW = cfg.ScreenW
	g.screenH = cfg.ScreenH
	g.paused = false

	g.startSession(session.NewGame(g.sess.HighScore, g.env))
	g.checkScreenSize()
}

func (g *Game) loadConfig() config.GameConfig {
	cfg, err := config.Load(g.variantID, configPath)
	if err != nil {
		g.logger.Warn("using default config", "variant", g.variantID, "err", err)
		cfg = config.DefaultFor(g.variantID)
	}
	config.ApplyPreset(&cfg, config.DifficultyPreset(difficultyPreset))
	return cfg
}

// startSession replaces the session and clears every transient display state.
func (g *Game) startSession(s session.Session) {
	g.sess = s
	g.cursor = s.Grid.Dims.Width / 2
	g.processing = false
	g.pending = nil
	g.wait = 0
	g.display = s.Grid.Clone()
	g.highlight = engine.Diff{}
	g.displayScore = s.Score
	g.combo = 0
}

// checkScreenSize checks if the screen is large enough for the board and HUD.
func (g *Game) checkScreenSize() {
	minW, minH := g.minSize()
	g.tooSmall = g.screenW < minW || g.screenH < minH
}

// Step advances the game by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	g.tick++

	if g.tooSmall {
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionPause) && !g.sess.GameOver() {
		g.paused = !g.paused
	}
	if g.paused {
		return core.StepResult{State: g.State()}
	}

	if g.processing {
		settled := g.advancePlayback()
		return core.StepResult{State: g.State(), Settled: settled}
	}

	settled := false
	switch {
	case in.Has(core.ActionRestart):
		g.startSession(session.Restart(g.sess, g.env))
		settled = true
	case g.sess.GameOver():
		// Only restart is accepted once the game is over
	case in.Has(core.ActionUndo):
		settled = g.undo()
	case in.Has(core.ActionColumn):
		if in.Column >= 0 && in.Column < g.width() {
			g.cursor = in.Column
			g.drop(in.Column)
		}
	case in.Has(core.ActionDrop):
		g.drop(g.cursor)
	case in.Has(core.ActionLeft):
		g.cursor = core.Clamp(g.cursor-1, 0, g.width()-1)
	case in.Has(core.ActionRight):
		g.cursor = core.Clamp(g.cursor+1, 0, g.width()-1)
	}

	return core.StepResult{State: g.State(), Settled: settled}
}

// drop applies a drop and starts frame playback. Rejected drops are no-ops.
func (g *Game) drop(col int) {
	next, out, err := session.ApplyDrop(g.sess, col, g.env)
	if err != nil {
		g.logger.Debug("drop ignored", "variant", g.variantID, "col", col, "err", err)
		return
	}
	if out.Truncated {
		g.logger.Warn("turn stopped at cycle cap",
			"variant", g.variantID, "cycles", out.Cycles, "score_delta", out.ScoreDelta)
	}

	g.displayScore = g.sess.Score
	g.sess = next
	if out.PeakCombo == 0 {
		g.combo = 0
	}
	g.processing = true
	g.pending = out.Frames
	g.showNextFrame()
}

func (g *Game) undo() bool {
	next, err := session.Undo(g.sess)
	if err != nil {
		return false
	}
	g.startSession(next)
	return true
}

// advancePlayback counts down the current frame and shows the next one.
// Returns true on the tick the turn finishes.
func (g *Game) advancePlayback() bool {
	g.wait--
	if g.wait > 0 {
		return false
	}
	if len(g.pending) > 0 {
		g.showNextFrame()
		return false
	}

	g.processing = false
	g.display = g.sess.Grid.Clone()
	g.displayScore = g.sess.Score
	if g.sess.GameOver() {
		g.combo = 0
	}
	return true
}

func (g *Game) showNextFrame() {
	f := g.pending[0]
	g.pending = g.pending[1:]

	g.display = f.Grid
	g.highlight = f.Diff
	g.displayScore += f.Scored
	if f.Combo >= 2 {
		g.combo = f.Combo
	}

	delay := g.cfg.Pacing.CycleDelay()
	if f.Kind == engine.FrameDrop {
		delay = g.cfg.Pacing.DropDelay()
	}
	g.wait = g.delayTicks(delay)
}

// delayTicks converts a pause to whole ticks, rounding up.
func (g *Game) delayTicks(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	tick := time.Second / time.Duration(g.tickRate)
	return int((d + tick - 1) / tick)
}

func (g *Game) width() int {
	return g.sess.Grid.Dims.Width
}

// State returns the current game state. Score and game over follow playback.
func (g *Game) State() core.GameState {
	score := g.sess.Score
	if g.processing {
		score = g.displayScore
	}
	return core.GameState{
		Score:     score,
		HighScore: max(g.sess.HighScore, score),
		GameOver:  g.sess.GameOver() && !g.processing,
		Paused:    g.paused || g.tooSmall,
	}
}

// MaxTile returns the highest block value on the board.
func (g *Game) MaxTile() int {
	return g.sess.Grid.MaxValue()
}

// Processing reports whether a turn is being played back.
func (g *Game) Processing() bool {
	return g.processing
}

// MarshalState encodes the settled session.
func (g *Game) MarshalState() ([]byte, error) {
	return session.Marshal(g.sess)
}

// RestoreState resumes a saved session with the persisted high score.
// Nil data starts a new game with that high score.
func (g *Game) RestoreState(data []byte, highScore int) error {
	if data == nil {
		s := g.sess
		s.HighScore = max(s.HighScore, highScore)
		g.startSession(s)
		return nil
	}
	s, err := session.Unmarshal(data, highScore, g.env)
	if err != nil {
		return err
	}
	g.startSession(s)
	return nil
}

var (
	_ registry.Game      = (*Game)(nil)
	_ registry.Resumable = (*Game)(nil)
)
