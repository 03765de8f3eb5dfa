package tui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/drop-merge/internal/core"
	"github.com/vovakirdan/drop-merge/internal/registry"
	"github.com/vovakirdan/drop-merge/internal/storage"
)

// maxTiler is implemented by games that report their highest block.
type maxTiler interface {
	MaxTile() int
}

// Model is the Bubble Tea model for running one variant.
// The saved session and high score of player are loaded on Init and written
// back after every settled turn.
type Model struct {
	game       registry.Game
	screen     *core.Screen
	store      *storage.Store
	player     string
	config     core.RuntimeConfig
	inputFrame core.InputFrame
	gameState  core.GameState
	keyMapper  *KeyMapper
	logger     *log.Logger
	quitting   bool
	backToMenu bool
	standalone bool // No menu to return to; Back quits
	scoreSaved bool // Whether score has been saved for current game over
}

// NewModel creates a new Bubble Tea model for the given game.
func NewModel(game registry.Game, store *storage.Store, player string, cfg core.RuntimeConfig) Model {
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = core.DefaultConfig().TickRate
	}

	return Model{
		game:       game,
		screen:     core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		store:      store,
		player:     player,
		config:     cfg,
		inputFrame: core.NewInputFrame(),
		keyMapper:  NewKeyMapper(),
		logger:     log.New(io.Discard),
	}
}

// WithLogger sets the logger for storage failures.
func (m Model) WithLogger(l *log.Logger) Model {
	if l != nil {
		m.logger = l
	}
	return m
}

// Init starts the game, resumes the saved session and starts ticking.
func (m Model) Init() tea.Cmd {
	m.game.Reset(m.config)
	m.restore()
	return tickCmd(m.config.TickRate)
}

// restore loads the saved session and high score into the game.
func (m Model) restore() {
	if m.store == nil {
		return
	}
	high, err := m.store.HighScore(m.game.ID(), m.player)
	if err != nil {
		m.logger.Warn("cannot load high score", "variant", m.game.ID(), "err", err)
	}

	r, ok := m.game.(registry.Resumable)
	if !ok {
		return
	}
	data, err := m.store.LoadSession(m.game.ID(), m.player)
	if err != nil {
		m.logger.Warn("cannot load saved session", "variant", m.game.ID(), "err", err)
	}
	if err := r.RestoreState(data, high); err != nil {
		m.logger.Warn("discarding unreadable saved session", "variant", m.game.ID(), "err", err)
		//nolint:errcheck // The fresh game keeps the stored high score
		r.RestoreState(nil, high)
	}
}

// persist writes the settled session and the high score.
func (m Model) persist() {
	if m.store == nil {
		return
	}
	if r, ok := m.game.(registry.Resumable); ok {
		data, err := r.MarshalState()
		if err == nil {
			err = m.store.SaveSession(m.game.ID(), m.player, data)
		}
		if err != nil {
			m.logger.Warn("cannot save session", "variant", m.game.ID(), "err", err)
		}
	}
	if err := m.store.SetHighScore(m.game.ID(), m.player, m.gameState.HighScore); err != nil {
		m.logger.Warn("cannot save high score", "variant", m.game.ID(), "err", err)
	}
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}

	if m.keyMapper.MapKeyToFrame(msg, &m.inputFrame) {
		m.persist()
		m.quitting = true
		return m, tea.Quit
	}

	if m.inputFrame.Has(core.ActionBack) {
		m.inputFrame.Clear()
		m.persist()
		if m.standalone {
			m.quitting = true
			return m, tea.Quit
		}
		m.backToMenu = true
	}

	return m, nil
}

// handleResize resizes the screen. The game is rebuilt for the new size and
// its session carried over.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, msg.Height)

	r, ok := m.game.(registry.Resumable)
	if !ok {
		if !m.gameState.GameOver {
			m.game.Reset(m.config)
		}
		return m, nil
	}

	data, err := r.MarshalState()
	high := m.game.State().HighScore
	m.game.Reset(m.config)
	if err == nil {
		//nolint:errcheck // The game encoded this state itself
		r.RestoreState(data, high)
	}
	m.gameState = m.game.State()
	return m, nil
}

// handleTick processes simulation ticks.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	result := m.game.Step(m.inputFrame)
	m.gameState = result.State

	if result.Settled {
		m.persist()
	}

	// Record the finished game once; a restart arms it again
	if m.gameState.GameOver && !m.scoreSaved {
		if m.store != nil && m.gameState.Score > 0 {
			maxTile := 0
			if t, ok := m.game.(maxTiler); ok {
				maxTile = t.MaxTile()
			}
			if _, err := m.store.SaveScore(m.game.ID(), m.player, m.gameState.Score, maxTile); err != nil {
				m.logger.Warn("cannot save score", "variant", m.game.ID(), "err", err)
			}
		}
		m.scoreSaved = true
	}
	if !m.gameState.GameOver {
		m.scoreSaved = false
	}

	m.inputFrame.Clear()
	return m, tickCmd(m.config.TickRate)
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	m.game.Render(m.screen)

	dir := filepath.Join(os.Getenv("HOME"), ".dropmerge", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.game.ID(), timestamp))

	//nolint:errcheck // Best-effort save, game continues regardless
	os.WriteFile(path, []byte(m.screen.String()), 0o600)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	m.game.Render(m.screen)
	return RenderScreen(m.screen)
}

// IsQuitting returns true if user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}

// Run starts the Bubble Tea program for a local player.
func Run(game registry.Game, store *storage.Store, cfg core.RuntimeConfig, logger *log.Logger) error {
	model := NewModel(game, store, storage.LocalPlayer, cfg).WithLogger(logger)
	model.standalone = true

	p := tea.NewProgram(model, tea.WithAltScreen())

	_, err := p.Run()
	return err
}
