package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/drop-merge/internal/registry"
	"github.com/vovakirdan/drop-merge/internal/storage"
)

// maxScores is how many rows the board loads per variant.
const maxScores = 100

// ScoreboardKeyMap defines the key bindings for the scoreboard.
type ScoreboardKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Next     key.Binding
	Prev     key.Binding
	MineOnly key.Binding
	Back     key.Binding
	Quit     key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Next, k.MineOnly, k.Back, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.Next, k.Prev}, {k.MineOnly, k.Back, k.Quit}}
}

// DefaultScoreboardKeyMap returns default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Next:     key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab", "next variant")),
		Prev:     key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("S-tab", "prev variant")),
		MineOnly: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mine only")),
		Back:     key.NewBinding(key.WithKeys("esc", "b"), key.WithHelp("esc", "back")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ScoreboardModel shows the recorded final scores of one variant at a time.
type ScoreboardModel struct {
	variants []registry.GameInfo
	current  int
	store    *storage.Store
	player   string
	mineOnly bool

	scores []storage.ScoreEntry
	stats  *storage.GameStats

	table table.Model
	help  help.Model
	keys  ScoreboardKeyMap

	width, height int
	quitting      bool
	goingBack     bool
}

// NewScoreboardModel creates a scoreboard viewed by player.
func NewScoreboardModel(store *storage.Store, player string, width, height int) ScoreboardModel {
	m := ScoreboardModel{
		variants: registry.List(),
		store:    store,
		player:   player,
		help:     help.New(),
		keys:     DefaultScoreboardKeyMap(),
		width:    width,
		height:   height,
	}
	m.table = newScoreTable(width, height)
	m.reload()
	return m
}

func newScoreTable(width, height int) table.Model {
	playerW := 10
	if width > 64 {
		playerW = min(width-48, 20)
	}
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "#", Width: 4},
			{Title: "Player", Width: playerW},
			{Title: "Score", Width: 8},
			{Title: "Tile", Width: 6},
			{Title: "Date", Width: 14},
		}),
		table.WithFocused(true),
		table.WithHeight(max(height-9, 3)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	return t
}

func (m *ScoreboardModel) variantID() string {
	if len(m.variants) == 0 {
		return ""
	}
	return m.variants[m.current].ID
}

// reload fetches scores and stats for the current variant and refills the table.
func (m *ScoreboardModel) reload() {
	m.scores, m.stats = nil, nil
	if m.store != nil && len(m.variants) > 0 {
		id := m.variantID()
		if scores, err := m.store.TopScores(id, maxScores); err == nil {
			m.scores = scores
		}
		if stats, err := m.store.GetGameStats(id); err == nil {
			m.stats = stats
		}
	}

	rows := make([]table.Row, 0, len(m.scores))
	for i, s := range m.scores {
		if m.mineOnly && s.Player != m.player {
			continue
		}
		rows = append(rows, table.Row{
			strconv.Itoa(i + 1),
			playerName(s.Player),
			strconv.Itoa(s.Score),
			strconv.Itoa(s.MaxTile),
			s.CreatedAt.Format("Jan 02 15:04"),
		})
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// Init initializes the scoreboard model.
func (m ScoreboardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the scoreboard.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			m.step(1)
			return m, nil
		case key.Matches(msg, m.keys.Prev):
			m.step(-1)
			return m, nil
		case key.Matches(msg, m.keys.MineOnly):
			m.mineOnly = !m.mineOnly
			m.reload()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table = newScoreTable(m.width, m.height)
		m.help.Width = msg.Width
		m.reload()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *ScoreboardModel) step(delta int) {
	if n := len(m.variants); n > 0 {
		m.current = (m.current + delta + n) % n
		m.reload()
	}
}

// View renders the scoreboard.
func (m ScoreboardModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	title := "HIGH SCORES"
	if m.mineOnly {
		title += " (" + playerName(m.player) + ")"
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).
		Render(centerText(title, m.width)))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.tabs()))
	b.WriteString("\n\n")

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	b.WriteString(box.Render(m.body()))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(m.help.View(m.keys)))
	return b.String()
}

// tabs renders the variant selector, collapsing to arrows when it would not fit.
func (m ScoreboardModel) tabs() string {
	if len(m.variants) == 0 {
		return ""
	}
	idle := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1)
	active := idle.Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))

	parts := make([]string, len(m.variants))
	plain := 0
	for i, v := range m.variants {
		plain += len([]rune(v.Title)) + 3
		if i == m.current {
			parts[i] = active.Render(v.Title)
		} else {
			parts[i] = idle.Render(v.Title)
		}
	}
	if plain > m.width-4 {
		return "< " + m.variants[m.current].Title + " >"
	}
	return strings.Join(parts, " ")
}

func (m ScoreboardModel) body() string {
	if len(m.table.Rows()) == 0 {
		msg := "No scores recorded yet.\nFinish a game to get on the board!"
		if m.mineOnly && len(m.scores) > 0 {
			msg = "None of the top scores are yours yet."
		}
		return lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true).Padding(2, 4).Render(msg)
	}
	if m.stats == nil {
		return m.table.View()
	}
	summary := fmt.Sprintf("%d games  avg %.0f  best tile %d",
		m.stats.GamesCount, m.stats.AvgScore, m.stats.BestTile)
	return m.table.View() + "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(summary)
}

// playerName labels scores of the local terminal player.
func playerName(player string) string {
	if player == storage.LocalPlayer {
		return "local"
	}
	return player
}

// IsGoingBack reports whether the user asked to return to the menu.
func (m ScoreboardModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting reports whether the user asked to quit.
func (m ScoreboardModel) IsQuitting() bool {
	return m.quitting
}

// RunScoreboard runs the scoreboard for the local player and reports whether
// the user went back to the menu.
func RunScoreboard(store *storage.Store, width, height int) (goBack bool, err error) {
	p := tea.NewProgram(NewScoreboardModel(store, storage.LocalPlayer, width, height), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return false, err
	}
	m, ok := final.(ScoreboardModel)
	return ok && m.IsGoingBack(), nil
}
