package dropmerge

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/vovakirdan/drop-merge/internal/core"
	"github.com/vovakirdan/drop-merge/internal/engine"
)

const (
	cellWidth = 6 // Characters per column, borders excluded
	hudHeight = 4 // Title, score, next/undo, cursor row
	footer    = 3 // Combo banner, status, help
)

func (g *Game) minSize() (int, int) {
	dims := g.cfg.Rules().Dims
	return dims.Width*cellWidth + 2, hudHeight + dims.Height + 2 + footer
}

// Render draws the game state to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	if g.tooSmall {
		g.renderTooSmall(dst)
		return
	}

	dims := g.display.Dims
	boardW := dims.Width*cellWidth + 2
	boardH := dims.Height + 2
	boardX := (g.screenW - boardW) / 2
	boardY := hudHeight

	g.renderHUD(dst, boardX, boardW)
	g.renderBoard(dst, core.NewRect(boardX, boardY, boardW, boardH))
	g.renderFooter(dst, boardY+boardH)
}

func (g *Game) renderTooSmall(dst *core.Screen) {
	y := g.screenH / 2
	dst.DrawTextCentered(y, "Window too small", core.ColorYellow)
	minW, minH := g.minSize()
	dst.DrawTextCentered(y+1, fmt.Sprintf("Need at least %dx%d", minW, minH), core.ColorGray)
}

func (g *Game) renderHUD(dst *core.Screen, boardX, boardW int) {
	dst.DrawTextCentered(0, g.title, core.ColorBrightWhite)

	state := g.State()
	dst.DrawText(boardX, 1, fmt.Sprintf("Score: %d", state.Score))
	best := fmt.Sprintf("Best: %d", state.HighScore)
	dst.DrawText(boardX+boardW-len(best), 1, best)

	dst.DrawText(boardX, 2, "Next:")
	next := strconv.Itoa(g.sess.NextValue)
	dst.DrawTextColor(boardX+6, 2, next, core.ValueColor(g.sess.NextValue))

	undo := fmt.Sprintf("Undo: %d", g.undoLeft())
	undoColor := core.ColorDefault
	if !g.sess.CanUndo() || g.processing {
		undoColor = core.ColorGray
	}
	dst.DrawTextColor(boardX+boardW-len(undo), 2, undo, undoColor)

	// Cursor marker above the selected column
	if !g.sess.GameOver() {
		x := boardX + 1 + g.cursor*cellWidth + cellWidth/2 - 1
		marker := core.Cell{Rune: '▼', Color: core.ValueColor(g.sess.NextValue)}
		if g.processing {
			marker.Color = core.ColorGray
		}
		dst.SetCell(x, 3, marker)
	}
}

func (g *Game) undoLeft() int {
	if g.sess.Undo == nil {
		return 0
	}
	return g.sess.UndoAllowance
}

func (g *Game) renderBoard(dst *core.Screen, box core.Rect) {
	dims := g.display.Dims
	borderColor := core.ColorGray
	if g.sess.GameOver() && !g.processing {
		borderColor = core.ColorRed
	}
	dst.DrawBox(box, borderColor)

	danger := dangerRows(dims.Height)
	for row := range dims.Height {
		for col := range dims.Width {
			x := box.X + 1 + col*cellWidth
			y := box.Y + 1 + row

			b, ok := g.display.At(row, col)
			if !ok {
				dot := core.Cell{Rune: '·', Color: core.ColorGray}
				if row < danger {
					dot.Color = core.ColorRed
				}
				dst.SetCell(x+cellWidth/2-1, y, dot)
				continue
			}
			dst.DrawTextColor(x, y, g.blockLabel(b), core.ValueColor(b.Value))
		}
	}
}

// dangerRows returns how many rows from the top form the danger zone.
func dangerRows(height int) int {
	return max(1, height/4)
}

// blockLabel centers the value in a cell; blocks created by the frame on
// screen are bracketed.
func (g *Game) blockLabel(b engine.Block) string {
	text := strconv.Itoa(b.Value)
	if g.processing && slices.Contains(g.highlight.Created, b.ID) {
		text = "[" + text + "]"
	}
	pad := cellWidth - len(text)
	if pad < 0 {
		return text[:cellWidth]
	}
	left := pad / 2
	return fmt.Sprintf("%*s%s%*s", left, "", text, pad-left, "")
}

func (g *Game) renderFooter(dst *core.Screen, y int) {
	if g.combo >= 2 {
		dst.DrawTextCentered(y, fmt.Sprintf("COMBO x%d!", g.combo), core.ColorBrightYellow)
	}

	switch {
	case g.sess.GameOver() && !g.processing:
		dst.DrawTextCentered(y+1, "GAME OVER - press R to restart", core.ColorBrightRed)
	case g.paused:
		dst.DrawTextCentered(y+1, "PAUSED - press P to resume", core.ColorYellow)
	}

	help := fmt.Sprintf("←/→ move  space drop  1-%d column  u undo  r restart  q quit", g.display.Dims.Width)
	dst.DrawTextCentered(y+2, help, core.ColorGray)
}
