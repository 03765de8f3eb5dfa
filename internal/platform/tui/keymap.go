package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/drop-merge/internal/core"
)

// KeyMapper translates Bubble Tea key messages to game actions.
type KeyMapper struct{}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{}
}

// MapKey translates a key message to a game action.
// Digit keys 1-9 return ActionColumn with the 0-based column.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) (action core.Action, column int, isQuit bool) {
	key := msg.String()

	switch key {
	case "ctrl+c", "q":
		return core.ActionQuit, 0, true
	}

	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		return core.ActionColumn, int(key[0] - '1'), false
	}

	switch key {
	case "left", "h", "a":
		return core.ActionLeft, 0, false
	case "right", "l", "d":
		return core.ActionRight, 0, false
	case " ", "enter", "down", "s", "j":
		return core.ActionDrop, 0, false
	case "u", "z", "backspace":
		return core.ActionUndo, 0, false
	case "r":
		return core.ActionRestart, 0, false
	case "p":
		return core.ActionPause, 0, false
	case "b", "esc":
		return core.ActionBack, 0, false
	}

	return core.ActionNone, 0, false
}

// MapKeyToFrame updates an input frame based on a key message.
// Returns true if the key was a quit request.
func (km *KeyMapper) MapKeyToFrame(msg tea.KeyMsg, frame *core.InputFrame) bool {
	action, col, isQuit := km.MapKey(msg)
	switch action {
	case core.ActionNone, core.ActionQuit:
	case core.ActionColumn:
		frame.SetColumn(col)
	default:
		frame.Set(action)
	}
	return isQuit
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionBack
	MenuActionScoreboard
	MenuActionQuit
)

// MapKeyToMenuAction translates a key to a menu action.
func (km *KeyMapper) MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	switch msg.String() {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k": // vim-style k for up
		return MenuActionUp
	case "s", "down", "j": // vim-style j for down
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "b", "esc":
		return MenuActionBack
	case "tab":
		return MenuActionScoreboard
	}

	return MenuActionNone
}
