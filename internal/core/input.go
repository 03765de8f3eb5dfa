package core

// Action is a semantic input, decoupled from physical keys.
type Action int

const (
	ActionNone    Action = iota
	ActionLeft           // Move the drop cursor left
	ActionRight          // Move the drop cursor right
	ActionDrop           // Drop at the cursor
	ActionColumn         // Drop into InputFrame.Column
	ActionUndo           // Undo the last turn
	ActionUp             // Menu navigation
	ActionDown           // Menu navigation
	ActionConfirm        // Confirm selection in a menu
	ActionBack           // Leave the game for the menu
	ActionRestart        // Start a new game
	ActionPause          // Toggle pause
	ActionQuit           // Exit
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionDrop:
		return "Drop"
	case ActionColumn:
		return "Column"
	case ActionUndo:
		return "Undo"
	case ActionUp:
		return "Up"
	case ActionDown:
		return "Down"
	case ActionConfirm:
		return "Confirm"
	case ActionBack:
		return "Back"
	case ActionRestart:
		return "Restart"
	case ActionPause:
		return "Pause"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// InputFrame collects the actions triggered during one tick.
type InputFrame struct {
	Actions map[Action]bool
	// Column is the target of ActionColumn (0-based).
	Column int
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{Actions: make(map[Action]bool)}
}

// Set marks an action as triggered.
func (f *InputFrame) Set(a Action) {
	if f.Actions == nil {
		f.Actions = make(map[Action]bool)
	}
	f.Actions[a] = true
}

// SetColumn requests a drop straight into col.
func (f *InputFrame) SetColumn(col int) {
	f.Set(ActionColumn)
	f.Column = col
}

// Has reports whether the action was triggered.
func (f InputFrame) Has(a Action) bool {
	return f.Actions[a]
}

// Clear resets the frame for the next tick.
func (f *InputFrame) Clear() {
	clear(f.Actions)
	f.Column = 0
}

// Empty reports whether no action was triggered.
func (f InputFrame) Empty() bool {
	for _, on := range f.Actions {
		if on {
			return false
		}
	}
	return true
}
