package ws

import (
	"github.com/vovakirdan/drop-merge/internal/engine"
	"github.com/vovakirdan/drop-merge/internal/session"
)

// Message types.
const (
	TypeDrop    = "drop"
	TypeUndo    = "undo"
	TypeRestart = "restart"

	TypeState = "state"
	TypeFrame = "frame"
	TypeCombo = "combo"
	TypeError = "error"
)

// ClientMessage is a request from the player.
type ClientMessage struct {
	Type string `json:"type"`
	Col  int    `json:"col,omitempty"`
}

// StateMessage describes the settled session.
type StateMessage struct {
	Type          string         `json:"type"`
	Variant       string         `json:"variant"`
	Dims          engine.Dims    `json:"dims"`
	Blocks        []engine.Block `json:"blocks"`
	Score         int            `json:"score"`
	HighScore     int            `json:"highScore"`
	NextValue     int            `json:"nextValue"`
	Phase         session.Phase  `json:"phase"`
	CanUndo       bool           `json:"canUndo"`
	UndoAllowance int            `json:"undoAllowance"`
}

// FrameMessage is one step of a turn. Score is the running score once the
// frame has been applied.
type FrameMessage struct {
	Type   string         `json:"type"`
	Kind   string         `json:"kind"`
	Blocks []engine.Block `json:"blocks"`
	Diff   engine.Diff    `json:"diff"`
	Scored int            `json:"scored"`
	Combo  int            `json:"combo"`
	Score  int            `json:"score"`
}

// ComboMessage announces a combo level of 2 or more.
type ComboMessage struct {
	Type  string `json:"type"`
	Level int    `json:"level"`
}

// ErrorMessage reports a rejected request. The session is unchanged.
type ErrorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func stateMessage(variant string, s session.Session) StateMessage {
	blocks := s.Grid.Blocks
	if blocks == nil {
		blocks = []engine.Block{}
	}
	return StateMessage{
		Type:          TypeState,
		Variant:       variant,
		Dims:          s.Grid.Dims,
		Blocks:        blocks,
		Score:         s.Score,
		HighScore:     s.HighScore,
		NextValue:     s.NextValue,
		Phase:         s.Phase,
		CanUndo:       s.CanUndo(),
		UndoAllowance: s.UndoAllowance,
	}
}
