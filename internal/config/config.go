// Package config provides YAML-based configuration for the drop-merge
// variants: grid size, value set, cycle cap, pacing and undo allowance.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/drop-merge/internal/engine"
	"github.com/vovakirdan/drop-merge/internal/session"
)

// GameConfig contains all configuration for one variant.
type GameConfig struct {
	Grid   GridConfig   `yaml:"grid"`
	Values []int        `yaml:"values"`
	Turn   TurnConfig   `yaml:"turn"`
	Pacing PacingConfig `yaml:"pacing"`
	Undo   UndoConfig   `yaml:"undo"`
}

// GridConfig defines the board size.
type GridConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// TurnConfig bounds turn resolution.
type TurnConfig struct {
	MaxCycles int `yaml:"max_cycles"`
}

// PacingConfig defines the delays used when playing back a turn.
type PacingConfig struct {
	DropMS  int `yaml:"drop_ms"`  // Pause after the dropped block lands
	CycleMS int `yaml:"cycle_ms"` // Pause after each merge/gravity frame
}

// UndoConfig defines the undo allowance of a new game.
type UndoConfig struct {
	Allowance int `yaml:"allowance"`
}

// DropDelay returns the post-drop pause.
func (p PacingConfig) DropDelay() time.Duration {
	return time.Duration(p.DropMS) * time.Millisecond
}

// CycleDelay returns the pause between cycle frames.
func (p PacingConfig) CycleDelay() time.Duration {
	return time.Duration(p.CycleMS) * time.Millisecond
}

// Validate rejects configurations that cannot be played.
func (c GameConfig) Validate() error {
	if c.Grid.Width <= 0 || c.Grid.Height <= 0 {
		return fmt.Errorf("config: grid size must be positive, got %dx%d", c.Grid.Width, c.Grid.Height)
	}
	if c.Grid.Width > 9 {
		return fmt.Errorf("config: grid width %d exceeds 9 columns", c.Grid.Width)
	}
	if len(c.Values) == 0 {
		return errors.New("config: values must not be empty")
	}
	for _, v := range c.Values {
		if !engine.IsPowerOfTwo(v) {
			return fmt.Errorf("config: value %d is not a power of two", v)
		}
	}
	if c.Turn.MaxCycles <= 0 {
		return fmt.Errorf("config: turn.max_cycles must be positive, got %d", c.Turn.MaxCycles)
	}
	if c.Pacing.DropMS < 0 || c.Pacing.CycleMS < 0 {
		return errors.New("config: pacing delays must not be negative")
	}
	if c.Undo.Allowance < 0 {
		return fmt.Errorf("config: undo.allowance must not be negative, got %d", c.Undo.Allowance)
	}
	return nil
}

// Rules converts the config to session rules.
func (c GameConfig) Rules() session.Rules {
	return session.Rules{
		Dims:          engine.Dims{Width: c.Grid.Width, Height: c.Grid.Height},
		Values:        append([]int(nil), c.Values...),
		UndoAllowance: c.Undo.Allowance,
		MaxCycles:     c.Turn.MaxCycles,
	}
}

// DifficultyPreset is a named adjustment applied on top of a loaded config.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
)

// ApplyPreset adjusts the undo allowance and value set for a preset.
// Easy grants three undos, hard grants none and adds 16 to the value set.
// Unknown or empty presets leave the config unchanged.
func ApplyPreset(cfg *GameConfig, preset DifficultyPreset) {
	switch preset {
	case DifficultyEasy:
		cfg.Undo.Allowance = 3
	case DifficultyHard:
		cfg.Undo.Allowance = 0
		if cfg.MaxValue() < 16 {
			cfg.Values = append(cfg.Values, 16)
		}
	}
}

// MaxValue returns the largest configured drop value.
func (c GameConfig) MaxValue() int {
	m := 0
	for _, v := range c.Values {
		m = max(m, v)
	}
	return m
}
