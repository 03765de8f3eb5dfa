package config

import (
	_ "embed"
)

//go:embed defaults/dropmerge.yaml
var defaultClassicYAML []byte

//go:embed defaults/dropmerge_tall.yaml
var defaultTallYAML []byte

// DefaultConfig returns the classic 5x8 configuration.
func DefaultConfig() GameConfig {
	return GameConfig{
		Grid:   GridConfig{Width: 5, Height: 8},
		Values: []int{2, 4, 8},
		Turn:   TurnConfig{MaxCycles: 10},
		Pacing: PacingConfig{DropMS: 300, CycleMS: 200},
		Undo:   UndoConfig{Allowance: 1},
	}
}

// DefaultTallConfig returns the 5x10 configuration.
func DefaultTallConfig() GameConfig {
	cfg := DefaultConfig()
	cfg.Grid.Height = 10
	return cfg
}

// DefaultFor returns the hard-coded default for a variant id.
func DefaultFor(variantID string) GameConfig {
	if variantID == "dropmerge_tall" {
		return DefaultTallConfig()
	}
	return DefaultConfig()
}

// GetDefaultYAML returns the embedded default YAML for a variant.
func GetDefaultYAML(variantID string) []byte {
	switch variantID {
	case "dropmerge":
		return defaultClassicYAML
	case "dropmerge_tall":
		return defaultTallYAML
	default:
		return nil
	}
}
