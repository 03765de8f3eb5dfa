package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load loads the configuration of a variant.
// Search order: customPath -> ~/.dropmerge/configs/<id>.yaml ->
// ./configs/<id>.yaml -> embedded default -> hard-coded default.
// Files are decoded over the variant default, so omitted keys keep their
// default values. Only an explicit customPath can fail.
func Load(variantID, customPath string) (GameConfig, error) {
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return GameConfig{}, fmt.Errorf("config: cannot read %s: %w", customPath, err)
		}
		cfg, err := decode(variantID, data)
		if err != nil {
			return GameConfig{}, fmt.Errorf("config: %s: %w", customPath, err)
		}
		return cfg, nil
	}

	filename := variantID + ".yaml"

	if userCfgPath := userConfigPath(filename); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := decode(variantID, data); err == nil {
				return cfg, nil
			}
		}
	}

	if data, err := os.ReadFile(filepath.Join("configs", filename)); err == nil {
		if cfg, err := decode(variantID, data); err == nil {
			return cfg, nil
		}
	}

	if data := GetDefaultYAML(variantID); data != nil {
		if cfg, err := decode(variantID, data); err == nil {
			return cfg, nil
		}
	}

	return DefaultFor(variantID), nil
}

// decode parses YAML over the variant default and validates the result.
func decode(variantID string, data []byte) (GameConfig, error) {
	cfg := DefaultFor(variantID)
	// A values list in the file replaces the default rather than merging into it.
	cfg.Values = nil
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return GameConfig{}, fmt.Errorf("parse: %w", err)
	}
	if len(cfg.Values) == 0 {
		cfg.Values = DefaultFor(variantID).Values
	}
	if err := cfg.Validate(); err != nil {
		return GameConfig{}, err
	}
	return cfg, nil
}

// userConfigPath returns the per-user config file path, or "" when the home
// directory is unknown.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".dropmerge", "configs", filename)
}
