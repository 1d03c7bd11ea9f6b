package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadEngine loads the engine configuration.
// Search order: customPath -> ~/.brawl/configs/engine.yaml -> ./configs/engine.yaml -> embedded default
func LoadEngine(customPath string) (Engine, error) {
	cfg, err := load("engine.yaml", customPath, defaultEngineYAML, DefaultEngine)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadBots loads bot tuning.
// Search order: customPath -> ~/.brawl/configs/bots.yaml -> ./configs/bots.yaml -> embedded default
func LoadBots(customPath string) (BotConfig, error) {
	return load("bots.yaml", customPath, defaultBotsYAML, DefaultBots)
}

// load reads the first config found. The file is decoded over the hardcoded
// default so missing keys keep their default values.
func load[T any](filename, customPath string, embedded []byte, fallback func() T) (T, error) {
	cfg := fallback()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath(filename); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			user := fallback()
			if err := yaml.Unmarshal(data, &user); err == nil {
				return user, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", filename)); err == nil {
		local := fallback()
		if err := yaml.Unmarshal(data, &local); err == nil {
			return local, nil
		}
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(embedded, &cfg); err != nil {
		return fallback(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".brawl", "configs", filename)
}

// ApplyBotPreset modifies the bot config based on a difficulty preset.
func ApplyBotPreset(cfg *BotConfig, preset DifficultyPreset) {
	if preset == DifficultyFixed {
		cfg.Difficulty.Enabled = false
	} else {
		cfg.Difficulty.Enabled = true
		cfg.Difficulty.InitialLevel = InitialLevelForPreset(preset)
	}

	// Adjust reflexes based on difficulty
	switch preset {
	case DifficultyEasy:
		cfg.ReactionFrames = 30
		cfg.ShieldChance = 0.05
	case DifficultyHard:
		cfg.ReactionFrames = 10
		cfg.ShieldChance = 0.4
	}
}
