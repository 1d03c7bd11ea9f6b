package config

import "math"

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// Valid reports whether the preset is known. Empty means normal.
func (p DifficultyPreset) Valid() bool {
	switch p {
	case "", DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return true
	}
	return false
}

// InitialLevelForPreset returns the initial_level for a difficulty preset.
func InitialLevelForPreset(preset DifficultyPreset) float64 {
	switch preset {
	case DifficultyEasy:
		return 0.0
	case DifficultyNormal, "":
		return 0.3
	case DifficultyHard:
		return 0.7
	default:
		return 0.0
	}
}

// IsFixedPreset returns true if the preset disables progression.
func IsFixedPreset(preset DifficultyPreset) bool {
	return preset == DifficultyFixed
}

// DifficultyManager calculates bot parameters as a match goes on.
type DifficultyManager struct {
	bot          BotConfig
	initialLevel float64
}

// NewDifficultyManager creates a new difficulty manager.
func NewDifficultyManager(bot BotConfig) *DifficultyManager {
	return &DifficultyManager{
		bot:          bot,
		initialLevel: clampF(bot.Difficulty.InitialLevel, 0.0, 1.0),
	}
}

// SetInitialLevel overrides the initial difficulty level (0.0 to 1.0).
func (d *DifficultyManager) SetInitialLevel(level float64) {
	d.initialLevel = clampF(level, 0.0, 1.0)
}

// IsEnabled returns whether difficulty progression is active.
func (d *DifficultyManager) IsEnabled() bool {
	cfg := d.bot.Difficulty
	return cfg.Enabled && cfg.Progression.Type != "none"
}

// Level returns the difficulty level (0.0 to 1.0) given the damage the bot
// has taken and the current frame.
func (d *DifficultyManager) Level(damage float64, frame int) float64 {
	if !d.IsEnabled() {
		return d.initialLevel
	}

	cfg := d.bot.Difficulty
	maxAt := float64(cfg.Progression.MaxAt)
	if maxAt <= 0 {
		maxAt = 1
	}

	var progress float64
	switch cfg.Progression.Type {
	case "damage":
		progress = damage / maxAt
	case "time":
		progress = float64(frame) / maxAt
	default:
		return d.initialLevel
	}
	progress = clampF(progress, 0.0, 1.0)

	return d.initialLevel + progress*(1.0-d.initialLevel)
}

// ReactionFrames returns the reaction delay at a level, never below one frame.
func (d *DifficultyManager) ReactionFrames(level float64) int {
	reduction := int(level * float64(d.bot.Difficulty.Scaling.ReactionReduction))
	return max(d.bot.ReactionFrames-reduction, 1)
}

// Aggression returns the attack chance at a level.
func (d *DifficultyManager) Aggression(level float64) float64 {
	return clampF(d.bot.Aggression+level*d.bot.Difficulty.Scaling.AggressionBoost, 0.0, 1.0)
}

// ShieldChance returns the shield chance at a level.
func (d *DifficultyManager) ShieldChance(level float64) float64 {
	return clampF(d.bot.ShieldChance+level*d.bot.Difficulty.Scaling.ShieldBoost, 0.0, 1.0)
}

// clampF restricts a float64 to [min, max].
func clampF(val, min, max float64) float64 {
	return math.Max(min, math.Min(max, val))
}
