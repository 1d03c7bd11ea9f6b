package content

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Goal decides how a match is won.
type Goal string

const (
	GoalLastManStanding Goal = "last_man_standing"
	GoalKillDeathScore  Goal = "kill_death_score"
)

// PauseMode controls whether players may pause a local match.
type PauseMode string

const (
	PauseOn   PauseMode = "on"
	PauseOff  PauseMode = "off"
	PauseHold PauseMode = "hold" // start must be held for a second
)

// Teams configures team play.
type Teams struct {
	Enabled      bool `yaml:"enabled"`
	FriendlyFire bool `yaml:"friendly_fire"`
}

// Rules are the match settings shared by every participant.
type Rules struct {
	Goal             Goal      `yaml:"goal" json:"goal"`
	StockCount       int       `yaml:"stock_count" json:"stock_count"`               // 0 means unlimited
	TimeLimitSeconds int       `yaml:"time_limit_seconds" json:"time_limit_seconds"` // 0 means none
	BestOf           int       `yaml:"best_of" json:"best_of"`
	Pause            PauseMode `yaml:"pause" json:"pause"`
	Teams            Teams     `yaml:"teams" json:"teams"`
	GrabClang        bool      `yaml:"grab_clang" json:"grab_clang"`
}

// DefaultRules returns a four stock, eight minute match.
func DefaultRules() Rules {
	return Rules{
		Goal:             GoalLastManStanding,
		StockCount:       4,
		TimeLimitSeconds: 480,
		BestOf:           1,
		Pause:            PauseOn,
	}
}

// UnmarshalYAML fills unspecified fields with DefaultRules values.
func (r *Rules) UnmarshalYAML(value *yaml.Node) error {
	*r = DefaultRules()
	type plain Rules
	return value.Decode((*plain)(r))
}

// TimeLimitFrames returns the time limit in frames at 60 frames per second.
func (r Rules) TimeLimitFrames() (int, bool) {
	if r.TimeLimitSeconds <= 0 {
		return 0, false
	}
	return r.TimeLimitSeconds * 60, true
}

// Stocks returns the stock count players start with, or -1 when unlimited.
func (r Rules) Stocks() int {
	if r.StockCount <= 0 {
		return -1
	}
	return r.StockCount
}

// Validate checks the rules for unknown enum values.
func (r Rules) Validate() error {
	switch r.Goal {
	case GoalLastManStanding, GoalKillDeathScore:
	default:
		return fmt.Errorf("rules: unknown goal %q", r.Goal)
	}
	switch r.Pause {
	case PauseOn, PauseOff, PauseHold:
	default:
		return fmt.Errorf("rules: unknown pause mode %q", r.Pause)
	}
	if r.StockCount < 0 || r.TimeLimitSeconds < 0 || r.BestOf < 0 {
		return fmt.Errorf("rules: negative value")
	}
	return nil
}
