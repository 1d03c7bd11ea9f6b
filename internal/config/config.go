// Package config provides YAML-based engine configuration loading and
// bot difficulty management.
package config

import (
	"fmt"
	"net"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/brawl-core/internal/core"
)

// Engine contains the settings shared by every command.
type Engine struct {
	TickRate         int           `yaml:"tick_rate"`
	MaxHistoryFrames int           `yaml:"max_history_frames"` // 0 keeps the whole match
	LogLevel         string        `yaml:"log_level"`
	DBPath           string        `yaml:"db_path"`
	HostKey          string        `yaml:"host_key"`
	Content          string        `yaml:"content"` // custom content package, empty for the default
	SSH              SSHConfig     `yaml:"ssh"`
	Relay            RelayConfig   `yaml:"relay"`
	Netplay          NetplayConfig `yaml:"netplay"`
	Match            MatchConfig   `yaml:"match"`
}

// SSHConfig is where the SSH server listens.
type SSHConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns host:port.
func (c SSHConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Set parses a host:port address. An empty host listens on every interface.
func (c *SSHConfig) Set(addr string) error {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("config: ssh address: %w", err)
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 0 || n > 65535 {
		return fmt.Errorf("config: ssh port %q out of range", port)
	}
	c.Host, c.Port = host, n
	return nil
}

// RelayConfig configures the netplay relay server and the address clients dial.
type RelayConfig struct {
	Listen     string `yaml:"listen"`
	URL        string `yaml:"url"`
	LobbyTTL   int    `yaml:"lobby_ttl_seconds"`
	MaxLobbies int    `yaml:"max_lobbies"`
}

// NetplayConfig tunes rollback.
type NetplayConfig struct {
	InputDelay  int `yaml:"input_delay"`  // frames local input is held back
	MaxRollback int `yaml:"max_rollback"` // frames a late input may rewind
	MaxLead     int `yaml:"max_lead"`     // frames ahead of the last confirmed remote input before waiting
}

// MatchConfig is the default match for play and simulate.
type MatchConfig struct {
	Stage      string           `yaml:"stage"`
	Fighter    string           `yaml:"fighter"`
	Bots       []string         `yaml:"bots"`
	Difficulty DifficultyPreset `yaml:"difficulty"`
}

// Level parses LogLevel.
func (e Engine) Level() log.Level {
	level, err := log.ParseLevel(e.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// Runtime returns the match settings for a seed.
func (e Engine) Runtime(seed uint64) core.RuntimeConfig {
	cfg := core.DefaultConfig()
	if e.TickRate > 0 {
		cfg.TickRate = e.TickRate
	}
	cfg.MaxHistoryFrames = e.MaxHistoryFrames
	cfg.Seed = seed
	return cfg
}

// Validate checks value ranges.
func (e Engine) Validate() error {
	if e.TickRate <= 0 || e.TickRate > 1000 {
		return fmt.Errorf("config: tick_rate %d out of range", e.TickRate)
	}
	if e.MaxHistoryFrames < 0 {
		return fmt.Errorf("config: negative max_history_frames")
	}
	if _, err := log.ParseLevel(e.LogLevel); err != nil {
		return fmt.Errorf("config: log_level: %w", err)
	}
	if e.SSH.Port < 0 || e.SSH.Port > 65535 {
		return fmt.Errorf("config: ssh port %d out of range", e.SSH.Port)
	}
	n := e.Netplay
	if n.InputDelay < 0 || n.MaxRollback < 1 || n.MaxLead < 1 {
		return fmt.Errorf("config: netplay needs input_delay >= 0, max_rollback and max_lead >= 1")
	}
	if e.MaxHistoryFrames > 0 && e.MaxHistoryFrames <= n.MaxRollback {
		return fmt.Errorf("config: max_history_frames must exceed netplay.max_rollback")
	}
	if !e.Match.Difficulty.Valid() {
		return fmt.Errorf("config: unknown difficulty %q", e.Match.Difficulty)
	}
	return nil
}

// BotConfig tunes the built-in bots.
type BotConfig struct {
	ReactionFrames int              `yaml:"reaction_frames"` // frames between seeing and reacting
	Aggression     float64          `yaml:"aggression"`      // 0..1 chance to attack when in range
	ShieldChance   float64          `yaml:"shield_chance"`   // 0..1 chance to shield an incoming attack
	JumpChance     float64          `yaml:"jump_chance"`     // 0..1 chance to jump per decision
	AttackRange    float64          `yaml:"attack_range"`
	Difficulty     DifficultyConfig `yaml:"difficulty"`
}

// DifficultyConfig defines how bots sharpen over a match.
type DifficultyConfig struct {
	Enabled      bool              `yaml:"enabled"`
	InitialLevel float64           `yaml:"initial_level"` // 0.0 = easy, 1.0 = hard
	Progression  ProgressionConfig `yaml:"progression"`
	Scaling      ScalingConfig     `yaml:"scaling"`
}

// ProgressionConfig defines how difficulty increases over a match.
type ProgressionConfig struct {
	Type  string `yaml:"type"`   // "damage", "time", or "none"
	MaxAt int    `yaml:"max_at"` // damage taken or frames at which max difficulty is reached
}

// ScalingConfig defines the magnitude of difficulty changes at level 1.0.
type ScalingConfig struct {
	ReactionReduction int     `yaml:"reaction_reduction"` // frames removed from reaction_frames
	AggressionBoost   float64 `yaml:"aggression_boost"`   // added to aggression
	ShieldBoost       float64 `yaml:"shield_boost"`       // added to shield_chance
}
