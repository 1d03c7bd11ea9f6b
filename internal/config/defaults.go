package config

import (
	_ "embed"
)

//go:embed defaults/engine.yaml
var defaultEngineYAML []byte

//go:embed defaults/bots.yaml
var defaultBotsYAML []byte

// DefaultEngine returns the default engine configuration.
func DefaultEngine() Engine {
	return Engine{
		TickRate:         60,
		MaxHistoryFrames: 3600,
		LogLevel:         "info",
		DBPath:           "brawl.db",
		HostKey:          ".ssh/brawl_ed25519",
		SSH: SSHConfig{
			Host: "0.0.0.0",
			Port: 23235,
		},
		Relay: RelayConfig{
			Listen:     ":8765",
			URL:        "ws://localhost:8765/ws",
			LobbyTTL:   300,
			MaxLobbies: 256,
		},
		Netplay: NetplayConfig{
			InputDelay:  2,
			MaxRollback: 8,
			MaxLead:     10,
		},
		Match: MatchConfig{
			Stage:      "battlefield",
			Fighter:    "brawler",
			Bots:       []string{"chaser"},
			Difficulty: DifficultyNormal,
		},
	}
}

// DefaultBots returns the default bot configuration.
func DefaultBots() BotConfig {
	return BotConfig{
		ReactionFrames: 18,
		Aggression:     0.35,
		ShieldChance:   0.2,
		JumpChance:     0.05,
		AttackRange:    14,
		Difficulty: DifficultyConfig{
			Enabled:      true,
			InitialLevel: 0.3,
			Progression: ProgressionConfig{
				Type:  "damage",
				MaxAt: 150,
			},
			Scaling: ScalingConfig{
				ReactionReduction: 12,
				AggressionBoost:   0.4,
				ShieldBoost:       0.4,
			},
		},
	}
}
