// Package bots implements the built-in computer players. Importing it
// registers idle, random and chaser with the registry.
package bots

import (
	"math/rand/v2"

	"github.com/vovakirdan/brawl-core/internal/config"
	"github.com/vovakirdan/brawl-core/internal/core"
	"github.com/vovakirdan/brawl-core/internal/registry"
)

// frameRand returns a generator that depends only on the seed, player and
// frame, so a bot gives the same input for a frame no matter how often it
// is asked.
func frameRand(seed uint64, player, frame int) *rand.Rand {
	return rand.New(rand.NewPCG(seed^uint64(player)<<32, uint64(frame)))
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// Idle stands still with its controller plugged in.
type Idle struct{}

func (Idle) ID() string        { return "idle" }
func (Idle) Title() string     { return "Idle" }
func (Idle) Reset(int, uint64) {}

func (Idle) Input(registry.View) core.ControllerInput {
	return core.ControllerInput{PluggedIn: true}
}

// Random mashes buttons and wiggles the stick.
type Random struct {
	player int
	seed   uint64
	jump   float64
}

// NewRandom creates a random bot.
func NewRandom(cfg config.BotConfig) *Random {
	return &Random{jump: cfg.JumpChance}
}

func (r *Random) ID() string    { return "random" }
func (r *Random) Title() string { return "Random" }

func (r *Random) Reset(player int, seed uint64) {
	r.player = player
	r.seed = seed
}

func (r *Random) Input(view registry.View) core.ControllerInput {
	rng := frameRand(r.seed, r.player, view.Frame)
	return core.ControllerInput{
		PluggedIn: true,
		A:         rng.IntN(8) == 0,
		B:         rng.IntN(20) == 0,
		X:         rng.Float64() < r.jump,
		Z:         rng.IntN(40) == 0,
		L:         rng.IntN(25) == 0,
		StickX:    float64(rng.IntN(3) - 1),
		StickY:    float64(rng.IntN(3)-1) * float64(rng.IntN(2)),
	}
}

func init() {
	registry.Register("idle", func(config.BotConfig) registry.Bot {
		return Idle{}
	})
	registry.Register("random", func(cfg config.BotConfig) registry.Bot {
		return NewRandom(cfg)
	})
	registry.Register("chaser", func(cfg config.BotConfig) registry.Bot {
		return NewChaser(cfg)
	})
}
