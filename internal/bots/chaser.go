package bots

import (
	"math"

	"github.com/vovakirdan/brawl-core/internal/config"
	"github.com/vovakirdan/brawl-core/internal/core"
	"github.com/vovakirdan/brawl-core/internal/registry"
)

// maxReaction bounds the view history a chaser keeps.
const maxReaction = 64

// Chaser walks toward the nearest opponent, attacks in range, shields
// incoming attacks and jumps back when it is off the stage. It reacts to
// what it saw ReactionFrames ago and sharpens as the match goes on.
type Chaser struct {
	cfg    config.BotConfig
	dm     *config.DifficultyManager
	player int
	seed   uint64
	seen   []registry.View
}

// NewChaser creates a chaser tuned by cfg.
func NewChaser(cfg config.BotConfig) *Chaser {
	return &Chaser{cfg: cfg, dm: config.NewDifficultyManager(cfg)}
}

func (c *Chaser) ID() string    { return "chaser" }
func (c *Chaser) Title() string { return "Chaser" }

func (c *Chaser) Reset(player int, seed uint64) {
	c.player = player
	c.seed = seed
	c.seen = c.seen[:0]
}

// delayed returns the view from frames ago, or the oldest one kept.
func (c *Chaser) delayed(frames int) registry.View {
	i := max(len(c.seen)-1-frames, 0)
	return c.seen[i]
}

func (c *Chaser) Input(view registry.View) core.ControllerInput {
	in := core.ControllerInput{PluggedIn: true}
	if len(c.seen) == maxReaction {
		c.seen = append(c.seen[:0], c.seen[1:]...)
	}
	c.seen = append(c.seen, view)
	if view.Self.Eliminated {
		return in
	}

	level := c.dm.Level(view.Self.Damage, view.Frame)
	rng := frameRand(c.seed, c.player, view.Frame)
	self := view.Self.Position

	// Recover toward the middle of the stage when there is no floor below.
	if st := view.Stage; st != nil {
		if _, ok := st.FloorBelow(self); !ok {
			mid := (st.Camera.Left() + st.Camera.Right()) / 2
			in.StickX = sign(mid - self.X)
			in.StickY = 1
			in.X = view.Frame%8 == 0
			return in
		}
	}

	target, ok := nearest(self, c.delayed(c.dm.ReactionFrames(level)).Others)
	if !ok {
		return in
	}
	dx := target.Position.X - self.X
	dy := target.Position.Y - self.Y
	reach := c.cfg.AttackRange

	switch {
	case target.Attacking && math.Hypot(dx, dy) < 2*reach && rng.Float64() < c.dm.ShieldChance(level):
		in.L = true
		in.LTrigger = 1
	case math.Abs(dx) < reach && math.Abs(dy) < reach:
		// Release A every other frame so each swing is a new press.
		if view.Frame%2 == 0 && rng.Float64() < c.dm.Aggression(level) {
			in.A = true
			in.StickX = sign(dx) * 0.5
			if dy > reach/2 {
				in.StickX = 0
				in.StickY = 0.5
			}
		}
	default:
		in.StickX = sign(dx)
		if dy > reach && rng.Float64() < c.cfg.JumpChance*4 {
			in.X = true
		}
	}
	return in
}

// nearest returns the closest player that is still in the match.
func nearest(from core.Point, players []registry.PlayerView) (registry.PlayerView, bool) {
	best, bestDist := registry.PlayerView{}, math.Inf(1)
	for _, p := range players {
		if p.Eliminated {
			continue
		}
		if d := from.Dist(p.Position); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best, !math.IsInf(bestDist, 1)
}
