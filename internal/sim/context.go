package sim

import (
	"math/rand/v2"

	"github.com/vovakirdan/brawl-core/internal/content"
	"github.com/vovakirdan/brawl-core/internal/core"
)

// Env is the read-only world an entity observes during one stage of a frame.
type Env struct {
	Entities *Entities
	Package  *content.Package
	Stage    *content.Stage
}

// def returns the definition an entity was created from.
func (env Env) def(e *Entity) *content.EntityDef {
	return env.Package.Entities[e.State.DefKey]
}

// StepContext is everything one entity may read or emit while it is stepped.
// Each entity mutates only itself; effects on other entities go through
// messages and spawns.
type StepContext struct {
	Env

	Key   EntityKey
	Def   *content.EntityDef
	Input *core.PlayerInput
	Rng   *rand.Rand
	Frame int
	Rules content.Rules

	Spawns     *[]*Entity
	Messages   *[]Message
	DeleteSelf bool
}

func (ctx *StepContext) spawn(e *Entity) {
	if ctx.Spawns != nil {
		*ctx.Spawns = append(*ctx.Spawns, e)
	}
}

func (ctx *StepContext) send(recipient EntityKey, contents MessageContents) {
	if ctx.Messages != nil {
		*ctx.Messages = append(*ctx.Messages, Message{Recipient: recipient, Contents: contents})
	}
}

// Message is delivered to its recipient after collision resolution.
type Message struct {
	Recipient EntityKey
	Contents  MessageContents
}

// MessageContents is one of the message types below.
type MessageContents interface {
	message()
}

// PlayerThrown launches a grabbed player.
type PlayerThrown struct {
	Angle    float64
	Damage   float64
	BKB      float64
	KBG      float64
	Attacker EntityKey
}

// PlayerReleased frees a grabbed player without launching it.
type PlayerReleased struct{}

// ItemThrown sends a held item flying.
type ItemThrown struct {
	XVel float64
	YVel float64
}

// ItemDropped lets go of a held item.
type ItemDropped struct{}

func (PlayerThrown) message()   {}
func (PlayerReleased) message() {}
func (ItemThrown) message()     {}
func (ItemDropped) message()    {}
