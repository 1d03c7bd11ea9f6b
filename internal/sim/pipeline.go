// Package sim advances the entities of a match by one frame: action logic,
// physics against stage surfaces, collision and the messages and spawns that
// follow. It holds no history; the game package snapshots its output.
package sim

import (
	"encoding/binary"
	"math/rand/v2"

	"github.com/vovakirdan/brawl-core/internal/content"
	"github.com/vovakirdan/brawl-core/internal/core"
)

// FrameRng returns the random source for one frame. It depends only on the
// match seed and the frame number, so a re-simulated frame draws the same
// numbers as the original run.
func FrameRng(seed uint64, frame int) *rand.Rand {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[0:8], seed)
	binary.LittleEndian.PutUint64(key[8:16], uint64(frame))
	return rand.New(rand.NewChaCha8(key))
}

// Simulation holds what stays fixed for the whole match.
type Simulation struct {
	Package *content.Package
	Stage   *content.Stage
	Rules   content.Rules
	Seed    uint64
}

// frameStep collects the side effects of every stage of one frame.
type frameStep struct {
	sim     *Simulation
	frame   int
	inputs  []core.PlayerInput
	rng     *rand.Rand
	spawns  []*Entity
	msgs    []Message
	deletes []EntityKey
}

var emptyInput core.PlayerInput

func (f *frameStep) context(env *Entities, key EntityKey, e *Entity) (*StepContext, bool) {
	def := f.sim.Package.Entities[e.State.DefKey]
	if def == nil {
		return nil, false
	}
	input := &emptyInput
	if e.Player != nil && e.Player.ID >= 0 && e.Player.ID < len(f.inputs) {
		input = &f.inputs[e.Player.ID]
	}
	// Each entity gets its own copy so a behavior cannot leak input edits.
	in := *input
	return &StepContext{
		Env:      Env{Entities: env, Package: f.sim.Package, Stage: f.sim.Stage},
		Key:      key,
		Def:      def,
		Input:    &in,
		Rng:      f.rng,
		Frame:    f.frame,
		Rules:    f.sim.Rules,
		Spawns:   &f.spawns,
		Messages: &f.msgs,
	}, true
}

// stage runs fn for every entity of prev on a clone of prev. fn sees prev
// through the context and may only mutate the entity it is given.
func (f *frameStep) stage(prev *Entities, fn func(ctx *StepContext, e *Entity)) *Entities {
	next := prev.Clone()
	for _, key := range prev.Keys() {
		e := next.Get(key)
		ctx, ok := f.context(prev, key, e)
		if !ok {
			continue
		}
		fn(ctx, e)
		if ctx.DeleteSelf {
			f.deletes = append(f.deletes, key)
		}
	}
	f.applyDeletes(next)
	return next
}

func (f *frameStep) applyDeletes(es *Entities) {
	for _, key := range f.deletes {
		es.Remove(key)
	}
	f.deletes = f.deletes[:0]
}

// Step advances the match by one frame. prev is not modified.
//
// Every stage reads the output of the previous stage and writes a fresh
// copy, so an entity never observes another entity's update from the stage
// it is in:
//
//	action   behaviors and hitlag, reading the previous frame
//	grab     item pickups
//	physics  movement, landing, ledge grabs and blast zone
//	ledge    simultaneous grabs of one ledge are resolved
//	collide  box interactions computed on the physics output
//	deliver  messages, then spawned entities are added
func (s *Simulation) Step(prev *Entities, frame int, inputs []core.PlayerInput) *Entities {
	f := &frameStep{sim: s, frame: frame, inputs: inputs, rng: FrameRng(s.Seed, frame)}

	afterAction := f.stage(prev, func(ctx *StepContext, e *Entity) {
		e.actionHitlagStep(ctx)
	})

	grabs := itemGrabCheck(f.env(afterAction))
	afterGrab := f.stage(afterAction, func(ctx *StepContext, e *Entity) {
		other, ok := grabs[ctx.Key]
		if !ok {
			return
		}
		otherEntity := afterAction.Get(other)
		if otherEntity == nil {
			return
		}
		id, hasID := otherEntity.PlayerID()
		e.itemGrab(ctx, other, id, hasID)
	})

	afterPhysics := f.stage(afterGrab, func(ctx *StepContext, e *Entity) {
		e.physicsStep(ctx)
	})
	resolveLedgeGrabs(afterGrab, afterPhysics)

	results := collisionCheck(f.env(afterPhysics), s.Rules)
	afterCollision := f.stage(afterPhysics, func(ctx *StepContext, e *Entity) {
		if rs, ok := results[ctx.Key]; ok {
			e.stepCollision(ctx, rs)
		}
	})

	out := afterCollision.Clone()
	msgs := f.msgs
	f.msgs = nil
	for _, msg := range msgs {
		e := out.Get(msg.Recipient)
		if e == nil {
			continue
		}
		ctx, ok := f.context(afterCollision, msg.Recipient, e)
		if !ok {
			continue
		}
		e.processMessage(ctx, msg)
		if ctx.DeleteSelf {
			f.deletes = append(f.deletes, msg.Recipient)
		}
	}
	f.applyDeletes(out)

	for _, e := range f.spawns {
		out.Insert(e)
	}
	return out
}

func (f *frameStep) env(es *Entities) Env {
	return Env{Entities: es, Package: f.sim.Package, Stage: f.sim.Stage}
}

// resolveLedgeGrabs lets only one player take a ledge that several players
// grabbed in the same frame. The player with the lowest key keeps it; the
// others are put back to where they were before physics ran and will see
// the ledge taken next frame.
func resolveLedgeGrabs(before, after *Entities) {
	type ledge struct {
		platform  int
		faceRight bool
	}
	winners := make(map[ledge]EntityKey)
	for _, key := range after.Keys() {
		e := after.Get(key)
		if e.Player == nil || !e.Player.Body.IsLedge() {
			continue
		}
		prior := before.Get(key)
		if prior == nil || prior.Player == nil || prior.Player.Body.IsLedge() {
			continue
		}
		l := ledge{platform: e.Player.Body.Location.Platform, faceRight: e.Player.Body.FaceRight}
		if _, taken := winners[l]; !taken {
			winners[l] = key
			continue
		}
		after.Slots[key.Index].Entity = prior.Clone()
	}
}
