package sim

import (
	"math"

	"github.com/vovakirdan/brawl-core/internal/content"
	"github.com/vovakirdan/brawl-core/internal/core"
)

// Entity is one simulated object. Exactly one of Player, Item or Projectile is set.
type Entity struct {
	Player     *Player     `json:"player,omitempty"`
	Item       *Item       `json:"item,omitempty"`
	Projectile *Projectile `json:"projectile,omitempty"`
	State      ActionState `json:"state"`
}

// Clone returns a deep copy of the entity.
func (e *Entity) Clone() *Entity {
	out := &Entity{State: e.State.clone()}
	switch {
	case e.Player != nil:
		out.Player = e.Player.clone()
	case e.Item != nil:
		item := *e.Item
		item.Body = e.Item.Body.clone()
		if e.Item.OwnerID != nil {
			id := *e.Item.OwnerID
			item.OwnerID = &id
		}
		out.Item = &item
	case e.Projectile != nil:
		projectile := *e.Projectile
		if e.Projectile.OwnerID != nil {
			id := *e.Projectile.OwnerID
			projectile.OwnerID = &id
		}
		out.Projectile = &projectile
	}
	return out
}

// Kind returns a short name of the entity's variant.
func (e *Entity) Kind() string {
	switch {
	case e.Player != nil:
		return "player"
	case e.Item != nil:
		return "item"
	default:
		return "projectile"
	}
}

// Body returns the entity's body, or nil for projectiles.
func (e *Entity) Body() *Body {
	switch {
	case e.Player != nil:
		return &e.Player.Body
	case e.Item != nil:
		return &e.Item.Body
	}
	return nil
}

// FaceRight reports the direction the entity faces.
func (e *Entity) FaceRight() bool {
	if e.Projectile != nil {
		angle := math.Mod(e.Projectile.Angle, 2*math.Pi)
		if angle < 0 {
			angle += 2 * math.Pi
		}
		return !(angle > math.Pi/2 && angle < math.Pi*3/2)
	}
	if body := e.Body(); body != nil {
		return body.FaceRight
	}
	return true
}

func (e *Entity) relative(v float64) float64 {
	if e.FaceRight() {
		return v
	}
	return -v
}

// BPS returns the entity's base position in world coordinates.
func (e *Entity) BPS(env Env) core.Point {
	if e.Projectile != nil {
		return core.Point{X: e.Projectile.X, Y: e.Projectile.Y}
	}
	body := e.Body()
	frame := e.State.frameData(env.def(e))
	return body.bps(env, frame, &e.State)
}

// grabbingPoint is where a grabbing player holds its victim.
func (e *Entity) grabbingPoint(env Env) core.Point {
	if e.Player == nil {
		return core.Point{}
	}
	p := e.BPS(env)
	if frame := e.State.frameData(env.def(e)); frame != nil {
		p.X += e.relative(frame.Grabbing.X)
		p.Y += frame.Grabbing.Y
	}
	return p
}

// PlayerID returns the id of the player, or of the player owning an item or projectile.
func (e *Entity) PlayerID() (int, bool) {
	switch {
	case e.Player != nil:
		return e.Player.ID, true
	case e.Item != nil && e.Item.OwnerID != nil:
		return *e.Item.OwnerID, true
	case e.Projectile != nil && e.Projectile.OwnerID != nil:
		return *e.Projectile.OwnerID, true
	}
	return 0, false
}

// Team returns the player's team. Items and projectiles are on team 0.
func (e *Entity) Team() int {
	if e.Player != nil {
		return e.Player.Team
	}
	return 0
}

func (e *Entity) canHit(other *Entity, rules content.Rules) bool {
	id, ok := e.PlayerID()
	otherID, otherOK := other.PlayerID()
	if id == otherID && ok == otherOK {
		return false
	}
	if rules.Teams.Enabled && !rules.Teams.FriendlyFire && e.Player != nil && other.Player != nil {
		return e.Player.Team != other.Player.Team
	}
	return true
}

func (e *Entity) frameAngle(env Env) float64 {
	frame := e.State.frameData(env.def(e))
	if frame == nil {
		return 0
	}
	if e.Projectile != nil {
		return e.Projectile.Angle
	}
	return e.Body().angle(frame, env.Stage)
}

// relativeFrame returns the current frame with boxes mirrored to the entity's
// facing and rotated to its angle.
func (e *Entity) relativeFrame(env Env) content.ActionFrame {
	frame := e.State.frameData(env.def(e))
	if frame == nil {
		return content.DefaultActionFrame()
	}
	out := *frame
	angle := e.frameAngle(env)
	sin, cos := math.Sincos(angle)

	out.Boxes = make([]content.CollisionBox, len(frame.Boxes))
	for i, box := range frame.Boxes {
		x := e.relative(box.Point.X)
		y := box.Point.Y
		box.Point = core.Point{X: x*cos - y*sin, Y: x*sin + y*cos}
		if box.Hit != nil {
			hit := *box.Hit
			if !e.FaceRight() {
				hit.Angle = 180 - hit.Angle
			}
			box.Hit = &hit
		}
		out.Boxes[i] = box
	}

	if frame.ItemGrabBox != nil {
		grab := *frame.ItemGrabBox
		grab.X1 = e.relative(grab.X1)
		grab.X2 = e.relative(grab.X2)
		out.ItemGrabBox = &grab
	}
	return out
}

// itemGrabBox returns the item grab box in world coordinates.
func (e *Entity) itemGrabBox(env Env) (core.Box, bool) {
	frame := e.relativeFrame(env)
	if frame.ItemGrabBox == nil {
		return core.Box{}, false
	}
	return frame.ItemGrabBox.Translate(e.BPS(env)), true
}

// CamArea returns the area the camera must include for this entity.
func (e *Entity) CamArea(env Env, camMax core.Box) (core.Box, bool) {
	if e.Player == nil {
		return core.Box{}, false
	}
	return e.Player.camArea(env, env.def(e), &e.State, camMax)
}

// actionHitlagStep runs one frame of action logic, or counts hitlag down.
func (e *Entity) actionHitlagStep(ctx *StepContext) {
	e.State.normalize(ctx.Def)

	if body := e.Body(); body != nil {
		body.FramesSinceHit++
		if body.FramesSinceHit > 60 {
			body.HitAnglePreDI = nil
			body.HitAnglePostDI = nil
		}
	}

	e.State.Hitlag.Step(ctx.Rng)
	if e.State.Hitlag.Active() {
		return
	}

	if e.Player != nil {
		e.Player.tickTimers(ctx, &e.State)
	}
	main := e.actionStep(ctx)
	if main == nil && e.State.lastFrame(ctx.Def) {
		main = e.actionExpired(ctx)
	}

	var secondary *ActionResult
	switch {
	case main == nil:
		secondary = setFrame(e.State.Frame + 1)
	case main.kind == resultSetAction:
		restart := main.action == e.State.Action
		e.processActionResult(ctx, main)
		// A new action's first frame runs in the same tick. A restarted
		// action has already run this tick.
		if !restart {
			secondary = e.actionStep(ctx)
		}
	default:
		secondary = main
	}
	e.processActionResult(ctx, secondary)
}

func (e *Entity) actionStep(ctx *StepContext) *ActionResult {
	if frame := e.State.frameData(ctx.Def); frame != nil && frame.ForceHitlistReset {
		e.State.Hitlist = e.State.Hitlist[:0]
	}
	switch {
	case e.Player != nil:
		return e.Player.actionStep(ctx, &e.State)
	case e.Item != nil:
		return e.Item.actionStep(ctx, &e.State)
	case e.Projectile != nil:
		return e.Projectile.actionStep(ctx, &e.State)
	}
	return nil
}

func (e *Entity) actionExpired(ctx *StepContext) *ActionResult {
	if e.Player != nil {
		return e.Player.actionExpired(ctx, &e.State)
	}
	return nil
}

func (e *Entity) processActionResult(ctx *StepContext, r *ActionResult) {
	if r == nil {
		return
	}
	switch r.kind {
	case resultSetAction:
		if e.State.Action != r.action {
			e.State.FrameNoRestart = 0
		} else {
			e.State.FrameNoRestart++
		}
		e.State.Frame = 0
		e.State.Action = r.action
		e.State.Hitlist = e.State.Hitlist[:0]
	case resultSetActionKeepFrame:
		e.State.FrameNoRestart++
		e.State.Action = r.action
		e.State.Hitlist = e.State.Hitlist[:0]
		if e.State.pastLastFrame(ctx.Def) {
			e.State.Frame = 0
		}
	case resultSetFrame:
		e.State.Frame = r.frame
		if e.State.pastLastFrame(ctx.Def) {
			next := e.actionExpired(ctx)
			if next == nil || next.kind == resultSetAction {
				e.processActionResult(ctx, next)
			}
			// Entities without an expiry loop their action.
			if e.State.pastLastFrame(ctx.Def) {
				e.State.Frame = 0
			}
		}
		e.State.FrameNoRestart++
	}
}

// itemGrab is called when the grab resolver pairs this entity with another.
func (e *Entity) itemGrab(ctx *StepContext, other EntityKey, otherID int, otherHasID bool) {
	var r *ActionResult
	switch {
	case e.Player != nil:
		r = e.Player.itemGrab(&e.State)
	case e.Item != nil:
		r = e.Item.grabbed(other, otherID, otherHasID)
	}
	e.processActionResult(ctx, r)
}

func (e *Entity) physicsStep(ctx *StepContext) {
	var r *ActionResult
	switch {
	case e.Player != nil:
		r = e.Player.physicsStep(ctx, &e.State)
	case e.Item != nil:
		r = e.Item.physicsStep(ctx, &e.State)
	}
	e.processActionResult(ctx, r)
}

func (e *Entity) stepCollision(ctx *StepContext, results []CollisionResult) {
	var r *ActionResult
	switch {
	case e.Player != nil:
		r = e.Player.stepCollision(ctx, &e.State, results)
	case e.Item != nil:
		r = e.Item.stepCollision(results)
	case e.Projectile != nil:
		r = e.Projectile.stepCollision(results)
	}
	e.processActionResult(ctx, r)

	for _, result := range results {
		switch result.Kind {
		case HitAtk, HitShieldAtk:
			e.State.Hitlist = append(e.State.Hitlist, result.Other)
			e.State.Hitlag = Hitlag{Kind: HitlagAttack, Counter: hitlagFrames(result.Hit.Damage)}
		case HitDef:
			e.State.Hitlag = Hitlag{Kind: HitlagLaunch, Counter: hitlagFrames(result.Hit.Damage)}
		case HitShieldDef:
			e.State.Hitlag = Hitlag{Kind: HitlagAttack, Counter: hitlagFrames(result.Hit.Damage)}
		}
	}
}

func (e *Entity) processMessage(ctx *StepContext, msg Message) {
	var r *ActionResult
	switch {
	case e.Player != nil:
		r = e.Player.processMessage(ctx, &e.State, msg.Contents)
	case e.Item != nil:
		r = e.Item.processMessage(ctx, &e.State, msg.Contents)
	}
	e.processActionResult(ctx, r)
}
