package sim

import "github.com/vovakirdan/brawl-core/internal/action"

// Item is a throwable object that fighters can pick up.
type Item struct {
	OwnerID *int `json:"owner_id,omitempty"` // player id of the last holder
	Body    Body `json:"body"`
}

// NewItem creates an item entity in the given action.
func NewItem(defKey string, ownerID *int, body Body, a action.Item) *Entity {
	return &Entity{
		Item:  &Item{OwnerID: ownerID, Body: body},
		State: NewActionState(defKey, int(a)),
	}
}

func (it *Item) bps(ctx *StepContext, state *ActionState) (x, y float64) {
	p := it.Body.bps(ctx.Env, state.frameData(ctx.Def), state)
	return p.X, p.Y
}

func (it *Item) actionStep(ctx *StepContext, state *ActionState) *ActionResult {
	def := ctx.Def
	switch action.Item(state.Action) {
	case action.ItemHeld:
	case action.ItemSpawn, action.ItemIdle:
		it.Body.applyFrictionStrong(def)
	case action.ItemThrown, action.ItemFall, action.ItemDropped:
		it.Body.YVel += def.Gravity
		if it.Body.YVel < def.TerminalVel {
			it.Body.YVel = def.TerminalVel
		}
	}

	if state.lastFrame(def) {
		return it.actionExpired(state)
	}
	return nil
}

func (it *Item) actionExpired(state *ActionState) *ActionResult {
	switch a := action.Item(state.Action); a {
	case action.ItemSpawn:
		return setAction(action.ItemIdle)
	case action.ItemIdle, action.ItemFall, action.ItemHeld, action.ItemThrown, action.ItemDropped:
		return setAction(a)
	}
	panic("sim: item action has no expiry")
}

// grabbed attaches the item to the player that picked it up.
func (it *Item) grabbed(holder EntityKey, holderID int, hasID bool) *ActionResult {
	it.Body.Location = HeldBy(holder)
	it.OwnerID = nil
	if hasID {
		id := holderID
		it.OwnerID = &id
	}
	return setAction(action.ItemHeld)
}

func (it *Item) physicsStep(ctx *StepContext, state *ActionState) *ActionResult {
	switch it.Body.physicsStep(ctx, state, state.frameData(ctx.Def)) {
	case PhysicsFall:
		return setAction(action.ItemFall)
	case PhysicsLand:
		return setAction(action.ItemIdle)
	case PhysicsOutOfBounds:
		ctx.DeleteSelf = true
	}
	return nil
}

func (it *Item) stepCollision(results []CollisionResult) *ActionResult {
	var r *ActionResult
	for _, result := range results {
		switch result.Kind {
		case Clang, HitAtk, HitShieldAtk, ReflectAtk, AbsorbAtk:
			r = setAction(action.ItemFall)
		}
	}
	return r
}

func (it *Item) processMessage(ctx *StepContext, state *ActionState, msg MessageContents) *ActionResult {
	switch m := msg.(type) {
	case ItemThrown:
		x, y := it.bps(ctx, state)
		it.Body.Location = Airborne(x, y)
		it.Body.XVel = m.XVel
		it.Body.YVel = m.YVel
		return setAction(action.ItemThrown)
	case ItemDropped:
		x, y := it.bps(ctx, state)
		it.Body.Location = Airborne(x, y)
		return setAction(action.ItemDropped)
	}
	return nil
}
