package sim

import (
	"math"

	"github.com/vovakirdan/brawl-core/internal/action"
	"github.com/vovakirdan/brawl-core/internal/core"
)

// frameStep runs the behavior of the player's current action.
func (p *Player) frameStep(ctx *StepContext, state *ActionState) *ActionResult {
	switch a := action.Player(state.Action); a {
	case action.Spawn, action.ReSpawn:
		return nil
	case action.ReSpawnIdle:
		return p.spawnIdle(ctx, state)

	case action.AerialFall, action.JumpAerialF, action.JumpAerialB, action.Fall,
		action.Fair, action.Bair, action.Uair, action.Dair, action.Nair:
		return p.aerialAction(ctx, state)
	case action.JumpF, action.JumpB:
		return p.jumpAction(ctx, state)

	case action.Jab, action.Jab2, action.Jab3, action.Utilt, action.Ftilt, action.DashAttack,
		action.Dsmash, action.Fsmash, action.Usmash, action.Idle, action.Grab, action.DashGrab,
		action.TauntUp, action.TauntDown, action.TauntLeft, action.TauntRight, action.CrouchEnd:
		return p.groundIdleAction(ctx, state)

	case action.ItemThrowU, action.ItemThrowD, action.ItemThrowF, action.ItemThrowB:
		return p.itemThrowAction(ctx, state)
	case action.ItemThrowAirU, action.ItemThrowAirD, action.ItemThrowAirF, action.ItemThrowAirB:
		return p.itemThrowAction(ctx, state).or(func() *ActionResult { return p.aerialAction(ctx, state) })

	case action.FairLand, action.BairLand, action.UairLand, action.DairLand, action.NairLand, action.SpecialLand:
		return p.attackLandAction(ctx, state)
	case action.Teeter, action.TeeterIdle:
		return p.teeterAction(ctx, state)
	case action.Land:
		return p.landAction(ctx, state)
	case action.DamageFly:
		return p.damageFlyAction(ctx)
	case action.DamageFall:
		return p.damageFallAction(ctx, state)
	case action.Damage:
		return p.damageAction(ctx, state)
	case action.MissedTechIdle:
		return p.missedTechIdleAction(ctx, state)
	case action.MissedTechStart:
		return p.missedTechStartAction(ctx, state)
	case action.AerialDodge:
		return p.aerialDodgeAction(ctx, state)
	case action.SpecialFall:
		p.fallAction(ctx.Def)
		p.airDrift(ctx)
		return nil
	case action.Dtilt:
		return p.dtiltAction(ctx, state)
	case action.CrouchStart:
		return p.crouchStartAction(ctx, state)
	case action.Crouch:
		return p.crouchAction(ctx, state)
	case action.Walk:
		return p.walkAction(ctx, state)
	case action.Dash:
		return p.dashAction(ctx, state)
	case action.Run:
		return p.runAction(ctx, state)
	case action.RunEnd:
		return p.runEndAction(ctx, state)
	case action.TiltTurn:
		return p.tiltTurnAction(ctx, state)
	case action.SmashTurn:
		return p.smashTurnAction(ctx, state)
	case action.RunTurn:
		return p.runTurnAction(ctx, state)
	case action.LedgeIdle:
		return p.ledgeIdleAction(ctx, state)

	case action.ShieldOn, action.ShieldOff:
		return p.shieldShared(ctx, state)
	case action.PowerShield, action.Shield:
		return p.shieldAction(ctx, state)
	case action.ShieldBreakFall:
		p.fallAction(ctx.Def)
		return nil
	case action.ShieldBreakGetup:
		p.Body.XVel = 0
		return nil
	case action.Stun:
		return p.stunAction(ctx, state)

	case action.GrabbingIdle:
		return p.grabbingIdleAction(ctx, state)
	case action.GrabbedIdle:
		return p.grabbedIdleAction(ctx, state)

	case action.UspecialGroundStart, action.DspecialGroundStart, action.SspecialGroundStart, action.NspecialGroundStart:
		r := p.groundIdleAction(ctx, state)
		p.specialSpawn(ctx, state, a)
		return r
	case action.UspecialAirStart, action.DspecialAirStart, action.SspecialAirStart, action.NspecialAirStart:
		r := p.aerialAction(ctx, state)
		p.specialSpawn(ctx, state, a)
		return r

	case action.Uthrow, action.Dthrow, action.Fthrow, action.Bthrow:
		if ctx.Def.Fighter != nil {
			if throw, ok := ctx.Def.Fighter.Throws[a.String()]; ok && throw.Frame == state.Frame {
				p.sendThrown(ctx, throw)
			}
		}
		return nil
	}
	return nil
}

// specialKey maps a special action to its entry in the fighter's specials.
func specialKey(a action.Player) string {
	switch a {
	case action.UspecialGroundStart, action.UspecialAirStart:
		return "up"
	case action.DspecialGroundStart, action.DspecialAirStart:
		return "down"
	case action.SspecialGroundStart, action.SspecialAirStart:
		return "side"
	}
	return "neutral"
}

// specialSpawn creates the entity a special move produces on its spawn frame.
func (p *Player) specialSpawn(ctx *StepContext, state *ActionState, a action.Player) {
	if ctx.Def.Fighter == nil {
		return
	}
	special, ok := ctx.Def.Fighter.Specials[specialKey(a)]
	if !ok || special.Frame != state.Frame {
		return
	}
	spawnDef, ok := ctx.Package.Entities[special.Spawn]
	if !ok {
		return
	}
	pos := p.bps(ctx, state)
	x := pos.X + p.relative(special.Offset.X)
	y := pos.Y + special.Offset.Y

	switch spawnDef.Kind {
	case action.KindItem:
		ctx.spawn(NewItem(special.Spawn, nil, NewBody(Airborne(x, y), p.Body.FaceRight), action.ItemFall))
	case action.KindProjectile:
		angle := 0.0
		if !p.Body.FaceRight {
			angle = math.Pi
		}
		id := p.ID
		ctx.spawn(NewProjectile(special.Spawn, &id, special.Speed, angle, x, y))
	}
}

func (p *Player) spawnIdle(ctx *StepContext, state *ActionState) *ActionResult {
	r := p.try(ctx, state,
		(*Player).checkAttacksAerial,
		(*Player).checkSpecialGround,
		(*Player).checkJumpAerial,
		(*Player).checkAerialDodge,
	)
	if r != nil {
		return r
	}
	in := ctx.Input
	if math.Abs(in.StickX.Value) > 0.2 || math.Abs(in.StickY.Value) > 0.2 || state.FrameNoRestart >= 1000 {
		return setAction(action.Fall)
	}
	return nil
}

func (p *Player) aerialAction(ctx *StepContext, state *ActionState) *ActionResult {
	if state.interruptible(ctx.Def) {
		r := p.try(ctx, state,
			(*Player).checkAttacksAerial,
			(*Player).checkSpecialAir,
			(*Player).checkJumpAerial,
			(*Player).checkAerialDodge,
		)
		if r != nil {
			return r
		}
	}
	p.airDrift(ctx)
	p.fastfallAction(ctx)
	return nil
}

func (p *Player) jumpAction(ctx *StepContext, state *ActionState) *ActionResult {
	r := p.try(ctx, state,
		(*Player).checkAttacksAerial,
		(*Player).checkSpecialAir,
		(*Player).checkJumpAerial,
		(*Player).checkAerialDodge,
	)
	if r != nil {
		return r
	}
	p.airDrift(ctx)
	p.fastfallAction(ctx)
	return nil
}

func (p *Player) groundIdleAction(ctx *StepContext, state *ActionState) *ActionResult {
	if action.Player(state.Action) == action.TauntDown && state.Frame == 0 && ctx.Input.B.Value {
		p.spawnTauntItem(ctx, state)
	}
	if state.interruptible(ctx.Def) {
		r := p.try(ctx, state,
			(*Player).checkJump,
			(*Player).checkShield,
			(*Player).checkSpecialGround,
			(*Player).checkSmash,
			(*Player).checkAttacks,
			(*Player).checkGrab,
			(*Player).checkTaunt,
			(*Player).checkCrouch,
			(*Player).checkDash,
			(*Player).checkSmashTurn,
			(*Player).checkTiltTurn,
			(*Player).checkWalk,
		)
		if r != nil {
			return r
		}
	}
	p.applyFriction(ctx.Def, state)
	return nil
}

func (p *Player) spawnTauntItem(ctx *StepContext, state *ActionState) {
	if ctx.Def.Fighter == nil || ctx.Def.Fighter.TauntItem == "" {
		return
	}
	if _, ok := ctx.Package.Entities[ctx.Def.Fighter.TauntItem]; !ok {
		return
	}
	pos := p.bps(ctx, state)
	body := NewBody(Airborne(pos.X+15, pos.Y+10), p.Body.FaceRight)
	ctx.spawn(NewItem(ctx.Def.Fighter.TauntItem, nil, body, action.ItemFall))
}

func (p *Player) itemThrowAction(ctx *StepContext, state *ActionState) *ActionResult {
	if state.Frame != 4 {
		return nil
	}
	item, ok := heldItem(ctx.Entities, ctx.Key)
	if !ok {
		return nil
	}
	var msg ItemThrown
	switch action.Player(state.Action) {
	case action.ItemThrowF, action.ItemThrowAirF:
		msg = ItemThrown{XVel: p.relative(3)}
	case action.ItemThrowB, action.ItemThrowAirB:
		msg = ItemThrown{XVel: p.relative(-3)}
	case action.ItemThrowU, action.ItemThrowAirU:
		msg = ItemThrown{YVel: 4}
	case action.ItemThrowD, action.ItemThrowAirD:
		msg = ItemThrown{YVel: -4}
	}
	ctx.send(item, msg)
	return nil
}

func (p *Player) attackLandAction(ctx *StepContext, state *ActionState) *ActionResult {
	if r := p.landAction(ctx, state); r != nil {
		return r
	}
	return setFrame(state.Frame + p.LandFrameSkip + 1)
}

func (p *Player) landAction(ctx *StepContext, state *ActionState) *ActionResult {
	if !state.interruptible(ctx.Def) {
		p.applyFriction(ctx.Def, state)
		return nil
	}
	r := p.try(ctx, state,
		(*Player).checkJump,
		(*Player).checkShield,
		(*Player).checkSpecialGround,
		(*Player).checkSmash,
		(*Player).checkAttacks,
		(*Player).checkGrab,
		(*Player).checkTaunt,
		(*Player).checkDash,
		(*Player).checkSmashTurn,
		(*Player).checkTiltTurn,
		(*Player).checkWalk,
	)
	if r != nil {
		return r
	}
	if state.firstInterruptible(ctx.Def) && ctx.Input.At(0).StickY < -0.5 {
		return setAction(action.Crouch)
	}
	p.applyFriction(ctx.Def, state)
	return nil
}

func (p *Player) teeterAction(ctx *StepContext, state *ActionState) *ActionResult {
	if !state.interruptible(ctx.Def) {
		return nil
	}
	return p.try(ctx, state,
		(*Player).checkJump,
		(*Player).checkShield,
		(*Player).checkSpecialGround,
		(*Player).checkSmash,
		(*Player).checkAttacks,
		(*Player).checkGrab,
		(*Player).checkTaunt,
		(*Player).checkCrouch,
		(*Player).checkDash,
		(*Player).checkSmashTurn,
		(*Player).checkTiltTurn,
		(*Player).checkWalkTeeter,
	)
}

func (p *Player) damageFlyAction(ctx *StepContext) *ActionResult {
	p.Hitstun--
	p.fallAction(ctx.Def)
	if p.Hitstun <= 0 {
		return setAction(action.DamageFall)
	}
	return nil
}

func (p *Player) damageFallAction(ctx *StepContext, state *ActionState) *ActionResult {
	if state.interruptible(ctx.Def) {
		r := p.try(ctx, state,
			(*Player).checkAttacksAerial,
			(*Player).checkSpecialAir,
			(*Player).checkJumpAerial,
		)
		if r != nil {
			return r
		}
		in := ctx.Input
		if in.At(0).StickX > 0.7 && in.At(1).StickX < 0.7 ||
			in.At(0).StickX < -0.7 && in.At(1).StickX > -0.7 ||
			in.At(0).StickY > 0.7 && in.At(1).StickY < 0.7 ||
			in.At(0).StickY < -0.7 && in.At(1).StickY > -0.7 {
			return setAction(action.Fall)
		}
	}
	p.fastfallAction(ctx)
	p.airDrift(ctx)
	return nil
}

func (p *Player) damageAction(ctx *StepContext, state *ActionState) *ActionResult {
	p.Hitstun--
	if p.Hitstun <= 0 {
		if p.Body.IsAirborne() {
			return setAction(action.Fall)
		}
		return setAction(action.Idle)
	}
	if p.Body.IsAirborne() {
		p.fallAction(ctx.Def)
	} else {
		p.applyFriction(ctx.Def, state)
	}
	return nil
}

func (p *Player) missedTechStartAction(ctx *StepContext, state *ActionState) *ActionResult {
	if state.Frame == 0 {
		p.Body.XVel = 0
	} else {
		p.applyFriction(ctx.Def, state)
	}
	return nil
}

func (p *Player) missedTechIdleAction(ctx *StepContext, state *ActionState) *ActionResult {
	in := ctx.Input
	p.Hitstun--
	switch {
	case p.relative(in.StickX.Value) < -0.7:
		return setAction(action.MissedTechGetupB)
	case p.relative(in.StickX.Value) > 0.7:
		return setAction(action.MissedTechGetupF)
	case in.StickY.Value > 0.7:
		return setAction(action.MissedTechGetupN)
	case in.A.Press || in.B.Press:
		return setAction(action.MissedTechAttack)
	case ctx.Def.MissedTechForcedGetup >= 0 && state.FrameNoRestart > ctx.Def.MissedTechForcedGetup:
		return setAction(action.MissedTechGetupN)
	}
	p.applyFriction(ctx.Def, state)
	return nil
}

func (p *Player) dtiltAction(ctx *StepContext, state *ActionState) *ActionResult {
	if !state.interruptible(ctx.Def) {
		p.applyFriction(ctx.Def, state)
		return nil
	}
	r := p.try(ctx, state,
		(*Player).checkJump,
		(*Player).checkShield,
		(*Player).checkSpecialGround,
		(*Player).checkSmash,
		(*Player).checkAttacks,
		(*Player).checkGrab,
		(*Player).checkDash,
		(*Player).checkSmashTurn,
		(*Player).checkTiltTurn,
		(*Player).checkWalk,
		(*Player).checkTaunt,
	)
	if r == nil {
		p.applyFriction(ctx.Def, state)
	}
	return r
}

func (p *Player) crouchStartAction(ctx *StepContext, state *ActionState) *ActionResult {
	if !state.interruptible(ctx.Def) {
		p.applyFriction(ctx.Def, state)
		return nil
	}
	r := p.try(ctx, state,
		(*Player).checkPassPlatform,
		(*Player).checkShield,
		(*Player).checkSpecialGround,
		(*Player).checkSmash,
		(*Player).checkAttacks,
		(*Player).checkGrab,
		(*Player).checkTaunt,
		(*Player).checkJump,
	)
	if r == nil {
		p.applyFriction(ctx.Def, state)
	}
	return r
}

func (p *Player) crouchAction(ctx *StepContext, state *ActionState) *ActionResult {
	if !state.interruptible(ctx.Def) {
		p.applyFriction(ctx.Def, state)
		return nil
	}
	r := p.try(ctx, state,
		(*Player).checkJump,
		(*Player).checkShield,
		(*Player).checkSpecialGround,
		(*Player).checkSmash,
		(*Player).checkAttacks,
		(*Player).checkGrab,
		(*Player).checkTaunt,
		(*Player).checkDash,
		(*Player).checkSmashTurn,
		(*Player).checkTiltTurn,
	)
	if r != nil {
		return r
	}
	if ctx.Input.StickY.Value > -0.61 {
		return setAction(action.CrouchEnd)
	}
	p.applyFriction(ctx.Def, state)
	return nil
}

func (p *Player) walkAction(ctx *StepContext, state *ActionState) *ActionResult {
	def := ctx.Def
	stickX := ctx.Input.StickX.Value
	if stickX == 0 {
		return setAction(action.Idle)
	}

	r := p.try(ctx, state,
		(*Player).checkJump,
		(*Player).checkShield,
		(*Player).checkSpecialGround,
		(*Player).checkSmash,
		(*Player).checkAttacks,
		(*Player).checkGrab,
		(*Player).checkCrouch,
		(*Player).checkDash,
		(*Player).checkSmashTurn,
		(*Player).checkTiltTurn,
		(*Player).checkTaunt,
	)
	if r != nil {
		return r
	}

	velMax := def.WalkMaxVel * stickX
	if math.Abs(p.Body.XVel) > math.Abs(velMax) {
		p.applyFriction(def, state)
		return nil
	}
	acc := (velMax - p.Body.XVel) * (2 / def.WalkMaxVel) * (def.WalkInitVel + def.WalkAcc)
	p.Body.XVel += acc
	if p.relative(p.Body.XVel) > p.relative(velMax) {
		p.Body.XVel = velMax
	}
	return nil
}

// dashRunFrame is the first frame of a dash that can continue into a run.
const dashRunFrame = 13

func (p *Player) dashAction(ctx *StepContext, state *ActionState) *ActionResult {
	def := ctx.Def
	in := ctx.Input

	if state.Frame == 1 {
		p.Body.XVel = p.relative(def.DashInitVel)
		if math.Abs(p.Body.XVel) > def.DashRunTermVel {
			p.Body.XVel = p.relative(def.DashRunTermVel)
		}
	}

	if state.Frame > 0 {
		if math.Abs(in.StickX.Value) < 0.3 {
			p.applyFriction(def, state)
		} else {
			velMax := in.StickX.Value * def.DashRunTermVel
			acc := in.StickX.Value * def.DashRunAccA

			p.Body.XVel += acc
			if velMax > 0 && p.Body.XVel > velMax || velMax < 0 && p.Body.XVel < velMax {
				p.applyFriction(def, state)
				if velMax > 0 && p.Body.XVel < velMax || velMax < 0 && p.Body.XVel > velMax {
					p.Body.XVel = velMax
				}
			} else {
				p.Body.XVel += acc
				if velMax > 0 && p.Body.XVel > velMax || velMax < 0 && p.Body.XVel < velMax {
					p.Body.XVel = velMax
				}
			}
		}
	}

	last := def.Action(state.Action).LastFrame()
	runReady := state.Frame >= dashRunFrame || dashRunFrame > last && state.Frame == last
	if runReady && p.relative(in.StickX.Value) >= 0.62 {
		return setAction(action.Run)
	}

	if r := p.checkShield(ctx, state); r != nil {
		p.Body.XVel *= 0.25
		return r
	}
	return p.try(ctx, state,
		(*Player).checkDashGrab,
		(*Player).checkDashAttack,
		(*Player).checkJump,
		(*Player).checkSmashTurn,
	)
}

func (p *Player) runAction(ctx *StepContext, state *ActionState) *ActionResult {
	def := ctx.Def
	in := ctx.Input

	if r := p.try(ctx, state, (*Player).checkJump, (*Player).checkShield); r != nil {
		return r
	}
	switch {
	case p.relative(in.StickX.Value) <= -0.3:
		return setAction(action.RunTurn)
	case p.relative(in.StickX.Value) < 0.62:
		return setAction(action.RunEnd)
	}
	r := p.try(ctx, state,
		(*Player).checkDashGrab,
		(*Player).checkDashAttack,
		(*Player).checkSpecialGround,
	)
	if r != nil {
		return r
	}

	velMax := in.StickX.Value * def.DashRunTermVel
	acc := (velMax - p.Body.XVel) * (def.DashRunAccA + def.DashRunAccB/math.Abs(in.StickX.Value)) / (def.DashRunTermVel * 2.5)
	p.Body.XVel += acc
	if p.relative(p.Body.XVel) > p.relative(velMax) {
		p.Body.XVel = velMax
	}
	return nil
}

func (p *Player) runEndAction(ctx *StepContext, state *ActionState) *ActionResult {
	if r := p.checkJump(ctx, state); r != nil {
		return r
	}
	if state.Frame > 1 {
		if r := p.checkCrouch(ctx, state); r != nil {
			return r
		}
	}
	if p.relative(ctx.Input.StickX.Value) <= -0.3 {
		return setAction(action.RunTurn)
	}
	p.applyFriction(ctx.Def, state)
	return nil
}

// flipAt turns the player around on flipFrame, or on the last frame when the
// action is shorter than flipFrame.
func (p *Player) flipAt(ctx *StepContext, state *ActionState, flipFrame int) {
	last := ctx.Def.Action(state.Action).LastFrame()
	if state.Frame == flipFrame || flipFrame > last && state.Frame == last {
		p.Body.FaceRight = !p.Body.FaceRight
	}
}

func (p *Player) tiltTurnAction(ctx *StepContext, state *ActionState) *ActionResult {
	def := ctx.Def
	p.flipAt(ctx, state, def.TiltTurnFlipDir)

	if def.TiltTurnIntoDash >= state.Frame && p.relative(ctx.Input.StickX.Value) > 0.79 {
		if def.TiltTurnFlipDir > def.TiltTurnIntoDash {
			p.Body.FaceRight = !p.Body.FaceRight
		}
		return setAction(action.Dash)
	}

	r := p.try(ctx, state,
		(*Player).checkJump,
		(*Player).checkShield,
		(*Player).checkSpecialGround,
		(*Player).checkSmash,
		(*Player).checkAttacks,
		(*Player).checkGrab,
		(*Player).checkTaunt,
	)
	if r == nil {
		p.applyFriction(def, state)
	}
	return r
}

func (p *Player) smashTurnAction(ctx *StepContext, state *ActionState) *ActionResult {
	if state.Frame == 0 && p.relative(ctx.Input.StickX.Value) > 0.79 {
		return setAction(action.Dash)
	}
	r := p.try(ctx, state,
		(*Player).checkJump,
		(*Player).checkShield,
		(*Player).checkSpecialGround,
		(*Player).checkSmash,
		(*Player).checkAttacks,
		(*Player).checkGrab,
		(*Player).checkTaunt,
	)
	if r == nil {
		p.applyFriction(ctx.Def, state)
	}
	return r
}

func (p *Player) runTurnAction(ctx *StepContext, state *ActionState) *ActionResult {
	p.flipAt(ctx, state, ctx.Def.RunTurnFlipDir)
	if r := p.checkJump(ctx, state); r != nil {
		return r
	}
	p.applyFriction(ctx.Def, state)
	return nil
}

func crossedBelow(now, before, threshold float64) bool {
	return now < threshold && before >= threshold
}

func crossedAbove(now, before, threshold float64) bool {
	return now > threshold && before <= threshold
}

func (p *Player) ledgeIdleAction(ctx *StepContext, state *ActionState) *ActionResult {
	in := ctx.Input
	in0, in1 := in.At(0), in.At(1)
	slow := p.Body.Damage >= 100
	pick := func(fast, slowAction action.Player) *ActionResult {
		if slow {
			return setAction(slowAction)
		}
		return setAction(fast)
	}

	switch {
	case crossedBelow(in0.StickY, in1.StickY, -0.2),
		crossedBelow(in0.CStickY, in1.CStickY, -0.2),
		crossedBelow(p.relative(in0.StickX), p.relative(in1.StickX), -0.2),
		crossedBelow(p.relative(in0.CStickX), p.relative(in1.CStickX), -0.2):
		p.setAirborne(ctx, state)
		return setAction(action.Fall)

	case in.X.Press, in.Y.Press, crossedAbove(in0.StickY, in1.StickY, 0.65):
		return pick(action.LedgeJump, action.LedgeJumpSlow)

	case crossedAbove(p.relative(in0.StickX), p.relative(in1.StickX), 0.2),
		crossedAbove(in0.StickY, in1.StickY, 0.2):
		return pick(action.LedgeGetup, action.LedgeGetupSlow)

	case in.A.Press, in.B.Press, in0.CStickY > 0.65 && in1.CStickX <= 0.65:
		return pick(action.LedgeAttack, action.LedgeAttackSlow)

	case in.L.Press, in.R.Press,
		crossedAbove(in0.LTrigger, in1.LTrigger, 0.3),
		crossedAbove(in0.RTrigger, in1.RTrigger, 0.3),
		crossedAbove(p.relative(in0.CStickX), p.relative(in1.CStickX), 0.8):
		return pick(action.LedgeRoll, action.LedgeRollSlow)

	case p.LedgeIdleTimer > 600:
		p.setAirborne(ctx, state)
		return setAction(action.DamageFall)
	}
	p.LedgeIdleTimer++
	return nil
}

func (p *Player) aerialDodge(ctx *StepContext) *ActionResult {
	in := ctx.Input.At(0)
	if angle, ok := in.StickAngle(); ok {
		sin, cos := math.Sincos(angle)
		p.Body.XVel = cos * ctx.Def.AerialDodgeMult
		p.Body.YVel = sin * ctx.Def.AerialDodgeMult
	} else {
		p.Body.XVel = 0
		p.Body.YVel = 0
	}
	p.Fastfalled = false
	return setAction(action.AerialDodge)
}

func (p *Player) aerialDodgeAction(ctx *StepContext, state *ActionState) *ActionResult {
	if state.Frame < ctx.Def.AerialDodgeDrift {
		p.Body.XVel *= 0.9
		p.Body.YVel *= 0.9
		return nil
	}
	p.airDrift(ctx)
	p.fastfallAction(ctx)
	return nil
}

func (p *Player) shieldAction(ctx *StepContext, state *ActionState) *ActionResult {
	if r := p.shieldShared(ctx, state); r != nil {
		return r
	}
	in := ctx.Input
	if p.ShieldStunTimer == 0 && in.LTrigger.Value < 0.165 && in.RTrigger.Value < 0.165 && !in.L.Value && !in.R.Value {
		if p.ParryTimer > 0 {
			return setAction(action.Idle)
		}
		return setAction(action.ShieldOff)
	}
	return nil
}

func (p *Player) shieldShared(ctx *StepContext, state *ActionState) *ActionResult {
	p.applyFriction(ctx.Def, state)

	shield := ctx.Def.Shield
	if shield == nil {
		return nil
	}
	in := ctx.Input
	stunLock := p.ShieldStunTimer > 0
	stickLock := shield.StickLock && in.B.Value
	lock := stunLock && stickLock

	p.ShieldAnalog = math.Max(in.LTrigger.Value, in.RTrigger.Value)
	if in.L.Value || in.R.Value {
		p.ShieldAnalog = 1
	}

	var targetX, targetY float64
	if !stickLock {
		stickX, stickY := in.StickX.Value, in.StickY.Value
		mag := math.Min(1, math.Hypot(stickX, stickY)) * shield.StickMult
		if mag > 0 {
			sin, cos := math.Sincos(math.Atan2(stickY, stickX))
			targetX, targetY = cos*mag, sin*mag
		}
	}
	p.ShieldOffsetX += (targetX-p.ShieldOffsetX)/5 + 0.01
	p.ShieldOffsetY += (targetY-p.ShieldOffsetY)/5 + 0.01

	p.ShieldHP -= shield.HPCost*p.ShieldAnalog - (1-p.ShieldAnalog)/10
	if p.ShieldHP <= 0 {
		p.ShieldHP = 0
		p.Body.KBYVel = shield.BreakVel
		p.Body.KBYDec = 0.051
		p.Body.KBXDec = 0
		p.setAirborne(ctx, state)
		return setAction(action.ShieldBreakFall)
	}

	if lock {
		return nil
	}
	return p.try(ctx, state,
		(*Player).checkGrabShield,
		(*Player).checkJump,
		(*Player).checkPassPlatform,
	)
}

func (p *Player) stunAction(ctx *StepContext, state *ActionState) *ActionResult {
	p.applyFriction(ctx.Def, state)
	if ctx.Def.Shield != nil && p.ShieldHP > 30 {
		p.ShieldHP = 30
	}
	p.StunTimer--
	if p.StunTimer <= 0 {
		p.StunTimer = 0
		return setAction(action.Idle)
	}
	return nil
}

// throwInput reports whether a stick crossed the throw threshold this frame
// while pointing mostly along the x axis.
func throwInput(x, xBefore, y float64, threshold float64) bool {
	if threshold > 0 {
		return x >= threshold && xBefore < threshold && math.Abs(x) > math.Abs(y)-0.1
	}
	return x <= threshold && xBefore > threshold && math.Abs(x) > math.Abs(y)-0.1
}

func (p *Player) grabbingIdleAction(ctx *StepContext, state *ActionState) *ActionResult {
	p.applyFriction(ctx.Def, state)
	in0, in1 := ctx.Input.At(0), ctx.Input.At(1)
	rel := p.relative

	switch {
	case throwInput(rel(in0.StickX), rel(in1.StickX), in0.StickY, -0.66),
		throwInput(rel(in0.CStickX), rel(in1.CStickX), in0.CStickY, -0.66):
		return setAction(action.Bthrow)
	case throwInput(rel(in0.StickX), rel(in1.StickX), in0.StickY, 0.66),
		throwInput(rel(in0.CStickX), rel(in1.CStickX), in0.CStickY, 0.66):
		return setAction(action.Fthrow)
	case in0.StickY >= 0.66 && in1.StickY < 0.66, in0.CStickY >= 0.66 && in1.CStickY < 0.66:
		return setAction(action.Uthrow)
	case in0.StickY <= -0.66 && in1.StickY > -0.66, in0.CStickY <= -0.66 && in1.CStickY > -0.66:
		return setAction(action.Dthrow)
	case state.FrameNoRestart > 60:
		return setAction(action.GrabbingEnd)
	}
	return nil
}

func (p *Player) grabbedIdleAction(ctx *StepContext, state *ActionState) *ActionResult {
	if state.FrameNoRestart <= 60 {
		return nil
	}
	frame := state.frameData(ctx.Def)
	bps := p.bps(ctx, state)
	var grabbedY float64
	if frame != nil {
		grabbedY = frame.Grabbed.Y
	}
	grabPoint := core.Point{X: bps.X, Y: bps.Y + grabbedY}

	if platform, ok := p.Body.landStageCollision(ctx, frame, grabPoint, bps); ok {
		s := &ctx.Stage.Surfaces[platform]
		p.Body.Location = OnSurface(platform, s.WorldXToPlatXClamp(bps.X))
		p.land(ctx, state)
		return setAction(action.GrabbedEnd)
	}
	p.setAirborne(ctx, state)
	return setAction(action.Fall)
}
