package sim

import (
	"math"

	"github.com/vovakirdan/brawl-core/internal/action"
	"github.com/vovakirdan/brawl-core/internal/core"
)

// check inspects input and requests an action, or returns nil.
type check func(p *Player, ctx *StepContext, state *ActionState) *ActionResult

// try runs checks in priority order and returns the first request.
func (p *Player) try(ctx *StepContext, state *ActionState, checks ...check) *ActionResult {
	for _, c := range checks {
		if r := c(p, ctx, state); r != nil {
			return r
		}
	}
	return nil
}

func (p *Player) checkCrouch(ctx *StepContext, state *ActionState) *ActionResult {
	switch action.Player(state.Action) {
	case action.CrouchStart, action.Crouch, action.CrouchEnd:
		return nil
	}
	if ctx.Input.StickY.Value < -0.77 {
		return setAction(action.CrouchStart)
	}
	return nil
}

func (p *Player) checkPassPlatform(ctx *StepContext, state *ActionState) *ActionResult {
	loc := p.Body.Location
	if loc.Kind != LocSurface || !ctx.Stage.Surfaces[loc.Platform].IsPassThrough() {
		return nil
	}
	in := ctx.Input
	last := ctx.Def.Action(state.Action).LastFrame()
	if state.Frame == min(last, 4) &&
		(in.At(0).StickY < -0.77 || in.At(2).StickY < -0.77) && in.At(6).StickY > -0.36 {
		p.setAirborne(ctx, state)
		return setAction(action.PassPlatform)
	}
	return nil
}

func (p *Player) checkWalk(ctx *StepContext, _ *ActionState) *ActionResult {
	if math.Abs(ctx.Input.StickX.Value) > 0.3 {
		return p.walk(ctx)
	}
	return nil
}

func (p *Player) checkWalkTeeter(ctx *StepContext, _ *ActionState) *ActionResult {
	if math.Abs(ctx.Input.StickX.Value) > 0.6 {
		return p.walk(ctx)
	}
	return nil
}

func (p *Player) checkDash(ctx *StepContext, _ *ActionState) *ActionResult {
	in := ctx.Input
	if p.relative(in.At(0).StickX) > 0.79 && p.relative(in.At(2).StickX) < 0.3 {
		p.Body.XVel = p.relative(ctx.Def.DashInitVel)
		return setAction(action.Dash)
	}
	return nil
}

func (p *Player) checkTiltTurn(ctx *StepContext, _ *ActionState) *ActionResult {
	if p.relative(ctx.Input.StickX.Value) < -0.3 {
		return setAction(action.TiltTurn)
	}
	return nil
}

func (p *Player) checkSmashTurn(ctx *StepContext, _ *ActionState) *ActionResult {
	in := ctx.Input
	if p.relative(in.At(0).StickX) < -0.79 && p.relative(in.At(2).StickX) > -0.3 {
		p.Body.XVel *= 0.25
		p.Body.FaceRight = !p.Body.FaceRight
		return setAction(action.SmashTurn)
	}
	return nil
}

type jumpKind uint8

const (
	jumpNone jumpKind = iota
	jumpButton
	jumpStick
)

func jumpInput(in *core.PlayerInput) jumpKind {
	switch {
	case in.X.Press || in.Y.Press:
		return jumpButton
	case in.At(0).StickY > 0.66 && in.At(3).StickY < 0.2:
		return jumpStick
	}
	return jumpNone
}

func (p *Player) checkJump(ctx *StepContext, _ *ActionState) *ActionResult {
	switch jumpInput(ctx.Input) {
	case jumpButton:
		p.JumpsquatButton = true
		return setAction(action.JumpSquat)
	case jumpStick:
		p.JumpsquatButton = false
		return setAction(action.JumpSquat)
	}
	return nil
}

func (p *Player) checkJumpAerial(ctx *StepContext, _ *ActionState) *ActionResult {
	if jumpInput(ctx.Input) == jumpNone || p.AirJumpsLeft <= 0 {
		return nil
	}
	def := ctx.Def
	stickX := ctx.Input.StickX.Value
	p.AirJumpsLeft--
	p.Body.YVel = def.AirJumpYVel
	p.Body.XVel = def.AirJumpXVel * stickX
	p.Fastfalled = false

	if p.relative(stickX) < -0.3 {
		return setAction(action.JumpAerialB)
	}
	return setAction(action.JumpAerialF)
}

func (p *Player) checkAerialDodge(ctx *StepContext, _ *ActionState) *ActionResult {
	if ctx.Input.L.Press || ctx.Input.R.Press {
		return p.aerialDodge(ctx)
	}
	return nil
}

func (p *Player) checkAttacksAerial(ctx *StepContext, _ *ActionState) *ActionResult {
	in := ctx.Input
	in0, in1 := in.At(0), in.At(1)
	holding := p.hasItem(ctx)
	pick := func(throw, attack action.Player, throwOK bool) *ActionResult {
		if throwOK && holding {
			return setAction(throw)
		}
		return setAction(attack)
	}

	if in.A.Press || in.Z.Press {
		mostlyX := math.Abs(in0.StickX) > math.Abs(in0.StickY)-0.1
		switch {
		case p.relative(in0.StickX) > 0.3 && mostlyX:
			return pick(action.ItemThrowAirF, action.Fair, in.Z.Press)
		case p.relative(in0.StickX) < -0.3 && mostlyX:
			return pick(action.ItemThrowAirB, action.Bair, in.Z.Press)
		case in0.StickY < -0.3:
			return pick(action.ItemThrowAirD, action.Dair, in.Z.Press)
		case in0.StickY > 0.3:
			return pick(action.ItemThrowAirU, action.Uair, in.Z.Press)
		case in.Z.Press && holding:
			if item, ok := heldItem(ctx.Entities, ctx.Key); ok {
				ctx.send(item, ItemDropped{})
			}
			return nil
		}
		return setAction(action.Nair)
	}

	cMostlyX := math.Abs(in0.CStickX) > math.Abs(in0.CStickY)-0.1
	switch {
	case p.relative(in0.CStickX) >= 0.3 && p.relative(in1.CStickX) < 0.3 && cMostlyX:
		return pick(action.ItemThrowAirF, action.Fair, true)
	case p.relative(in0.CStickX) <= -0.3 && p.relative(in1.CStickX) > -0.3 && cMostlyX:
		return pick(action.ItemThrowAirB, action.Bair, true)
	case in0.CStickY < -0.3 && in1.CStickY > -0.3:
		return pick(action.ItemThrowAirD, action.Dair, true)
	case in0.CStickY >= 0.3 && in1.CStickY < 0.3:
		return pick(action.ItemThrowAirU, action.Uair, true)
	}
	return nil
}

func (p *Player) checkAttacks(ctx *StepContext, _ *ActionState) *ActionResult {
	in := ctx.Input
	if !in.A.Press {
		return nil
	}
	holding := p.hasItem(ctx)
	pick := func(throw, attack action.Player) *ActionResult {
		if holding {
			return setAction(throw)
		}
		return setAction(attack)
	}

	in0 := in.At(0)
	switch {
	case p.relative(in0.StickX) > 0.3 && math.Abs(in0.StickX)-math.Abs(in0.StickY) > -0.05:
		return pick(action.ItemThrowF, action.Ftilt)
	case in0.StickY < -0.3:
		return pick(action.ItemThrowD, action.Dtilt)
	case in0.StickY > 0.3:
		return pick(action.ItemThrowU, action.Utilt)
	}
	return pick(action.ItemThrowF, action.Jab)
}

func (p *Player) checkDashAttack(ctx *StepContext, _ *ActionState) *ActionResult {
	if ctx.Input.A.Press {
		return setAction(action.DashAttack)
	}
	return nil
}

func (p *Player) checkGrabShield(ctx *StepContext, _ *ActionState) *ActionResult {
	if ctx.Input.A.Press || ctx.Input.Z.Press {
		return setAction(action.Grab)
	}
	return nil
}

func (p *Player) checkGrab(ctx *StepContext, _ *ActionState) *ActionResult {
	if ctx.Input.Z.Press {
		return setAction(action.Grab)
	}
	return nil
}

func (p *Player) checkDashGrab(ctx *StepContext, _ *ActionState) *ActionResult {
	if ctx.Input.Z.Press {
		return setAction(action.DashGrab)
	}
	return nil
}

func (p *Player) checkSpecial(ctx *StepContext, side, down, up, neutral action.Player) *ActionResult {
	in := ctx.Input
	if !in.B.Press {
		return nil
	}
	switch {
	case math.Abs(in.At(0).StickX) > 0.3:
		p.Body.FaceRight = in.StickX.Value > 0
		return setAction(side)
	case in.At(0).StickY < -0.3:
		return setAction(down)
	case in.At(0).StickY > 0.3:
		return setAction(up)
	}
	return setAction(neutral)
}

func (p *Player) checkSpecialGround(ctx *StepContext, _ *ActionState) *ActionResult {
	return p.checkSpecial(ctx, action.SspecialGroundStart, action.DspecialGroundStart, action.UspecialGroundStart, action.NspecialGroundStart)
}

func (p *Player) checkSpecialAir(ctx *StepContext, _ *ActionState) *ActionResult {
	return p.checkSpecial(ctx, action.SspecialAirStart, action.DspecialAirStart, action.UspecialAirStart, action.NspecialAirStart)
}

// checkSmash reads the stick for a smash flick with A, then the c-stick.
// A stick flick backwards turns the fighter around without needing A.
func (p *Player) checkSmash(ctx *StepContext, _ *ActionState) *ActionResult {
	in := ctx.Input
	in0, in1, in2 := in.At(0), in.At(1), in.At(2)
	switch {
	case in.A.Press && in0.StickX >= 0.79 && in2.StickX < 0.3 || in0.StickX <= -0.79 && in2.StickX > -0.3:
		p.Body.FaceRight = in.StickX.Value > 0
		return setAction(action.Fsmash)
	case in.A.Press && in0.StickY >= 0.66 && in2.StickY < 0.3:
		return setAction(action.Usmash)
	case in.A.Press && in0.StickY <= -0.66 && in2.StickY > -0.3:
		return setAction(action.Dsmash)
	case math.Abs(in0.CStickX) >= 0.79 && math.Abs(in1.CStickX) < 0.79:
		p.Body.FaceRight = in.CStickX.Value > 0
		return setAction(action.Fsmash)
	case in0.CStickY >= 0.66 && in1.CStickY < 0.66:
		return setAction(action.Usmash)
	case in0.CStickY <= -0.66 && in1.CStickY > -0.66:
		return setAction(action.Dsmash)
	}
	return nil
}

func (p *Player) checkTaunt(ctx *StepContext, _ *ActionState) *ActionResult {
	in := ctx.Input
	switch {
	case in.Up.Press:
		return setAction(action.TauntUp)
	case in.Down.Press:
		return setAction(action.TauntDown)
	case in.Left.Press:
		return setAction(action.TauntLeft)
	case in.Right.Press:
		return setAction(action.TauntRight)
	}
	return nil
}

func (p *Player) checkShield(ctx *StepContext, _ *ActionState) *ActionResult {
	in := ctx.Input
	in0 := in.At(0)
	held := in0.L || in0.R || in0.LTrigger > 0.165 || in0.RTrigger > 0.165
	def := ctx.Def

	switch {
	case def.Shield != nil && def.PowerShield != nil:
		if in.L.Press || in.R.Press {
			return setAction(action.PowerShield)
		}
		if held {
			return setAction(action.ShieldOn)
		}
	case def.PowerShield != nil:
		if held {
			return setAction(action.PowerShield)
		}
	case def.Shield != nil:
		if held {
			return setAction(action.ShieldOn)
		}
	}
	return nil
}
