package sim

import (
	"fmt"
	"math"

	"github.com/vovakirdan/brawl-core/internal/action"
	"github.com/vovakirdan/brawl-core/internal/core"
)

// actionExpired picks the action that follows the last frame of the current one.
// Every player action has an entry; an unknown action is a programming error.
func (p *Player) actionExpired(ctx *StepContext, state *ActionState) *ActionResult {
	var next action.Player

	switch a := action.Player(state.Action); a {
	case action.Spawn:
		next = action.Idle
	case action.ReSpawn, action.ReSpawnIdle:
		next = action.ReSpawnIdle
	case action.Idle:
		next = action.Idle
	case action.Teeter, action.TeeterIdle:
		next = action.TeeterIdle
	case action.MissedTechIdle:
		next = action.MissedTechIdle

	case action.CrouchStart, action.Crouch:
		next = action.Crouch
	case action.CrouchEnd:
		next = action.Idle

	case action.Fall, action.JumpF, action.JumpB:
		next = action.Fall
	case action.AerialFall, action.JumpAerialF, action.JumpAerialB, action.PassPlatform:
		next = action.AerialFall
	case action.Land, action.SmashTurn, action.TiltTurn, action.Dash, action.RunEnd:
		next = action.Idle
	case action.RunTurn:
		next = action.Idle
		if p.relative(ctx.Input.At(0).StickX) > 0.6 {
			next = action.Run
		}
	case action.Run:
		next = action.Run
	case action.Walk:
		next = action.Walk
	case action.Damage, action.DamageFly, action.DamageFall:
		next = a
	case action.LedgeGetup, action.LedgeGetupSlow, action.LedgeRoll, action.LedgeRollSlow,
		action.LedgeAttack, action.LedgeAttackSlow:
		next = p.idleFromLedge(ctx, state)
	case action.LedgeJump, action.LedgeJumpSlow:
		p.setAirborne(ctx, state)
		next = action.Fall
	case action.LedgeIdle, action.LedgeIdleChain:
		next = a
	case action.LedgeGrab:
		p.LedgeIdleTimer = 0
		next = action.LedgeIdle
	case action.JumpSquat:
		next = p.jumpsquatExpired(ctx, state)

	case action.PowerShield:
		next = action.Idle
		if ctx.Def.Shield != nil {
			next = action.Shield
		}
	case action.ShieldOn, action.Shield:
		next = action.Shield
	case action.ShieldOff, action.RollF, action.RollB, action.SpotDodge, action.SpecialLand,
		action.TechF, action.TechN, action.TechB,
		action.MissedTechGetupF, action.MissedTechGetupN, action.MissedTechGetupB, action.Rebound:
		next = action.Idle
	case action.AerialDodge, action.SpecialFall:
		next = action.SpecialFall

	case action.MissedTechStart:
		next = action.MissedTechIdle
	case action.ShieldBreakFall, action.Stun:
		next = a
	case action.ShieldBreakGetup:
		p.StunTimer = 490
		next = action.Stun

	case action.Jab, action.Jab2, action.Jab3, action.Utilt, action.Ftilt, action.DashAttack,
		action.Usmash, action.Dsmash, action.Fsmash, action.MissedTechAttack:
		next = action.Idle
	case action.Dtilt:
		next = action.Crouch

	case action.Grab, action.DashGrab, action.GrabbingEnd, action.GrabbedEnd:
		next = action.Idle
	case action.GrabbingIdle, action.GrabbedIdleAir, action.GrabbedIdle:
		next = a

	case action.Uthrow, action.Dthrow, action.Fthrow, action.Bthrow:
		next = action.Idle

	case action.ItemGrab, action.ItemEat, action.ItemThrowU, action.ItemThrowD, action.ItemThrowF, action.ItemThrowB:
		next = action.Idle
	case action.ItemThrowAirU, action.ItemThrowAirD, action.ItemThrowAirF, action.ItemThrowAirB:
		next = action.Fall

	case action.Uair, action.Dair, action.Fair, action.Bair, action.Nair:
		next = action.Fall
	case action.UairLand, action.DairLand, action.FairLand, action.BairLand, action.NairLand:
		next = action.Idle

	case action.UspecialGroundStart, action.DspecialGroundStart, action.SspecialGroundStart, action.NspecialGroundStart:
		next = action.Idle
	case action.UspecialAirStart, action.DspecialAirStart, action.SspecialAirStart, action.NspecialAirStart:
		next = action.Fall

	case action.TauntUp, action.TauntDown, action.TauntLeft, action.TauntRight:
		next = action.Idle

	case action.Eliminated:
		next = action.Eliminated
	case action.DummyFramePreStart:
		next = action.Spawn

	default:
		panic(fmt.Sprintf("sim: player action %d has no expiry", state.Action))
	}
	return setAction(next)
}

// idleFromLedge stands the player on the platform of the ledge it hangs from.
func (p *Player) idleFromLedge(ctx *StepContext, state *ActionState) action.Player {
	if !p.Body.IsLedge() {
		panic("sim: idleFromLedge called off a ledge")
	}
	platform := p.Body.Location.Platform
	x := ctx.Stage.Surfaces[platform].WorldXToPlatXClamp(p.bps(ctx, state).X)
	p.Body.Location = OnSurface(platform, x)
	return action.Idle
}

func (p *Player) jumpsquatExpired(ctx *StepContext, state *ActionState) action.Player {
	def := ctx.Def
	in := ctx.Input

	p.setAirborne(ctx, state)
	p.Body.Location.Y += 0.0001

	shorthop := in.At(0).StickY < 0.67
	if p.JumpsquatButton {
		shorthop = !in.At(0).X && !in.At(0).Y
	}
	if shorthop {
		p.Body.YVel = def.JumpYInitVelShort
	} else {
		p.Body.YVel = def.JumpYInitVel
	}

	p.Body.XVel = p.Body.XVel*def.JumpXVelGroundMult + in.At(0).StickX*def.JumpXInitVel
	if math.Abs(p.Body.XVel) > def.JumpXTermVel {
		p.Body.XVel = def.JumpXTermVel * core.Signum(p.Body.XVel)
	}

	if p.relative(in.At(2).StickX) >= -0.3 {
		return action.JumpF
	}
	return action.JumpB
}
