package sim

import (
	"math"

	"github.com/vovakirdan/brawl-core/internal/action"
	"github.com/vovakirdan/brawl-core/internal/content"
	"github.com/vovakirdan/brawl-core/internal/core"
)

// LockKind is the phase of a LockTimer.
type LockKind uint8

const (
	LockFree LockKind = iota
	LockActive
	LockLocked
)

// LockTimer is an input window that locks out retries once it closes.
type LockTimer struct {
	Kind   LockKind `json:"kind"`
	Frames int      `json:"frames,omitempty"`
}

// IsActive reports whether the window is open.
func (t LockTimer) IsActive() bool { return t.Kind == LockActive }

// DeathRecord is one lost stock.
type DeathRecord struct {
	Killer *int `json:"killer,omitempty"` // player id of the last attacker
	Frame  int  `json:"frame"`
}

// PlayerStats accumulates what the results screen reports.
type PlayerStats struct {
	Deaths          []DeathRecord `json:"deaths,omitempty"`
	LCancelAttempts int           `json:"lcancel_attempts"`
	LCancelSuccess  int           `json:"lcancel_success"`
}

// Player is a fighter controlled by a controller or bot.
type Player struct {
	ID   int  `json:"id"`
	Team int  `json:"team"`
	Body Body `json:"body"`

	Stocks           int       `json:"stocks"` // -1 is unlimited
	LedgeIdleTimer   int       `json:"ledge_idle_timer"`
	Fastfalled       bool      `json:"fastfalled"`
	AirJumpsLeft     int       `json:"air_jumps_left"`
	JumpsquatButton  bool      `json:"jumpsquat_button"`
	ShieldHP         float64   `json:"shield_hp"`
	ShieldAnalog     float64   `json:"shield_analog"`
	ShieldOffsetX    float64   `json:"shield_offset_x"`
	ShieldOffsetY    float64   `json:"shield_offset_y"`
	StunTimer        int       `json:"stun_timer"`
	ShieldStunTimer  int       `json:"shield_stun_timer"`
	ParryTimer       int       `json:"parry_timer"`
	TechTimer        LockTimer `json:"tech_timer"`
	LCancelTimer     int       `json:"lcancel_timer"`
	LandFrameSkip    int       `json:"land_frame_skip"`
	Hitstun          float64   `json:"hitstun"`
	HitBy            *int      `json:"hit_by,omitempty"`
	AerialDodgeFrame *int      `json:"aerial_dodge_frame,omitempty"`

	Stats PlayerStats `json:"stats"`
}

// NewPlayer creates a player entity standing on the floor below its spawn
// point, or floating at the spawn point when there is no floor.
func NewPlayer(defKey string, team, id int, stage *content.Stage, pkg *content.Package, rules content.Rules) (*Entity, error) {
	def, err := pkg.Entity(defKey)
	if err != nil {
		return nil, err
	}

	loc := Airborne(0, 0)
	faceRight := false
	if len(stage.SpawnPoints) > 0 {
		spawn := stage.SpawnPoints[id%len(stage.SpawnPoints)]
		faceRight = spawn.FaceRight
		p := core.Point{X: spawn.X, Y: spawn.Y}
		if i, ok := stage.FloorBelow(p); ok {
			loc = OnSurface(i, stage.Surfaces[i].WorldXToPlatX(spawn.X))
		} else {
			loc = Airborne(spawn.X, spawn.Y)
		}
	}

	shieldHP := 60.0
	if def.Shield != nil {
		shieldHP = def.Shield.HPMax
	}

	p := &Player{
		ID:           id,
		Team:         team,
		Body:         NewBody(loc, faceRight),
		Stocks:       rules.Stocks(),
		AirJumpsLeft: def.AirJumps(),
		ShieldHP:     shieldHP,
	}
	return &Entity{Player: p, State: NewActionState(defKey, int(action.DummyFramePreStart))}, nil
}

func (p *Player) clone() *Player {
	out := *p
	out.Body = p.Body.clone()
	if p.HitBy != nil {
		v := *p.HitBy
		out.HitBy = &v
	}
	if p.AerialDodgeFrame != nil {
		v := *p.AerialDodgeFrame
		out.AerialDodgeFrame = &v
	}
	out.Stats.Deaths = append([]DeathRecord(nil), p.Stats.Deaths...)
	return &out
}

func (p *Player) relative(v float64) float64 { return p.Body.relative(v) }

func (p *Player) bps(ctx *StepContext, state *ActionState) core.Point {
	return p.Body.bps(ctx.Env, state.frameData(ctx.Def), state)
}

func (p *Player) isShielding(state *ActionState) bool {
	switch action.Player(state.Action) {
	case action.Shield, action.ShieldOn, action.ShieldOff, action.PowerShield:
		return true
	}
	return false
}

// IsEliminated reports whether the player has run out of stocks.
func (e *Entity) IsEliminated() bool {
	return e.Player != nil && action.Player(e.State.Action) == action.Eliminated
}

func (p *Player) shieldSize(shield *content.Shield) float64 {
	analogSize := (1 - p.ShieldAnalog) * 0.6
	hpSize := (p.ShieldHP / shield.HPMax) * shield.HPScaling
	hpSizeUnscaled := ((shield.HPMax - p.ShieldHP) / shield.HPMax) * 2
	return shield.Scaling*(analogSize+hpSize) + hpSizeUnscaled
}

func (p *Player) setAirborne(ctx *StepContext, state *ActionState) {
	pos := p.bps(ctx, state)
	p.Fastfalled = false
	p.Body.Location = Airborne(pos.X, pos.Y)
}

// heldItem returns the key of the item this player holds.
func heldItem(entities *Entities, holder EntityKey) (EntityKey, bool) {
	found := NoKey
	entities.Each(func(key EntityKey, e *Entity) {
		if found.IsZero() && e.Item != nil && e.Item.Body.Location.Kind == LocItemHeld && e.Item.Body.Location.Holder == holder {
			found = key
		}
	})
	return found, !found.IsZero()
}

// heldFighter returns the key of the player this player has grabbed.
func heldFighter(entities *Entities, holder EntityKey) (EntityKey, bool) {
	found := NoKey
	entities.Each(func(key EntityKey, e *Entity) {
		if found.IsZero() && e.Player != nil && e.Player.Body.Location.Kind == LocGrabbedByPlayer && e.Player.Body.Location.Holder == holder {
			found = key
		}
	})
	return found, !found.IsZero()
}

func (p *Player) hasItem(ctx *StepContext) bool {
	_, ok := heldItem(ctx.Entities, ctx.Key)
	return ok
}

func (p *Player) launch(ctx *StepContext, state *ActionState, hit content.HitBox, hurt content.HurtBox, attacker EntityKey) *ActionResult {
	p.HitBy = nil
	if atk := ctx.Entities.Get(attacker); atk != nil {
		if id, ok := atk.PlayerID(); ok {
			p.HitBy = &id
		}
	}
	mult := 1.0
	if action.Player(state.Action) == action.Crouch {
		mult = 0.67
	}

	kb := p.Body.launch(ctx, state, state.frameData(ctx.Def), hit, hurt, attacker, mult)
	if p.Body.IsAirborne() {
		p.Fastfalled = false
		p.Hitstun = hit.HitStun.Duration(kb)
	}

	if kb > 80 {
		return setAction(action.DamageFly)
	}
	return setAction(action.Damage)
}

// stepCollision applies this frame's results in emission order. A hit takes
// the action over: no other request replaces a launch, whichever order the
// results arrive in.
func (p *Player) stepCollision(ctx *StepContext, state *ActionState, results []CollisionResult) *ActionResult {
	var r *ActionResult
	hit := false
	for _, result := range results {
		if result.Kind == HitDef {
			hit = true
			break
		}
	}
	for _, result := range results {
		switch result.Kind {
		case HitDef:
			if held, ok := heldFighter(ctx.Entities, ctx.Key); ok {
				ctx.send(held, PlayerReleased{})
			}
			r = p.launch(ctx, state, result.Hit, result.Hurt, result.Other)

		case HitShieldAtk:
			def := ctx.Entities.Get(result.Other)
			if def == nil || def.Player == nil {
				continue
			}
			if ps := result.PowerShield; ps != nil && ps.EnemyStun != nil &&
				action.Player(def.State.Action) == action.PowerShield && ps.EnemyStun.Window > def.State.Frame {
				p.StunTimer = ps.EnemyStun.Duration
				if !hit {
					r = setAction(action.Stun)
				}
			}
			xDiff := p.bps(ctx, state).X - def.BPS(ctx.Env).X
			vel := math.Floor(result.Hit.Damage)*(def.Player.ShieldAnalog-0.3)*0.1 + 0.02
			if p.Body.IsPlatform() {
				p.Body.XVel += vel * core.Signum(xDiff)
			}

		case HitShieldDef:
			if ps := result.PowerShield; ps != nil && ps.Parry != nil &&
				action.Player(state.Action) == action.PowerShield && ps.Parry.Window > state.Frame {
				p.ParryTimer = ps.Parry.Duration
			}
			if p.ParryTimer == 0 {
				p.ShieldHP -= result.Hit.ShieldDamage
				if p.ShieldHP <= 0 {
					continue
				}
			}
			analogMult := 1 - (p.ShieldAnalog-0.3)/0.7
			velMult := 0.6
			if p.ParryTimer > 0 {
				velMult = 1
			}
			var atkX float64
			if atk := ctx.Entities.Get(result.Other); atk != nil {
				atkX = atk.BPS(ctx.Env).X
			}
			xDiff := p.bps(ctx, state).X - atkX
			dmg := math.Floor(result.Hit.Damage)
			vel := (dmg*(0.195*analogMult+0.09) + 0.4) * velMult
			p.Body.XVel = math.Min(vel, 2) * core.Signum(xDiff)
			p.ShieldStunTimer = int(dmg*(analogMult+0.3)*0.975 + 2)

		case GrabAtk:
			if hit {
				continue
			}
			r = setAction(action.GrabbingIdle)

		case GrabDef:
			if hit {
				continue
			}
			if atk := ctx.Entities.Get(result.Other); atk != nil {
				p.Body.FaceRight = !atk.FaceRight()
			}
			p.Body.Location = GrabbedBy(result.Other)
			r = setAction(action.GrabbedIdle)

		case Clang:
			if result.Rebound && !hit && p.Body.IsPlatform() {
				r = setAction(action.Rebound)
			}
		}
	}
	return r
}

func (p *Player) processMessage(ctx *StepContext, state *ActionState, msg MessageContents) *ActionResult {
	switch m := msg.(type) {
	case PlayerThrown:
		hit := content.HitBox{
			Damage: m.Damage,
			BKB:    m.BKB,
			KBG:    m.KBG,
			Angle:  m.Angle,
		}
		return p.launch(ctx, state, hit, content.DefaultHurtBox(), m.Attacker)
	case PlayerReleased:
		if !p.Body.IsGrabbed() {
			return nil
		}
		p.setAirborne(ctx, state)
		return setAction(action.Fall)
	}
	return nil
}

func (p *Player) sendThrown(ctx *StepContext, throw content.Throw) {
	held, ok := heldFighter(ctx.Entities, ctx.Key)
	if !ok {
		return
	}
	angle := throw.Angle
	if !p.Body.FaceRight {
		angle = 180 - angle
	}
	ctx.send(held, PlayerThrown{Angle: angle, Damage: throw.Damage, BKB: throw.BKB, KBG: throw.KBG, Attacker: ctx.Key})
}

func (p *Player) itemGrab(state *ActionState) *ActionResult {
	if action.Player(state.Action) == action.Jab {
		return setAction(action.ItemGrab)
	}
	return nil
}

func (p *Player) physicsStep(ctx *StepContext, state *ActionState) *ActionResult {
	switch p.Body.physicsStep(ctx, state, state.frameData(ctx.Def)) {
	case PhysicsFall:
		p.Fastfalled = false
		return setAction(action.Fall)
	case PhysicsLand:
		p.Hitstun = 0
		return p.land(ctx, state)
	case PhysicsTeeter:
		return setAction(action.Teeter)
	case PhysicsLedgeGrab:
		p.Fastfalled = false
		p.AirJumpsLeft = ctx.Def.AirJumps()
		p.HitBy = nil
		return setAction(action.LedgeGrab)
	case PhysicsOutOfBounds:
		return p.die(ctx)
	}
	return nil
}

func (p *Player) applyFriction(def *content.EntityDef, state *ActionState) {
	switch action.Player(state.Action) {
	case action.Idle, action.Dash, action.Shield, action.ShieldOn, action.ShieldOff, action.Damage:
		p.Body.applyFrictionWeak(def)
	default:
		p.Body.applyFrictionStrong(def)
	}
}

// camArea returns the area around the player the camera must include,
// shifted to lie within camMax.
func (p *Player) camArea(env Env, def *content.EntityDef, state *ActionState, camMax core.Box) (core.Box, bool) {
	if action.Player(state.Action) == action.Eliminated {
		return core.Box{}, false
	}
	pos := p.Body.bps(env, state.frameData(def), state)
	left, right := pos.X-40, pos.X+7
	if p.Body.FaceRight {
		left, right = pos.X-7, pos.X+40
	}
	bot, top := pos.Y-5, pos.Y+25

	if left < camMax.Left() {
		diff := left - camMax.Left()
		left -= diff
		right -= diff
	} else if right > camMax.Right() {
		diff := right - camMax.Right()
		left -= diff
		right -= diff
	}
	if bot < camMax.Bot() {
		diff := bot - camMax.Bot()
		bot -= diff
		top -= diff
	} else if top > camMax.Top() {
		diff := top - camMax.Top()
		bot -= diff
		top -= diff
	}
	return core.Box{X1: left, Y1: bot, X2: right, Y2: top}, true
}

func (p *Player) land(ctx *StepContext, state *ActionState) *ActionResult {
	a := action.Player(state.Action)

	switch {
	case a.IsAirAttack() && p.LCancelTimer > 0:
		p.LandFrameSkip = 1
	case a == action.AerialDodge, a == action.SpecialFall:
		p.LandFrameSkip = 2
	default:
		p.LandFrameSkip = 0
	}
	if a.IsAirAttack() {
		p.Stats.LCancelAttempts++
		if p.LCancelTimer > 0 {
			p.Stats.LCancelSuccess++
		}
	}

	p.AerialDodgeFrame = nil
	if a == action.AerialDodge {
		frame := state.Frame
		p.AerialDodgeFrame = &frame
	}

	p.Fastfalled = false
	p.AirJumpsLeft = ctx.Def.AirJumps()
	p.HitBy = nil

	switch a {
	case action.Uair:
		return setAction(action.UairLand)
	case action.Dair:
		return setAction(action.DairLand)
	case action.Fair:
		return setAction(action.FairLand)
	case action.Bair:
		return setAction(action.BairLand)
	case action.Nair:
		return setAction(action.NairLand)
	case action.ShieldBreakFall:
		return setAction(action.ShieldBreakGetup)
	case action.DamageFly, action.DamageFall:
		if !p.TechTimer.IsActive() {
			return setAction(action.MissedTechStart)
		}
		switch x := p.relative(ctx.Input.At(0).StickX); {
		case x > 0.5:
			return setAction(action.TechF)
		case x < -0.5:
			return setAction(action.TechB)
		}
		return setAction(action.TechN)
	case action.SpecialFall, action.AerialDodge:
		return setAction(action.SpecialLand)
	}
	if p.Body.YVel >= -1 {
		return setAction(action.Idle)
	}
	return setAction(action.Land)
}

func (p *Player) walk(ctx *StepContext) *ActionResult {
	initVel := p.relative(ctx.Def.WalkInitVel)
	if initVel > 0 && p.Body.XVel < initVel || initVel < 0 && p.Body.XVel > initVel {
		p.Body.XVel += initVel
	}
	return setAction(action.Walk)
}

func (p *Player) die(ctx *StepContext) *ActionResult {
	respawn := ctx.Stage.Respawn(p.ID)
	p.Body = NewBody(Airborne(respawn.X, respawn.Y), respawn.FaceRight)
	p.AirJumpsLeft = ctx.Def.AirJumps()
	p.Fastfalled = false
	p.Hitstun = 0

	record := DeathRecord{Frame: ctx.Frame}
	if p.HitBy != nil {
		killer := *p.HitBy
		record.Killer = &killer
	}
	p.Stats.Deaths = append(p.Stats.Deaths, record)

	switch ctx.Rules.Goal {
	case content.GoalKillDeathScore:
		return setAction(action.ReSpawn)
	default:
		if p.Stocks < 0 {
			return nil
		}
		p.Stocks--
		if p.Stocks <= 0 {
			p.Stocks = 0
			return setAction(action.Eliminated)
		}
		return setAction(action.ReSpawn)
	}
}

func (p *Player) fallAction(def *content.EntityDef) {
	p.Body.YVel += def.Gravity
	if p.Body.YVel < def.TerminalVel {
		p.Body.YVel = def.TerminalVel
	}
}

func (p *Player) fastfallAction(ctx *StepContext) {
	if p.Fastfalled {
		return
	}
	in := ctx.Input
	if in.At(0).StickY < -0.65 && in.At(3).StickY > -0.1 && p.Body.YVel < 0 {
		p.Fastfalled = true
		p.Body.YVel = ctx.Def.FastfallTerminalVel
		return
	}
	p.fallAction(ctx.Def)
}

func (p *Player) airDrift(ctx *StepContext) {
	def := ctx.Def
	stickX := ctx.Input.At(0).StickX
	termVel := def.AirXTermVel * stickX
	drift := math.Abs(stickX) >= 0.3

	if !drift || termVel < 0 && p.Body.XVel < termVel || termVel > 0 && p.Body.XVel > termVel {
		if p.Body.XVel > 0 {
			p.Body.XVel = math.Max(0, p.Body.XVel-def.AirFriction)
		} else if p.Body.XVel < 0 {
			p.Body.XVel = math.Min(0, p.Body.XVel+def.AirFriction)
		}
	}

	if drift && (termVel < 0 && p.Body.XVel > termVel || termVel > 0 && p.Body.XVel < termVel) {
		p.Body.XVel += def.AirMobilityA*stickX + def.AirMobilityB*core.Signum(stickX)
	}
}

// tickTimers advances the player's per-frame timers. It runs once per tick,
// before the action's behavior.
func (p *Player) tickTimers(ctx *StepContext, state *ActionState) {
	def := ctx.Def
	in := ctx.Input
	a := action.Player(state.Action)

	if !p.isShielding(state) && def.Shield != nil {
		p.ShieldHP = math.Min(def.Shield.HPMax, p.ShieldHP+def.Shield.HPRegen)
	}
	if p.ParryTimer > 0 {
		p.ParryTimer--
	}
	if p.ShieldStunTimer > 0 {
		p.ShieldStunTimer--
	}

	if p.LCancelTimer > 0 {
		p.LCancelTimer--
	} else if in.L.Press || in.R.Press || in.At(0).LTrigger > 0.165 || in.At(0).RTrigger > 0.165 ||
		in.Z.Press && !(state.Frame == 0 && a.IsAirAttack()) {
		if def.LCancel != nil {
			p.LCancelTimer = def.LCancel.ActiveWindow
		}
	}

	p.TechTimer = p.nextTechTimer(def, in)
}

// actionStep runs the current action's behavior.
func (p *Player) actionStep(ctx *StepContext, state *ActionState) *ActionResult {
	def := ctx.Def
	a := action.Player(state.Action)
	if frame := state.frameData(def); frame != nil {
		prevBottom := p.Body.ECB.Bottom
		p.Body.ECB = frame.ECB
		switch a {
		case action.JumpF, action.JumpB, action.JumpAerialF, action.JumpAerialB:
			if state.Frame < 10 {
				p.Body.ECB.Bottom = prevBottom
			}
		}
	}

	return p.frameStep(ctx, state)
}

func (p *Player) nextTechTimer(def *content.EntityDef, in *core.PlayerInput) LockTimer {
	if def.Tech == nil {
		return LockTimer{}
	}
	t := p.TechTimer
	switch t.Kind {
	case LockActive:
		if t.Frames > def.Tech.ActiveWindow {
			return LockTimer{Kind: LockLocked}
		}
		return LockTimer{Kind: LockActive, Frames: t.Frames + 1}
	case LockLocked:
		if t.Frames > def.Tech.LockedWindow {
			return LockTimer{}
		}
		return LockTimer{Kind: LockLocked, Frames: t.Frames + 1}
	default:
		if in.L.Press || in.R.Press {
			return LockTimer{Kind: LockActive}
		}
		return LockTimer{}
	}
}
