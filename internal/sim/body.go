package sim

import (
	"math"

	"github.com/vovakirdan/brawl-core/internal/content"
	"github.com/vovakirdan/brawl-core/internal/core"
)

// LocationKind says what a body's position is measured from.
type LocationKind uint8

const (
	LocAirborne LocationKind = iota
	LocSurface
	LocLedge
	LocGrabbedByPlayer
	LocItemHeld
)

// Location describes a body's position as an offset from something else.
//
//	Airborne:        X, Y are world coordinates
//	Surface:         Platform is the surface index, X the offset from its middle
//	Ledge:           Platform is the surface index, X, Y the offset from the ledge;
//	                 the body's facing picks the ledge
//	GrabbedByPlayer: Holder is the grabbing player
//	ItemHeld:        Holder is the player holding the item
type Location struct {
	Kind     LocationKind `json:"kind"`
	Platform int          `json:"platform,omitempty"`
	X        float64      `json:"x,omitempty"`
	Y        float64      `json:"y,omitempty"`
	Hog      bool         `json:"hog,omitempty"`
	Holder   EntityKey    `json:"holder,omitempty"`
}

// Airborne returns a free-floating location.
func Airborne(x, y float64) Location {
	return Location{Kind: LocAirborne, X: x, Y: y}
}

// OnSurface returns a location standing on a surface.
func OnSurface(platform int, x float64) Location {
	return Location{Kind: LocSurface, Platform: platform, X: x}
}

// OnLedge returns a location hanging from a ledge.
func OnLedge(platform int, dx, dy float64) Location {
	return Location{Kind: LocLedge, Platform: platform, X: dx, Y: dy, Hog: true}
}

// GrabbedBy returns a location held by a grabbing player.
func GrabbedBy(holder EntityKey) Location {
	return Location{Kind: LocGrabbedByPlayer, Holder: holder}
}

// HeldBy returns a location of an item held by a player.
func HeldBy(holder EntityKey) Location {
	return Location{Kind: LocItemHeld, Holder: holder}
}

// PhysicsResult is what happened to a body during its physics step.
type PhysicsResult uint8

const (
	PhysicsNone PhysicsResult = iota
	PhysicsFall
	PhysicsLand
	PhysicsTeeter
	PhysicsLedgeGrab
	PhysicsOutOfBounds
)

// Body is the physical state shared by players and items.
type Body struct {
	ECB              content.ECB `json:"ecb"`
	Damage           float64     `json:"damage"`
	XVel             float64     `json:"x_vel"`
	YVel             float64     `json:"y_vel"`
	KBXVel           float64     `json:"kb_x_vel"`
	KBYVel           float64     `json:"kb_y_vel"`
	KBXDec           float64     `json:"kb_x_dec"`
	KBYDec           float64     `json:"kb_y_dec"`
	Location         Location    `json:"location"`
	FaceRight        bool        `json:"face_right"`
	FramesSinceLedge int         `json:"frames_since_ledge"`

	// Debug display only.
	FramesSinceHit int      `json:"frames_since_hit"`
	HitAnglePreDI  *float64 `json:"hit_angle_pre_di,omitempty"`
	HitAnglePostDI *float64 `json:"hit_angle_post_di,omitempty"`
}

// NewBody returns a body at rest.
func NewBody(loc Location, faceRight bool) Body {
	return Body{ECB: content.DefaultECB(), Location: loc, FaceRight: faceRight}
}

func (b Body) clone() Body {
	out := b
	if b.HitAnglePreDI != nil {
		v := *b.HitAnglePreDI
		out.HitAnglePreDI = &v
	}
	if b.HitAnglePostDI != nil {
		v := *b.HitAnglePostDI
		out.HitAnglePostDI = &v
	}
	return out
}

func (b *Body) IsAirborne() bool { return b.Location.Kind == LocAirborne }
func (b *Body) IsPlatform() bool { return b.Location.Kind == LocSurface }
func (b *Body) IsLedge() bool    { return b.Location.Kind == LocLedge }
func (b *Body) IsGrabbed() bool  { return b.Location.Kind == LocGrabbedByPlayer }
func (b *Body) IsItemHeld() bool { return b.Location.Kind == LocItemHeld }

// IsHoggingLedge reports whether the body occupies the given ledge.
func (b *Body) IsHoggingLedge(platform int, faceRight bool) bool {
	return b.Location.Kind == LocLedge && b.Location.Hog &&
		b.Location.Platform == platform && b.FaceRight == faceRight
}

// relative mirrors a value authored for a right-facing body.
func (b *Body) relative(v float64) float64 {
	if b.FaceRight {
		return v
	}
	return -v
}

// bps returns the world position of the body's base.
func (b *Body) bps(env Env, frame *content.ActionFrame, state *ActionState) core.Point {
	var p core.Point
	loc := b.Location
	switch loc.Kind {
	case LocSurface:
		if s := env.Stage.Surface(loc.Platform); s != nil {
			p = s.PlatXToWorldP(loc.X)
		}
	case LocLedge:
		if s := env.Stage.Surface(loc.Platform); s != nil {
			ledge := s.RightLedge()
			if b.FaceRight {
				ledge = s.LeftLedge()
			}
			p = core.Point{X: ledge.X + b.relative(loc.X), Y: ledge.Y + loc.Y}
		}
	case LocGrabbedByPlayer:
		if holder := env.Entities.Get(loc.Holder); holder != nil && frame != nil {
			g := holder.grabbingPoint(env)
			p = core.Point{X: g.X - b.relative(frame.Grabbed.X), Y: g.Y - frame.Grabbed.Y}
		}
	case LocItemHeld:
		if holder := env.Entities.Get(loc.Holder); holder != nil {
			p = holder.BPS(env)
			if hf := holder.State.frameData(env.def(holder)); hf != nil && hf.ItemHold != nil {
				p = core.Point{X: p.X + holder.relative(hf.ItemHold.X), Y: p.Y + hf.ItemHold.Y}
			}
		}
	case LocAirborne:
		p = core.Point{X: loc.X, Y: loc.Y}
	}

	if state.Hitlag.Kind == HitlagLaunch {
		p.X += state.Hitlag.WobbleX
	}
	return p
}

// angle returns the rotation applied to the body's boxes.
func (b *Body) angle(frame *content.ActionFrame, stage *content.Stage) float64 {
	if b.Location.Kind == LocSurface && frame != nil && frame.UsePlatformAngle {
		if s := stage.Surface(b.Location.Platform); s != nil && s.IsFloor() {
			return s.FloorAngle()
		}
	}
	return 0
}

// physicsStep applies knockback decay and velocity, then resolves floors,
// ledges and the blast zone.
func (b *Body) physicsStep(ctx *StepContext, state *ActionState, frame *content.ActionFrame) PhysicsResult {
	if state.Hitlag.Active() {
		return PhysicsNone
	}

	if b.KBXVel != 0 {
		dir := core.Signum(b.KBXVel)
		if b.IsAirborne() {
			b.KBXVel -= b.KBXDec
		} else {
			b.KBXVel -= dir * ctx.Def.Friction
		}
		if dir != core.Signum(b.KBXVel) {
			b.KBXVel = 0
		}
	}

	if b.KBYVel != 0 {
		if b.IsAirborne() {
			dir := core.Signum(b.KBYVel)
			b.KBYVel -= b.KBYDec
			if dir != core.Signum(b.KBYVel) {
				b.KBYVel = 0
			}
		} else {
			b.KBYVel = 0
		}
	}

	xVel := b.XVel + b.KBXVel
	yVel := b.YVel + b.KBYVel

	if b.IsLedge() {
		b.FramesSinceLedge = 0
	}
	b.FramesSinceLedge++

	result := PhysicsNone
	switch b.Location.Kind {
	case LocAirborne:
		old := core.Point{X: b.Location.X, Y: b.Location.Y}
		next := core.Point{X: old.X + xVel, Y: old.Y + yVel}
		if i, ok := b.landStageCollision(ctx, frame, old, next); ok {
			b.YVel = 0
			b.KBYVel = 0
			b.Location = OnSurface(i, ctx.Stage.Surfaces[i].WorldXToPlatX(next.X))
			result = PhysicsLand
		} else {
			b.Location = Airborne(next.X, next.Y)
		}
	case LocSurface:
		if s := ctx.Stage.Surface(b.Location.Platform); s != nil {
			x := b.Location.X + xVel*math.Cos(s.FloorAngle())
			result = b.floorMove(ctx, state, frame, b.Location.Platform, x, 0)
		} else {
			b.Location = Airborne(0, 0)
			result = PhysicsFall
		}
	}
	if result != PhysicsNone {
		return result
	}
	return b.secondaryChecks(ctx, state, frame)
}

func (b *Body) secondaryChecks(ctx *StepContext, state *ActionState, frame *content.ActionFrame) PhysicsResult {
	blast := ctx.Stage.Blast
	p := b.bps(ctx.Env, frame, state)
	if p.X < blast.Left() || p.X > blast.Right() || p.Y < blast.Bot() || p.Y > blast.Top() {
		return PhysicsOutOfBounds
	}

	if b.FramesSinceLedge >= 30 && b.YVel < 0 && ctx.Input.StickY.Value > -0.5 && frame != nil && frame.LedgeGrabBox != nil {
		return b.checkLedgeGrab(ctx, *frame.LedgeGrabBox)
	}
	return PhysicsNone
}

func (b *Body) checkLedgeGrab(ctx *StepContext, grabBox core.Box) PhysicsResult {
	for i := range ctx.Stage.Surfaces {
		s := &ctx.Stage.Surfaces[i]
		leftGrab := s.GrabLeft && b.ledgeInReach(grabBox, s.LeftLedge()) && !ledgeHogged(ctx.Entities, i, true)
		rightGrab := s.GrabRight && b.ledgeInReach(grabBox, s.RightLedge()) && !ledgeHogged(ctx.Entities, i, false)

		// With both ledges in reach keep the current facing.
		if leftGrab && !rightGrab {
			b.FaceRight = true
		} else if !leftGrab && rightGrab {
			b.FaceRight = false
		}

		if leftGrab || rightGrab {
			b.XVel = 0
			b.YVel = 0
			b.Location = OnLedge(i, ctx.Def.LedgeGrabX, ctx.Def.LedgeGrabY)
			return PhysicsLedgeGrab
		}
	}
	return PhysicsNone
}

func ledgeHogged(entities *Entities, platform int, faceRight bool) bool {
	hogged := false
	entities.Each(func(_ EntityKey, e *Entity) {
		if body := e.Body(); body != nil && body.IsHoggingLedge(platform, faceRight) {
			hogged = true
		}
	})
	return hogged
}

func (b *Body) ledgeInReach(grabBox core.Box, ledge core.Point) bool {
	if !b.IsAirborne() {
		return false
	}
	x1, x2 := b.relative(grabBox.X1), b.relative(grabBox.X2)
	box := core.Box{
		X1: b.Location.X + math.Min(x1, x2),
		Y1: b.Location.Y + grabBox.Bot(),
		X2: b.Location.X + math.Max(x1, x2),
		Y2: b.Location.Y + grabBox.Top(),
	}
	return box.ContainsStrict(ledge)
}

// landStageCollision returns the floor crossed while moving from old to next.
func (b *Body) landStageCollision(ctx *StepContext, frame *content.ActionFrame, old, next core.Point) (int, bool) {
	if next.Y > old.Y {
		return 0, false
	}
	for i := range ctx.Stage.Surfaces {
		s := &ctx.Stage.Surfaces[i]
		if !s.IsFloor() || passThrough(ctx, frame, s) {
			continue
		}
		if core.SegmentsIntersect(old, next, s.P1(), s.P2()) {
			return i, true
		}
	}
	return 0, false
}

func passThrough(ctx *StepContext, frame *content.ActionFrame, s *content.Surface) bool {
	return s.IsPassThrough() && frame != nil && frame.PassThrough && ctx.Input.StickY.Value <= -0.56
}

// floorMove walks a grounded body along connected floors. Leaving the last
// floor either falls off, teeters or clamps depending on the frame's flags.
func (b *Body) floorMove(ctx *StepContext, state *ActionState, frame *content.ActionFrame, platform int, x float64, depth int) PhysicsResult {
	s := &ctx.Stage.Surfaces[platform]
	left, right := ctx.Stage.ConnectedFloors(platform)

	switch {
	case s.PlatXInBounds(x):
		b.Location = OnSurface(platform, x)
		return PhysicsNone
	case x < 0 && left >= 0 && depth < len(ctx.Stage.Surfaces):
		next := &ctx.Stage.Surfaces[left]
		return b.floorMove(ctx, state, frame, left, next.WorldXToPlatX(s.PlatXToWorldX(x)), depth+1)
	case x > 0 && right >= 0 && depth < len(ctx.Stage.Surfaces):
		next := &ctx.Stage.Surfaces[right]
		return b.floorMove(ctx, state, frame, right, next.WorldXToPlatX(s.PlatXToWorldX(x)), depth+1)
	case frame != nil && !frame.LedgeCancel:
		b.Location = OnSurface(platform, s.PlatXClamp(x))
		return PhysicsNone
	case b.FaceRight && x < 0 || !b.FaceRight && x >= 0 || b.relative(ctx.Input.StickX.Value) > 0.6:
		// facing away from the ledge or holding towards it
		if math.Abs(b.XVel) > ctx.Def.AirXTermVel {
			b.XVel = core.Signum(b.XVel) * ctx.Def.AirXTermVel
		}
		offset := -0.000001
		if x > 0 {
			offset = 0.000001
		}
		p := s.PlatXToWorldP(x + offset)
		b.Location = Airborne(p.X, p.Y)
		return PhysicsFall
	default:
		b.XVel = 0
		b.Location = OnSurface(platform, s.PlatXClamp(x))
		return PhysicsTeeter
	}
}

func (b *Body) applyFrictionWeak(def *content.EntityDef) {
	if b.XVel > 0 {
		b.XVel = math.Max(0, b.XVel-def.Friction)
	} else {
		b.XVel = math.Min(0, b.XVel+def.Friction)
	}
}

func (b *Body) applyFrictionStrong(def *content.EntityDef) {
	if b.XVel > 0 {
		mult := 1.0
		if b.XVel > def.WalkMaxVel {
			mult = 2
		}
		b.XVel = math.Max(0, b.XVel-def.Friction*mult)
	} else {
		mult := 1.0
		if b.XVel < -def.WalkMaxVel {
			mult = 2
		}
		b.XVel = math.Min(0, b.XVel+def.Friction*mult)
	}
}

// Knockback returns the launch strength of a hit:
// min(bkb + kbg*(launch*weightFactor*1.4 + 18), 2500).
// damage is the defender's percent after the hit was applied.
func Knockback(hit content.HitBox, hurt content.HurtBox, damage, weight float64) float64 {
	done := hit.Damage * hurt.DamageMult
	launch := 0.05*(hit.Damage*(done+math.Floor(damage))) + (done+damage)*0.1
	weightFactor := 2 - (2*weight)/(1+weight)
	kbg := hit.KBG + hurt.KBGAdd
	bkb := hit.BKB + hurt.BKBAdd
	return math.Min(bkb+kbg*(launch*weightFactor*1.4+18), 2500)
}

// launchAngle resolves the sakurai angle and converts to radians in [0, 2pi).
func launchAngle(angleDeg, kb float64) float64 {
	switch angleDeg {
	case 361:
		angleDeg = 44
		if kb < 32.1 {
			angleDeg = 0
		}
	case 180 - 361:
		angleDeg = 180 - 44
		if kb < 32.1 {
			angleDeg = 180
		}
	}
	rad := angleDeg * math.Pi / 180
	if angleDeg < 0 {
		rad += 2 * math.Pi
	}
	return rad
}

// launch applies a hit to the body and returns the knockback.
func (b *Body) launch(ctx *StepContext, state *ActionState, frame *content.ActionFrame, hit content.HitBox, hurt content.HurtBox, attacker EntityKey, kbMult float64) float64 {
	atk := ctx.Entities.Get(attacker)

	b.Damage += hit.Damage * hurt.DamageMult
	kb := Knockback(hit, hurt, b.Damage, ctx.Def.Weight) * kbMult

	if !b.IsGrabbed() || kb > 50 {
		p := b.bps(ctx.Env, frame, state)
		b.Location = Airborne(p.X, p.Y)
	}

	angle := launchAngle(hit.Angle, kb)

	var atkX float64
	atkRight := true
	if atk != nil {
		atkX = atk.BPS(ctx.Env).X
		atkRight = atk.FaceRight()
	}
	selfX := b.bps(ctx.Env, frame, state).X
	behind := selfX < atkX && atkRight || selfX > atkX && !atkRight
	if hit.EnableReverseHit && behind {
		angle = math.Pi - angle
	}

	pre := angle
	b.HitAnglePreDI = &pre
	b.HitAnglePostDI = nil
	b.FramesSinceHit = 0

	in := ctx.Input
	canDI := kb >= 80 || b.IsAirborne() || (angle != 0 && angle != math.Pi)
	if canDI && !(in.StickX.Value == 0 && in.StickY.Value == 0) {
		angle = directionalInfluence(in.StickX.Value, in.StickY.Value, angle)
	}

	sin, cos := math.Sincos(angle)
	b.XVel = 0
	b.YVel = 0
	b.KBXVel = cos * kb * 0.03
	b.KBYVel = sin * kb * 0.03
	b.KBXDec = cos * 0.051
	b.KBYDec = sin * 0.051
	post := angle
	b.HitAnglePostDI = &post

	if b.KBYVel == 0 {
		if kb >= 80 {
			p := b.bps(ctx.Env, frame, state)
			b.Location = Airborne(p.X, p.Y+0.0001)
		}
	} else if b.KBYVel > 0 {
		p := b.bps(ctx.Env, frame, state)
		b.Location = Airborne(p.X, p.Y)
	}
	b.FaceRight = b.bps(ctx.Env, frame, state).X < atkX

	return kb
}

// directionalInfluence bends a launch angle in [0, 2pi) towards the stick by up to 18 degrees.
func directionalInfluence(x, y, angle float64) float64 {
	const rangeRad = 18 * math.Pi / 180
	di := math.Atan2(y, x)
	if di < 0 {
		di += 2 * math.Pi
	}
	dist := math.Sin(angle-di) * math.Sqrt(x*x+y*y)
	offset := core.Signum(dist) * dist * dist * rangeRad
	return angle - offset
}
