package sim

import (
	"github.com/vovakirdan/brawl-core/internal/content"
	"github.com/vovakirdan/brawl-core/internal/core"
)

// CollisionKind identifies one side of a box interaction.
type CollisionKind uint8

const (
	HitAtk CollisionKind = iota
	HitDef
	HitShieldAtk
	HitShieldDef
	PhantomAtk
	PhantomDef
	GrabAtk
	GrabDef
	Clang
	ReflectAtk
	AbsorbAtk
)

var collisionKindNames = [...]string{
	HitAtk:       "HitAtk",
	HitDef:       "HitDef",
	HitShieldAtk: "HitShieldAtk",
	HitShieldDef: "HitShieldDef",
	PhantomAtk:   "PhantomAtk",
	PhantomDef:   "PhantomDef",
	GrabAtk:      "GrabAtk",
	GrabDef:      "GrabDef",
	Clang:        "Clang",
	ReflectAtk:   "ReflectAtk",
	AbsorbAtk:    "AbsorbAtk",
}

func (k CollisionKind) String() string {
	if int(k) < len(collisionKindNames) {
		return collisionKindNames[k]
	}
	return "Unknown"
}

// CollisionResult is what one entity learns from a collision this frame.
// Other is the opposing entity; fields not meaningful for Kind are zero.
type CollisionResult struct {
	Kind        CollisionKind
	Other       EntityKey
	Hit         content.HitBox
	Hurt        content.HurtBox
	PowerShield *content.PowerShield
	Point       core.Point
	Rebound     bool
}

type boxContact uint8

const (
	contactNone boxContact = iota
	contactHit
	contactPhantom
)

// phantomMargin is how close two boxes must be to register a phantom hit.
const phantomMargin = 0.01

func boxCheck(p1 core.Point, b1 content.CollisionBox, p2 core.Point, b2 content.CollisionBox) (boxContact, core.Point) {
	c1 := p1.Add(b1.Point)
	c2 := p2.Add(b2.Point)
	mid := core.Point{X: (c1.X + c2.X) / 2, Y: (c1.Y + c2.Y) / 2}
	reach := b1.Radius + b2.Radius
	dist := c1.Dist(c2)
	switch {
	case reach > dist:
		return contactHit, mid
	case reach+phantomMargin > dist:
		return contactPhantom, mid
	}
	return contactNone, mid
}

func shieldCheck(env Env, atkPos core.Point, box content.CollisionBox, def *Entity, defPos core.Point) bool {
	p := def.Player
	d := env.def(def)
	if p == nil || d == nil || d.Shield == nil || !p.isShielding(&def.State) {
		return false
	}
	c1 := atkPos.Add(box.Point)
	c2 := core.Point{
		X: defPos.X + p.ShieldOffsetX + p.Body.relative(d.Shield.OffsetX),
		Y: defPos.Y + p.ShieldOffsetY + d.Shield.OffsetY,
	}
	return box.Radius+p.shieldSize(d.Shield) > c1.Dist(c2)
}

// collisionCheck evaluates every attacker/defender pair and returns the
// results per entity in emission order. Each pair produces at most one
// interaction: the first shield, clang, hit, phantom or grab found.
func collisionCheck(env Env, rules content.Rules) map[EntityKey][]CollisionResult {
	results := make(map[EntityKey][]CollisionResult)
	emit := func(key EntityKey, r CollisionResult) {
		results[key] = append(results[key], r)
	}

	keys := env.Entities.Keys()
	type prepared struct {
		pos   core.Point
		frame content.ActionFrame
		def   *content.EntityDef
	}
	cache := make(map[EntityKey]prepared, len(keys))
	for _, key := range keys {
		e := env.Entities.Get(key)
		cache[key] = prepared{pos: e.BPS(env), frame: e.relativeFrame(env), def: env.def(e)}
	}

	for _, atkKey := range keys {
		atk := env.Entities.Get(atkKey)
		atkPrep := cache[atkKey]
		hitBoxes := atkPrep.frame.HitBoxes()

		for _, defKey := range keys {
			def := env.Entities.Get(defKey)
			if atkKey == defKey || !atk.canHit(def, rules) || onHitlist(atk, defKey) {
				continue
			}
			defPrep := cache[defKey]
			if pairCollision(env, atkKey, atkPrep.pos, hitBoxes, defKey, def, defPrep.pos, defPrep.def, defPrep.frame.Boxes, emit) {
				continue
			}
			grabCollision(atkKey, atkPrep.pos, atkPrep.frame.Boxes, defKey, defPrep.pos, defPrep.frame.Boxes, emit)
		}
	}

	dropLaunchedGrabs(results)
	if rules.GrabClang {
		resolveGrabClang(results)
	}
	return results
}

// dropLaunchedGrabs removes grabs made by or on an entity that is hit this
// frame, on both sides of the pair.
func dropLaunchedGrabs(results map[EntityKey][]CollisionResult) {
	launched := make(map[EntityKey]bool)
	for key, rs := range results {
		for _, r := range rs {
			if r.Kind == HitDef {
				launched[key] = true
			}
		}
	}
	if len(launched) == 0 {
		return
	}
	for key, rs := range results {
		kept := rs[:0]
		for _, r := range rs {
			if (r.Kind == GrabAtk || r.Kind == GrabDef) && (launched[key] || launched[r.Other]) {
				continue
			}
			kept = append(kept, r)
		}
		results[key] = kept
	}
}

func onHitlist(e *Entity, key EntityKey) bool {
	for _, k := range e.State.Hitlist {
		if k == key {
			return true
		}
	}
	return false
}

func pairCollision(env Env, atkKey EntityKey, atkPos core.Point, hitBoxes []content.CollisionBox,
	defKey EntityKey, def *Entity, defPos core.Point, defDef *content.EntityDef, defBoxes []content.CollisionBox,
	emit func(EntityKey, CollisionResult)) bool {

	for _, atkBox := range hitBoxes {
		hit := *atkBox.Hit

		if shieldCheck(env, atkPos, atkBox, def, defPos) {
			var ps *content.PowerShield
			if defDef != nil {
				ps = defDef.PowerShield
			}
			emit(atkKey, CollisionResult{Kind: HitShieldAtk, Other: defKey, Hit: hit, PowerShield: ps})
			emit(defKey, CollisionResult{Kind: HitShieldDef, Other: atkKey, Hit: hit, PowerShield: ps})
			return true
		}

		if hit.EnableClang {
			for _, defBox := range defBoxes {
				if defBox.Role != content.RoleHit || defBox.Hit == nil {
					continue
				}
				contact, point := boxCheck(atkPos, atkBox, defPos, defBox)
				if contact != contactHit {
					continue
				}
				diff := int(hit.Damage) - int(defBox.Hit.Damage)
				switch {
				case diff >= 9:
					emit(atkKey, CollisionResult{Kind: Clang, Other: defKey, Rebound: hit.EnableRebound})
					emit(defKey, CollisionResult{Kind: HitAtk, Other: atkKey, Hit: *defBox.Hit, Point: point})
				case diff <= -9:
					emit(atkKey, CollisionResult{Kind: HitAtk, Other: defKey, Hit: hit, Point: point})
					emit(defKey, CollisionResult{Kind: Clang, Other: atkKey, Rebound: defBox.Hit.EnableRebound})
				default:
					emit(atkKey, CollisionResult{Kind: Clang, Other: defKey, Rebound: hit.EnableRebound})
					emit(defKey, CollisionResult{Kind: Clang, Other: atkKey, Rebound: defBox.Hit.EnableRebound})
				}
				return true
			}
		}

		for _, defBox := range defBoxes {
			contact, point := boxCheck(atkPos, atkBox, defPos, defBox)
			switch contact {
			case contactHit:
				switch defBox.Role {
				case content.RoleHurt:
					emit(atkKey, CollisionResult{Kind: HitAtk, Other: defKey, Hit: hit, Point: point})
					emit(defKey, CollisionResult{Kind: HitDef, Other: atkKey, Hit: hit, Hurt: defBox.HurtData(), Point: point})
					return true
				case content.RoleInvincible:
					emit(atkKey, CollisionResult{Kind: HitAtk, Other: defKey, Hit: hit, Point: point})
					return true
				case content.RoleReflect:
					emit(atkKey, CollisionResult{Kind: ReflectAtk, Other: defKey, Hit: hit, Point: point})
					return true
				case content.RoleAbsorb:
					emit(atkKey, CollisionResult{Kind: AbsorbAtk, Other: defKey, Hit: hit, Point: point})
					return true
				}
			case contactPhantom:
				if defBox.Role == content.RoleHurt {
					emit(atkKey, CollisionResult{Kind: PhantomAtk, Other: defKey, Hit: hit, Point: point})
					emit(defKey, CollisionResult{Kind: PhantomDef, Other: atkKey, Hit: hit, Hurt: defBox.HurtData(), Point: point})
					return true
				}
			}
		}
	}
	return false
}

func grabCollision(atkKey EntityKey, atkPos core.Point, atkBoxes []content.CollisionBox,
	defKey EntityKey, defPos core.Point, defBoxes []content.CollisionBox,
	emit func(EntityKey, CollisionResult)) {

	for _, atkBox := range atkBoxes {
		if atkBox.Role != content.RoleGrab {
			continue
		}
		for _, defBox := range defBoxes {
			if contact, point := boxCheck(atkPos, atkBox, defPos, defBox); contact == contactHit {
				emit(atkKey, CollisionResult{Kind: GrabAtk, Other: defKey, Point: point})
				emit(defKey, CollisionResult{Kind: GrabDef, Other: atkKey, Point: point})
				return
			}
		}
	}
}

// resolveGrabClang turns two entities grabbing each other on the same frame
// into a clang for both.
func resolveGrabClang(results map[EntityKey][]CollisionResult) {
	mutual := make(map[EntityKey]EntityKey)
	for key, rs := range results {
		for _, r := range rs {
			if r.Kind != GrabAtk {
				continue
			}
			for _, other := range results[r.Other] {
				if other.Kind == GrabAtk && other.Other == key {
					mutual[key] = r.Other
				}
			}
		}
	}
	for key, rs := range results {
		other, ok := mutual[key]
		if !ok {
			continue
		}
		for i, r := range rs {
			if (r.Kind == GrabAtk || r.Kind == GrabDef) && r.Other == other {
				rs[i] = CollisionResult{Kind: Clang, Other: other}
			}
		}
	}
}
