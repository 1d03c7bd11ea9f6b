package sim

import (
	"github.com/vovakirdan/brawl-core/internal/action"
	"github.com/vovakirdan/brawl-core/internal/content"
	"github.com/vovakirdan/brawl-core/internal/core"
)

// WorldBox is a collision box placed in world coordinates.
type WorldBox struct {
	Center core.Point      `json:"center"`
	Radius float64         `json:"radius"`
	Role   content.BoxRole `json:"role"`
}

// RoleShield marks the shield bubble in WorldBoxes output.
const RoleShield content.BoxRole = "shield"

// ActionName returns the name of the entity's current action.
func (e *Entity) ActionName() string {
	switch {
	case e.Player != nil:
		return action.Player(e.State.Action).String()
	case e.Item != nil:
		return action.Item(e.State.Action).String()
	default:
		return action.Projectile(e.State.Action).String()
	}
}

// WorldBoxes returns the collision boxes of the current frame in world
// coordinates, plus the shield bubble while the player shields.
func (e *Entity) WorldBoxes(env Env) []WorldBox {
	pos := e.BPS(env)
	frame := e.relativeFrame(env)
	boxes := make([]WorldBox, 0, len(frame.Boxes)+1)
	for _, box := range frame.Boxes {
		boxes = append(boxes, WorldBox{Center: pos.Add(box.Point), Radius: box.Radius, Role: box.Role})
	}

	p := e.Player
	def := env.def(e)
	if p != nil && def != nil && def.Shield != nil && p.isShielding(&e.State) {
		boxes = append(boxes, WorldBox{
			Center: core.Point{
				X: pos.X + p.ShieldOffsetX + p.Body.relative(def.Shield.OffsetX),
				Y: pos.Y + p.ShieldOffsetY + def.Shield.OffsetY,
			},
			Radius: p.shieldSize(def.Shield),
			Role:   RoleShield,
		})
	}
	return boxes
}
