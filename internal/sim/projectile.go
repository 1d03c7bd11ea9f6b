package sim

import (
	"math"

	"github.com/vovakirdan/brawl-core/internal/action"
)

// Projectile travels in a straight line until it hits something or leaves the stage.
type Projectile struct {
	OwnerID *int    `json:"owner_id,omitempty"`
	Speed   float64 `json:"speed"`
	Angle   float64 `json:"angle"` // radians
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

// NewProjectile creates a projectile entity at x, y.
func NewProjectile(defKey string, ownerID *int, speed, angle, x, y float64) *Entity {
	return &Entity{
		Projectile: &Projectile{OwnerID: ownerID, Speed: speed, Angle: angle, X: x, Y: y},
		State:      NewActionState(defKey, int(action.ProjectileSpawn)),
	}
}

func (pr *Projectile) actionStep(ctx *StepContext, state *ActionState) *ActionResult {
	if action.Projectile(state.Action) == action.ProjectileTravel {
		sin, cos := math.Sincos(pr.Angle)
		pr.X += cos * pr.Speed
		pr.Y += sin * pr.Speed
	}

	blast := ctx.Stage.Blast
	if pr.X < blast.Left() || pr.X > blast.Right() || pr.Y < blast.Bot() || pr.Y > blast.Top() {
		ctx.DeleteSelf = true
	}

	if state.lastFrame(ctx.Def) {
		return pr.actionExpired(ctx, state)
	}
	return nil
}

func (pr *Projectile) actionExpired(ctx *StepContext, state *ActionState) *ActionResult {
	switch a := action.Projectile(state.Action); a {
	case action.ProjectileSpawn, action.ProjectileTravel:
		return setAction(action.ProjectileTravel)
	case action.ProjectileHit:
		ctx.DeleteSelf = true
		return setAction(action.ProjectileHit)
	}
	panic("sim: projectile action has no expiry")
}

func (pr *Projectile) stepCollision(results []CollisionResult) *ActionResult {
	var r *ActionResult
	for _, result := range results {
		switch result.Kind {
		case Clang, HitAtk, HitShieldAtk, ReflectAtk, AbsorbAtk:
			r = setAction(action.ProjectileHit)
		}
	}
	return r
}
