package game

import (
	"github.com/vovakirdan/brawl-core/internal/core"
	"github.com/vovakirdan/brawl-core/internal/sim"
)

// Camera follows the players. It is presentation state and is not part of
// snapshots, so rewinding does not jump the view.
type Camera struct {
	Rect   core.Box
	Aspect float64 // width / height of the viewport in world units
}

// NewCamera returns a camera with the given aspect ratio.
func NewCamera(aspect float64) Camera {
	if aspect <= 0 {
		aspect = 16.0 / 9.0
	}
	return Camera{Rect: core.Box{X1: -10, Y1: -10, X2: 10, Y2: 10}, Aspect: aspect}
}

// Target returns the rectangle covering every player, grown to the aspect
// ratio and pushed back inside the stage camera bounds.
func (c *Camera) Target(env sim.Env) core.Box {
	var rect core.Box
	found := false
	env.Entities.Each(func(_ sim.EntityKey, e *sim.Entity) {
		area, ok := e.CamArea(env, env.Stage.Camera)
		if !ok {
			return
		}
		if !found {
			rect, found = area, true
			return
		}
		rect = rect.Union(area)
	})
	if !found {
		return core.Box{X1: -200, Y1: -200, X2: 200, Y2: 200}
	}

	x1, x2, y1, y2 := rect.Left(), rect.Right(), rect.Bot(), rect.Top()
	width, height := x2-x1, y2-y1
	if height > 0 && width/height > c.Aspect {
		height = width / c.Aspect
		mid := (y1 + y2) / 2
		y1, y2 = mid-height/2, mid+height/2
	} else {
		width = height * c.Aspect
		mid := (x1 + x2) / 2
		x1, x2 = mid-width/2, mid+width/2
	}

	bounds := env.Stage.Camera
	if x1 < bounds.Left() {
		d := x1 - bounds.Left()
		x1, x2 = x1-d, x2-d
	} else if x2 > bounds.Right() {
		d := x2 - bounds.Right()
		x1, x2 = x1-d, x2-d
	}
	if y1 < bounds.Bot() {
		d := y1 - bounds.Bot()
		y1, y2 = y1-d, y2-d
	} else if y2 > bounds.Top() {
		d := y2 - bounds.Top()
		y1, y2 = y1-d, y2-d
	}
	return core.Box{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// Update eases the camera a tenth of the way towards its target.
func (c *Camera) Update(env sim.Env) {
	t := c.Target(env)
	c.Rect.X1 += (t.X1 - c.Rect.X1) / 10
	c.Rect.X2 += (t.X2 - c.Rect.X2) / 10
	c.Rect.Y1 += (t.Y1 - c.Rect.Y1) / 10
	c.Rect.Y2 += (t.Y2 - c.Rect.Y2) / 10
}

// Snap moves the camera straight to its target.
func (c *Camera) Snap(env sim.Env) {
	c.Rect = c.Target(env)
}
