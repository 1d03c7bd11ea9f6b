package game

import (
	"time"

	"github.com/vovakirdan/brawl-core/internal/content"
	"github.com/vovakirdan/brawl-core/internal/core"
	"github.com/vovakirdan/brawl-core/internal/sim"
)

// RenderEntity is the drawable part of one entity.
type RenderEntity struct {
	Key       sim.EntityKey
	Kind      string
	DefKey    string
	Action    string
	Frame     int
	Position  core.Point
	FaceRight bool
	PlayerID  int // -1 when the entity has no owner
	Boxes     []sim.WorldBox
}

// RenderPlayer is one player's HUD line.
type RenderPlayer struct {
	ID         int
	Fighter    string
	Team       int
	Damage     float64
	Stocks     int // -1 is unlimited
	Eliminated bool
}

// RenderSnapshot is a value copy of everything a renderer needs for one frame.
type RenderSnapshot struct {
	Frame    int
	State    State
	Quit     Quit
	Stage    *content.Stage
	Camera   core.Box
	Entities []RenderEntity
	Players  []RenderPlayer

	// Remaining time, valid when HasTimer is set.
	Timer    time.Duration
	HasTimer bool
}

// Render projects the current frame for drawing. The stage is shared and
// must be treated as read-only.
func (g *Game) Render() RenderSnapshot {
	env := g.env()
	snap := RenderSnapshot{
		Frame:  g.frame,
		State:  g.state,
		Quit:   g.end,
		Stage:  g.stage,
		Camera: g.camera.Rect,
	}

	g.entities.Each(func(key sim.EntityKey, e *sim.Entity) {
		id, ok := e.PlayerID()
		if !ok {
			id = -1
		}
		snap.Entities = append(snap.Entities, RenderEntity{
			Key:       key,
			Kind:      e.Kind(),
			DefKey:    e.State.DefKey,
			Action:    e.ActionName(),
			Frame:     e.State.Frame,
			Position:  e.BPS(env),
			FaceRight: e.FaceRight(),
			PlayerID:  id,
			Boxes:     e.WorldBoxes(env),
		})
		if p := e.Player; p != nil {
			snap.Players = append(snap.Players, RenderPlayer{
				ID:         p.ID,
				Fighter:    e.State.DefKey,
				Team:       p.Team,
				Damage:     p.Body.Damage,
				Stocks:     p.Stocks,
				Eliminated: e.IsEliminated(),
			})
		}
	})

	if limit, ok := g.rules.TimeLimitFrames(); ok {
		remaining := max(limit-g.frame, 0)
		snap.Timer = time.Second * time.Duration(remaining) / 60
		snap.HasTimer = true
	}
	return snap
}
