package registry

import (
	"github.com/vovakirdan/brawl-core/internal/content"
	"github.com/vovakirdan/brawl-core/internal/core"
	"github.com/vovakirdan/brawl-core/internal/game"
	"github.com/vovakirdan/brawl-core/internal/sim"
)

// PlayerView is what a bot can see of one player.
type PlayerView struct {
	ID         int
	Team       int
	Position   core.Point
	FaceRight  bool
	Action     string
	Damage     float64
	Stocks     int
	Eliminated bool
	Attacking  bool // has an active hitbox
	Shielding  bool
}

// View is one frame as seen by the bot driving Self.
type View struct {
	Frame  int
	Self   PlayerView
	Others []PlayerView
	Stage  *content.Stage
}

// NewView builds the view of player from a render snapshot. ok is false
// when the player is not in the match.
func NewView(snap game.RenderSnapshot, player int) (view View, ok bool) {
	players := make(map[int]*PlayerView)
	var order []int
	for _, p := range snap.Players {
		players[p.ID] = &PlayerView{
			ID:         p.ID,
			Team:       p.Team,
			Damage:     p.Damage,
			Stocks:     p.Stocks,
			Eliminated: p.Eliminated,
		}
		order = append(order, p.ID)
	}
	for _, e := range snap.Entities {
		pv := players[e.PlayerID]
		if pv == nil || e.Kind != "player" {
			continue
		}
		pv.Position = e.Position
		pv.FaceRight = e.FaceRight
		pv.Action = e.Action
		for _, b := range e.Boxes {
			switch b.Role {
			case content.RoleHit:
				pv.Attacking = true
			case sim.RoleShield:
				pv.Shielding = true
			}
		}
	}

	self, ok := players[player]
	if !ok {
		return View{}, false
	}
	view = View{Frame: snap.Frame, Self: *self, Stage: snap.Stage}
	for _, id := range order {
		if id != player {
			view.Others = append(view.Others, *players[id])
		}
	}
	return view, true
}

// Seat binds a bot to a player and the controller slot it writes.
type Seat struct {
	Player     int
	Controller int
	Bot        Bot
}

// Fill writes each seated bot's input into controllers, which must be long
// enough for every seat's controller.
func Fill(controllers []core.ControllerInput, snap game.RenderSnapshot, seats []Seat) {
	for _, s := range seats {
		view, ok := NewView(snap, s.Player)
		if !ok {
			controllers[s.Controller] = core.ControllerInput{}
			continue
		}
		controllers[s.Controller] = s.Bot.Input(view)
	}
}
