package match

import (
	"fmt"

	"github.com/vovakirdan/brawl-core/internal/game"
)

// NewNetplay starts a two player match on session. The host is player 1 on
// controller 0. Seats and Seed are ignored: both players are human and the
// seed comes from the session.
func NewNetplay(opts Options, session game.Netplay) (*game.Game, error) {
	players := []game.PlayerSetup{
		{Fighter: opts.Fighter, Team: 0, Controller: 0},
		{Fighter: opts.Fighter, Team: 1, Controller: 1},
	}
	g, err := game.New(game.Setup{
		Package:          opts.Package,
		Stage:            opts.Stage,
		Rules:            opts.Rules,
		Players:          players,
		MaxHistoryFrames: opts.MaxHistoryFrames,
		Netplay:          session,
		Logger:           opts.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("match: netplay: %w", err)
	}
	return g, nil
}
