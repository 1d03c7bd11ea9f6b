package game

import (
	"cmp"
	"slices"

	"github.com/vovakirdan/brawl-core/internal/content"
	"github.com/vovakirdan/brawl-core/internal/sim"
)

// PlayerResult is one player's line on the results screen.
type PlayerResult struct {
	Player         int     `json:"player"`
	Fighter        string  `json:"fighter"`
	Team           int     `json:"team"`
	Controller     int     `json:"controller"`
	Place          int     `json:"place"` // 1 is the winner, tied players share a place
	Kills          int     `json:"kills"`
	Deaths         int     `json:"deaths"`
	Stocks         int     `json:"stocks"`
	LCancelPercent float64 `json:"lcancel_percent"`
	FinalDamage    float64 `json:"final_damage"`
}

// Results is the outcome of a finished match, ordered by place.
type Results struct {
	Frame   int            `json:"frame"`
	Goal    content.Goal   `json:"goal"`
	TimeOut bool           `json:"time_out"`
	Players []PlayerResult `json:"players"`
}

// Winner returns the first placed player.
func (r *Results) Winner() (PlayerResult, bool) {
	if r == nil || len(r.Players) == 0 {
		return PlayerResult{}, false
	}
	return r.Players[0], true
}

type rawResult struct {
	result     PlayerResult
	eliminated bool
	lastDeath  int
}

// timeOut reports whether the time limit has passed.
func (g *Game) timeOut() bool {
	limit, ok := g.rules.TimeLimitFrames()
	return ok && g.frame > limit
}

// matchOver reports whether at most one player is left standing, or time ran out.
func (g *Game) matchOver() bool {
	if g.timeOut() {
		return true
	}
	players, alive := 0, 0
	g.entities.Each(func(_ sim.EntityKey, e *sim.Entity) {
		if e.Player == nil {
			return
		}
		players++
		if !e.IsEliminated() {
			alive++
		}
	})
	if players == 1 {
		return alive == 0
	}
	return players > 1 && alive <= 1
}

// checkEnd moves to the results once the match is over.
func (g *Game) checkEnd() {
	if g.state == StateQuit || !g.matchOver() {
		return
	}
	results := g.results()
	g.logger.Info("match ended", "frame", g.frame, "timeout", results.TimeOut)
	g.quit(Quit{Reason: QuitResults, Results: results})
}

// results ranks the players by the rules' goal.
//
// Last man standing: players still in the match first, ranked by stocks left
// then damage; eliminated players after them, the later elimination first.
// Kill/death score: kills descending, then deaths and damage ascending.
func (g *Game) results() *Results {
	kills := make(map[int]int)
	var raw []rawResult
	g.entities.Each(func(_ sim.EntityKey, e *sim.Entity) {
		p := e.Player
		if p == nil {
			return
		}
		for _, d := range p.Stats.Deaths {
			if d.Killer != nil && *d.Killer != p.ID {
				kills[*d.Killer]++
			}
		}
		lcancel := 100.0
		if p.Stats.LCancelAttempts > 0 {
			lcancel = float64(p.Stats.LCancelSuccess) / float64(p.Stats.LCancelAttempts) * 100
		}
		r := rawResult{
			result: PlayerResult{
				Player:         p.ID,
				Fighter:        e.State.DefKey,
				Team:           p.Team,
				Deaths:         len(p.Stats.Deaths),
				Stocks:         p.Stocks,
				LCancelPercent: lcancel,
				FinalDamage:    p.Body.Damage,
			},
			eliminated: e.IsEliminated(),
			lastDeath:  -1,
		}
		if n := len(p.Stats.Deaths); n > 0 {
			r.lastDeath = p.Stats.Deaths[n-1].Frame
		}
		if p.ID >= 0 && p.ID < len(g.players) {
			r.result.Controller = g.players[p.ID].Controller
		}
		raw = append(raw, r)
	})
	for i := range raw {
		raw[i].result.Kills = kills[raw[i].result.Player]
	}

	compare := compareLastManStanding
	if g.rules.Goal == content.GoalKillDeathScore {
		compare = compareKillDeath
	}
	slices.SortStableFunc(raw, func(a, b rawResult) int {
		return cmp.Or(compare(a, b), cmp.Compare(a.result.Player, b.result.Player))
	})

	out := &Results{Frame: g.frame, Goal: g.rules.Goal, TimeOut: g.timeOut()}
	for i, r := range raw {
		r.result.Place = i + 1
		if i > 0 && compare(raw[i-1], r) == 0 {
			r.result.Place = out.Players[i-1].Place
		}
		out.Players = append(out.Players, r.result)
	}
	return out
}

func compareLastManStanding(a, b rawResult) int {
	if a.eliminated != b.eliminated {
		if a.eliminated {
			return 1
		}
		return -1
	}
	if a.eliminated {
		return cmp.Or(
			cmp.Compare(b.lastDeath, a.lastDeath),
			cmp.Compare(a.result.FinalDamage, b.result.FinalDamage),
		)
	}
	return cmp.Or(
		cmp.Compare(b.result.Stocks, a.result.Stocks),
		cmp.Compare(a.result.Deaths, b.result.Deaths),
		cmp.Compare(a.result.FinalDamage, b.result.FinalDamage),
	)
}

func compareKillDeath(a, b rawResult) int {
	return cmp.Or(
		cmp.Compare(b.result.Kills, a.result.Kills),
		cmp.Compare(a.result.Deaths, b.result.Deaths),
		cmp.Compare(a.result.FinalDamage, b.result.FinalDamage),
	)
}
