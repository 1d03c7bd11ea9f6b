package sim

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/vovakirdan/brawl-core/internal/content"
	"github.com/vovakirdan/brawl-core/internal/core"
)

func testSimulation(t *testing.T, stage string) *Simulation {
	t.Helper()
	pkg, err := content.Default()
	if err != nil {
		t.Fatalf("content.Default() error = %v", err)
	}
	st, err := pkg.Stage(stage)
	if err != nil {
		t.Fatal(err)
	}
	return &Simulation{Package: pkg, Stage: st, Rules: pkg.Rules, Seed: 42}
}

func spawnPlayers(t *testing.T, s *Simulation, n int) *Entities {
	t.Helper()
	es := &Entities{}
	for i := 0; i < n; i++ {
		e, err := NewPlayer("brawler", i, i, s.Stage, s.Package, s.Rules)
		if err != nil {
			t.Fatalf("NewPlayer() error = %v", err)
		}
		es.Insert(e)
	}
	return es
}

// standingPlayer creates a player standing on floor 0 at world x in the given action.
func standingPlayer(id int, x float64, faceRight bool, act, frame int) *Entity {
	return &Entity{
		Player: &Player{
			ID:           id,
			Team:         id,
			Body:         NewBody(OnSurface(0, x), faceRight),
			Stocks:       4,
			AirJumpsLeft: 1,
			ShieldHP:     60,
		},
		State: ActionState{DefKey: "brawler", Action: act, Frame: frame},
	}
}

func testContext(s *Simulation, es *Entities, key EntityKey) *StepContext {
	f := &frameStep{sim: s, rng: FrameRng(s.Seed, 0)}
	ctx, _ := f.context(es, key, es.Get(key))
	return ctx
}

func digest(t *testing.T, es *Entities) string {
	t.Helper()
	data, err := json.Marshal(es)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func plugged(c core.ControllerInput) core.ControllerInput {
	c.PluggedIn = true
	return c
}
