package bots

import (
	"math"
	"testing"

	"github.com/vovakirdan/brawl-core/internal/config"
	"github.com/vovakirdan/brawl-core/internal/content"
	"github.com/vovakirdan/brawl-core/internal/core"
	"github.com/vovakirdan/brawl-core/internal/game"
	"github.com/vovakirdan/brawl-core/internal/registry"
)

func TestBuiltinsRegistered(t *testing.T) {
	for _, id := range []string{"idle", "random", "chaser"} {
		if !registry.Exists(id) {
			t.Errorf("Exists(%q) = false", id)
		}
		bot, err := registry.Create(id, config.DefaultBots())
		if err != nil {
			t.Fatalf("Create(%q) error = %v", id, err)
		}
		if bot.ID() != id {
			t.Errorf("Create(%q).ID() = %q", id, bot.ID())
		}
	}
}

func TestRandomIsPerFrameDeterministic(t *testing.T) {
	a, b := NewRandom(config.DefaultBots()), NewRandom(config.DefaultBots())
	a.Reset(1, 9)
	b.Reset(1, 9)

	// b is asked about frames in a different order and more than once.
	for f := 0; f < 50; f++ {
		b.Input(registry.View{Frame: 49 - f})
	}
	differs := false
	for f := 0; f < 50; f++ {
		if a.Input(registry.View{Frame: f}) != b.Input(registry.View{Frame: f}) {
			t.Fatalf("frame %d: inputs differ between two random bots with one seed", f)
		}
		if a.Input(registry.View{Frame: f}) != a.Input(registry.View{Frame: f + 1}) {
			differs = true
		}
	}
	if !differs {
		t.Error("random bot never changed its input")
	}

	other := NewRandom(config.DefaultBots())
	other.Reset(0, 9)
	same := true
	for f := 0; f < 50; f++ {
		if other.Input(registry.View{Frame: f}) != a.Input(registry.View{Frame: f}) {
			same = false
		}
	}
	if same {
		t.Error("bots for different players produced identical input")
	}
}

// botMatch plays frames ticks of a chaser (player 0) against an idle bot.
func botMatch(t *testing.T, frames int) *game.Game {
	t.Helper()
	pkg, err := content.Default()
	if err != nil {
		t.Fatalf("content.Default() error = %v", err)
	}
	rules := content.DefaultRules()
	rules.TimeLimitSeconds = 0
	g, err := game.New(game.Setup{
		Package: pkg,
		Stage:   "final",
		Rules:   rules,
		Players: []game.PlayerSetup{
			{Fighter: "brawler", Team: 0, Controller: 0},
			{Fighter: "brawler", Team: 1, Controller: 1},
		},
		InitSeed: 3,
		State:    game.StateLocal,
	})
	if err != nil {
		t.Fatalf("game.New() error = %v", err)
	}

	chaser := NewChaser(config.DefaultBots())
	chaser.Reset(0, 3)
	idle := Idle{}
	seats := []registry.Seat{
		{Player: 0, Controller: 0, Bot: chaser},
		{Player: 1, Controller: 1, Bot: idle},
	}
	controllers := make([]core.ControllerInput, 2)
	for f := 0; f < frames && g.State() == game.StateLocal; f++ {
		registry.Fill(controllers, g.Render(), seats)
		g.Step(controllers)
	}
	return g
}

func TestChaserClosesDistance(t *testing.T) {
	start, _ := registry.NewView(botMatch(t, 0).Render(), 0)
	startDist := math.Abs(start.Others[0].Position.X - start.Self.Position.X)

	g := botMatch(t, 180)
	v, _ := registry.NewView(g.Render(), 0)
	dist := math.Abs(v.Others[0].Position.X - v.Self.Position.X)
	if dist >= startDist {
		t.Errorf("distance after 180 frames = %v, expected less than the starting %v", dist, startDist)
	}
}

func TestChaserMatchIsReproducible(t *testing.T) {
	a := botMatch(t, 400)
	b := botMatch(t, 400)
	if a.Digest() != b.Digest() {
		t.Error("two chaser matches with one seed diverged")
	}
}

func TestChaserRecoversTowardStage(t *testing.T) {
	pkg, err := content.Default()
	if err != nil {
		t.Fatalf("content.Default() error = %v", err)
	}
	stage, err := pkg.Stage("final")
	if err != nil {
		t.Fatal(err)
	}
	c := NewChaser(config.DefaultBots())
	c.Reset(0, 1)
	view := registry.View{
		Frame: 8,
		Self:  registry.PlayerView{Position: core.Point{X: 150, Y: -20}},
		Stage: stage,
	}
	in := c.Input(view)
	if in.StickX != -1 || in.StickY != 1 || !in.X {
		t.Errorf("Input() offstage = %+v, expected up and back toward the stage with a jump", in)
	}
}
