package registry

import (
	"strings"
	"testing"

	"github.com/vovakirdan/brawl-core/internal/config"
	"github.com/vovakirdan/brawl-core/internal/content"
	"github.com/vovakirdan/brawl-core/internal/core"
	"github.com/vovakirdan/brawl-core/internal/game"
)

// echoBot presses A on even frames and remembers the last view.
type echoBot struct {
	player int
	last   View
}

func (b *echoBot) ID() string                 { return "test-echo" }
func (b *echoBot) Title() string              { return "Echo" }
func (b *echoBot) Reset(player int, _ uint64) { b.player = player }

func (b *echoBot) Input(v View) core.ControllerInput {
	b.last = v
	return core.ControllerInput{PluggedIn: true, A: v.Frame%2 == 0}
}

func init() {
	Register("test-echo", func(config.BotConfig) Bot { return &echoBot{} })
	Register("test-other", func(config.BotConfig) Bot { return &echoBot{} })
}

func TestListSortedWithTitles(t *testing.T) {
	list := List()
	var ids []string
	for _, info := range list {
		ids = append(ids, info.ID)
	}
	joined := strings.Join(ids, ",")
	if !strings.Contains(joined, "test-echo,test-other") {
		t.Errorf("List() = %v, expected test-echo before test-other", ids)
	}
	for _, info := range list {
		if info.ID == "test-echo" && info.Title != "Echo" {
			t.Errorf("Title = %q, expected Echo", info.Title)
		}
	}
}

func TestCreateAndExists(t *testing.T) {
	bot, err := Create("test-echo", config.DefaultBots())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if bot.ID() != "test-echo" {
		t.Errorf("ID() = %q, expected test-echo", bot.ID())
	}
	if _, err := Create("nope", config.DefaultBots()); err == nil {
		t.Error("Create(unknown) error = nil")
	}
	if !Exists("test-echo") || Exists("nope") {
		t.Error("Exists() disagrees with the registered bots")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Register() with a duplicate id did not panic")
		}
	}()
	Register("test-echo", func(config.BotConfig) Bot { return &echoBot{} })
}

func newMatch(t *testing.T) *game.Game {
	t.Helper()
	pkg, err := content.Default()
	if err != nil {
		t.Fatalf("content.Default() error = %v", err)
	}
	g, err := game.New(game.Setup{
		Package: pkg,
		Stage:   "battlefield",
		Rules:   content.DefaultRules(),
		Players: []game.PlayerSetup{
			{Fighter: "brawler", Team: 0, Controller: 1},
			{Fighter: "brawler", Team: 1, Controller: 0},
		},
		State: game.StateLocal,
	})
	if err != nil {
		t.Fatalf("game.New() error = %v", err)
	}
	return g
}

func TestNewView(t *testing.T) {
	g := newMatch(t)
	v, ok := NewView(g.Render(), 1)
	if !ok {
		t.Fatal("NewView() ok = false for a player in the match")
	}
	if v.Self.ID != 1 || len(v.Others) != 1 || v.Others[0].ID != 0 {
		t.Errorf("NewView() = self %d others %+v, expected self 1 and player 0", v.Self.ID, v.Others)
	}
	if v.Self.Position.X <= 0 || v.Others[0].Position.X >= 0 {
		t.Errorf("positions = %v, %v, expected the right and left spawns", v.Self.Position, v.Others[0].Position)
	}
	if v.Stage == nil || v.Self.Stocks != 4 {
		t.Errorf("NewView() stage %v stocks %d, expected the stage and 4 stocks", v.Stage, v.Self.Stocks)
	}
	if _, ok := NewView(g.Render(), 5); ok {
		t.Error("NewView() ok = true for a missing player")
	}
}

func TestFillWritesSeatControllers(t *testing.T) {
	g := newMatch(t)
	bot := &echoBot{}
	bot.Reset(0, 1)
	controllers := make([]core.ControllerInput, 2)
	controllers[1] = core.ControllerInput{PluggedIn: true, B: true}

	Fill(controllers, g.Render(), []Seat{{Player: 0, Controller: 0, Bot: bot}})
	if !controllers[0].PluggedIn || !controllers[0].A {
		t.Errorf("controllers[0] = %+v, expected the bot's input", controllers[0])
	}
	if !controllers[1].B {
		t.Error("Fill() touched a controller without a seat")
	}
	if bot.last.Self.ID != 0 {
		t.Errorf("bot saw player %d, expected 0", bot.last.Self.ID)
	}

	Fill(controllers, game.RenderSnapshot{}, []Seat{{Player: 0, Controller: 0, Bot: bot}})
	if controllers[0].PluggedIn {
		t.Error("Fill() for a player not in the match left the controller plugged in")
	}
}
