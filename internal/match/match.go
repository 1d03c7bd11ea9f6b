// Package match assembles local matches: a game plus the seats that feed it
// input, whether a keyboard or a registered bot.
package match

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/brawl-core/internal/config"
	"github.com/vovakirdan/brawl-core/internal/content"
	"github.com/vovakirdan/brawl-core/internal/core"
	"github.com/vovakirdan/brawl-core/internal/game"
	"github.com/vovakirdan/brawl-core/internal/registry"
	"github.com/vovakirdan/brawl-core/internal/replay"
)

// Human marks a seat driven by the keyboard.
const Human = "human"

// ErrNoPlayers is returned for a match without seats.
var ErrNoPlayers = errors.New("match: no players")

// Options describes a local match. Player i uses controller i.
type Options struct {
	Package          *content.Package
	Stage            string
	Rules            content.Rules
	Fighter          string   // fighter for every player
	Seats            []string // Human or a bot id, one per player
	BotConfig        config.BotConfig
	Seed             uint64
	MaxHistoryFrames int
	Logger           *log.Logger
}

// OptionsFromEngine fills Options from the engine match section: one human
// seat when humans is set, followed by the configured bots. Rules come from
// the package, seed and history cap from rt.
func OptionsFromEngine(cfg config.Engine, pkg *content.Package, bots config.BotConfig, humans bool, rt core.RuntimeConfig) Options {
	var seats []string
	if humans {
		seats = append(seats, Human)
	}
	seats = append(seats, cfg.Match.Bots...)
	config.ApplyBotPreset(&bots, cfg.Match.Difficulty)
	rules := content.DefaultRules()
	if pkg != nil {
		rules = pkg.Rules
	}
	return Options{
		Package:          pkg,
		Stage:            cfg.Match.Stage,
		Rules:            rules,
		Fighter:          cfg.Match.Fighter,
		Seats:            seats,
		BotConfig:        bots,
		Seed:             rt.Seed,
		MaxHistoryFrames: rt.MaxHistoryFrames,
	}
}

// Local is a running local match.
type Local struct {
	Game *game.Game

	seats       []string
	bots        []registry.Seat
	humans      []int
	controllers []core.ControllerInput
}

// New creates the game and a bot for every non-human seat.
func New(opts Options) (*Local, error) {
	if len(opts.Seats) == 0 {
		return nil, ErrNoPlayers
	}

	m := &Local{
		seats:       append([]string(nil), opts.Seats...),
		controllers: make([]core.ControllerInput, len(opts.Seats)),
	}
	players := make([]game.PlayerSetup, len(opts.Seats))
	for i, seat := range opts.Seats {
		players[i] = game.PlayerSetup{Fighter: opts.Fighter, Team: i, Controller: i}
		if seat == Human {
			m.humans = append(m.humans, i)
			continue
		}
		bot, err := registry.Create(seat, opts.BotConfig)
		if err != nil {
			return nil, fmt.Errorf("match: seat %d: %w", i, err)
		}
		bot.Reset(i, opts.Seed)
		m.bots = append(m.bots, registry.Seat{Player: i, Controller: i, Bot: bot})
	}

	g, err := game.New(game.Setup{
		Package:          opts.Package,
		Stage:            opts.Stage,
		Rules:            opts.Rules,
		Players:          players,
		InitSeed:         opts.Seed,
		MaxHistoryFrames: opts.MaxHistoryFrames,
		State:            game.StateLocal,
		Logger:           opts.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("match: %w", err)
	}
	m.Game = g
	return m, nil
}

// Humans returns the controller slots driven by a keyboard.
func (m *Local) Humans() []int {
	return append([]int(nil), m.humans...)
}

// Step runs one tick. human holds the keyboard input of each human seat in
// order; missing entries are unplugged.
func (m *Local) Step(human ...core.ControllerInput) game.State {
	for i, slot := range m.humans {
		if i < len(human) {
			m.controllers[slot] = human[i]
		} else {
			m.controllers[slot] = core.ControllerInput{}
		}
	}
	if m.Game.State() == game.StateLocal || m.Game.State() == game.StateStepThenPause {
		registry.Fill(m.controllers, m.Game.Render(), m.bots)
	}
	return m.Game.Step(m.controllers)
}

// Run steps a match without humans until it ends or frames ticks pass.
// A frames value of zero runs until the match ends.
func (m *Local) Run(frames int) game.State {
	for n := 0; frames == 0 || n < frames; n++ {
		if s := m.Step(); s != game.StateLocal {
			return s
		}
	}
	return m.Game.State()
}

// Replay captures the match so far, including who drove each seat.
func (m *Local) Replay() *replay.Replay {
	r := replay.FromGame(m.Game)
	r.Bots = make([]string, len(m.seats))
	for i, seat := range m.seats {
		if seat != Human {
			r.Bots[i] = seat
		}
	}
	return r
}
