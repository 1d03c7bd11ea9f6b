package tui

import (
	"io"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/brawl-core/internal/core"
	"github.com/vovakirdan/brawl-core/internal/game"
	"github.com/vovakirdan/brawl-core/internal/match"
	"github.com/vovakirdan/brawl-core/internal/netplay"
	"github.com/vovakirdan/brawl-core/internal/replay"
	"github.com/vovakirdan/brawl-core/internal/storage"
)

// Options holds what every match screen shares.
type Options struct {
	Store    *storage.Store // nil disables saving
	TickRate int
	Width    int
	Height   int
	Logger   *log.Logger

	// Embedded models report Back instead of quitting the program.
	Embedded bool
}

func (o Options) logger() *log.Logger {
	if o.Logger == nil {
		return log.New(io.Discard)
	}
	return o.Logger
}

// Model is the Bubble Tea model that drives one match: a local game against
// bots, a netplay session, or a replay.
type Model struct {
	opts  Options
	game  *game.Game
	local *match.Local
	net   *netplay.Client

	screen   *core.Screen
	keys     KeyMap
	keyboard *Keyboard
	help     help.Model

	resume   game.State // state to return to after a pause from the keyboard
	saved    bool
	savedID  string
	saveErr  error
	back     bool
	quitting bool
}

func newModel(g *game.Game, opts Options) *Model {
	if opts.TickRate <= 0 {
		opts.TickRate = 60
	}
	keys := DefaultKeyMap()
	m := &Model{
		opts:     opts,
		game:     g,
		screen:   core.NewScreen(max(opts.Width, 1), max(opts.Height-hudHeight-1, 1)),
		keys:     keys,
		keyboard: NewKeyboard(keys),
		help:     help.New(),
		resume:   g.State(),
	}
	m.help.Width = opts.Width
	m.fitCamera()
	return m
}

// NewMatchModel plays a local match.
func NewMatchModel(local *match.Local, opts Options) *Model {
	m := newModel(local.Game, opts)
	m.local = local
	return m
}

// NewNetplayModel plays a netplay match; the keyboard drives the local
// player.
func NewNetplayModel(g *game.Game, client *netplay.Client, opts Options) *Model {
	m := newModel(g, opts)
	m.net = client
	return m
}

// NewReplayModel watches a replay. Replays are never saved again.
func NewReplayModel(g *game.Game, opts Options) *Model {
	m := newModel(g, opts)
	m.saved = true
	return m
}

// Init starts the tick loop.
func (m *Model) Init() tea.Cmd {
	return tickCmd(m.opts.TickRate)
}

// Update handles messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.opts.Width, m.opts.Height = msg.Width, msg.Height
		m.screen.Resize(msg.Width, max(msg.Height-hudHeight-1, 1))
		m.help.Width = msg.Width
		m.fitCamera()
		return m, nil

	case TickMsg:
		return m.handleTick()
	}
	return m, nil
}

// fitCamera matches the camera to the screen. Cells are about twice as tall
// as they are wide.
func (m *Model) fitCamera() {
	if m.screen.Height() > 0 {
		m.game.SetAspect(float64(m.screen.Width()) / float64(2*m.screen.Height()))
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.leave(true)
	}
	if m.game.State() == game.StateQuit {
		switch msg.String() {
		case "enter", "q", "esc":
			return m.leave(false)
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.game.QuitMatch()
		return m.leave(false)
	case key.Matches(msg, m.keys.Pause):
		m.togglePause()
	case key.Matches(msg, m.keys.StepBack):
		m.game.SetState(game.StateStepBackwardThenPause)
	case key.Matches(msg, m.keys.StepForward):
		// Past the newest frame only a local match can simulate further.
		if m.game.Frame() < m.game.LastInputFrame() {
			m.game.SetState(game.StateStepForwardThenPause)
		} else if m.local != nil {
			m.game.SetState(game.StateStepThenPause)
		}
	case key.Matches(msg, m.keys.ReplayBack):
		m.game.SetState(game.StateReplayBackwards)
	case key.Matches(msg, m.keys.ReplayForward):
		m.game.SetState(game.StateReplayForwardsFromHistory)
	case key.Matches(msg, m.keys.ReplayInput):
		m.game.SetState(game.StateReplayForwardsFromInput)
	case msg.String() == "?":
		m.help.ShowAll = !m.help.ShowAll
	default:
		m.keyboard.Press(msg)
	}
	return m, nil
}

func (m *Model) togglePause() {
	state := m.game.State()
	if state == game.StatePaused {
		m.game.SetState(m.resume)
		return
	}
	if m.game.SetState(game.StatePaused) {
		m.resume = state
	}
}

func (m *Model) leave(quit bool) (tea.Model, tea.Cmd) {
	if m.net != nil {
		m.net.Disconnect()
	}
	m.save()
	if m.opts.Embedded && !quit {
		m.back = true
		return m, nil
	}
	m.quitting = true
	return m, tea.Quit
}

func (m *Model) handleTick() (tea.Model, tea.Cmd) {
	if m.back || m.quitting {
		return m, nil
	}
	if m.game.State() == game.StateQuit {
		m.save()
		return m, nil
	}

	in := m.keyboard.Controller()
	if m.local != nil {
		m.local.Step(in)
	} else {
		m.game.Step([]core.ControllerInput{in})
	}
	m.keyboard.Tick()

	if m.game.State() == game.StateQuit {
		m.save()
		return m, nil
	}
	return m, tickCmd(m.opts.TickRate)
}

// save stores a finished local or netplay match once.
func (m *Model) save() {
	if m.saved || m.opts.Store == nil || m.game.Frame() == 0 {
		return
	}
	m.saved = true

	var r *replay.Replay
	if m.local != nil {
		r = m.local.Replay()
	} else {
		r = replay.FromGame(m.game)
	}
	if err := m.opts.Store.SaveReplay(r); err != nil {
		m.saveErr = err
		m.opts.logger().Error("could not save replay", "err", err)
		return
	}
	m.savedID = r.ID
	m.opts.logger().Info("replay saved", "id", r.ID, "frames", r.Frame)
}

// Back reports that an embedded model wants to return to its parent.
func (m *Model) Back() bool { return m.back }

// Game returns the match being shown.
func (m *Model) Game() *game.Game { return m.game }

// View renders the current state to a string for display.
func (m *Model) View() string {
	if m.quitting || m.back {
		return ""
	}
	snap := m.game.Render()
	hud := RenderHUD(snap, m.opts.Width)

	if snap.State == game.StateQuit {
		out := hud + "\n" + RenderResults(snap.Quit, m.opts.Width)
		switch {
		case m.saveErr != nil:
			out += "\n" + hudDim.Render("replay not saved: "+m.saveErr.Error())
		case m.savedID != "":
			out += "\n" + hudDim.Render("replay saved as "+m.savedID[:8])
		}
		return out
	}

	DrawMatch(m.screen, snap)
	return hud + "\n" + RenderScreen(m.screen) + "\n" + hudDim.Render(m.help.View(m.keys))
}

// Run starts the Bubble Tea program with the given model.
func Run(model tea.Model) error {
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
