// Package game runs a match: it owns the frame history, drives the
// simulation in the current mode and decides when the match is over.
package game

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/brawl-core/internal/content"
	"github.com/vovakirdan/brawl-core/internal/core"
	"github.com/vovakirdan/brawl-core/internal/sim"
)

// pauseHoldFrames is how long start must be held under the hold pause rule.
const pauseHoldFrames = 60

// PlayerSetup selects a fighter for one player.
type PlayerSetup struct {
	Fighter    string `json:"fighter"`
	Team       int    `json:"team"`
	Controller int    `json:"controller"` // index into the controller slice passed to Step
}

// Setup describes a match to start.
type Setup struct {
	Package          *content.Package
	Stage            string
	Rules            content.Rules
	Players          []PlayerSetup
	InitSeed         uint64
	MaxHistoryFrames int // 0 keeps every frame

	// State is the mode the match starts in. Netplay forces StateNetplay.
	State State

	// Inputs is recorded input to replay; frame f uses Inputs[f].
	Inputs core.InputHistory
	// StartEntities resumes from a saved frame 0 instead of spawning players.
	StartEntities *sim.Entities

	Netplay Netplay
	Logger  *log.Logger
}

// Game is one match.
type Game struct {
	pkg      *content.Package
	stageKey string
	rules    content.Rules
	players  []PlayerSetup
	initSeed uint64
	sim      sim.Simulation
	logger   *log.Logger
	netplay  Netplay

	state  State
	resume State // state to return to from Paused
	end    Quit

	frame    int
	entities *sim.Entities
	stage    *content.Stage

	inputs     core.InputHistory
	start      Snapshot
	history    []Snapshot
	deleted    int // frames pruned from the front of history
	maxHistory int

	startHeld int
	prev      []core.ControllerInput // controllers of the last tick, for press edges while paused

	camera Camera
}

// New sets up a match. Players spawn on the stage's spawn points in order.
func New(setup Setup) (*Game, error) {
	if setup.Package == nil {
		return nil, errors.New("game: no content package")
	}
	if len(setup.Players) == 0 && setup.StartEntities == nil {
		return nil, errors.New("game: no players")
	}
	stage, err := setup.Package.Stage(setup.Stage)
	if err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}
	stage = stage.Clone()
	if err := setup.Rules.Validate(); err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}

	logger := setup.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	entities := setup.StartEntities
	if entities == nil {
		entities = &sim.Entities{}
		for i, p := range setup.Players {
			e, err := sim.NewPlayer(p.Fighter, p.Team, i, stage, setup.Package, setup.Rules)
			if err != nil {
				return nil, fmt.Errorf("game: player %d: %w", i, err)
			}
			entities.Insert(e)
		}
	} else {
		entities = entities.Clone()
	}

	seed := setup.InitSeed
	state := setup.State
	if setup.Netplay != nil {
		seed = setup.Netplay.Seed()
		state = StateNetplay
	}

	inputs := setup.Inputs.Clone()
	if len(inputs) == 0 {
		inputs = core.InputHistory{nil}
	}

	g := &Game{
		pkg:        setup.Package,
		stageKey:   setup.Stage,
		rules:      setup.Rules,
		players:    append([]PlayerSetup(nil), setup.Players...),
		initSeed:   seed,
		logger:     logger,
		netplay:    setup.Netplay,
		state:      state,
		resume:     StateLocal,
		entities:   entities,
		stage:      stage,
		inputs:     inputs,
		maxHistory: max(setup.MaxHistoryFrames, 0),
		camera:     NewCamera(0),
		sim: sim.Simulation{
			Package: setup.Package,
			Stage:   stage,
			Rules:   setup.Rules,
			Seed:    seed,
		},
	}
	if isReplay(state) {
		g.resume = state
	}
	g.start = g.snapshot()
	g.history = append(g.history, g.start)
	g.camera.Snap(g.env())

	logger.Debug("match setup", "stage", setup.Stage, "players", len(setup.Players), "seed", seed, "state", state)
	return g, nil
}

func isReplay(s State) bool {
	switch s {
	case StateReplayForwardsFromHistory, StateReplayForwardsFromInput, StateReplayBackwards:
		return true
	}
	return false
}

// Step runs one tick in the current state and returns the resulting state.
// controllers holds this tick's raw input, indexed by controller; in netplay
// controllers[0] is the local player. Replay states ignore it except for start.
func (g *Game) Step(controllers []core.ControllerInput) State {
	switch g.state {
	case StateLocal:
		g.stepLocal(controllers)
	case StateNetplay:
		g.stepNetplay(controllers)
	case StateReplayForwardsFromHistory:
		g.stepForwardsFromHistory()
	case StateReplayForwardsFromInput:
		g.stepForwardsFromInput()
	case StateReplayBackwards:
		g.stepBackwards()
	case StateStepThenPause:
		g.stepLocal(controllers)
		g.pauseAfterStep()
	case StateStepForwardThenPause:
		g.stepForwardsFromHistory()
		g.pauseAfterStep()
	case StateStepBackwardThenPause:
		g.stepBackwards()
		g.pauseAfterStep()
	case StatePaused:
		g.stepPaused(controllers)
	case StateQuit:
		return g.state
	}

	if isReplay(g.state) && g.startPressed(controllers) {
		g.setState(StatePaused)
	}
	g.prev = append(g.prev[:0], controllers...)
	g.camera.Update(g.env())
	return g.state
}

func (g *Game) pauseAfterStep() {
	if g.state != StateQuit {
		g.state = StatePaused
	}
}

func (g *Game) stepLocal(controllers []core.ControllerInput) {
	g.inputs = append(g.inputs[:g.frame+1], append([]core.ControllerInput(nil), controllers...))
	g.stepFrame()
	g.checkEnd()
	if g.state != StateQuit && g.pauseRequested() {
		g.setState(StatePaused)
	}
}

// pauseRequested applies the pause rule to the inputs of the frame just played.
func (g *Game) pauseRequested() bool {
	pressed, held := false, false
	for _, in := range g.playerInputs(g.frame) {
		pressed = pressed || in.Start.Press
		held = held || in.Start.Value
	}
	switch g.rules.Pause {
	case content.PauseOn:
		return pressed
	case content.PauseHold:
		if !held {
			g.startHeld = 0
			return false
		}
		g.startHeld++
		if g.startHeld >= pauseHoldFrames {
			g.startHeld = 0
			return true
		}
	}
	return false
}

// stepForwardsFromHistory advances one frame using history, re-simulating
// from input once the buffer runs out.
func (g *Game) stepForwardsFromHistory() {
	if snap, ok := g.snapshotAt(g.frame + 1); ok {
		g.restore(snap)
		return
	}
	// Past the buffer the live state steps from input and records again.
	g.stepForwardsFromInput()
}

// stepForwardsFromInput re-simulates the next frame from recorded input,
// overwriting any stale future snapshots.
func (g *Game) stepForwardsFromInput() {
	if g.frame+1 >= len(g.inputs) {
		g.setState(StatePaused)
		return
	}
	g.stepFrame()
	g.checkEnd()
}

func (g *Game) stepBackwards() {
	if g.frame <= 0 {
		g.setState(StatePaused)
		return
	}
	if err := g.JumpFrame(g.frame - 1); err != nil {
		g.setState(StatePaused)
	}
}

func (g *Game) stepPaused(controllers []core.ControllerInput) {
	if g.rules.Pause != content.PauseOff && g.startPressed(controllers) {
		g.setState(g.resume)
	}
}

// startPressed compares raw controllers with the previous tick.
func (g *Game) startPressed(controllers []core.ControllerInput) bool {
	for i, c := range controllers {
		if !c.Start {
			continue
		}
		if i >= len(g.prev) || !g.prev[i].Start {
			return true
		}
	}
	return false
}

// playerInputs builds the per player inputs of frame, indexed by player id.
func (g *Game) playerInputs(frame int) []core.PlayerInput {
	inputs := make([]core.PlayerInput, len(g.players))
	for i, p := range g.players {
		inputs[i] = g.inputs.Player(p.Controller, frame)
	}
	return inputs
}

func (g *Game) env() sim.Env {
	return sim.Env{Entities: g.entities, Package: g.pkg, Stage: g.stage}
}

// transitions lists the states a user may move to from each state.
var transitions = map[State][]State{
	StateLocal: {StatePaused},
	StatePaused: {
		StateLocal, StateReplayForwardsFromHistory, StateReplayForwardsFromInput, StateReplayBackwards,
		StateStepThenPause, StateStepForwardThenPause, StateStepBackwardThenPause,
	},
	StateReplayForwardsFromHistory: {StatePaused, StateReplayForwardsFromInput, StateReplayBackwards},
	StateReplayForwardsFromInput:   {StatePaused, StateReplayForwardsFromHistory, StateReplayBackwards},
	StateReplayBackwards:           {StatePaused, StateReplayForwardsFromHistory, StateReplayForwardsFromInput},
}

// SetState requests a mode change, such as pausing or rewinding. It reports
// whether the change is allowed from the current state. Netplay and finished
// matches accept no changes; use QuitMatch to leave them.
func (g *Game) SetState(to State) bool {
	for _, s := range transitions[g.state] {
		if s == to {
			g.setState(to)
			return true
		}
	}
	return false
}

func (g *Game) setState(to State) {
	if g.state == to {
		return
	}
	if to == StatePaused && (g.state == StateLocal || isReplay(g.state)) {
		g.resume = g.state
	}
	g.logger.Debug("state", "from", g.state, "to", to, "frame", g.frame)
	g.state = to
}

// QuitMatch ends the match at the user's request.
func (g *Game) QuitMatch() {
	if g.state == StateQuit {
		return
	}
	if g.netplay != nil {
		g.netplay.Disconnect()
	}
	g.quit(Quit{Reason: QuitUser})
}

func (g *Game) quit(q Quit) {
	g.end = q
	g.setState(StateQuit)
}

// SetStage swaps the stage geometry between ticks. Snapshots keep the stage
// they were taken with.
func (g *Game) SetStage(stage *content.Stage) error {
	if err := stage.Validate(); err != nil {
		return fmt.Errorf("game: %w", err)
	}
	g.stage = stage.Clone()
	g.sim.Stage = g.stage
	if i := g.frame - g.deleted; i >= 0 && i < len(g.history) {
		g.history[i].Stage = g.stage
	}
	return nil
}

// SetAspect sets the viewport aspect ratio the camera fits to.
func (g *Game) SetAspect(aspect float64) {
	if aspect > 0 {
		g.camera.Aspect = aspect
	}
}

// State returns the current mode.
func (g *Game) State() State { return g.state }

// QuitInfo describes how the match ended. Reason is QuitNone while it runs.
func (g *Game) QuitInfo() Quit { return g.end }

// Results returns the match results once the match is over, or nil.
func (g *Game) Results() *Results { return g.end.Results }

// Frame returns the current frame. Frame 0 is the state before any input.
func (g *Game) Frame() int { return g.frame }

// Entities returns the current entities. The arena must not be modified.
func (g *Game) Entities() *sim.Entities { return g.entities }

// Stage returns the current stage.
func (g *Game) Stage() *content.Stage { return g.stage }

// StageKey returns the package key of the stage.
func (g *Game) StageKey() string { return g.stageKey }

// Package returns the content package.
func (g *Game) Package() *content.Package { return g.pkg }

// Rules returns the match rules.
func (g *Game) Rules() content.Rules { return g.rules }

// Players returns the player setup.
func (g *Game) Players() []PlayerSetup { return append([]PlayerSetup(nil), g.players...) }

// InitSeed returns the seed every frame's randomness derives from.
func (g *Game) InitSeed() uint64 { return g.initSeed }

// Inputs returns a copy of the recorded input.
func (g *Game) Inputs() core.InputHistory { return g.inputs.Clone() }

// LastInputFrame returns the last frame with recorded input.
func (g *Game) LastInputFrame() int { return len(g.inputs) - 1 }

// StartEntities returns the entities of frame 0.
func (g *Game) StartEntities() *sim.Entities { return g.start.Entities }

// Camera returns the camera.
func (g *Game) Camera() Camera { return g.camera }

// Run steps a replay from its recorded input until the input runs out or
// the match ends, and returns the final state.
func (g *Game) Run() State {
	g.state = StateReplayForwardsFromInput
	for g.state == StateReplayForwardsFromInput {
		g.Step(nil)
	}
	return g.state
}
