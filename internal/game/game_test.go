package game

import (
	"math/rand/v2"
	"testing"

	"pgregory.net/rapid"

	"github.com/vovakirdan/brawl-core/internal/action"
	"github.com/vovakirdan/brawl-core/internal/content"
	"github.com/vovakirdan/brawl-core/internal/core"
	"github.com/vovakirdan/brawl-core/internal/sim"
)

func testPackage(t *testing.T) *content.Package {
	t.Helper()
	pkg, err := content.Default()
	if err != nil {
		t.Fatalf("content.Default() error = %v", err)
	}
	return pkg
}

func twoPlayers() []PlayerSetup {
	return []PlayerSetup{
		{Fighter: "brawler", Team: 0, Controller: 0},
		{Fighter: "brawler", Team: 1, Controller: 1},
	}
}

// endlessRules never end a match on their own.
func endlessRules() content.Rules {
	r := content.DefaultRules()
	r.StockCount = 0
	r.TimeLimitSeconds = 0
	return r
}

func newTestGame(t *testing.T, edit func(*Setup)) *Game {
	t.Helper()
	setup := Setup{
		Package:  testPackage(t),
		Stage:    "battlefield",
		Rules:    endlessRules(),
		Players:  twoPlayers(),
		InitSeed: 7,
		State:    StateLocal,
	}
	if edit != nil {
		edit(&setup)
	}
	g, err := New(setup)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return g
}

func randomController(rng *rand.Rand) core.ControllerInput {
	stick := func() float64 { return float64(rng.IntN(21)-10) / 10 }
	return core.ControllerInput{
		PluggedIn: true,
		A:         rng.IntN(6) == 0,
		B:         rng.IntN(10) == 0,
		X:         rng.IntN(12) == 0,
		Z:         rng.IntN(15) == 0,
		L:         rng.IntN(15) == 0,
		StickX:    stick(),
		StickY:    stick(),
		CStickX:   stick() * float64(rng.IntN(2)),
	}
}

// scriptedInputs returns frames+1 frames of input for two controllers; frame 0 is empty.
func scriptedInputs(seed uint64, frames int) core.InputHistory {
	rng := rand.New(rand.NewPCG(seed, 3))
	h := core.InputHistory{nil}
	for f := 1; f <= frames; f++ {
		h = append(h, []core.ControllerInput{randomController(rng), randomController(rng)})
	}
	return h
}

// playLocal steps g through inputs and returns the digest of every frame.
func playLocal(t *testing.T, g *Game, inputs core.InputHistory) []string {
	t.Helper()
	digests := []string{g.Digest()}
	for f := 1; f < len(inputs); f++ {
		if s := g.Step(inputs[f]); s != StateLocal {
			t.Fatalf("frame %d: State() = %s, expected local", f, s)
		}
		digests = append(digests, g.Digest())
	}
	return digests
}

func TestNewErrors(t *testing.T) {
	pkg := testPackage(t)
	tests := []struct {
		name  string
		setup Setup
	}{
		{"no package", Setup{Stage: "battlefield", Players: twoPlayers()}},
		{"no players", Setup{Package: pkg, Stage: "battlefield", Rules: content.DefaultRules()}},
		{"unknown stage", Setup{Package: pkg, Stage: "nowhere", Rules: content.DefaultRules(), Players: twoPlayers()}},
		{"unknown fighter", Setup{Package: pkg, Stage: "battlefield", Rules: content.DefaultRules(), Players: []PlayerSetup{{Fighter: "ghost"}}}},
		{"bad rules", Setup{Package: pkg, Stage: "battlefield", Rules: content.Rules{Goal: "chess", Pause: content.PauseOn}, Players: twoPlayers()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.setup); err == nil {
				t.Error("New() error = nil, expected an error")
			}
		})
	}
}

func TestDeterministicAcrossRuns(t *testing.T) {
	inputs := scriptedInputs(11, 600)
	a := playLocal(t, newTestGame(t, nil), inputs)
	b := playLocal(t, newTestGame(t, nil), inputs)
	for f := range a {
		if a[f] != b[f] {
			t.Fatalf("frame %d: digests differ", f)
		}
	}
}

func TestDeterministicForAnySeed(t *testing.T) {
	pkg := testPackage(t)
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Uint64().Draw(t, "seed")
		inputs := scriptedInputs(rapid.Uint64().Draw(t, "inputs"), rapid.IntRange(1, 120).Draw(t, "frames"))

		run := func() string {
			g, err := New(Setup{
				Package:  pkg,
				Stage:    "battlefield",
				Rules:    endlessRules(),
				Players:  twoPlayers(),
				InitSeed: seed,
				State:    StateLocal,
			})
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			for f := 1; f < len(inputs); f++ {
				g.Step(inputs[f])
			}
			return g.Digest()
		}
		if a, b := run(), run(); a != b {
			t.Fatalf("Digest() = %s and %s for the same seed and input", a, b)
		}
	})
}

func TestRewindRoundTrip(t *testing.T) {
	const n = 120
	g := newTestGame(t, nil)
	digests := playLocal(t, g, scriptedInputs(2, n))

	if !g.SetState(StatePaused) || !g.SetState(StateReplayBackwards) {
		t.Fatalf("could not enter replay backwards from %s", g.State())
	}
	for k := 1; k <= n; k++ {
		g.Step(nil)
		if g.Frame() != n-k {
			t.Fatalf("Frame() = %d, expected %d", g.Frame(), n-k)
		}
		if g.Digest() != digests[n-k] {
			t.Fatalf("frame %d: digest differs after rewinding", n-k)
		}
	}
	if s := g.Step(nil); s != StatePaused {
		t.Errorf("State() at frame 0 = %s, expected paused", s)
	}
}

func TestHistoryPruningAndJumpFrame(t *testing.T) {
	const (
		capFrames = 30
		total     = 200
	)
	g := newTestGame(t, func(s *Setup) { s.MaxHistoryFrames = capFrames })
	digests := playLocal(t, g, scriptedInputs(4, total))

	if g.HistoryLen() != capFrames {
		t.Errorf("HistoryLen() = %d, expected %d", g.HistoryLen(), capFrames)
	}
	if g.OldestFrame() != total-capFrames+1 {
		t.Errorf("OldestFrame() = %d, expected %d", g.OldestFrame(), total-capFrames+1)
	}

	frames := []int{total, total - capFrames + 1, total - 5, 0, 10, total - capFrames, 150, total}
	for _, f := range frames {
		if err := g.JumpFrame(f); err != nil {
			t.Fatalf("JumpFrame(%d) error = %v", f, err)
		}
		if g.Frame() != f {
			t.Errorf("Frame() = %d, expected %d", g.Frame(), f)
		}
		if g.Digest() != digests[f] {
			t.Errorf("JumpFrame(%d) digest differs from the original run", f)
		}
		if g.HistoryLen() != capFrames {
			t.Errorf("JumpFrame(%d) changed HistoryLen() to %d", f, g.HistoryLen())
		}
	}

	if err := g.JumpFrame(total + 1); err == nil {
		t.Error("JumpFrame() past recorded input error = nil, expected ErrFrameUnavailable")
	}
}

func TestReplayForwardsFromInputOverwritesFuture(t *testing.T) {
	const n = 100
	g := newTestGame(t, nil)
	digests := playLocal(t, g, scriptedInputs(5, n))

	if err := g.JumpFrame(40); err != nil {
		t.Fatal(err)
	}
	g.SetState(StatePaused)
	if !g.SetState(StateReplayForwardsFromInput) {
		t.Fatal("SetState(ReplayForwardsFromInput) = false")
	}
	for g.State() == StateReplayForwardsFromInput {
		g.Step(nil)
	}
	if g.Frame() != n {
		t.Errorf("Frame() = %d, expected %d", g.Frame(), n)
	}
	if g.Digest() != digests[n] {
		t.Error("re-simulated frame differs from the original")
	}
	if g.HistoryLen() != n+1 {
		t.Errorf("HistoryLen() = %d, expected %d", g.HistoryLen(), n+1)
	}
}

func TestReplayForwardsFromHistory(t *testing.T) {
	const n = 60
	g := newTestGame(t, nil)
	digests := playLocal(t, g, scriptedInputs(6, n))
	if err := g.JumpFrame(10); err != nil {
		t.Fatal(err)
	}
	g.SetState(StatePaused)
	g.SetState(StateReplayForwardsFromHistory)
	for i := 0; i < 20; i++ {
		g.Step(nil)
	}
	if g.Frame() != 30 || g.Digest() != digests[30] {
		t.Errorf("Frame() = %d, expected 30 with the original state", g.Frame())
	}
}

func TestReplayForwardsFromHistoryRefillsBuffer(t *testing.T) {
	const (
		capFrames = 30
		total     = 600
		from      = 300
		steps     = 50
	)
	g := newTestGame(t, func(s *Setup) { s.MaxHistoryFrames = capFrames })
	digests := playLocal(t, g, scriptedInputs(8, total))

	if err := g.JumpFrame(from); err != nil {
		t.Fatal(err)
	}
	if g.OldestFrame() != total-capFrames+1 {
		t.Fatalf("OldestFrame() = %d, expected %d", g.OldestFrame(), total-capFrames+1)
	}
	g.SetState(StatePaused)
	if !g.SetState(StateReplayForwardsFromHistory) {
		t.Fatal("SetState(ReplayForwardsFromHistory) = false")
	}

	g.Step(nil)
	if g.OldestFrame() != from+1 || g.HistoryLen() != 1 {
		t.Errorf("after one step OldestFrame() = %d HistoryLen() = %d, expected %d and 1",
			g.OldestFrame(), g.HistoryLen(), from+1)
	}
	for i := 1; i < steps; i++ {
		g.Step(nil)
	}

	if g.Frame() != from+steps || g.Digest() != digests[from+steps] {
		t.Errorf("Frame() = %d, expected %d with the original state", g.Frame(), from+steps)
	}
	if g.HistoryLen() != capFrames {
		t.Errorf("HistoryLen() = %d, expected %d", g.HistoryLen(), capFrames)
	}
	if g.OldestFrame() != from+steps-capFrames+1 {
		t.Errorf("OldestFrame() = %d, expected %d", g.OldestFrame(), from+steps-capFrames+1)
	}
	if _, ok := g.snapshotAt(from + steps - 1); !ok {
		t.Error("the frame just replayed should be buffered")
	}
}

func TestLocalStepAfterRewindErasesFuture(t *testing.T) {
	g := newTestGame(t, nil)
	playLocal(t, g, scriptedInputs(8, 50))
	if err := g.JumpFrame(20); err != nil {
		t.Fatal(err)
	}
	g.Step([]core.ControllerInput{{PluggedIn: true}, {PluggedIn: true}})
	if g.Frame() != 21 {
		t.Errorf("Frame() = %d, expected 21", g.Frame())
	}
	if g.LastInputFrame() != 21 {
		t.Errorf("LastInputFrame() = %d, expected 21", g.LastInputFrame())
	}
	if g.HistoryLen() != 22 {
		t.Errorf("HistoryLen() = %d, expected 22", g.HistoryLen())
	}
	if err := g.JumpFrame(30); err == nil {
		t.Error("JumpFrame() into erased future error = nil")
	}
}

func TestPauseTransitions(t *testing.T) {
	start := []core.ControllerInput{{PluggedIn: true, Start: true}, {PluggedIn: true}}
	idle := []core.ControllerInput{{PluggedIn: true}, {PluggedIn: true}}

	g := newTestGame(t, nil)
	g.Step(idle)
	if s := g.Step(start); s != StatePaused {
		t.Fatalf("State() after start = %s, expected paused", s)
	}
	frame := g.Frame()
	if s := g.Step(start); s != StatePaused {
		t.Errorf("holding start resumed the match: %s", s)
	}
	if g.Frame() != frame {
		t.Errorf("paused match advanced to frame %d", g.Frame())
	}
	g.Step(idle)
	if s := g.Step(start); s != StateLocal {
		t.Errorf("State() after second press = %s, expected local", s)
	}

	if g.SetState(StateReplayBackwards) {
		t.Error("SetState(ReplayBackwards) from local = true, expected false")
	}
	g.QuitMatch()
	if g.State() != StateQuit || g.QuitInfo().Reason != QuitUser {
		t.Errorf("QuitInfo() = %+v in %s, expected user quit", g.QuitInfo(), g.State())
	}
	if g.SetState(StatePaused) {
		t.Error("SetState() after quit = true")
	}
}

func TestPauseOffIgnoresStart(t *testing.T) {
	g := newTestGame(t, func(s *Setup) { s.Rules.Pause = content.PauseOff })
	g.Step([]core.ControllerInput{{PluggedIn: true, Start: true}})
	if g.State() != StateLocal {
		t.Errorf("State() = %s, expected local", g.State())
	}
}

func TestPauseHoldNeedsLongPress(t *testing.T) {
	g := newTestGame(t, func(s *Setup) { s.Rules.Pause = content.PauseHold })
	start := []core.ControllerInput{{PluggedIn: true, Start: true}}
	for i := 1; i < pauseHoldFrames; i++ {
		if s := g.Step(start); s != StateLocal {
			t.Fatalf("paused after %d frames", i)
		}
	}
	if s := g.Step(start); s != StatePaused {
		t.Errorf("State() = %s after holding start, expected paused", s)
	}
}

func TestStepThenPause(t *testing.T) {
	g := newTestGame(t, nil)
	g.SetState(StatePaused)
	g.SetState(StateStepThenPause)
	if s := g.Step(nil); s != StatePaused || g.Frame() != 1 {
		t.Errorf("State() = %s at frame %d, expected paused at 1", s, g.Frame())
	}
	g.SetState(StateStepBackwardThenPause)
	if s := g.Step(nil); s != StatePaused || g.Frame() != 0 {
		t.Errorf("State() = %s at frame %d, expected paused at 0", s, g.Frame())
	}
	g.SetState(StateStepForwardThenPause)
	if s := g.Step(nil); s != StatePaused || g.Frame() != 1 {
		t.Errorf("State() = %s at frame %d, expected paused at 1", s, g.Frame())
	}
}

func TestRenderSnapshot(t *testing.T) {
	g := newTestGame(t, func(s *Setup) { s.Rules = content.DefaultRules() })
	g.Step([]core.ControllerInput{{PluggedIn: true}, {PluggedIn: true}})
	r := g.Render()
	if r.Frame != 1 || r.State != StateLocal {
		t.Errorf("Render() = frame %d %s, expected frame 1 local", r.Frame, r.State)
	}
	if len(r.Players) != 2 || len(r.Entities) != 2 {
		t.Fatalf("Render() has %d players and %d entities, expected 2 and 2", len(r.Players), len(r.Entities))
	}
	if r.Players[0].Stocks != 4 {
		t.Errorf("Stocks = %d, expected 4", r.Players[0].Stocks)
	}
	if !r.HasTimer || r.Timer <= 0 {
		t.Errorf("Timer = %v, expected time remaining", r.Timer)
	}
	cam := g.Stage().Camera
	if r.Camera.Left() < cam.Left()-1e-9 || r.Camera.Right() > cam.Right()+1e-9 {
		t.Errorf("Camera = %+v outside stage camera %+v", r.Camera, cam)
	}
	for _, e := range r.Entities {
		if len(e.Boxes) == 0 {
			t.Errorf("entity %s has no boxes", e.Key)
		}
	}
}

func TestSetStageKeepsOldSnapshots(t *testing.T) {
	g := newTestGame(t, nil)
	playLocal(t, g, scriptedInputs(9, 10))
	old := g.Stage()

	moved := old.Clone()
	moved.Name = "moved"
	if err := g.SetStage(moved); err != nil {
		t.Fatalf("SetStage() error = %v", err)
	}
	if err := g.JumpFrame(5); err != nil {
		t.Fatal(err)
	}
	if g.Stage().Name != old.Name {
		t.Errorf("Stage().Name = %q at frame 5, expected %q", g.Stage().Name, old.Name)
	}
	if err := g.JumpFrame(10); err != nil {
		t.Fatal(err)
	}
	if g.Stage().Name != "moved" {
		t.Errorf("Stage().Name = %q at frame 10, expected moved", g.Stage().Name)
	}
}

func TestRunReplaysRecordedInput(t *testing.T) {
	inputs := scriptedInputs(10, 150)
	live := newTestGame(t, nil)
	want := playLocal(t, live, inputs)

	replay := newTestGame(t, func(s *Setup) {
		s.Inputs = live.Inputs()
		s.State = StatePaused
	})
	if s := replay.Run(); s != StatePaused {
		t.Errorf("Run() = %s, expected paused at the end of input", s)
	}
	if replay.Frame() != 150 || replay.Digest() != want[150] {
		t.Errorf("Run() ended at frame %d with a different state", replay.Frame())
	}
}

// fallingPlayer is a player below the blast zone on its last stock.
func fallingPlayer(t *testing.T, g *Game, id int, killer int) *sim.Entity {
	t.Helper()
	e, err := sim.NewPlayer("brawler", id, id, g.Stage(), g.Package(), g.Rules())
	if err != nil {
		t.Fatal(err)
	}
	e.State = sim.NewActionState("brawler", int(action.Fall))
	e.Player.Stocks = 1
	e.Player.Body.Location = sim.Airborne(0, g.Stage().Blast.Bot()-10)
	e.Player.HitBy = &killer
	return e
}
