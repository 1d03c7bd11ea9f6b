package sim

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/vovakirdan/brawl-core/internal/action"
	"github.com/vovakirdan/brawl-core/internal/core"
)

func TestHitlagFrames(t *testing.T) {
	tests := []struct {
		damage   float64
		expected int
	}{
		{0, 3},
		{2.9, 3},
		{9, 6},
		{17, 8},
	}
	for _, tc := range tests {
		if got := hitlagFrames(tc.damage); got != tc.expected {
			t.Errorf("hitlagFrames(%v) = %d, expected %d", tc.damage, got, tc.expected)
		}
	}
}

func TestHitlagFreezesAction(t *testing.T) {
	s := testSimulation(t, "final")
	es := &Entities{}
	key := es.Insert(standingPlayer(0, 0, true, int(action.Idle), 5))
	e := es.Get(key)
	e.State.Hitlag = Hitlag{Kind: HitlagLaunch, Counter: hitlagFrames(9)}

	frozen := 0
	for i := 0; i < 10; i++ {
		before := e.State.Frame
		e.actionHitlagStep(testContext(s, es, key))
		if e.State.Frame == before {
			frozen++
		}
	}
	if frozen != 4 {
		t.Errorf("frozen frames = %d, expected 4", frozen)
	}
	if e.State.Hitlag.Active() {
		t.Error("hitlag should have ended")
	}
	if e.State.Hitlag.WobbleX != 0 {
		t.Error("wobble should reset with the hitlag")
	}
}

func TestHitlagWobbleIsSeeded(t *testing.T) {
	a := Hitlag{Kind: HitlagLaunch, Counter: 10}
	b := a
	a.Step(FrameRng(7, 100))
	b.Step(FrameRng(7, 100))
	if a != b {
		t.Errorf("wobble differs for the same seed and frame: %v, %v", a, b)
	}
	if a.WobbleX == 0 || math.Abs(a.WobbleX) > 1.5 {
		t.Errorf("WobbleX = %v, expected a value in [-1.5, 1.5]", a.WobbleX)
	}
}

func TestFrameRngDeterministic(t *testing.T) {
	if FrameRng(1, 2).Uint64() != FrameRng(1, 2).Uint64() {
		t.Error("FrameRng() should repeat for the same seed and frame")
	}
	if FrameRng(1, 2).Uint64() == FrameRng(1, 3).Uint64() {
		t.Error("FrameRng() should differ between frames")
	}
	if FrameRng(1, 2).Uint64() == FrameRng(2, 2).Uint64() {
		t.Error("FrameRng() should differ between seeds")
	}
}

func TestSetActionRunsFirstFrameSameTick(t *testing.T) {
	s := testSimulation(t, "final")
	es := &Entities{}
	key := es.Insert(standingPlayer(0, 0, true, int(action.Idle), 10))
	e := es.Get(key)

	ctx := testContext(s, es, key)
	ctx.Input.A = core.Button{Value: true, Press: true}
	e.actionHitlagStep(ctx)
	if action.Player(e.State.Action) != action.Jab || e.State.Frame != 0 {
		t.Fatalf("after A press: %s frame %d, expected Jab frame 0", action.Player(e.State.Action), e.State.Frame)
	}

	e.actionHitlagStep(testContext(s, es, key))
	if e.State.Frame != 1 {
		t.Errorf("Frame = %d, expected 1", e.State.Frame)
	}
}

func TestActionExpiresToNextAction(t *testing.T) {
	s := testSimulation(t, "final")
	es := &Entities{}
	jab := s.Package.Entities["brawler"].Action(int(action.Jab))
	key := es.Insert(standingPlayer(0, 0, true, int(action.Jab), jab.LastFrame()))
	e := es.Get(key)

	e.actionHitlagStep(testContext(s, es, key))
	if action.Player(e.State.Action) != action.Idle {
		t.Errorf("Action = %s, expected Idle", action.Player(e.State.Action))
	}
	if e.State.FrameNoRestart != 0 {
		t.Errorf("FrameNoRestart = %d, expected 0 after an action change", e.State.FrameNoRestart)
	}
}

func TestNormalizeOutOfRange(t *testing.T) {
	s := testSimulation(t, "final")
	def := s.Package.Entities["brawler"]

	st := ActionState{Action: int(action.Jab), Frame: 999}
	st.normalize(def)
	if st.Frame != 0 {
		t.Errorf("Frame = %d, expected 0", st.Frame)
	}
	st = ActionState{Action: 10_000, Frame: 3}
	st.normalize(def)
	if st.Action != 0 || st.Frame != 0 {
		t.Errorf("normalize() = %d/%d, expected 0/0", st.Action, st.Frame)
	}
}

func isLedgeAction(a action.Player) bool {
	return strings.HasPrefix(a.String(), "Ledge")
}

func TestEveryPlayerActionExpires(t *testing.T) {
	s := testSimulation(t, "final")
	for _, a := range action.PlayerActions() {
		t.Run(a.String(), func(t *testing.T) {
			es := &Entities{}
			e := standingPlayer(0, 0, true, int(a), 0)
			if isLedgeAction(a) {
				e.Player.Body.Location = OnLedge(0, -2, -14)
			}
			key := es.Insert(e)
			ctx := testContext(s, es, key)

			var r *ActionResult
			func() {
				defer func() {
					if rec := recover(); rec != nil {
						t.Fatalf("actionExpired() panicked: %v", rec)
					}
				}()
				r = e.Player.actionExpired(ctx, &e.State)
			}()
			if r == nil || r.kind != resultSetAction {
				t.Fatalf("actionExpired() = %+v, expected a new action", r)
			}
			if name := action.Player(r.action).String(); name == "Unknown" {
				t.Errorf("actionExpired() = %d, not a player action", r.action)
			}
		})
	}
}

func TestLedgeGetupStandsOnPlatform(t *testing.T) {
	s := testSimulation(t, "final")
	es := &Entities{}
	e := standingPlayer(0, 0, true, int(action.LedgeGetup), 0)
	e.Player.Body.Location = OnLedge(0, -2, -14)
	key := es.Insert(e)

	r := e.Player.actionExpired(testContext(s, es, key), &e.State)
	if action.Player(r.action) != action.Idle {
		t.Fatalf("actionExpired() = %s, expected Idle", action.Player(r.action))
	}
	loc := e.Player.Body.Location
	if loc.Kind != LocSurface || loc.Platform != 0 {
		t.Fatalf("Location = %+v, expected floor 0", loc)
	}
	if !s.Stage.Surfaces[0].PlatXInBounds(loc.X) {
		t.Errorf("Location.X = %v is off the platform", loc.X)
	}
}

func TestShieldBreaksOnSchedule(t *testing.T) {
	for _, cost := range []float64{0.5, 0.25} {
		t.Run(fmt.Sprint(cost), func(t *testing.T) {
			s := testSimulation(t, "final")
			def := *s.Package.Entities["brawler"]
			shield := *def.Shield
			shield.HPCost = cost
			def.Shield = &shield
			s.Package.Entities["tank"] = &def

			es := &Entities{}
			e := standingPlayer(0, 0, true, int(action.Shield), 0)
			e.State.DefKey = "tank"
			e.Player.ShieldHP = shield.HPMax
			key := es.Insert(e)

			expected := int(math.Ceil(shield.HPMax / cost))
			var history core.InputHistory
			for frame := 0; frame <= expected; frame++ {
				history = append(history, []core.ControllerInput{plugged(core.ControllerInput{L: true})})
				es = s.Step(es, frame, inputsAt(history, 1, frame))
				p := es.Get(key).Player
				broke := action.Player(es.Get(key).State.Action) == action.ShieldBreakFall
				if broke != (frame+1 == expected) {
					t.Fatalf("step %d: broke = %v, expected break on step %d", frame+1, broke, expected)
				}
				if broke {
					if p.ShieldHP != 0 {
						t.Errorf("ShieldHP = %v, expected 0", p.ShieldHP)
					}
					if p.Body.KBYVel <= 0 {
						t.Errorf("KBYVel = %v, expected an upward launch", p.Body.KBYVel)
					}
					if !p.Body.IsAirborne() {
						t.Error("shield break should launch the player")
					}
					return
				}
			}
		})
	}
}

func TestStunEndsOnTimer(t *testing.T) {
	s := testSimulation(t, "final")
	es := &Entities{}
	e := standingPlayer(0, 0, true, int(action.Stun), 0)
	e.Player.StunTimer = 3
	key := es.Insert(e)

	for i := 1; i <= 3; i++ {
		r := e.Player.stunAction(testContext(s, es, key), &e.State)
		if (r != nil) != (i == 3) {
			t.Fatalf("call %d: result %+v", i, r)
		}
	}
	if e.Player.ShieldHP > 30 {
		t.Errorf("ShieldHP = %v, expected at most 30 while stunned", e.Player.ShieldHP)
	}
}
