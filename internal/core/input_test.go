package core

import (
	"testing"

	"pgregory.net/rapid"
)

func TestNewPlayerInputEdges(t *testing.T) {
	var window [HistoryLen]ControllerInput
	window[0] = ControllerInput{PluggedIn: true, A: true, B: true, StickX: 0.8, LTrigger: 0.5}
	window[1] = ControllerInput{PluggedIn: true, B: true, StickX: 0.2}

	in := NewPlayerInput(window)

	if !in.A.Value || !in.A.Press {
		t.Errorf("A = %+v, expected held and pressed", in.A)
	}
	if !in.B.Value || in.B.Press {
		t.Errorf("B = %+v, expected held but not pressed", in.B)
	}
	if d := in.StickX.Diff; d < 0.5999 || d > 0.6001 {
		t.Errorf("StickX.Diff = %v, expected 0.6", d)
	}
	if in.LTrigger.Diff != 0.5 {
		t.Errorf("LTrigger.Diff = %v, expected 0.5", in.LTrigger.Diff)
	}
	if in.At(1).StickX != 0.2 {
		t.Errorf("At(1).StickX = %v, expected 0.2", in.At(1).StickX)
	}
	if in.At(HistoryLen) != (ControllerInput{}) {
		t.Error("At() out of range should be empty")
	}
}

func TestUnpluggedInputIsEmpty(t *testing.T) {
	var window [HistoryLen]ControllerInput
	window[0] = ControllerInput{A: true, StickX: 1}

	if in := NewPlayerInput(window); in != (PlayerInput{}) {
		t.Errorf("unplugged input = %+v, expected empty", in)
	}
}

func TestInputHistoryWindow(t *testing.T) {
	h := InputHistory{
		{{PluggedIn: true, StickX: 0.1}},
		{{PluggedIn: true, StickX: 0.2}},
		{{PluggedIn: true, StickX: 0.3}},
	}

	tests := []struct {
		name       string
		controller int
		index      int
		expected   [3]float64 // stick x of the first three window entries
	}{
		{"latest frame", 0, 2, [3]float64{0.3, 0.2, 0.1}},
		{"before match start", 0, 0, [3]float64{0.1, 0, 0}},
		{"past end repeats last frame", 0, 4, [3]float64{0.3, 0.3, 0.3}},
		{"unknown controller", 3, 2, [3]float64{0, 0, 0}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := h.Window(tc.controller, tc.index)
			for i, want := range tc.expected {
				if w[i].StickX != want {
					t.Errorf("Window()[%d].StickX = %v, expected %v", i, w[i].StickX, want)
				}
			}
		})
	}
}

func TestInputHistoryClone(t *testing.T) {
	h := InputHistory{{{PluggedIn: true, A: true}}}
	c := h.Clone()
	c[0][0].A = false

	if !h[0][0].A {
		t.Error("Clone() shares storage with the original")
	}
}

func TestStickAngle(t *testing.T) {
	if _, ok := (ControllerInput{}).StickAngle(); ok {
		t.Error("centered stick should have no angle")
	}
	angle, ok := ControllerInput{StickY: 1}.StickAngle()
	if !ok || angle < 1.5707 || angle > 1.5709 {
		t.Errorf("StickAngle() = %v, %v, expected pi/2", angle, ok)
	}
}

func TestPressMatchesEdgeProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		now := rapid.Bool().Draw(t, "now")
		before := rapid.Bool().Draw(t, "before")
		stick := rapid.Float64Range(-1, 1).Draw(t, "stick")
		prevStick := rapid.Float64Range(-1, 1).Draw(t, "prevStick")

		var window [HistoryLen]ControllerInput
		window[0] = ControllerInput{PluggedIn: true, X: now, StickY: stick}
		window[1] = ControllerInput{PluggedIn: true, X: before, StickY: prevStick}
		in := NewPlayerInput(window)

		if in.X.Press != (now && !before) {
			t.Fatalf("Press = %v for now=%v before=%v", in.X.Press, now, before)
		}
		if in.X.Press && !in.X.Value {
			t.Fatal("a press must also be held")
		}
		if in.StickY.Diff != stick-prevStick {
			t.Fatalf("Diff = %v, expected %v", in.StickY.Diff, stick-prevStick)
		}
	})
}
