package core

import "math"

// HistoryLen is the number of frames of controller state every PlayerInput carries.
const HistoryLen = 8

// ControllerInput is the raw state of one controller during one frame.
// It is what replays record and what netplay peers exchange.
type ControllerInput struct {
	PluggedIn bool `json:"plugged_in,omitempty"`

	A     bool `json:"a,omitempty"`
	B     bool `json:"b,omitempty"`
	X     bool `json:"x,omitempty"`
	Y     bool `json:"y,omitempty"`
	Left  bool `json:"left,omitempty"`
	Right bool `json:"right,omitempty"`
	Down  bool `json:"down,omitempty"`
	Up    bool `json:"up,omitempty"`
	Start bool `json:"start,omitempty"`
	Z     bool `json:"z,omitempty"`
	R     bool `json:"r,omitempty"`
	L     bool `json:"l,omitempty"`

	StickX   float64 `json:"stick_x,omitempty"`
	StickY   float64 `json:"stick_y,omitempty"`
	CStickX  float64 `json:"c_stick_x,omitempty"`
	CStickY  float64 `json:"c_stick_y,omitempty"`
	LTrigger float64 `json:"l_trigger,omitempty"`
	RTrigger float64 `json:"r_trigger,omitempty"`
}

// StickAngle returns the angle of the control stick in radians.
// ok is false when the stick is centered.
func (c ControllerInput) StickAngle() (angle float64, ok bool) {
	if c.StickX == 0 && c.StickY == 0 {
		return 0, false
	}
	return math.Atan2(c.StickY, c.StickX), true
}

// Button is a digital input with edge detection.
type Button struct {
	Value bool // held this frame
	Press bool // held this frame but not the previous one
}

// Stick is one axis of an analog stick.
type Stick struct {
	Value float64
	Diff  float64 // change since the previous frame
}

// Trigger is an analog shoulder trigger.
type Trigger struct {
	Value float64
	Diff  float64
}

// PlayerInput is the view of a controller the simulation consumes for one frame:
// current values, press/diff edges against the previous frame, and a short window
// of raw history for patterns that span several frames.
type PlayerInput struct {
	PluggedIn bool

	A, B, X, Y            Button
	Left, Right, Down, Up Button
	Start, Z, R, L        Button

	StickX, StickY   Stick
	CStickX, CStickY Stick

	LTrigger, RTrigger Trigger

	// History[0] is the current frame, History[1] the previous one and so on.
	History [HistoryLen]ControllerInput
}

// At returns the raw controller state i frames ago.
func (p *PlayerInput) At(i int) ControllerInput {
	if i < 0 || i >= HistoryLen {
		return ControllerInput{}
	}
	return p.History[i]
}

// NewPlayerInput builds a PlayerInput from a window of raw controller states.
// An unplugged controller produces an empty input.
func NewPlayerInput(window [HistoryLen]ControllerInput) PlayerInput {
	cur, prev := window[0], window[1]
	if !cur.PluggedIn {
		return PlayerInput{}
	}

	button := func(now, before bool) Button {
		return Button{Value: now, Press: now && !before}
	}

	return PlayerInput{
		PluggedIn: true,

		A:     button(cur.A, prev.A),
		B:     button(cur.B, prev.B),
		X:     button(cur.X, prev.X),
		Y:     button(cur.Y, prev.Y),
		Left:  button(cur.Left, prev.Left),
		Right: button(cur.Right, prev.Right),
		Down:  button(cur.Down, prev.Down),
		Up:    button(cur.Up, prev.Up),
		Start: button(cur.Start, prev.Start),
		Z:     button(cur.Z, prev.Z),
		R:     button(cur.R, prev.R),
		L:     button(cur.L, prev.L),

		StickX:  Stick{Value: cur.StickX, Diff: cur.StickX - prev.StickX},
		StickY:  Stick{Value: cur.StickY, Diff: cur.StickY - prev.StickY},
		CStickX: Stick{Value: cur.CStickX, Diff: cur.CStickX - prev.CStickX},
		CStickY: Stick{Value: cur.CStickY, Diff: cur.CStickY - prev.CStickY},

		LTrigger: Trigger{Value: cur.LTrigger, Diff: cur.LTrigger - prev.LTrigger},
		RTrigger: Trigger{Value: cur.RTrigger, Diff: cur.RTrigger - prev.RTrigger},

		History: window,
	}
}

// InputHistory stores every frame of controller input of a match:
// InputHistory[frame][controller].
type InputHistory [][]ControllerInput

// Window returns HistoryLen frames of input for one controller ending at frame index.
// Frames before the start of the match are empty. Frames past the end of the
// recorded history repeat the last recorded frame, which is how missing remote
// input is predicted.
func (h InputHistory) Window(controller, index int) [HistoryLen]ControllerInput {
	var window [HistoryLen]ControllerInput
	for i := range window {
		frame := index - i
		if frame < 0 {
			continue
		}
		var controllers []ControllerInput
		if frame < len(h) {
			controllers = h[frame]
		} else if len(h) > 0 {
			controllers = h[len(h)-1]
		}
		if controller < len(controllers) {
			window[i] = controllers[controller]
		}
	}
	return window
}

// Player returns the PlayerInput for a controller at frame index.
func (h InputHistory) Player(controller, index int) PlayerInput {
	return NewPlayerInput(h.Window(controller, index))
}

// Clone returns a deep copy of the history.
func (h InputHistory) Clone() InputHistory {
	out := make(InputHistory, len(h))
	for i, frame := range h {
		out[i] = append([]ControllerInput(nil), frame...)
	}
	return out
}
