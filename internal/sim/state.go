package sim

import (
	"math/rand/v2"

	"github.com/vovakirdan/brawl-core/internal/content"
)

// HitlagKind identifies the kind of freeze an entity is in after a hit.
type HitlagKind uint8

const (
	HitlagNone HitlagKind = iota
	HitlagAttack
	HitlagLaunch
)

// Hitlag freezes an entity's action logic for a number of frames.
// A launched entity also wobbles horizontally while frozen.
type Hitlag struct {
	Kind    HitlagKind `json:"kind,omitempty"`
	Counter int        `json:"counter,omitempty"`
	WobbleX float64    `json:"wobble_x,omitempty"`
}

// hitlagFrames is the freeze applied to both participants of a hit.
func hitlagFrames(damage float64) int {
	return int(damage/3 + 3)
}

// Active reports whether the entity is frozen.
func (h Hitlag) Active() bool {
	return h.Kind != HitlagNone
}

// Step counts the hitlag down and rerolls the wobble.
func (h *Hitlag) Step(rng *rand.Rand) {
	if h.Kind == HitlagNone {
		return
	}
	h.Counter--
	if h.Counter <= 1 {
		*h = Hitlag{}
		return
	}
	if h.Kind == HitlagLaunch {
		h.WobbleX = (rng.Float64() - 0.5) * 3
	}
}

// ActionState is where an entity is in its action table.
type ActionState struct {
	DefKey         string      `json:"def"`
	Action         int         `json:"action"`
	Frame          int         `json:"frame"`
	FrameNoRestart int         `json:"frame_no_restart"`
	Hitlag         Hitlag      `json:"hitlag"`
	Hitlist        []EntityKey `json:"hitlist,omitempty"`
}

// NewActionState starts an entity on frame 0 of action.
func NewActionState(defKey string, action int) ActionState {
	return ActionState{DefKey: defKey, Action: action}
}

func (s ActionState) clone() ActionState {
	out := s
	out.Hitlist = append([]EntityKey(nil), s.Hitlist...)
	return out
}

// frameData returns the content for the current frame, or nil when the
// action or frame does not exist.
func (s *ActionState) frameData(def *content.EntityDef) *content.ActionFrame {
	if def == nil {
		return nil
	}
	return def.Frame(s.Action, s.Frame)
}

// lastFrame reports whether the entity is on the final frame of its action.
func (s *ActionState) lastFrame(def *content.EntityDef) bool {
	a := def.Action(s.Action)
	return a == nil || s.Frame >= a.LastFrame()
}

func (s *ActionState) pastLastFrame(def *content.EntityDef) bool {
	a := def.Action(s.Action)
	return a == nil || s.Frame > a.LastFrame()
}

// interruptible reports whether the current frame is at or past the action's IASA frame.
func (s *ActionState) interruptible(def *content.EntityDef) bool {
	a := def.Action(s.Action)
	return a == nil || s.Frame >= a.IASA
}

// firstInterruptible reports whether this is exactly the action's IASA frame.
func (s *ActionState) firstInterruptible(def *content.EntityDef) bool {
	a := def.Action(s.Action)
	return a != nil && s.Frame == a.IASA
}

// normalize moves an entity off an action or frame its definition does not have.
// Replays and edited content can refer to data that no longer exists.
func (s *ActionState) normalize(def *content.EntityDef) {
	a := def.Action(s.Action)
	if a == nil {
		s.Action = 0
		s.Frame = 0
		return
	}
	if s.Frame < 0 || s.Frame > a.LastFrame() {
		s.Frame = 0
	}
}

type resultKind uint8

const (
	resultSetAction resultKind = iota
	resultSetActionKeepFrame
	resultSetFrame
)

// ActionResult is a requested change to an entity's action state.
// Behaviors return nil when they request nothing.
type ActionResult struct {
	kind   resultKind
	action int
	frame  int
}

func setAction[A ~int](a A) *ActionResult {
	return &ActionResult{kind: resultSetAction, action: int(a)}
}

func setActionKeepFrame[A ~int](a A) *ActionResult {
	return &ActionResult{kind: resultSetActionKeepFrame, action: int(a)}
}

func setFrame(frame int) *ActionResult {
	return &ActionResult{kind: resultSetFrame, frame: frame}
}

// or returns r, or the result of next when r is nil.
func (r *ActionResult) or(next func() *ActionResult) *ActionResult {
	if r != nil {
		return r
	}
	return next()
}
