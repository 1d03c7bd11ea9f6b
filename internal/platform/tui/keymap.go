package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/brawl-core/internal/core"
)

// holdTicks is how long a key counts as held after its last key event.
// Terminals report presses and auto-repeat, never releases.
const holdTicks = 8

// KeyMap defines the key bindings for a match.
type KeyMap struct {
	Left    key.Binding
	Right   key.Binding
	Up      key.Binding
	Down    key.Binding
	Attack  key.Binding
	Special key.Binding
	Jump    key.Binding
	Shield  key.Binding
	Grab    key.Binding
	Start   key.Binding

	Pause         key.Binding
	StepBack      key.Binding
	StepForward   key.Binding
	ReplayBack    key.Binding
	ReplayForward key.Binding
	ReplayInput   key.Binding
	Quit          key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Attack, k.Special, k.Jump, k.Shield, k.Grab, k.Pause, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down},
		{k.Attack, k.Special, k.Jump, k.Shield, k.Grab, k.Start},
		{k.Pause, k.StepBack, k.StepForward, k.ReplayBack, k.ReplayForward, k.ReplayInput, k.Quit},
	}
}

// DefaultKeyMap returns default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Left:    key.NewBinding(key.WithKeys("left", "a"), key.WithHelp("←↑→↓/wasd", "move")),
		Right:   key.NewBinding(key.WithKeys("right", "d")),
		Up:      key.NewBinding(key.WithKeys("up", "w")),
		Down:    key.NewBinding(key.WithKeys("down", "s")),
		Attack:  key.NewBinding(key.WithKeys("j"), key.WithHelp("j", "attack")),
		Special: key.NewBinding(key.WithKeys("k"), key.WithHelp("k", "special")),
		Jump:    key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "jump")),
		Shield:  key.NewBinding(key.WithKeys(";"), key.WithHelp(";", "shield")),
		Grab:    key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "grab")),
		Start:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "start")),

		Pause:         key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause")),
		StepBack:      key.NewBinding(key.WithKeys(","), key.WithHelp(",", "frame back")),
		StepForward:   key.NewBinding(key.WithKeys("."), key.WithHelp(".", "frame forward")),
		ReplayBack:    key.NewBinding(key.WithKeys("["), key.WithHelp("[", "rewind")),
		ReplayForward: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "play history")),
		ReplayInput:   key.NewBinding(key.WithKeys("}"), key.WithHelp("}", "resimulate")),
		Quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

type button int

const (
	buttonLeft button = iota
	buttonRight
	buttonUp
	buttonDown
	buttonA
	buttonB
	buttonX
	buttonL
	buttonZ
	buttonStart
	buttonCount
)

// Keyboard turns key events into the controller of one player.
type Keyboard struct {
	keys KeyMap
	held [buttonCount]int // ticks left
}

// NewKeyboard creates a keyboard with the given bindings.
func NewKeyboard(keys KeyMap) *Keyboard {
	return &Keyboard{keys: keys}
}

// Press records a key event. It reports whether the key is a controller key.
func (k *Keyboard) Press(msg tea.KeyMsg) bool {
	bindings := [buttonCount]key.Binding{
		buttonLeft:  k.keys.Left,
		buttonRight: k.keys.Right,
		buttonUp:    k.keys.Up,
		buttonDown:  k.keys.Down,
		buttonA:     k.keys.Attack,
		buttonB:     k.keys.Special,
		buttonX:     k.keys.Jump,
		buttonL:     k.keys.Shield,
		buttonZ:     k.keys.Grab,
		buttonStart: k.keys.Start,
	}
	for b, binding := range bindings {
		if !key.Matches(msg, binding) {
			continue
		}
		k.held[b] = holdTicks
		switch button(b) {
		case buttonLeft:
			k.held[buttonRight] = 0
		case buttonRight:
			k.held[buttonLeft] = 0
		case buttonUp:
			k.held[buttonDown] = 0
		case buttonDown:
			k.held[buttonUp] = 0
		case buttonStart:
			// A single tick, so the press edge is seen once.
			k.held[b] = 1
		}
		return true
	}
	return false
}

// Controller returns the input for the current tick.
func (k *Keyboard) Controller() core.ControllerInput {
	on := func(b button) bool { return k.held[b] > 0 }
	in := core.ControllerInput{
		PluggedIn: true,
		A:         on(buttonA),
		B:         on(buttonB),
		X:         on(buttonX),
		L:         on(buttonL),
		Z:         on(buttonZ),
		Start:     on(buttonStart),
	}
	switch {
	case on(buttonLeft):
		in.StickX = -1
	case on(buttonRight):
		in.StickX = 1
	}
	switch {
	case on(buttonUp):
		in.StickY = 1
	case on(buttonDown):
		in.StickY = -1
	}
	if in.L {
		in.LTrigger = 1
	}
	return in
}

// Tick ages held keys by one tick.
func (k *Keyboard) Tick() {
	for b := range k.held {
		if k.held[b] > 0 {
			k.held[b]--
		}
	}
}

// Reset releases every key.
func (k *Keyboard) Reset() {
	k.held = [buttonCount]int{}
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionBack
	MenuActionQuit
)

// MapKeyToMenuAction translates a key to a menu action.
func MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	switch msg.String() {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k": // vim-style k for up
		return MenuActionUp
	case "s", "down", "j": // vim-style j for down
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "b", "esc":
		return MenuActionBack
	}
	return MenuActionNone
}
