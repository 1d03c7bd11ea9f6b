package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestKeyboardHoldsKeys(t *testing.T) {
	k := NewKeyboard(DefaultKeyMap())

	if !k.Press(runeKey('j')) {
		t.Fatal("Press(j) = false, expected a controller key")
	}
	if k.Press(runeKey('z')) {
		t.Error("Press(z) = true, expected an unbound key")
	}

	for tick := range holdTicks {
		if in := k.Controller(); !in.A || !in.PluggedIn {
			t.Fatalf("tick %d: Controller() = %+v, expected A held", tick, in)
		}
		k.Tick()
	}
	if in := k.Controller(); in.A {
		t.Errorf("Controller().A = true after %d ticks, expected release", holdTicks)
	}
}

func TestKeyboardStick(t *testing.T) {
	tests := []struct {
		name   string
		keys   []tea.KeyMsg
		wantX  float64
		wantY  float64
		shield bool
	}{
		{"left", []tea.KeyMsg{{Type: tea.KeyLeft}}, -1, 0, false},
		{"wasd right", []tea.KeyMsg{runeKey('d')}, 1, 0, false},
		{"up is positive", []tea.KeyMsg{runeKey('w')}, 0, 1, false},
		{"opposite cancels", []tea.KeyMsg{runeKey('a'), runeKey('d')}, 1, 0, false},
		{"down then up", []tea.KeyMsg{{Type: tea.KeyDown}, {Type: tea.KeyUp}}, 0, 1, false},
		{"shield pulls trigger", []tea.KeyMsg{runeKey(';')}, 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := NewKeyboard(DefaultKeyMap())
			for _, msg := range tt.keys {
				k.Press(msg)
			}
			in := k.Controller()
			if in.StickX != tt.wantX || in.StickY != tt.wantY {
				t.Errorf("stick = (%v, %v), expected (%v, %v)", in.StickX, in.StickY, tt.wantX, tt.wantY)
			}
			if in.L != tt.shield || (in.LTrigger == 1) != tt.shield {
				t.Errorf("L = %v, LTrigger = %v, expected shield %v", in.L, in.LTrigger, tt.shield)
			}
		})
	}
}

func TestKeyboardStartIsOneTick(t *testing.T) {
	k := NewKeyboard(DefaultKeyMap())
	k.Press(tea.KeyMsg{Type: tea.KeyEnter})
	if !k.Controller().Start {
		t.Fatal("Controller().Start = false, expected a press")
	}
	k.Tick()
	if k.Controller().Start {
		t.Error("Controller().Start = true on the next tick, expected release")
	}

	k.Press(runeKey('k'))
	k.Reset()
	if k.Controller().B {
		t.Error("Controller().B = true after Reset()")
	}
}

func TestMapKeyToMenuAction(t *testing.T) {
	tests := []struct {
		msg  tea.KeyMsg
		want MenuAction
	}{
		{tea.KeyMsg{Type: tea.KeyUp}, MenuActionUp},
		{runeKey('k'), MenuActionUp},
		{runeKey('j'), MenuActionDown},
		{tea.KeyMsg{Type: tea.KeyEnter}, MenuActionSelect},
		{tea.KeyMsg{Type: tea.KeyEsc}, MenuActionBack},
		{runeKey('q'), MenuActionQuit},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, MenuActionQuit},
		{runeKey('x'), MenuActionNone},
	}
	for _, tt := range tests {
		t.Run(tt.msg.String(), func(t *testing.T) {
			if got := MapKeyToMenuAction(tt.msg); got != tt.want {
				t.Errorf("MapKeyToMenuAction(%q) = %v, expected %v", tt.msg.String(), got, tt.want)
			}
		})
	}
}
