package game

import (
	"github.com/vovakirdan/brawl-core/internal/core"
)

// NetplayState is the connection state of a netplay session.
type NetplayState int

const (
	NetplayOffline NetplayState = iota
	NetplayConnecting
	NetplayRunning
	NetplayDisconnected
)

func (s NetplayState) String() string {
	switch s {
	case NetplayConnecting:
		return "connecting"
	case NetplayRunning:
		return "running"
	case NetplayDisconnected:
		return "disconnected"
	}
	return "offline"
}

// Netplay is the peer connection a networked match runs on. The game never
// does network I/O itself; it only asks the session which frames to simulate
// and with which inputs.
type Netplay interface {
	// State reports the connection state. Err explains a disconnect.
	State() NetplayState
	Err() error

	// Seed is the init seed both peers agreed on.
	Seed() uint64

	// SkipFrame reports that the local peer is too far ahead and should wait.
	SkipFrame() bool

	// FramesToStep is the number of frames the next tick simulates: one new
	// frame plus every already simulated frame whose inputs have changed.
	FramesToStep() int

	// SendInput publishes the local controller for frame.
	SendInput(frame int, input core.ControllerInput)

	// Inputs returns every controller for frame, indexed by controller.
	// Remote controllers that are not confirmed yet are predicted.
	Inputs(frame int) []core.ControllerInput

	// Disconnect closes the session.
	Disconnect()
}

// stepNetplay rolls back to the oldest frame with changed input and
// re-simulates up to the new frame.
func (g *Game) stepNetplay(local []core.ControllerInput) {
	switch g.netplay.State() {
	case NetplayDisconnected:
		msg := "connection lost"
		if err := g.netplay.Err(); err != nil {
			msg = err.Error()
		}
		g.quit(Quit{Reason: QuitDisconnected, Message: msg})
		return
	case NetplayRunning:
	default:
		return
	}
	if g.netplay.SkipFrame() {
		return
	}

	target := g.frame + 1
	var in core.ControllerInput
	if len(local) > 0 {
		in = local[0]
	}
	g.netplay.SendInput(target, in)

	first := target - max(g.netplay.FramesToStep(), 1) + 1
	if oldest := g.deleted + 1; first < oldest {
		g.logger.Warn("rollback past history", "want", first, "oldest", oldest)
		first = oldest
	}
	first = max(first, 1)

	if first <= g.frame {
		snap, _ := g.snapshotAt(first - 1)
		g.restore(snap)
	}
	for f := first; f <= target; f++ {
		g.inputs = append(g.inputs[:f], g.netplay.Inputs(f))
		g.stepFrame()
	}
	if n := target - first; n > 0 {
		g.logger.Debug("rollback", "frames", n, "frame", target)
	}
	g.checkEnd()
}
