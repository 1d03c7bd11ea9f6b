package game

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/brawl-core/internal/content"
	"github.com/vovakirdan/brawl-core/internal/sim"
)

// ErrFrameUnavailable is returned when a frame is neither in history nor
// reachable from recorded input.
var ErrFrameUnavailable = errors.New("frame unavailable")

// Snapshot is the state of the match at the end of one frame.
// The arena is produced fresh by every Step and never modified afterwards,
// so snapshots and the live state share it without copying.
type Snapshot struct {
	Frame    int
	Entities *sim.Entities
	Stage    *content.Stage
}

func (g *Game) snapshot() Snapshot {
	return Snapshot{Frame: g.frame, Entities: g.entities, Stage: g.stage}
}

func (g *Game) restore(s Snapshot) {
	g.frame = s.Frame
	g.entities = s.Entities
	g.stage = s.Stage
	g.sim.Stage = s.Stage
}

// snapshotAt returns the buffered snapshot of frame.
func (g *Game) snapshotAt(frame int) (Snapshot, bool) {
	i := frame - g.deleted
	if i < 0 || i >= len(g.history) {
		return Snapshot{}, false
	}
	return g.history[i], true
}

// truncateHistory drops every snapshot after frame. When frame itself is
// older than the buffer the buffer restarts after it.
func (g *Game) truncateHistory(frame int) {
	keep := frame - g.deleted + 1
	switch {
	case keep <= 0:
		clear(g.history)
		g.history = g.history[:0]
		g.deleted = frame + 1
	case keep < len(g.history):
		clear(g.history[keep:])
		g.history = g.history[:keep]
	}
}

// record stores the current frame, replacing any stale future, and prunes
// the oldest snapshots beyond the cap.
func (g *Game) record() {
	g.truncateHistory(g.frame - 1)
	g.history = append(g.history, g.snapshot())

	if g.maxHistory > 0 && len(g.history) > g.maxHistory {
		extra := len(g.history) - g.maxHistory
		n := copy(g.history, g.history[extra:])
		clear(g.history[n:])
		g.history = g.history[:n]
		g.deleted += extra
	}
}

// stepFrame simulates the next frame from recorded input and records it.
func (g *Game) stepFrame() {
	frame := g.frame + 1
	g.entities = g.sim.Step(g.entities, frame, g.playerInputs(frame))
	g.frame = frame
	g.record()
}

// JumpFrame moves the match to frame. Buffered frames are restored directly;
// anything else is re-simulated from the nearest earlier snapshot using the
// recorded input. Frames re-simulated past the end of history are recorded.
func (g *Game) JumpFrame(frame int) error {
	if snap, ok := g.snapshotAt(frame); ok {
		g.restore(snap)
		return nil
	}
	if frame < 0 || frame >= len(g.inputs) {
		return fmt.Errorf("game: jump to %d: %w", frame, ErrFrameUnavailable)
	}

	if last, ok := g.snapshotAt(g.deleted + len(g.history) - 1); ok && last.Frame < frame {
		g.restore(last)
		for g.frame < frame {
			g.stepFrame()
		}
		return nil
	}

	// Older than the buffer: replay from the start without touching history.
	g.restore(g.start)
	for g.frame < frame {
		f := g.frame + 1
		g.entities = g.sim.Step(g.entities, f, g.playerInputs(f))
		g.frame = f
	}
	return nil
}

// OldestFrame returns the oldest frame still buffered in history.
func (g *Game) OldestFrame() int {
	return g.deleted
}

// HistoryLen returns the number of buffered snapshots.
func (g *Game) HistoryLen() int {
	return len(g.history)
}
