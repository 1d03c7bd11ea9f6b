package netplay

import "github.com/vovakirdan/brawl-core/internal/core"

// inputBuffer is the rollback bookkeeping of one client. Frames are game
// frames; local input sent while stepping to frame f belongs to f+delay on
// both peers.
type inputBuffer struct {
	local       int // controller slot of the local player, 0 for the host
	delay       int
	maxLead     int
	maxRollback int

	frame     int // latest frame the game stepped to
	locals    map[int]core.ControllerInput
	remotes   map[int]core.ControllerInput
	confirmed int // every remote frame up to here has arrived

	served   map[int]core.ControllerInput // remote input each frame was simulated with
	mismatch int                          // earliest mispredicted frame, 0 for none
}

func newInputBuffer(local, delay, maxLead, maxRollback int) *inputBuffer {
	return &inputBuffer{
		local:       local,
		delay:       delay,
		maxLead:     maxLead,
		maxRollback: maxRollback,
		locals:      make(map[int]core.ControllerInput),
		remotes:     make(map[int]core.ControllerInput),
		confirmed:   delay, // nobody sends input for the first delay frames
		served:      make(map[int]core.ControllerInput),
	}
}

// sendLocal records the local input given while stepping to frame and
// returns the frame it applies to.
func (b *inputBuffer) sendLocal(frame int, in core.ControllerInput) int {
	b.frame = frame
	target := frame + b.delay
	b.locals[target] = in
	b.prune()
	return target
}

// addRemote stores a confirmed remote input and flags a rollback when the
// frame was already simulated with a different prediction.
func (b *inputBuffer) addRemote(frame int, in core.ControllerInput) {
	if frame <= b.delay {
		return
	}
	if _, ok := b.remotes[frame]; ok {
		return
	}
	b.remotes[frame] = in
	for {
		if _, ok := b.remotes[b.confirmed+1]; !ok {
			break
		}
		b.confirmed++
	}
	if served, ok := b.served[frame]; ok && served != in {
		if b.mismatch == 0 || frame < b.mismatch {
			b.mismatch = frame
		}
	}
}

// remote returns the confirmed remote input of frame, or repeats the last
// confirmed input.
func (b *inputBuffer) remote(frame int) core.ControllerInput {
	if in, ok := b.remotes[frame]; ok {
		return in
	}
	if frame <= b.delay {
		return core.ControllerInput{}
	}
	return b.remotes[b.confirmed]
}

// inputs returns both controllers of frame ordered host first.
func (b *inputBuffer) inputs(frame int) []core.ControllerInput {
	remote := b.remote(frame)
	b.served[frame] = remote
	out := make([]core.ControllerInput, 2)
	out[b.local] = b.locals[frame]
	out[1-b.local] = remote
	return out
}

// framesToStep returns how many frames, ending at the current one, must be
// simulated again. 1 means no rollback.
func (b *inputBuffer) framesToStep() int {
	if b.mismatch == 0 {
		return 1
	}
	n := b.frame - b.mismatch + 1
	b.mismatch = 0
	return max(n, 1)
}

// skip reports whether the local side is too far ahead of the remote one.
func (b *inputBuffer) skip() bool {
	return b.frame-b.confirmed >= b.maxLead
}

// prune drops frames that can no longer be rolled back to.
func (b *inputBuffer) prune() {
	floor := min(b.confirmed, b.frame) - b.maxRollback - b.delay - 1
	for _, m := range []map[int]core.ControllerInput{b.locals, b.remotes, b.served} {
		for f := range m {
			if f < floor && f != b.confirmed {
				delete(m, f)
			}
		}
	}
}
