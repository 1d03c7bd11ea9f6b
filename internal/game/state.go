package game

// State is the top-level mode of a match.
type State int

const (
	StatePaused State = iota
	StateLocal
	StateNetplay
	StateReplayForwardsFromHistory
	StateReplayForwardsFromInput
	StateReplayBackwards
	StateQuit

	// Single frame steps, run from the paused state.
	StateStepThenPause
	StateStepForwardThenPause
	StateStepBackwardThenPause
)

var stateNames = map[State]string{
	StatePaused:                    "paused",
	StateLocal:                     "local",
	StateNetplay:                   "netplay",
	StateReplayForwardsFromHistory: "replay-forwards-history",
	StateReplayForwardsFromInput:   "replay-forwards-input",
	StateReplayBackwards:           "replay-backwards",
	StateQuit:                      "quit",
	StateStepThenPause:             "step-then-pause",
	StateStepForwardThenPause:      "step-forward-then-pause",
	StateStepBackwardThenPause:     "step-backward-then-pause",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// QuitReason tells why a match left play.
type QuitReason int

const (
	QuitNone QuitReason = iota
	QuitUser
	QuitResults
	QuitDisconnected
)

func (r QuitReason) String() string {
	switch r {
	case QuitUser:
		return "user"
	case QuitResults:
		return "results"
	case QuitDisconnected:
		return "disconnected"
	}
	return "none"
}

// Quit describes the end of a match. Results is set for QuitResults and
// Message for QuitDisconnected.
type Quit struct {
	Reason  QuitReason
	Message string
	Results *Results
}
