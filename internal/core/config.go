package core

// RuntimeConfig contains the settings a match is started with.
// The platform layer fills it from the engine config and command line flags.
type RuntimeConfig struct {
	ScreenW          int    // Screen width in characters
	ScreenH          int    // Screen height in characters
	TickRate         int    // Simulation ticks per second (default 60)
	Seed             uint64 // Init seed for deterministic simulation
	MaxHistoryFrames int    // Snapshots kept for rewind, 0 keeps everything
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:          120,
		ScreenH:          36,
		TickRate:         60,
		Seed:             0, // 0 means pick a seed in the platform layer
		MaxHistoryFrames: 0,
	}
}
