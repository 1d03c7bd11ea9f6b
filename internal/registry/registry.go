// Package registry provides a global registry for bot controllers.
// Bots register themselves in init() functions, allowing the platform
// to discover and instantiate them without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/brawl-core/internal/config"
	"github.com/vovakirdan/brawl-core/internal/core"
)

// Bot drives one player by producing controller input each frame.
// Bots see the match only through a View and never touch the simulation.
type Bot interface {
	// ID returns a unique identifier for this bot (e.g., "chaser").
	// Used for CLI flags and stored in replays.
	ID() string

	// Title returns a human-readable name for display.
	Title() string

	// Reset prepares the bot to drive a player. The same seed and views
	// always produce the same inputs.
	Reset(player int, seed uint64)

	// Input returns the controller state for the frame after view.
	Input(view View) core.ControllerInput
}

// BotInfo contains metadata about a registered bot.
type BotInfo struct {
	ID    string
	Title string
}

// Factory is a function that creates a new bot tuned by cfg.
type Factory func(cfg config.BotConfig) Bot

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a bot factory to the registry.
// Typically called from a bot's init() function.
// Panics if a bot with the same ID is already registered.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: bot %q already registered", id))
	}

	factories[id] = f

	// Get title by creating a temporary instance
	titles[id] = f(config.DefaultBots()).Title()
}

// List returns information about all registered bots, sorted by ID.
func List() []BotInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]BotInfo, 0, len(factories))
	for id := range factories {
		result = append(result, BotInfo{
			ID:    id,
			Title: titles[id],
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create instantiates a new bot by its ID.
// Returns an error if the bot ID is not registered.
func Create(id string, cfg config.BotConfig) (Bot, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[id]
	if !ok {
		return nil, fmt.Errorf("registry: unknown bot %q", id)
	}

	return f(cfg), nil
}

// Exists checks if a bot with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
