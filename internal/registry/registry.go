// Package registry holds the playable drop-merge variants.
// Variants register themselves from init(), so platforms can list and create
// them by id without importing game packages directly.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/drop-merge/internal/core"
)

// Game is the tick-driven interface every variant implements.
// Games contain pure logic with no Bubble Tea dependency; the platform handles
// input mapping, timing and drawing.
type Game interface {
	// ID returns the variant id, used for CLI commands and storage keys.
	ID() string

	// Title returns a human-readable name.
	Title() string

	// Reset starts a new game for the given screen and seed.
	Reset(cfg core.RuntimeConfig)

	// Step advances the game by one tick.
	Step(in core.InputFrame) core.StepResult

	// Render draws the current state into a pre-cleared screen.
	Render(dst *core.Screen)

	// State returns score, high score and phase flags.
	State() core.GameState
}

// Resumable is implemented by games whose state can be saved between runs.
type Resumable interface {
	// MarshalState encodes the current session.
	MarshalState() ([]byte, error)
	// RestoreState replaces the current session with a saved one and applies
	// the persisted high score. A decode error leaves the game unchanged.
	RestoreState(data []byte, highScore int) error
}

// GameInfo describes a registered variant.
type GameInfo struct {
	ID    string
	Title string
}

// Factory creates a new instance of a variant.
type Factory func() Game

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a variant factory.
// Panics if the id is already taken.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: variant %q already registered", id))
	}

	factories[id] = f
	titles[id] = f().Title()
}

// List returns all registered variants sorted by id.
func List() []GameInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]GameInfo, 0, len(factories))
	for id := range factories {
		result = append(result, GameInfo{ID: id, Title: titles[id]})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}

// Create instantiates a variant by id.
func Create(id string) (Game, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[id]
	if !ok {
		return nil, fmt.Errorf("registry: unknown variant %q", id)
	}
	return f(), nil
}

// Exists reports whether a variant id is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
