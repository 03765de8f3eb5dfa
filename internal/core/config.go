package core

// RuntimeConfig is passed to games when they start.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Ticks per second; pacing delays are converted to ticks
	Seed     int64 // Seed for the next-value generator, 0 means time-based
}

// DefaultConfig returns a RuntimeConfig for an 80x24 terminal at 30 ticks per second.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 30,
	}
}

// GameState is the status a game reports to the platform.
type GameState struct {
	Score     int
	HighScore int
	GameOver  bool
	Paused    bool
}

// StepResult is returned by Game.Step after each tick.
type StepResult struct {
	State GameState
	// Settled is true on the tick a turn finished resolving, or after undo and
	// restart. Hosts persist the game when it is set.
	Settled bool
}
