package bot

import (
	"math/rand"
)

// Level selects a bot strategy tier.
type Level string

const (
	// LevelGood plays straightforward, rule-of-thumb tarneeb.
	LevelGood Level = "good"
	// LevelSmart additionally tracks the trick state and saves its high
	// cards when the partner already holds the trick.
	LevelSmart Level = "smart"
)

// NewAgent creates an agent with the strategy for the requested level.
// Unknown levels fall back to LevelGood.
func NewAgent(id, name string, level Level, rng *rand.Rand) *Agent {
	var strategy Brain
	switch level {
	case LevelSmart:
		strategy = NewSmartStrategy(rng)
	default:
		level = LevelGood
		strategy = NewGoodStrategy(rng)
	}
	return &Agent{
		ID:       id,
		Name:     name,
		Level:    level,
		Strategy: strategy,
	}
}
