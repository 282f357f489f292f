package game

import (
	"github.com/lawnchairsociety/nightmareinsilver/internal/config"
	"github.com/lawnchairsociety/nightmareinsilver/internal/progress"
)

// Rules are the tunables of a run.
type Rules struct {
	EnemyTurnSeconds  float64
	EnemyMoveFraction float64
	EnemyMoveChance   float64
	MoveSeconds       float64
	FinalDepth        int
	UsesPerLevel      int

	// LowConnection[i] is the wrong-move chance with i range levels left.
	LowConnection []float64
}

// DefaultRules mirrors the default configuration.
func DefaultRules() Rules {
	return NewRules(config.DefaultConfig())
}

// NewRules extracts the rules from a loaded configuration.
func NewRules(cfg *config.Config) Rules {
	return Rules{
		EnemyTurnSeconds:  cfg.Turn.EnemyTurnSeconds,
		EnemyMoveFraction: cfg.Turn.EnemyMoveFraction,
		EnemyMoveChance:   cfg.Turn.EnemyMoveChance,
		MoveSeconds:       cfg.Turn.MoveSeconds,
		FinalDepth:        cfg.Game.FinalDepth,
		UsesPerLevel:      cfg.Game.UsesPerLevel,
		LowConnection:     append([]float64(nil), cfg.Game.LowConnection...),
	}
}

// WrongMoveChance is the probability that a move at depth is replaced by a
// random direction. Being at or past the range limit uses the first entry.
func (r Rules) WrongMoveChance(depth, rangeLevel int) float64 {
	remaining := progress.MaxRange(rangeLevel) - depth
	if remaining < 0 {
		remaining = 0
	}
	if remaining >= len(r.LowConnection) {
		return 0
	}
	return r.LowConnection[remaining]
}
