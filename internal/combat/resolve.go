package combat

import (
	"math"
	"strconv"

	"github.com/lawnchairsociety/nightmareinsilver/internal/enemy"
	"github.com/lawnchairsociety/nightmareinsilver/internal/logger"
	"github.com/lawnchairsociety/nightmareinsilver/internal/progress"
	"github.com/lawnchairsociety/nightmareinsilver/internal/rng"
)

// ResistedLabel is shown instead of a number when a hit did nothing.
const ResistedLabel = "X"

// Result describes everything one damage event changed.
type Result struct {
	Target  int // Enemy ID
	Matchup Matchup

	Dealt   float64 // Damage applied to the enemy
	Drained int     // Battery taken from the attacker by a resisted hit
	Label   string  // Floating number text, empty for pickups and the artifact

	Killed   bool   // The enemy is gone and must be removed from the level
	Reward   int    // Money granted
	DeathCue string // Sound key, empty when none

	Collected bool // A pickup was taken
	Restored  int  // Battery restored by a battery pickup
	Won       bool // The artifact was touched
}

// Resolver applies damage events. It holds the stat table and the random
// source used for rewards and death sounds.
type Resolver struct {
	table *enemy.Table
	rng   rng.Source
}

// NewResolver creates a resolver. A nil table uses the built-in one.
func NewResolver(table *enemy.Table, src rng.Source) *Resolver {
	if table == nil {
		table = enemy.DefaultTable()
	}
	return &Resolver{table: table, rng: src}
}

// Resolve applies one player hit to e, mutating both e and save. A target that
// is already dead resolves to an empty Result so death runs only once.
func (r *Resolver) Resolve(e *enemy.Enemy, save *progress.SaveData) Result {
	res := Result{Target: e.ID}
	stats := r.table.StatsFor(e.Type)

	switch {
	case e.Type == enemy.EndGameArtifact:
		res.Won = true
		res.Killed = true
		e.Health = 0
		logger.Info("artifact reached", "kills", save.EnemiesKilled, "deaths", save.Deaths)
		return res

	case e.Type == enemy.Money:
		res.Collected, res.Killed = true, true
		res.Reward = stats.Reward.Roll(r.rng)
		save.Money += res.Reward
		return res

	case e.Type == enemy.Battery:
		res.Collected, res.Killed = true, true
		res.Restored = save.RestoreBattery(save.MaxBattery() / 4)
		return res

	case e.Health <= 0:
		return res
	}

	selected := save.AttackSelected
	hasUses := save.SpendUse(selected)
	dmg, drain, m := Damage(selected, e.Element, save.Attack(), hasUses)
	res.Matchup = m

	if drain > 0 {
		res.Drained = save.DrainBattery(int(math.Ceil(drain)))
	}

	e.Health, res.Dealt = Clamp(e.Health, dmg)
	res.Label = Label(res.Dealt)

	if e.Health <= 0 {
		res.Killed = true
		res.Reward = stats.Reward.Roll(r.rng)
		res.DeathCue = stats.DeathCue(r.rng)
		save.Money += res.Reward
		save.EnemiesKilled++
		logger.Debug("enemy killed", "type", e.Type.String(), "reward", res.Reward)
	}

	return res
}

// Contact applies an enemy bumping into the player and returns the battery
// removed.
func (r *Resolver) Contact(e *enemy.Enemy, save *progress.SaveData) int {
	if e.Type.IsPickup() || e.Type == enemy.EndGameArtifact {
		return 0
	}
	return save.DrainBattery(r.table.StatsFor(e.Type).Contact)
}

// Label formats dealt damage for the floating number.
func Label(dealt float64) string {
	if dealt <= 0 {
		return ResistedLabel
	}
	return strconv.FormatFloat(dealt, 'f', -1, 64)
}
