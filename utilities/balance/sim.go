package balance

import (
	"github.com/lawnchairsociety/nightmareinsilver/internal/combat"
	"github.com/lawnchairsociety/nightmareinsilver/internal/dungeon"
	"github.com/lawnchairsociety/nightmareinsilver/internal/enemy"
	"github.com/lawnchairsociety/nightmareinsilver/internal/progress"
	"github.com/lawnchairsociety/nightmareinsilver/internal/rng"
)

// maxHitsPerEnemy stops a fight that cannot end.
const maxHitsPerEnemy = 1000

// FloorConfig describes one simulated level.
type FloorConfig struct {
	Depth      int
	FinalDepth int
	Enemies    int // Spawns met on the level, pickups included

	Save     progress.SaveData // Loadout on arrival
	Strategy Strategy

	// ContactChance is the probability that a surviving enemy bumps the
	// player after each hit.
	ContactChance float64

	Table *enemy.Table // nil uses the built-in table
}

// FloorResult is one simulated level.
type FloorResult struct {
	Survived bool
	Kills    int
	Money    int
	Hits     int
	Resisted int
	Drained  int // Battery lost to resisted hits
	Contacts int
	Bumped   int // Battery lost to contact
	Restored int
	Save     progress.SaveData // State on leaving or dying
}

// EnemiesPerLevel estimates the spawns on a level: the average room count
// times the spawn markers per room.
func EnemiesPerLevel(p dungeon.Params) int {
	return (p.RoomCountMin + p.RoomCountMax) / 2 * p.SpawnsPerRoom()
}

// SimulateFloor fights through one level.
func SimulateFloor(cfg FloorConfig, src rng.Source) FloorResult {
	save := cfg.Save
	save.Level = cfg.Depth
	preferred := save.AttackSelected

	factory := enemy.NewFactory(cfg.Table, cfg.FinalDepth, src)
	resolver := combat.NewResolver(factory.Table(), src)

	var res FloorResult
	for i := 0; i < cfg.Enemies; i++ {
		e := factory.Spawn(cfg.Depth, nil)
		if e.Type.IsPickup() {
			r := resolver.Resolve(&e, &save)
			res.Money += r.Reward
			res.Restored += r.Restored
			continue
		}

		save.AttackSelected = cfg.Strategy.Choose(e.Element, preferred, &save)
		for hits := 0; e.Health > 0 && hits < maxHitsPerEnemy; hits++ {
			r := resolver.Resolve(&e, &save)
			res.Hits++
			res.Drained += r.Drained
			if r.Matchup == combat.Resisted {
				res.Resisted++
			}
			if r.Killed {
				res.Kills++
				res.Money += r.Reward
			}
			if e.Health > 0 && rng.Chance(src, cfg.ContactChance) {
				res.Contacts++
				res.Bumped += resolver.Contact(&e, &save)
			}
			if save.BatteryEmpty() {
				res.Save = save
				return res
			}
			// A spent charge can leave the choice without uses.
			if save.Uses(save.AttackSelected) <= 0 {
				save.AttackSelected = cfg.Strategy.Choose(e.Element, preferred, &save)
			}
		}
	}
	res.Survived = true
	res.Save = save
	return res
}

// RunConfig describes a full simulated run from level 0.
type RunConfig struct {
	FinalDepth    int
	Enemies       func(depth int) int
	Save          progress.SaveData // Shop loadout; Restart is applied
	UsesPerLevel  int
	Strategy      Strategy
	ContactChance float64
	Table         *enemy.Table
}

// RunResult is one simulated run.
type RunResult struct {
	Won   bool
	Depth int // Level the run ended on
	Kills int
	Money int // Money earned during the run
}

// SimulateRun plays levels until the battery dies or the final level is
// cleared. Battery carries over between levels.
func SimulateRun(cfg RunConfig, src rng.Source) RunResult {
	save := cfg.Save
	save.Restart(cfg.UsesPerLevel)

	var res RunResult
	for depth := 0; depth <= cfg.FinalDepth; depth++ {
		floor := SimulateFloor(FloorConfig{
			Depth:         depth,
			FinalDepth:    cfg.FinalDepth,
			Enemies:       cfg.Enemies(depth),
			Save:          save,
			Strategy:      cfg.Strategy,
			ContactChance: cfg.ContactChance,
			Table:         cfg.Table,
		}, src)
		save = floor.Save
		res.Depth = depth
		res.Kills += floor.Kills
		res.Money += floor.Money
		if !floor.Survived {
			return res
		}
	}
	res.Won = true
	return res
}
