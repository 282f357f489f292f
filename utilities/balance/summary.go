package balance

import "github.com/lawnchairsociety/nightmareinsilver/internal/rng"

// FloorSummary aggregates many runs of one level.
type FloorSummary struct {
	Depth          int
	Simulations    int
	SurvivalRate   float64 // Percent
	AvgKills       float64
	AvgMoney       float64
	AvgHits        float64
	AvgResisted    float64
	AvgBatteryLeft float64 // Over surviving runs
	AvgBatteryLost float64
}

// RunFloorSim runs SimulateFloor iterations times.
func RunFloorSim(cfg FloorConfig, iterations int, src rng.Source) FloorSummary {
	s := FloorSummary{Depth: cfg.Depth, Simulations: iterations}
	if iterations <= 0 {
		return s
	}
	survived := 0
	for i := 0; i < iterations; i++ {
		r := SimulateFloor(cfg, src)
		if r.Survived {
			survived++
			s.AvgBatteryLeft += float64(r.Save.Battery)
		}
		s.AvgKills += float64(r.Kills)
		s.AvgMoney += float64(r.Money)
		s.AvgHits += float64(r.Hits)
		s.AvgResisted += float64(r.Resisted)
		s.AvgBatteryLost += float64(r.Drained + r.Bumped)
	}
	n := float64(iterations)
	s.SurvivalRate = 100 * float64(survived) / n
	s.AvgKills /= n
	s.AvgMoney /= n
	s.AvgHits /= n
	s.AvgResisted /= n
	s.AvgBatteryLost /= n
	if survived > 0 {
		s.AvgBatteryLeft /= float64(survived)
	}
	return s
}

// RunSummary aggregates many full runs.
type RunSummary struct {
	Simulations int
	WinRate     float64 // Percent
	AvgDepth    float64
	AvgKills    float64
	AvgMoney    float64
	EndedAt     []int // Runs that ended on each depth, index by depth
}

// RunRunSim runs SimulateRun iterations times.
func RunRunSim(cfg RunConfig, iterations int, src rng.Source) RunSummary {
	s := RunSummary{Simulations: iterations, EndedAt: make([]int, cfg.FinalDepth+1)}
	if iterations <= 0 {
		return s
	}
	wins := 0
	for i := 0; i < iterations; i++ {
		r := SimulateRun(cfg, src)
		if r.Won {
			wins++
		}
		s.EndedAt[r.Depth]++
		s.AvgDepth += float64(r.Depth)
		s.AvgKills += float64(r.Kills)
		s.AvgMoney += float64(r.Money)
	}
	n := float64(iterations)
	s.WinRate = 100 * float64(wins) / n
	s.AvgDepth /= n
	s.AvgKills /= n
	s.AvgMoney /= n
	return s
}
