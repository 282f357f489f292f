// balance is a Monte Carlo simulator for testing game balance.
//
// Usage:
//
//	balance [command] [options]
//
// Commands:
//
//	floor  - Simulate one level with a given loadout
//	run    - Simulate whole runs from level 0
//	sweep  - Compare strategies across every depth
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/lawnchairsociety/nightmareinsilver/internal/config"
	"github.com/lawnchairsociety/nightmareinsilver/internal/enemy"
	"github.com/lawnchairsociety/nightmareinsilver/internal/progress"
	"github.com/lawnchairsociety/nightmareinsilver/internal/rng"
	"github.com/lawnchairsociety/nightmareinsilver/utilities/balance"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "floor":
		runFloorSim()
	case "run":
		runRunSim()
	case "sweep":
		runSweep()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Nightmare in Silver Balance Simulator

A Monte Carlo simulator for testing game balance.

Usage: balance <command> [options]

Commands:
  floor   Simulate one level with a given loadout
  run     Simulate whole runs from level 0
  sweep   Compare strategies across every depth

Examples:
  balance floor -depth=5 -battery-level=1 -water=2 -strategy=counter
  balance run -attack-level=2 -iterations=20000
  balance sweep -config=data/nightmare.yaml`)
}

// loadout holds the flags shared by every command.
type loadout struct {
	configFile *string
	tableFile  *string
	battery    *int
	attack     *int
	fire       *int
	water      *int
	grass      *int
	selected   *string
	strategy   *string
	contact    *float64
	iterations *int
	seed       *int64
}

func addLoadoutFlags(fs *flag.FlagSet) *loadout {
	return &loadout{
		configFile: fs.String("config", "data/nightmare.yaml", "Path to game config YAML file"),
		tableFile:  fs.String("table", "", "Enemy table YAML (overrides the config)"),
		battery:    fs.Int("battery-level", 0, "Battery upgrade level"),
		attack:     fs.Int("attack-level", 0, "Attack upgrade level"),
		fire:       fs.Int("fire", 0, "Fire upgrade level"),
		water:      fs.Int("water", 0, "Water upgrade level"),
		grass:      fs.Int("grass", 0, "Grass upgrade level"),
		selected:   fs.String("selected", "basic", "Starting attack element"),
		strategy:   fs.String("strategy", "counter", "Attack strategy: basic, counter or fixed"),
		contact:    fs.Float64("contact", 0.5, "Chance a surviving enemy bumps the player after each hit"),
		iterations: fs.Int("iterations", 10000, "Number of simulations to run"),
		seed:       fs.Int64("seed", 0, "Random seed, 0 for the clock"),
	}
}

// resolve loads the config and table and builds the starting save.
func (l *loadout) resolve() (*config.Config, *enemy.Table, progress.SaveData, balance.Strategy) {
	cfg, err := config.LoadConfig(*l.configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var table *enemy.Table
	path := *l.tableFile
	if path == "" {
		path = cfg.Generation.EnemyTable
	}
	if path != "" {
		if table, err = enemy.LoadTable(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	strategy, err := balance.ParseStrategy(*l.strategy)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	selected, err := enemy.ParseElement(*l.selected)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	save := progress.NewSaveData()
	save.BatteryLevel, save.AttackLevel = *l.battery, *l.attack
	save.Fire, save.Water, save.Grass = *l.fire, *l.water, *l.grass
	save.AttackSelected = selected
	save.Restart(cfg.Game.UsesPerLevel)
	return cfg, table, save, strategy
}

func (l *loadout) describe(save progress.SaveData, strategy balance.Strategy) {
	fmt.Printf("Loadout: battery %d (max %d), attack %d (%.1f/hit), fire %d, water %d, grass %d\n",
		save.BatteryLevel, save.MaxBattery(), save.AttackLevel, save.Attack(), save.Fire, save.Water, save.Grass)
	fmt.Printf("Strategy: %s, starting attack %s, contact chance %.2f\n", strategy, save.AttackSelected, *l.contact)
	fmt.Printf("Iterations: %d\n\n", *l.iterations)
}

func enemiesFor(cfg *config.Config) func(int) int {
	return func(depth int) int {
		return balance.EnemiesPerLevel(cfg.Generation.Params(depth, cfg.Game.FinalDepth))
	}
}

func runFloorSim() {
	fs := flag.NewFlagSet("floor", flag.ExitOnError)
	l := addLoadoutFlags(fs)
	depth := fs.Int("depth", 0, "Level to simulate")
	enemies := fs.Int("enemies", 0, "Spawns on the level, 0 estimates from the generation config")
	fs.Parse(os.Args[2:])

	cfg, table, save, strategy := l.resolve()
	n := *enemies
	if n <= 0 {
		n = enemiesFor(cfg)(*depth)
	}

	fmt.Println("=== Floor Simulation ===")
	fmt.Println()
	l.describe(save, strategy)
	fmt.Printf("Level %d with %d spawns\n\n", *depth, n)

	s := balance.RunFloorSim(balance.FloorConfig{
		Depth:         *depth,
		FinalDepth:    cfg.Game.FinalDepth,
		Enemies:       n,
		Save:          save,
		Strategy:      strategy,
		ContactChance: *l.contact,
		Table:         table,
	}, *l.iterations, rng.New(*l.seed))
	printFloorSummary(s)
	assessBalance(fmt.Sprintf("Level %d", *depth), s.SurvivalRate)
}

func runRunSim() {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	l := addLoadoutFlags(fs)
	fs.Parse(os.Args[2:])

	cfg, table, save, strategy := l.resolve()

	fmt.Println("=== Run Simulation ===")
	fmt.Println()
	l.describe(save, strategy)

	s := balance.RunRunSim(balance.RunConfig{
		FinalDepth:    cfg.Game.FinalDepth,
		Enemies:       enemiesFor(cfg),
		Save:          save,
		UsesPerLevel:  cfg.Game.UsesPerLevel,
		Strategy:      strategy,
		ContactChance: *l.contact,
		Table:         table,
	}, *l.iterations, rng.New(*l.seed))

	fmt.Printf("Results (%d simulations):\n", s.Simulations)
	fmt.Printf("  Win Rate:   %.1f%%\n", s.WinRate)
	fmt.Printf("  Avg Depth:  %.2f\n", s.AvgDepth)
	fmt.Printf("  Avg Kills:  %.1f\n", s.AvgKills)
	fmt.Printf("  Avg Money:  %.1f\n", s.AvgMoney)
	fmt.Println()
	fmt.Println("Depth | Runs ended")
	fmt.Println("------+-----------")
	for depth, n := range s.EndedAt {
		bar := strings.Repeat("#", int(60*float64(n)/float64(max(s.Simulations, 1))))
		fmt.Printf("%5d | %6d %s\n", depth, n, bar)
	}
	assessBalance("Full run", s.WinRate)
}

func runSweep() {
	fs := flag.NewFlagSet("sweep", flag.ExitOnError)
	l := addLoadoutFlags(fs)
	fs.Parse(os.Args[2:])

	cfg, table, save, _ := l.resolve()
	src := rng.New(*l.seed)
	enemies := enemiesFor(cfg)

	fmt.Println("=== Strategy Sweep ===")
	fmt.Println()
	fmt.Printf("Loadout: battery %d, attack %d, fire %d, water %d, grass %d, %d iterations per cell\n\n",
		save.BatteryLevel, save.AttackLevel, save.Fire, save.Water, save.Grass, *l.iterations)

	fmt.Print("Depth | Spawns")
	for _, st := range balance.AllStrategies() {
		fmt.Printf(" | %-16s", st.String()+" survive/left")
	}
	fmt.Println()
	for depth := 0; depth <= cfg.Game.FinalDepth; depth++ {
		fmt.Printf("%5d | %6d", depth, enemies(depth))
		for _, st := range balance.AllStrategies() {
			s := balance.RunFloorSim(balance.FloorConfig{
				Depth:         depth,
				FinalDepth:    cfg.Game.FinalDepth,
				Enemies:       enemies(depth),
				Save:          save,
				Strategy:      st,
				ContactChance: *l.contact,
				Table:         table,
			}, *l.iterations, src)
			fmt.Printf(" | %6.1f%% %7.1f", s.SurvivalRate, s.AvgBatteryLeft)
		}
		fmt.Println()
	}
	fmt.Println()
	fmt.Println("Target survival with a fresh battery:")
	fmt.Println("  - Levels 0-2: above 85%")
	fmt.Println("  - Deep levels without upgrades: below 50%")
}

func printFloorSummary(s balance.FloorSummary) {
	fmt.Printf("Results (%d simulations):\n", s.Simulations)
	fmt.Printf("  Survival:      %.1f%%\n", s.SurvivalRate)
	fmt.Printf("  Avg Kills:     %.1f\n", s.AvgKills)
	fmt.Printf("  Avg Money:     %.1f\n", s.AvgMoney)
	fmt.Printf("  Avg Hits:      %.1f (%.1f resisted)\n", s.AvgHits, s.AvgResisted)
	fmt.Printf("  Battery Lost:  %.1f\n", s.AvgBatteryLost)
	fmt.Printf("  Battery Left:  %.1f (when surviving)\n", s.AvgBatteryLeft)
}

func assessBalance(context string, rate float64) {
	var assessment string
	switch {
	case rate < 30:
		assessment = "TOO HARD"
	case rate < 50:
		assessment = "CHALLENGING"
	case rate < 70:
		assessment = "BALANCED"
	case rate < 85:
		assessment = "EASY"
	default:
		assessment = "TOO EASY"
	}

	color := ""
	reset := ""
	if isTerminal() {
		switch assessment {
		case "TOO HARD", "TOO EASY":
			color = "\033[31m" // Red
		case "CHALLENGING", "EASY":
			color = "\033[33m" // Yellow
		case "BALANCED":
			color = "\033[32m" // Green
		}
		reset = "\033[0m"
	}

	fmt.Printf("\n%s: %s%s%s\n", context, color, assessment, reset)
}

func isTerminal() bool {
	return os.Getenv("TERM") != "" && !strings.Contains(os.Getenv("TERM"), "dumb")
}
