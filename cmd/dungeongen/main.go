package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/lawnchairsociety/nightmareinsilver/internal/config"
)

func main() {
	configFile := flag.String("config", "data/nightmare.yaml", "Path to game config YAML file (generation section)")
	levels := flag.String("levels", "", "Depth range to generate (e.g., 0-9 or 4)")
	seed := flag.Int64("seed", 42, "Base seed for generation")
	outDir := flag.String("out", "data/levels", "Output directory")
	flag.Parse()

	if *levels == "" {
		fmt.Fprintln(os.Stderr, "Error: --levels is required (e.g., --levels=0-9 or --levels=4)")
		flag.Usage()
		os.Exit(1)
	}

	start, end, err := parseLevelRange(*levels)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid level range: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	gen := NewLevelGenerator(cfg, *seed, *outDir)
	fmt.Printf("Generating levels %d-%d (seed: %d, final depth: %d)\n", start, end, *seed, cfg.Game.FinalDepth)
	fmt.Printf("Output directory: %s\n\n", *outDir)

	var disconnected int
	for depth := start; depth <= end; depth++ {
		fmt.Printf("Generating level %d... ", depth)
		report, err := gen.GenerateLevel(depth)
		if err != nil {
			fmt.Printf("FAILED: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("OK (%d rooms, %d/%d walkable tiles reachable)\n",
			report.Rooms, report.Reachable, report.Walkable)
		if report.Reachable < report.Walkable {
			disconnected++
		}
	}

	fmt.Printf("\nSuccessfully generated %d level(s), %d partly disconnected\n", end-start+1, disconnected)
}

// parseLevelRange parses a depth range string like "0-9" or "4".
func parseLevelRange(s string) (start, end int, err error) {
	if strings.Contains(s, "-") {
		parts := strings.Split(s, "-")
		if len(parts) != 2 {
			return 0, 0, fmt.Errorf("invalid range format, expected 'start-end'")
		}
		start, err = strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return 0, 0, fmt.Errorf("invalid start level: %w", err)
		}
		end, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return 0, 0, fmt.Errorf("invalid end level: %w", err)
		}
	} else {
		start, err = strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, 0, fmt.Errorf("invalid level number: %w", err)
		}
		end = start
	}

	if start < 0 {
		return 0, 0, fmt.Errorf("level numbers must be >= 0")
	}
	if end < start {
		return 0, 0, fmt.Errorf("end level must be >= start level")
	}

	return start, end, nil
}
