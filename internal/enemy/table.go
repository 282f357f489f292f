package enemy

import (
	"errors"
	"fmt"
	"os"

	"github.com/lawnchairsociety/nightmareinsilver/internal/geom"
	"github.com/lawnchairsociety/nightmareinsilver/internal/logger"
	"github.com/lawnchairsociety/nightmareinsilver/internal/rng"
	"gopkg.in/yaml.v3"
)

// ErrInvalidWeights is returned when a weight row is malformed.
var ErrInvalidWeights = errors.New("invalid enemy weights")

// Table holds the depth-indexed spawn weights and per-type stats.
type Table struct {
	// Weights[depth][type] in percent; each row sums to 100. Depths past the
	// last row reuse it.
	Weights [][]int
	Stats   map[Type]Stats
}

// defaultWeights shifts mass toward stronger types with depth. Money is
// available everywhere, batteries only in rows 2..6.
var defaultWeights = [][]int{
	//  chk cat dog y/o hum  $  bat
	{80, 10, 0, 0, 0, 10, 0},
	{60, 25, 5, 0, 0, 10, 0},
	{35, 30, 20, 0, 0, 10, 5},
	{10, 40, 30, 5, 0, 10, 5},
	{0, 25, 40, 20, 0, 10, 5},
	{0, 10, 25, 45, 5, 10, 5},
	{0, 0, 10, 55, 20, 10, 5},
	{0, 0, 0, 60, 30, 10, 0},
	{0, 0, 0, 45, 45, 10, 0},
	{0, 0, 0, 25, 65, 10, 0},
	{0, 0, 0, 10, 80, 10, 0},
	{0, 0, 0, 5, 85, 10, 0},
}

func defaultStats() map[Type]Stats {
	return map[Type]Stats{
		Chicken:         {Health: 1, Contact: 1, Reward: rng.MustParseDice("1d2"), Sprite: geom.Sprite(7, 25), Variants: 2, DeathSound: "chicken", DeathSounds: 2},
		Cat:             {Health: 2, Contact: 2, Reward: rng.MustParseDice("1d3+1"), Sprite: geom.Sprite(7, 29), Variants: 2, DeathSound: "cat", DeathSounds: 3},
		Dog:             {Health: 3, Contact: 3, Reward: rng.MustParseDice("2d3+1"), Sprite: geom.Sprite(7, 31), Variants: 1, DeathSound: "dog", DeathSounds: 3},
		YoungOrOld:      {Health: 4, Contact: 4, Reward: rng.MustParseDice("2d4+2"), Sprite: geom.Sprite(4, 28), Variants: 2, DeathSound: "man", DeathSounds: 2},
		Human:           {Health: 5, Contact: 5, Reward: rng.MustParseDice("3d4+3"), Sprite: geom.Sprite(0, 26), Variants: 6, DeathSound: "man", DeathSounds: 2},
		Money:           {Reward: rng.MustParseDice("2d5"), Sprite: geom.Sprite(4, 41), Variants: 1},
		Battery:         {Sprite: geom.Sprite(8, 40), Variants: 1},
		EndGameArtifact: {Health: 1, Sprite: geom.Sprite(8, 28), Variants: 1},
	}
}

// DefaultTable returns the built-in weights and stats.
func DefaultTable() *Table {
	weights := make([][]int, len(defaultWeights))
	for i, row := range defaultWeights {
		weights[i] = append([]int(nil), row...)
	}
	return &Table{Weights: weights, Stats: defaultStats()}
}

// Row returns the weights for depth, clamped to the table.
func (t *Table) Row(depth int) []int {
	if depth < 0 {
		depth = 0
	}
	if depth >= len(t.Weights) {
		depth = len(t.Weights) - 1
	}
	return t.Weights[depth]
}

// StatsFor returns the stats of typ.
func (t *Table) StatsFor(typ Type) Stats {
	return t.Stats[typ]
}

// Validate checks row shape and sums.
func (t *Table) Validate() error {
	if len(t.Weights) == 0 {
		return fmt.Errorf("%w: no rows", ErrInvalidWeights)
	}
	for i, row := range t.Weights {
		if len(row) != NumColumns {
			return fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidWeights, i, len(row), NumColumns)
		}
		sum := 0
		for _, w := range row {
			if w < 0 {
				return fmt.Errorf("%w: row %d has a negative weight", ErrInvalidWeights, i)
			}
			sum += w
		}
		if sum != 100 {
			return fmt.Errorf("%w: row %d sums to %d, want 100", ErrInvalidWeights, i, sum)
		}
	}
	return nil
}

// tableYAML is the on-disk override format.
type tableYAML struct {
	Weights [][]int          `yaml:"weights"`
	Enemies map[string]Stats `yaml:"enemies"`
}

// LoadTable reads an override file on top of DefaultTable. Omitted sections
// keep the built-in values; named enemies replace their stats entirely.
func LoadTable(filename string) (*Table, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read enemy table: %w", err)
	}

	var raw tableYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse enemy table YAML: %w", err)
	}

	table := DefaultTable()
	if len(raw.Weights) > 0 {
		table.Weights = raw.Weights
	}
	for name, stats := range raw.Enemies {
		typ, err := ParseType(name)
		if err != nil {
			logger.Warning("enemy table entry ignored", "name", name, "file", filename)
			continue
		}
		if stats.Variants < 1 {
			stats.Variants = 1
		}
		table.Stats[typ] = stats
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}

	logger.Info("enemy table loaded", "file", filename, "rows", len(table.Weights))
	return table, nil
}
