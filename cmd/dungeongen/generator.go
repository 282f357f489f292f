package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lawnchairsociety/nightmareinsilver/internal/config"
	"github.com/lawnchairsociety/nightmareinsilver/internal/dungeon"
	"github.com/lawnchairsociety/nightmareinsilver/internal/geom"
	"github.com/lawnchairsociety/nightmareinsilver/internal/rng"
)

// LevelGenerator generates levels and writes them to YAML.
type LevelGenerator struct {
	Config    *config.Config
	Seed      int64
	OutputDir string
}

func NewLevelGenerator(cfg *config.Config, seed int64, outputDir string) *LevelGenerator {
	return &LevelGenerator{Config: cfg, Seed: seed, OutputDir: outputDir}
}

// GenerateLevel builds depth from its own seed and writes level_<depth>.yaml.
func (g *LevelGenerator) GenerateLevel(depth int) (*LevelYAML, error) {
	report := g.Build(depth)
	path := filepath.Join(g.OutputDir, fmt.Sprintf("level_%d.yaml", depth))
	if err := WriteLevelYAML(report, path); err != nil {
		return nil, fmt.Errorf("failed to write YAML: %w", err)
	}
	return report, nil
}

// Build generates one level and summarises it.
func (g *LevelGenerator) Build(depth int) *LevelYAML {
	seed := g.Seed + int64(depth)
	params := g.Config.Generation.Params(depth, g.Config.Game.FinalDepth)
	m := dungeon.NewGenerator(params, rng.New(seed)).Generate()
	return summarize(m, seed, params.IsFinal())
}

func summarize(m *dungeon.Tilemap, seed int64, final bool) *LevelYAML {
	level := &LevelYAML{
		Depth:         m.Depth,
		GeneratedSeed: seed,
		Final:         final,
		Rooms:         len(m.Rooms),
		Tiles:         m.Len(),
		Entry:         coord(m.Entry),
		SpawnMarkers:  len(m.SpawnMarkers()),
		Map:           renderASCII(m),
	}
	if m.HasExit {
		level.Exit = coord(m.Exit)
	}
	if m.HasFinal {
		level.FinalTile = coord(m.FinalPos)
	}

	reachable := m.Reachable(m.Entry)
	for _, t := range m.Tiles() {
		if t.Kind.Walkable() {
			level.Walkable++
		}
	}
	level.Reachable = len(reachable)
	if m.HasExit {
		level.ExitReachable = reachable[m.Exit]
	}
	return level
}

func coord(v geom.Vec) string {
	return fmt.Sprintf("%d,%d", v.X, v.Y)
}

var asciiKinds = map[dungeon.Kind]byte{
	dungeon.Ground:           '.',
	dungeon.Path:             ',',
	dungeon.Wall:             '#',
	dungeon.EnemySpawnMarker: 'e',
	dungeon.LadderUp:         '<',
	dungeon.LadderDown:       '>',
	dungeon.Final:            '*',
}

// renderASCII draws the map row by row over its bounding box. Cells with no
// tile are spaces.
func renderASCII(m *dungeon.Tilemap) string {
	b := m.Bounds()
	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y++ {
		line := make([]byte, 0, b.Width())
		for x := b.Min.X; x < b.Max.X; x++ {
			k, ok := m.Kind(geom.V(x, y))
			if !ok {
				line = append(line, ' ')
				continue
			}
			line = append(line, asciiKinds[k])
		}
		sb.WriteString(strings.TrimRight(string(line), " "))
		sb.WriteByte('\n')
	}
	return sb.String()
}
