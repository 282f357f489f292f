package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LevelYAML is one generated level as written to disk.
type LevelYAML struct {
	Depth         int    `yaml:"depth"`
	GeneratedSeed int64  `yaml:"generated_seed"`
	Final         bool   `yaml:"final"`
	Rooms         int    `yaml:"rooms"`
	Tiles         int    `yaml:"tiles"`
	Entry         string `yaml:"entry"`
	Exit          string `yaml:"exit,omitempty"`
	FinalTile     string `yaml:"final_tile,omitempty"`
	SpawnMarkers  int    `yaml:"spawn_markers"`
	Walkable      int    `yaml:"walkable"`
	Reachable     int    `yaml:"reachable"`
	ExitReachable bool   `yaml:"exit_reachable"`
	Map           string `yaml:"-"`
}

// levelDocument adds the map as a literal block so it stays readable.
type levelDocument struct {
	LevelYAML `yaml:",inline"`
	Map       yaml.Node `yaml:"map"`
}

// WriteLevelYAML writes a level report to path.
func WriteLevelYAML(level *LevelYAML, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	fmt.Fprintf(f, "# Level %d\n", level.Depth)
	fmt.Fprintf(f, "# Generated with seed: %d\n", level.GeneratedSeed)
	fmt.Fprintf(f, "# Legend: # wall  . ground  , path  e spawn  < up  > down  * final\n\n")

	encoder := yaml.NewEncoder(f)
	encoder.SetIndent(2)

	doc := levelDocument{
		LevelYAML: *level,
		Map: yaml.Node{
			Kind:  yaml.ScalarNode,
			Style: yaml.LiteralStyle,
			Value: level.Map,
		},
	}
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}

// ReadLevelYAML loads a report written by WriteLevelYAML.
func ReadLevelYAML(path string) (*LevelYAML, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc struct {
		LevelYAML `yaml:",inline"`
		Map       string `yaml:"map"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse level YAML: %w", err)
	}
	level := doc.LevelYAML
	level.Map = doc.Map
	return &level, nil
}
