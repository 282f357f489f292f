package enemy

import (
	"fmt"

	"github.com/lawnchairsociety/nightmareinsilver/internal/geom"
	"github.com/lawnchairsociety/nightmareinsilver/internal/rng"
)

// Type is the kind of creature or pickup.
type Type int

const (
	Chicken Type = iota
	Cat
	Dog
	YoungOrOld // kids and elders share a column
	Human
	Money   // pickup
	Battery // pickup, mid depths only
	EndGameArtifact
)

// NumColumns is the number of weighted types in a table row. The artifact is
// never drawn.
const NumColumns = 7

// String returns the string representation of a Type
func (t Type) String() string {
	switch t {
	case Chicken:
		return "chicken"
	case Cat:
		return "cat"
	case Dog:
		return "dog"
	case YoungOrOld:
		return "young_or_old"
	case Human:
		return "human"
	case Money:
		return "money"
	case Battery:
		return "battery"
	case EndGameArtifact:
		return "artifact"
	default:
		return "unknown"
	}
}

// ParseType is the inverse of String.
func ParseType(s string) (Type, error) {
	for t := Chicken; t <= EndGameArtifact; t++ {
		if t.String() == s {
			return t, nil
		}
	}
	return Chicken, fmt.Errorf("unknown enemy type %q", s)
}

// IsPickup reports whether the type is collected rather than fought.
func (t Type) IsPickup() bool {
	return t == Money || t == Battery
}

// Stats are the fixed per-type numbers.
type Stats struct {
	Health      float64  `yaml:"health"`
	Contact     int      `yaml:"contact"`      // Battery drained when it bumps the player
	Reward      rng.Dice `yaml:"reward"`       // Currency on death
	Sprite      int      `yaml:"sprite"`       // First atlas index
	Variants    int      `yaml:"variants"`     // Consecutive equivalent sprites
	DeathSound  string   `yaml:"death_sound"`  // Cue pool name
	DeathSounds int      `yaml:"death_sounds"` // Pool size
}

// SpriteFor picks one of the type's sprite variants.
func (s Stats) SpriteFor(src rng.Source) int {
	if s.Variants <= 1 {
		return s.Sprite
	}
	return s.Sprite + src.Intn(s.Variants)
}

// DeathCue picks a sound key from the type's pool, "" when it has none.
func (s Stats) DeathCue(src rng.Source) string {
	if s.DeathSound == "" || s.DeathSounds <= 0 {
		return ""
	}
	return fmt.Sprintf("%s_%d", s.DeathSound, src.Intn(s.DeathSounds))
}

// Enemy is a combat entity or pickup standing on a tile.
type Enemy struct {
	ID      int
	Pos     geom.Vec
	Health  float64
	Type    Type
	Element Element
	Sprite  int
	Unique  bool
}

// Alive reports whether the enemy still counts as present. Pickups have zero
// health and stay until collected, so they are alive until Remove.
func (e *Enemy) Alive() bool {
	return e.Health > 0 || e.Type.IsPickup()
}

// Stationary enemies never take a step on the enemy turn.
func (e *Enemy) Stationary() bool {
	return e.Unique || e.Type.IsPickup()
}
