// Package geom has the grid vocabulary shared by generation, movement and
// rendering: tile coordinates, the four step directions and the mapping from
// tiles to world (pixel-like) positions used by animations.
package geom

import (
	"fmt"
	"math"
	"strings"
)

// TileSep is the world distance between neighbouring tile centres.
const TileSep = 20.0

// Vec is a signed tile coordinate. Y grows downward (south).
type Vec struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
}

// V is shorthand for Vec{x, y}.
func V(x, y int) Vec { return Vec{X: x, Y: y} }

func (v Vec) Add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y} }
func (v Vec) Sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y} }

// Scale multiplies both components by k.
func (v Vec) Scale(k int) Vec { return Vec{v.X * k, v.Y * k} }

// Step returns the neighbouring coordinate in direction d.
func (v Vec) Step(d Direction) Vec { return v.Add(d.Delta()) }

// Neighbours returns the four orthogonal neighbours in AllDirections order.
func (v Vec) Neighbours() [4]Vec {
	var out [4]Vec
	for i, d := range AllDirections() {
		out[i] = v.Step(d)
	}
	return out
}

func (v Vec) String() string { return fmt.Sprintf("(%d,%d)", v.X, v.Y) }

// Direction represents a cardinal direction in the grid
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

// String returns the string representation of a Direction
func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	default:
		return "unknown"
	}
}

// Opposite returns the opposite direction
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case East:
		return West
	case South:
		return North
	case West:
		return East
	default:
		return d
	}
}

// Delta is the unit tile offset of one step in d.
func (d Direction) Delta() Vec {
	switch d {
	case North:
		return Vec{0, -1}
	case East:
		return Vec{1, 0}
	case South:
		return Vec{0, 1}
	case West:
		return Vec{-1, 0}
	default:
		return Vec{}
	}
}

// Unit is Delta in world space, scaled to length 1.
func (d Direction) Unit() World {
	delta := d.Delta()
	return World{X: float64(delta.X), Y: float64(delta.Y)}
}

// AllDirections returns all four cardinal directions
func AllDirections() []Direction {
	return []Direction{North, East, South, West}
}

// ParseDirection accepts the String form and the single letters n/e/s/w.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "north", "n", "up":
		return North, nil
	case "east", "e", "right":
		return East, nil
	case "south", "s", "down":
		return South, nil
	case "west", "w", "left":
		return West, nil
	}
	return North, fmt.Errorf("unknown direction %q", s)
}

// World is a continuous position. One tile spans TileSep units.
type World struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (w World) Add(o World) World { return World{w.X + o.X, w.Y + o.Y} }

// Scale multiplies both components by k.
func (w World) Scale(k float64) World { return World{w.X * k, w.Y * k} }

// Lerp interpolates from w to o; t is not clamped.
func (w World) Lerp(o World, t float64) World {
	return World{w.X + (o.X-w.X)*t, w.Y + (o.Y-w.Y)*t}
}

// ToWorld maps a tile to the world position of its centre.
func ToWorld(v Vec) World {
	return World{X: float64(v.X) * TileSep, Y: float64(v.Y) * TileSep}
}

// ToTile maps a world position to the nearest tile.
func ToTile(w World) Vec {
	return Vec{X: int(math.Round(w.X / TileSep)), Y: int(math.Round(w.Y / TileSep))}
}

// AtlasWidth is the number of sprites per row of the tile atlas. Sprite
// indices are row*AtlasWidth + column.
const AtlasWidth = 49

// Sprite returns the atlas index at row, col.
func Sprite(row, col int) int { return row*AtlasWidth + col }
