package dungeon

import (
	"fmt"

	"github.com/lawnchairsociety/nightmareinsilver/internal/geom"
	"github.com/lawnchairsociety/nightmareinsilver/internal/rng"
)

// Kind is what occupies a generated cell.
type Kind int

const (
	Ground Kind = iota
	Path
	Wall
	EnemySpawnMarker
	LadderUp
	LadderDown
	Final
)

// String returns the string representation of a Kind
func (k Kind) String() string {
	switch k {
	case Ground:
		return "ground"
	case Path:
		return "path"
	case Wall:
		return "wall"
	case EnemySpawnMarker:
		return "spawn"
	case LadderUp:
		return "ladder_up"
	case LadderDown:
		return "ladder_down"
	case Final:
		return "final"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of String.
func ParseKind(s string) (Kind, error) {
	for k := Ground; k <= Final; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return Ground, fmt.Errorf("unknown tile kind %q", s)
}

// Walkable reports whether the player may stand on the kind.
func (k Kind) Walkable() bool {
	return k != Wall
}

// Tile is one emitted cell with its cosmetic sprite.
type Tile struct {
	Pos    geom.Vec
	Kind   Kind
	Sprite int
}

// Rect is a half-open rectangle [Min, Max).
type Rect struct {
	Min geom.Vec
	Max geom.Vec
}

// Contains reports whether p lies inside the rectangle.
func (r Rect) Contains(p geom.Vec) bool {
	return p.X >= r.Min.X && p.X < r.Max.X && p.Y >= r.Min.Y && p.Y < r.Max.Y
}

// Interior drops the one-tile wall ring.
func (r Rect) Interior() Rect {
	return Rect{Min: r.Min.Add(geom.V(1, 1)), Max: r.Max.Sub(geom.V(1, 1))}
}

// Center is the middle cell, rounded toward Min.
func (r Rect) Center() geom.Vec {
	return geom.V((r.Min.X+r.Max.X-1)/2, (r.Min.Y+r.Max.Y-1)/2)
}

// Width and Height include the wall ring.
func (r Rect) Width() int { return r.Max.X - r.Min.X }
func (r Rect) Height() int { return r.Max.Y - r.Min.Y }

// Room is a walled rectangle claimed at Cell on the logical room grid.
type Room struct {
	Cell   geom.Vec
	Bounds Rect
}

// spriteVariants lists the equivalent atlas sprites for each kind.
var spriteVariants = map[Kind][]int{
	Ground:           {geom.Sprite(0, 1), geom.Sprite(0, 2), geom.Sprite(0, 3), geom.Sprite(0, 4)},
	Path:             {geom.Sprite(0, 5), geom.Sprite(0, 6)},
	Wall:             {geom.Sprite(13, 0), geom.Sprite(13, 1), geom.Sprite(13, 2)},
	EnemySpawnMarker: {geom.Sprite(0, 1), geom.Sprite(0, 2)},
	LadderUp:         {geom.Sprite(6, 2)},
	LadderDown:       {geom.Sprite(6, 3)},
	Final:            {geom.Sprite(8, 28), geom.Sprite(8, 29)},
}

// SpriteVariants returns the valid sprite indices for k.
func SpriteVariants(k Kind) []int {
	return spriteVariants[k]
}

func pickSprite(src rng.Source, k Kind) int {
	variants := spriteVariants[k]
	if len(variants) == 0 {
		return 0
	}
	return variants[src.Intn(len(variants))]
}
