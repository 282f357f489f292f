package dungeon

import (
	"sort"

	"github.com/lawnchairsociety/nightmareinsilver/internal/geom"
)

// Tilemap is the sparse coordinate→tile map of one level plus the occupancy
// index used by movement and combat. It is discarded on level change.
type Tilemap struct {
	Depth int
	Rooms []Room

	Entry    geom.Vec // LadderUp, where the player starts
	Exit     geom.Vec // LadderDown, valid when HasExit
	HasExit  bool
	FinalPos geom.Vec // Final tile, valid when HasFinal
	HasFinal bool

	tiles     map[geom.Vec]*Tile
	occupants map[geom.Vec]int
}

// NewTilemap builds a map from explicit tiles. The first LadderUp, LadderDown
// and Final tiles found become Entry, Exit and FinalPos.
func NewTilemap(depth int, tiles []Tile) *Tilemap {
	m := &Tilemap{Depth: depth, tiles: make(map[geom.Vec]*Tile, len(tiles))}
	for _, t := range tiles {
		m.Set(t.Pos, t.Kind)
		m.tiles[t.Pos].Sprite = t.Sprite
	}
	return m
}

// Get returns the tile at pos.
func (m *Tilemap) Get(pos geom.Vec) (Tile, bool) {
	t, ok := m.tiles[pos]
	if !ok {
		return Tile{}, false
	}
	return *t, true
}

// Kind returns the tile kind at pos.
func (m *Tilemap) Kind(pos geom.Vec) (Kind, bool) {
	t, ok := m.tiles[pos]
	if !ok {
		return Ground, false
	}
	return t.Kind, true
}

// Set writes a tile kind, keeping the ladder bookkeeping in step.
func (m *Tilemap) Set(pos geom.Vec, kind Kind) {
	if t, ok := m.tiles[pos]; ok {
		t.Kind = kind
	} else {
		m.tiles[pos] = &Tile{Pos: pos, Kind: kind}
	}
	switch kind {
	case LadderUp:
		m.Entry = pos
	case LadderDown:
		m.Exit, m.HasExit = pos, true
	case Final:
		m.FinalPos, m.HasFinal = pos, true
	}
}

// Walkable reports whether the player can step onto pos. Missing tiles are
// solid.
func (m *Tilemap) Walkable(pos geom.Vec) bool {
	kind, ok := m.Kind(pos)
	return ok && kind.Walkable()
}

// Len is the number of tiles.
func (m *Tilemap) Len() int { return len(m.tiles) }

// Count returns how many tiles have kind.
func (m *Tilemap) Count(kind Kind) int {
	n := 0
	for _, t := range m.tiles {
		if t.Kind == kind {
			n++
		}
	}
	return n
}

// Positions returns every tile coordinate, row by row.
func (m *Tilemap) Positions() []geom.Vec {
	out := make([]geom.Vec, 0, len(m.tiles))
	for pos := range m.tiles {
		out = append(out, pos)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

// Tiles returns copies of every tile, row by row.
func (m *Tilemap) Tiles() []Tile {
	positions := m.Positions()
	out := make([]Tile, len(positions))
	for i, pos := range positions {
		out[i] = *m.tiles[pos]
	}
	return out
}

// SpawnMarkers returns the EnemySpawnMarker positions, row by row.
func (m *Tilemap) SpawnMarkers() []geom.Vec {
	var out []geom.Vec
	for _, pos := range m.Positions() {
		if m.tiles[pos].Kind == EnemySpawnMarker {
			out = append(out, pos)
		}
	}
	return out
}

// Bounds is the smallest rectangle holding every tile.
func (m *Tilemap) Bounds() Rect {
	first := true
	var r Rect
	for pos := range m.tiles {
		if first {
			r = Rect{Min: pos, Max: pos.Add(geom.V(1, 1))}
			first = false
			continue
		}
		r.Min.X = min(r.Min.X, pos.X)
		r.Min.Y = min(r.Min.Y, pos.Y)
		r.Max.X = max(r.Max.X, pos.X+1)
		r.Max.Y = max(r.Max.Y, pos.Y+1)
	}
	return r
}

// Occupy records id as standing on pos. Returns false if pos is taken by a
// different occupant.
func (m *Tilemap) Occupy(pos geom.Vec, id int) bool {
	if m.occupants == nil {
		m.occupants = make(map[geom.Vec]int)
	}
	if cur, ok := m.occupants[pos]; ok && cur != id {
		return false
	}
	m.occupants[pos] = id
	return true
}

// Vacate clears pos.
func (m *Tilemap) Vacate(pos geom.Vec) {
	delete(m.occupants, pos)
}

// OccupantAt returns the id standing on pos.
func (m *Tilemap) OccupantAt(pos geom.Vec) (int, bool) {
	id, ok := m.occupants[pos]
	return id, ok
}

// MoveOccupant shifts id from one cell to another if the target is free.
func (m *Tilemap) MoveOccupant(from, to geom.Vec) bool {
	id, ok := m.occupants[from]
	if !ok {
		return false
	}
	if _, taken := m.occupants[to]; taken {
		return false
	}
	delete(m.occupants, from)
	m.occupants[to] = id
	return true
}

// Reachable flood-fills walkable tiles from start and returns the set reached.
func (m *Tilemap) Reachable(start geom.Vec) map[geom.Vec]bool {
	seen := map[geom.Vec]bool{}
	if !m.Walkable(start) {
		return seen
	}
	queue := []geom.Vec{start}
	seen[start] = true
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range cur.Neighbours() {
			if seen[next] || !m.Walkable(next) {
				continue
			}
			seen[next] = true
			queue = append(queue, next)
		}
	}
	return seen
}
