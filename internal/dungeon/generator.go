package dungeon

import (
	"sort"

	"github.com/lawnchairsociety/nightmareinsilver/internal/geom"
	"github.com/lawnchairsociety/nightmareinsilver/internal/logger"
	"github.com/lawnchairsociety/nightmareinsilver/internal/rng"
)

// Generator builds one level from Params, drawing every random choice from
// the injected source.
type Generator struct {
	params Params
	rng    rng.Source
	cells  map[geom.Vec]Kind
	rooms  []Room
}

// NewGenerator creates a new level generator
func NewGenerator(params Params, src rng.Source) *Generator {
	return &Generator{
		params: params.normalized(),
		rng:    src,
	}
}

// Generate lays out rooms, carves corridors, places the ladders and spawn
// markers and returns the resulting Tilemap. Generation never fails; a
// corridor that cannot find its far wall is dropped and the level may be
// partially disconnected.
func (g *Generator) Generate() *Tilemap {
	g.cells = make(map[geom.Vec]Kind)
	g.rooms = g.rooms[:0]

	claimed := g.layoutRooms()
	for _, cell := range claimed {
		g.stampRoom(cell)
	}

	carved := 0
	for i, room := range g.rooms {
		for _, other := range g.rooms[i+1:] {
			dir, ok := adjacent(room.Cell, other.Cell)
			if !ok {
				continue
			}
			if g.carveCorridor(room, dir) {
				carved++
			}
		}
	}

	m := &Tilemap{
		Depth: g.params.Depth,
		Rooms: append([]Room(nil), g.rooms...),
		tiles: make(map[geom.Vec]*Tile, len(g.cells)),
	}

	m.Entry = g.rooms[0].Bounds.Center()
	g.cells[m.Entry] = LadderUp

	if g.params.IsFinal() {
		if pos, ok := g.pickGround(g.farRoom()); ok {
			g.cells[pos] = Final
			m.FinalPos, m.HasFinal = pos, true
		}
	} else if pos, ok := g.pickGround(g.farRoom()); ok {
		g.cells[pos] = LadderDown
		m.Exit, m.HasExit = pos, true
	}

	spawns := g.params.SpawnsPerRoom()
	for _, room := range g.rooms {
		for i := 0; i < spawns; i++ {
			pos, ok := g.pickGround(room)
			if !ok {
				break
			}
			g.cells[pos] = EnemySpawnMarker
		}
	}

	for _, pos := range sortedCells(g.cells) {
		kind := g.cells[pos]
		m.tiles[pos] = &Tile{Pos: pos, Kind: kind, Sprite: pickSprite(g.rng, kind)}
	}

	logger.Debug("level generated",
		"depth", g.params.Depth,
		"rooms", len(g.rooms),
		"corridors", carved,
		"tiles", len(m.tiles),
		"final", g.params.IsFinal())

	return m
}

// layoutRooms random-walks the logical grid from the origin, claiming each
// unvisited cell it lands on until the sampled room count is reached.
func (g *Generator) layoutRooms() []geom.Vec {
	n := rng.Between(g.rng, g.params.RoomCountMin, g.params.RoomCountMax)
	dirs := geom.AllDirections()

	pos := geom.Vec{}
	used := map[geom.Vec]bool{pos: true}
	claimed := []geom.Vec{pos}

	for len(claimed) < n {
		pos = pos.Step(dirs[g.rng.Intn(len(dirs))])
		if used[pos] {
			continue
		}
		used[pos] = true
		claimed = append(claimed, pos)
	}
	return claimed
}

// stampRoom samples a floor size and slot offset for cell and writes a wall
// ring around a Ground interior.
func (g *Generator) stampRoom(cell geom.Vec) {
	p := g.params
	w := rng.Between(g.rng, p.RoomWidthMin, p.RoomWidthMax) + 2
	h := rng.Between(g.rng, p.RoomHeightMin, p.RoomHeightMax) + 2

	origin := cell.Scale(p.SlotSize)
	origin.X += g.rng.Intn(p.SlotSize - w + 1)
	origin.Y += g.rng.Intn(p.SlotSize - h + 1)

	bounds := Rect{Min: origin, Max: origin.Add(geom.V(w, h))}
	interior := bounds.Interior()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			pos := geom.V(x, y)
			if interior.Contains(pos) {
				g.cells[pos] = Ground
			} else {
				g.cells[pos] = Wall
			}
		}
	}

	g.rooms = append(g.rooms, Room{Cell: cell, Bounds: bounds})
}

// carveCorridor walks from the room centre toward dir. Carving starts at the
// room's own wall and ends on the next wall found, which becomes the door of
// the neighbouring room. Nothing is written if that wall is not reached
// within CorridorSearch steps.
func (g *Generator) carveCorridor(from Room, dir geom.Direction) bool {
	pos := from.Bounds.Center()
	var path []geom.Vec
	started := false

	for step := 0; step < g.params.CorridorSearch; step++ {
		pos = pos.Step(dir)
		kind, exists := g.cells[pos]

		if !started {
			if exists && kind == Wall {
				started = true
				path = append(path, pos)
			}
			continue
		}

		path = append(path, pos)
		if exists && (kind == Wall || kind == Ground) {
			for _, p := range path {
				if k, ok := g.cells[p]; !ok || k != Ground {
					g.cells[p] = Path
				}
			}
			return true
		}
	}
	return false
}

// farRoom is the last room claimed by the walk, the origin room when alone.
func (g *Generator) farRoom() Room {
	return g.rooms[len(g.rooms)-1]
}

// pickGround returns a random Ground cell of room. Cells already turned into
// ladders, markers or the entry are skipped.
func (g *Generator) pickGround(room Room) (geom.Vec, bool) {
	interior := room.Bounds.Interior()
	var free []geom.Vec
	for y := interior.Min.Y; y < interior.Max.Y; y++ {
		for x := interior.Min.X; x < interior.Max.X; x++ {
			pos := geom.V(x, y)
			if g.cells[pos] == Ground {
				free = append(free, pos)
			}
		}
	}
	if len(free) == 0 {
		return geom.Vec{}, false
	}
	return free[g.rng.Intn(len(free))], true
}

// adjacent reports the direction from a to b when the cells are neighbours.
func adjacent(a, b geom.Vec) (geom.Direction, bool) {
	for _, d := range geom.AllDirections() {
		if a.Step(d) == b {
			return d, true
		}
	}
	return geom.North, false
}

// sortedCells orders positions row by row so seeded runs draw sprites in the
// same order.
func sortedCells(cells map[geom.Vec]Kind) []geom.Vec {
	out := make([]geom.Vec, 0, len(cells))
	for pos := range cells {
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
