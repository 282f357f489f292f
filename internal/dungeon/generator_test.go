package dungeon

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/lawnchairsociety/nightmareinsilver/internal/geom"
)

func generate(depth int, seed int64) *Tilemap {
	return NewGenerator(DefaultParams(depth), rand.New(rand.NewSource(seed))).Generate()
}

func TestGenerateLadders(t *testing.T) {
	for depth := 0; depth <= 9; depth++ {
		for seed := int64(1); seed <= 20; seed++ {
			m := generate(depth, seed)

			if got := m.Count(LadderUp); got != 1 {
				t.Fatalf("depth %d seed %d: %d LadderUp tiles, want 1", depth, seed, got)
			}
			if kind, _ := m.Kind(m.Entry); kind != LadderUp {
				t.Errorf("depth %d seed %d: entry %v is %s", depth, seed, m.Entry, kind)
			}

			wantDown := 1
			if depth == 9 {
				wantDown = 0
			}
			if got := m.Count(LadderDown); got != wantDown {
				t.Errorf("depth %d seed %d: %d LadderDown tiles, want %d", depth, seed, got, wantDown)
			}
			if m.HasExit != (wantDown == 1) {
				t.Errorf("depth %d seed %d: HasExit = %v", depth, seed, m.HasExit)
			}
			if depth == 9 && (!m.HasFinal || m.Count(Final) != 1) {
				t.Errorf("seed %d: final level without a Final tile", seed)
			}
		}
	}
}

func TestGenerateUniqueCoordinates(t *testing.T) {
	m := generate(4, 99)
	seen := map[geom.Vec]bool{}
	for _, tile := range m.Tiles() {
		if seen[tile.Pos] {
			t.Fatalf("duplicate tile at %v", tile.Pos)
		}
		seen[tile.Pos] = true
	}
	if len(seen) != m.Len() {
		t.Errorf("Tiles() returned %d tiles, Len() = %d", len(seen), m.Len())
	}
}

func TestGenerateRoomCountAndShape(t *testing.T) {
	p := DefaultParams(2)
	for seed := int64(1); seed <= 30; seed++ {
		m := NewGenerator(p, rand.New(rand.NewSource(seed))).Generate()

		if n := len(m.Rooms); n < p.RoomCountMin || n > p.RoomCountMax {
			t.Fatalf("seed %d: %d rooms outside [%d, %d]", seed, n, p.RoomCountMin, p.RoomCountMax)
		}

		cells := map[geom.Vec]bool{}
		for _, room := range m.Rooms {
			if cells[room.Cell] {
				t.Fatalf("seed %d: logical cell %v claimed twice", seed, room.Cell)
			}
			cells[room.Cell] = true

			w, h := room.Bounds.Width()-2, room.Bounds.Height()-2
			if w < p.RoomWidthMin || w > p.RoomWidthMax || h < p.RoomHeightMin || h > p.RoomHeightMax {
				t.Errorf("seed %d: room floor %dx%d out of range", seed, w, h)
			}

			for y := room.Bounds.Min.Y; y < room.Bounds.Max.Y; y++ {
				for x := room.Bounds.Min.X; x < room.Bounds.Max.X; x++ {
					pos := geom.V(x, y)
					kind, ok := m.Kind(pos)
					if !ok {
						t.Fatalf("seed %d: hole at %v", seed, pos)
					}
					onRing := !room.Bounds.Interior().Contains(pos)
					if onRing && kind != Wall && kind != Path {
						t.Errorf("seed %d: ring cell %v is %s", seed, pos, kind)
					}
					if !onRing && (kind == Wall || kind == Path) {
						t.Errorf("seed %d: interior cell %v is %s", seed, pos, kind)
					}
				}
			}
		}

		// Every logical cell after the origin touches an earlier one.
		for i, room := range m.Rooms[1:] {
			touches := false
			for _, prev := range m.Rooms[:i+1] {
				if _, ok := adjacent(room.Cell, prev.Cell); ok {
					touches = true
				}
			}
			if !touches {
				t.Errorf("seed %d: room %v is not adjacent to any earlier room", seed, room.Cell)
			}
		}
	}
}

func TestGenerateSpawnMarkers(t *testing.T) {
	for _, depth := range []int{0, 5, 9} {
		p := DefaultParams(depth)
		m := NewGenerator(p, rand.New(rand.NewSource(7))).Generate()
		perRoom := p.SpawnsPerRoom()

		for _, room := range m.Rooms {
			n := 0
			for _, pos := range m.SpawnMarkers() {
				if room.Bounds.Contains(pos) {
					if !room.Bounds.Interior().Contains(pos) {
						t.Errorf("depth %d: marker %v on the wall ring", depth, pos)
					}
					n++
				}
			}
			if n != perRoom {
				t.Errorf("depth %d: room %v has %d markers, want %d", depth, room.Cell, n, perRoom)
			}
		}
	}
}

func TestGenerateSprites(t *testing.T) {
	m := generate(3, 5)
	for _, tile := range m.Tiles() {
		valid := false
		for _, s := range SpriteVariants(tile.Kind) {
			if s == tile.Sprite {
				valid = true
			}
		}
		if !valid {
			t.Errorf("tile %v (%s) has sprite %d", tile.Pos, tile.Kind, tile.Sprite)
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a, b := generate(6, 1234), generate(6, 1234)
	if !reflect.DeepEqual(a.Tiles(), b.Tiles()) {
		t.Error("same seed produced different levels")
	}
	if a.Entry != b.Entry || a.Exit != b.Exit {
		t.Error("same seed produced different ladders")
	}
}

func TestGenerateSingleRoom(t *testing.T) {
	p := DefaultParams(0)
	p.RoomCountMin, p.RoomCountMax = 1, 1
	m := NewGenerator(p, rand.New(rand.NewSource(3))).Generate()

	if len(m.Rooms) != 1 {
		t.Fatalf("rooms = %d", len(m.Rooms))
	}
	if m.Count(Path) != 0 {
		t.Error("single room should have no corridors")
	}
	if !m.HasExit || m.Exit == m.Entry {
		t.Errorf("exit %v entry %v", m.Exit, m.Entry)
	}
}

func newTestGenerator() *Generator {
	g := NewGenerator(DefaultParams(0), rand.New(rand.NewSource(1)))
	g.cells = make(map[geom.Vec]Kind)
	return g
}

func stamp(g *Generator, cell geom.Vec, bounds Rect) Room {
	interior := bounds.Interior()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if interior.Contains(geom.V(x, y)) {
				g.cells[geom.V(x, y)] = Ground
			} else {
				g.cells[geom.V(x, y)] = Wall
			}
		}
	}
	room := Room{Cell: cell, Bounds: bounds}
	g.rooms = append(g.rooms, room)
	return room
}

func TestCarveCorridorAligned(t *testing.T) {
	g := newTestGenerator()
	a := stamp(g, geom.V(0, 0), Rect{Min: geom.V(0, 0), Max: geom.V(6, 6)})
	stamp(g, geom.V(1, 0), Rect{Min: geom.V(12, 1), Max: geom.V(18, 7)})

	if !g.carveCorridor(a, geom.East) {
		t.Fatal("aligned rooms were not connected")
	}

	// Centre row of room a is y=2: its wall at x=5 through room b's wall at
	// x=12 become Path.
	for x := 5; x <= 12; x++ {
		if g.cells[geom.V(x, 2)] != Path {
			t.Errorf("cell (%d,2) = %s, want path", x, g.cells[geom.V(x, 2)])
		}
	}
	if g.cells[geom.V(13, 2)] != Ground {
		t.Error("corridor overran into the neighbouring room")
	}
}

func TestCarveCorridorMisalignedIsNoOp(t *testing.T) {
	g := newTestGenerator()
	a := stamp(g, geom.V(0, 0), Rect{Min: geom.V(0, 0), Max: geom.V(6, 6)})
	stamp(g, geom.V(1, 0), Rect{Min: geom.V(12, 6), Max: geom.V(18, 12)})

	before := len(g.cells)
	if g.carveCorridor(a, geom.East) {
		t.Fatal("misaligned rooms reported connected")
	}
	if len(g.cells) != before {
		t.Error("failed corridor wrote tiles")
	}
	for _, kind := range g.cells {
		if kind == Path {
			t.Fatal("failed corridor left a path")
		}
	}
}

func TestSpawnsPerRoom(t *testing.T) {
	p := DefaultParams(0)
	tests := []struct {
		depth int
		want  int
	}{
		{0, 1},
		{2, 1},
		{3, 2},
		{5, 3},
		{9, 4},
		{40, 4},
	}
	for _, tt := range tests {
		p.Depth = tt.depth
		if got := p.SpawnsPerRoom(); got != tt.want {
			t.Errorf("SpawnsPerRoom(depth %d) = %d, want %d", tt.depth, got, tt.want)
		}
	}
}

func TestNormalizedParams(t *testing.T) {
	p := Params{RoomCountMin: 0, RoomWidthMin: 9, RoomWidthMax: 3, SlotSize: 2}.normalized()
	if p.RoomCountMin != 1 || p.RoomCountMax != 1 {
		t.Errorf("room count %d..%d", p.RoomCountMin, p.RoomCountMax)
	}
	if p.RoomWidthMax != 9 {
		t.Errorf("RoomWidthMax = %d, want 9", p.RoomWidthMax)
	}
	if p.SlotSize < 12 {
		t.Errorf("SlotSize = %d, room cannot fit", p.SlotSize)
	}
}

// aligned reports whether a corridor walked from a's centre toward b enters
// b through a side wall rather than a corner.
func aligned(a, b Room, dir geom.Direction) bool {
	c := a.Bounds.Center()
	in := b.Bounds.Interior()
	switch dir {
	case geom.East, geom.West:
		return c.Y >= in.Min.Y && c.Y < in.Max.Y
	default:
		return c.X >= in.Min.X && c.X < in.Max.X
	}
}

func insideAnyRoom(m *Tilemap, pos geom.Vec) bool {
	for _, room := range m.Rooms {
		if room.Bounds.Contains(pos) {
			return true
		}
	}
	return false
}

func TestGenerateCorridorsLeaveRooms(t *testing.T) {
	for seed := int64(1); seed <= 50; seed++ {
		m := generate(2, seed)
		outside := 0
		for _, tile := range m.Tiles() {
			if tile.Kind == Path && !insideAnyRoom(m, tile.Pos) {
				outside++
			}
		}

		gapped := false
		for i, a := range m.Rooms {
			for _, b := range m.Rooms[i+1:] {
				dir, ok := adjacent(a.Cell, b.Cell)
				if !ok || !aligned(a, b, dir) {
					continue
				}
				// Walls one tile apart leave no gap to lay path on.
				gap := 0
				switch dir {
				case geom.East:
					gap = b.Bounds.Min.X - a.Bounds.Max.X
				case geom.West:
					gap = a.Bounds.Min.X - b.Bounds.Max.X
				case geom.South:
					gap = b.Bounds.Min.Y - a.Bounds.Max.Y
				case geom.North:
					gap = a.Bounds.Min.Y - b.Bounds.Max.Y
				}
				if gap > 0 {
					gapped = true
				}
			}
		}
		if gapped && outside == 0 {
			t.Errorf("seed %d: aligned rooms with a gap but no path tiles outside the rooms", seed)
		}
	}
}

func TestGenerateAlignedRoomsConnected(t *testing.T) {
	for _, depth := range []int{0, 2, 5, 9} {
		for seed := int64(1); seed <= 40; seed++ {
			m := generate(depth, seed)
			for i, a := range m.Rooms {
				reach := m.Reachable(a.Bounds.Center())
				for _, b := range m.Rooms[i+1:] {
					dir, ok := adjacent(a.Cell, b.Cell)
					if !ok || !aligned(a, b, dir) {
						continue
					}
					if !reach[b.Bounds.Center()] {
						t.Errorf("depth %d seed %d: room %v not reachable from room %v", depth, seed, b.Cell, a.Cell)
					}
				}
			}
		}
	}
}

func TestGenerateExitUsuallyReachable(t *testing.T) {
	const levels = 200
	reached := 0
	for seed := int64(1); seed <= levels; seed++ {
		m := generate(2, seed)
		if m.Reachable(m.Entry)[m.Exit] {
			reached++
		}
	}
	// Misaligned neighbours stay disconnected, so not every level is
	// finishable; well over a third must be.
	if reached < levels/3 {
		t.Errorf("exit reachable in %d of %d levels", reached, levels)
	}
}
