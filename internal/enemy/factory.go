package enemy

import (
	"github.com/lawnchairsociety/nightmareinsilver/internal/geom"
	"github.com/lawnchairsociety/nightmareinsilver/internal/rng"
)

// Factory creates enemies for a level.
type Factory struct {
	table      *Table
	finalDepth int
	rng        rng.Source
	nextID     int
}

// NewFactory creates a factory drawing from table. A nil table uses the
// built-in one.
func NewFactory(table *Table, finalDepth int, src rng.Source) *Factory {
	if table == nil {
		table = DefaultTable()
	}
	return &Factory{table: table, finalDepth: finalDepth, rng: src}
}

// IsFinal reports whether depth is the boss level or past it, matching
// dungeon.Params.IsFinal.
func (f *Factory) IsFinal(depth int) bool { return depth >= f.finalDepth }

// Table returns the factory's table.
func (f *Factory) Table() *Table { return f.table }

// DrawType samples a type from the depth row.
func (f *Factory) DrawType(depth int) Type {
	idx := rng.Weighted(f.rng, f.table.Row(depth))
	if idx < 0 {
		return Chicken
	}
	return Type(idx)
}

// Spawn produces the next enemy for depth. On the final depth (or any deeper
// one) the first call
// with *uniqueUsed false yields the artifact and sets the flag; every other
// call draws from the weight table.
func (f *Factory) Spawn(depth int, uniqueUsed *bool) Enemy {
	if f.IsFinal(depth) && uniqueUsed != nil && !*uniqueUsed {
		*uniqueUsed = true
		e := f.build(EndGameArtifact)
		e.Unique = true
		return e
	}
	return f.build(f.DrawType(depth))
}

// SpawnAt is Spawn with a position.
func (f *Factory) SpawnAt(pos geom.Vec, depth int, uniqueUsed *bool) Enemy {
	e := f.Spawn(depth, uniqueUsed)
	e.Pos = pos
	return e
}

func (f *Factory) build(typ Type) Enemy {
	stats := f.table.StatsFor(typ)
	f.nextID++

	e := Enemy{
		ID:      f.nextID,
		Health:  stats.Health,
		Type:    typ,
		Element: Basic,
		Sprite:  stats.SpriteFor(f.rng),
	}
	if !typ.IsPickup() && typ != EndGameArtifact {
		e.Element = Element(f.rng.Intn(NumElements))
	}
	return e
}
