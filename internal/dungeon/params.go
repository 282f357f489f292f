package dungeon

// Params contains the tunables for one level.
type Params struct {
	Depth      int // Level index, 0 for the first level
	FinalDepth int // Depth of the boss level; it gets no LadderDown

	RoomCountMin  int
	RoomCountMax  int
	RoomWidthMin  int // Floor width, excluding walls
	RoomWidthMax  int
	RoomHeightMin int
	RoomHeightMax int

	SlotSize       int // Side of one logical room-grid cell, in tiles
	CorridorSearch int // Steps a corridor may walk from its room centre

	SpawnBase     float64 // Spawn markers per room at depth 0
	SpawnPerDepth float64
	SpawnMin      int
	SpawnMax      int
}

// DefaultParams returns the stock tuning for depth.
func DefaultParams(depth int) Params {
	return Params{
		Depth:          depth,
		FinalDepth:     9,
		RoomCountMin:   6,
		RoomCountMax:   10,
		RoomWidthMin:   4,
		RoomWidthMax:   8,
		RoomHeightMin:  4,
		RoomHeightMax:  7,
		SlotSize:       12,
		CorridorSearch: 24,
		SpawnBase:      1,
		SpawnPerDepth:  0.4,
		SpawnMin:       1,
		SpawnMax:       4,
	}
}

// IsFinal reports whether this is the boss level.
func (p Params) IsFinal() bool {
	return p.Depth >= p.FinalDepth
}

// SpawnsPerRoom is the clamped linear spawn-marker count for the depth.
func (p Params) SpawnsPerRoom() int {
	n := int(p.SpawnBase + p.SpawnPerDepth*float64(p.Depth))
	if n < p.SpawnMin {
		n = p.SpawnMin
	}
	if p.SpawnMax > 0 && n > p.SpawnMax {
		n = p.SpawnMax
	}
	return n
}

// normalized fixes ranges that cannot produce a level: swapped bounds, rooms
// that do not fit their slot, non-positive counts.
func (p Params) normalized() Params {
	if p.RoomCountMin < 1 {
		p.RoomCountMin = 1
	}
	if p.RoomCountMax < p.RoomCountMin {
		p.RoomCountMax = p.RoomCountMin
	}
	if p.RoomWidthMin < 1 {
		p.RoomWidthMin = 1
	}
	if p.RoomWidthMax < p.RoomWidthMin {
		p.RoomWidthMax = p.RoomWidthMin
	}
	if p.RoomHeightMin < 1 {
		p.RoomHeightMin = 1
	}
	if p.RoomHeightMax < p.RoomHeightMin {
		p.RoomHeightMax = p.RoomHeightMin
	}
	// A room plus its wall ring must fit with one spare tile for a corridor.
	need := max(p.RoomWidthMax, p.RoomHeightMax) + 3
	if p.SlotSize < need {
		p.SlotSize = need
	}
	if p.CorridorSearch <= 0 {
		p.CorridorSearch = 2 * p.SlotSize
	}
	return p
}
