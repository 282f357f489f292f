package game

import (
	"sort"

	"github.com/lawnchairsociety/nightmareinsilver/internal/dungeon"
	"github.com/lawnchairsociety/nightmareinsilver/internal/enemy"
	"github.com/lawnchairsociety/nightmareinsilver/internal/geom"
	"github.com/lawnchairsociety/nightmareinsilver/internal/motion"
)

// PlayerID is the player's handle in the animator. Enemy ids start at 1.
const PlayerID = 0

// Player is the player's place on the current level. Progression lives in
// progress.SaveData.
type Player struct {
	Pos    geom.Vec
	Facing geom.Direction
}

// Level owns everything scoped to one dungeon floor: the tilemap, the enemies
// by id, the player, animations and the turn. Dropping the Level drops them
// all at once.
type Level struct {
	Depth      int
	Map        *dungeon.Tilemap
	Enemies    map[int]*enemy.Enemy
	UniqueUsed bool

	Player Player
	Anim   *motion.Animator
	Turn   *TurnController

	// ended is set once a level-ending transition was requested; the level
	// ignores input from then on.
	ended   bool
	pending State
}

// NewLevel places the player on the entry ladder and spawns one enemy per
// spawn marker. On the final depth the artifact takes the Final tile.
func NewLevel(m *dungeon.Tilemap, factory *enemy.Factory, rules Rules) *Level {
	l := &Level{
		Depth:   m.Depth,
		Map:     m,
		Enemies: make(map[int]*enemy.Enemy),
		Player:  Player{Pos: m.Entry, Facing: geom.South},
		Anim:    motion.NewAnimator(),
		Turn:    NewTurnController(rules.EnemyTurnSeconds, rules.EnemyMoveFraction),
	}
	l.Anim.Place(PlayerID, geom.ToWorld(l.Player.Pos))

	var spots []geom.Vec
	if m.HasFinal {
		spots = append(spots, m.FinalPos)
	}
	spots = append(spots, m.SpawnMarkers()...)

	for _, pos := range spots {
		if pos == l.Player.Pos {
			continue
		}
		e := factory.SpawnAt(pos, l.Depth, &l.UniqueUsed)
		l.Add(&e)
	}
	return l
}

// Add puts e on the level. It returns false if its tile is already taken.
func (l *Level) Add(e *enemy.Enemy) bool {
	if !l.Map.Occupy(e.Pos, e.ID) {
		return false
	}
	l.Enemies[e.ID] = e
	l.Anim.Place(e.ID, geom.ToWorld(e.Pos))
	return true
}

// Remove takes an enemy off the level. Unknown ids are ignored.
func (l *Level) Remove(id int) {
	e, ok := l.Enemies[id]
	if !ok {
		return
	}
	if cur, ok := l.Map.OccupantAt(e.Pos); ok && cur == id {
		l.Map.Vacate(e.Pos)
	}
	delete(l.Enemies, id)
	l.Anim.Forget(id)
}

// EnemyAt returns the enemy standing on pos.
func (l *Level) EnemyAt(pos geom.Vec) (*enemy.Enemy, bool) {
	id, ok := l.Map.OccupantAt(pos)
	if !ok {
		return nil, false
	}
	e, ok := l.Enemies[id]
	return e, ok
}

// EnemyIDs returns the enemy ids in ascending order, the order every phase
// visits them in.
func (l *Level) EnemyIDs() []int {
	ids := make([]int, 0, len(l.Enemies))
	for id := range l.Enemies {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Ended reports whether a level-ending transition was requested.
func (l *Level) Ended() bool { return l.ended }

// Pending returns the level-ending transition awaiting the host.
func (l *Level) Pending() (State, bool) {
	return l.pending, l.ended
}

// Cancel withdraws a pending shop or next-level request, as when the player
// backs out of the confirmation. Game over and game won cannot be withdrawn.
func (l *Level) Cancel() bool {
	if !l.ended || (l.pending != StateShop && l.pending != StateNextLevel) {
		return false
	}
	l.ended = false
	return true
}

// PlayerReady reports whether the player may act this tick.
func (l *Level) PlayerReady() bool {
	return !l.ended && l.Turn.State() == PlayerTurn && !l.Anim.Active(PlayerID)
}
