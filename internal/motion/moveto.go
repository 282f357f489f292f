package motion

import (
	"math"
	"sort"

	"github.com/lawnchairsociety/nightmareinsilver/internal/geom"
)

// DefaultDuration is the length of one step animation.
const DefaultDuration = 0.15

// BumpDistance is the peak recoil offset of a bump, a quarter tile.
const BumpDistance = geom.TileSep / 4

// MoveTo interpolates one entity from Start to Target, or bumps toward Bump
// and back when the move was blocked.
type MoveTo struct {
	Start   geom.World
	Target  geom.World
	Bump    geom.Direction
	HasBump bool
	timer   Timer
}

// NewMoveTo starts a straight move.
func NewMoveTo(start, target geom.World, seconds float64) *MoveTo {
	return &MoveTo{Start: start, Target: target, timer: NewTimer(seconds)}
}

// NewBump starts a blocked-move recoil toward dir.
func NewBump(start geom.World, dir geom.Direction, seconds float64) *MoveTo {
	return &MoveTo{Start: start, Target: start, Bump: dir, HasBump: true, timer: NewTimer(seconds)}
}

// Position is the visual position at the current fraction.
func (m *MoveTo) Position() geom.World {
	t := m.timer.Fraction()
	if m.HasBump {
		if m.timer.Finished() {
			return m.Start
		}
		offset := math.Sin(t*math.Pi) * BumpDistance
		return m.Start.Add(m.Bump.Unit().Scale(offset))
	}
	return m.Start.Lerp(m.Target, t)
}

// Tick advances the animation and returns the new position and whether it
// finished on this tick.
func (m *MoveTo) Tick(dt float64) (geom.World, bool) {
	done := m.timer.Tick(dt)
	return m.Position(), done
}

// Fraction exposes the timer fraction.
func (m *MoveTo) Fraction() float64 { return m.timer.Fraction() }

// Animator holds at most one active MoveTo per entity id.
type Animator struct {
	active map[int]*MoveTo
	pos    map[int]geom.World
}

// NewAnimator creates an empty animator.
func NewAnimator() *Animator {
	return &Animator{active: make(map[int]*MoveTo), pos: make(map[int]geom.World)}
}

// Begin installs m for id, replacing any directive already running.
func (a *Animator) Begin(id int, m *MoveTo) {
	a.active[id] = m
	a.pos[id] = m.Position()
}

// Tick advances every directive and returns the ids that completed this tick,
// in ascending order. Completed directives are removed.
func (a *Animator) Tick(dt float64) []int {
	var done []int
	for id, m := range a.active {
		pos, finished := m.Tick(dt)
		a.pos[id] = pos
		if finished {
			delete(a.active, id)
			done = append(done, id)
		}
	}
	sort.Ints(done)
	return done
}

// Active reports whether id has a running directive.
func (a *Animator) Active(id int) bool {
	_, ok := a.active[id]
	return ok
}

// Busy reports whether any directive is running.
func (a *Animator) Busy() bool { return len(a.active) > 0 }

// Len is the number of running directives.
func (a *Animator) Len() int { return len(a.active) }

// Position returns the last visual position computed for id.
func (a *Animator) Position(id int) (geom.World, bool) {
	p, ok := a.pos[id]
	return p, ok
}

// Place sets a resting position for id without animating.
func (a *Animator) Place(id int, p geom.World) {
	delete(a.active, id)
	a.pos[id] = p
}

// Forget drops every trace of id.
func (a *Animator) Forget(id int) {
	delete(a.active, id)
	delete(a.pos, id)
}

// Clear drops everything, as on a level change.
func (a *Animator) Clear() {
	a.active = make(map[int]*MoveTo)
	a.pos = make(map[int]geom.World)
}
