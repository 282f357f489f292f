package game

import (
	"strconv"

	"github.com/lawnchairsociety/nightmareinsilver/internal/combat"
	"github.com/lawnchairsociety/nightmareinsilver/internal/dungeon"
	"github.com/lawnchairsociety/nightmareinsilver/internal/enemy"
	"github.com/lawnchairsociety/nightmareinsilver/internal/geom"
	"github.com/lawnchairsociety/nightmareinsilver/internal/logger"
	"github.com/lawnchairsociety/nightmareinsilver/internal/motion"
	"github.com/lawnchairsociety/nightmareinsilver/internal/progress"
	"github.com/lawnchairsociety/nightmareinsilver/internal/rng"
)

// Context is the state every phase of a tick reads and writes. The scratch
// fields carry intents from one phase to the next and are cleared at the
// start of each tick.
type Context struct {
	Level    *Level
	Save     *progress.SaveData
	Rules    Rules
	Input    Input
	Rand     rng.Source
	Resolver *combat.Resolver
	Cues     Sink
	States   StateSink

	playerDir   geom.Direction
	playerMoves bool
	enemyMoves  []enemyMove
	contacts    []int // Enemies that bumped into the player
	hits        []int // Enemies the player attacked
}

type enemyMove struct {
	id  int
	dir geom.Direction
}

func (c *Context) reset() {
	c.playerMoves = false
	c.enemyMoves = c.enemyMoves[:0]
	c.contacts = c.contacts[:0]
	c.hits = c.hits[:0]
}

func (c *Context) cue(cue Cue) {
	if c.Cues != nil {
		c.Cues.Cue(cue)
	}
}

// request forwards a transition. Level-ending requests are sent once; the
// level then ignores input until the host acts on it or cancels it.
func (c *Context) request(s State) {
	l := c.Level
	if s.Ends() {
		if l.ended {
			return
		}
		l.ended = true
		l.pending = s
	}
	logger.Debug("State requested", "state", s.String(), "depth", l.Depth)
	if c.States != nil {
		c.States.Request(s)
	}
}

func (c *Context) endPlayerTurn() {
	if c.Level.Turn.EndPlayerTurn() {
		logger.Debug("Turn changed", "turn", EnemyTurn.String(), "depth", c.Level.Depth)
	}
}

// Phase is one named step of a tick.
type Phase struct {
	Name string
	Run  func(c *Context, dt float64)
}

// Pipeline returns the phases in the order they run every tick.
func Pipeline() []Phase {
	return []Phase{
		{Name: "tick", Run: TickPhase},
		{Name: "move", Run: MovePhase},
		{Name: "collision", Run: CollisionPhase},
		{Name: "events", Run: EventPhase},
		{Name: "animation", Run: AnimationPhase},
	}
}

// RunTick runs one tick through phases.
func RunTick(phases []Phase, c *Context, dt float64) {
	if c.Level == nil {
		return
	}
	c.reset()
	for _, p := range phases {
		p.Run(c, dt)
	}
}

// TickPhase advances the enemy turn timer, plans enemy steps and reads the
// player's input.
func TickPhase(c *Context, dt float64) {
	l := c.Level

	step := l.Turn.Tick(dt)
	if step.MoveEnemies && !l.ended {
		planEnemyMoves(c)
	}
	if step.Finished {
		logger.Debug("Turn changed", "turn", PlayerTurn.String(), "depth", l.Depth)
	}

	if c.Input == nil || !l.PlayerReady() {
		return
	}
	if c.Input.JustPressed(ActionPause) {
		c.request(StatePause)
		return
	}
	selectAttack(c)

	dir, ok := c.Input.Movement()
	if !ok {
		return
	}
	if p := c.Rules.WrongMoveChance(l.Depth, c.Save.RangeLevel); rng.Chance(c.Rand, p) {
		dir = geom.AllDirections()[rng.Pick(c.Rand, 4)]
		c.cue(Cue{Kind: CueWrongMove, Pos: l.Player.Pos})
	}
	c.playerDir, c.playerMoves = dir, true
}

func planEnemyMoves(c *Context) {
	l := c.Level
	for _, id := range l.EnemyIDs() {
		e := l.Enemies[id]
		if e.Stationary() || !e.Alive() {
			continue
		}
		if !rng.Chance(c.Rand, c.Rules.EnemyMoveChance) {
			continue
		}
		dir := geom.AllDirections()[rng.Pick(c.Rand, 4)]
		c.enemyMoves = append(c.enemyMoves, enemyMove{id: id, dir: dir})
	}
}

func selectAttack(c *Context) {
	in := c.Input
	sel := c.Save.AttackSelected
	switch {
	case in.JustPressed(ActionAttackRegular):
		sel = enemy.Basic
	case in.JustPressed(ActionAttackFire):
		sel = enemy.Fire
	case in.JustPressed(ActionAttackWater):
		sel = enemy.Water
	case in.JustPressed(ActionAttackGrass):
		sel = enemy.Grass
	case in.JustPressed(ActionNextAttack):
		sel = sel.Next()
	case in.JustPressed(ActionPreviousAttack):
		sel = sel.Prev()
	}
	if sel != c.Save.AttackSelected {
		c.Save.AttackSelected = sel
		c.cue(Cue{Kind: CueSelect, Pos: c.Level.Player.Pos, Element: sel})
	}
}

// MovePhase applies the player's move, then each planned enemy step.
func MovePhase(c *Context, dt float64) {
	if c.playerMoves {
		movePlayer(c, c.playerDir)
	}
	for _, m := range c.enemyMoves {
		moveEnemy(c, m)
	}
}

func movePlayer(c *Context, dir geom.Direction) {
	l := c.Level
	from := l.Player.Pos
	to := from.Step(dir)
	start := geom.ToWorld(from)
	l.Player.Facing = dir

	if e, ok := l.EnemyAt(to); ok {
		c.hits = append(c.hits, e.ID)
		l.Anim.Begin(PlayerID, motion.NewBump(start, dir, c.Rules.MoveSeconds))
		c.cue(Cue{Kind: CueAttack, Pos: to, Element: c.Save.AttackSelected})
		c.endPlayerTurn()
		return
	}

	kind, ok := l.Map.Kind(to)
	switch {
	case !ok || !kind.Walkable():
		l.Anim.Begin(PlayerID, motion.NewBump(start, dir, c.Rules.MoveSeconds))
		c.cue(Cue{Kind: CueBump, Pos: from})
		return
	case kind == dungeon.LadderDown:
		c.request(StateNextLevel)
		return
	case kind == dungeon.LadderUp:
		c.request(StateShop)
		return
	}

	l.Player.Pos = to
	l.Anim.Begin(PlayerID, motion.NewMoveTo(start, geom.ToWorld(to), c.Rules.MoveSeconds))
	c.Save.DrainBattery(1)
	c.cue(Cue{Kind: CueStep, Pos: to})
	c.endPlayerTurn()
}

func moveEnemy(c *Context, m enemyMove) {
	l := c.Level
	e, ok := l.Enemies[m.id]
	if !ok {
		return
	}
	from := e.Pos
	to := from.Step(m.dir)
	start := geom.ToWorld(from)

	if to == l.Player.Pos {
		l.Anim.Begin(e.ID, motion.NewBump(start, m.dir, c.Rules.MoveSeconds))
		c.contacts = append(c.contacts, e.ID)
		return
	}
	if kind, ok := l.Map.Kind(to); !ok || kind != dungeon.Ground {
		return
	}
	if !l.Map.MoveOccupant(from, to) {
		return
	}
	e.Pos = to
	l.Anim.Begin(e.ID, motion.NewMoveTo(start, geom.ToWorld(to), c.Rules.MoveSeconds))
}

// CollisionPhase drains the battery for every enemy that ran into the player.
func CollisionPhase(c *Context, dt float64) {
	l := c.Level
	for _, id := range c.contacts {
		e, ok := l.Enemies[id]
		if !ok {
			continue
		}
		if drained := c.Resolver.Contact(e, c.Save); drained > 0 {
			c.cue(Cue{Kind: CueHurt, Pos: l.Player.Pos, Label: "-" + strconv.Itoa(drained)})
		}
	}
}

// EventPhase resolves the player's hits, removes the dead and checks whether
// the run is over.
func EventPhase(c *Context, dt float64) {
	l := c.Level
	for _, id := range c.hits {
		e, ok := l.Enemies[id]
		if !ok {
			continue
		}
		pos := e.Pos
		res := c.Resolver.Resolve(e, c.Save)

		switch {
		case res.Won:
			logger.Always("Game won", "kills", c.Save.EnemiesKilled, "deaths", c.Save.Deaths, "score", c.Save.Score())
			c.request(StateGameWon)
		case res.Collected:
			label := "+" + strconv.Itoa(res.Reward)
			if e.Type == enemy.Battery {
				label = "+" + strconv.Itoa(res.Restored)
			}
			c.cue(Cue{Kind: CuePickup, Pos: pos, Label: label})
		default:
			c.cue(Cue{Kind: CueDamage, Pos: pos, Label: res.Label, Element: c.Save.AttackSelected})
		}
		if res.DeathCue != "" {
			c.cue(Cue{Kind: CueDeath, Pos: pos, Sound: res.DeathCue})
		}
		if res.Killed {
			if !e.Type.IsPickup() && e.Type != enemy.EndGameArtifact {
				logger.Info("Enemy killed", "type", e.Type.String(), "element", e.Element.String(), "reward", res.Reward, "depth", l.Depth)
			}
			l.Remove(id)
		}
	}

	if c.Save.BatteryEmpty() && !l.ended {
		logger.Info("Battery empty", "depth", l.Depth, "money", c.Save.Money)
		c.request(StateGameOver)
	}
}

// AnimationPhase advances every MoveTo and drops the finished ones.
func AnimationPhase(c *Context, dt float64) {
	c.Level.Anim.Tick(dt)
}
