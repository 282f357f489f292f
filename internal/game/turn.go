package game

import "github.com/lawnchairsociety/nightmareinsilver/internal/motion"

// TurnState says who may act.
type TurnState int

const (
	PlayerTurn TurnState = iota
	EnemyTurn
)

func (s TurnState) String() string {
	if s == EnemyTurn {
		return "enemy"
	}
	return "player"
}

// TurnStep is what the enemy turn asks for on one tick. Each flag is set on
// exactly one tick per enemy turn.
type TurnStep struct {
	MoveEnemies bool
	Finished    bool
}

// TurnController alternates between the player's turn and a timed enemy turn.
// Enemies move once the timer passes moveFraction of its duration.
type TurnController struct {
	state        TurnState
	timer        motion.Timer
	moveFraction float64
	moved        bool
}

// NewTurnController creates a controller starting on the player's turn.
func NewTurnController(seconds, moveFraction float64) *TurnController {
	return &TurnController{timer: motion.NewTimer(seconds), moveFraction: moveFraction}
}

// State returns the current turn.
func (t *TurnController) State() TurnState { return t.state }

// EndPlayerTurn hands the turn to the enemies. It returns false when it is
// not the player's turn, so a second request in the same turn is ignored.
func (t *TurnController) EndPlayerTurn() bool {
	if t.state != PlayerTurn {
		return false
	}
	t.state = EnemyTurn
	t.timer.Reset()
	t.moved = false
	return true
}

// Tick advances the enemy turn timer. It does nothing on the player's turn.
func (t *TurnController) Tick(dt float64) TurnStep {
	var step TurnStep
	if t.state != EnemyTurn {
		return step
	}
	finished := t.timer.Tick(dt)
	if !t.moved && (t.timer.Fraction() >= t.moveFraction || finished) {
		t.moved = true
		step.MoveEnemies = true
	}
	if finished {
		t.state = PlayerTurn
		step.Finished = true
	}
	return step
}
