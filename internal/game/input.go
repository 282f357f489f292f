package game

import (
	"fmt"
	"strings"
	"sync"

	"github.com/lawnchairsociety/nightmareinsilver/internal/geom"
)

// Action is an abstract input identifier. Hosts map keys or messages onto
// these; the game never sees physical input.
type Action int

const (
	ActionNone Action = iota
	ActionMove
	ActionAttackRegular
	ActionAttackFire
	ActionAttackWater
	ActionAttackGrass
	ActionNextAttack
	ActionPreviousAttack
	ActionPause
	numActions
)

var actionNames = [...]string{
	ActionNone:           "none",
	ActionMove:           "move",
	ActionAttackRegular:  "attack_regular",
	ActionAttackFire:     "attack_fire",
	ActionAttackWater:    "attack_water",
	ActionAttackGrass:    "attack_grass",
	ActionNextAttack:     "next_attack",
	ActionPreviousAttack: "previous_attack",
	ActionPause:          "pause",
}

func (a Action) String() string {
	if a < 0 || a >= numActions {
		return "unknown"
	}
	return actionNames[a]
}

// ParseAction converts a wire name into an Action.
func ParseAction(s string) (Action, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range actionNames {
		if Action(i) != ActionNone && name == s {
			return Action(i), nil
		}
	}
	return ActionNone, fmt.Errorf("unknown action %q", s)
}

// Input is queried once per tick.
type Input interface {
	// Movement returns the direction of a move pressed this tick.
	Movement() (geom.Direction, bool)
	// JustPressed reports whether a discrete action was pressed this tick.
	JustPressed(a Action) bool
}

// Frame is the input of a single tick.
type Frame struct {
	Dir     geom.Direction
	HasMove bool
	pressed [numActions]bool
}

// Press marks a discrete action.
func (f *Frame) Press(a Action) {
	if a > ActionNone && a < numActions {
		f.pressed[a] = true
	}
}

// Move marks a move in dir.
func (f *Frame) Move(dir geom.Direction) {
	f.Dir, f.HasMove = dir, true
	f.Press(ActionMove)
}

func (f Frame) Movement() (geom.Direction, bool) { return f.Dir, f.HasMove }

func (f Frame) JustPressed(a Action) bool {
	return a > ActionNone && a < numActions && f.pressed[a]
}

// NoInput is an empty frame.
var NoInput Input = Frame{}

// Command is one queued action from a host.
type Command struct {
	Action Action
	Dir    geom.Direction // For ActionMove
}

// InputQueue buffers commands pushed from another goroutine (a terminal event
// poller or a websocket reader) and hands out one per tick.
type InputQueue struct {
	mu       sync.Mutex
	commands []Command
	limit    int
}

// NewInputQueue creates a queue holding at most limit commands; extra pushes
// are dropped so a flooding client cannot queue moves far ahead.
func NewInputQueue(limit int) *InputQueue {
	if limit <= 0 {
		limit = 8
	}
	return &InputQueue{limit: limit}
}

// Push appends a command. It returns false when the queue is full.
func (q *InputQueue) Push(c Command) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.commands) >= q.limit {
		return false
	}
	q.commands = append(q.commands, c)
	return true
}

// Len is the number of buffered commands.
func (q *InputQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.commands)
}

// Clear drops buffered commands, as on a level change.
func (q *InputQueue) Clear() {
	q.mu.Lock()
	q.commands = q.commands[:0]
	q.mu.Unlock()
}

// Next pops the oldest command as a Frame. With ready false the queue is left
// alone and an empty frame is returned, so input typed during an animation
// waits for the player's turn instead of being lost.
func (q *InputQueue) Next(ready bool) Frame {
	var f Frame
	if !ready {
		return f
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.commands) == 0 {
		return f
	}
	c := q.commands[0]
	q.commands = q.commands[1:]
	if c.Action == ActionMove {
		f.Move(c.Dir)
	} else {
		f.Press(c.Action)
	}
	return f
}
