package game

import (
	"sync"

	"github.com/lawnchairsociety/nightmareinsilver/internal/enemy"
	"github.com/lawnchairsociety/nightmareinsilver/internal/geom"
)

// CueKind classifies fire-and-forget presentation events.
type CueKind int

const (
	CueStep      CueKind = iota // Player relocated
	CueBump                     // Blocked move
	CueAttack                   // Player hit an enemy
	CueDamage                   // Floating number over a target
	CueDeath                    // Enemy died; Sound holds the pool key
	CuePickup                   // Money or battery collected
	CueHurt                     // Enemy contact drained the battery
	CueWrongMove                // Low connection replaced the move
	CueSelect                   // Attack element changed
	CueStatus                   // Connection status on level entry; Label holds it
)

var cueNames = [...]string{
	CueStep:      "step",
	CueBump:      "bump",
	CueAttack:    "attack",
	CueDamage:    "damage",
	CueDeath:     "death",
	CuePickup:    "pickup",
	CueHurt:      "hurt",
	CueWrongMove: "wrong_move",
	CueSelect:    "select",
	CueStatus:    "status",
}

func (k CueKind) String() string {
	if k < 0 || int(k) >= len(cueNames) {
		return "unknown"
	}
	return cueNames[k]
}

// Cue is one presentation event.
type Cue struct {
	Kind    CueKind       `json:"kind"`
	Pos     geom.Vec      `json:"pos"`
	Label   string        `json:"label,omitempty"`
	Sound   string        `json:"sound,omitempty"`
	Element enemy.Element `json:"element"`
}

// Sink receives cues. Implementations must not block.
type Sink interface {
	Cue(c Cue)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Cue)

func (f SinkFunc) Cue(c Cue) { f(c) }

// Sinks fans a cue out to several sinks.
type Sinks []Sink

func (s Sinks) Cue(c Cue) {
	for _, sink := range s {
		if sink != nil {
			sink.Cue(c)
		}
	}
}

// CueBuffer collects cues until drained.
type CueBuffer struct {
	mu   sync.Mutex
	cues []Cue
}

func (b *CueBuffer) Cue(c Cue) {
	b.mu.Lock()
	b.cues = append(b.cues, c)
	b.mu.Unlock()
}

// Drain returns and clears the buffered cues.
func (b *CueBuffer) Drain() []Cue {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.cues
	b.cues = nil
	return out
}

// State is a high-level play transition the game asks its host to perform.
type State int

const (
	StateShop State = iota
	StateNextLevel
	StateGameOver
	StateGameWon
	StatePause
)

func (s State) String() string {
	switch s {
	case StateShop:
		return "shop"
	case StateNextLevel:
		return "next_level"
	case StateGameOver:
		return "game_over"
	case StateGameWon:
		return "game_won"
	case StatePause:
		return "pause"
	default:
		return "unknown"
	}
}

// Ends reports whether the request ends the current level.
func (s State) Ends() bool { return s != StatePause }

// StateSink receives transition requests.
type StateSink interface {
	Request(s State)
}

// StateFunc adapts a function to StateSink.
type StateFunc func(State)

func (f StateFunc) Request(s State) { f(s) }
