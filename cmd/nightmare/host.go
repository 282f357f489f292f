package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lawnchairsociety/nightmareinsilver/internal/config"
	"github.com/lawnchairsociety/nightmareinsilver/internal/database"
	"github.com/lawnchairsociety/nightmareinsilver/internal/dungeon"
	"github.com/lawnchairsociety/nightmareinsilver/internal/enemy"
	"github.com/lawnchairsociety/nightmareinsilver/internal/game"
	"github.com/lawnchairsociety/nightmareinsilver/internal/geom"
	"github.com/lawnchairsociety/nightmareinsilver/internal/logger"
	"github.com/lawnchairsociety/nightmareinsilver/internal/progress"
)

// maxMessages is how many cue lines stay under the map.
const maxMessages = 2

type mode int

const (
	modeShop mode = iota
	modePlay
	modeConfirm // A level-ending request waits for y/n
	modePaused
	modeResult // Game over or won, any key returns to the shop
)

// runRecorder keeps finished runs for the score board.
type runRecorder interface {
	RecordRun(ctx context.Context, r database.RunRecord) error
}

// host drives one session in the terminal. All methods run on the loop
// goroutine.
type host struct {
	screen  tcell.Screen
	session *game.Session
	queue   *game.InputQueue
	cues    *game.CueBuffer
	runs    runRecorder

	requests []game.State
	mode     mode
	confirm  game.State
	shopRow  int
	result   string
	messages []string
	notice   string // Shop feedback line

	level *game.Level // Level the tile cache was built for
	tiles map[geom.Vec]dungeon.Kind

	quit bool
}

type hostOptions struct {
	Config  *config.Config
	Profile string
	Save    progress.SaveData
	Store   progress.Store
	Table   *enemy.Table
	Runs    runRecorder
	Sink    game.Sink // Extra cue sink, usually audio
}

func newHost(screen tcell.Screen, opts hostOptions) *host {
	h := &host{
		screen: screen,
		queue:  game.NewInputQueue(4),
		cues:   &game.CueBuffer{},
		runs:   opts.Runs,
	}
	rules := game.NewRules(opts.Config)
	gen := opts.Config.Generation
	h.session = game.NewSession(opts.Profile, opts.Save, game.Options{
		Rules:      &rules,
		Generation: &gen,
		Table:      opts.Table,
		Store:      opts.Store,
		Cues:       game.Sinks{opts.Sink, h.cues},
		States:     game.StateFunc(func(st game.State) { h.requests = append(h.requests, st) }),
	})
	return h
}

// run polls terminal events on a goroutine and ticks the session at ~60 FPS
// until the player quits.
func (h *host) run() {
	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := h.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	last := time.Now()
	for !h.quit {
		select {
		case ev := <-eventChan:
			h.handleEvent(ev)
		case now := <-ticker.C:
			h.tick(now.Sub(last).Seconds())
			last = now
			h.draw()
		}
	}
}

func (h *host) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		h.handleKey(ev.Key(), ev.Rune())
	case *tcell.EventResize:
		h.screen.Sync()
	}
}

func (h *host) handleKey(key tcell.Key, r rune) {
	if key == tcell.KeyCtrlC {
		h.quit = true
		return
	}
	switch h.mode {
	case modeShop:
		h.shopKey(key, r)
	case modePlay:
		if cmd, ok := playCommand(key, r); ok {
			h.queue.Push(cmd)
		}
	case modeConfirm:
		switch {
		case isYes(key, r):
			h.confirmPending()
		case isNo(key, r):
			if h.session.Cancel() {
				h.mode = modePlay
			}
		}
	case modePaused:
		switch {
		case key == tcell.KeyRune && r == 'x':
			h.quit = true
		case isYes(key, r), isNo(key, r), key == tcell.KeyRune && r == 'p':
			h.mode = modePlay
		}
	case modeResult:
		h.mode = modeShop
	}
}

func (h *host) shopKey(key tcell.Key, r rune) {
	rows := progress.AllUpgrades()
	s := h.session
	var err error
	switch {
	case key == tcell.KeyUp || (key == tcell.KeyRune && (r == 'k' || r == 'w')):
		h.shopRow = (h.shopRow + len(rows) - 1) % len(rows)
	case key == tcell.KeyDown || (key == tcell.KeyRune && (r == 'j' || r == 's')):
		h.shopRow = (h.shopRow + 1) % len(rows)
	case key == tcell.KeyEnter || (key == tcell.KeyRune && r == 'b'):
		err = s.Buy(rows[h.shopRow])
		h.notice = "bought " + rows[h.shopRow].String()
	case key == tcell.KeyRune && r == 'r':
		err = s.Refund(rows[h.shopRow])
		h.notice = "refunded " + rows[h.shopRow].String()
	case key == tcell.KeyRune && r == 'n':
		s.StartRun()
		h.enterPlay()
	case key == tcell.KeyRune && r == 'c':
		s.Resume()
		h.enterPlay()
	case key == tcell.KeyEscape || (key == tcell.KeyRune && r == 'x'):
		h.quit = true
	}
	if err != nil {
		h.notice = err.Error()
	}
}

func (h *host) enterPlay() {
	h.mode = modePlay
	h.queue.Clear()
	h.messages = h.messages[:0]
	h.notice = ""
	h.absorbCues()
}

// tick advances play and turns the session's cues and requests into host
// state.
func (h *host) tick(dt float64) {
	s := h.session
	if h.mode != modePlay || !s.InRun() {
		return
	}
	s.Tick(dt, h.queue.Next(s.Level.PlayerReady()))
	h.absorbCues()

	for _, st := range h.requests {
		if st == game.StatePause {
			h.mode = modePaused
			continue
		}
		h.mode = modeConfirm
		h.confirm = st
	}
	h.requests = h.requests[:0]
}

func (h *host) absorbCues() {
	for _, c := range h.cues.Drain() {
		if msg := describeCue(c); msg != "" {
			h.messages = append(h.messages, msg)
		}
	}
	if n := len(h.messages); n > maxMessages {
		h.messages = append(h.messages[:0], h.messages[n-maxMessages:]...)
	}
}

// confirmPending carries out the level-ending request the player accepted.
func (h *host) confirmPending() {
	s := h.session
	st := h.confirm
	h.queue.Clear()
	switch st {
	case game.StateNextLevel:
		s.NextLevel()
		h.enterPlay()
		return
	case game.StateShop:
		s.ReturnToShop()
		h.mode = modeShop
	case game.StateGameOver:
		depth := s.Save.Level
		lost := s.GameOver()
		h.record(database.RunRecord{Profile: s.Profile, Score: s.Save.Score(), Depth: depth, Kills: s.Save.EnemiesKilled})
		h.result = fmt.Sprintf("Your battery died on level %d. Lost %d money.", depth, lost)
		h.mode = modeResult
	case game.StateGameWon:
		depth := s.Save.Level
		score := s.Win()
		h.record(database.RunRecord{Profile: s.Profile, Score: score, Depth: depth, Kills: s.Save.EnemiesKilled, Won: true})
		h.result = fmt.Sprintf("You found the artifact! Score %d.", score)
		h.mode = modeResult
	}
}

func (h *host) record(r database.RunRecord) {
	if h.runs == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.runs.RecordRun(ctx, r); err != nil {
		logger.Error("Failed to record run", "profile", r.Profile, "error", err)
	}
}

// close saves the profile on the way out.
func (h *host) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.session.Persist(ctx); err != nil {
		logger.Error("Failed to save profile on exit", "profile", h.session.Profile, "error", err)
	}
}

// describeCue renders a cue as a message line; quiet cues return "".
func describeCue(c game.Cue) string {
	switch c.Kind {
	case game.CueDamage:
		if c.Label == "X" {
			return "Resisted! The attack drains your battery."
		}
		return "Hit for " + c.Label
	case game.CueDeath:
		name, _, _ := strings.Cut(c.Sound, "_")
		return "Defeated the " + name
	case game.CuePickup:
		return "Picked up " + c.Label
	case game.CueHurt:
		return "Ouch! Battery " + c.Label
	case game.CueWrongMove:
		return "Bad signal, wrong move"
	case game.CueStatus:
		return "Connection " + c.Label
	case game.CueSelect:
		return "Attack: " + c.Element.String()
	}
	return ""
}
