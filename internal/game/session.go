package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lawnchairsociety/nightmareinsilver/internal/combat"
	"github.com/lawnchairsociety/nightmareinsilver/internal/config"
	"github.com/lawnchairsociety/nightmareinsilver/internal/dungeon"
	"github.com/lawnchairsociety/nightmareinsilver/internal/enemy"
	"github.com/lawnchairsociety/nightmareinsilver/internal/logger"
	"github.com/lawnchairsociety/nightmareinsilver/internal/progress"
	"github.com/lawnchairsociety/nightmareinsilver/internal/rng"
)

// ErrInRun is returned by shop operations while a level is being played.
var ErrInRun = errors.New("shop is closed during a run")

// storeTimeout bounds a single save so a slow database cannot stall a tick.
const storeTimeout = 2 * time.Second

// Options configures a Session. Zero values fall back to defaults: default
// rules and generation, the built-in enemy table, a clock-seeded source and
// no store, cues or state requests.
type Options struct {
	Rules      *Rules
	Generation *config.GenerationConfig
	Table      *enemy.Table
	Rand       rng.Source
	Store      progress.Store
	Cues       Sink
	States     StateSink
}

// Session is one player's game: their save, the level being played and the
// collaborators that drive it. It is not safe for concurrent use; hosts tick
// it from a single goroutine.
type Session struct {
	Profile string
	Save    progress.SaveData
	Level   *Level

	rules      Rules
	generation config.GenerationConfig
	factory    *enemy.Factory
	resolver   *combat.Resolver
	rand       rng.Source
	store      progress.Store
	phases     []Phase
	ctx        Context
}

// NewSession creates a session positioned in the shop.
func NewSession(profile string, save progress.SaveData, opts Options) *Session {
	rules := DefaultRules()
	if opts.Rules != nil {
		rules = *opts.Rules
	}
	generation := config.DefaultConfig().Generation
	if opts.Generation != nil {
		generation = *opts.Generation
	}
	src := opts.Rand
	if src == nil {
		src = rng.New(generation.Seed)
	}
	table := opts.Table
	if table == nil {
		table = enemy.DefaultTable()
	}

	s := &Session{
		Profile:    profile,
		Save:       save,
		rules:      rules,
		generation: generation,
		factory:    enemy.NewFactory(table, rules.FinalDepth, src),
		resolver:   combat.NewResolver(table, src),
		rand:       src,
		store:      opts.Store,
		phases:     Pipeline(),
	}
	s.ctx = Context{
		Save:     &s.Save,
		Rules:    rules,
		Rand:     src,
		Resolver: s.resolver,
		Cues:     opts.Cues,
		States:   opts.States,
	}
	return s
}

// Rules returns the session's rules.
func (s *Session) Rules() Rules { return s.rules }

// InRun reports whether a level is being played.
func (s *Session) InRun() bool { return s.Level != nil }

// StartRun leaves the shop: the save is restarted and the first level built.
func (s *Session) StartRun() {
	s.Save.Restart(s.rules.UsesPerLevel)
	logger.Info("Run started", "profile", s.Profile, "battery", s.Save.Battery)
	s.enter(0)
}

// Resume rebuilds the level the save was on, for a player reconnecting
// mid-run. A save with an empty battery starts a new run instead.
func (s *Session) Resume() {
	if s.Save.BatteryEmpty() {
		s.StartRun()
		return
	}
	s.enter(s.Save.Level)
}

// NextLevel confirms a next-level request: the level counts as completed and
// the next depth is generated.
func (s *Session) NextLevel() {
	s.Save.LevelsCompleted++
	s.Save.Level++
	s.enter(s.Save.Level)
}

// ReturnToShop confirms a shop request. Money is kept.
func (s *Session) ReturnToShop() {
	logger.Info("Returned to shop", "profile", s.Profile, "depth", s.Save.Level, "money", s.Save.Money)
	s.leave()
}

// GameOver confirms a game-over request and returns the money lost.
func (s *Session) GameOver() int {
	lost := s.Save.GameOver()
	logger.Info("Game over", "profile", s.Profile, "depth", s.Save.Level, "lost", lost, "deaths", s.Save.Deaths)
	s.leave()
	return lost
}

// Win confirms a game-won request and returns the final score.
func (s *Session) Win() int {
	score := s.Save.Score()
	logger.Always("Run won", "profile", s.Profile, "score", score, "levels", s.Save.LevelsCompleted)
	s.leave()
	return score
}

// Cancel withdraws a pending shop or next-level request.
func (s *Session) Cancel() bool {
	if s.Level == nil {
		return false
	}
	return s.Level.Cancel()
}

// Buy purchases an upgrade in the shop and saves.
func (s *Session) Buy(u progress.Upgrade) error {
	if s.InRun() {
		return ErrInRun
	}
	if err := s.Save.Buy(u); err != nil {
		return err
	}
	s.persist()
	return nil
}

// Refund sells back one level of an upgrade and saves.
func (s *Session) Refund(u progress.Upgrade) error {
	if s.InRun() {
		return ErrInRun
	}
	if err := s.Save.Refund(u); err != nil {
		return err
	}
	s.persist()
	return nil
}

// Tick runs one frame of play with the elapsed seconds and this frame's input.
func (s *Session) Tick(dt float64, in Input) {
	if s.Level == nil {
		return
	}
	s.ctx.Level = s.Level
	s.ctx.Input = in
	RunTick(s.phases, &s.ctx, dt)
}

// Persist writes the save to the store.
func (s *Session) Persist(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Save(ctx, s.Profile, s.Save); err != nil {
		return fmt.Errorf("save profile %s: %w", s.Profile, err)
	}
	return nil
}

// persist saves and logs failures; play continues on the in-memory copy.
func (s *Session) persist() {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := s.Persist(ctx); err != nil {
		logger.Error("Failed to save progress", "profile", s.Profile, "error", err)
	}
}

func (s *Session) enter(depth int) {
	params := s.generation.Params(depth, s.rules.FinalDepth)
	m := dungeon.NewGenerator(params, s.rand).Generate()
	s.Level = NewLevel(m, s.factory, s.rules)

	status := s.Save.Connection()
	if status != progress.ConnectionOK {
		s.ctx.cue(Cue{Kind: CueStatus, Pos: s.Level.Player.Pos, Label: status.String()})
	}
	logger.Info("Level entered",
		"profile", s.Profile,
		"depth", depth,
		"rooms", len(m.Rooms),
		"tiles", m.Len(),
		"enemies", len(s.Level.Enemies),
		"connection", status.String())
	s.persist()
}

func (s *Session) leave() {
	s.Level = nil
	s.ctx.Level = nil
	s.persist()
}
