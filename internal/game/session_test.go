package game

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/lawnchairsociety/nightmareinsilver/internal/geom"
	"github.com/lawnchairsociety/nightmareinsilver/internal/progress"
	"github.com/lawnchairsociety/nightmareinsilver/internal/rng"
)

func newTestSession(t *testing.T, save progress.SaveData) (*Session, *progress.MemoryStore, *stateLog) {
	t.Helper()
	store := progress.NewMemoryStore()
	states := &stateLog{}
	s := NewSession("tester", save, Options{
		Rand:   rng.New(42),
		Store:  store,
		States: states,
	})
	return s, store, states
}

func TestSessionStartRun(t *testing.T) {
	save := progress.NewSaveData()
	save.Fire = 2
	save.Battery = 3
	s, store, _ := newTestSession(t, save)

	if s.InRun() {
		t.Fatal("new session should be in the shop")
	}
	s.StartRun()

	if !s.InRun() || s.Level.Depth != 0 {
		t.Fatalf("in run %v depth %d", s.InRun(), s.Level.Depth)
	}
	if s.Save.Battery != s.Save.MaxBattery() {
		t.Errorf("battery = %d, want refilled", s.Save.Battery)
	}
	if s.Save.FireUses != 2*s.Rules().UsesPerLevel {
		t.Errorf("fire uses = %d", s.Save.FireUses)
	}
	kind, ok := s.Level.Map.Kind(s.Level.Player.Pos)
	if !ok || !kind.Walkable() {
		t.Errorf("player starts on %v", kind)
	}

	stored, err := store.Load(context.Background(), "TESTER")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if stored.Battery != s.Save.Battery {
		t.Errorf("stored battery %d, want %d", stored.Battery, s.Save.Battery)
	}
}

func TestSessionNextLevel(t *testing.T) {
	s, _, _ := newTestSession(t, progress.NewSaveData())
	s.StartRun()
	s.NextLevel()

	if s.Level.Depth != 1 || s.Save.Level != 1 {
		t.Errorf("depth %d save level %d, want 1", s.Level.Depth, s.Save.Level)
	}
	if s.Save.LevelsCompleted != 1 {
		t.Errorf("levels completed = %d", s.Save.LevelsCompleted)
	}
}

func TestSessionFinalLevelHasArtifact(t *testing.T) {
	save := progress.NewSaveData()
	s, _, _ := newTestSession(t, save)
	s.StartRun()
	for s.Level.Depth < s.Rules().FinalDepth {
		s.NextLevel()
	}

	if s.Level.Map.HasExit {
		t.Error("final level should have no way down")
	}
	if !s.Level.Map.HasFinal {
		t.Fatal("final level has no final tile")
	}
	e, ok := s.Level.EnemyAt(s.Level.Map.FinalPos)
	if !ok || !e.Unique {
		t.Errorf("final tile holds %+v", e)
	}
}

func TestSessionGameOver(t *testing.T) {
	save := progress.NewSaveData()
	save.Money = 7
	s, store, _ := newTestSession(t, save)
	s.StartRun()

	if lost := s.GameOver(); lost != 4 {
		t.Errorf("lost = %d, want 4", lost)
	}
	if s.InRun() {
		t.Error("game over should return to the shop")
	}
	stored, err := store.Load(context.Background(), "tester")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if stored.Money != 3 || stored.Deaths != 1 {
		t.Errorf("stored money %d deaths %d", stored.Money, stored.Deaths)
	}
}

func TestSessionWin(t *testing.T) {
	save := progress.NewSaveData()
	save.EnemiesKilled = 4
	save.LevelsCompleted = 9
	s, _, _ := newTestSession(t, save)
	s.StartRun()

	if score := s.Win(); score != 4000 {
		t.Errorf("score = %d, want 4000", score)
	}
	if s.InRun() {
		t.Error("win should leave the run")
	}
}

func TestSessionShop(t *testing.T) {
	save := progress.NewSaveData()
	save.Money = 15
	s, store, _ := newTestSession(t, save)

	if err := s.Buy(progress.UpgradeBattery); err != nil {
		t.Fatalf("Buy failed: %v", err)
	}
	if s.Save.BatteryLevel != 1 || s.Save.Money != 5 {
		t.Errorf("level %d money %d", s.Save.BatteryLevel, s.Save.Money)
	}
	if err := s.Buy(progress.UpgradeBattery); !errors.Is(err, progress.ErrNotEnoughMoney) {
		t.Errorf("second Buy = %v, want ErrNotEnoughMoney", err)
	}
	stored, _ := store.Load(context.Background(), "tester")
	if stored.BatteryLevel != 1 {
		t.Error("purchase not saved")
	}

	s.StartRun()
	if err := s.Buy(progress.UpgradeRange); !errors.Is(err, ErrInRun) {
		t.Errorf("Buy during run = %v, want ErrInRun", err)
	}
	if err := s.Refund(progress.UpgradeBattery); !errors.Is(err, ErrInRun) {
		t.Errorf("Refund during run = %v, want ErrInRun", err)
	}

	s.ReturnToShop()
	if err := s.Refund(progress.UpgradeBattery); err != nil {
		t.Fatalf("Refund failed: %v", err)
	}
	if s.Save.Money != 15 {
		t.Errorf("money after refund = %d", s.Save.Money)
	}
}

func TestSessionResume(t *testing.T) {
	save := progress.NewSaveData()
	save.Level = 3
	s, _, _ := newTestSession(t, save)
	s.Resume()
	if s.Level.Depth != 3 {
		t.Errorf("resumed at depth %d, want 3", s.Level.Depth)
	}

	empty := progress.NewSaveData()
	empty.Level = 3
	empty.Battery = 0
	s, _, _ = newTestSession(t, empty)
	s.Resume()
	if s.Level.Depth != 0 || s.Save.BatteryEmpty() {
		t.Errorf("empty battery should start over: depth %d battery %d", s.Level.Depth, s.Save.Battery)
	}
}

func TestSessionCancel(t *testing.T) {
	s, _, _ := newTestSession(t, progress.NewSaveData())
	if s.Cancel() {
		t.Error("nothing to cancel in the shop")
	}
	s.StartRun()
	if s.Cancel() {
		t.Error("nothing pending")
	}
}

func TestSessionTickInShopIsNoop(t *testing.T) {
	s, _, states := newTestSession(t, progress.NewSaveData())
	s.Tick(0.016, move(geom.East))
	if len(*states) != 0 || s.InRun() {
		t.Error("ticking the shop should do nothing")
	}
}

func TestSessionSnapshot(t *testing.T) {
	s, _, _ := newTestSession(t, progress.NewSaveData())
	snap := s.Snapshot()
	if snap.InRun || snap.Turn != "" || len(snap.Enemies) != 0 {
		t.Errorf("shop snapshot = %+v", snap)
	}
	if snap.HUD.Battery != progress.MaxBattery(0) || snap.HUD.Selected != "basic" {
		t.Errorf("hud = %+v", snap.HUD)
	}

	s.StartRun()
	snap = s.Snapshot()
	if !snap.InRun || snap.Turn != "player" {
		t.Errorf("run snapshot = %+v", snap)
	}
	if snap.Player.Pos != s.Level.Player.Pos || snap.Player.World != geom.ToWorld(s.Level.Player.Pos) {
		t.Errorf("player view = %+v", snap.Player)
	}
	if len(snap.Enemies) != len(s.Level.Enemies) {
		t.Fatalf("enemies = %d, want %d", len(snap.Enemies), len(s.Level.Enemies))
	}
	for i := 1; i < len(snap.Enemies); i++ {
		if snap.Enemies[i-1].ID >= snap.Enemies[i].ID {
			t.Error("enemies not ordered by id")
		}
	}
	if len(s.Level.Tiles()) != s.Level.Map.Len() {
		t.Error("tile view size mismatch")
	}
}

// TestRandomPlay drives a session with random input, acting on every state
// request the way a host would, and checks the level stays consistent.
func TestRandomPlay(t *testing.T) {
	var requests []State
	s := NewSession("bot", progress.NewSaveData(), Options{
		Rand:   rng.New(7),
		Store:  progress.NewMemoryStore(),
		States: StateFunc(func(st State) { requests = append(requests, st) }),
	})
	s.StartRun()

	input := rand.New(rand.NewSource(99))
	actions := []Action{ActionNextAttack, ActionPreviousAttack, ActionAttackFire, ActionAttackRegular}
	seen := map[State]int{}

	for i := 0; i < 3000; i++ {
		var fr Frame
		switch n := input.Intn(10); {
		case n < 8:
			fr.Move(geom.AllDirections()[input.Intn(4)])
		case n == 8:
			fr.Press(actions[input.Intn(len(actions))])
		}
		s.Tick(1.0/30, fr)

		for _, st := range requests {
			seen[st]++
			switch st {
			case StateNextLevel:
				s.NextLevel()
			case StateShop:
				s.ReturnToShop()
				s.StartRun()
			case StateGameOver:
				s.GameOver()
				s.StartRun()
			case StateGameWon:
				s.Win()
				s.StartRun()
			}
		}
		requests = requests[:0]

		checkLevel(t, s, i)
		if t.Failed() {
			return
		}
	}
	t.Logf("requests seen: %v, kills %d", seen, s.Save.EnemiesKilled)
}

func checkLevel(t *testing.T, s *Session, tick int) {
	t.Helper()
	if s.Save.Battery < 0 || s.Save.Battery > s.Save.MaxBattery() {
		t.Errorf("tick %d: battery %d out of range", tick, s.Save.Battery)
	}
	l := s.Level
	if l == nil {
		return
	}
	if kind, ok := l.Map.Kind(l.Player.Pos); !ok || !kind.Walkable() {
		t.Errorf("tick %d: player on %v at %v", tick, kind, l.Player.Pos)
	}
	if _, ok := l.Map.OccupantAt(l.Player.Pos); ok {
		t.Errorf("tick %d: enemy on the player's tile", tick)
	}
	for id, e := range l.Enemies {
		if e.Health < 0 {
			t.Errorf("tick %d: enemy %d health %v", tick, id, e.Health)
		}
		if occ, ok := l.Map.OccupantAt(e.Pos); !ok || occ != id {
			t.Errorf("tick %d: enemy %d not registered at %v", tick, id, e.Pos)
		}
		if !l.Map.Walkable(e.Pos) {
			t.Errorf("tick %d: enemy %d inside a wall", tick, id)
		}
	}
}
