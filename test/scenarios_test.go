package test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lawnchairsociety/nightmareinsilver/internal/config"
	"github.com/lawnchairsociety/nightmareinsilver/internal/game"
	"github.com/lawnchairsociety/nightmareinsilver/internal/geom"
	"github.com/lawnchairsociety/nightmareinsilver/internal/progress"
	"github.com/lawnchairsociety/nightmareinsilver/internal/server"
)

func TestCounterToLetters(t *testing.T) {
	tests := []struct {
		n    uint64
		want string
	}{
		{0, "a"}, {1, "a"}, {26, "z"}, {27, "aa"}, {28, "ab"}, {702, "zz"}, {703, "aaa"},
	}
	for _, tt := range tests {
		if got := counterToLetters(tt.n); got != tt.want {
			t.Errorf("counterToLetters(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestUniqueName(t *testing.T) {
	a, b := uniqueName("x"), uniqueName("x")
	if a == b || !strings.HasPrefix(a, "x") {
		t.Errorf("uniqueName gave %q and %q", a, b)
	}
}

func TestOpenNeighbour(t *testing.T) {
	tiles := []game.TileView{
		{Pos: geom.V(5, 5), Kind: "ladder_up"},
		{Pos: geom.V(5, 4), Kind: "wall"},
		{Pos: geom.V(6, 5), Kind: "spawn"},
		{Pos: geom.V(5, 6), Kind: "path"},
	}
	d, ok := openNeighbour(tiles, geom.V(5, 5))
	if !ok || d != geom.South {
		t.Errorf("openNeighbour = %v, %v; want south", d, ok)
	}
	if _, ok := openNeighbour(tiles[:2], geom.V(5, 5)); ok {
		t.Error("found an open tile next to a wall only")
	}
}

// TestScenariosAgainstLocalServer runs the deterministic scenarios against an
// in-process server.
func TestScenariosAgainstLocalServer(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Generation.Seed = 5
	srv := server.NewServer(cfg, progress.NewMemoryStore())
	hs := httptest.NewServer(srv.Handler())
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
		hs.Close()
	}()
	addr := strings.TrimPrefix(hs.URL, "http://")

	scenarios := []func(string) TestResult{
		TestBasicConnection,
		TestDuplicateLogin,
		TestReservedName,
		TestLoginRequired,
		TestBuyWithoutMoney,
		TestUnknownUpgrade,
		TestScores,
		TestStartRun,
		TestAttackCycle,
		TestPauseRequest,
		TestFloodWarning,
	}
	for _, run := range scenarios {
		if r := run(addr); !r.Passed {
			t.Errorf("%s: %s", r.Name, r.Message)
		}
	}
}
