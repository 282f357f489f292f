package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lawnchairsociety/nightmareinsilver/internal/audio"
	"github.com/lawnchairsociety/nightmareinsilver/internal/config"
	"github.com/lawnchairsociety/nightmareinsilver/internal/database"
	"github.com/lawnchairsociety/nightmareinsilver/internal/enemy"
	"github.com/lawnchairsociety/nightmareinsilver/internal/logger"
	"github.com/lawnchairsociety/nightmareinsilver/internal/namefilter"
	"github.com/lawnchairsociety/nightmareinsilver/internal/progress"
)

func main() {
	configFile := flag.String("config", "data/nightmare.yaml", "Path to game config YAML file")
	profile := flag.String("profile", "player", "Profile to load and save")
	driver := flag.String("store", "", "Profile store: memory, sqlite or postgres (overrides store.driver)")
	seed := flag.Int64("seed", 0, "Level generation seed (overrides generation.seed)")
	mute := flag.Bool("mute", false, "Disable sound")
	flag.Parse()

	if err := run(*configFile, *profile, *driver, *seed, *mute); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile, profile, driver string, seed int64, mute bool) error {
	// The terminal belongs to tcell, so only the file sink may log.
	logConfig, _ := logger.LoadConfig(configFile)
	logConfig.ConsoleEnabled = false
	logger.Initialize(logConfig)

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return err
	}
	if driver != "" {
		cfg.Store.Driver = driver
	}
	if seed != 0 {
		cfg.Generation.Seed = seed
	}
	if mute {
		cfg.Audio.Enabled = false
	}
	if !database.ValidName(profile) {
		return database.ErrInvalidName
	}
	if err := namefilter.New(&cfg.Names).Check(profile); err != nil {
		return err
	}

	opts := hostOptions{Config: cfg, Profile: profile}
	if cfg.Generation.EnemyTable != "" {
		if opts.Table, err = enemy.LoadTable(cfg.Generation.EnemyTable); err != nil {
			return err
		}
	}

	if cfg.Store.Driver == "memory" {
		opts.Store = progress.NewMemoryStore()
	} else {
		store, err := database.OpenStore(cfg.Store.Database())
		if err != nil {
			return fmt.Errorf("failed to open profile store: %w", err)
		}
		opts.Store = store
		opts.Runs = store.Database()
	}
	defer opts.Store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	opts.Save, err = progress.LoadOrNew(ctx, opts.Store, profile)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	player := audio.NewPlayer(cfg.Audio)
	if err := player.Start(); err != nil {
		logger.Warning("Audio initialization failed, playing silently", "error", err)
	}
	defer player.Close()
	opts.Sink = player

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	h := newHost(screen, opts)
	defer h.close()
	logger.Info("Terminal session started", "profile", profile)
	h.run()
	return nil
}
