package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lawnchairsociety/nightmareinsilver/internal/config"
	"github.com/lawnchairsociety/nightmareinsilver/internal/database"
	"github.com/lawnchairsociety/nightmareinsilver/internal/enemy"
	"github.com/lawnchairsociety/nightmareinsilver/internal/logger"
	"github.com/lawnchairsociety/nightmareinsilver/internal/progress"
	"github.com/lawnchairsociety/nightmareinsilver/internal/server"
)

func main() {
	configFile := flag.String("config", "data/nightmare.yaml", "Path to game config YAML file")
	address := flag.String("addr", "", "Listen address (overrides server.address)")
	driver := flag.String("store", "", "Profile store: memory, sqlite or postgres (overrides store.driver)")
	flag.Parse()

	// Initialize logger first (before any logging)
	logConfig, _ := logger.LoadConfig(*configFile)
	logger.Initialize(logConfig)

	logger.Info("Starting Nightmare in Silver server")

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		logger.Warning("Failed to load config, using defaults", "path", *configFile, "error", err)
	}
	if *address != "" {
		cfg.Server.Address = *address
	}
	if *driver != "" {
		cfg.Store.Driver = *driver
	}

	store, err := openStore(cfg.Store)
	if err != nil {
		log.Fatalf("Failed to open profile store: %v", err)
	}
	defer store.Close()

	srv := server.NewServer(cfg, store)
	if cfg.Generation.EnemyTable != "" {
		table, err := enemy.LoadTable(cfg.Generation.EnemyTable)
		if err != nil {
			logger.Warning("Failed to load enemy table, using built-in spawns", "path", cfg.Generation.EnemyTable, "error", err)
		} else {
			srv.SetEnemyTable(table)
			logger.Info("Enemy table loaded", "path", cfg.Generation.EnemyTable)
		}
	}

	if len(cfg.Server.WebSocket.AllowedOrigins) == 0 {
		logger.Info("WebSocket CORS policy", "mode", "same-origin")
	} else if len(cfg.Server.WebSocket.AllowedOrigins) == 1 && cfg.Server.WebSocket.AllowedOrigins[0] == "*" {
		logger.Warning("WebSocket CORS allows all origins (not recommended for production)")
	} else {
		logger.Info("WebSocket CORS policy", "allowed_origins", cfg.Server.WebSocket.AllowedOrigins)
	}

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatalf("WebSocket server error: %v", err)
		}
	}()
	logger.Info("Press Ctrl+C to shutdown")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Shutdown did not finish cleanly", "error", err)
	}
	logger.Info("Server stopped")
}

func openStore(cfg config.StoreConfig) (progress.Store, error) {
	if cfg.Driver == "memory" {
		logger.Warning("Using the memory store, progress is lost on restart")
		return progress.NewMemoryStore(), nil
	}
	store, err := database.OpenStore(cfg.Database())
	if err != nil {
		return nil, err
	}
	logger.Info("Profile store opened", "driver", cfg.Driver)
	return store, nil
}
