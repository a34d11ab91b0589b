package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/coldnsteel/KOZMIC-KASINO/config"
	"github.com/coldnsteel/KOZMIC-KASINO/logger"
	"github.com/coldnsteel/KOZMIC-KASINO/persistence"
	"github.com/coldnsteel/KOZMIC-KASINO/server"
)

func main() {
	// Initialize logger
	logger.Init()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Optional audit database; the server runs fully in memory without it
	var db persistence.Database
	if cfg.Database.Enabled {
		pg := cfg.Database.Postgres
		switch cfg.Database.Driver {
		case "pq":
			db, err = persistence.NewPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
		default:
			db, err = persistence.NewGormPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
		}
		if err != nil {
			logger.Log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		logger.Log.Info("Database connection successful.")
	}

	gameServer := server.NewGameServer(cfg, db)

	// Graceful shutdown on SIGINT/SIGTERM
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Log.Infof("%s received, shutting down", sig)
		gameServer.Shutdown()
	}()

	logger.Log.Infof("Starting KOZMIC KASINO server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}
