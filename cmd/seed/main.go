package main

import (
	"flag"
	"os"

	"github.com/oggyb/matchmaker/internal/config"
	"github.com/oggyb/matchmaker/internal/db"
	"github.com/oggyb/matchmaker/internal/logger"
)

func main() {
	count := flag.Int("users", 40, "number of demo users to create")
	flag.Parse()

	// Load configuration
	cfg := config.New()
	logger.InitFromConfig(cfg)
	log := logger.L()

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		os.Exit(1)
	}

	if err := db.SeedDemoData(database, log, *count); err != nil {
		log.Error("failed to seed", "err", err)
		os.Exit(1)
	}

	log.Info("seeding completed", "users", *count, "password", db.SeedPassword)
}
