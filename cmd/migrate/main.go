package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/pageza/recipe-organizer/backend/config"
	"github.com/pageza/recipe-organizer/backend/internal/database"
	"github.com/pageza/recipe-organizer/backend/internal/logger"
)

func main() {
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logr, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync(logr)

	ctx := context.Background()
	store, err := database.Open(ctx, database.Options{
		Driver:         cfg.DBDriver,
		Path:           cfg.DBPath,
		DSN:            cfg.PostgresDSN(),
		SkipMigrations: true,
	})
	if err != nil {
		logr.Fatal("failed to open database", zap.Error(err))
	}
	defer store.Close()

	if *rollback {
		err = store.Rollback(ctx)
	} else {
		err = store.Migrate(ctx)
	}
	if err != nil {
		logr.Fatal("migration failed", zap.Error(err))
	}

	version, err := store.Version(ctx)
	if err != nil {
		logr.Fatal("failed to read schema version", zap.Error(err))
	}
	logr.Info("migrations complete",
		zap.String("driver", store.Driver()),
		zap.Bool("rollback", *rollback),
		zap.Int64("version", version),
	)
}
