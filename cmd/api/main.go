package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/recipe-organizer/backend/config"
	"github.com/pageza/recipe-organizer/backend/internal/database"
	"github.com/pageza/recipe-organizer/backend/internal/logger"
	"github.com/pageza/recipe-organizer/backend/internal/server"
)

func main() {
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

	store, err := database.New(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to open database", zap.Error(err))
	}
	defer store.Close()

	srv, err := server.New(ctx, cfg, store, logr)
	if err != nil {
		logr.Fatal("failed to create server", zap.Error(err))
	}

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logr.Error("server error", zap.Error(err))
		}
	case sig := <-quit:
		logr.Info("received signal", zap.String("signal", sig.String()))
	}

	logr.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("server shutdown error", zap.Error(err))
	}
	logr.Info("server stopped")
}
