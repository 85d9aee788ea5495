package main

import (
	"context"
	"errors"
	"log"

	"go.uber.org/zap"

	"github.com/pageza/recipe-organizer/backend/config"
	"github.com/pageza/recipe-organizer/backend/internal/database"
	"github.com/pageza/recipe-organizer/backend/internal/logger"
	"github.com/pageza/recipe-organizer/backend/internal/service"
)

const testPassword = "testpassword123"

var testUsers = []struct {
	username string
	email    string
}{
	{"johndoe", "john.doe@example.com"},
	{"janesmith", "jane.smith@example.com"},
	{"testcook", "test.cook@example.com"},
}

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

	auth := service.NewAuthService(store.DB, cfg.JWTSecret, cfg.JWTExpiresIn)
	for _, u := range testUsers {
		user, err := auth.Register(ctx, u.username, u.email, testPassword)
		switch {
		case errors.Is(err, service.ErrConflict):
			logr.Info("test user already exists", zap.String("email", u.email))
		case err != nil:
			logr.Fatal("failed to create test user", zap.String("email", u.email), zap.Error(err))
		default:
			logr.Info("created test user", zap.String("email", user.Email), zap.String("id", user.ID))
		}
	}
	logr.Info("test users ready", zap.String("password", testPassword))
}
