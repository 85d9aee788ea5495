package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pageza/recipe-organizer/backend/config"
	"github.com/pageza/recipe-organizer/backend/internal/api"
	"github.com/pageza/recipe-organizer/backend/internal/database"
	"github.com/pageza/recipe-organizer/backend/internal/middleware"
	"github.com/pageza/recipe-organizer/backend/internal/service"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	redis  *redis.Client
	log    *zap.Logger
}

// New wires services, storage backends and routes from cfg. Redis and S3
// are optional: without them rate limiting stays in-process and uploads
// are returned as data URLs.
func New(ctx context.Context, cfg *config.Config, store *database.Store, log *zap.Logger) (*Server, error) {
	if cfg.Env.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{log: log}

	recipes := service.NewRecipeService(store.DB)
	auth := service.NewAuthService(store.DB, cfg.JWTSecret, cfg.JWTExpiresIn)

	var backend service.ImageBackend = service.DataURLBackend{}
	s3cfg, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure S3: %w", err)
	}
	if s3cfg != nil {
		backend = service.NewS3BackendFromConfig(s3cfg, cfg.AWSRegion)
		log.Info("storing uploads in S3", zap.String("bucket", s3cfg.BucketName))
	}
	images := service.NewImageService(backend, cfg.UploadMaxBytes)

	checks := []api.HealthCheck{{Name: "database", Check: store.Ping}}

	var limiter middleware.Limiter
	if cfg.RateLimitCreatePerHour > 0 {
		limits := middleware.RecipeCreationLimit(cfg.RateLimitCreatePerHour)
		limiter = middleware.NewLocalRateLimiter(limits)
		if cfg.RedisURL != "" {
			client, err := database.NewRedisClient(ctx, cfg.RedisURL, log)
			if err != nil {
				log.Warn("redis unavailable, using in-process rate limiting", zap.Error(err))
			} else {
				s.redis = client
				limiter = middleware.NewRedisRateLimiter(client, limits)
				checks = append(checks, api.HealthCheck{
					Name:  "redis",
					Check: func(ctx context.Context) error { return client.Ping(ctx).Err() },
				})
			}
		}
	}

	s.router = api.NewRouter(api.Dependencies{
		Recipes:        recipes,
		Auth:           auth,
		Images:         images,
		RecipeLimiter:  limiter,
		HealthChecks:   checks,
		APIPrefix:      cfg.APIPrefix,
		MaxUploadBytes: cfg.UploadMaxBytes,
		CORSOrigins:    cfg.CORSAllowedOrigins,
		Log:            log,
	})

	s.http = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("starting server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server and releases the Redis client.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	if s.redis != nil {
		err = errors.Join(err, s.redis.Close())
	}
	return err
}
