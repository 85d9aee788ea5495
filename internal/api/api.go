package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pageza/recipe-organizer/backend/internal/middleware"
	"github.com/pageza/recipe-organizer/backend/internal/service"
)

// Dependencies are the collaborators the HTTP layer needs.
type Dependencies struct {
	Recipes service.IRecipeService
	Auth    service.IAuthService
	Images  service.IImageService
	// RecipeLimiter throttles recipe creation. Nil disables it.
	RecipeLimiter  middleware.Limiter
	HealthChecks   []HealthCheck
	APIPrefix      string
	MaxUploadBytes int64
	CORSOrigins    []string
	Log            *zap.Logger
}

// NewRouter builds the gin engine with the shared middleware and every
// route registered.
func NewRouter(deps Dependencies) *gin.Engine {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Metrics(),
		middleware.Logger(log),
		middleware.Recovery(log),
		middleware.CORS(deps.CORSOrigins),
	)

	health := Health(deps.HealthChecks...)
	router.GET("/", Root(deps.APIPrefix))
	router.GET("/health", health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group(deps.APIPrefix)
	if deps.APIPrefix != "" && deps.APIPrefix != "/" {
		v1.GET("/health", health)
	}

	NewRecipeHandler(deps.Recipes, deps.Auth, deps.RecipeLimiter, log).RegisterRoutes(v1)
	NewAuthHandler(deps.Auth, log).RegisterRoutes(v1)
	NewUploadHandler(deps.Images, deps.MaxUploadBytes, log).RegisterRoutes(v1)

	router.NoRoute(NotFound)
	return router
}
