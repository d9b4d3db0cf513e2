package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aidocs-backend/internal/ai"
	"aidocs-backend/internal/documents"
	"aidocs-backend/internal/search"
	"aidocs-backend/internal/shared/config"
	"aidocs-backend/internal/shared/metrics"
	"aidocs-backend/internal/shared/server/middleware"
	"aidocs-backend/internal/shared/server/respond"
	"aidocs-backend/internal/users"
)

// RouterDeps carries the handlers the router wires up.
type RouterDeps struct {
	Config          config.Config
	Metrics         *metrics.Metrics
	UsersHandler    *users.Handler
	DocumentHandler *documents.Handler
	AIHandler       *ai.Handler
	SearchHandler   *search.Handler
}

// aiRateGroup classifies requests so completion-backed endpoints get a
// stricter budget than plain CRUD.
func aiRateGroup(c *gin.Context) string {
	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}
	if len(path) >= len("/api/v1/ai/") && path[:len("/api/v1/ai/")] == "/api/v1/ai/" {
		return "AI"
	}
	return "DEFAULT"
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		deps.Metrics.GinMiddleware(),
		middleware.Auth(),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				"DEFAULT": {Rate: 10, Burst: 30},
				"AI":      {Rate: 0.5, Burst: 5},
			},
			GroupFor: aiRateGroup,
		}),
	)

	if deps.Metrics != nil {
		r.GET("/metrics", deps.Metrics.Handler())
	}

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	deps.UsersHandler.RegisterRoutes(api)
	deps.DocumentHandler.RegisterRoutes(api)
	deps.AIHandler.RegisterRoutes(api)
	deps.SearchHandler.RegisterRoutes(api)

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
