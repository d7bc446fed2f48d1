package server

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"parttimepal-backend/internal/assistant"
	"parttimepal-backend/internal/shared/config"
	"parttimepal-backend/internal/shared/metrics"
	"parttimepal-backend/internal/shared/server/middleware"
	"parttimepal-backend/internal/shared/server/respond"
	"parttimepal-backend/internal/shared/storage/db"
)

const (
	apiPrefix          = "/api/v1"
	rateGroupDefault   = "DEFAULT"
	rateGroupProvider  = "PROVIDER"
	healthPingDeadline = 2 * time.Second
)

// providerRoutes start provider work and share the stricter rate limit.
var providerRoutes = map[string]struct{}{
	apiPrefix + "/jobs/search":      {},
	apiPrefix + "/jobs/:id/analyze": {},
	apiPrefix + "/verify":           {},
	apiPrefix + "/cv/match":         {},
}

// RouterDeps carries everything NewRouter wires.
type RouterDeps struct {
	Config      config.Config
	Assistant   *assistant.Handler
	SessionLive middleware.SessionLookup
	RateLimiter *middleware.RateLimiter
	DB          *sql.DB
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.IsDevLike() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group(apiPrefix)
	api.GET("/health", healthHandler(deps.DB))

	api.Use(
		middleware.Session(deps.SessionLive, apiPrefix+assistant.SessionsPath),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				rateGroupDefault:  {Rate: deps.Config.RateLimitRPS, Burst: deps.Config.RateLimitBurst},
				rateGroupProvider: {Rate: deps.Config.ProviderRPS, Burst: deps.Config.ProviderBurst},
			},
			DefaultGroup: rateGroupDefault,
			GroupFor:     rateGroupFor,
			Limiter:      deps.RateLimiter,
		}),
	)
	if deps.Assistant != nil {
		deps.Assistant.RegisterRoutes(api)
	}

	return r
}

func rateGroupFor(c *gin.Context) string {
	if _, ok := providerRoutes[c.FullPath()]; ok {
		return rateGroupProvider
	}
	return rateGroupDefault
}

func healthHandler(database *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{"ok": true, "storage": "memory"}
		if database != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingDeadline)
			defer cancel()
			if err := database.PingContext(ctx); err != nil {
				respond.Error(c, http.StatusServiceUnavailable, respond.CodeInternal, "database unavailable", nil)
				return
			}
			body["storage"] = "postgres"
			if version, err := db.MigrationVersion(ctx, database); err == nil {
				body["migrationVersion"] = version
			}
		}
		respond.OK(c, body)
	}
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
