package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/examsync-backend/internal/http/handlers"
	httpMW "github.com/yungbote/examsync-backend/internal/http/middleware"
	"github.com/yungbote/examsync-backend/internal/observability"
	"github.com/yungbote/examsync-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	Metrics     *observability.Metrics

	AuthMiddleware *httpMW.AuthMiddleware
	RateLimiter    *httpMW.RateLimiter

	SyncHandler        *httpH.SyncHandler
	LeaderboardHandler *httpH.LeaderboardHandler
	HealthHandler      *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics, "/metrics", "/healthcheck", "/readyz"))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	protected := r.Group("/")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}

	// Sync
	if cfg.SyncHandler != nil {
		sync := protected.Group("/sync")
		if cfg.RateLimiter != nil {
			sync.Use(cfg.RateLimiter.Handler())
		}
		sync.POST("/push", cfg.SyncHandler.Push)
		sync.POST("/pull", cfg.SyncHandler.Pull)
		sync.GET("/stats", cfg.SyncHandler.Stats)
	}

	api := protected.Group("/api")
	{
		if cfg.LeaderboardHandler != nil {
			api.GET("/leaderboard", cfg.LeaderboardHandler.Get)
		}
	}

	return r
}
