package app

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/examsync-backend/internal/http"
	httpH "github.com/yungbote/examsync-backend/internal/http/handlers"
	httpMW "github.com/yungbote/examsync-backend/internal/http/middleware"
	"github.com/yungbote/examsync-backend/internal/observability"
	"github.com/yungbote/examsync-backend/internal/platform/logger"
)

type Middleware struct {
	Auth      *httpMW.AuthMiddleware
	RateLimit *httpMW.RateLimiter
}

type Handlers struct {
	Health      *httpH.HealthHandler
	Sync        *httpH.SyncHandler
	Leaderboard *httpH.LeaderboardHandler
}

func wireHandlers(log *logger.Logger, services Services, clients Clients) Handlers {
	log.Info("Wiring handlers...")
	checks := map[string]httpH.Pinger{}
	if clients.DB != nil {
		checks["db"] = func(ctx context.Context) error {
			sqlDB, err := clients.DB.DB().DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	if clients.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return clients.Redis.Ping(ctx).Err() }
	}
	return Handlers{
		Health:      httpH.NewHealthHandler(checks),
		Sync:        httpH.NewSyncHandler(services.Sync),
		Leaderboard: httpH.NewLeaderboardHandler(services.Leaderboard),
	}
}

func wireMiddleware(log *logger.Logger, cfg Config, metrics *observability.Metrics) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, httpMW.AuthConfig{
			Secret:   cfg.JWTSecret,
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
			Leeway:   cfg.JWTLeeway,
		}),
		RateLimit: httpMW.NewRateLimiter(httpMW.RateLimitConfig{
			PerSecond: cfg.SyncRatePerSec,
			Burst:     cfg.SyncRateBurst,
		}, metrics),
	}
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics) *gin.Engine {
	serviceName := ""
	if cfg.TracingEnabled {
		serviceName = cfg.ServiceName
	}
	return http.NewRouter(http.RouterConfig{
		Log:                log,
		ServiceName:        serviceName,
		CORSOrigins:        cfg.CORSOrigins,
		Metrics:            metrics,
		AuthMiddleware:     middleware.Auth,
		RateLimiter:        middleware.RateLimit,
		SyncHandler:        handlers.Sync,
		LeaderboardHandler: handlers.Leaderboard,
		HealthHandler:      handlers.Health,
	})
}
