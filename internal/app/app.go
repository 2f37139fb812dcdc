package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/facebookgo/clock"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/examsync-backend/internal/http"
	"github.com/yungbote/examsync-backend/internal/observability"
	"github.com/yungbote/examsync-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Clients  Clients
	Repos    Repos
	Services Services
	Metrics  *observability.Metrics

	server        *http.Server
	shutdownTrace func(context.Context) error
	cancel        context.CancelFunc
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	ctx := context.Background()
	shutdownTrace := observability.InitTracing(ctx, log, observability.TracingConfig{
		Enabled:     cfg.TracingEnabled,
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
		Endpoint:    cfg.TracingEndpoint,
		Insecure:    cfg.TracingInsecure,
		Headers:     observability.ParseHeaders(cfg.TracingHeaders),
		SampleRatio: cfg.TracingSampleRatio,
	})
	metrics := observability.Init(log, cfg.MetricsEnabled)

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}
	theDB := clients.DB.DB()

	reposet := wireRepos(theDB, log)
	serviceset, err := wireServices(theDB, log, cfg, reposet, clients, clock.New())
	if err != nil {
		clients.Close(log)
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, serviceset, clients)
	middleware := wireMiddleware(log, cfg, metrics)
	router := wireRouter(log, cfg, handlerset, middleware, metrics)

	return &App{
		server:        &http.Server{Engine: router},
		Log:           log,
		DB:            theDB,
		Router:        router,
		Cfg:           cfg,
		Clients:       clients,
		Repos:         reposet,
		Services:      serviceset,
		Metrics:       metrics,
		shutdownTrace: shutdownTrace,
	}, nil
}

// NewJobRunner wires storage and services without the HTTP surface, for one-shot commands.
func NewJobRunner(log *logger.Logger) (*App, error) {
	cfg := LoadConfig(log)
	ctx := context.Background()

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		return nil, err
	}
	theDB := clients.DB.DB()
	reposet := wireRepos(theDB, log)
	serviceset, err := wireServices(theDB, log, cfg, reposet, clients, clock.New())
	if err != nil {
		clients.Close(log)
		return nil, err
	}
	return &App{
		Log:      log,
		DB:       theDB,
		Cfg:      cfg,
		Clients:  clients,
		Repos:    reposet,
		Services: serviceset,
	}, nil
}

// Start launches background work: the leaderboard scheduler and metrics collectors.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Metrics != nil {
		a.Metrics.StartDBCollector(ctx, a.Log, a.DB, a.Cfg.MetricsInterval)
		if a.Clients.Redis != nil {
			a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Redis, a.Cfg.MetricsInterval)
		}
	}

	if a.Services.LeaderboardScheduler != nil && !a.Cfg.LeaderboardSchedulerOff {
		a.Services.LeaderboardScheduler.Start(ctx)
	}
}

func (a *App) Run(addr string) error {
	if a == nil || a.server == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.server.Run(addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			a.Log.Warn("http shutdown failed", "error", err)
		}
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
		if a.Services.LeaderboardScheduler != nil {
			a.Services.LeaderboardScheduler.Wait()
		}
	}
	if a.shutdownTrace != nil {
		if err := a.shutdownTrace(ctx); err != nil {
			a.Log.Warn("tracer shutdown failed", "error", err)
		}
	}
	a.Clients.Close(a.Log)
	if a.Log != nil {
		a.Log.Sync()
	}
}
