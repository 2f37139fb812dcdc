package app

import (
	"fmt"

	"github.com/facebookgo/clock"
	"gorm.io/gorm"

	"github.com/yungbote/examsync-backend/internal/data/aggregates"
	leaderboardjob "github.com/yungbote/examsync-backend/internal/jobs/leaderboard"
	"github.com/yungbote/examsync-backend/internal/modules/practice/policy"
	"github.com/yungbote/examsync-backend/internal/platform/keylock"
	"github.com/yungbote/examsync-backend/internal/platform/logger"
	"github.com/yungbote/examsync-backend/internal/services"
)

type Services struct {
	Sync        services.SyncService
	Leaderboard services.LeaderboardService

	LeaderboardAggregator *leaderboardjob.Aggregator
	LeaderboardScheduler  *leaderboardjob.Scheduler
}

func leaderboardConfig(cfg Config) leaderboardjob.Config {
	return leaderboardjob.Config{
		Period:   cfg.LeaderboardPeriod,
		Interval: cfg.LeaderboardInterval,
		TTL:      cfg.LeaderboardTTL,
		Budget:   cfg.LeaderboardBudget,
		Size:     cfg.LeaderboardSize,
		PageSize: cfg.LeaderboardPageSize,
	}
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, c Clients, clk clock.Clock) (Services, error) {
	log.Info("Wiring services...")

	pol, err := policy.Load(cfg.PolicyPath)
	if err != nil {
		return Services{}, fmt.Errorf("load practice policy: %w", err)
	}

	syncSvc := services.NewSyncService(log, services.SyncConfig{
		MaxBatch: cfg.PushMaxBatch,
		Policy:   pol,
	}, services.SyncDeps{
		Users:     r.Users,
		Attempts:  r.Attempts,
		Mastery:   r.Mastery,
		Schedules: r.Schedules,
		Stats:     r.Stats,
		Catalog:   services.NewQuestionCatalog(r.Questions),
		Grades:    services.NewGradeFeed(r.GradeNotices),
		Tx:        aggregates.NewGormTxRunner(db, log),
		Locks:     keylock.New(),
		Clock:     clk,
	})

	lbCfg := leaderboardConfig(cfg)
	agg := leaderboardjob.NewAggregator(log, lbCfg, r.Attempts, r.Users, c.LeaderboardCache, clk)

	return Services{
		Sync:                  syncSvc,
		Leaderboard:           services.NewLeaderboardService(log, c.LeaderboardCache, agg.Config().TTL, clk),
		LeaderboardAggregator: agg,
		LeaderboardScheduler:  leaderboardjob.NewScheduler(log, agg, c.LeaderboardLock, clk),
	}, nil
}
