package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/examsync-backend/internal/clients/redis"
	"github.com/yungbote/examsync-backend/internal/data/db"
	leaderboardjob "github.com/yungbote/examsync-backend/internal/jobs/leaderboard"
	board "github.com/yungbote/examsync-backend/internal/modules/practice/leaderboard"
	"github.com/yungbote/examsync-backend/internal/platform/logger"
)

type Clients struct {
	DB    *db.Service
	Redis *goredis.Client
	// Snapshot store and single-writer lease. Redis-backed when REDIS_ADDR is set, in-process
	// otherwise.
	LeaderboardCache board.Cache
	LeaderboardLock  leaderboardjob.Locker
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	dbs, err := db.NewService(cfg.DB, log)
	if err != nil {
		return Clients{}, fmt.Errorf("init database: %w", err)
	}
	if err := db.AutoMigrateAll(dbs.DB()); err != nil {
		_ = dbs.Close()
		return Clients{}, fmt.Errorf("automigrate: %w", err)
	}

	out := Clients{DB: dbs}
	if cfg.RedisAddr == "" {
		log.Info("REDIS_ADDR not set; leaderboard snapshot kept in process")
		out.LeaderboardCache = board.NewMemoryCache()
		out.LeaderboardLock = leaderboardjob.NewLocalLocker()
		return out, nil
	}

	rdb, err := redis.NewClient(ctx, log, redis.Config{
		Addr:      cfg.RedisAddr,
		Password:  cfg.RedisPassword,
		DB:        cfg.RedisDB,
		KeyPrefix: cfg.RedisKeyPrefix,
	})
	if err != nil {
		_ = dbs.Close()
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}
	out.Redis = rdb
	// The live snapshot never expires; a stalled aggregator leaves the last board up, flagged stale.
	out.LeaderboardCache = redis.NewSnapshotCache(rdb, cfg.RedisKeyPrefix, 0)
	out.LeaderboardLock = redis.NewLeaseLocker(rdb, cfg.RedisKeyPrefix)
	return out, nil
}

func (c Clients) Close(log *logger.Logger) {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warn("redis close failed", "error", err)
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			log.Warn("database close failed", "error", err)
		}
	}
}
