package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	board "github.com/yungbote/examsync-backend/internal/modules/practice/leaderboard"
)

// Bounds a staging key orphaned by a failed swap.
const stagingTTL = time.Minute

// SnapshotCache stores the leaderboard snapshot under one key. A swap writes a private staging
// key and RENAMEs it over the live key, so readers see either the old or the new snapshot.
type SnapshotCache struct {
	rdb       goredis.UniversalClient
	key       string
	retention time.Duration
}

// NewSnapshotCache keeps each snapshot for retention, or until replaced when retention is 0.
// Retention is not the freshness TTL: a snapshot past its TTL is still served, flagged stale,
// so a positive retention must outlast the refresh interval and any aggregator outage.
func NewSnapshotCache(rdb goredis.UniversalClient, prefix string, retention time.Duration) *SnapshotCache {
	return &SnapshotCache{
		rdb:       rdb,
		key:       prefixed(prefix, "leaderboard:snapshot"),
		retention: retention,
	}
}

func (c *SnapshotCache) Load(ctx context.Context) (*board.Snapshot, error) {
	raw, err := c.rdb.Get(ctx, c.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get leaderboard snapshot: %w", err)
	}
	var s board.Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode leaderboard snapshot: %w", err)
	}
	return &s, nil
}

func (c *SnapshotCache) Swap(ctx context.Context, s *board.Snapshot) error {
	if s == nil {
		return errors.New("nil snapshot")
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode leaderboard snapshot: %w", err)
	}
	staging := c.key + ":staging:" + uuid.NewString()
	_, err = c.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Set(ctx, staging, raw, stagingTTL)
		// RENAME carries the staging TTL over; reset it for the live key.
		p.Rename(ctx, staging, c.key)
		if c.retention > 0 {
			p.Expire(ctx, c.key, c.retention)
		} else {
			p.Persist(ctx, c.key)
		}
		return nil
	})
	if err != nil {
		// Best effort; the staging key expires on its own.
		_ = c.rdb.Del(context.Background(), staging).Err()
		return fmt.Errorf("swap leaderboard snapshot: %w", err)
	}
	return nil
}
