package redis

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	board "github.com/yungbote/examsync-backend/internal/modules/practice/leaderboard"
	"github.com/yungbote/examsync-backend/internal/platform/logger"
)

func testClient(t *testing.T) (*goredis.Client, *miniredis.Miniredis, string) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := NewClient(context.Background(), logger.Nop(), Config{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr, "examsync-test"
}

func TestNewClientRequiresAddr(t *testing.T) {
	if _, err := NewClient(context.Background(), logger.Nop(), Config{}); err == nil {
		t.Fatalf("expected error for empty addr")
	}
}

func TestSnapshotCacheSwap(t *testing.T) {
	rdb, _, prefix := testClient(t)
	ctx := context.Background()
	c := NewSnapshotCache(rdb, prefix, time.Hour)

	if s, err := c.Load(ctx); s != nil || err != nil {
		t.Fatalf("empty load: %v %v", s, err)
	}
	u := uuid.New()
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	in := &board.Snapshot{GeneratedAt: at, Participants: 1, Entries: []board.Entry{{Rank: 1, UserID: u, DisplayName: "Ana", AttemptsInPeriod: 9, AccuracyInPeriod: 0.5}}}
	if err := c.Swap(ctx, in); err != nil {
		t.Fatalf("Swap: %v", err)
	}
	if err := c.Swap(ctx, &board.Snapshot{GeneratedAt: at.Add(time.Hour), Participants: 2}); err != nil {
		t.Fatalf("second Swap: %v", err)
	}
	out, err := c.Load(ctx)
	if err != nil || out == nil || out.Participants != 2 || !out.GeneratedAt.Equal(at.Add(time.Hour)) {
		t.Fatalf("Load: %+v %v", out, err)
	}
	staging, _ := rdb.Keys(ctx, prefix+":leaderboard:snapshot:staging:*").Result()
	if len(staging) != 0 {
		t.Fatalf("staging keys left behind: %v", staging)
	}
}

func TestLeaseLocker(t *testing.T) {
	rdb, _, prefix := testClient(t)
	ctx := context.Background()
	a := NewLeaseLocker(rdb, prefix)
	b := NewLeaseLocker(rdb, prefix)

	release, ok, err := a.TryAcquire(ctx, "job", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first acquire: %v %v", ok, err)
	}
	if _, ok, _ := b.TryAcquire(ctx, "job", time.Minute); ok {
		t.Fatalf("second holder acquired the lease")
	}
	release()
	release2, ok, err := b.TryAcquire(ctx, "job", time.Minute)
	if err != nil || !ok {
		t.Fatalf("acquire after release: %v %v", ok, err)
	}
	// A stale release from the first holder must not drop the new lease.
	release()
	if _, ok, _ := a.TryAcquire(ctx, "job", time.Minute); ok {
		t.Fatalf("stale release freed another holder's lease")
	}
	release2()
}

func TestSnapshotOutlivesTTLUntilReplaced(t *testing.T) {
	rdb, mr, prefix := testClient(t)
	ctx := context.Background()
	c := NewSnapshotCache(rdb, prefix, 0)

	at := time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC)
	if err := c.Swap(ctx, &board.Snapshot{GeneratedAt: at, Participants: 3}); err != nil {
		t.Fatalf("Swap: %v", err)
	}
	if ttl := mr.TTL(prefix + ":leaderboard:snapshot"); ttl != 0 {
		t.Fatalf("live snapshot carries a ttl of %v", ttl)
	}

	// A weekly schedule, or an aggregator that stays down, must still leave the last board up.
	mr.FastForward(9 * 24 * time.Hour)
	out, err := c.Load(ctx)
	if err != nil || out == nil || out.Participants != 3 {
		t.Fatalf("snapshot after 9 days: %+v %v", out, err)
	}
}

func TestSnapshotRetentionIsApplied(t *testing.T) {
	rdb, mr, prefix := testClient(t)
	ctx := context.Background()
	c := NewSnapshotCache(rdb, prefix, 3*time.Hour)

	if err := c.Swap(ctx, &board.Snapshot{Participants: 1}); err != nil {
		t.Fatalf("Swap: %v", err)
	}
	if ttl := mr.TTL(prefix + ":leaderboard:snapshot"); ttl != 3*time.Hour {
		t.Fatalf("ttl = %v, want retention rather than the staging ttl", ttl)
	}
	mr.FastForward(3*time.Hour + time.Second)
	if out, err := c.Load(ctx); out != nil || err != nil {
		t.Fatalf("snapshot past retention: %+v %v", out, err)
	}
	for _, k := range mr.Keys() {
		if strings.Contains(k, ":staging:") {
			t.Fatalf("staging key left behind: %s", k)
		}
	}
}
