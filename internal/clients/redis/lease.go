package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// Deletes the key only while it still holds our token, so an expired lease taken over by
// another process is never released by the old holder.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// LeaseLocker is a cross-process single-writer lease (SET NX PX).
type LeaseLocker struct {
	rdb    goredis.UniversalClient
	prefix string
}

func NewLeaseLocker(rdb goredis.UniversalClient, prefix string) *LeaseLocker {
	return &LeaseLocker{rdb: rdb, prefix: prefix}
}

func (l *LeaseLocker) TryAcquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	if ttl <= 0 {
		ttl = time.Minute
	}
	k := prefixed(l.prefix, "lease:"+key)
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, k, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis setnx %s: %w", k, err)
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(rctx, l.rdb, []string{k}, token).Err()
	}
	return release, true, nil
}
