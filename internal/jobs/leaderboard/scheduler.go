package leaderboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/facebookgo/clock"

	"github.com/yungbote/examsync-backend/internal/observability"
	"github.com/yungbote/examsync-backend/internal/platform/keylock"
	"github.com/yungbote/examsync-backend/internal/platform/logger"
)

const leaseKey = "leaderboard:refresh"

// Locker hands out the single-writer lease. ok is false while another writer holds it.
type Locker interface {
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}

// LocalLocker is a Locker for single-instance deployments.
type LocalLocker struct {
	locks *keylock.Locker
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: keylock.New()}
}

func (l *LocalLocker) TryAcquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	release, ok := l.locks.TryLock(key)
	return release, ok, nil
}

// Scheduler runs the aggregator every interval, at most one run at a time across every
// process sharing the Locker.
type Scheduler struct {
	log      *logger.Logger
	agg      *Aggregator
	lock     Locker
	clock    clock.Clock
	interval time.Duration

	wg sync.WaitGroup
}

func NewScheduler(baseLog *logger.Logger, agg *Aggregator, lock Locker, clk clock.Clock) *Scheduler {
	if clk == nil {
		clk = clock.New()
	}
	if lock == nil {
		lock = NewLocalLocker()
	}
	return &Scheduler{
		log:      baseLog.With("job", "LeaderboardScheduler"),
		agg:      agg,
		lock:     lock,
		clock:    clk,
		interval: agg.Config().Interval,
	}
}

// RunOnce performs one run if the lease is free. ran is false when another writer holds it.
func (s *Scheduler) RunOnce(ctx context.Context) (ran bool, err error) {
	// The lease outlives the budget so a slow run never overlaps the next one.
	lease := s.agg.Config().Budget + 30*time.Second
	release, ok, err := s.lock.TryAcquire(ctx, leaseKey, lease)
	if err != nil {
		return false, fmt.Errorf("acquire leaderboard lease: %w", err)
	}
	if !ok {
		observability.Current().ObserveLeaderboardRun("skipped", 0, 0, 0)
		s.log.Debug("leaderboard run skipped; lease held elsewhere")
		return false, nil
	}
	defer release()
	_, err = s.agg.Run(ctx)
	return true, err
}

// Start runs immediately and then on every tick until ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	s.log.Info("starting leaderboard scheduler", "interval", s.interval)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := s.clock.Ticker(s.interval)
		defer ticker.Stop()
		s.tick(ctx)
		for {
			select {
			case <-ctx.Done():
				s.log.Info("leaderboard scheduler stopped")
				return
			case <-ticker.C:
				s.tick(ctx)
			}
		}
	}()
}

// Wait blocks until a started scheduler has exited.
func (s *Scheduler) Wait() { s.wg.Wait() }

func (s *Scheduler) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("leaderboard run panic", "panic", r)
		}
	}()
	if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
		s.log.Warn("leaderboard tick failed; retrying next interval", "error", err)
	}
}
