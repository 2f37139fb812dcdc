package services

import (
	"context"
	"time"

	"github.com/facebookgo/clock"

	board "github.com/yungbote/examsync-backend/internal/modules/practice/leaderboard"
	"github.com/yungbote/examsync-backend/internal/platform/ctxutil"
	"github.com/yungbote/examsync-backend/internal/platform/logger"
)

type LeaderboardView struct {
	Entries      []board.Entry `json:"entries"`
	GeneratedAt  *time.Time    `json:"generated_at"`
	PeriodStart  *time.Time    `json:"period_start,omitempty"`
	PeriodEnd    *time.Time    `json:"period_end,omitempty"`
	Participants int           `json:"participants"`
	// True when the snapshot is older than its TTL or missing; it is served regardless.
	Stale bool         `json:"stale"`
	Me    *board.Entry `json:"me,omitempty"`
}

type LeaderboardService interface {
	Read(ctx context.Context, id ctxutil.Identity, limit int) (*LeaderboardView, error)
}

type leaderboardService struct {
	log   *logger.Logger
	cache board.Cache
	ttl   time.Duration
	clock clock.Clock
}

// NewLeaderboardService serves whatever snapshot the cache holds. It never recomputes.
func NewLeaderboardService(baseLog *logger.Logger, cache board.Cache, ttl time.Duration, clk clock.Clock) LeaderboardService {
	if clk == nil {
		clk = clock.New()
	}
	return &leaderboardService{
		log:   baseLog.With("service", "LeaderboardService"),
		cache: cache,
		ttl:   ttl,
		clock: clk,
	}
}

func (s *leaderboardService) Read(ctx context.Context, id ctxutil.Identity, limit int) (*LeaderboardView, error) {
	if limit < 0 {
		return nil, ErrInvalidLimit
	}
	snap, err := s.cache.Load(ctx)
	if err != nil {
		s.log.Warn("leaderboard cache read failed", "error", err)
		return nil, ErrLeaderboardUnavailable
	}
	view := &LeaderboardView{
		Entries: []board.Entry{},
		Stale:   snap.Stale(s.clock.Now(), s.ttl),
	}
	if snap == nil {
		return view, nil
	}
	if top := snap.Top(limit); top != nil {
		view.Entries = top
	}
	generated, from, to := snap.GeneratedAt, snap.PeriodStart, snap.PeriodEnd
	view.GeneratedAt, view.PeriodStart, view.PeriodEnd = &generated, &from, &to
	view.Participants = snap.Participants
	if me, ok := snap.Find(id.UserID); ok {
		view.Me = &me
	}
	return view, nil
}
