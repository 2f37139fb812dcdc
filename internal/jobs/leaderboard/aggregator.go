package leaderboard

import (
	"context"
	"fmt"
	"time"

	"github.com/facebookgo/clock"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/examsync-backend/internal/data/repos"
	board "github.com/yungbote/examsync-backend/internal/modules/practice/leaderboard"
	"github.com/yungbote/examsync-backend/internal/observability"
	"github.com/yungbote/examsync-backend/internal/platform/logger"
)

var tracer = otel.Tracer("github.com/yungbote/examsync-backend/internal/jobs/leaderboard")

type Config struct {
	// Rolling window length ending at run time.
	Period   time.Duration
	Interval time.Duration
	TTL      time.Duration
	// Hard limit on one run; an exceeded budget abandons the run.
	Budget   time.Duration
	Size     int
	PageSize int
}

func DefaultConfig() Config {
	return Config{
		Period:   7 * 24 * time.Hour,
		Interval: time.Hour,
		TTL:      2 * time.Hour,
		Budget:   2 * time.Minute,
		Size:     100,
		PageSize: 500,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Period <= 0 {
		c.Period = d.Period
	}
	if c.Interval <= 0 {
		c.Interval = d.Interval
	}
	if c.TTL <= 0 {
		c.TTL = d.TTL
	}
	if c.Budget <= 0 {
		c.Budget = d.Budget
	}
	if c.Size <= 0 {
		c.Size = d.Size
	}
	if c.PageSize <= 0 {
		c.PageSize = d.PageSize
	}
	return c
}

// Aggregator recomputes the leaderboard from the attempt store. It pages through users so no
// single query or transaction spans the whole user base.
type Aggregator struct {
	log      *logger.Logger
	cfg      Config
	attempts repos.AttemptRepo
	users    repos.UserRepo
	cache    board.Cache
	clock    clock.Clock
}

func NewAggregator(baseLog *logger.Logger, cfg Config, attempts repos.AttemptRepo, users repos.UserRepo, cache board.Cache, clk clock.Clock) *Aggregator {
	if clk == nil {
		clk = clock.New()
	}
	return &Aggregator{
		log:      baseLog.With("job", "LeaderboardAggregator"),
		cfg:      cfg.withDefaults(),
		attempts: attempts,
		users:    users,
		cache:    cache,
		clock:    clk,
	}
}

func (a *Aggregator) Config() Config { return a.cfg }

// Compute builds a fresh snapshot without publishing it.
func (a *Aggregator) Compute(ctx context.Context) (*board.Snapshot, error) {
	ctx, span := tracer.Start(ctx, "leaderboard.compute")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Budget)
	defer cancel()

	now := a.clock.Now().UTC()
	from := now.Add(-a.cfg.Period)
	ranker := board.NewRanker(a.cfg.Size)

	after := uuid.Nil
	pages := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("scan interrupted after %d pages: %w", pages, err)
		}
		page, err := a.attempts.WindowTotalsPage(ctx, nil, from, now, after, a.cfg.PageSize)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "window scan failed")
			return nil, fmt.Errorf("scan window totals (page %d): %w", pages+1, err)
		}
		pages++
		for _, row := range page {
			ranker.Add(board.Tally{UserID: row.UserID, Attempts: row.Attempts, Correct: row.Correct})
		}
		if len(page) < a.cfg.PageSize {
			break
		}
		after = page[len(page)-1].UserID
	}

	ranked := ranker.Ranked()
	ids := make([]uuid.UUID, 0, len(ranked))
	for _, t := range ranked {
		ids = append(ids, t.UserID)
	}
	names := map[uuid.UUID]string{}
	if len(ids) > 0 {
		var err error
		if names, err = a.users.DisplayNames(ctx, nil, ids); err != nil {
			return nil, fmt.Errorf("load display names: %w", err)
		}
	}

	span.SetAttributes(
		attribute.Int("leaderboard.pages", pages),
		attribute.Int("leaderboard.participants", ranker.Seen()),
		attribute.Int("leaderboard.entries", len(ranked)),
	)
	return board.Build(ranked, names, ranker.Seen(), now, from, now), nil
}

// Run computes and publishes a snapshot. On any failure the previous snapshot stays live.
func (a *Aggregator) Run(ctx context.Context) (*board.Snapshot, error) {
	start := time.Now()
	snap, err := a.Compute(ctx)
	if err == nil {
		if swapErr := a.cache.Swap(ctx, snap); swapErr != nil {
			err = fmt.Errorf("publish snapshot: %w", swapErr)
		}
	}
	if err != nil {
		observability.Current().ObserveLeaderboardRun("failed", time.Since(start), 0, 0)
		a.log.Error("leaderboard run failed; previous snapshot stays live", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return nil, err
	}
	observability.Current().ObserveLeaderboardRun("ok", time.Since(start), len(snap.Entries), snap.Participants)
	a.log.Info("leaderboard refreshed",
		"entries", len(snap.Entries),
		"participants", snap.Participants,
		"period_start", snap.PeriodStart,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return snap, nil
}
