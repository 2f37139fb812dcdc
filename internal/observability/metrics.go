package observability

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/examsync-backend/internal/platform/logger"
)

type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge
	rateLimited *CounterVec

	pushBatches *CounterVec
	pushItems   *CounterVec
	pushLatency *HistogramVec
	pullItems   *CounterVec
	pullLatency *HistogramVec

	leaderboardRuns     *CounterVec
	leaderboardDuration *HistogramVec
	leaderboardEntries  *Gauge
	leaderboardUsers    *Gauge

	dbStats   *GaugeVec
	redisUp   *Gauge
	redisPing *Gauge

	all []collector
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Init installs the process-wide metrics once. Disabled metrics leave Current nil; every
// method on a nil *Metrics is a no-op.
func Init(log *logger.Logger, enabled bool) *Metrics {
	if !enabled {
		return nil
	}
	initOnce.Do(func() {
		instance = New()
		if log != nil {
			log.Info("metrics enabled")
		}
	})
	return instance
}

func Current() *Metrics {
	return instance
}

// New builds an unregistered Metrics, for tests and embedding.
func New() *Metrics {
	m := &Metrics{
		apiRequests: NewCounterVec("es_api_requests_total", "API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec("es_api_request_duration_seconds", "API request latency by method/route/status.",
			[]string{"method", "route", "status"}, nil),
		apiInflight: NewGauge("es_api_inflight_requests", "In-flight API requests."),
		rateLimited: NewCounterVec("es_api_rate_limited_total", "Requests rejected by the per-user limiter.", []string{"route"}),

		pushBatches: NewCounterVec("es_sync_push_batches_total", "Push batches by status.", []string{"status"}),
		pushItems:   NewCounterVec("es_sync_push_items_total", "Pushed attempts by outcome.", []string{"outcome"}),
		pushLatency: NewHistogramVec("es_sync_push_duration_seconds", "Push handling latency by status.", []string{"status"}, nil),
		pullItems:   NewCounterVec("es_sync_pull_items_total", "Items returned by pull, by kind.", []string{"kind"}),
		pullLatency: NewHistogramVec("es_sync_pull_duration_seconds", "Pull handling latency by status.", []string{"status"}, nil),

		leaderboardRuns: NewCounterVec("es_leaderboard_runs_total", "Leaderboard aggregator runs by status.", []string{"status"}),
		leaderboardDuration: NewHistogramVec("es_leaderboard_run_duration_seconds", "Leaderboard aggregator run duration.",
			[]string{"status"}, []float64{0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 120, 300}),
		leaderboardEntries: NewGauge("es_leaderboard_entries", "Entries in the live leaderboard snapshot."),
		leaderboardUsers:   NewGauge("es_leaderboard_participants", "Users with attempts in the live leaderboard window."),

		dbStats:   NewGaugeVec("es_db_pool", "database/sql pool stats.", []string{"stat"}),
		redisUp:   NewGauge("es_redis_up", "Redis reachability (1 up, 0 down)."),
		redisPing: NewGauge("es_redis_ping_seconds", "Redis ping latency in seconds."),
	}
	m.all = []collector{
		m.apiRequests, m.apiLatency, m.apiInflight, m.rateLimited,
		m.pushBatches, m.pushItems, m.pushLatency, m.pullItems, m.pullLatency,
		m.leaderboardRuns, m.leaderboardDuration, m.leaderboardEntries, m.leaderboardUsers,
		m.dbStats, m.redisUp, m.redisPing,
	}
	return m
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range m.all {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unknown"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Add(1)
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Add(-1)
}

func (m *Metrics) IncRateLimited(route string) {
	if m == nil {
		return
	}
	m.rateLimited.Inc(route)
}

// ObservePush records one push batch. status is ok, rejected or failed.
func (m *Metrics) ObservePush(status string, accepted, duplicate, invalid int, dur time.Duration) {
	if m == nil {
		return
	}
	m.pushBatches.Inc(status)
	m.pushLatency.Observe(dur.Seconds(), status)
	m.pushItems.Add(float64(accepted), "accepted")
	m.pushItems.Add(float64(duplicate), "duplicate")
	m.pushItems.Add(float64(invalid), "invalid")
}

func (m *Metrics) ObservePull(status string, newQuestions, dueReviews, grades int, dur time.Duration) {
	if m == nil {
		return
	}
	m.pullLatency.Observe(dur.Seconds(), status)
	m.pullItems.Add(float64(newQuestions), "new_question")
	m.pullItems.Add(float64(dueReviews), "due_review")
	m.pullItems.Add(float64(grades), "grade")
}

// ObserveLeaderboardRun records one aggregator run. entries and participants are only applied
// for successful runs.
func (m *Metrics) ObserveLeaderboardRun(status string, dur time.Duration, entries, participants int) {
	if m == nil {
		return
	}
	m.leaderboardRuns.Inc(status)
	m.leaderboardDuration.Observe(dur.Seconds(), status)
	if status == "ok" {
		m.leaderboardEntries.Set(float64(entries))
		m.leaderboardUsers.Set(float64(participants))
	}
}

// PushItems returns the running total for one push outcome.
func (m *Metrics) PushItems(outcome string) float64 {
	if m == nil {
		return 0
	}
	return m.pushItems.Value(outcome)
}

func (m *Metrics) RateLimitedCount(route string) float64 {
	if m == nil {
		return 0
	}
	return m.rateLimited.Value(route)
}

// LeaderboardRuns returns the run count for one status.
func (m *Metrics) LeaderboardRuns(status string) float64 {
	if m == nil {
		return 0
	}
	return m.leaderboardRuns.Value(status)
}

func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB, interval time.Duration) {
	if m == nil || db == nil {
		return
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: db stats unavailable", "error", err)
					}
					continue
				}
				st := sqlDB.Stats()
				m.dbStats.Set(float64(st.OpenConnections), "open_connections")
				m.dbStats.Set(float64(st.InUse), "in_use")
				m.dbStats.Set(float64(st.Idle), "idle")
				m.dbStats.Set(float64(st.WaitCount), "wait_count")
				m.dbStats.Set(st.WaitDuration.Seconds(), "wait_duration_seconds")
				m.dbStats.Set(float64(st.MaxOpenConnections), "max_open_connections")
			}
		}
	}()
}

func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb goredis.UniversalClient, interval time.Duration) {
	if m == nil || rdb == nil {
		return
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}

// StatusLabel maps an HTTP status code to its label value.
func StatusLabel(code int) string { return strconv.Itoa(code) }
