package app

import (
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/examsync-backend/internal/data/db"
	"github.com/yungbote/examsync-backend/internal/platform/envutil"
	"github.com/yungbote/examsync-backend/internal/platform/logger"
)

type Config struct {
	HTTPAddr    string
	CORSOrigins []string

	DB db.Config

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	JWTLeeway   time.Duration

	PolicyPath   string
	PushMaxBatch int

	SyncRatePerSec float64
	SyncRateBurst  int

	LeaderboardPeriod   time.Duration
	LeaderboardInterval time.Duration
	LeaderboardTTL      time.Duration
	LeaderboardBudget   time.Duration
	LeaderboardSize     int
	LeaderboardPageSize int
	// Disables the in-process scheduler; an external cron runs cmd/leaderboard_refresh instead.
	LeaderboardSchedulerOff bool

	MetricsEnabled  bool
	MetricsInterval time.Duration

	TracingEnabled     bool
	TracingEndpoint    string
	TracingInsecure    bool
	TracingHeaders     string
	TracingSampleRatio float64
	ServiceName        string
	Environment        string
	Version            string
}

// LoadConfig reads the environment, after merging a local .env file when one exists.
func LoadConfig(log *logger.Logger) Config {
	if err := godotenv.Load(); err == nil && log != nil {
		log.Info("loaded .env file")
	}

	driver := envutil.String("DB_DRIVER", db.DriverPostgres)
	dsn := envutil.String("DATABASE_URL", "")
	if dsn == "" && driver == db.DriverPostgres {
		dsn = db.PostgresDSN(
			envutil.String("POSTGRES_HOST", "localhost"),
			envutil.String("POSTGRES_PORT", "5432"),
			envutil.String("POSTGRES_USER", "postgres"),
			envutil.String("POSTGRES_PASSWORD", ""),
			envutil.String("POSTGRES_NAME", "examsync"),
			envutil.String("POSTGRES_SSLMODE", "disable"),
		)
	}

	cfg := Config{
		HTTPAddr:    envutil.String("HTTP_ADDR", ":8080"),
		CORSOrigins: envutil.CSV("CORS_ORIGINS", nil),
		DB: db.Config{
			Driver:       driver,
			DSN:          dsn,
			MaxOpenConns: envutil.Int("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns: envutil.Int("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLife:  envutil.Duration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},

		RedisAddr:      envutil.String("REDIS_ADDR", ""),
		RedisPassword:  envutil.String("REDIS_PASSWORD", ""),
		RedisDB:        envutil.Int("REDIS_DB", 0),
		RedisKeyPrefix: envutil.String("REDIS_KEY_PREFIX", "examsync"),

		JWTSecret:   envutil.String("JWT_SECRET_KEY", ""),
		JWTIssuer:   envutil.String("JWT_ISSUER", ""),
		JWTAudience: envutil.String("JWT_AUDIENCE", ""),
		JWTLeeway:   envutil.Duration("JWT_LEEWAY", 30*time.Second),

		PolicyPath:   envutil.String("PRACTICE_POLICY_PATH", ""),
		PushMaxBatch: envutil.Int("PUSH_MAX_BATCH", 500),

		SyncRatePerSec: envutil.Float("SYNC_RATE_PER_SEC", 5),
		SyncRateBurst:  envutil.Int("SYNC_RATE_BURST", 20),

		LeaderboardPeriod:       envutil.Duration("LEADERBOARD_PERIOD", 7*24*time.Hour),
		LeaderboardInterval:     envutil.Duration("LEADERBOARD_INTERVAL", time.Hour),
		LeaderboardTTL:          envutil.Duration("LEADERBOARD_TTL", 2*time.Hour),
		LeaderboardBudget:       envutil.Duration("LEADERBOARD_BUDGET", 2*time.Minute),
		LeaderboardSize:         envutil.Int("LEADERBOARD_SIZE", 100),
		LeaderboardPageSize:     envutil.Int("LEADERBOARD_PAGE_SIZE", 500),
		LeaderboardSchedulerOff: envutil.Bool("LEADERBOARD_SCHEDULER_DISABLED", false),

		MetricsEnabled:  envutil.Bool("METRICS_ENABLED", true),
		MetricsInterval: envutil.Duration("METRICS_COLLECT_INTERVAL", 15*time.Second),

		TracingEnabled:     envutil.Bool("OTEL_ENABLED", false),
		TracingEndpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		TracingInsecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", true),
		TracingHeaders:     envutil.String("OTEL_EXPORTER_OTLP_HEADERS", ""),
		TracingSampleRatio: envutil.Float("OTEL_SAMPLE_RATIO", 1),
		ServiceName:        envutil.String("OTEL_SERVICE_NAME", "examsync"),
		Environment:        envutil.String("APP_ENV", "development"),
		Version:            envutil.String("APP_VERSION", "dev"),
	}
	if cfg.JWTSecret == "" && log != nil {
		log.Warn("JWT_SECRET_KEY is empty; every authenticated request will be rejected")
	}
	return cfg
}
