package aggregates

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/examsync-backend/internal/platform/dbctx"
	"github.com/yungbote/examsync-backend/internal/platform/logger"
)

// TxRunner provides a shared transaction boundary primitive for aggregate writes.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

const (
	defaultMaxAttempts = 3
	defaultBackoff     = 25 * time.Millisecond
)

type gormTxRunner struct {
	db          *gorm.DB
	log         *logger.Logger
	maxAttempts int
	backoff     time.Duration
}

// NewGormTxRunner returns a transaction runner backed by GORM transactions. Retryable
// failures (serialization, deadlock) re-run fn from the start, so fn must not keep state
// across calls.
func NewGormTxRunner(db *gorm.DB, baseLog *logger.Logger) TxRunner {
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	return &gormTxRunner{
		db:          db,
		log:         baseLog.With("component", "TxRunner"),
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackoff,
	}
}

func (r *gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return errors.New("transaction runner has nil db")
	}

	var err error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(dbctx.New(ctx, tx))
		})
		if err == nil || !IsRetryable(err) || attempt == r.maxAttempts {
			return err
		}
		r.log.Warn("retrying transaction", "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * r.backoff):
		}
	}
	return err
}
