package practice

import (
	"context"
	"hash/fnv"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/examsync-backend/internal/platform/dbctx"
)

const userAggregateNamespace = "practice_user_aggregates"

// LockUserAggregates takes a transaction-scoped advisory lock on the user's aggregate rows so
// pushes for one user serialize across server instances. It is a no-op outside Postgres; SQLite
// already serializes writers.
func LockUserAggregates(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	dbc := dbctx.New(ctx, tx)
	if userID == uuid.Nil || dbc.Dialect() != "postgres" {
		return nil
	}
	return dbc.Conn(nil).Exec("SELECT pg_advisory_xact_lock(?)", advisoryKey64(userAggregateNamespace, userID)).Error
}

func advisoryKey64(namespace string, id uuid.UUID) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(namespace))
	_, _ = h.Write([]byte{':'})
	_, _ = h.Write([]byte(id.String()))
	return int64(h.Sum64())
}
