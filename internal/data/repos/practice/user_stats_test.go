package practice

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/examsync-backend/internal/data/repos/testutil"
	types "github.com/yungbote/examsync-backend/internal/domain"
)

func TestUserStatsRepo(t *testing.T) {
	db := testutil.DB(t)
	repo := NewUserStatsRepo(db, testutil.Logger(t))
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, db, "u")
	got, err := repo.Get(ctx, db, u.ID)
	if err != nil || got != nil {
		t.Fatalf("Get(missing): %+v, %v", got, err)
	}

	day := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	row := &types.UserPracticeStats{UserID: u.ID, AttemptsCount: 3, CorrectCount: 2, CurrentStreak: 1, LongestStreak: 1, LastActiveDay: &day}
	if err := repo.Upsert(ctx, db, row); err != nil {
		t.Fatalf("Upsert(insert): %v", err)
	}
	row.AttemptsCount = 5
	row.CurrentStreak = 2
	row.LongestStreak = 2
	if err := repo.Upsert(ctx, db, row); err != nil {
		t.Fatalf("Upsert(update): %v", err)
	}

	got, err = repo.Get(ctx, db, u.ID)
	if err != nil || got == nil {
		t.Fatalf("Get: %+v, %v", got, err)
	}
	if got.AttemptsCount != 5 || got.CurrentStreak != 2 || got.LastActiveDay == nil || !got.LastActiveDay.Equal(day) {
		t.Fatalf("Get: unexpected row: %+v", got)
	}
}

func TestLockUserAggregatesNoopOutsidePostgres(t *testing.T) {
	db := testutil.SQLite(t)
	if err := LockUserAggregates(context.Background(), db, uuid.New()); err != nil {
		t.Fatalf("LockUserAggregates: %v", err)
	}
	if advisoryKey64("ns", uuid.Nil) == advisoryKey64("other", uuid.Nil) {
		t.Fatalf("namespaces must produce different keys")
	}
}
