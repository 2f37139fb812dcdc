package classroom

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/examsync-backend/internal/data/repos/testutil"
)

func TestGradeNoticeRepoListSince(t *testing.T) {
	db := testutil.DB(t)
	repo := NewGradeNoticeRepo(db, testutil.Logger(t))
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, db, "u")
	other := testutil.SeedUser(t, ctx, db, "other")
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	testutil.SeedGradeNotice(t, ctx, db, u.ID, "quiz 1", base)
	testutil.SeedGradeNotice(t, ctx, db, u.ID, "quiz 2", base.Add(time.Hour))
	testutil.SeedGradeNotice(t, ctx, db, u.ID, "quiz 3", base.Add(3*time.Hour))
	testutil.SeedGradeNotice(t, ctx, db, other.ID, "not mine", base.Add(time.Hour))

	all, err := repo.ListSince(ctx, db, u.ID, nil, base.Add(2*time.Hour), 0)
	if err != nil {
		t.Fatalf("ListSince: %v", err)
	}
	if len(all) != 2 || all[0].Title != "quiz 1" || all[1].Title != "quiz 2" {
		t.Fatalf("ListSince(nil): unexpected result: %+v", all)
	}

	after := base
	delta, err := repo.ListSince(ctx, db, u.ID, &after, base.Add(5*time.Hour), 0)
	if err != nil {
		t.Fatalf("ListSince: %v", err)
	}
	if len(delta) != 2 || delta[0].Title != "quiz 2" || delta[1].Title != "quiz 3" {
		t.Fatalf("ListSince(after): unexpected result: %+v", delta)
	}

	limited, err := repo.ListSince(ctx, db, u.ID, nil, base.Add(5*time.Hour), 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("ListSince(limit): got %d, %v", len(limited), err)
	}
}
