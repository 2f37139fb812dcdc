package practice

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/examsync-backend/internal/data/repos/testutil"
	types "github.com/yungbote/examsync-backend/internal/domain"
)

func TestReviewScheduleRepo(t *testing.T) {
	db := testutil.DB(t)
	repo := NewReviewScheduleRepo(db, testutil.Logger(t))
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, db, "u")
	now := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	qs := testutil.SeedQuestions(t, ctx, db, "Math", "Algebra", 4)

	rows := []*types.ReviewSchedule{
		{UserID: u.ID, QuestionID: qs[0].ID, Subject: "Math", Topic: "Algebra", EasinessFactor: 2.5, DueAt: now.Add(-2 * time.Hour), ReviewCount: 1, IntervalDays: 1},
		{UserID: u.ID, QuestionID: qs[1].ID, Subject: "Math", Topic: "Algebra", EasinessFactor: 2.5, DueAt: now.Add(-1 * time.Hour), ReviewCount: 1, LapseCount: 1, IntervalDays: 1},
		{UserID: u.ID, QuestionID: qs[2].ID, Subject: "Math", Topic: "Algebra", EasinessFactor: 2.5, DueAt: now.Add(24 * time.Hour), ReviewCount: 3, RepetitionCount: 3, IntervalDays: 15},
		{UserID: u.ID, QuestionID: qs[3].ID, Subject: "Bio", Topic: "Cells", EasinessFactor: 2.5, DueAt: now, ReviewCount: 1, RepetitionCount: 1, IntervalDays: 1},
	}
	if err := repo.Save(ctx, db, rows); err != nil {
		t.Fatalf("Save(create): %v", err)
	}
	for _, r := range rows {
		if r.ID == uuid.Nil {
			t.Fatalf("Save did not assign an id")
		}
	}

	due, err := repo.ListDue(ctx, db, u.ID, now, nil, 100)
	if err != nil {
		t.Fatalf("ListDue: %v", err)
	}
	if len(due) != 3 || due[0].QuestionID != qs[0].ID || due[1].QuestionID != qs[1].ID || due[2].QuestionID != qs[3].ID {
		t.Fatalf("ListDue: unexpected order/result: %+v", due)
	}

	capped, err := repo.ListDue(ctx, db, u.ID, now, nil, 2)
	if err != nil || len(capped) != 2 {
		t.Fatalf("ListDue(cap): %d, %v", len(capped), err)
	}
	mathOnly, err := repo.ListDue(ctx, db, u.ID, now, []string{"Math"}, 100)
	if err != nil || len(mathOnly) != 2 {
		t.Fatalf("ListDue(subjects): %d, %v", len(mathOnly), err)
	}

	rows[0].RepetitionCount = 1
	rows[0].DueAt = now.Add(48 * time.Hour)
	if err := repo.Save(ctx, db, rows[:1]); err != nil {
		t.Fatalf("Save(update): %v", err)
	}
	got, err := repo.GetByUserAndQuestions(ctx, db, u.ID, []uuid.UUID{qs[0].ID})
	if err != nil || len(got) != 1 || got[0].RepetitionCount != 1 {
		t.Fatalf("GetByUserAndQuestions: %+v, %v", got, err)
	}

	buckets, err := repo.Buckets(ctx, db, u.ID, now)
	if err != nil {
		t.Fatalf("Buckets: %v", err)
	}
	var total, dueTotal, lapsed int64
	for _, b := range buckets {
		total += b.Count
		if b.Due {
			dueTotal += b.Count
		}
		if b.Lapsed {
			lapsed += b.Count
		}
	}
	if total != 4 || dueTotal != 2 || lapsed != 1 {
		t.Fatalf("Buckets: total=%d due=%d lapsed=%d (%+v)", total, dueTotal, lapsed, buckets)
	}
}
