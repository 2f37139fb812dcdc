package practice

import (
	"context"
	"encoding/json"
	"testing"

	"gorm.io/datatypes"

	"github.com/yungbote/examsync-backend/internal/data/repos/testutil"
	types "github.com/yungbote/examsync-backend/internal/domain"
)

func TestTopicMasteryRepo(t *testing.T) {
	db := testutil.DB(t)
	repo := NewTopicMasteryRepo(db, testutil.Logger(t))
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, db, "u")
	rows := []*types.TopicMastery{
		{UserID: u.ID, Subject: "Math", Topic: "Algebra", AttemptsCount: 5, RollingAccuracy: 0.2, RecentOutcomes: datatypes.JSON(`[false,false,false,false,true]`)},
		{UserID: u.ID, Subject: "Math", Topic: "Geometry", AttemptsCount: 5, CorrectCount: 5, RollingAccuracy: 1},
		{UserID: u.ID, Subject: "Bio", Topic: "Cells", AttemptsCount: 1},
	}
	if err := repo.Save(ctx, db, rows); err != nil {
		t.Fatalf("Save: %v", err)
	}

	all, err := repo.ListByUser(ctx, db, u.ID, nil)
	if err != nil || len(all) != 3 {
		t.Fatalf("ListByUser: %d, %v", len(all), err)
	}
	math, err := repo.ListByUser(ctx, db, u.ID, []string{"Math"})
	if err != nil || len(math) != 2 || math[0].Topic != "Algebra" {
		t.Fatalf("ListByUser(subjects): %+v, %v", math, err)
	}

	got, err := repo.GetByUserAndKeys(ctx, db, u.ID, []types.TopicKey{{Subject: "Math", Topic: "Algebra"}, {Subject: "Bio", Topic: "Cells"}})
	if err != nil || len(got) != 2 {
		t.Fatalf("GetByUserAndKeys: %+v, %v", got, err)
	}

	rows[0].AttemptsCount = 6
	rows[0].RollingAccuracy = 1.0 / 6.0
	if err := repo.Save(ctx, db, rows[:1]); err != nil {
		t.Fatalf("Save(update): %v", err)
	}
	got, err = repo.GetByUserAndKeys(ctx, db, u.ID, []types.TopicKey{{Subject: "Math", Topic: "Algebra"}})
	if err != nil || len(got) != 1 || got[0].AttemptsCount != 6 {
		t.Fatalf("after update: %+v, %v", got, err)
	}
	var window []bool
	if err := json.Unmarshal(got[0].RecentOutcomes, &window); err != nil || len(window) != 5 || !window[4] {
		t.Fatalf("recent outcomes: %s (%v)", got[0].RecentOutcomes, err)
	}
}

func TestTopicKeyCondition(t *testing.T) {
	cond, args := TopicKeyCondition([]types.TopicKey{{Subject: "a", Topic: "b"}, {Subject: "c", Topic: "d"}})
	if cond != "((subject = ? AND topic = ?) OR (subject = ? AND topic = ?))" {
		t.Fatalf("cond: %s", cond)
	}
	if len(args) != 4 || args[0] != "a" || args[3] != "d" {
		t.Fatalf("args: %v", args)
	}
}
