package user

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/examsync-backend/internal/data/repos/testutil"
	types "github.com/yungbote/examsync-backend/internal/domain"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	repo := NewUserRepo(db, testutil.Logger(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, db, []*types.User{{DisplayName: "Amara"}, {DisplayName: "Kofi"}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 2 || created[0].ID == uuid.Nil {
		t.Fatalf("Create: unexpected result: %+v", created)
	}

	got, err := repo.GetByIDs(ctx, nil, []uuid.UUID{created[0].ID})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(got) != 1 || got[0].DisplayName != "Amara" {
		t.Fatalf("GetByIDs: unexpected result: %+v", got)
	}

	exists, err := repo.Exists(ctx, nil, created[0].ID)
	if err != nil || !exists {
		t.Fatalf("Exists: got %v, %v", exists, err)
	}
	exists, err = repo.Exists(ctx, nil, uuid.New())
	if err != nil || exists {
		t.Fatalf("Exists(unknown): got %v, %v", exists, err)
	}
	if exists, _ := repo.Exists(ctx, nil, uuid.Nil); exists {
		t.Fatalf("Exists(nil id) = true")
	}
}

func TestUserRepoUpsertAndDisplayNames(t *testing.T) {
	db := testutil.DB(t)
	repo := NewUserRepo(db, testutil.Logger(t))
	ctx := context.Background()

	id := uuid.New()
	if err := repo.Upsert(ctx, nil, id, " Amara "); err != nil {
		t.Fatalf("Upsert (insert): %v", err)
	}
	if err := repo.Upsert(ctx, nil, id, "Amara O."); err != nil {
		t.Fatalf("Upsert (update): %v", err)
	}
	if err := repo.Upsert(ctx, nil, uuid.Nil, "nobody"); err == nil {
		t.Fatalf("Upsert accepted nil id")
	}

	names, err := repo.DisplayNames(ctx, nil, []uuid.UUID{id, uuid.New()})
	if err != nil {
		t.Fatalf("DisplayNames: %v", err)
	}
	if len(names) != 1 || names[id] != "Amara O." {
		t.Fatalf("DisplayNames = %v", names)
	}
	if empty, _ := repo.DisplayNames(ctx, nil, nil); len(empty) != 0 {
		t.Fatalf("DisplayNames(nil) = %v", empty)
	}
}
