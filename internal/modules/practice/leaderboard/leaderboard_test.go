package leaderboard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestLessOrdering(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	b := uuid.MustParse("00000000-0000-0000-0000-00000000000b")

	cases := []struct {
		name string
		x, y Tally
		want bool
	}{
		{"more attempts first", Tally{UserID: b, Attempts: 10, Correct: 1}, Tally{UserID: a, Attempts: 9, Correct: 9}, true},
		{"accuracy breaks attempt ties", Tally{UserID: b, Attempts: 10, Correct: 8}, Tally{UserID: a, Attempts: 10, Correct: 7}, true},
		{"user id breaks full ties", Tally{UserID: a, Attempts: 4, Correct: 2}, Tally{UserID: b, Attempts: 4, Correct: 2}, true},
		{"reverse of id tie", Tally{UserID: b, Attempts: 4, Correct: 2}, Tally{UserID: a, Attempts: 4, Correct: 2}, false},
	}
	for _, tc := range cases {
		if got := Less(tc.x, tc.y); got != tc.want {
			t.Fatalf("%s: Less = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestRankerKeepsTopN(t *testing.T) {
	r := NewRanker(3)
	ids := make([]uuid.UUID, 10)
	for i := range ids {
		ids[i] = uuid.New()
		r.Add(Tally{UserID: ids[i], Attempts: int64(i + 1), Correct: 1})
	}
	r.Add(Tally{UserID: uuid.New()}) // no attempts, ignored

	got := r.Ranked()
	if len(got) != 3 {
		t.Fatalf("len = %d", len(got))
	}
	for i, want := range []uuid.UUID{ids[9], ids[8], ids[7]} {
		if got[i].UserID != want {
			t.Fatalf("rank %d = %v, want %v", i+1, got[i].UserID, want)
		}
	}
	if r.Seen() != 10 {
		t.Fatalf("seen = %d", r.Seen())
	}
}

func TestBuildAndLookup(t *testing.T) {
	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	u1, u2 := uuid.New(), uuid.New()
	snap := Build(
		[]Tally{{UserID: u1, Attempts: 20, Correct: 15}, {UserID: u2, Attempts: 10, Correct: 10}},
		map[uuid.UUID]string{u1: "Asha"},
		5, now, now.Add(-7*24*time.Hour), now,
	)
	if len(snap.Entries) != 2 || snap.Entries[0].Rank != 1 || snap.Entries[1].Rank != 2 {
		t.Fatalf("entries: %+v", snap.Entries)
	}
	if snap.Entries[0].DisplayName != "Asha" || snap.Entries[1].DisplayName != "" {
		t.Fatalf("names: %+v", snap.Entries)
	}
	if snap.Entries[0].AccuracyInPeriod != 0.75 {
		t.Fatalf("accuracy: %v", snap.Entries[0].AccuracyInPeriod)
	}
	if e, ok := snap.Find(u2); !ok || e.Rank != 2 {
		t.Fatalf("find: %+v %v", e, ok)
	}
	if _, ok := snap.Find(uuid.New()); ok {
		t.Fatalf("found unranked user")
	}
	if len(snap.Top(1)) != 1 || len(snap.Top(0)) != 2 || len(snap.Top(50)) != 2 {
		t.Fatalf("top")
	}
	if snap.Stale(now.Add(time.Hour), 2*time.Hour) || !snap.Stale(now.Add(3*time.Hour), 2*time.Hour) {
		t.Fatalf("staleness")
	}
	var none *Snapshot
	if !none.Stale(now, time.Hour) || none.Top(3) != nil {
		t.Fatalf("nil snapshot")
	}
}

func TestMemoryCacheSwap(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	if s, err := c.Load(ctx); s != nil || err != nil {
		t.Fatalf("empty cache: %v %v", s, err)
	}
	first := &Snapshot{Participants: 1}
	second := &Snapshot{Participants: 2}
	_ = c.Swap(ctx, first)
	_ = c.Swap(ctx, second)
	if s, _ := c.Load(ctx); s != second {
		t.Fatalf("load after swap")
	}
	if first.Participants != 1 {
		t.Fatalf("previous snapshot mutated")
	}
}
