// Package leaderboard ranks per-user attempt totals for a period window and holds the
// resulting snapshot. Snapshots are immutable once built; caches replace them whole.
package leaderboard

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

type Entry struct {
	Rank             int       `json:"rank"`
	UserID           uuid.UUID `json:"user_id"`
	DisplayName      string    `json:"display_name"`
	AttemptsInPeriod int64     `json:"attempts_in_period"`
	AccuracyInPeriod float64   `json:"accuracy_in_period"`
}

type Snapshot struct {
	GeneratedAt time.Time `json:"generated_at"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	// Users with at least one attempt in the window, ranked or not.
	Participants int     `json:"participants"`
	Entries      []Entry `json:"entries"`
}

// Top returns at most limit entries; limit <= 0 returns all of them.
func (s *Snapshot) Top(limit int) []Entry {
	if s == nil {
		return nil
	}
	if limit <= 0 || limit >= len(s.Entries) {
		return s.Entries
	}
	return s.Entries[:limit]
}

func (s *Snapshot) Find(userID uuid.UUID) (Entry, bool) {
	if s == nil {
		return Entry{}, false
	}
	for _, e := range s.Entries {
		if e.UserID == userID {
			return e, true
		}
	}
	return Entry{}, false
}

// Stale reports whether the snapshot is older than ttl at now. A nil snapshot is stale.
func (s *Snapshot) Stale(now time.Time, ttl time.Duration) bool {
	if s == nil {
		return true
	}
	if ttl <= 0 {
		return false
	}
	return now.Sub(s.GeneratedAt) > ttl
}

// Tally is one user's totals inside the window.
type Tally struct {
	UserID   uuid.UUID
	Attempts int64
	Correct  int64
}

func (t Tally) Accuracy() float64 {
	if t.Attempts <= 0 {
		return 0
	}
	return float64(t.Correct) / float64(t.Attempts)
}

// Less orders by attempts desc, accuracy desc, then user id.
func Less(a, b Tally) bool {
	if a.Attempts != b.Attempts {
		return a.Attempts > b.Attempts
	}
	// Cross-multiplied so equal ratios compare equal.
	l, r := a.Correct*b.Attempts, b.Correct*a.Attempts
	if l != r {
		return l > r
	}
	return a.UserID.String() < b.UserID.String()
}

// Ranker keeps the best size tallies seen so far. Memory stays bounded by size however many
// users are fed in.
type Ranker struct {
	size  int
	seen  int
	rows  []Tally
	dirty bool
}

func NewRanker(size int) *Ranker {
	if size <= 0 {
		size = 100
	}
	return &Ranker{size: size, rows: make([]Tally, 0, 2*size)}
}

func (r *Ranker) Add(t Tally) {
	if t.Attempts <= 0 {
		return
	}
	r.seen++
	r.rows = append(r.rows, t)
	r.dirty = true
	if len(r.rows) >= 2*r.size {
		r.compact()
	}
}

func (r *Ranker) compact() {
	if !r.dirty {
		return
	}
	sort.Slice(r.rows, func(i, j int) bool { return Less(r.rows[i], r.rows[j]) })
	if len(r.rows) > r.size {
		r.rows = r.rows[:r.size]
	}
	r.dirty = false
}

// Seen is the number of tallies fed in.
func (r *Ranker) Seen() int { return r.seen }

// Ranked returns the kept tallies in rank order.
func (r *Ranker) Ranked() []Tally {
	r.compact()
	out := make([]Tally, len(r.rows))
	copy(out, r.rows)
	return out
}

// Build assembles a snapshot from ranked tallies. names may miss users; those keep an empty
// display name.
func Build(ranked []Tally, names map[uuid.UUID]string, participants int, generatedAt, from, to time.Time) *Snapshot {
	s := &Snapshot{
		GeneratedAt:  generatedAt.UTC(),
		PeriodStart:  from.UTC(),
		PeriodEnd:    to.UTC(),
		Participants: participants,
		Entries:      make([]Entry, 0, len(ranked)),
	}
	for i, t := range ranked {
		s.Entries = append(s.Entries, Entry{
			Rank:             i + 1,
			UserID:           t.UserID,
			DisplayName:      names[t.UserID],
			AttemptsInPeriod: t.Attempts,
			AccuracyInPeriod: t.Accuracy(),
		})
	}
	return s
}

// Cache holds the live snapshot. Swap replaces it whole; Load never observes a partial write.
// Load returns nil, nil before the first swap.
type Cache interface {
	Load(ctx context.Context) (*Snapshot, error)
	Swap(ctx context.Context, s *Snapshot) error
}

// MemoryCache is a process-local Cache.
type MemoryCache struct {
	cur atomic.Pointer[Snapshot]
}

func NewMemoryCache() *MemoryCache { return &MemoryCache{} }

func (c *MemoryCache) Load(ctx context.Context) (*Snapshot, error) {
	return c.cur.Load(), nil
}

func (c *MemoryCache) Swap(ctx context.Context, s *Snapshot) error {
	c.cur.Store(s)
	return nil
}
