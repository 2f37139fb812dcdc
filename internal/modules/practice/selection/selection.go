package selection

import (
	"math"
	"math/rand"

	"github.com/google/uuid"

	types "github.com/yungbote/examsync-backend/internal/domain"
)

type Config struct {
	// Share of the pull limit reserved for weak topics; the rest is drawn uniformly.
	WeakShare float64 `yaml:"weak_share" json:"weak_share"`
}

func DefaultConfig() Config { return Config{WeakShare: 0.7} }

// Split returns (weak, random) slot counts for a limit: ceil(share*limit) and the remainder.
func (c Config) Split(limit int) (int, int) {
	if limit <= 0 {
		return 0, 0
	}
	share := c.WeakShare
	if share < 0 {
		share = 0
	}
	if share > 1 {
		share = 1
	}
	weak := int(math.Ceil(share*float64(limit) - 1e-9))
	if weak > limit {
		weak = limit
	}
	return weak, limit - weak
}

// Candidate is an unseen question eligible for a pull.
type Candidate struct {
	QuestionID uuid.UUID
	Key        types.TopicKey
}

// Pick chooses up to limit candidates. Weak slots are filled round-robin across weak topics
// (weakest first), falling back to any topic once weak topics run dry. Remaining slots are
// uniform over what is left. The result lists weak picks first.
func (c Config) Pick(cands []Candidate, weak []types.TopicKey, limit int, rng *rand.Rand) []Candidate {
	if limit <= 0 || len(cands) == 0 {
		return nil
	}
	weakSlots, _ := c.Split(limit)

	pool := make([]Candidate, len(cands))
	copy(pool, cands)
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	byTopic := make(map[types.TopicKey][]int, len(weak))
	for i, cand := range pool {
		byTopic[cand.Key] = append(byTopic[cand.Key], i)
	}

	taken := make([]bool, len(pool))
	out := make([]Candidate, 0, min(limit, len(pool)))

	queues := make([][]int, 0, len(weak))
	for _, k := range weak {
		if idx := byTopic[k]; len(idx) > 0 {
			queues = append(queues, idx)
		}
	}
	for len(out) < weakSlots && len(queues) > 0 {
		next := queues[:0]
		for _, q := range queues {
			if len(out) >= weakSlots {
				next = append(next, q)
				continue
			}
			i := q[0]
			taken[i] = true
			out = append(out, pool[i])
			if len(q) > 1 {
				next = append(next, q[1:])
			}
		}
		queues = next
	}

	// Fallback to any topic for unfilled weak slots, then the uniform remainder. The pool is
	// already shuffled so a forward scan is a uniform draw.
	for i := range pool {
		if len(out) >= limit {
			break
		}
		if taken[i] {
			continue
		}
		taken[i] = true
		out = append(out, pool[i])
	}
	return out
}
