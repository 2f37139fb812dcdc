package dedup

import (
	"github.com/google/uuid"
)

type Verdict int

const (
	Accepted Verdict = iota
	Duplicate
	Invalid
)

func (v Verdict) String() string {
	switch v {
	case Accepted:
		return "accepted"
	case Duplicate:
		return "duplicate"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Item is one submitted attempt reduced to what the partition needs. Ids that failed to
// parse are uuid.Nil.
type Item struct {
	AttemptID  uuid.UUID
	QuestionID uuid.UUID
}

// Result holds input indexes per verdict, in input order.
type Result struct {
	Accepted   []int
	Duplicates []int
	Invalid    []int
	Verdicts   []Verdict
}

// Partition classifies a batch for one user. stored holds attempt ids already recorded for the
// user; knownQuestion reports whether a question id resolves in the catalog.
//
// An attempt id seen earlier in the batch is a duplicate only if that earlier item was
// accepted; an invalid item never reserves its id.
func Partition(items []Item, stored map[uuid.UUID]struct{}, knownQuestion func(uuid.UUID) bool) Result {
	res := Result{Verdicts: make([]Verdict, len(items))}
	seen := make(map[uuid.UUID]struct{}, len(items))
	for i, it := range items {
		v := classify(it, stored, seen, knownQuestion)
		res.Verdicts[i] = v
		switch v {
		case Accepted:
			seen[it.AttemptID] = struct{}{}
			res.Accepted = append(res.Accepted, i)
		case Duplicate:
			res.Duplicates = append(res.Duplicates, i)
		default:
			res.Invalid = append(res.Invalid, i)
		}
	}
	return res
}

func classify(it Item, stored, seen map[uuid.UUID]struct{}, knownQuestion func(uuid.UUID) bool) Verdict {
	if it.AttemptID == uuid.Nil {
		return Invalid
	}
	// Stored attempts stay duplicates even if their question was later retired.
	if _, ok := stored[it.AttemptID]; ok {
		return Duplicate
	}
	if _, ok := seen[it.AttemptID]; ok {
		return Duplicate
	}
	if it.QuestionID == uuid.Nil || knownQuestion == nil || !knownQuestion(it.QuestionID) {
		return Invalid
	}
	return Accepted
}

// AttemptIDs lists the distinct non-nil attempt ids in a batch, for the stored-id lookup.
func AttemptIDs(items []Item) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(items))
	out := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		if it.AttemptID == uuid.Nil {
			continue
		}
		if _, ok := seen[it.AttemptID]; ok {
			continue
		}
		seen[it.AttemptID] = struct{}{}
		out = append(out, it.AttemptID)
	}
	return out
}

// QuestionIDs lists the distinct non-nil question ids in a batch.
func QuestionIDs(items []Item) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(items))
	out := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		if it.QuestionID == uuid.Nil {
			continue
		}
		if _, ok := seen[it.QuestionID]; ok {
			continue
		}
		seen[it.QuestionID] = struct{}{}
		out = append(out, it.QuestionID)
	}
	return out
}
