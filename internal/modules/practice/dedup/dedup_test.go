package dedup

import (
	"reflect"
	"testing"

	"github.com/google/uuid"
)

func TestPartition(t *testing.T) {
	q1, q2, unknown := uuid.New(), uuid.New(), uuid.New()
	a1, a2, a3, stored := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	known := func(id uuid.UUID) bool { return id == q1 || id == q2 }

	items := []Item{
		{AttemptID: a1, QuestionID: q1},          // 0 accepted
		{AttemptID: stored, QuestionID: q1},      // 1 duplicate of stored
		{AttemptID: a1, QuestionID: q2},          // 2 duplicate within batch
		{AttemptID: a2, QuestionID: unknown},     // 3 invalid question
		{AttemptID: uuid.Nil, QuestionID: q1},    // 4 malformed attempt id
		{AttemptID: a3, QuestionID: uuid.Nil},    // 5 malformed question id
		{AttemptID: a2, QuestionID: q2},          // 6 accepted: invalid item did not reserve a2
		{AttemptID: stored, QuestionID: unknown}, // 7 stored wins over invalid question
	}
	res := Partition(items, map[uuid.UUID]struct{}{stored: {}}, known)

	if want := []int{0, 6}; !reflect.DeepEqual(res.Accepted, want) {
		t.Fatalf("accepted = %v, want %v", res.Accepted, want)
	}
	if want := []int{1, 2, 7}; !reflect.DeepEqual(res.Duplicates, want) {
		t.Fatalf("duplicates = %v, want %v", res.Duplicates, want)
	}
	if want := []int{3, 4, 5}; !reflect.DeepEqual(res.Invalid, want) {
		t.Fatalf("invalid = %v, want %v", res.Invalid, want)
	}
	if res.Verdicts[2] != Duplicate || res.Verdicts[3] != Invalid || res.Verdicts[6] != Accepted {
		t.Fatalf("verdicts = %v", res.Verdicts)
	}
}

func TestPartitionResubmitIsAllDuplicates(t *testing.T) {
	q := uuid.New()
	known := func(id uuid.UUID) bool { return id == q }
	items := []Item{{AttemptID: uuid.New(), QuestionID: q}, {AttemptID: uuid.New(), QuestionID: q}}

	first := Partition(items, nil, known)
	if len(first.Accepted) != 2 {
		t.Fatalf("first pass accepted %d", len(first.Accepted))
	}
	stored := map[uuid.UUID]struct{}{}
	for _, i := range first.Accepted {
		stored[items[i].AttemptID] = struct{}{}
	}
	second := Partition(items, stored, known)
	if len(second.Accepted) != 0 || len(second.Duplicates) != 2 {
		t.Fatalf("second pass: %+v", second)
	}
}

func TestIDs(t *testing.T) {
	a, q := uuid.New(), uuid.New()
	items := []Item{{AttemptID: a, QuestionID: q}, {AttemptID: a, QuestionID: q}, {}}
	if got := AttemptIDs(items); len(got) != 1 || got[0] != a {
		t.Fatalf("AttemptIDs = %v", got)
	}
	if got := QuestionIDs(items); len(got) != 1 || got[0] != q {
		t.Fatalf("QuestionIDs = %v", got)
	}
}

func TestVerdictString(t *testing.T) {
	if Accepted.String() != "accepted" || Duplicate.String() != "duplicate" || Invalid.String() != "invalid" {
		t.Fatalf("verdict strings")
	}
}
