package testutil

import (
	"context"
	"sync"

	"github.com/yungbote/examsync-backend/internal/data/aggregates"
	"github.com/yungbote/examsync-backend/internal/platform/dbctx"
)

// FaultyTxRunner wraps a real TxRunner and injects failures around the body. A commit
// failure is returned from inside the transaction so everything the body wrote rolls back.
// With a nil Inner the body runs without a transaction.
type FaultyTxRunner struct {
	Inner aggregates.TxRunner

	mu         sync.Mutex
	failBegin  error
	failCommit error

	BeginCalls    int
	CommitCalls   int
	RollbackCalls int
}

var _ aggregates.TxRunner = (*FaultyTxRunner)(nil)

func (r *FaultyTxRunner) FailBegin(err error) {
	r.mu.Lock()
	r.failBegin = err
	r.mu.Unlock()
}

func (r *FaultyTxRunner) FailCommit(err error) {
	r.mu.Lock()
	r.failCommit = err
	r.mu.Unlock()
}

func (r *FaultyTxRunner) Counts() (begin, commit, rollback int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.BeginCalls, r.CommitCalls, r.RollbackCalls
}

func (r *FaultyTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.BeginCalls++
	failBegin, failCommit := r.failBegin, r.failCommit
	r.mu.Unlock()

	if failBegin != nil {
		return failBegin
	}
	body := func(dbc dbctx.Context) error {
		if fn != nil {
			if err := fn(dbc); err != nil {
				return err
			}
		}
		return failCommit
	}

	var err error
	if r.Inner != nil {
		err = r.Inner.InTx(ctx, body)
	} else {
		err = body(dbctx.Context{Ctx: ctx})
	}

	r.mu.Lock()
	if err != nil {
		r.RollbackCalls++
	} else {
		r.CommitCalls++
	}
	r.mu.Unlock()
	return err
}
