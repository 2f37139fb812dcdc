package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context carries a request context and, inside a TxRunner callback, the open transaction.
// A nil Tx means the caller is not in a transaction.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

func New(ctx context.Context, tx *gorm.DB) Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return Context{Ctx: ctx, Tx: tx}
}

// Conn returns the transaction bound to Ctx, or fallback when no transaction is open.
func (c Context) Conn(fallback *gorm.DB) *gorm.DB {
	db := c.Tx
	if db == nil {
		db = fallback
	}
	if db == nil {
		return nil
	}
	return db.WithContext(c.Ctx)
}

// Dialect names the driver behind Tx, or "" outside a transaction.
func (c Context) Dialect() string {
	if c.Tx == nil || c.Tx.Dialector == nil {
		return ""
	}
	return c.Tx.Dialector.Name()
}
