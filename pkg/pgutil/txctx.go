package pgutil

import (
	"context"

	"github.com/uptrace/bun"
)

type txKey struct{}

// TxRunner scopes callbacks to a single database transaction. Stores that
// share the same *bun.DB pick the transaction out of the context via IDB, so
// record mutations and ledger movements issued inside one callback commit or
// roll back together.
type TxRunner struct {
	db *bun.DB
}

// NewTxRunner creates a TxRunner over db.
func NewTxRunner(db *bun.DB) *TxRunner {
	return &TxRunner{db: db}
}

// RunInTx opens a transaction, threads it through the context and commits on
// a nil return. A nested call reuses the ambient transaction instead of
// opening a second one.
func (r *TxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(bun.Tx); ok {
		return fn(ctx)
	}
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// IDB returns the ambient transaction from ctx, falling back to db.
func IDB(ctx context.Context, db *bun.DB) bun.IDB {
	if tx, ok := ctx.Value(txKey{}).(bun.Tx); ok {
		return tx
	}
	return db
}
