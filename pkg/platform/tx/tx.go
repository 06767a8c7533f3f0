// Package tx hands an open SQL transaction from the transaction runner to
// every store reached inside its callback. Stores call From on each
// operation and fall back to their plain connection when no transaction is
// in flight, so the same store code serves both paths.
package tx

import (
	"context"
	"database/sql"
)

type contextKey struct{}

// WithTx returns a context carrying the transaction. A nil transaction
// leaves ctx unchanged, so the runner can pass through unconditionally.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, tx)
}

// From reports the transaction injected by WithTx, if any.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(contextKey{}).(*sql.Tx)
	return tx, ok
}
