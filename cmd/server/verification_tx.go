package main

import (
	"context"
	"database/sql"
	"time"

	verification "agrilink/internal/verification/service"
	id "agrilink/pkg/domain"
	dErrors "agrilink/pkg/domain-errors"
	txcontext "agrilink/pkg/platform/tx"
)

const defaultVerificationTxTimeout = 5 * time.Second

// verificationPostgresTx runs verification mutations inside one database
// transaction. The stores pick the transaction up from the context, so the
// same store instances serve both transactional and plain reads.
type verificationPostgresTx struct {
	db      *sql.DB
	stores  verification.Stores
	timeout time.Duration
}

func newVerificationPostgresTx(db *sql.DB, stores verification.Stores) *verificationPostgresTx {
	return &verificationPostgresTx{db: db, stores: stores}
}

func (t *verificationPostgresTx) RunInTx(ctx context.Context, _ id.SubjectID, fn func(ctx context.Context, stores verification.Stores) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultVerificationTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, tx), t.stores); err != nil {
		return err
	}

	return tx.Commit()
}
