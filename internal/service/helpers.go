package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/galdos/auctionhouse/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// maxTxRetries bounds the internal retry of transactions that lose a
// serialization or deadlock race.  Business-rule failures and storage errors
// are never retried; only lock conflicts are, and only this many times.
const maxTxRetries = 3

// isRetryableTxError reports whether err is a PostgreSQL serialization
// failure (40001) or deadlock (40P01) — the two outcomes of a lost lock race
// that a fresh attempt can win.
func isRetryableTxError(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}

// withTxRetry runs fn inside a transaction, committing on success and rolling
// back on any error.  Lock conflicts are retried up to maxTxRetries attempts;
// if the last attempt still conflicts, domain.ErrTxConflict is returned so
// callers can retry the whole request.
func withTxRetry(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	var err error
	for attempt := 1; attempt <= maxTxRetries; attempt++ {
		err = runInTx(ctx, db, fn)
		if err == nil || !isRetryableTxError(err) {
			return err
		}
	}
	return domain.ErrTxConflict
}

// runInTx is a single begin/fn/commit cycle with rollback on failure.
func runInTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
