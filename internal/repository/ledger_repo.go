package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/galdos/auctionhouse/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// LedgerRepository handles the append-only ledger_entries table.  A user's
// balance is always the sum of their entries; it is never stored in a column,
// so there is no cache to go stale.
type LedgerRepository struct {
	db *sqlx.DB
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Append inserts a ledger entry inside an existing transaction.  Entries are
// immutable; there is no update or delete.
func (r *LedgerRepository) Append(ctx context.Context, tx *sqlx.Tx, e *domain.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (id, user_id, amount, kind, ref_id, created_at)
		VALUES (:id, :user_id, :amount, :kind, :ref_id, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, e); err != nil {
		return fmt.Errorf("ledger_repo.Append: %w", err)
	}
	return nil
}

// Balance returns the user's current balance (unlocked read).
func (r *LedgerRepository) Balance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.db.GetContext(ctx, &balance,
		`SELECT COALESCE(SUM(amount), 0) FROM ledger_entries WHERE user_id = $1`,
		userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("ledger_repo.Balance: %w", err)
	}
	return balance, nil
}

// BalanceForUpdate locks the user row inside tx, then sums the user's
// entries.  The row lock serialises concurrent balance-check-plus-append
// sequences for the same user; different users lock different rows and
// proceed in parallel.
func (r *LedgerRepository) BalanceForUpdate(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) (decimal.Decimal, error) {
	var id uuid.UUID
	err := tx.GetContext(ctx, &id, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, domain.ErrUserNotFound
		}
		return decimal.Zero, fmt.Errorf("ledger_repo.BalanceForUpdate lock: %w", err)
	}

	var balance decimal.Decimal
	err = tx.GetContext(ctx, &balance,
		`SELECT COALESCE(SUM(amount), 0) FROM ledger_entries WHERE user_id = $1`,
		userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("ledger_repo.BalanceForUpdate sum: %w", err)
	}
	return balance, nil
}

// Entries returns a user's ledger history, newest first.
func (r *LedgerRepository) Entries(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.LedgerEntry, error) {
	var entries []*domain.LedgerEntry
	err := r.db.SelectContext(ctx, &entries,
		`SELECT * FROM ledger_entries WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ledger_repo.Entries: %w", err)
	}
	return entries, nil
}

// HoldReleased reports inside tx whether the hold taken for bidID has already
// been given back.  Guards against double releases.
func (r *LedgerRepository) HoldReleased(ctx context.Context, tx *sqlx.Tx, bidID uuid.UUID) (bool, error) {
	var released bool
	err := tx.GetContext(ctx, &released, `
		SELECT EXISTS (
			SELECT 1 FROM ledger_entries
			WHERE ref_id = $1 AND kind = 'hold_release'
		)`, bidID)
	if err != nil {
		return false, fmt.Errorf("ledger_repo.HoldReleased: %w", err)
	}
	return released, nil
}

const dailyWithdrawTotalQuery = `
	SELECT COALESCE(SUM(-amount), 0)
	FROM ledger_entries
	WHERE user_id = $1
	  AND kind = 'withdrawal'
	  AND created_at >= date_trunc('day', now())`

// DailyWithdrawTotal sums the magnitude of today's withdrawals for a user.
func (r *LedgerRepository) DailyWithdrawTotal(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.GetContext(ctx, &total, dailyWithdrawTotalQuery, userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("ledger_repo.DailyWithdrawTotal: %w", err)
	}
	return total, nil
}

// DailyWithdrawTotalTx is DailyWithdrawTotal inside a transaction.  Run after
// BalanceForUpdate so the users-row lock serializes the read with concurrent
// withdrawals.
func (r *LedgerRepository) DailyWithdrawTotalTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := tx.GetContext(ctx, &total, dailyWithdrawTotalQuery, userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("ledger_repo.DailyWithdrawTotalTx: %w", err)
	}
	return total, nil
}

// KindTotal holds one row of the finance report aggregation.
type KindTotal struct {
	Kind  domain.EntryKind `json:"kind"  db:"kind"`
	Total decimal.Decimal  `json:"total" db:"total"`
	Count int              `json:"count" db:"count"`
}

// SumByKind aggregates entry volume per kind over a date range, for the
// back-office finance report.
func (r *LedgerRepository) SumByKind(ctx context.Context, from, to time.Time) ([]*KindTotal, error) {
	var rows []*KindTotal
	err := r.db.SelectContext(ctx, &rows, `
		SELECT kind, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count
		FROM ledger_entries
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY kind
		ORDER BY kind`,
		from, to)
	if err != nil {
		return nil, fmt.Errorf("ledger_repo.SumByKind: %w", err)
	}
	return rows, nil
}

// ListRecent returns the newest entries across all users, for back-office
// inspection.
func (r *LedgerRepository) ListRecent(ctx context.Context, limit, offset int) ([]*domain.LedgerEntry, error) {
	var entries []*domain.LedgerEntry
	err := r.db.SelectContext(ctx, &entries,
		`SELECT * FROM ledger_entries ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ledger_repo.ListRecent: %w", err)
	}
	return entries, nil
}
