package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Ledger entry kinds
// ──────────────────────────────────────────────────────────────────────────────

// EntryKind tags a ledger entry with the business event that produced it.
type EntryKind string

const (
	EntryDeposit          EntryKind = "deposit"           // user funds their wallet (credit)
	EntryWithdrawal       EntryKind = "withdrawal"        // user takes funds out (debit)
	EntryBidHold          EntryKind = "bid_hold"          // funds reserved at bid time (debit)
	EntryHoldRelease      EntryKind = "hold_release"      // a bid hold given back (credit)
	EntrySettlementCharge EntryKind = "settlement_charge" // winner pays at settlement (debit)
	EntrySettlementCredit EntryKind = "settlement_credit" // seller receives at settlement (credit)
)

// IsValid returns true for a recognised entry kind.
func (k EntryKind) IsValid() bool {
	switch k {
	case EntryDeposit, EntryWithdrawal, EntryBidHold,
		EntryHoldRelease, EntrySettlementCharge, EntrySettlementCredit:
		return true
	}
	return false
}

// ──────────────────────────────────────────────────────────────────────────────
// LedgerEntry
// ──────────────────────────────────────────────────────────────────────────────

// LedgerEntry is one immutable row of a user's append-only balance log.
// Amount is signed: credits positive, debits negative.  A user's balance is
// the sum of all their entries and is never stored separately.
type LedgerEntry struct {
	ID        uuid.UUID       `json:"id"         db:"id"`
	UserID    uuid.UUID       `json:"user_id"    db:"user_id"`
	Amount    decimal.Decimal `json:"amount"     db:"amount"`
	Kind      EntryKind       `json:"kind"       db:"kind"`
	RefID     *uuid.UUID      `json:"ref_id"     db:"ref_id"` // bid or auction this entry settles
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// IsDebit returns true when the entry reduces the balance.
func (e *LedgerEntry) IsDebit() bool {
	return e.Amount.IsNegative()
}

// SumEntries folds a slice of entries into a balance.  Mirrors the SQL
// aggregate the repository runs; used by tests and reporting.
func SumEntries(entries []*LedgerEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	return total
}

// ──────────────────────────────────────────────────────────────────────────────
// SettlementReceipt
// ──────────────────────────────────────────────────────────────────────────────

// SettlementReceipt records the one-time outcome of settling an auction.
type SettlementReceipt struct {
	AuctionID uuid.UUID       `json:"auction_id"`
	WinnerID  uuid.UUID       `json:"winner_id"`
	SellerID  uuid.UUID       `json:"seller_id"`
	Amount    decimal.Decimal `json:"amount"`
	SettledAt time.Time       `json:"settled_at"`
}
