package service

import (
	"context"
	"fmt"
	"time"

	"github.com/galdos/auctionhouse/internal/config"
	"github.com/galdos/auctionhouse/internal/domain"
	"github.com/galdos/auctionhouse/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// WalletService is the ledger component: every balance-affecting event goes
// through it as an immutable signed entry.  A debit is only recorded when the
// resulting balance stays non-negative, and the check-plus-append for one
// user is a single atomic unit (user row lock inside the transaction).
type WalletService struct {
	db          *sqlx.DB
	ledgerRepo  *repository.LedgerRepository
	bidRepo     *repository.BidRepository
	auctionRepo *repository.AuctionRepository
	cfg         *config.Config
}

// NewWalletService creates a WalletService.
func NewWalletService(
	db *sqlx.DB,
	ledgerRepo *repository.LedgerRepository,
	bidRepo *repository.BidRepository,
	auctionRepo *repository.AuctionRepository,
	cfg *config.Config,
) *WalletService {
	return &WalletService{
		db:          db,
		ledgerRepo:  ledgerRepo,
		bidRepo:     bidRepo,
		auctionRepo: auctionRepo,
		cfg:         cfg,
	}
}

// newEntry builds a ledger entry stamped with the given instant.
func newEntry(userID uuid.UUID, amount decimal.Decimal, kind domain.EntryKind, refID *uuid.UUID, at time.Time) *domain.LedgerEntry {
	return &domain.LedgerEntry{
		ID:        uuid.New(),
		UserID:    userID,
		Amount:    amount,
		Kind:      kind,
		RefID:     refID,
		CreatedAt: at,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Deposit / Withdraw
// ──────────────────────────────────────────────────────────────────────────────

// Deposit credits amount to the user's wallet.
func (s *WalletService) Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*domain.LedgerEntry, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrNonPositiveAmount
	}

	entry := newEntry(userID, amount, domain.EntryDeposit, nil, time.Now().UTC())
	err := withTxRetry(ctx, s.db, func(tx *sqlx.Tx) error {
		// The lock also verifies the user exists; a credit needs no balance check.
		if _, err := s.ledgerRepo.BalanceForUpdate(ctx, tx, userID); err != nil {
			return err
		}
		return s.ledgerRepo.Append(ctx, tx, entry)
	})
	if err != nil {
		return nil, fmt.Errorf("wallet_service.Deposit: %w", err)
	}
	return entry, nil
}

// Withdraw debits amount from the user's wallet.  Fails with
// ErrInsufficientFunds when the balance cannot cover it — nothing is recorded
// in that case.  A configurable daily cap applies on top.
func (s *WalletService) Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*domain.LedgerEntry, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrNonPositiveAmount
	}

	maxDaily := decimal.NewFromFloat(s.cfg.Wallet.MaxDailyWithdraw)

	entry := newEntry(userID, amount.Neg(), domain.EntryWithdrawal, nil, time.Now().UTC())
	err := withTxRetry(ctx, s.db, func(tx *sqlx.Tx) error {
		balance, err := s.ledgerRepo.BalanceForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		if balance.LessThan(amount) {
			return domain.ErrInsufficientFunds
		}
		// Cap check runs under the users-row lock so concurrent withdrawals
		// cannot both read a stale daily total.
		if maxDaily.IsPositive() {
			dailyTotal, err := s.ledgerRepo.DailyWithdrawTotalTx(ctx, tx, userID)
			if err != nil {
				return err
			}
			if dailyTotal.Add(amount).GreaterThan(maxDaily) {
				return domain.ErrWithdrawLimitExceeded
			}
		}
		return s.ledgerRepo.Append(ctx, tx, entry)
	})
	if err != nil {
		return nil, fmt.Errorf("wallet_service.Withdraw: %w", err)
	}
	return entry, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────────────────────────────────

// Balance returns the user's current balance (sum of all ledger entries).
func (s *WalletService) Balance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	balance, err := s.ledgerRepo.Balance(ctx, userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("wallet_service.Balance: %w", err)
	}
	return balance, nil
}

// Entries returns the user's paginated ledger history.
func (s *WalletService) Entries(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.LedgerEntry, error) {
	entries, err := s.ledgerRepo.Entries(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("wallet_service.Entries: %w", err)
	}
	return entries, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// ReleaseHold
// ──────────────────────────────────────────────────────────────────────────────

// ReleaseHold gives a bid's held funds back to the bidder.  Exposed as an
// explicit primitive (back-office): when automatic release-on-outbid is
// disabled, this is how a loser's hold is returned after settlement.
//
// The hold of the current highest bid on an unsettled auction is not
// releasable — those funds back the auction's settlement.  A hold can only be
// released once.
func (s *WalletService) ReleaseHold(ctx context.Context, bidID uuid.UUID) (*domain.LedgerEntry, error) {
	bid, err := s.bidRepo.GetByID(ctx, bidID)
	if err != nil {
		return nil, fmt.Errorf("wallet_service.ReleaseHold: %w", err)
	}

	entry := newEntry(bid.BidderID, bid.Price, domain.EntryHoldRelease, &bid.ID, time.Now().UTC())
	err = withTxRetry(ctx, s.db, func(tx *sqlx.Tx) error {
		auction, err := s.auctionRepo.GetByIDForUpdate(ctx, tx, bid.AuctionID)
		if err != nil {
			return err
		}
		if !auction.IsSettled() {
			highest, err := s.bidRepo.GetHighestTx(ctx, tx, auction.ID)
			if err != nil {
				return err
			}
			if highest != nil && highest.ID == bid.ID {
				return domain.ErrHoldNotReleasable
			}
		}

		if _, err := s.ledgerRepo.BalanceForUpdate(ctx, tx, bid.BidderID); err != nil {
			return err
		}
		released, err := s.ledgerRepo.HoldReleased(ctx, tx, bid.ID)
		if err != nil {
			return err
		}
		if released {
			return domain.ErrHoldAlreadyReleased
		}
		return s.ledgerRepo.Append(ctx, tx, entry)
	})
	if err != nil {
		return nil, fmt.Errorf("wallet_service.ReleaseHold: %w", err)
	}
	return entry, nil
}
