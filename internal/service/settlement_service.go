package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/galdos/auctionhouse/internal/domain"
	"github.com/galdos/auctionhouse/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// SettlementService closes out finished auctions: it picks the winning bid,
// charges the winner, and credits the seller.  Settlement is exactly-once —
// the conditional status update on the auction row rejects a second run no
// matter how it is triggered (seller request, admin, or the sweep).
type SettlementService struct {
	db          *sqlx.DB
	auctionRepo *repository.AuctionRepository
	bidRepo     *repository.BidRepository
	ledgerRepo  *repository.LedgerRepository
	userRepo    *repository.UserRepository
	logger      *slog.Logger
}

// NewSettlementService creates a SettlementService.
func NewSettlementService(
	db *sqlx.DB,
	auctionRepo *repository.AuctionRepository,
	bidRepo *repository.BidRepository,
	ledgerRepo *repository.LedgerRepository,
	userRepo *repository.UserRepository,
	logger *slog.Logger,
) *SettlementService {
	return &SettlementService{
		db:          db,
		auctionRepo: auctionRepo,
		bidRepo:     bidRepo,
		ledgerRepo:  ledgerRepo,
		userRepo:    userRepo,
		logger:      logger,
	}
}

// Settle settles a single auction on behalf of a caller.  Only the seller or
// an admin may trigger it.  Returns the receipt describing what moved.
func (s *SettlementService) Settle(ctx context.Context, auctionID, requesterID uuid.UUID) (*domain.SettlementReceipt, error) {
	requester, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("settlement_service.Settle: %w", err)
	}
	receipt, err := s.settleOne(ctx, auctionID, requester)
	if err != nil {
		return nil, fmt.Errorf("settlement_service.Settle: %w", err)
	}
	return receipt, nil
}

// SettleDue settles every auction whose closing time has passed.  Failures on
// individual auctions are logged and skipped so one bad row cannot stall the
// sweep.  Returns the number of auctions settled.
func (s *SettlementService) SettleDue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.auctionRepo.GetDueForSettlement(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("settlement_service.SettleDue: %w", err)
	}

	settled := 0
	for _, auction := range due {
		if ctx.Err() != nil {
			return settled, ctx.Err()
		}
		if _, err := s.settleOne(ctx, auction.ID, nil); err != nil {
			// Raced with a manual settlement; nothing to do.
			if domain.IsConflict(err) {
				continue
			}
			s.logger.Error("sweep: settle failed",
				"auction_id", auction.ID,
				"error", err,
			)
			continue
		}
		settled++
	}
	return settled, nil
}

// settleOne runs one settlement transaction.  A nil requester means the
// system sweep: the permission check is skipped and no-bid auctions are
// closed quietly instead of erroring.
//
// Check order inside the lock: still open, already settled, permission,
// no bids, funds.
func (s *SettlementService) settleOne(ctx context.Context, auctionID uuid.UUID, requester *domain.User) (*domain.SettlementReceipt, error) {
	var receipt *domain.SettlementReceipt

	err := withTxRetry(ctx, s.db, func(tx *sqlx.Tx) error {
		auction, err := s.auctionRepo.GetByIDForUpdate(ctx, tx, auctionID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if now.Before(auction.ClosesAt) {
			return domain.ErrAuctionStillOpen
		}
		if auction.IsSettled() {
			return domain.ErrAlreadySettled
		}
		if requester != nil && requester.ID != auction.SellerID && !requester.Role.IsAdmin() {
			return domain.ErrForbidden
		}

		winning, err := s.bidRepo.GetHighestTx(ctx, tx, auction.ID)
		if err != nil {
			return err
		}
		if winning == nil {
			if requester == nil {
				// Sweep: a no-bid auction is simply closed, no money moves.
				return s.auctionRepo.MarkSettled(ctx, tx, auction.ID, now)
			}
			return domain.ErrNoBids
		}

		if err = s.transfer(ctx, tx, auction, winning, now); err != nil {
			return err
		}
		if err = s.auctionRepo.MarkSettled(ctx, tx, auction.ID, now); err != nil {
			return err
		}

		receipt = &domain.SettlementReceipt{
			AuctionID: auction.ID,
			WinnerID:  winning.BidderID,
			SellerID:  auction.SellerID,
			Amount:    winning.Price,
			SettledAt: now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if receipt != nil {
		s.logger.Info("auction settled",
			"auction_id", receipt.AuctionID,
			"winner_id", receipt.WinnerID,
			"amount", receipt.Amount,
		)
	}
	return receipt, nil
}

// transfer moves the winning amount from winner to seller.  The winner's
// outstanding hold, if any, is released first so the balance check sees the
// funds that were reserved for exactly this bid.
func (s *SettlementService) transfer(ctx context.Context, tx *sqlx.Tx, auction *domain.Auction, winning *domain.Bid, now time.Time) error {
	balance, err := s.ledgerRepo.BalanceForUpdate(ctx, tx, winning.BidderID)
	if err != nil {
		return err
	}

	released, err := s.ledgerRepo.HoldReleased(ctx, tx, winning.ID)
	if err != nil {
		return err
	}
	if !released {
		release := newEntry(winning.BidderID, winning.Price, domain.EntryHoldRelease, &winning.ID, now)
		if err = s.ledgerRepo.Append(ctx, tx, release); err != nil {
			return err
		}
		balance = balance.Add(winning.Price)
	}

	if balance.LessThan(winning.Price) {
		return domain.ErrInsufficientFunds
	}

	charge := newEntry(winning.BidderID, winning.Price.Neg(), domain.EntrySettlementCharge, &auction.ID, now)
	if err = s.ledgerRepo.Append(ctx, tx, charge); err != nil {
		return err
	}
	credit := newEntry(auction.SellerID, winning.Price, domain.EntrySettlementCredit, &auction.ID, now)
	return s.ledgerRepo.Append(ctx, tx, credit)
}
