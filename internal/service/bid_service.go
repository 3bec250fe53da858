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
)

// BidService orchestrates bid placement.  Validation, the funds hold, and the
// bid row all happen inside a single PostgreSQL transaction whose first step
// locks the auction row — the same lock settlement takes, so a bid can never
// slip in while a settlement is reading the highest bid, and two bids on one
// auction never validate against the same stale state.
type BidService struct {
	db          *sqlx.DB
	bidRepo     *repository.BidRepository
	auctionRepo *repository.AuctionRepository
	ledgerRepo  *repository.LedgerRepository
	cfg         *config.Config
}

// NewBidService creates a BidService.
func NewBidService(
	db *sqlx.DB,
	bidRepo *repository.BidRepository,
	auctionRepo *repository.AuctionRepository,
	ledgerRepo *repository.LedgerRepository,
	cfg *config.Config,
) *BidService {
	return &BidService{
		db:          db,
		bidRepo:     bidRepo,
		auctionRepo: auctionRepo,
		ledgerRepo:  ledgerRepo,
		cfg:         cfg,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// PlaceBid
// ──────────────────────────────────────────────────────────────────────────────

// PlaceBid validates the request against the auction's live state, reserves
// the bid amount from the bidder's wallet, and persists the bid.  The hold is
// taken at bid time, not at settlement time.
//
// When release-on-outbid is enabled (the default), the previous highest
// bidder's hold is given back in the same transaction, so at most one hold
// per auction is outstanding at any moment.
//
// Lock order is auction row, then user rows — identical to settlement, so the
// two can never deadlock on the same auction.
func (s *BidService) PlaceBid(ctx context.Context, req domain.PlaceBidRequest) (*domain.Bid, error) {
	var bid *domain.Bid

	err := withTxRetry(ctx, s.db, func(tx *sqlx.Tx) error {
		auction, err := s.auctionRepo.GetByIDForUpdate(ctx, tx, req.AuctionID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()

		// Highest bid is derived inside the lock, never read from a cached field.
		highest, err := s.bidRepo.GetHighestTx(ctx, tx, auction.ID)
		if err != nil {
			return err
		}

		balance, err := s.ledgerRepo.BalanceForUpdate(ctx, tx, req.BidderID)
		if err != nil {
			return err
		}

		if err = domain.ValidateBid(auction, highest, req.Price, balance, now); err != nil {
			return err
		}

		bid = &domain.Bid{
			ID:        uuid.New(),
			AuctionID: auction.ID,
			BidderID:  req.BidderID,
			Price:     req.Price,
			CreatedAt: now,
		}

		hold := newEntry(req.BidderID, req.Price.Neg(), domain.EntryBidHold, &bid.ID, now)
		if err = s.ledgerRepo.Append(ctx, tx, hold); err != nil {
			return err
		}
		if err = s.bidRepo.Create(ctx, tx, bid); err != nil {
			return err
		}

		if highest != nil && s.cfg.Auction.ReleaseHoldOnOutbid {
			if err = s.releaseOutbidHold(ctx, tx, highest, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bid_service.PlaceBid: %w", err)
	}
	return bid, nil
}

// releaseOutbidHold gives the outbid bidder their hold back, unless it was
// already released (e.g. by an earlier back-office release).
func (s *BidService) releaseOutbidHold(ctx context.Context, tx *sqlx.Tx, outbid *domain.Bid, now time.Time) error {
	released, err := s.ledgerRepo.HoldReleased(ctx, tx, outbid.ID)
	if err != nil {
		return err
	}
	if released {
		return nil
	}
	release := newEntry(outbid.BidderID, outbid.Price, domain.EntryHoldRelease, &outbid.ID, now)
	return s.ledgerRepo.Append(ctx, tx, release)
}

// ──────────────────────────────────────────────────────────────────────────────
// Query helpers
// ──────────────────────────────────────────────────────────────────────────────

// GetHighestBid returns the auction's current top bid, or nil when no bid has
// been accepted yet.  Verifies the auction exists first.
func (s *BidService) GetHighestBid(ctx context.Context, auctionID uuid.UUID) (*domain.Bid, error) {
	if _, err := s.auctionRepo.GetByID(ctx, auctionID); err != nil {
		return nil, fmt.Errorf("bid_service.GetHighestBid: %w", err)
	}
	bid, err := s.bidRepo.GetHighest(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("bid_service.GetHighestBid: %w", err)
	}
	return bid, nil
}

// ListAuctionBids returns an auction's bids, best first.
func (s *BidService) ListAuctionBids(ctx context.Context, auctionID uuid.UUID, limit, offset int) ([]*domain.Bid, error) {
	if _, err := s.auctionRepo.GetByID(ctx, auctionID); err != nil {
		return nil, fmt.Errorf("bid_service.ListAuctionBids: %w", err)
	}
	bids, err := s.bidRepo.ListByAuction(ctx, auctionID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("bid_service.ListAuctionBids: %w", err)
	}
	return bids, nil
}

// ListMyBids returns the user's bid history, newest first.
func (s *BidService) ListMyBids(ctx context.Context, bidderID uuid.UUID, limit, offset int) ([]*domain.Bid, error) {
	bids, err := s.bidRepo.ListByBidder(ctx, bidderID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("bid_service.ListMyBids: %w", err)
	}
	return bids, nil
}
