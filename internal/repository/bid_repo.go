package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/galdos/auctionhouse/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// highestBidQuery derives the current top bid: best price wins, the earliest
// accepted bid keeps the top on equal prices.  The highest bid is never
// cached in a column; it is always recomputed, inside the auction row lock
// when money is at stake.
const highestBidQuery = `
	SELECT * FROM bids
	WHERE auction_id = $1
	ORDER BY price DESC, created_at ASC, id ASC
	LIMIT 1`

// BidRepository handles all database operations for Bids.
type BidRepository struct {
	db *sqlx.DB
}

// NewBidRepository creates a new BidRepository.
func NewBidRepository(db *sqlx.DB) *BidRepository {
	return &BidRepository{db: db}
}

// Create inserts a new bid inside an existing transaction.  Bids are
// immutable: there is no update or delete.
func (r *BidRepository) Create(ctx context.Context, tx *sqlx.Tx, b *domain.Bid) error {
	query := `
		INSERT INTO bids (id, auction_id, bidder_id, price, created_at)
		VALUES (:id, :auction_id, :bidder_id, :price, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, b); err != nil {
		return fmt.Errorf("bid_repo.Create: %w", err)
	}
	return nil
}

// GetByID fetches a bid by its primary key.
func (r *BidRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Bid, error) {
	var b domain.Bid
	err := r.db.GetContext(ctx, &b, `SELECT * FROM bids WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBidNotFound
		}
		return nil, fmt.Errorf("bid_repo.GetByID: %w", err)
	}
	return &b, nil
}

// GetHighest returns the auction's current top bid, or (nil, nil) when the
// auction has no bids yet.
func (r *BidRepository) GetHighest(ctx context.Context, auctionID uuid.UUID) (*domain.Bid, error) {
	var b domain.Bid
	err := r.db.GetContext(ctx, &b, highestBidQuery, auctionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("bid_repo.GetHighest: %w", err)
	}
	return &b, nil
}

// GetHighestTx is GetHighest inside an existing transaction.  Must be called
// after the auction row lock is held so the result cannot go stale before the
// commit.
func (r *BidRepository) GetHighestTx(ctx context.Context, tx *sqlx.Tx, auctionID uuid.UUID) (*domain.Bid, error) {
	var b domain.Bid
	err := tx.GetContext(ctx, &b, highestBidQuery, auctionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("bid_repo.GetHighestTx: %w", err)
	}
	return &b, nil
}

// ListByAuction returns an auction's bids ordered best-first (price
// descending, earlier bid first on equal prices).
func (r *BidRepository) ListByAuction(ctx context.Context, auctionID uuid.UUID, limit, offset int) ([]*domain.Bid, error) {
	var bids []*domain.Bid
	err := r.db.SelectContext(ctx, &bids, `
		SELECT * FROM bids
		WHERE auction_id = $1
		ORDER BY price DESC, created_at ASC, id ASC
		LIMIT $2 OFFSET $3`,
		auctionID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("bid_repo.ListByAuction: %w", err)
	}
	return bids, nil
}

// ListByBidder returns a user's bid history, newest first.
func (r *BidRepository) ListByBidder(ctx context.Context, bidderID uuid.UUID, limit, offset int) ([]*domain.Bid, error) {
	var bids []*domain.Bid
	err := r.db.SelectContext(ctx, &bids,
		`SELECT * FROM bids WHERE bidder_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		bidderID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("bid_repo.ListByBidder: %w", err)
	}
	return bids, nil
}

// CountByAuction returns the number of bids placed on an auction.
func (r *BidRepository) CountByAuction(ctx context.Context, auctionID uuid.UUID) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM bids WHERE auction_id = $1`, auctionID)
	if err != nil {
		return 0, fmt.Errorf("bid_repo.CountByAuction: %w", err)
	}
	return n, nil
}

// CountAll returns the total number of bids placed on the platform.
func (r *BidRepository) CountAll(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM bids`); err != nil {
		return 0, fmt.Errorf("bid_repo.CountAll: %w", err)
	}
	return n, nil
}
