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
)

// AuctionRepository handles all database operations for Auctions.
type AuctionRepository struct {
	db *sqlx.DB
}

// NewAuctionRepository creates a new AuctionRepository.
func NewAuctionRepository(db *sqlx.DB) *AuctionRepository {
	return &AuctionRepository{db: db}
}

// Create inserts a new auction row.
func (r *AuctionRepository) Create(ctx context.Context, a *domain.Auction) error {
	query := `
		INSERT INTO auctions
			(id, seller_id, category_id, title, description, thumbnail,
			 starting_price, status, closes_at, created_at, updated_at)
		VALUES
			(:id, :seller_id, :category_id, :title, :description, :thumbnail,
			 :starting_price, :status, :closes_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("auction_repo.Create: %w", err)
	}
	return nil
}

// GetByID fetches an auction by its primary key.
func (r *AuctionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	var a domain.Auction
	err := r.db.GetContext(ctx, &a, `SELECT * FROM auctions WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAuctionNotFound
		}
		return nil, fmt.Errorf("auction_repo.GetByID: %w", err)
	}
	return &a, nil
}

// GetByIDForUpdate fetches an auction inside tx with a row lock.  This lock is
// the per-auction critical section: bid placement and settlement both take it,
// so their read-modify-write sequences never interleave on the same auction.
func (r *AuctionRepository) GetByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*domain.Auction, error) {
	var a domain.Auction
	err := tx.GetContext(ctx, &a, `SELECT * FROM auctions WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAuctionNotFound
		}
		return nil, fmt.Errorf("auction_repo.GetByIDForUpdate: %w", err)
	}
	return &a, nil
}

// GetDueForSettlement returns auctions past their closing time that are still
// unsettled, oldest closing first.
func (r *AuctionRepository) GetDueForSettlement(ctx context.Context, now time.Time) ([]*domain.Auction, error) {
	var auctions []*domain.Auction
	err := r.db.SelectContext(ctx, &auctions,
		`SELECT * FROM auctions WHERE status = 'open' AND closes_at <= $1 ORDER BY closes_at ASC`,
		now)
	if err != nil {
		return nil, fmt.Errorf("auction_repo.GetDueForSettlement: %w", err)
	}
	return auctions, nil
}

// MarkSettled transitions the auction to settled inside tx.  The conditional
// WHERE clause makes the transition happen at most once; a second attempt
// reports ErrAlreadySettled via RowsAffected.
func (r *AuctionRepository) MarkSettled(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, settledAt time.Time) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE auctions
		SET status     = 'settled',
		    settled_at = $1,
		    updated_at = now()
		WHERE id = $2 AND status <> 'settled'`,
		settledAt, id)
	if err != nil {
		return fmt.Errorf("auction_repo.MarkSettled: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrAlreadySettled
	}
	return nil
}

// List returns a paginated slice of auctions with optional filters.
// status="" and categoryID=nil mean unfiltered.
// Returns (auctions, totalCount, error).
func (r *AuctionRepository) List(ctx context.Context, limit, offset int, status string, categoryID *uuid.UUID) ([]*domain.Auction, int, error) {
	where := "TRUE"
	args := []interface{}{}
	if status != "" {
		args = append(args, status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if categoryID != nil {
		args = append(args, *categoryID)
		where += fmt.Sprintf(" AND category_id = $%d", len(args))
	}

	var total int
	if err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM auctions WHERE "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("auction_repo.List count: %w", err)
	}

	args = append(args, limit, offset)
	var auctions []*domain.Auction
	query := fmt.Sprintf(
		"SELECT * FROM auctions WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)-1, len(args))
	if err := r.db.SelectContext(ctx, &auctions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("auction_repo.List select: %w", err)
	}
	return auctions, total, nil
}

// ListBySeller returns a seller's auctions, newest first.
func (r *AuctionRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]*domain.Auction, error) {
	var auctions []*domain.Auction
	err := r.db.SelectContext(ctx, &auctions,
		`SELECT * FROM auctions WHERE seller_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		sellerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("auction_repo.ListBySeller: %w", err)
	}
	return auctions, nil
}

// CountByStatus returns the number of auctions in the given persisted status.
func (r *AuctionRepository) CountByStatus(ctx context.Context, status domain.AuctionStatus) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM auctions WHERE status = $1`, string(status))
	if err != nil {
		return 0, fmt.Errorf("auction_repo.CountByStatus: %w", err)
	}
	return n, nil
}
