package service

import (
	"context"
	"fmt"
	"time"

	"github.com/galdos/auctionhouse/internal/domain"
	"github.com/galdos/auctionhouse/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AuctionService handles listing creation and catalog reads.
type AuctionService struct {
	auctionRepo  *repository.AuctionRepository
	categoryRepo *repository.CategoryRepository
}

// NewAuctionService creates an AuctionService.
func NewAuctionService(auctionRepo *repository.AuctionRepository, categoryRepo *repository.CategoryRepository) *AuctionService {
	return &AuctionService{auctionRepo: auctionRepo, categoryRepo: categoryRepo}
}

// CreateAuctionRequest carries the fields a seller supplies for a new listing.
type CreateAuctionRequest struct {
	SellerID      uuid.UUID
	CategoryID    *uuid.UUID
	Title         string
	Description   string
	Thumbnail     string
	StartingPrice decimal.Decimal
	ClosesAt      time.Time
}

// CreateAuction opens a new listing.  The closing time must be in the future
// and a referenced category must exist.
func (s *AuctionService) CreateAuction(ctx context.Context, req CreateAuctionRequest) (*domain.Auction, error) {
	now := time.Now().UTC()
	if !req.ClosesAt.After(now) {
		return nil, fmt.Errorf("auction_service.CreateAuction: %w", domain.ErrClosingInPast)
	}
	if req.StartingPrice.IsNegative() {
		return nil, fmt.Errorf("auction_service.CreateAuction: %w", domain.ErrNonPositivePrice)
	}
	if req.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *req.CategoryID); err != nil {
			return nil, fmt.Errorf("auction_service.CreateAuction: %w", err)
		}
	}

	auction := &domain.Auction{
		ID:            uuid.New(),
		SellerID:      req.SellerID,
		CategoryID:    req.CategoryID,
		Title:         req.Title,
		Description:   req.Description,
		Thumbnail:     req.Thumbnail,
		StartingPrice: req.StartingPrice,
		Status:        domain.StatusOpen,
		ClosesAt:      req.ClosesAt.UTC(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.auctionRepo.Create(ctx, auction); err != nil {
		return nil, fmt.Errorf("auction_service.CreateAuction: %w", err)
	}
	return auction, nil
}

// GetAuction returns one auction by id.
func (s *AuctionService) GetAuction(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	auction, err := s.auctionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("auction_service.GetAuction: %w", err)
	}
	return auction, nil
}

// ListAuctions returns the catalog page matching the filters plus the total
// match count.  An empty status means all statuses; a nil categoryID means
// all categories.
func (s *AuctionService) ListAuctions(ctx context.Context, limit, offset int, status string, categoryID *uuid.UUID) ([]*domain.Auction, int, error) {
	auctions, total, err := s.auctionRepo.List(ctx, limit, offset, status, categoryID)
	if err != nil {
		return nil, 0, fmt.Errorf("auction_service.ListAuctions: %w", err)
	}
	return auctions, total, nil
}

// ListBySeller returns the seller's own listings, newest first.
func (s *AuctionService) ListBySeller(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]*domain.Auction, error) {
	auctions, err := s.auctionRepo.ListBySeller(ctx, sellerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("auction_service.ListBySeller: %w", err)
	}
	return auctions, nil
}

// Categories returns all categories ordered by name.
func (s *AuctionService) Categories(ctx context.Context) ([]*domain.Category, error) {
	cats, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("auction_service.Categories: %w", err)
	}
	return cats, nil
}

// CreateCategory adds a category.  Admin only at the API layer.
func (s *AuctionService) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	cat := &domain.Category{ID: uuid.New(), Name: name}
	if err := s.categoryRepo.Create(ctx, cat); err != nil {
		return nil, fmt.Errorf("auction_service.CreateCategory: %w", err)
	}
	return cat, nil
}
