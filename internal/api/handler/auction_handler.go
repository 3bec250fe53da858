package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/galdos/auctionhouse/internal/api/middleware"
	"github.com/galdos/auctionhouse/internal/domain"
	"github.com/galdos/auctionhouse/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AuctionHandler serves listing creation, catalog, and settlement endpoints.
type AuctionHandler struct {
	auctionSvc    *service.AuctionService
	bidSvc        *service.BidService
	settlementSvc *service.SettlementService
}

// NewAuctionHandler creates an AuctionHandler.
func NewAuctionHandler(
	auctionSvc *service.AuctionService,
	bidSvc *service.BidService,
	settlementSvc *service.SettlementService,
) *AuctionHandler {
	return &AuctionHandler{
		auctionSvc:    auctionSvc,
		bidSvc:        bidSvc,
		settlementSvc: settlementSvc,
	}
}

// Create godoc
// POST /api/auctions [JWT]
// Body: {"title":"...","description":"...","starting_price":"100.00","closes_at":"2026-09-10T12:00:00Z"}
func (h *AuctionHandler) Create(c *gin.Context) {
	sellerID := middleware.GetUserID(c)

	var body struct {
		Title         string     `json:"title"          binding:"required,min=3,max=200"`
		Description   string     `json:"description"    binding:"max=4000"`
		Thumbnail     string     `json:"thumbnail"      binding:"max=500"`
		CategoryID    *uuid.UUID `json:"category_id"`
		StartingPrice string     `json:"starting_price" binding:"required"`
		ClosesAt      time.Time  `json:"closes_at"      binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	startingPrice, err := decimal.NewFromString(body.StartingPrice)
	if err != nil || startingPrice.IsNegative() {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_PRICE", "starting_price must be a non-negative decimal string")
		return
	}

	auction, err := h.auctionSvc.CreateAuction(c.Request.Context(), service.CreateAuctionRequest{
		SellerID:      sellerID,
		CategoryID:    body.CategoryID,
		Title:         body.Title,
		Description:   body.Description,
		Thumbnail:     body.Thumbnail,
		StartingPrice: startingPrice,
		ClosesAt:      body.ClosesAt,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrClosingInPast):
			respondError(c, http.StatusBadRequest, "ERR_CLOSING_IN_PAST", domain.ErrClosingInPast.Error())
		case errors.Is(err, domain.ErrCategoryNotFound):
			respondError(c, http.StatusBadRequest, "ERR_CATEGORY_NOT_FOUND", domain.ErrCategoryNotFound.Error())
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not create auction")
		}
		return
	}
	respondSuccess(c, http.StatusCreated, auction.ToView(time.Now().UTC()))
}

// List godoc
// GET /api/auctions?status=open&category_id=uuid&page=1&limit=20
func (h *AuctionHandler) List(c *gin.Context) {
	status := c.Query("status")
	page, limit := parsePagination(c)
	offset := (page - 1) * limit

	var categoryID *uuid.UUID
	if raw := c.Query("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "ERR_INVALID_CATEGORY_ID", "invalid category_id format")
			return
		}
		categoryID = &id
	}

	auctions, total, err := h.auctionSvc.ListAuctions(c.Request.Context(), limit, offset, status, categoryID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not list auctions")
		return
	}

	now := time.Now().UTC()
	views := make([]domain.AuctionView, 0, len(auctions))
	for _, a := range auctions {
		views = append(views, a.ToView(now))
	}
	respondList(c, views, total, page, limit)
}

// GetByID godoc
// GET /api/auctions/:id
func (h *AuctionHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid auction id")
		return
	}

	auction, err := h.auctionSvc.GetAuction(c.Request.Context(), id)
	if err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", domain.ErrAuctionNotFound.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch auction")
		return
	}

	highest, err := h.bidSvc.GetHighestBid(c.Request.Context(), id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch auction")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"auction":     auction.ToView(time.Now().UTC()),
		"highest_bid": highest, // null when no bids yet
	})
}

// ListMine godoc
// GET /api/auctions/my?page=1&limit=20 [JWT]
func (h *AuctionHandler) ListMine(c *gin.Context) {
	sellerID := middleware.GetUserID(c)
	page, limit := parsePagination(c)
	offset := (page - 1) * limit

	auctions, err := h.auctionSvc.ListBySeller(c.Request.Context(), sellerID, limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not list auctions")
		return
	}

	now := time.Now().UTC()
	views := make([]domain.AuctionView, 0, len(auctions))
	for _, a := range auctions {
		views = append(views, a.ToView(now))
	}
	respondList(c, views, len(views), page, limit)
}

// Settle godoc
// POST /api/auctions/:id/settle [JWT]
// Only the seller or an admin may trigger settlement.
func (h *AuctionHandler) Settle(c *gin.Context) {
	requesterID := middleware.GetUserID(c)

	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid auction id")
		return
	}

	receipt, err := h.settlementSvc.Settle(c.Request.Context(), auctionID, requesterID)
	if err != nil {
		respondSettleError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, receipt)
}

// respondSettleError maps settlement failures to HTTP responses.  Funds
// shortfalls are 402, state conflicts 409.
func respondSettleError(c *gin.Context, err error) {
	switch {
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", domain.ErrAuctionNotFound.Error())
	case errors.Is(err, domain.ErrAuctionStillOpen):
		respondError(c, http.StatusConflict, "ERR_STILL_OPEN", domain.ErrAuctionStillOpen.Error())
	case errors.Is(err, domain.ErrAlreadySettled):
		respondError(c, http.StatusConflict, "ERR_ALREADY_SETTLED", domain.ErrAlreadySettled.Error())
	case errors.Is(err, domain.ErrForbidden):
		respondError(c, http.StatusForbidden, "ERR_FORBIDDEN", domain.ErrForbidden.Error())
	case errors.Is(err, domain.ErrNoBids):
		respondError(c, http.StatusConflict, "ERR_NO_BIDS", domain.ErrNoBids.Error())
	case errors.Is(err, domain.ErrInsufficientFunds):
		respondError(c, http.StatusPaymentRequired, "ERR_INSUFFICIENT_FUNDS", domain.ErrInsufficientFunds.Error())
	case errors.Is(err, domain.ErrTxConflict):
		respondError(c, http.StatusConflict, "ERR_CONFLICT", domain.ErrTxConflict.Error())
	default:
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not settle auction")
	}
}

// Categories godoc
// GET /api/categories
func (h *AuctionHandler) Categories(c *gin.Context) {
	cats, err := h.auctionSvc.Categories(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not list categories")
		return
	}
	respondSuccess(c, http.StatusOK, cats)
}
