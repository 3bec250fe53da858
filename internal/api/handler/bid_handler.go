package handler

import (
	"errors"
	"net/http"

	"github.com/galdos/auctionhouse/internal/api/middleware"
	"github.com/galdos/auctionhouse/internal/domain"
	"github.com/galdos/auctionhouse/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BidHandler serves bid placement and bid query endpoints.
type BidHandler struct {
	bidSvc *service.BidService
}

// NewBidHandler creates a BidHandler.
func NewBidHandler(bidSvc *service.BidService) *BidHandler {
	return &BidHandler{bidSvc: bidSvc}
}

// Place godoc
// POST /api/auctions/:id/bids [JWT]
// Body: {"price":"150.00"}
func (h *BidHandler) Place(c *gin.Context) {
	bidderID := middleware.GetUserID(c)

	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid auction id")
		return
	}

	var body struct {
		Price string `json:"price" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	price, err := decimal.NewFromString(body.Price)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_PRICE", "price must be a decimal string")
		return
	}

	bid, err := h.bidSvc.PlaceBid(c.Request.Context(), domain.PlaceBidRequest{
		AuctionID: auctionID,
		BidderID:  bidderID,
		Price:     price,
	})
	if err != nil {
		switch {
		case domain.IsNotFound(err):
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", domain.ErrAuctionNotFound.Error())
		case errors.Is(err, domain.ErrAuctionClosed):
			respondError(c, http.StatusConflict, "ERR_AUCTION_CLOSED", domain.ErrAuctionClosed.Error())
		case errors.Is(err, domain.ErrNonPositivePrice):
			respondError(c, http.StatusBadRequest, "ERR_INVALID_PRICE", domain.ErrNonPositivePrice.Error())
		case errors.Is(err, domain.ErrBidTooLow):
			respondError(c, http.StatusConflict, "ERR_BID_TOO_LOW", domain.ErrBidTooLow.Error())
		case errors.Is(err, domain.ErrInsufficientFunds):
			respondError(c, http.StatusPaymentRequired, "ERR_INSUFFICIENT_FUNDS", domain.ErrInsufficientFunds.Error())
		case errors.Is(err, domain.ErrTxConflict):
			respondError(c, http.StatusConflict, "ERR_CONFLICT", domain.ErrTxConflict.Error())
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not place bid")
		}
		return
	}
	respondSuccess(c, http.StatusCreated, bid)
}

// ListByAuction godoc
// GET /api/auctions/:id/bids?page=1&limit=20
func (h *BidHandler) ListByAuction(c *gin.Context) {
	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid auction id")
		return
	}

	page, limit := parsePagination(c)
	offset := (page - 1) * limit

	bids, err := h.bidSvc.ListAuctionBids(c.Request.Context(), auctionID, limit, offset)
	if err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", domain.ErrAuctionNotFound.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch bids")
		return
	}
	respondList(c, bids, len(bids), page, limit)
}

// Highest godoc
// GET /api/auctions/:id/bids/highest
func (h *BidHandler) Highest(c *gin.Context) {
	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid auction id")
		return
	}

	bid, err := h.bidSvc.GetHighestBid(c.Request.Context(), auctionID)
	if err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", domain.ErrAuctionNotFound.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch highest bid")
		return
	}
	respondSuccess(c, http.StatusOK, bid) // null when no bids yet
}

// ListMine godoc
// GET /api/bids/my?page=1&limit=20 [JWT]
func (h *BidHandler) ListMine(c *gin.Context) {
	bidderID := middleware.GetUserID(c)
	page, limit := parsePagination(c)
	offset := (page - 1) * limit

	bids, err := h.bidSvc.ListMyBids(c.Request.Context(), bidderID, limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch bids")
		return
	}
	respondList(c, bids, len(bids), page, limit)
}
