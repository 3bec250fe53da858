package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/galdos/auctionhouse/internal/config"
	"github.com/galdos/auctionhouse/internal/domain"
	"github.com/galdos/auctionhouse/internal/repository"
	"github.com/galdos/auctionhouse/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuctionAdminHandler serves /admin/auctions and /admin/categories endpoints.
type AuctionAdminHandler struct {
	auctionSvc    *service.AuctionService
	settlementSvc *service.SettlementService
	bidRepo       *repository.BidRepository
	cfg           *config.Config
}

// NewAuctionAdminHandler creates an AuctionAdminHandler.
func NewAuctionAdminHandler(
	auctionSvc *service.AuctionService,
	settlementSvc *service.SettlementService,
	bidRepo *repository.BidRepository,
	cfg *config.Config,
) *AuctionAdminHandler {
	return &AuctionAdminHandler{
		auctionSvc:    auctionSvc,
		settlementSvc: settlementSvc,
		bidRepo:       bidRepo,
		cfg:           cfg,
	}
}

// List godoc
// GET /admin/auctions?status=open&page=1&limit=50
func (h *AuctionAdminHandler) List(c *gin.Context) {
	status := c.Query("status")
	page, limit := adminPagination(c)
	offset := (page - 1) * limit

	auctions, total, err := h.auctionSvc.ListAuctions(c.Request.Context(), limit, offset, status, nil)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}

	now := time.Now().UTC()
	views := make([]domain.AuctionView, 0, len(auctions))
	for _, a := range auctions {
		views = append(views, a.ToView(now))
	}
	respondList(c, views, total, page, limit)
}

// Detail godoc
// GET /admin/auctions/:id
func (h *AuctionAdminHandler) Detail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid auction id")
		return
	}

	ctx := c.Request.Context()
	auction, err := h.auctionSvc.GetAuction(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", domain.ErrAuctionNotFound.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}

	bids, err := h.bidRepo.ListByAuction(ctx, id, 100, 0)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	bidCount, err := h.bidRepo.CountByAuction(ctx, id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"auction":   auction.ToView(time.Now().UTC()),
		"bids":      bids,
		"bid_count": bidCount,
	})
}

// Settle godoc
// POST /admin/auctions/:id/settle
// Force-settles a closed auction regardless of who listed it.
func (h *AuctionAdminHandler) Settle(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid auction id")
		return
	}

	receipt, err := h.settlementSvc.Settle(c.Request.Context(), id, adminUserID(c))
	if err != nil {
		switch {
		case domain.IsNotFound(err):
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", domain.ErrAuctionNotFound.Error())
		case errors.Is(err, domain.ErrAuctionStillOpen):
			respondError(c, http.StatusConflict, "ERR_STILL_OPEN", domain.ErrAuctionStillOpen.Error())
		case errors.Is(err, domain.ErrAlreadySettled):
			respondError(c, http.StatusConflict, "ERR_ALREADY_SETTLED", domain.ErrAlreadySettled.Error())
		case errors.Is(err, domain.ErrNoBids):
			respondError(c, http.StatusConflict, "ERR_NO_BIDS", domain.ErrNoBids.Error())
		case errors.Is(err, domain.ErrInsufficientFunds):
			respondError(c, http.StatusPaymentRequired, "ERR_INSUFFICIENT_FUNDS", domain.ErrInsufficientFunds.Error())
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		}
		return
	}
	respondSuccess(c, http.StatusOK, receipt)
}

// CreateCategory godoc
// POST /admin/categories
// Body: {"name": "Electronics"}
func (h *AuctionAdminHandler) CreateCategory(c *gin.Context) {
	var body struct {
		Name string `json:"name" binding:"required,min=2,max=100"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	cat, err := h.auctionSvc.CreateCategory(c.Request.Context(), body.Name)
	if err != nil {
		if errors.Is(err, domain.ErrCategoryTaken) {
			respondError(c, http.StatusConflict, "ERR_CATEGORY_TAKEN", domain.ErrCategoryTaken.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondSuccess(c, http.StatusCreated, cat)
}
