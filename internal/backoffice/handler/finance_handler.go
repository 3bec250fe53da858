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

// FinanceHandler serves /admin/finance endpoints.
type FinanceHandler struct {
	ledgerRepo *repository.LedgerRepository
	walletSvc  *service.WalletService
	cfg        *config.Config
}

// NewFinanceHandler creates a FinanceHandler.
func NewFinanceHandler(
	ledgerRepo *repository.LedgerRepository,
	walletSvc *service.WalletService,
	cfg *config.Config,
) *FinanceHandler {
	return &FinanceHandler{ledgerRepo: ledgerRepo, walletSvc: walletSvc, cfg: cfg}
}

// Report godoc
// GET /admin/finance/report?from=2026-08-01&to=2026-08-31
// Totals of ledger movement per entry kind over the window.
func (h *FinanceHandler) Report(c *gin.Context) {
	ctx := c.Request.Context()

	fromStr := c.Query("from")
	toStr := c.Query("to")

	var from, to time.Time
	var err error
	if fromStr != "" {
		from, err = time.Parse("2006-01-02", fromStr)
		if err != nil {
			respondError(c, http.StatusBadRequest, "ERR_INVALID_DATE", "from must be YYYY-MM-DD")
			return
		}
	} else {
		from = time.Now().UTC().AddDate(0, -1, 0).Truncate(24 * time.Hour) // default: last 30 days
	}
	if toStr != "" {
		to, err = time.Parse("2006-01-02", toStr)
		if err != nil {
			respondError(c, http.StatusBadRequest, "ERR_INVALID_DATE", "to must be YYYY-MM-DD")
			return
		}
		to = to.Add(24 * time.Hour) // inclusive
	} else {
		to = time.Now().UTC()
	}

	totals, err := h.ledgerRepo.SumByKind(ctx, from, to)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{
		"from":   from,
		"to":     to,
		"totals": totals,
	})
}

// Entries godoc
// GET /admin/finance/entries?page=1&limit=50
// The platform-wide ledger tail, newest first.
func (h *FinanceHandler) Entries(c *gin.Context) {
	page, limit := adminPagination(c)
	offset := (page - 1) * limit

	entries, err := h.ledgerRepo.ListRecent(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondList(c, entries, len(entries), page, limit)
}

// ReleaseHold godoc
// POST /admin/finance/holds/:bid_id/release
// Manually refunds a bid hold, e.g. after outbid-release was disabled or for
// support cases.  The leading bid of an unsettled auction is refused.
func (h *FinanceHandler) ReleaseHold(c *gin.Context) {
	bidID, err := uuid.Parse(c.Param("bid_id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid bid id")
		return
	}

	entry, err := h.walletSvc.ReleaseHold(c.Request.Context(), bidID)
	if err != nil {
		switch {
		case domain.IsNotFound(err):
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", domain.ErrBidNotFound.Error())
		case errors.Is(err, domain.ErrHoldAlreadyReleased):
			respondError(c, http.StatusConflict, "ERR_ALREADY_RELEASED", domain.ErrHoldAlreadyReleased.Error())
		case errors.Is(err, domain.ErrHoldNotReleasable):
			respondError(c, http.StatusConflict, "ERR_NOT_RELEASABLE", domain.ErrHoldNotReleasable.Error())
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		}
		return
	}
	respondSuccess(c, http.StatusOK, entry)
}
