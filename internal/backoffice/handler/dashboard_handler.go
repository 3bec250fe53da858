package handler

import (
	"net/http"
	"time"

	"github.com/galdos/auctionhouse/internal/config"
	"github.com/galdos/auctionhouse/internal/domain"
	"github.com/galdos/auctionhouse/internal/repository"
	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the /admin/dashboard endpoint.
type DashboardHandler struct {
	auctionRepo *repository.AuctionRepository
	bidRepo     *repository.BidRepository
	userRepo    *repository.UserRepository
	ledgerRepo  *repository.LedgerRepository
	cfg         *config.Config
}

// NewDashboardHandler creates a DashboardHandler.
func NewDashboardHandler(
	auctionRepo *repository.AuctionRepository,
	bidRepo *repository.BidRepository,
	userRepo *repository.UserRepository,
	ledgerRepo *repository.LedgerRepository,
	cfg *config.Config,
) *DashboardHandler {
	return &DashboardHandler{
		auctionRepo: auctionRepo,
		bidRepo:     bidRepo,
		userRepo:    userRepo,
		ledgerRepo:  ledgerRepo,
		cfg:         cfg,
	}
}

// Dashboard godoc
// GET /admin/dashboard
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	now := time.Now().UTC()

	openCount, _ := h.auctionRepo.CountByStatus(ctx, domain.StatusOpen)
	settledCount, _ := h.auctionRepo.CountByStatus(ctx, domain.StatusSettled)
	totalBids, _ := h.bidRepo.CountAll(ctx)
	totalUsers, _ := h.userRepo.CountAll(ctx)

	// Auctions past their closing time still waiting on a settlement run.
	due, _ := h.auctionRepo.GetDueForSettlement(ctx, now)

	// Kind totals for the current day give the money-flow picture at a glance.
	dayStart := now.Truncate(24 * time.Hour)
	kindTotals, _ := h.ledgerRepo.SumByKind(ctx, dayStart, now)

	respondSuccess(c, http.StatusOK, gin.H{
		"timestamp":        now,
		"auctions_open":    openCount,
		"auctions_settled": settledCount,
		"settlement_due":   len(due),
		"total_bids":       totalBids,
		"total_users":      totalUsers,
		"todays_flow":      kindTotals,
		"sweep_enabled":    h.cfg.Auction.SweepEnabled,
		"sweep_interval":   h.cfg.Auction.SweepInterval.String(),
	})
}
