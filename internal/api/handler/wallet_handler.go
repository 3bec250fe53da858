package handler

import (
	"errors"
	"net/http"

	"github.com/galdos/auctionhouse/internal/api/middleware"
	"github.com/galdos/auctionhouse/internal/config"
	"github.com/galdos/auctionhouse/internal/domain"
	"github.com/galdos/auctionhouse/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// WalletHandler serves balance, ledger history, deposit, and withdrawal
// endpoints.
type WalletHandler struct {
	walletSvc *service.WalletService
	cfg       *config.Config
}

// NewWalletHandler creates a WalletHandler.
func NewWalletHandler(walletSvc *service.WalletService, cfg *config.Config) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc, cfg: cfg}
}

// GetBalance godoc
// GET /api/wallet/balance [JWT]
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID := middleware.GetUserID(c)
	balance, err := h.walletSvc.Balance(c.Request.Context(), userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch balance")
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"balance": balance})
}

// GetEntries godoc
// GET /api/wallet/entries?page=1&limit=20 [JWT]
func (h *WalletHandler) GetEntries(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, limit := parsePagination(c)
	offset := (page - 1) * limit

	entries, err := h.walletSvc.Entries(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch ledger entries")
		return
	}
	respondList(c, entries, len(entries), page, limit)
}

// Deposit godoc
// POST /api/wallet/deposit [JWT]
// Body: {"amount":"1000.00"}
func (h *WalletHandler) Deposit(c *gin.Context) {
	userID := middleware.GetUserID(c)

	amount, ok := h.parseAmount(c)
	if !ok {
		return
	}

	entry, err := h.walletSvc.Deposit(c.Request.Context(), userID, amount)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNonPositiveAmount):
			respondError(c, http.StatusBadRequest, "ERR_INVALID_AMOUNT", domain.ErrNonPositiveAmount.Error())
		case domain.IsNotFound(err):
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", domain.ErrUserNotFound.Error())
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not process deposit")
		}
		return
	}
	respondSuccess(c, http.StatusCreated, entry)
}

// Withdraw godoc
// POST /api/wallet/withdraw [JWT]
// Body: {"amount":"1000.00"}
func (h *WalletHandler) Withdraw(c *gin.Context) {
	userID := middleware.GetUserID(c)

	amount, ok := h.parseAmount(c)
	if !ok {
		return
	}

	minWithdraw := decimal.NewFromFloat(h.cfg.Wallet.MinWithdraw)
	if amount.LessThan(minWithdraw) {
		respondError(c, http.StatusBadRequest, "ERR_BELOW_MIN_WITHDRAW",
			"minimum withdrawal is "+minWithdraw.StringFixed(2))
		return
	}

	entry, err := h.walletSvc.Withdraw(c.Request.Context(), userID, amount)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNonPositiveAmount):
			respondError(c, http.StatusBadRequest, "ERR_INVALID_AMOUNT", domain.ErrNonPositiveAmount.Error())
		case errors.Is(err, domain.ErrWithdrawLimitExceeded):
			respondError(c, http.StatusBadRequest, "ERR_DAILY_LIMIT_EXCEEDED", domain.ErrWithdrawLimitExceeded.Error())
		case errors.Is(err, domain.ErrInsufficientFunds):
			respondError(c, http.StatusPaymentRequired, "ERR_INSUFFICIENT_FUNDS", domain.ErrInsufficientFunds.Error())
		case domain.IsNotFound(err):
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", domain.ErrUserNotFound.Error())
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not process withdrawal")
		}
		return
	}
	respondSuccess(c, http.StatusCreated, entry)
}

// parseAmount binds {"amount":"..."} and parses it as a positive decimal.
// Writes the error response itself and returns ok=false on failure.
func (h *WalletHandler) parseAmount(c *gin.Context) (decimal.Decimal, bool) {
	var body struct {
		Amount string `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return decimal.Zero, false
	}

	amount, err := decimal.NewFromString(body.Amount)
	if err != nil || !amount.IsPositive() {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_AMOUNT", "amount must be a positive decimal string")
		return decimal.Zero, false
	}
	return amount, true
}
