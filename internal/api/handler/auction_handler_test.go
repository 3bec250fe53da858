package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/galdos/auctionhouse/internal/domain"
	"github.com/gin-gonic/gin"
)

// Settlement failures must keep their distinct HTTP classes: funds shortfall
// is 402, lifecycle conflicts are 409, permission is 403.
func TestRespondSettleError_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err  error
		want int
	}{
		{domain.ErrAuctionNotFound, http.StatusNotFound},
		{domain.ErrAuctionStillOpen, http.StatusConflict},
		{domain.ErrAlreadySettled, http.StatusConflict},
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.ErrNoBids, http.StatusConflict},
		{domain.ErrInsufficientFunds, http.StatusPaymentRequired},
		{domain.ErrTxConflict, http.StatusConflict},
		{fmt.Errorf("driver: bad connection"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		rr := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rr)

		// Services wrap errors before handlers see them.
		respondSettleError(c, fmt.Errorf("settlement_service.Settle: %w", tc.err))

		if rr.Code != tc.want {
			t.Errorf("respondSettleError(%v) = %d, want %d", tc.err, rr.Code, tc.want)
		}
	}
}
