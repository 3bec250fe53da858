package domain_test

import (
	"testing"
	"time"

	"github.com/galdos/auctionhouse/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ── Phase derivation ──────────────────────────────────────────────────────────

// The closed state is never stored: it is derived by comparing now against
// closes_at.  Only open and settled exist in the database.
func TestAuction_Phase(t *testing.T) {
	now := time.Now().UTC()
	a := &domain.Auction{
		ID:       uuid.New(),
		Status:   domain.StatusOpen,
		ClosesAt: now.Add(time.Hour),
	}

	if got := a.Phase(now); got != domain.PhaseOpen {
		t.Errorf("Phase before close = %s, want %s", got, domain.PhaseOpen)
	}

	if got := a.Phase(now.Add(2 * time.Hour)); got != domain.PhaseClosedUnsettled {
		t.Errorf("Phase after close = %s, want %s", got, domain.PhaseClosedUnsettled)
	}

	a.Status = domain.StatusSettled
	if got := a.Phase(now.Add(2 * time.Hour)); got != domain.PhaseSettled {
		t.Errorf("Phase settled = %s, want %s", got, domain.PhaseSettled)
	}
}

func TestAuction_AcceptsBidsAt_Boundary(t *testing.T) {
	closesAt := time.Now().UTC()
	a := &domain.Auction{Status: domain.StatusOpen, ClosesAt: closesAt}

	if !a.AcceptsBidsAt(closesAt.Add(-time.Nanosecond)) {
		t.Error("auction should accept bids right up to the closing instant")
	}
	if a.AcceptsBidsAt(closesAt) {
		t.Error("auction must stop accepting bids at exactly closes_at")
	}
	if a.AcceptsBidsAt(closesAt.Add(time.Second)) {
		t.Error("auction must not accept bids after closes_at")
	}
}

func TestAuction_TimeLeft(t *testing.T) {
	now := time.Now().UTC()
	a := &domain.Auction{ClosesAt: now.Add(2 * time.Minute)}

	if tl := a.TimeLeft(now); tl != 2*time.Minute {
		t.Errorf("TimeLeft() = %v, want 2m0s", tl)
	}
	if tl := a.TimeLeft(now.Add(3 * time.Minute)); tl != 0 {
		t.Errorf("TimeLeft() past close = %v, want 0", tl)
	}
}

func TestAuction_ToView(t *testing.T) {
	now := time.Now().UTC()
	a := &domain.Auction{
		ID:            uuid.New(),
		SellerID:      uuid.New(),
		Title:         "signed first edition",
		StartingPrice: decimal.NewFromInt(250),
		Status:        domain.StatusOpen,
		ClosesAt:      now.Add(90 * time.Second),
		CreatedAt:     now.Add(-time.Hour),
	}

	v := a.ToView(now)
	if v.Phase != domain.PhaseOpen {
		t.Errorf("view.Phase = %s, want open", v.Phase)
	}
	if !v.IsOpen {
		t.Error("view.IsOpen should be true before close")
	}
	if v.TimeLeftSec != 90 {
		t.Errorf("view.TimeLeftSec = %d, want 90", v.TimeLeftSec)
	}

	v = a.ToView(now.Add(2 * time.Minute))
	if v.IsOpen {
		t.Error("view.IsOpen should be false past close")
	}
	if v.Phase != domain.PhaseClosedUnsettled {
		t.Errorf("view.Phase past close = %s, want closed_unsettled", v.Phase)
	}
}
