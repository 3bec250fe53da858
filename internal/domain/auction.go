// Package domain defines the core business entities and rules for the
// auction marketplace: auctions, bids, and the wallet ledger.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Types & constants
// ──────────────────────────────────────────────────────────────────────────────

// AuctionStatus is the persisted settlement state of an auction.
//
// Only two values are stored: StatusOpen and StatusSettled.  The intermediate
// "closed but not yet settled" state is derived at read time from the closing
// timestamp — see Auction.Phase.
type AuctionStatus string

const (
	StatusOpen    AuctionStatus = "open"    // created, bids accepted until closing time
	StatusSettled AuctionStatus = "settled" // winner charged, seller credited; terminal
)

// AuctionPhase is the derived lifecycle phase exposed to callers.
type AuctionPhase string

const (
	PhaseOpen            AuctionPhase = "open"
	PhaseClosedUnsettled AuctionPhase = "closed_unsettled"
	PhaseSettled         AuctionPhase = "settled"
)

// ──────────────────────────────────────────────────────────────────────────────
// Category
// ──────────────────────────────────────────────────────────────────────────────

// Category groups auction listings.
type Category struct {
	ID   uuid.UUID `json:"id"   db:"id"`
	Name string    `json:"name" db:"name"`
}

// ──────────────────────────────────────────────────────────────────────────────
// Auction
// ──────────────────────────────────────────────────────────────────────────────

// Auction is a listing that accepts bids until its closing time.
type Auction struct {
	ID            uuid.UUID       `json:"id"             db:"id"`
	SellerID      uuid.UUID       `json:"seller_id"      db:"seller_id"`
	CategoryID    *uuid.UUID      `json:"category_id"    db:"category_id"`
	Title         string          `json:"title"          db:"title"`
	Description   string          `json:"description"    db:"description"`
	Thumbnail     string          `json:"thumbnail"      db:"thumbnail"`
	StartingPrice decimal.Decimal `json:"starting_price" db:"starting_price"`
	Status        AuctionStatus   `json:"status"         db:"status"`
	ClosesAt      time.Time       `json:"closes_at"      db:"closes_at"`
	SettledAt     *time.Time      `json:"settled_at"     db:"settled_at"`
	CreatedAt     time.Time       `json:"created_at"     db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"     db:"updated_at"`
}

// IsSettled returns true once the auction has been settled.  Terminal.
func (a *Auction) IsSettled() bool {
	return a.Status == StatusSettled
}

// AcceptsBidsAt returns true while the auction can still take bids at the
// given instant.  Bidding stops the moment now reaches the closing time.
func (a *Auction) AcceptsBidsAt(now time.Time) bool {
	return !a.IsSettled() && now.Before(a.ClosesAt)
}

// Phase derives the three-state lifecycle view from the persisted status and
// the closing timestamp.  The open → closed_unsettled transition is a
// read-time comparison, never a stored mutation.
func (a *Auction) Phase(now time.Time) AuctionPhase {
	switch {
	case a.IsSettled():
		return PhaseSettled
	case now.Before(a.ClosesAt):
		return PhaseOpen
	default:
		return PhaseClosedUnsettled
	}
}

// TimeLeft returns the duration remaining until bidding closes.
// Returns 0 once the closing time has passed.
func (a *Auction) TimeLeft(now time.Time) time.Duration {
	remaining := a.ClosesAt.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ──────────────────────────────────────────────────────────────────────────────
// AuctionView — API read model
// ──────────────────────────────────────────────────────────────────────────────

// AuctionView is the JSON shape served by the catalog endpoints.  IsOpen and
// Phase are derived per request; TimeLeftSec is a convenience for clients.
type AuctionView struct {
	ID            uuid.UUID       `json:"id"`
	SellerID      uuid.UUID       `json:"seller_id"`
	CategoryID    *uuid.UUID      `json:"category_id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Thumbnail     string          `json:"thumbnail"`
	StartingPrice decimal.Decimal `json:"starting_price"`
	Phase         AuctionPhase    `json:"phase"`
	IsOpen        bool            `json:"is_open"`
	ClosesAt      time.Time       `json:"closes_at"`
	TimeLeftSec   int64           `json:"time_left_sec"`
	SettledAt     *time.Time      `json:"settled_at"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToView builds the API read model for the given instant.
func (a *Auction) ToView(now time.Time) AuctionView {
	return AuctionView{
		ID:            a.ID,
		SellerID:      a.SellerID,
		CategoryID:    a.CategoryID,
		Title:         a.Title,
		Description:   a.Description,
		Thumbnail:     a.Thumbnail,
		StartingPrice: a.StartingPrice,
		Phase:         a.Phase(now),
		IsOpen:        a.AcceptsBidsAt(now),
		ClosesAt:      a.ClosesAt,
		TimeLeftSec:   int64(a.TimeLeft(now).Seconds()),
		SettledAt:     a.SettledAt,
		CreatedAt:     a.CreatedAt,
	}
}
