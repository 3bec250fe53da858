package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Bid
// ──────────────────────────────────────────────────────────────────────────────

// Bid is a monetary offer on an auction.  Bids are immutable after creation;
// raising an offer is always a new bid event.
type Bid struct {
	ID        uuid.UUID       `json:"id"         db:"id"`
	AuctionID uuid.UUID       `json:"auction_id" db:"auction_id"`
	BidderID  uuid.UUID       `json:"bidder_id"  db:"bidder_id"`
	Price     decimal.Decimal `json:"price"      db:"price"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// OutbidBy reports whether other beats this bid under the ordering rule:
// higher price wins, equal price loses (earliest accepted bid keeps the top).
func (b *Bid) OutbidBy(other *Bid) bool {
	return other.Price.GreaterThan(b.Price)
}

// PlaceBidRequest carries the validated inputs for placing a bid.
type PlaceBidRequest struct {
	AuctionID uuid.UUID
	BidderID  uuid.UUID
	Price     decimal.Decimal
}

// ──────────────────────────────────────────────────────────────────────────────
// Bid validation — pure decision function
// ──────────────────────────────────────────────────────────────────────────────

// ValidateBid decides whether a proposed bid is acceptable.  It takes every
// piece of state as an explicit argument and has no side effects, so each
// rule can be unit-tested without a database.
//
// Rules are applied in order; the first failure wins:
//  1. ErrAuctionClosed     — now is at or past the closing time, or the
//     auction is already settled.
//  2. ErrNonPositivePrice  — proposed price <= 0.
//  3. ErrBidTooLow         — proposed price does not strictly exceed the
//     current highest bid, or the starting price when no bid exists yet.
//  4. ErrInsufficientFunds — the bidder's balance cannot cover the price.
func ValidateBid(auction *Auction, highest *Bid, price, bidderBalance decimal.Decimal, now time.Time) error {
	if !auction.AcceptsBidsAt(now) {
		return ErrAuctionClosed
	}
	if !price.IsPositive() {
		return ErrNonPositivePrice
	}
	if highest != nil {
		if price.LessThanOrEqual(highest.Price) {
			return ErrBidTooLow
		}
	} else if price.LessThanOrEqual(auction.StartingPrice) {
		return ErrBidTooLow
	}
	if bidderBalance.LessThan(price) {
		return ErrInsufficientFunds
	}
	return nil
}
