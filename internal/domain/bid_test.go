package domain_test

import (
	"testing"
	"time"

	"github.com/galdos/auctionhouse/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ── Fixtures ──────────────────────────────────────────────────────────────────

func openAuction(now time.Time) *domain.Auction {
	return &domain.Auction{
		ID:            uuid.New(),
		SellerID:      uuid.New(),
		Title:         "vintage camera",
		StartingPrice: decimal.NewFromInt(100),
		Status:        domain.StatusOpen,
		ClosesAt:      now.Add(1 * time.Hour),
		CreatedAt:     now.Add(-1 * time.Hour),
	}
}

func bidAt(price int64, at time.Time) *domain.Bid {
	return &domain.Bid{
		ID:        uuid.New(),
		AuctionID: uuid.New(),
		BidderID:  uuid.New(),
		Price:     decimal.NewFromInt(price),
		CreatedAt: at,
	}
}

// ── ValidateBid — rule matrix ─────────────────────────────────────────────────

func TestValidateBid_Accepts(t *testing.T) {
	now := time.Now().UTC()
	a := openAuction(now)
	highest := bidAt(150, now.Add(-time.Minute))

	err := domain.ValidateBid(a, highest,
		decimal.NewFromInt(200), decimal.NewFromInt(500), now)
	if err != nil {
		t.Errorf("valid bid rejected: %v", err)
	}
}

func TestValidateBid_FirstBidMustExceedStartingPrice(t *testing.T) {
	now := time.Now().UTC()
	a := openAuction(now) // starting price 100

	// Equal to the starting price is not enough.
	err := domain.ValidateBid(a, nil,
		decimal.NewFromInt(100), decimal.NewFromInt(500), now)
	if err != domain.ErrBidTooLow {
		t.Errorf("first bid at starting price: err = %v, want ErrBidTooLow", err)
	}

	// One cent more is.
	err = domain.ValidateBid(a, nil,
		decimal.NewFromFloat(100.01), decimal.NewFromInt(500), now)
	if err != nil {
		t.Errorf("first bid above starting price rejected: %v", err)
	}
}

func TestValidateBid_EqualToHighestIsTooLow(t *testing.T) {
	now := time.Now().UTC()
	a := openAuction(now)
	highest := bidAt(150, now.Add(-time.Minute))

	// Ties never displace the current leader.
	err := domain.ValidateBid(a, highest,
		decimal.NewFromInt(150), decimal.NewFromInt(500), now)
	if err != domain.ErrBidTooLow {
		t.Errorf("tie bid: err = %v, want ErrBidTooLow", err)
	}
}

func TestValidateBid_ClosedAuction(t *testing.T) {
	now := time.Now().UTC()
	a := openAuction(now)
	a.ClosesAt = now.Add(-time.Second)

	err := domain.ValidateBid(a, nil,
		decimal.NewFromInt(200), decimal.NewFromInt(500), now)
	if err != domain.ErrAuctionClosed {
		t.Errorf("bid after close: err = %v, want ErrAuctionClosed", err)
	}
}

func TestValidateBid_ExactlyAtClosingTime(t *testing.T) {
	now := time.Now().UTC()
	a := openAuction(now)
	a.ClosesAt = now // boundary: bidding stops the moment now reaches closes_at

	err := domain.ValidateBid(a, nil,
		decimal.NewFromInt(200), decimal.NewFromInt(500), now)
	if err != domain.ErrAuctionClosed {
		t.Errorf("bid at closing instant: err = %v, want ErrAuctionClosed", err)
	}
}

func TestValidateBid_SettledAuction(t *testing.T) {
	now := time.Now().UTC()
	a := openAuction(now)
	a.Status = domain.StatusSettled

	err := domain.ValidateBid(a, nil,
		decimal.NewFromInt(200), decimal.NewFromInt(500), now)
	if err != domain.ErrAuctionClosed {
		t.Errorf("bid on settled auction: err = %v, want ErrAuctionClosed", err)
	}
}

func TestValidateBid_NonPositivePrice(t *testing.T) {
	now := time.Now().UTC()
	a := openAuction(now)

	for _, price := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		err := domain.ValidateBid(a, nil, price, decimal.NewFromInt(500), now)
		if err != domain.ErrNonPositivePrice {
			t.Errorf("price %s: err = %v, want ErrNonPositivePrice", price, err)
		}
	}
}

func TestValidateBid_InsufficientFunds(t *testing.T) {
	now := time.Now().UTC()
	a := openAuction(now)

	err := domain.ValidateBid(a, nil,
		decimal.NewFromInt(200), decimal.NewFromInt(199), now)
	if err != domain.ErrInsufficientFunds {
		t.Errorf("underfunded bid: err = %v, want ErrInsufficientFunds", err)
	}

	// Balance exactly equal to the price is enough.
	err = domain.ValidateBid(a, nil,
		decimal.NewFromInt(200), decimal.NewFromInt(200), now)
	if err != nil {
		t.Errorf("exact-balance bid rejected: %v", err)
	}
}

// Rules are checked in a fixed order: a closed auction wins over every other
// failure, and price validity wins over funds.
func TestValidateBid_RuleOrder(t *testing.T) {
	now := time.Now().UTC()
	a := openAuction(now)
	a.ClosesAt = now.Add(-time.Minute)

	// Closed + non-positive + underfunded: closed reported first.
	err := domain.ValidateBid(a, nil, decimal.Zero, decimal.Zero, now)
	if err != domain.ErrAuctionClosed {
		t.Errorf("err = %v, want ErrAuctionClosed first", err)
	}

	// Open again: non-positive beats underfunded.
	a.ClosesAt = now.Add(time.Hour)
	err = domain.ValidateBid(a, nil, decimal.Zero, decimal.Zero, now)
	if err != domain.ErrNonPositivePrice {
		t.Errorf("err = %v, want ErrNonPositivePrice before funds check", err)
	}
}

// ValidateBid is a pure function: same inputs, same answer, no matter how
// often or in which order it runs.
func TestValidateBid_Deterministic(t *testing.T) {
	now := time.Now().UTC()
	a := openAuction(now)
	highest := bidAt(150, now.Add(-time.Minute))
	price := decimal.NewFromInt(151)
	balance := decimal.NewFromInt(151)

	for i := 0; i < 100; i++ {
		if err := domain.ValidateBid(a, highest, price, balance, now); err != nil {
			t.Fatalf("run %d: err = %v, want nil every time", i, err)
		}
	}
}

// ── Monotonic sequence property ───────────────────────────────────────────────

// Replaying a series of accepted bids must yield a strictly increasing price
// sequence: each candidate is validated against the running highest.
func TestAcceptedBids_StrictlyIncreasing(t *testing.T) {
	now := time.Now().UTC()
	a := openAuction(now)

	candidates := []int64{101, 150, 120, 150, 151, 90, 200}
	balance := decimal.NewFromInt(10000)

	var highest *domain.Bid
	var accepted []decimal.Decimal
	for i, p := range candidates {
		price := decimal.NewFromInt(p)
		err := domain.ValidateBid(a, highest, price, balance, now)
		if err == nil {
			highest = bidAt(p, now.Add(time.Duration(i)*time.Second))
			accepted = append(accepted, price)
		} else if err != domain.ErrBidTooLow {
			t.Fatalf("candidate %d: unexpected err %v", p, err)
		}
	}

	want := []int64{101, 150, 151, 200}
	if len(accepted) != len(want) {
		t.Fatalf("accepted %d bids, want %d (%v)", len(accepted), len(want), accepted)
	}
	for i := 1; i < len(accepted); i++ {
		if !accepted[i].GreaterThan(accepted[i-1]) {
			t.Errorf("accepted sequence not strictly increasing: %s after %s",
				accepted[i], accepted[i-1])
		}
	}
}

// ── OutbidBy — the ordering rule ──────────────────────────────────────────────

func TestBid_OutbidBy(t *testing.T) {
	now := time.Now().UTC()
	leader := bidAt(150, now)

	if !leader.OutbidBy(bidAt(151, now.Add(time.Second))) {
		t.Error("higher price should outbid the leader")
	}
	// Equal price loses: earliest accepted bid keeps the top.
	if leader.OutbidBy(bidAt(150, now.Add(time.Second))) {
		t.Error("equal price must not outbid the leader")
	}
	if leader.OutbidBy(bidAt(149, now.Add(time.Second))) {
		t.Error("lower price must not outbid the leader")
	}
}
