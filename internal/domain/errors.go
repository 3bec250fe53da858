package domain

import (
	"errors"
)

// ──────────────────────────────────────────────────────────────────────────────
// Sentinel errors — compare with errors.Is()
// ──────────────────────────────────────────────────────────────────────────────

// Auction errors
var (
	// ErrAuctionNotFound is returned when no auction matches the given criteria.
	ErrAuctionNotFound = errors.New("auction not found")

	// ErrAuctionClosed is returned when a bid is placed at or after the
	// auction's closing time, or on a settled auction.
	ErrAuctionClosed = errors.New("auction is closed for bidding")

	// ErrAuctionStillOpen is returned when settlement is attempted before the
	// closing time has passed.
	ErrAuctionStillOpen = errors.New("auction is still open")

	// ErrAlreadySettled is returned on a second settlement attempt.  Duplicate
	// attempts are rejected, never silently ignored, so callers can detect them.
	ErrAlreadySettled = errors.New("auction is already settled")

	// ErrClosingInPast is returned when creating an auction whose closing time
	// is not after its creation time.
	ErrClosingInPast = errors.New("closing time must be in the future")

	// ErrCategoryNotFound is returned when no category matches the given criteria.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrCategoryTaken is returned when a category name already exists.
	ErrCategoryTaken = errors.New("category name is already taken")
)

// Bid errors
var (
	// ErrBidNotFound is returned when no bid matches the given criteria.
	ErrBidNotFound = errors.New("bid not found")

	// ErrNoBids is returned when settlement finds no bids to determine a winner from.
	ErrNoBids = errors.New("auction has no bids")

	// ErrBidTooLow is returned when a proposed price does not strictly exceed
	// the current highest bid (or the starting price for the first bid).
	ErrBidTooLow = errors.New("bid must exceed the current highest bid")

	// ErrNonPositivePrice is returned when a proposed price is zero or negative.
	ErrNonPositivePrice = errors.New("bid price must be positive")
)

// Wallet / ledger errors
var (
	// ErrInsufficientFunds is returned when a debit would take a user's
	// balance below zero.  Nothing is recorded in that case.
	ErrInsufficientFunds = errors.New("insufficient wallet balance")

	// ErrNonPositiveAmount is returned when a deposit or withdrawal amount is
	// zero or negative.
	ErrNonPositiveAmount = errors.New("amount must be positive")

	// ErrHoldAlreadyReleased is returned when releasing a bid hold that has
	// already been released (or charged at settlement).
	ErrHoldAlreadyReleased = errors.New("bid hold is already released")

	// ErrHoldNotReleasable is returned when releasing the hold of the current
	// highest bid on an unsettled auction, which would break the settlement
	// funds guarantee.
	ErrHoldNotReleasable = errors.New("cannot release the hold of the leading bid")

	// ErrWithdrawLimitExceeded is returned when a withdrawal would breach the
	// daily cap.
	ErrWithdrawLimitExceeded = errors.New("daily withdrawal limit exceeded")
)

// User / auth errors
var (
	// ErrUserNotFound is returned when no user matches the given criteria.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken is returned on registration when the email already exists.
	ErrEmailTaken = errors.New("email address is already registered")

	// ErrUsernameTaken is returned on registration when the username already exists.
	ErrUsernameTaken = errors.New("username is already taken")

	// ErrInvalidCredentials is returned when login credentials are wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUserInactive is returned when a suspended user attempts an action.
	ErrUserInactive = errors.New("user account is inactive")

	// ErrUnauthorized is returned when a valid token is not present.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the authenticated user lacks the required
	// permission (e.g. settling someone else's auction).
	ErrForbidden = errors.New("forbidden: insufficient permissions")

	// ErrTokenExpired is returned when a token has passed its TTL.
	ErrTokenExpired = errors.New("token has expired")

	// ErrTokenInvalid is returned when a token cannot be parsed or verified.
	ErrTokenInvalid = errors.New("token is invalid")
)

// Concurrency
var (
	// ErrTxConflict is returned after the bounded internal retry gives up on a
	// serialization or deadlock conflict.  Callers may retry the whole request.
	ErrTxConflict = errors.New("concurrent update conflict, please retry")
)

// ──────────────────────────────────────────────────────────────────────────────
// Helper predicates
// ──────────────────────────────────────────────────────────────────────────────

// notFoundErrors collects all "entity not found" sentinel errors so that
// IsNotFound stays in sync automatically.
var notFoundErrors = []error{
	ErrAuctionNotFound,
	ErrBidNotFound,
	ErrCategoryNotFound,
	ErrUserNotFound,
}

// IsNotFound returns true when err (or any error in its chain) is one of the
// domain "not found" errors.  Handlers use this to translate to HTTP 404.
func IsNotFound(err error) bool {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsConflict returns true for errors that represent a state conflict (double
// settlement, bidding on a closed auction, duplicate registration, a lost
// race after retries).
func IsConflict(err error) bool {
	conflictErrors := []error{
		ErrAlreadySettled,
		ErrAuctionClosed,
		ErrAuctionStillOpen,
		ErrNoBids,
		ErrHoldAlreadyReleased,
		ErrHoldNotReleasable,
		ErrEmailTaken,
		ErrUsernameTaken,
		ErrCategoryTaken,
		ErrTxConflict,
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsAuthError returns true for authentication/authorisation errors.
func IsAuthError(err error) bool {
	authErrors := []error{
		ErrUnauthorized,
		ErrTokenExpired,
		ErrTokenInvalid,
		ErrInvalidCredentials,
		ErrUserInactive,
	}
	for _, target := range authErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
