package store

import (
	"context"
	"time"
)

// RatingOutcome is the result of folding a client rating into a cleaner's
// ledger. Reward is non-nil only when the rating crossed the consecutive
// five-star threshold.
type RatingOutcome struct {
	Booking *Booking
	Profile *CleanerProfile
	Reward  *Reward
}

// BalanceSnapshot is a consistent view of a cleaner's withdrawal balance.
type BalanceSnapshot struct {
	TotalEarningsCents   int64
	PaidCents            int64
	PendingApprovedCents int64
	AvailableCents       int64
}

// SettlementStore groups the operations that perform a read-modify-write
// over a cleaner's shared ledger state. Implementations must serialize
// each operation per cleaner (row lock or equivalent) so that concurrent
// ratings or withdrawal requests cannot interleave and break the balance
// invariant: available = totalEarnings - paid - (pending + approved).
type SettlementStore interface {
	// CompleteBooking marks a confirmed booking completed and credits the
	// per-cleaner earnings to the cleaner's ledger, atomically and at most
	// once. Returns settlement.ConflictError if the booking is already
	// completed or cancelled.
	CompleteBooking(ctx context.Context, bookingID string) (*Booking, error)

	// RateBooking writes the booking's rating and folds it into the
	// cleaner's ledger under the current reward policy, emitting a Reward
	// when the streak threshold is crossed. Returns settlement.ConflictError
	// if the booking already has a rating.
	RateBooking(ctx context.Context, bookingID string, rating int, comment string) (*RatingOutcome, error)

	// AvailableBalance computes the cleaner's balance snapshot.
	AvailableBalance(ctx context.Context, cleanerProfileID string) (*BalanceSnapshot, error)

	// CreateWithdrawal validates and inserts a pending withdrawal request.
	// The caller supplies its wall-clock time for the daily-window policy.
	CreateWithdrawal(ctx context.Context, cleanerProfileID string, amountCents int64, now time.Time) (*WithdrawalRequest, error)

	// TransitionWithdrawal applies an admin-driven status transition.
	// receiptURL is stored when transitioning to paid; note when rejecting.
	TransitionWithdrawal(ctx context.Context, withdrawalID string, next WithdrawalStatus, processedByID string, receiptURL *string, note string) (*WithdrawalRequest, error)
}
