// Package settlement holds the pure bookkeeping rules of the platform:
// rating-driven ledger accrual, reward emission, and withdrawal balance
// reconciliation. Every function here is a pure computation over snapshot
// values; the postgresql store runs them inside row-locked transactions so
// concurrent updates to the same cleaner cannot interleave.
package settlement

import (
	"fmt"
	"time"
)

// Ratings are whole stars.
const (
	MinRating = 1
	MaxRating = 5
)

// WithdrawalWindowOpensHour is the local hour from which withdrawal
// requests are accepted, the daily settlement window. A business rule,
// not a security control.
const WithdrawalWindowOpensHour = 23

// RewardPolicy is the admin-configured bonus rule: after Threshold
// consecutive five-star ratings the cleaner earns a bonus of BonusCents.
type RewardPolicy struct {
	BonusCents int64
	Threshold  int
}

// Ledger is a snapshot of a cleaner's running counters. RatedBookings is
// the denominator of the running average; CompletedBookings and
// TotalEarningsCents advance when a booking is completed, not when it is
// rated.
type Ledger struct {
	TotalEarningsCents   int64
	ConsecutiveFiveStars int
	RewardsEarned        int
	AverageRating        float64
	RatedBookings        int
	CompletedBookings    int
}

// RewardGrant describes a bonus emitted by a rating application.
type RewardGrant struct {
	AmountCents int64
	Reason      string
}

// ApplyRating folds one rating into the ledger and reports whether it
// crossed the reward threshold.
//
// The average is a running mean, never recomputed from history. A 5-star
// rating extends the consecutive streak, anything lower resets it. When the
// streak reaches the policy threshold exactly one reward is granted and the
// streak resets to zero: a threshold's worth of five-star ratings is
// consumed per reward and no remainder carries over.
func ApplyRating(ledger Ledger, rating int, policy RewardPolicy) (Ledger, *RewardGrant, error) {
	if rating < MinRating || rating > MaxRating {
		return ledger, nil, &ValidationError{Reason: fmt.Sprintf("rating %d out of range [%d,%d]", rating, MinRating, MaxRating)}
	}

	updated := ledger
	updated.RatedBookings = ledger.RatedBookings + 1
	updated.AverageRating = (ledger.AverageRating*float64(ledger.RatedBookings) + float64(rating)) / float64(updated.RatedBookings)

	if rating == MaxRating {
		updated.ConsecutiveFiveStars = ledger.ConsecutiveFiveStars + 1
	} else {
		updated.ConsecutiveFiveStars = 0
	}

	var grant *RewardGrant
	if policy.Threshold > 0 && updated.ConsecutiveFiveStars >= policy.Threshold {
		grant = &RewardGrant{
			AmountCents: policy.BonusCents,
			Reason:      fmt.Sprintf("%d avaliações 5 estrelas seguidas! Bônus de R$ %.2f", policy.Threshold, float64(policy.BonusCents)/100),
		}
		updated.RewardsEarned = ledger.RewardsEarned + 1
		updated.ConsecutiveFiveStars = 0
	}

	return updated, grant, nil
}

// AvailableBalance computes what a cleaner can still withdraw: lifetime
// earnings minus paid-out withdrawals minus withdrawals currently tied up
// in pending or approved requests. Rejected withdrawals are excluded from
// both sums, which is how their funds return to the balance.
func AvailableBalance(totalEarningsCents, paidCents, pendingApprovedCents int64) int64 {
	return totalEarningsCents - paidCents - pendingApprovedCents
}

// PayoutDetails is the payout identity a withdrawal snapshot requires.
type PayoutDetails struct {
	PixKey           string
	RecipientName    string
	RecipientAddress string
}

// ValidateWithdrawal gates withdrawal creation. The caller passes its
// current wall-clock time so the daily-window policy stays testable.
func ValidateWithdrawal(amountCents, availableCents int64, now time.Time, payout PayoutDetails) error {
	if now.Hour() < WithdrawalWindowOpensHour {
		return &PolicyViolationError{Reason: "saques só podem ser solicitados após as 23h"}
	}
	if amountCents <= 0 {
		return &ValidationError{Reason: "withdrawal amount must be positive"}
	}
	if payout.PixKey == "" {
		return &ValidationError{Reason: "cadastre uma chave PIX antes de solicitar saques"}
	}
	if payout.RecipientName == "" || payout.RecipientAddress == "" {
		return &ValidationError{Reason: "nome e endereço do recebedor são obrigatórios"}
	}
	if amountCents > availableCents {
		return &InsufficientBalanceError{RequestedCents: amountCents, AvailableCents: availableCents}
	}
	return nil
}

// CreditCompletion folds one completed booking's per-cleaner earnings into
// the ledger.
func CreditCompletion(ledger Ledger, earningsCents int64) (Ledger, error) {
	if earningsCents < 0 {
		return ledger, &ValidationError{Reason: "completion earnings must not be negative"}
	}
	updated := ledger
	updated.TotalEarningsCents += earningsCents
	updated.CompletedBookings++
	return updated, nil
}
