package settlement

import (
	"errors"
	"math"
	"testing"
	"time"
)

var testPolicy = RewardPolicy{BonusCents: 5000, Threshold: 10}

func TestApplyRatingRunningAverage(t *testing.T) {
	ledger := Ledger{}
	for _, rating := range []int{5, 5, 3} {
		var err error
		ledger, _, err = ApplyRating(ledger, rating, testPolicy)
		if err != nil {
			t.Fatalf("ApplyRating(%d): %v", rating, err)
		}
	}

	if ledger.RatedBookings != 3 {
		t.Errorf("rated bookings = %d, want 3", ledger.RatedBookings)
	}
	want := (5.0 + 5.0 + 3.0) / 3.0
	if math.Abs(ledger.AverageRating-want) > 1e-9 {
		t.Errorf("average = %v, want %v", ledger.AverageRating, want)
	}
}

func TestApplyRatingStreak(t *testing.T) {
	ledger := Ledger{ConsecutiveFiveStars: 4}

	ledger, grant, err := ApplyRating(ledger, 5, testPolicy)
	if err != nil {
		t.Fatalf("ApplyRating: %v", err)
	}
	if grant != nil {
		t.Fatalf("unexpected grant at streak %d", ledger.ConsecutiveFiveStars)
	}
	if ledger.ConsecutiveFiveStars != 5 {
		t.Errorf("streak = %d, want 5", ledger.ConsecutiveFiveStars)
	}

	// Anything below five stars breaks the streak.
	ledger, _, err = ApplyRating(ledger, 4, testPolicy)
	if err != nil {
		t.Fatalf("ApplyRating: %v", err)
	}
	if ledger.ConsecutiveFiveStars != 0 {
		t.Errorf("streak after 4-star = %d, want 0", ledger.ConsecutiveFiveStars)
	}
}

func TestTenConsecutiveFiveStarsYieldOneReward(t *testing.T) {
	ledger := Ledger{}
	var grants []*RewardGrant

	for i := 0; i < 10; i++ {
		var grant *RewardGrant
		var err error
		ledger, grant, err = ApplyRating(ledger, 5, testPolicy)
		if err != nil {
			t.Fatalf("ApplyRating #%d: %v", i+1, err)
		}
		if grant != nil {
			grants = append(grants, grant)
		}
	}

	if len(grants) != 1 {
		t.Fatalf("got %d grants, want exactly 1", len(grants))
	}
	if grants[0].AmountCents != testPolicy.BonusCents {
		t.Errorf("grant amount = %d, want %d", grants[0].AmountCents, testPolicy.BonusCents)
	}
	if ledger.RewardsEarned != 1 {
		t.Errorf("rewards earned = %d, want 1", ledger.RewardsEarned)
	}
	if ledger.ConsecutiveFiveStars != 0 {
		t.Errorf("streak after grant = %d, want 0 (no carry-over)", ledger.ConsecutiveFiveStars)
	}

	// The 11th five-star rating restarts from a clean streak.
	ledger, grant, err := ApplyRating(ledger, 5, testPolicy)
	if err != nil {
		t.Fatalf("ApplyRating #11: %v", err)
	}
	if grant != nil {
		t.Error("unexpected grant on 11th rating")
	}
	if ledger.ConsecutiveFiveStars != 1 {
		t.Errorf("streak after 11th rating = %d, want 1", ledger.ConsecutiveFiveStars)
	}
}

func TestApplyRatingRejectsOutOfRange(t *testing.T) {
	ledger := Ledger{AverageRating: 4.5, RatedBookings: 2, ConsecutiveFiveStars: 1}

	for _, rating := range []int{0, -1, 6} {
		updated, grant, err := ApplyRating(ledger, rating, testPolicy)
		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Errorf("ApplyRating(%d) error = %v, want ValidationError", rating, err)
		}
		if grant != nil {
			t.Errorf("ApplyRating(%d) returned a grant", rating)
		}
		if updated != ledger {
			t.Errorf("ApplyRating(%d) mutated the ledger: %+v", rating, updated)
		}
	}
}

func TestAvailableBalance(t *testing.T) {
	// 500.00 earned, 120.00 already paid out, 80.00 tied up.
	if got := AvailableBalance(50000, 12000, 8000); got != 30000 {
		t.Errorf("available = %d, want 30000", got)
	}
	if got := AvailableBalance(0, 0, 0); got != 0 {
		t.Errorf("empty ledger available = %d, want 0", got)
	}
}

func TestCreditCompletion(t *testing.T) {
	ledger := Ledger{TotalEarningsCents: 10000, CompletedBookings: 2}
	ledger, err := CreditCompletion(ledger, 8000)
	if err != nil {
		t.Fatalf("CreditCompletion: %v", err)
	}
	if ledger.TotalEarningsCents != 18000 || ledger.CompletedBookings != 3 {
		t.Errorf("ledger = %+v, want earnings=18000 completed=3", ledger)
	}

	if _, err := CreditCompletion(ledger, -1); err == nil {
		t.Error("negative credit accepted")
	}
}

func TestValidateWithdrawal(t *testing.T) {
	payout := PayoutDetails{PixKey: "maria@pix.example", RecipientName: "Maria Souza", RecipientAddress: "Rua das Flores 12, São Paulo"}
	open := time.Date(2025, 3, 10, 23, 15, 0, 0, time.Local)
	closed := time.Date(2025, 3, 10, 14, 0, 0, 0, time.Local)

	if err := ValidateWithdrawal(10000, 25000, open, payout); err != nil {
		t.Errorf("valid withdrawal rejected: %v", err)
	}

	var policyErr *PolicyViolationError
	if err := ValidateWithdrawal(10000, 25000, closed, payout); !errors.As(err, &policyErr) {
		t.Errorf("daytime withdrawal error = %v, want PolicyViolationError", err)
	}

	var balanceErr *InsufficientBalanceError
	if err := ValidateWithdrawal(30000, 25000, open, payout); !errors.As(err, &balanceErr) {
		t.Errorf("over-balance error = %v, want InsufficientBalanceError", err)
	} else if balanceErr.RequestedCents != 30000 || balanceErr.AvailableCents != 25000 {
		t.Errorf("balance error detail = %+v", balanceErr)
	}

	var validationErr *ValidationError
	if err := ValidateWithdrawal(0, 25000, open, payout); !errors.As(err, &validationErr) {
		t.Errorf("zero amount error = %v, want ValidationError", err)
	}
	if err := ValidateWithdrawal(10000, 25000, open, PayoutDetails{RecipientName: "Maria", RecipientAddress: "Rua X"}); !errors.As(err, &validationErr) {
		t.Errorf("missing pix key error = %v, want ValidationError", err)
	}
	if err := ValidateWithdrawal(10000, 25000, open, PayoutDetails{PixKey: "k"}); !errors.As(err, &validationErr) {
		t.Errorf("missing recipient error = %v, want ValidationError", err)
	}
}

// Balance invariant: after any sequence of completion credits, withdrawal
// creations and status transitions, the reconstructed available balance
// matches the incremental bookkeeping.
func TestBalanceInvariantUnderEventSequence(t *testing.T) {
	type withdrawal struct {
		amount int64
		status string
	}

	ledger := Ledger{}
	var withdrawals []withdrawal
	now := time.Date(2025, 3, 10, 23, 30, 0, 0, time.Local)
	payout := PayoutDetails{PixKey: "k", RecipientName: "n", RecipientAddress: "a"}

	available := func() int64 {
		var paid, tiedUp int64
		for _, w := range withdrawals {
			switch w.status {
			case "paid":
				paid += w.amount
			case "pending", "approved":
				tiedUp += w.amount
			}
		}
		return AvailableBalance(ledger.TotalEarningsCents, paid, tiedUp)
	}

	credit := func(amount int64) {
		var err error
		ledger, err = CreditCompletion(ledger, amount)
		if err != nil {
			t.Fatalf("credit: %v", err)
		}
	}
	request := func(amount int64) int {
		if err := ValidateWithdrawal(amount, available(), now, payout); err != nil {
			t.Fatalf("request %d: %v", amount, err)
		}
		withdrawals = append(withdrawals, withdrawal{amount: amount, status: "pending"})
		return len(withdrawals) - 1
	}

	credit(8000)
	credit(8000)
	first := request(10000)
	if got := available(); got != 6000 {
		t.Fatalf("available after pending = %d, want 6000", got)
	}

	// The pending request already reduces the balance for later requests.
	if err := ValidateWithdrawal(7000, available(), now, payout); err == nil {
		t.Fatal("second withdrawal exceeding remaining balance accepted")
	}

	withdrawals[first].status = "approved"
	if got := available(); got != 6000 {
		t.Fatalf("available after approval = %d, want 6000 (approval keeps funds tied up)", got)
	}

	withdrawals[first].status = "paid"
	if got := available(); got != 6000 {
		t.Fatalf("available after payout = %d, want 6000", got)
	}

	second := request(6000)
	if got := available(); got != 0 {
		t.Fatalf("available after second request = %d, want 0", got)
	}

	withdrawals[second].status = "rejected"
	if got := available(); got != 6000 {
		t.Fatalf("available after rejection = %d, want 6000 (funds returned)", got)
	}

	credit(11200)
	if got := available(); got != 17200 {
		t.Fatalf("available after another completion = %d, want 17200", got)
	}
}
