package postgresql

import (
	"context"
	"fmt"
	"time"

	"limpeja-api/res/settlement"
	"limpeja-api/res/store"

	"github.com/rs/xid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// settlementStore runs every ledger read-modify-write inside a transaction
// holding a FOR UPDATE lock on the cleaner profile row. The row lock is the
// per-cleaner serialization point: two concurrent ratings, withdrawal
// requests or completion credits for the same cleaner queue up behind each
// other instead of interleaving. Lock order is always booking first, then
// profile, so the operations cannot deadlock each other.
type settlementStore struct {
	*storeImpl
}

func NewSettlementStore(rootStore *storeImpl) *settlementStore {
	return &settlementStore{storeImpl: rootStore}
}

func (ss *settlementStore) CompleteBooking(ctx context.Context, bookingID string) (*store.Booking, error) {
	var completed *store.Booking

	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking store.Booking
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", bookingID).First(&booking).Error; err != nil {
			return err
		}

		switch booking.Status {
		case store.BookingStatusCompleted:
			return &settlement.ConflictError{Reason: fmt.Sprintf("booking %s is already completed", bookingID)}
		case store.BookingStatusCancelled:
			return &settlement.ConflictError{Reason: fmt.Sprintf("booking %s is cancelled", bookingID)}
		}

		var profile store.CleanerProfile
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", booking.CleanerProfileID).First(&profile).Error; err != nil {
			return err
		}

		ledger, err := settlement.CreditCompletion(profile.Ledger(), booking.CleanerEarningsCents)
		if err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(&store.Booking{}).Where("id = ?", booking.ID).
			Updates(map[string]interface{}{
				"status":       store.BookingStatusCompleted,
				"completed_at": now,
			}).Error; err != nil {
			return err
		}
		if err := tx.Model(&store.CleanerProfile{}).Where("id = ?", profile.ID).
			Updates(map[string]interface{}{
				"total_earnings_cents": ledger.TotalEarningsCents,
				"completed_bookings":   ledger.CompletedBookings,
			}).Error; err != nil {
			return err
		}

		booking.Status = store.BookingStatusCompleted
		booking.CompletedAt = &now
		completed = &booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	return completed, nil
}

func (ss *settlementStore) RateBooking(ctx context.Context, bookingID string, rating int, comment string) (*store.RatingOutcome, error) {
	var outcome *store.RatingOutcome

	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking store.Booking
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", bookingID).First(&booking).Error; err != nil {
			return err
		}

		if booking.IsRated() {
			return &settlement.ConflictError{Reason: fmt.Sprintf("booking %s already has a rating", bookingID)}
		}
		if booking.Status != store.BookingStatusCompleted {
			return &settlement.ConflictError{Reason: fmt.Sprintf("booking %s is not completed", bookingID)}
		}

		settings, err := ss.settingsStore.Get(ctx)
		if err != nil {
			return err
		}

		var profile store.CleanerProfile
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", booking.CleanerProfileID).First(&profile).Error; err != nil {
			return err
		}

		ledger, grant, err := settlement.ApplyRating(profile.Ledger(), rating, settings.RewardPolicy())
		if err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(&store.Booking{}).Where("id = ?", booking.ID).
			Updates(map[string]interface{}{
				"rating":         rating,
				"rating_comment": comment,
				"rated_at":       now,
			}).Error; err != nil {
			return err
		}
		if err := tx.Model(&store.CleanerProfile{}).Where("id = ?", profile.ID).
			Updates(map[string]interface{}{
				"average_rating":         ledger.AverageRating,
				"rated_bookings":         ledger.RatedBookings,
				"consecutive_five_stars": ledger.ConsecutiveFiveStars,
				"rewards_earned":         ledger.RewardsEarned,
			}).Error; err != nil {
			return err
		}

		var reward *store.Reward
		if grant != nil {
			reward = &store.Reward{
				ID:               xid.New().String(),
				CleanerProfileID: profile.ID,
				AmountCents:      grant.AmountCents,
				Reason:           grant.Reason,
				Status:           store.RewardStatusPending,
				BookingID:        &booking.ID,
			}
			if err := tx.Create(reward).Error; err != nil {
				return err
			}
		}

		booking.Rating = &rating
		booking.RatingComment = comment
		booking.RatedAt = &now
		profile.SetLedger(ledger)
		outcome = &store.RatingOutcome{Booking: &booking, Profile: &profile, Reward: reward}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

func (ss *settlementStore) AvailableBalance(ctx context.Context, cleanerProfileID string) (*store.BalanceSnapshot, error) {
	var profile store.CleanerProfile
	if err := ss.db.WithContext(ctx).Where("id = ?", cleanerProfileID).First(&profile).Error; err != nil {
		return nil, err
	}
	return balanceSnapshot(ss.db.WithContext(ctx), &profile)
}

// balanceSnapshot sums the cleaner's withdrawal amounts by status bucket and
// applies the reconciliation formula. Callers holding the profile row lock
// pass their transaction handle so the sums are read under the same lock.
func balanceSnapshot(tx *gorm.DB, profile *store.CleanerProfile) (*store.BalanceSnapshot, error) {
	var sums struct {
		PaidCents            int64
		PendingApprovedCents int64
	}
	err := tx.Model(&store.WithdrawalRequest{}).
		Select(
			"COALESCE(SUM(CASE WHEN status = ? THEN amount_cents ELSE 0 END), 0) AS paid_cents, "+
				"COALESCE(SUM(CASE WHEN status IN ? THEN amount_cents ELSE 0 END), 0) AS pending_approved_cents",
			store.WithdrawalStatusPaid,
			[]store.WithdrawalStatus{store.WithdrawalStatusPending, store.WithdrawalStatusApproved},
		).
		Where("cleaner_profile_id = ?", profile.ID).
		Scan(&sums).Error
	if err != nil {
		return nil, err
	}

	return &store.BalanceSnapshot{
		TotalEarningsCents:   profile.TotalEarningsCents,
		PaidCents:            sums.PaidCents,
		PendingApprovedCents: sums.PendingApprovedCents,
		AvailableCents:       settlement.AvailableBalance(profile.TotalEarningsCents, sums.PaidCents, sums.PendingApprovedCents),
	}, nil
}

func (ss *settlementStore) CreateWithdrawal(ctx context.Context, cleanerProfileID string, amountCents int64, now time.Time) (*store.WithdrawalRequest, error) {
	var created *store.WithdrawalRequest

	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var profile store.CleanerProfile
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", cleanerProfileID).First(&profile).Error; err != nil {
			return err
		}

		balance, err := balanceSnapshot(tx, &profile)
		if err != nil {
			return err
		}

		payout := profile.PayoutDetails()
		if err := settlement.ValidateWithdrawal(amountCents, balance.AvailableCents, now, payout); err != nil {
			return err
		}

		withdrawal := &store.WithdrawalRequest{
			ID:               xid.New().String(),
			CleanerProfileID: profile.ID,
			AmountCents:      amountCents,
			Status:           store.WithdrawalStatusPending,
			PixKey:           payout.PixKey,
			RecipientName:    payout.RecipientName,
			RecipientAddress: payout.RecipientAddress,
		}
		if err := tx.Create(withdrawal).Error; err != nil {
			return err
		}

		created = withdrawal
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (ss *settlementStore) TransitionWithdrawal(ctx context.Context, withdrawalID string, next store.WithdrawalStatus, processedByID string, receiptURL *string, note string) (*store.WithdrawalRequest, error) {
	var updated *store.WithdrawalRequest

	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var withdrawal store.WithdrawalRequest
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", withdrawalID).First(&withdrawal).Error; err != nil {
			return err
		}

		if !withdrawal.Status.CanTransitionTo(next) {
			return &settlement.ConflictError{Reason: fmt.Sprintf("withdrawal %s cannot move from %s to %s", withdrawalID, withdrawal.Status, next)}
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":          next,
			"processed_by_id": processedByID,
			"processed_at":    now,
		}
		if next == store.WithdrawalStatusPaid && receiptURL != nil {
			updates["receipt_url"] = *receiptURL
		}
		if next == store.WithdrawalStatusRejected {
			updates["rejection_note"] = note
		}
		if err := tx.Model(&store.WithdrawalRequest{}).Where("id = ?", withdrawal.ID).Updates(updates).Error; err != nil {
			return err
		}

		withdrawal.Status = next
		withdrawal.ProcessedByID = &processedByID
		withdrawal.ProcessedAt = &now
		if next == store.WithdrawalStatusPaid {
			withdrawal.ReceiptURL = receiptURL
		}
		if next == store.WithdrawalStatusRejected {
			withdrawal.RejectionNote = note
		}
		updated = &withdrawal
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
