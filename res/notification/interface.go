package notification

import "context"

// NotificationService defines the interface for operational notifications
type NotificationService interface {
	// NotifyNewUserSignup sends a notification when a new user signs up
	NotifyNewUserSignup(ctx context.Context, email, displayName, userID string) error
	// NotifyWithdrawalRequested alerts the operations channel that a cleaner
	// requested a payout and is waiting for review
	NotifyWithdrawalRequested(ctx context.Context, withdrawalID, cleanerName string, amountCents int64) error
	// NotifyRewardEarned announces a cleaner crossing the five-star streak
	NotifyRewardEarned(ctx context.Context, cleanerName string, amountCents int64, streak int) error
}
