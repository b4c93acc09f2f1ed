package store

import (
	"context"
	"time"
)

// RewardStatus represents the payout status of a reward bonus
type RewardStatus string

const (
	RewardStatusPending RewardStatus = "pending" // Earned, awaiting payout
	RewardStatusPaid    RewardStatus = "paid"    // Paid out by an administrator
)

// Reward is a bonus earned by a cleaner for a consecutive five-star streak.
// Created exactly once per threshold crossing by the settlement store;
// immutable afterwards except for the status transition.
type Reward struct {
	ID               string          `gorm:"primaryKey;size:50;unique"`
	CleanerProfile   *CleanerProfile `gorm:"foreignKey:CleanerProfileID"`
	CleanerProfileID string          `gorm:"size:50;not null;index:idx_reward_cleaner"`

	AmountCents int64        `gorm:"not null"`
	Reason      string       `gorm:"size:256;not null"`
	Status      RewardStatus `gorm:"size:20;not null;default:'pending';index:idx_reward_status"`

	// Booking whose rating crossed the threshold
	BookingID *string `gorm:"size:50"`

	PaidAt *time.Time

	CreatedAt time.Time `gorm:"autoCreateTime;not null;index:idx_reward_created"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null"`
}

// RewardStore defines the data access interface for rewards
type RewardStore interface {
	// Get retrieves a reward by ID
	Get(ctx context.Context, id string) (*Reward, error)

	// GetByCleanerProfile retrieves all rewards for a cleaner
	GetByCleanerProfile(ctx context.Context, cleanerProfileID string, filters RewardFilters) ([]*Reward, error)

	// MarkPaid transitions a pending reward to paid
	MarkPaid(ctx context.Context, rewardID string) error

	// ListAll retrieves all rewards with filters (for admin)
	ListAll(ctx context.Context, filters RewardFilters) ([]*Reward, error)
}

// RewardFilters contains filter options for listing rewards
type RewardFilters struct {
	Status  *RewardStatus
	Limit   int
	Offset  int
	OrderBy string // e.g., "created_at DESC"
}
