package store

import (
	"context"
	"time"
)

// WithdrawalStatus represents the processing state of a withdrawal request
type WithdrawalStatus string

const (
	WithdrawalStatusPending  WithdrawalStatus = "pending"  // Requested by the cleaner, funds tied up
	WithdrawalStatusApproved WithdrawalStatus = "approved" // Approved by an admin, funds still tied up
	WithdrawalStatusPaid     WithdrawalStatus = "paid"     // Paid out, terminal
	WithdrawalStatusRejected WithdrawalStatus = "rejected" // Rejected, terminal, funds return to balance
)

// CanTransitionTo reports whether the admin-driven state machine allows
// moving from s to next: pending -> approved -> paid, or pending -> rejected.
func (s WithdrawalStatus) CanTransitionTo(next WithdrawalStatus) bool {
	switch s {
	case WithdrawalStatusPending:
		return next == WithdrawalStatusApproved || next == WithdrawalStatusRejected
	case WithdrawalStatusApproved:
		return next == WithdrawalStatusPaid
	default:
		return false
	}
}

// WithdrawalRequest is a cleaner's request to pay out part of their balance.
// The payout details are snapshotted at request time so later profile edits
// do not change where an in-flight withdrawal is sent.
type WithdrawalRequest struct {
	ID               string          `gorm:"primaryKey;size:50;unique"`
	CleanerProfile   *CleanerProfile `gorm:"foreignKey:CleanerProfileID"`
	CleanerProfileID string          `gorm:"size:50;not null;index:idx_withdrawal_cleaner"`

	AmountCents int64            `gorm:"not null"`
	Status      WithdrawalStatus `gorm:"size:20;not null;default:'pending';index:idx_withdrawal_status"`

	// Payout snapshot
	PixKey           string `gorm:"size:140;not null"`
	RecipientName    string `gorm:"size:120;not null"`
	RecipientAddress string `gorm:"size:256;not null"`

	// Processing
	ProcessedBy   *User   `gorm:"foreignKey:ProcessedByID"`
	ProcessedByID *string `gorm:"size:50"`
	ProcessedAt   *time.Time
	ReceiptURL    *string `gorm:"size:512"` // Payout proof uploaded when marked paid
	RejectionNote string  `gorm:"type:text"`

	RequestedAt time.Time `gorm:"autoCreateTime;not null;index:idx_withdrawal_requested"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime;not null"`
}

// WithdrawalStore defines the read interface for withdrawal requests.
// Creation and status transitions go through the settlement store, which
// enforces the balance invariant transactionally.
type WithdrawalStore interface {
	// Get retrieves a withdrawal request by ID
	Get(ctx context.Context, id string) (*WithdrawalRequest, error)

	// GetByCleanerProfile retrieves all withdrawal requests for a cleaner
	GetByCleanerProfile(ctx context.Context, cleanerProfileID string, filters WithdrawalFilters) ([]*WithdrawalRequest, error)

	// ListAll retrieves all withdrawal requests with filters (for admin)
	ListAll(ctx context.Context, filters WithdrawalFilters) ([]*WithdrawalRequest, error)
}

// WithdrawalFilters contains filter options for listing withdrawal requests
type WithdrawalFilters struct {
	Status  *WithdrawalStatus
	Limit   int
	Offset  int
	OrderBy string // e.g., "requested_at DESC"
}
