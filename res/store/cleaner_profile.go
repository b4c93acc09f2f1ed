package store

import (
	"context"
	"time"

	"limpeja-api/res/settlement"
)

// CleanerProfile is the extended profile and earnings ledger for users with
// the cleaner role. The ledger counters are only ever mutated through the
// settlement store, which locks the row for the read-modify-write.
type CleanerProfile struct {
	ID     string `gorm:"primaryKey;size:50;unique"`
	User   *User  `gorm:"foreignKey:UserID"`
	UserID string `gorm:"size:50;not null;unique;index:idx_cleaner_profile_user"`

	// Profile Information
	Bio   string  `gorm:"type:text"`
	Phone *string `gorm:"size:30"`

	// Payout details (required before withdrawals are accepted)
	PixKey           *string `gorm:"size:140"`
	RecipientName    string  `gorm:"size:120"`
	RecipientAddress string  `gorm:"size:256"`

	// Earnings ledger
	TotalEarningsCents   int64   `gorm:"not null;default:0"`
	ConsecutiveFiveStars int     `gorm:"not null;default:0"`
	RewardsEarned        int     `gorm:"not null;default:0"`
	AverageRating        float64 `gorm:"type:decimal(3,2);not null;default:0.00"` // 0.00 to 5.00
	RatedBookings        int     `gorm:"not null;default:0"`
	CompletedBookings    int     `gorm:"not null;default:0"`

	// Availability
	IsActive bool `gorm:"not null;default:true;index:idx_cleaner_active"` // Can receive new bookings

	CreatedAt time.Time `gorm:"autoCreateTime;not null;index:idx_cleaner_created"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null"`
}

// Ledger returns the profile's counters as a settlement snapshot.
func (p *CleanerProfile) Ledger() settlement.Ledger {
	return settlement.Ledger{
		TotalEarningsCents:   p.TotalEarningsCents,
		ConsecutiveFiveStars: p.ConsecutiveFiveStars,
		RewardsEarned:        p.RewardsEarned,
		AverageRating:        p.AverageRating,
		RatedBookings:        p.RatedBookings,
		CompletedBookings:    p.CompletedBookings,
	}
}

// SetLedger writes a settlement snapshot back onto the profile fields.
func (p *CleanerProfile) SetLedger(ledger settlement.Ledger) {
	p.TotalEarningsCents = ledger.TotalEarningsCents
	p.ConsecutiveFiveStars = ledger.ConsecutiveFiveStars
	p.RewardsEarned = ledger.RewardsEarned
	p.AverageRating = ledger.AverageRating
	p.RatedBookings = ledger.RatedBookings
	p.CompletedBookings = ledger.CompletedBookings
}

// PayoutDetails returns the payout identity used by withdrawal validation.
func (p *CleanerProfile) PayoutDetails() settlement.PayoutDetails {
	details := settlement.PayoutDetails{
		RecipientName:    p.RecipientName,
		RecipientAddress: p.RecipientAddress,
	}
	if p.PixKey != nil {
		details.PixKey = *p.PixKey
	}
	return details
}

// CleanerProfileStore defines the data access interface for cleaner profiles
type CleanerProfileStore interface {
	// Create creates a new cleaner profile
	Create(ctx context.Context, profile *CleanerProfile) error

	// Get retrieves a cleaner profile by ID
	Get(ctx context.Context, id string) (*CleanerProfile, error)

	// GetByUserID retrieves a cleaner profile by user ID
	GetByUserID(ctx context.Context, userID string) (*CleanerProfile, error)

	// UpdateDetails updates bio, phone and payout details
	UpdateDetails(ctx context.Context, profileID string, update CleanerProfileUpdate) (*CleanerProfile, error)

	// SetActive toggles whether the cleaner receives new bookings
	SetActive(ctx context.Context, profileID string, active bool) error

	// List retrieves cleaner profiles with filters
	List(ctx context.Context, filters CleanerProfileFilters) ([]*CleanerProfile, error)
}

// CleanerProfileUpdate carries profile edits. Nil fields are left untouched.
type CleanerProfileUpdate struct {
	Bio              *string
	Phone            *string
	PixKey           *string
	RecipientName    *string
	RecipientAddress *string
}

// CleanerProfileFilters contains filter options for listing cleaner profiles
type CleanerProfileFilters struct {
	MinRating *float64
	IsActive  *bool
	Limit     int
	Offset    int
	OrderBy   string // e.g., "average_rating DESC"
}
