package store

import (
	"context"
	"time"

	"limpeja-api/res/pricing"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"   // Initial state, awaiting cleaner confirmation
	BookingStatusConfirmed BookingStatus = "confirmed" // Cleaner confirmed
	BookingStatusCompleted BookingStatus = "completed" // Service performed, earnings credited
	BookingStatusCancelled BookingStatus = "cancelled" // Cancelled by client or cleaner
)

// Booking represents a cleaning service booking. The price breakdown is
// stored at booking time to preserve historical pricing when the settings
// table changes.
type Booking struct {
	ID               string          `gorm:"primaryKey;size:50;unique"`
	Client           *User           `gorm:"foreignKey:ClientID"`
	ClientID         string          `gorm:"size:50;not null;index:idx_booking_client"`
	CleanerProfile   *CleanerProfile `gorm:"foreignKey:CleanerProfileID"`
	CleanerProfileID string          `gorm:"size:50;not null;index:idx_booking_cleaner"`

	// Quote parameters
	Hours           int                 `gorm:"not null;check:hours >= 1 AND hours <= 8"`
	ServiceType     pricing.ServiceType `gorm:"size:30;not null"`
	IncludeProducts bool                `gorm:"not null;default:false"`
	CleanerCount    int                 `gorm:"not null;default:1;check:cleaner_count >= 1 AND cleaner_count <= 5"`

	// Scheduling
	ScheduledDate time.Time `gorm:"not null;index:idx_booking_date"`
	ScheduledTime string    `gorm:"size:10;not null"` // e.g., "14:00"
	Address       string    `gorm:"size:256;not null"`
	ClientNotes   string    `gorm:"type:text"`

	// Price breakdown snapshot (all in centavos)
	BasePriceCents       int64 `gorm:"not null"`
	AgencyFeeCents       int64 `gorm:"not null"`
	ProductsCents        int64 `gorm:"not null;default:0"`
	TotalPriceCents      int64 `gorm:"not null"` // Charged to the client (scaled by cleaner count)
	CleanerEarningsCents int64 `gorm:"not null"` // Per-cleaner payout

	// Status and settlement
	Status      BookingStatus `gorm:"size:20;not null;default:'pending';index:idx_booking_status"`
	ConfirmedAt *time.Time
	CompletedAt *time.Time
	CancelledAt *time.Time

	// Rating (appended once by the client after completion)
	Rating        *int `gorm:"check:rating IS NULL OR (rating >= 1 AND rating <= 5)"`
	RatingComment string `gorm:"type:text"`
	RatedAt       *time.Time

	CreatedAt time.Time `gorm:"autoCreateTime;not null;index:idx_booking_created"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null"`
}

// IsRated reports whether the client already rated this booking.
func (b *Booking) IsRated() bool {
	return b.Rating != nil
}

// BookingStore defines the data access interface for bookings
type BookingStore interface {
	// Create creates a new booking with its price snapshot
	Create(ctx context.Context, booking *Booking) error

	// Get retrieves a booking by ID
	Get(ctx context.Context, id string) (*Booking, error)

	// GetByClient retrieves all bookings for a client
	GetByClient(ctx context.Context, clientID string, filters BookingFilters) ([]*Booking, error)

	// GetByCleanerProfile retrieves all bookings assigned to a cleaner
	GetByCleanerProfile(ctx context.Context, cleanerProfileID string, filters BookingFilters) ([]*Booking, error)

	// Confirm moves a pending booking to confirmed
	Confirm(ctx context.Context, bookingID string) error

	// Cancel cancels a booking that has not been completed
	Cancel(ctx context.Context, bookingID string) error

	// ListAll retrieves all bookings with filters (for admin)
	ListAll(ctx context.Context, filters BookingFilters) ([]*Booking, error)
}

// BookingFilters contains filter options for listing bookings
type BookingFilters struct {
	Status      *BookingStatus
	ServiceType *pricing.ServiceType
	StartDate   *time.Time
	EndDate     *time.Time
	Rated       *bool
	Limit       int
	Offset      int
	OrderBy     string // e.g., "scheduled_date DESC"
}
