package store

import (
	"context"
	"time"

	"limpeja-api/res/pricing"
	"limpeja-api/res/settlement"
)

// PriceSettings is the platform-wide price table and reward policy. A single
// row, mutated only by administrators; every computation reads a snapshot of
// it so in-flight quotes are unaffected by concurrent edits.
type PriceSettings struct {
	ID string `gorm:"primaryKey;size:50;unique"`

	// Price table (all in centavos)
	FirstHourPriceCents      int64   `gorm:"not null;default:4000"`
	AdditionalHourPriceCents int64   `gorm:"not null;default:2000"`
	ProductsPriceCents       int64   `gorm:"not null;default:3000"`
	AgencyFeePercentage      float64 `gorm:"type:decimal(5,4);not null;default:0.40"`

	// Reward policy
	RewardBonusCents int64 `gorm:"not null;default:5000"`
	RewardThreshold  int   `gorm:"not null;default:10"`

	UpdatedBy   *User   `gorm:"foreignKey:UpdatedByID"`
	UpdatedByID *string `gorm:"size:50"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null"`
}

// Pricing returns the snapshot consumed by the price calculator.
func (s *PriceSettings) Pricing() pricing.Settings {
	return pricing.Settings{
		FirstHourPriceCents:      s.FirstHourPriceCents,
		AdditionalHourPriceCents: s.AdditionalHourPriceCents,
		ProductsPriceCents:       s.ProductsPriceCents,
		AgencyFeePercentage:      s.AgencyFeePercentage,
	}
}

// RewardPolicy returns the snapshot consumed by rating accrual.
func (s *PriceSettings) RewardPolicy() settlement.RewardPolicy {
	return settlement.RewardPolicy{
		BonusCents: s.RewardBonusCents,
		Threshold:  s.RewardThreshold,
	}
}

// PriceSettingsUpdate carries admin edits to the settings row. Nil fields are
// left untouched.
type PriceSettingsUpdate struct {
	FirstHourPriceCents      *int64
	AdditionalHourPriceCents *int64
	ProductsPriceCents       *int64
	AgencyFeePercentage      *float64
	RewardBonusCents         *int64
	RewardThreshold          *int
}

// SettingsStore defines the data access interface for the settings singleton
type SettingsStore interface {
	// Get retrieves the settings row, creating it with defaults on first use
	Get(ctx context.Context) (*PriceSettings, error)

	// Update applies an admin edit and returns the updated row
	Update(ctx context.Context, update PriceSettingsUpdate, updatedByID string) (*PriceSettings, error)
}
