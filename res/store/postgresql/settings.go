package postgresql

import (
	"context"
	"errors"
	"fmt"

	"limpeja-api/res/store"

	"github.com/rs/xid"
	"gorm.io/gorm"
)

type settingsStore struct {
	*storeImpl
}

func NewSettingsStore(rootStore *storeImpl) *settingsStore {
	return &settingsStore{storeImpl: rootStore}
}

// Get returns the settings singleton, seeding it with the default price
// table on first access.
func (sStore *settingsStore) Get(ctx context.Context) (*store.PriceSettings, error) {
	var settings store.PriceSettings
	result := sStore.db.WithContext(ctx).Order("created_at ASC").First(&settings)
	if result.Error == nil {
		return &settings, nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	seeded := &store.PriceSettings{
		ID:                       xid.New().String(),
		FirstHourPriceCents:      4000,
		AdditionalHourPriceCents: 2000,
		ProductsPriceCents:       3000,
		AgencyFeePercentage:      0.40,
		RewardBonusCents:         5000,
		RewardThreshold:          10,
	}
	if err := sStore.db.WithContext(ctx).Create(seeded).Error; err != nil {
		// Lost a seeding race with another request; re-read.
		var raced store.PriceSettings
		if readErr := sStore.db.WithContext(ctx).Order("created_at ASC").First(&raced).Error; readErr == nil {
			return &raced, nil
		}
		return nil, err
	}
	return seeded, nil
}

func (sStore *settingsStore) Update(ctx context.Context, update store.PriceSettingsUpdate, updatedByID string) (*store.PriceSettings, error) {
	settings, err := sStore.Get(ctx)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if update.FirstHourPriceCents != nil {
		if *update.FirstHourPriceCents <= 0 {
			return nil, fmt.Errorf("first hour price must be positive: %w", store.ErrInvalidInput)
		}
		updates["first_hour_price_cents"] = *update.FirstHourPriceCents
	}
	if update.AdditionalHourPriceCents != nil {
		if *update.AdditionalHourPriceCents <= 0 {
			return nil, fmt.Errorf("additional hour price must be positive: %w", store.ErrInvalidInput)
		}
		updates["additional_hour_price_cents"] = *update.AdditionalHourPriceCents
	}
	if update.ProductsPriceCents != nil {
		if *update.ProductsPriceCents < 0 {
			return nil, fmt.Errorf("products price must not be negative: %w", store.ErrInvalidInput)
		}
		updates["products_price_cents"] = *update.ProductsPriceCents
	}
	if update.AgencyFeePercentage != nil {
		if *update.AgencyFeePercentage < 0 || *update.AgencyFeePercentage > 1 {
			return nil, fmt.Errorf("agency fee percentage must be within [0,1]: %w", store.ErrInvalidInput)
		}
		updates["agency_fee_percentage"] = *update.AgencyFeePercentage
	}
	if update.RewardBonusCents != nil {
		if *update.RewardBonusCents < 0 {
			return nil, fmt.Errorf("reward bonus must not be negative: %w", store.ErrInvalidInput)
		}
		updates["reward_bonus_cents"] = *update.RewardBonusCents
	}
	if update.RewardThreshold != nil {
		if *update.RewardThreshold < 1 {
			return nil, fmt.Errorf("reward threshold must be at least 1: %w", store.ErrInvalidInput)
		}
		updates["reward_threshold"] = *update.RewardThreshold
	}

	if len(updates) == 0 {
		return nil, fmt.Errorf("no fields to update: %w", store.ErrInvalidInput)
	}
	updates["updated_by_id"] = updatedByID

	result := sStore.db.WithContext(ctx).Model(&store.PriceSettings{}).
		Where("id = ?", settings.ID).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected != 1 {
		return nil, fmt.Errorf("settings not found (id: %s)", settings.ID)
	}

	var updated store.PriceSettings
	if err := sStore.db.WithContext(ctx).Where("id = ?", settings.ID).First(&updated).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch updated settings: %w", err)
	}
	return &updated, nil
}
