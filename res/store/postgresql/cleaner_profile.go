package postgresql

import (
	"context"
	"errors"
	"fmt"

	"limpeja-api/res/store"

	"gorm.io/gorm"
)

type cleanerProfileStore struct {
	*storeImpl
}

func NewCleanerProfileStore(rootStore *storeImpl) *cleanerProfileStore {
	return &cleanerProfileStore{storeImpl: rootStore}
}

func (cpStore *cleanerProfileStore) Create(ctx context.Context, profile *store.CleanerProfile) error {
	result := cpStore.db.WithContext(ctx).Create(profile)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return store.ErrUniqueViolation
		}
		return result.Error
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("failed to create cleaner profile")
	}
	return nil
}

func (cpStore *cleanerProfileStore) Get(ctx context.Context, id string) (*store.CleanerProfile, error) {
	var profile store.CleanerProfile
	result := cpStore.db.WithContext(ctx).Where("id = ?", id).First(&profile)
	if result.Error != nil {
		return nil, result.Error
	}
	return &profile, nil
}

func (cpStore *cleanerProfileStore) GetByUserID(ctx context.Context, userID string) (*store.CleanerProfile, error) {
	var profile store.CleanerProfile
	result := cpStore.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile)
	if result.Error != nil {
		return nil, result.Error
	}
	return &profile, nil
}

func (cpStore *cleanerProfileStore) UpdateDetails(ctx context.Context, profileID string, update store.CleanerProfileUpdate) (*store.CleanerProfile, error) {
	updates := make(map[string]interface{})
	if update.Bio != nil {
		updates["bio"] = *update.Bio
	}
	if update.Phone != nil {
		updates["phone"] = *update.Phone
	}
	if update.PixKey != nil {
		updates["pix_key"] = *update.PixKey
	}
	if update.RecipientName != nil {
		updates["recipient_name"] = *update.RecipientName
	}
	if update.RecipientAddress != nil {
		updates["recipient_address"] = *update.RecipientAddress
	}

	if len(updates) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	result := cpStore.db.WithContext(ctx).Model(&store.CleanerProfile{}).
		Where("id = ?", profileID).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected != 1 {
		return nil, fmt.Errorf("cleaner profile not found (id: %s)", profileID)
	}

	var profile store.CleanerProfile
	if err := cpStore.db.WithContext(ctx).Where("id = ?", profileID).First(&profile).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch updated cleaner profile: %w", err)
	}
	return &profile, nil
}

func (cpStore *cleanerProfileStore) SetActive(ctx context.Context, profileID string, active bool) error {
	result := cpStore.db.WithContext(ctx).Model(&store.CleanerProfile{}).
		Where("id = ?", profileID).
		Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("cleaner profile not found (id: %s)", profileID)
	}
	return nil
}

func (cpStore *cleanerProfileStore) List(ctx context.Context, filters store.CleanerProfileFilters) ([]*store.CleanerProfile, error) {
	query := cpStore.db.WithContext(ctx)

	if filters.MinRating != nil {
		query = query.Where("average_rating >= ?", *filters.MinRating)
	}
	if filters.IsActive != nil {
		query = query.Where("is_active = ?", *filters.IsActive)
	}

	if filters.OrderBy != "" {
		query = query.Order(filters.OrderBy)
	} else {
		query = query.Order("average_rating DESC, created_at ASC")
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var profiles []*store.CleanerProfile
	if err := query.Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}
