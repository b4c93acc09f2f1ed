package postgresql

import (
	"gorm.io/gorm"

	"context"
	"fmt"
	"time"

	"limpeja-api/res/store"
)

type rewardStore struct {
	*storeImpl
}

func NewRewardStore(rootStore *storeImpl) *rewardStore {
	return &rewardStore{storeImpl: rootStore}
}

func (rs *rewardStore) Get(ctx context.Context, id string) (*store.Reward, error) {
	var reward store.Reward
	result := rs.db.WithContext(ctx).Where("id = ?", id).First(&reward)
	if result.Error != nil {
		return nil, result.Error
	}
	return &reward, nil
}

func (rs *rewardStore) GetByCleanerProfile(ctx context.Context, cleanerProfileID string, filters store.RewardFilters) ([]*store.Reward, error) {
	query := rs.db.WithContext(ctx).Where("cleaner_profile_id = ?", cleanerProfileID)
	query = rs.applyFilters(query, filters)

	var rewards []*store.Reward
	if err := query.Find(&rewards).Error; err != nil {
		return nil, err
	}
	return rewards, nil
}

func (rs *rewardStore) MarkPaid(ctx context.Context, rewardID string) error {
	now := time.Now()
	result := rs.db.WithContext(ctx).Model(&store.Reward{}).
		Where("id = ? AND status = ?", rewardID, store.RewardStatusPending).
		Updates(map[string]interface{}{
			"status":  store.RewardStatusPaid,
			"paid_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("reward not pending (id: %s)", rewardID)
	}
	return nil
}

func (rs *rewardStore) ListAll(ctx context.Context, filters store.RewardFilters) ([]*store.Reward, error) {
	query := rs.db.WithContext(ctx)
	query = rs.applyFilters(query, filters)

	var rewards []*store.Reward
	if err := query.Find(&rewards).Error; err != nil {
		return nil, err
	}
	return rewards, nil
}

// Helper method to apply filters
func (rs *rewardStore) applyFilters(query *gorm.DB, filters store.RewardFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	if filters.OrderBy != "" {
		query = query.Order(filters.OrderBy)
	} else {
		query = query.Order("created_at DESC")
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	return query
}
