package postgresql

import (
	"gorm.io/gorm"

	"context"

	"limpeja-api/res/store"
)

type withdrawalStore struct {
	*storeImpl
}

func NewWithdrawalStore(rootStore *storeImpl) *withdrawalStore {
	return &withdrawalStore{storeImpl: rootStore}
}

func (ws *withdrawalStore) Get(ctx context.Context, id string) (*store.WithdrawalRequest, error) {
	var withdrawal store.WithdrawalRequest
	result := ws.db.WithContext(ctx).Where("id = ?", id).First(&withdrawal)
	if result.Error != nil {
		return nil, result.Error
	}
	return &withdrawal, nil
}

func (ws *withdrawalStore) GetByCleanerProfile(ctx context.Context, cleanerProfileID string, filters store.WithdrawalFilters) ([]*store.WithdrawalRequest, error) {
	query := ws.db.WithContext(ctx).Where("cleaner_profile_id = ?", cleanerProfileID)
	query = ws.applyFilters(query, filters)

	var withdrawals []*store.WithdrawalRequest
	if err := query.Find(&withdrawals).Error; err != nil {
		return nil, err
	}
	return withdrawals, nil
}

func (ws *withdrawalStore) ListAll(ctx context.Context, filters store.WithdrawalFilters) ([]*store.WithdrawalRequest, error) {
	query := ws.db.WithContext(ctx)
	query = ws.applyFilters(query, filters)

	var withdrawals []*store.WithdrawalRequest
	if err := query.Find(&withdrawals).Error; err != nil {
		return nil, err
	}
	return withdrawals, nil
}

// Helper method to apply filters
func (ws *withdrawalStore) applyFilters(query *gorm.DB, filters store.WithdrawalFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	if filters.OrderBy != "" {
		query = query.Order(filters.OrderBy)
	} else {
		query = query.Order("requested_at DESC")
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	return query
}
