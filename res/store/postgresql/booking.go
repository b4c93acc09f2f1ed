package postgresql

import (
	"gorm.io/gorm"

	"context"
	"fmt"
	"time"

	"limpeja-api/res/store"
)

type bookingStore struct {
	*storeImpl
}

func NewBookingStore(rootStore *storeImpl) *bookingStore {
	return &bookingStore{storeImpl: rootStore}
}

func (bs *bookingStore) Create(ctx context.Context, booking *store.Booking) error {
	result := bs.db.WithContext(ctx).Create(booking)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("failed to create booking")
	}
	return nil
}

func (bs *bookingStore) Get(ctx context.Context, id string) (*store.Booking, error) {
	var booking store.Booking
	result := bs.db.WithContext(ctx).Where("id = ?", id).First(&booking)
	if result.Error != nil {
		return nil, result.Error
	}
	return &booking, nil
}

func (bs *bookingStore) GetByClient(ctx context.Context, clientID string, filters store.BookingFilters) ([]*store.Booking, error) {
	query := bs.db.WithContext(ctx).Where("client_id = ?", clientID)
	query = bs.applyFilters(query, filters)

	var bookings []*store.Booking
	if err := query.Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (bs *bookingStore) GetByCleanerProfile(ctx context.Context, cleanerProfileID string, filters store.BookingFilters) ([]*store.Booking, error) {
	query := bs.db.WithContext(ctx).Where("cleaner_profile_id = ?", cleanerProfileID)
	query = bs.applyFilters(query, filters)

	var bookings []*store.Booking
	if err := query.Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (bs *bookingStore) Confirm(ctx context.Context, bookingID string) error {
	now := time.Now()
	result := bs.db.WithContext(ctx).Model(&store.Booking{}).
		Where("id = ? AND status = ?", bookingID, store.BookingStatusPending).
		Updates(map[string]interface{}{
			"status":       store.BookingStatusConfirmed,
			"confirmed_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("booking not pending (id: %s)", bookingID)
	}
	return nil
}

func (bs *bookingStore) Cancel(ctx context.Context, bookingID string) error {
	now := time.Now()
	result := bs.db.WithContext(ctx).Model(&store.Booking{}).
		Where("id = ? AND status IN ?", bookingID, []store.BookingStatus{
			store.BookingStatusPending,
			store.BookingStatusConfirmed,
		}).
		Updates(map[string]interface{}{
			"status":       store.BookingStatusCancelled,
			"cancelled_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("booking not cancellable (id: %s)", bookingID)
	}
	return nil
}

func (bs *bookingStore) ListAll(ctx context.Context, filters store.BookingFilters) ([]*store.Booking, error) {
	query := bs.db.WithContext(ctx)
	query = bs.applyFilters(query, filters)

	var bookings []*store.Booking
	if err := query.Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// Helper method to apply filters
func (bs *bookingStore) applyFilters(query *gorm.DB, filters store.BookingFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.ServiceType != nil {
		query = query.Where("service_type = ?", *filters.ServiceType)
	}
	if filters.StartDate != nil {
		query = query.Where("scheduled_date >= ?", *filters.StartDate)
	}
	if filters.EndDate != nil {
		query = query.Where("scheduled_date <= ?", *filters.EndDate)
	}
	if filters.Rated != nil {
		if *filters.Rated {
			query = query.Where("rating IS NOT NULL")
		} else {
			query = query.Where("rating IS NULL")
		}
	}

	if filters.OrderBy != "" {
		query = query.Order(filters.OrderBy)
	} else {
		query = query.Order("scheduled_date DESC, created_at DESC")
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	return query
}
