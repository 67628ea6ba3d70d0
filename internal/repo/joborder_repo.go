// Package repo – job order store repository.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/ileco-one/triage-backend/internal/domain"
)

// CreateJobOrder inserts a denormalized job order into the job order
// store. The handle passed here must be the job order store's, not the
// complaint store's.
func CreateJobOrder(ctx context.Context, db *gorm.DB, jo *domain.JobOrder) error {
	return db.WithContext(ctx).Create(jo).Error
}

// GetJobOrder fetches a job order by its unique ID, or ErrNotFound.
func GetJobOrder(ctx context.Context, db *gorm.DB, uniqueID string) (*domain.JobOrder, error) {
	var jo domain.JobOrder
	if err := db.WithContext(ctx).First(&jo, "unique_id = ?", uniqueID).Error; err != nil {
		return nil, err
	}
	return &jo, nil
}

// CountJobOrders returns the number of job orders in the store.
func CountJobOrders(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.JobOrder{}).Count(&n).Error
	return n, err
}
