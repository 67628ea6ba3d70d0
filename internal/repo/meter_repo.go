// Package repo – meter concern repository.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ileco-one/triage-backend/internal/domain"
)

// CreateMeterConcern inserts a new meter concern row.
func CreateMeterConcern(ctx context.Context, db *gorm.DB, m *domain.MeterConcern) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(m).Error
}

// GetMeterConcern fetches one concern by ID, or ErrNotFound.
func GetMeterConcern(ctx context.Context, db *gorm.DB, id uint) (*domain.MeterConcern, error) {
	var m domain.MeterConcern
	if err := db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMeterConcerns returns concerns matching the filter spec, newest
// first. Search covers account number, name, and concern text.
func ListMeterConcerns(ctx context.Context, db *gorm.DB, f ComplaintFilters) ([]domain.MeterConcern, error) {
	var out []domain.MeterConcern
	q := f.apply(
		db.WithContext(ctx).Model(&domain.MeterConcern{}),
		domain.PriorityMedium,
		[]string{"account_no", "name", "concern"},
	)
	err := q.Order("created_at DESC").Find(&out).Error
	return out, err
}
