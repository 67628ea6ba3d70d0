// Package repo – outage report repository.
//
// Thin CRUD and query composition over the outage_reports table. Error
// semantics follow the package convention: ErrNotFound for missing rows,
// raw gorm errors otherwise.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ileco-one/triage-backend/internal/domain"
)

// CreateOutageReport inserts a new outage report. CreatedAt is set to UTC
// when the caller left it zero.
func CreateOutageReport(ctx context.Context, db *gorm.DB, r *domain.OutageReport) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(r).Error
}

// GetOutageReport fetches one report by ID, or ErrNotFound.
func GetOutageReport(ctx context.Context, db *gorm.DB, id uint) (*domain.OutageReport, error) {
	var r domain.OutageReport
	if err := db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// GetOutageReportByRef fetches a report by its chatbot follow-up reference
// (the JO-YYYYMMDD-NNNN value handed to the submitter), or ErrNotFound.
func GetOutageReportByRef(ctx context.Context, db *gorm.DB, ref string) (*domain.OutageReport, error) {
	var r domain.OutageReport
	if err := db.WithContext(ctx).First(&r, "job_order_id = ?", ref).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// SetOutageRef stores the chatbot follow-up reference on a fresh report.
// The write only lands while job_order_id is still empty; the link is
// immutable once set.
func SetOutageRef(ctx context.Context, db *gorm.DB, id uint, ref string) error {
	res := db.WithContext(ctx).
		Model(&domain.OutageReport{}).
		Where("id = ? AND (job_order_id IS NULL OR job_order_id = '')", id).
		Update("job_order_id", ref)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListOutageReports returns reports matching the filter spec, newest
// first. Search covers name, address, and details.
func ListOutageReports(ctx context.Context, db *gorm.DB, f ComplaintFilters) ([]domain.OutageReport, error) {
	var out []domain.OutageReport
	q := f.apply(
		db.WithContext(ctx).Model(&domain.OutageReport{}),
		domain.PriorityHigh,
		[]string{"full_name", "address", "details"},
	)
	err := q.Order("created_at DESC").Find(&out).Error
	return out, err
}

// LatestOutageForAddressOn returns the most recent report for the exact
// address whose creation falls on the given calendar day, or ErrNotFound.
// It backs the same-day duplicate guard; resolution state is judged by the
// caller.
func LatestOutageForAddressOn(ctx context.Context, db *gorm.DB, address string, day time.Time) (*domain.OutageReport, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	var r domain.OutageReport
	err := db.WithContext(ctx).
		Where("address = ? AND created_at >= ? AND created_at < ?", address, start, end).
		Order("created_at DESC").
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}
