// Package repo – family-routed mutations.
//
// Status, hide, and job-order-link updates are identical across the three
// family tables, so they are routed through the closed Family enum rather
// than duplicated per table. The enum is the only thing that ever selects
// a table; user input never reaches the SQL text.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/ileco-one/triage-backend/internal/domain"
)

// familyModel returns an empty model value for the family, used to scope
// GORM queries to the right table. The nil return for unknown families is
// deliberate: callers must have parsed the family first.
func familyModel(f domain.Family) interface{} {
	switch f {
	case domain.FamilyOutage:
		return &domain.OutageReport{}
	case domain.FamilyMeter:
		return &domain.MeterConcern{}
	case domain.FamilyAgent:
		return &domain.AgentQueueRequest{}
	}
	return nil
}

// GetStatus returns the current status of a record, or ErrNotFound.
func GetStatus(ctx context.Context, db *gorm.DB, f domain.Family, id uint) (string, error) {
	var row struct{ Status string }
	err := db.WithContext(ctx).
		Model(familyModel(f)).
		Where("id = ?", id).
		Take(&row).Error
	if err != nil {
		return "", err
	}
	return row.Status, nil
}

// UpdateStatus persists a new status value. Returns ErrNotFound when the
// record does not exist. Validation of the value itself is the service
// layer's job.
func UpdateStatus(ctx context.Context, db *gorm.DB, f domain.Family, id uint, status string) error {
	res := db.WithContext(ctx).
		Model(familyModel(f)).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetHidden soft-deletes a record. Hiding an already-hidden record is a
// successful no-op; only a missing record is an error.
func SetHidden(ctx context.Context, db *gorm.DB, f domain.Family, id uint) error {
	if _, err := GetStatus(ctx, db, f, id); err != nil {
		return err
	}
	return db.WithContext(ctx).
		Model(familyModel(f)).
		Where("id = ?", id).
		Update("hidden", true).Error
}

// LinkJobOrder stores the job order ID on a complaint and moves it to
// ASSIGNED. The link is written only when no job order is recorded yet:
// once set, job_order_id is immutable, so a re-assignment updates the
// status but provably leaves the original link intact.
func LinkJobOrder(ctx context.Context, db *gorm.DB, f domain.Family, id uint, jobOrderID string) error {
	res := db.WithContext(ctx).
		Model(familyModel(f)).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status": domain.StatusAssigned,
			"job_order_id": gorm.Expr(
				"CASE WHEN job_order_id IS NULL OR job_order_id = '' THEN ? ELSE job_order_id END",
				jobOrderID,
			),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
