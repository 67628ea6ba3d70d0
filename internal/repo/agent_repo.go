// Package repo – agent queue repository.
//
// Besides CRUD, this file carries the queue-position query the chatbot
// reports back to waiting customers, and the resume marker that takes a
// request out of the triage view when the conversation is handed back to
// the bot.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ileco-one/triage-backend/internal/domain"
)

// CreateAgentRequest inserts a new agent queue row.
func CreateAgentRequest(ctx context.Context, db *gorm.DB, a *domain.AgentQueueRequest) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(a).Error
}

// GetAgentRequest fetches one request by ID, or ErrNotFound.
func GetAgentRequest(ctx context.Context, db *gorm.DB, id uint) (*domain.AgentQueueRequest, error) {
	var a domain.AgentQueueRequest
	if err := db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAgentRequests returns requests matching the filter spec, newest
// first. Resumed requests are always excluded: their conversations are
// back with the bot. Search covers submitter ID, name, and concern text.
func ListAgentRequests(ctx context.Context, db *gorm.DB, f ComplaintFilters) ([]domain.AgentQueueRequest, error) {
	var out []domain.AgentQueueRequest
	q := f.apply(
		db.WithContext(ctx).Model(&domain.AgentQueueRequest{}),
		domain.PriorityLow,
		[]string{"user_id", "full_name", "concern"},
	)
	err := q.Where("resumed = ?", false).Order("created_at DESC").Find(&out).Error
	return out, err
}

// QueuePosition returns the 1-based place of the given request among
// unresolved requests ordered by creation time.
func QueuePosition(ctx context.Context, db *gorm.DB, id uint) (int, error) {
	var req domain.AgentQueueRequest
	if err := db.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		return 0, err
	}
	var ahead int64
	err := db.WithContext(ctx).
		Model(&domain.AgentQueueRequest{}).
		Where("status <> ? AND created_at < ?", domain.StatusResolved, req.CreatedAt).
		Count(&ahead).Error
	if err != nil {
		return 0, err
	}
	return int(ahead) + 1, nil
}

// MarkResumed flags a request as handed back to the bot. Returns
// ErrNotFound when the row does not exist.
func MarkResumed(ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).
		Model(&domain.AgentQueueRequest{}).
		Where("id = ?", id).
		Update("resumed", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
