// Package services – lifecycle manager.
//
// Status transitions, soft-delete, and dashboard job-order assignment.
// Assignment is the one cross-store write in the system and follows a
// strict order: the job order store commits first, and only then is the
// complaint linked. A link failure after a committed job order is a
// cross-store inconsistency that gets logged, never retried.
package services

import (
	"context"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/ileco-one/triage-backend/internal/domain"
	"github.com/ileco-one/triage-backend/internal/validate"
)

// LifecycleRepo defines the repository contract required by
// LifecycleService. The three getters load the row being assigned; the
// mutations are family-routed.
type LifecycleRepo interface {
	GetStatus(ctx context.Context, db *gorm.DB, f domain.Family, id uint) (string, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, f domain.Family, id uint, status string) error
	SetHidden(ctx context.Context, db *gorm.DB, f domain.Family, id uint) error
	LinkJobOrder(ctx context.Context, db *gorm.DB, f domain.Family, id uint, jobOrderID string) error

	GetOutageReport(ctx context.Context, db *gorm.DB, id uint) (*domain.OutageReport, error)
	GetMeterConcern(ctx context.Context, db *gorm.DB, id uint) (*domain.MeterConcern, error)
	GetAgentRequest(ctx context.Context, db *gorm.DB, id uint) (*domain.AgentQueueRequest, error)
}

// JobOrderRepo defines the job order store contract.
type JobOrderRepo interface {
	CreateJobOrder(ctx context.Context, db *gorm.DB, jo *domain.JobOrder) error
}

// LifecycleService mutates complaint state and dispatches crew job orders.
type LifecycleService struct {
	// DB is the complaint store handle; Jobs is the job order store handle.
	DB   *gorm.DB
	Jobs *gorm.DB
	// Repo and JobRepo are the two repositories.
	Repo    LifecycleRepo
	JobRepo JobOrderRepo
	// Notify receives status_update / stats_update events.
	Notify Notifier
	// Stats, when set, is snapshotted and broadcast after every mutation.
	Stats *StatsService
}

// NewLifecycleService constructs a LifecycleService.
func NewLifecycleService(db, jobs *gorm.DB, r LifecycleRepo, jr JobOrderRepo, n Notifier) *LifecycleService {
	if n == nil {
		n = noopNotifier{}
	}
	return &LifecycleService{DB: db, Jobs: jobs, Repo: r, JobRepo: jr, Notify: n}
}

// UpdateStatus moves a complaint to a new lifecycle status. The value must
// parse into the fixed 4-value set; any-to-any transitions are allowed so
// operators can correct mistakes. The old status is captured for the
// status_update event.
func (s *LifecycleService) UpdateStatus(ctx context.Context, f domain.Family, id uint, status string) error {
	status = strings.ToUpper(strings.TrimSpace(status))
	if !domain.ValidStatus(status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	old, err := s.Repo.GetStatus(ctx, s.DB, f, id)
	if err != nil {
		return mapRepoError(err)
	}
	if err := s.Repo.UpdateStatus(ctx, s.DB, f, id, status); err != nil {
		return mapRepoError(err)
	}

	s.Notify.Broadcast("status_update", map[string]any{
		"family":     f,
		"record_id":  id,
		"old_status": old,
		"new_status": status,
	})
	s.broadcastStats(ctx)
	return nil
}

// Hide soft-deletes a complaint from the triage view. Hiding an already
// hidden record succeeds; there is no unhide.
func (s *LifecycleService) Hide(ctx context.Context, f domain.Family, id uint) error {
	if err := s.Repo.SetHidden(ctx, s.DB, f, id); err != nil {
		return mapRepoError(err)
	}
	s.broadcastStats(ctx)
	return nil
}

// AssignJobOrder dispatches a complaint to the crew system: it builds the
// denormalized job order record, commits it to the job order store, and
// then links the complaint (status ASSIGNED, job_order_id set only if
// still empty). The new job order's unique ID is returned.
//
// A pre-existing reference is carried into the job order notes rather than
// overwritten; re-assigning therefore produces a second job order while
// the complaint keeps its first link.
func (s *LifecycleService) AssignJobOrder(ctx context.Context, f domain.Family, id uint) (string, error) {
	jo, err := s.buildJobOrder(ctx, f, id)
	if err != nil {
		return "", err
	}

	if err := s.JobRepo.CreateJobOrder(ctx, s.Jobs, jo); err != nil {
		return "", mapStoreError(err)
	}

	if err := s.Repo.LinkJobOrder(ctx, s.DB, f, id, jo.UniqueID); err != nil {
		// The job order is committed but the complaint does not point at
		// it. Operators reconcile from this log line; an automatic retry
		// could double-dispatch a crew.
		log.Error().Err(err).
			Str("family", string(f)).
			Uint("record_id", id).
			Str("job_order_id", jo.UniqueID).
			Msg("cross-store inconsistency: job order committed but complaint link failed")
		return jo.UniqueID, mapRepoError(err)
	}

	s.Notify.Broadcast("status_update", map[string]any{
		"family":       f,
		"record_id":    id,
		"new_status":   domain.StatusAssigned,
		"job_order_id": jo.UniqueID,
	})
	s.broadcastStats(ctx)
	return jo.UniqueID, nil
}

// buildJobOrder loads the complaint and denormalizes it into the crew
// dispatch record. Placeholder values in unused columns are part of the
// downstream system's contract.
func (s *LifecycleService) buildJobOrder(ctx context.Context, f domain.Family, id uint) (*domain.JobOrder, error) {
	var (
		name, phone, address, details, issueType string
		landmark, prevRef                        string
		lat, lng                                 *float64
		createdAt                                string
	)

	switch f {
	case domain.FamilyOutage:
		r, err := s.Repo.GetOutageReport(ctx, s.DB, id)
		if err != nil {
			return nil, mapRepoError(err)
		}
		name, phone, address, details = r.FullName, r.ContactNumber, r.Address, r.Details
		landmark, prevRef, lat, lng = r.Landmark, r.JobOrderID, r.Latitude, r.Longitude
		issueType = f.IssueType()
		createdAt = r.CreatedAt.Format("2006-01-02 15:04:05")
	case domain.FamilyMeter:
		m, err := s.Repo.GetMeterConcern(ctx, s.DB, id)
		if err != nil {
			return nil, mapRepoError(err)
		}
		name, phone, address, details = m.Name, m.ContactNumber, m.Address, m.Concern
		prevRef, lat, lng = m.JobOrderID, m.Latitude, m.Longitude
		issueType = f.IssueType()
		createdAt = m.CreatedAt.Format("2006-01-02 15:04:05")
	case domain.FamilyAgent:
		a, err := s.Repo.GetAgentRequest(ctx, s.DB, id)
		if err != nil {
			return nil, mapRepoError(err)
		}
		name, phone, details = a.FullName, a.ContactNumber, a.Concern
		prevRef, lat, lng = a.JobOrderID, a.Latitude, a.Longitude
		issueType = f.IssueType()
		createdAt = a.CreatedAt.Format("2006-01-02 15:04:05")
	default:
		return nil, validationf("unknown family %q", f)
	}

	brgy, town := validate.LocationParts(address)
	if town == "" {
		town = "Select Town"
	}
	if brgy == "" {
		brgy = "Select Brgy"
	}

	notes := details
	if prevRef != "" {
		notes = strings.TrimSpace(notes + "\nOriginal Job Order: " + prevRef)
	}

	return &domain.JobOrder{
		UniqueID:  newJobOrderID(),
		Creator:   "dashboard",
		Created:   createdAt,
		Name:      name,
		Spinners:  "Select Status",
		Town0:     "Select Town",
		Brgy0:     "Select Brgy",
		Town:      strings.ToUpper(town),
		Brgy:      brgy,
		Town2:     "Select Town",
		Brgy2:     "Select Brgy",
		Status:    "Pending",
		Type:      issueType,
		Notes:     notes,
		Landmark:  landmark,
		Phone:     phone,
		Location:  address,
		Latitude:  floatString(lat),
		Longitude: floatString(lng),
	}, nil
}

// newJobOrderID derives a 10-digit unique identifier from a fresh UUID.
func newJobOrderID() string {
	u := uuid.New()
	n := binary.BigEndian.Uint64(u[:8])
	return fmt.Sprintf("%020d", n)[:10]
}

func floatString(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.6f", *v)
}

// broadcastStats pushes a fresh stats snapshot to dashboard observers.
// Best effort: a failing snapshot is dropped silently.
func (s *LifecycleService) broadcastStats(ctx context.Context) {
	if s.Stats == nil {
		return
	}
	s.Notify.Broadcast("stats_update", s.Stats.Snapshot(ctx))
}
