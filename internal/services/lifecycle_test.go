package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/ileco-one/triage-backend/internal/domain"
)

// ----- Fakes -----

type fakeLifecycleRepo struct {
	status    string
	statusErr error

	updatedStatus string
	updateCalled  bool
	updateErr     error

	hideErr error

	linkFamily domain.Family
	linkID     uint
	linkRef    string
	linkCalled bool
	linkErr    error

	outage *domain.OutageReport
	meter  *domain.MeterConcern
	agent  *domain.AgentQueueRequest
}

func (r *fakeLifecycleRepo) GetStatus(ctx context.Context, db *gorm.DB, f domain.Family, id uint) (string, error) {
	if r.statusErr != nil {
		return "", r.statusErr
	}
	return r.status, nil
}

func (r *fakeLifecycleRepo) UpdateStatus(ctx context.Context, db *gorm.DB, f domain.Family, id uint, status string) error {
	r.updateCalled = true
	r.updatedStatus = status
	return r.updateErr
}

func (r *fakeLifecycleRepo) SetHidden(ctx context.Context, db *gorm.DB, f domain.Family, id uint) error {
	return r.hideErr
}

func (r *fakeLifecycleRepo) LinkJobOrder(ctx context.Context, db *gorm.DB, f domain.Family, id uint, jobOrderID string) error {
	r.linkCalled = true
	r.linkFamily, r.linkID, r.linkRef = f, id, jobOrderID
	return r.linkErr
}

func (r *fakeLifecycleRepo) GetOutageReport(ctx context.Context, db *gorm.DB, id uint) (*domain.OutageReport, error) {
	if r.outage == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return r.outage, nil
}

func (r *fakeLifecycleRepo) GetMeterConcern(ctx context.Context, db *gorm.DB, id uint) (*domain.MeterConcern, error) {
	if r.meter == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return r.meter, nil
}

func (r *fakeLifecycleRepo) GetAgentRequest(ctx context.Context, db *gorm.DB, id uint) (*domain.AgentQueueRequest, error) {
	if r.agent == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return r.agent, nil
}

type fakeJobOrderRepo struct {
	created []*domain.JobOrder
	err     error
}

func (r *fakeJobOrderRepo) CreateJobOrder(ctx context.Context, db *gorm.DB, jo *domain.JobOrder) error {
	if r.err != nil {
		return r.err
	}
	r.created = append(r.created, jo)
	return nil
}

// ----- Tests -----

func TestUpdateStatus_InvalidValueRejectedWithoutMutation(t *testing.T) {
	r := &fakeLifecycleRepo{status: domain.StatusNew}
	s := NewLifecycleService(nil, nil, r, &fakeJobOrderRepo{}, nil)

	err := s.UpdateStatus(context.Background(), domain.FamilyOutage, 1, "DONE")
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatal("invalid status must be distinct from not-found")
	}
	if r.updateCalled {
		t.Fatal("invalid status must not touch the store")
	}
}

func TestUpdateStatus_NotFound(t *testing.T) {
	r := &fakeLifecycleRepo{statusErr: gorm.ErrRecordNotFound}
	s := NewLifecycleService(nil, nil, r, &fakeJobOrderRepo{}, nil)

	err := s.UpdateStatus(context.Background(), domain.FamilyOutage, 404, domain.StatusResolved)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateStatus_NormalizesAndBroadcastsOldStatus(t *testing.T) {
	r := &fakeLifecycleRepo{status: domain.StatusNew}
	n := &recordingNotifier{}
	s := NewLifecycleService(nil, nil, r, &fakeJobOrderRepo{}, n)

	if err := s.UpdateStatus(context.Background(), domain.FamilyMeter, 2, "in_progress"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if r.updatedStatus != domain.StatusInProgress {
		t.Fatalf("status not upper-cased: %q", r.updatedStatus)
	}
	if n.count("status_update") != 1 {
		t.Fatalf("expected one status_update, got %v", n.events)
	}
}

func TestHide_MapsNotFound(t *testing.T) {
	r := &fakeLifecycleRepo{hideErr: gorm.ErrRecordNotFound}
	s := NewLifecycleService(nil, nil, r, &fakeJobOrderRepo{}, nil)

	if err := s.Hide(context.Background(), domain.FamilyAgent, 9); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAssignJobOrder_JobStoreCommitsFirst(t *testing.T) {
	r := &fakeLifecycleRepo{
		outage: &domain.OutageReport{
			ID: 1, FullName: "Juan Dela Cruz", ContactNumber: "09171234567",
			Address: "Brgy. Bacan, Cabatuan, Iloilo", Details: "no power",
			CreatedAt: time.Now().UTC(),
		},
	}
	jr := &fakeJobOrderRepo{err: errors.New("joblist store down")}
	s := NewLifecycleService(nil, nil, r, jr, nil)

	_, err := s.AssignJobOrder(context.Background(), domain.FamilyOutage, 1)
	if err == nil {
		t.Fatal("expected error when job order store fails")
	}
	if r.linkCalled {
		t.Fatal("complaint must stay untouched when the job order write fails")
	}
}

func TestAssignJobOrder_BuildsRecordAndLinks(t *testing.T) {
	r := &fakeLifecycleRepo{
		outage: &domain.OutageReport{
			ID: 5, FullName: "Maria Santos", ContactNumber: "09181234567",
			Address: "Purok 3, Brgy. Tiring, Cabatuan, Iloilo",
			Details: "transformer sparking", JobOrderID: "JO-20260830-0005",
			CreatedAt: time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC),
		},
	}
	jr := &fakeJobOrderRepo{}
	n := &recordingNotifier{}
	s := NewLifecycleService(nil, nil, r, jr, n)

	joID, err := s.AssignJobOrder(context.Background(), domain.FamilyOutage, 5)
	if err != nil {
		t.Fatalf("AssignJobOrder: %v", err)
	}
	if len(jr.created) != 1 {
		t.Fatalf("expected one job order, got %d", len(jr.created))
	}
	jo := jr.created[0]
	if jo.UniqueID != joID || len(jo.UniqueID) != 10 {
		t.Fatalf("unique id %q", jo.UniqueID)
	}
	if jo.Town != "CABATUAN" {
		t.Fatalf("town %q, want canonical upper-case", jo.Town)
	}
	if jo.Brgy == "" || jo.Brgy == "Select Brgy" {
		t.Fatalf("brgy not derived from address: %q", jo.Brgy)
	}
	if !strings.Contains(jo.Notes, "Original Job Order: JO-20260830-0005") {
		t.Fatalf("existing reference must land in notes: %q", jo.Notes)
	}
	if jo.Status != "Pending" || jo.Type != "Power Outage" {
		t.Fatalf("unexpected record: status=%q type=%q", jo.Status, jo.Type)
	}
	if !r.linkCalled || r.linkRef != joID || r.linkFamily != domain.FamilyOutage {
		t.Fatalf("link not applied: %+v", r)
	}
	if n.count("status_update") != 1 {
		t.Fatalf("expected one status_update, got %v", n.events)
	}
}

func TestAssignJobOrder_SecondCallWritesNewOrderKeepsLinkSemantics(t *testing.T) {
	r := &fakeLifecycleRepo{
		meter: &domain.MeterConcern{
			ID: 3, Name: "Pedro Penduko", ContactNumber: "09191234567",
			Address: "Brgy. Cagban, Leganes, Iloilo", Concern: "meter broken",
			CreatedAt: time.Now().UTC(),
		},
	}
	jr := &fakeJobOrderRepo{}
	s := NewLifecycleService(nil, nil, r, jr, nil)
	ctx := context.Background()

	first, err := s.AssignJobOrder(ctx, domain.FamilyMeter, 3)
	if err != nil {
		t.Fatalf("first AssignJobOrder: %v", err)
	}
	second, err := s.AssignJobOrder(ctx, domain.FamilyMeter, 3)
	if err != nil {
		t.Fatalf("second AssignJobOrder: %v", err)
	}
	if first == second {
		t.Fatal("re-assignment must mint a new job order id")
	}
	if len(jr.created) != 2 {
		t.Fatalf("expected two job orders, got %d", len(jr.created))
	}
}

func TestAssignJobOrder_MissingRecord(t *testing.T) {
	s := NewLifecycleService(nil, nil, &fakeLifecycleRepo{}, &fakeJobOrderRepo{}, nil)
	_, err := s.AssignJobOrder(context.Background(), domain.FamilyAgent, 42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAssignJobOrder_LinkFailureReturnsOrderID(t *testing.T) {
	r := &fakeLifecycleRepo{
		agent: &domain.AgentQueueRequest{
			ID: 8, FullName: "Ana Reyes", ContactNumber: "09170000008",
			Concern: "need a lineman", CreatedAt: time.Now().UTC(),
		},
		linkErr: errors.New("disk I/O error"),
	}
	jr := &fakeJobOrderRepo{}
	s := NewLifecycleService(nil, nil, r, jr, nil)

	joID, err := s.AssignJobOrder(context.Background(), domain.FamilyAgent, 8)
	if err == nil {
		t.Fatal("link failure must surface")
	}
	if joID == "" || len(jr.created) != 1 {
		t.Fatal("the committed job order id must still be reported for reconciliation")
	}
}
