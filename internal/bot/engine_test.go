package bot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/ileco-one/triage-backend/internal/domain"
	"github.com/ileco-one/triage-backend/internal/services"
)

// fakeIntakeRepo is a minimal in-memory services.IntakeRepo.
type fakeIntakeRepo struct {
	outages []*domain.OutageReport
	meters  []*domain.MeterConcern
	agents  []*domain.AgentQueueRequest
}

func (r *fakeIntakeRepo) CreateOutageReport(ctx context.Context, db *gorm.DB, o *domain.OutageReport) error {
	o.ID = uint(len(r.outages) + 1)
	r.outages = append(r.outages, o)
	return nil
}

func (r *fakeIntakeRepo) CreateMeterConcern(ctx context.Context, db *gorm.DB, m *domain.MeterConcern) error {
	m.ID = uint(len(r.meters) + 1)
	r.meters = append(r.meters, m)
	return nil
}

func (r *fakeIntakeRepo) CreateAgentRequest(ctx context.Context, db *gorm.DB, a *domain.AgentQueueRequest) error {
	a.ID = uint(len(r.agents) + 1)
	r.agents = append(r.agents, a)
	return nil
}

func (r *fakeIntakeRepo) SetOutageRef(ctx context.Context, db *gorm.DB, id uint, ref string) error {
	return nil
}

func (r *fakeIntakeRepo) LatestOutageForAddressOn(ctx context.Context, db *gorm.DB, address string, day time.Time) (*domain.OutageReport, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeIntakeRepo) QueuePosition(ctx context.Context, db *gorm.DB, id uint) (int, error) {
	return 2, nil
}

func (r *fakeIntakeRepo) MarkResumed(ctx context.Context, db *gorm.DB, id uint) error {
	for _, a := range r.agents {
		if a.ID == id {
			a.Resumed = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func newEngine(t *testing.T) (*Engine, *fakeIntakeRepo) {
	t.Helper()
	r := &fakeIntakeRepo{}
	return NewEngine(services.NewIntakeService(nil, r, nil), nil), r
}

func TestAction_SubmitPowerOutage(t *testing.T) {
	e, r := newEngine(t)

	resp, err := e.Action(context.Background(), "submit_power_outage", ActionRequest{
		SenderID: "tg-1",
		Slots: map[string]string{
			"full_name":      "Juan Dela Cruz",
			"contact_number": "09171234567",
			"address":        "Brgy. Bacan, Cabatuan, Iloilo",
			"details":        "no power since 8am",
		},
	})
	if err != nil {
		t.Fatalf("Action: %v", err)
	}
	if len(r.outages) != 1 {
		t.Fatalf("expected one stored report, got %d", len(r.outages))
	}
	if len(resp.Events) != 1 || resp.Events[0].Slot != "job_order_ref" {
		t.Fatalf("expected job_order_ref slot event: %+v", resp.Events)
	}
	if len(resp.Utterances) != 1 || !strings.Contains(resp.Utterances[0], "Reference number: JO-") {
		t.Fatalf("utterance %v", resp.Utterances)
	}
}

func TestAction_ValidationBecomesUtterance(t *testing.T) {
	e, r := newEngine(t)

	resp, err := e.Action(context.Background(), "submit_power_outage", ActionRequest{
		Slots: map[string]string{
			"full_name":      "Juan",
			"contact_number": "09171234567",
			"address":        "Brgy. Bacan, Cabatuan, Iloilo",
		},
	})
	if err != nil {
		t.Fatalf("validation must not be an HTTP-level error: %v", err)
	}
	if len(r.outages) != 0 {
		t.Fatal("invalid submission must not persist")
	}
	if len(resp.Utterances) != 1 || !strings.Contains(resp.Utterances[0], "full name") {
		t.Fatalf("expected re-prompt utterance, got %v", resp.Utterances)
	}
}

func TestAction_RequestAgentQueuePosition(t *testing.T) {
	e, _ := newEngine(t)

	resp, err := e.Action(context.Background(), "request_agent", ActionRequest{
		SenderID: "tg-2",
		Slots: map[string]string{
			"full_name":      "Maria Santos",
			"contact_number": "09181234567",
			"concern":        "I want to talk to a person",
		},
	})
	if err != nil {
		t.Fatalf("Action: %v", err)
	}
	if !strings.Contains(resp.Utterances[0], "number 2 in the queue") {
		t.Fatalf("utterance %v", resp.Utterances)
	}
}

func TestAction_CheckStatus(t *testing.T) {
	r := &fakeIntakeRepo{}
	e := NewEngine(services.NewIntakeService(nil, r, nil), func(ctx context.Context, ref string) (*domain.OutageReport, error) {
		if ref != "JO-20260830-0001" {
			return nil, gorm.ErrRecordNotFound
		}
		return &domain.OutageReport{ID: 1, Status: domain.StatusInProgress}, nil
	})

	resp, err := e.Action(context.Background(), "check_outage_status", ActionRequest{
		Slots: map[string]string{"job_order_ref": "jo-20260830-0001"},
	})
	if err != nil {
		t.Fatalf("Action: %v", err)
	}
	if !strings.Contains(resp.Utterances[0], "IN_PROGRESS") {
		t.Fatalf("utterance %v", resp.Utterances)
	}

	resp, err = e.Action(context.Background(), "check_outage_status", ActionRequest{
		Slots: map[string]string{"job_order_ref": "JO-20260830-9999"},
	})
	if err != nil {
		t.Fatalf("Action: %v", err)
	}
	if !strings.Contains(resp.Utterances[0], "could not find") {
		t.Fatalf("utterance %v", resp.Utterances)
	}
}

func TestAction_UnknownName(t *testing.T) {
	e, _ := newEngine(t)
	if _, err := e.Action(context.Background(), "launch_rocket", ActionRequest{}); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
}

func TestValidate_Verdicts(t *testing.T) {
	e, _ := newEngine(t)

	ok, err := e.Validate("contact_number", "09171234567")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if ok.Value != "09171234567" || ok.Message != "" {
		t.Fatalf("accept verdict wrong: %+v", ok)
	}

	bad, err := e.Validate("contact_number", "091234567890")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if bad.Value != nil || bad.Message == "" {
		t.Fatalf("reject verdict wrong: %+v", bad)
	}

	ref, err := e.Validate("job_order_ref", "jo-20260830-0001")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if ref.Value != "JO-20260830-0001" {
		t.Fatalf("reference not upper-cased: %+v", ref)
	}

	if _, err := e.Validate("favorite_color", "blue"); !errors.Is(err, ErrUnknownSlot) {
		t.Fatalf("expected ErrUnknownSlot, got %v", err)
	}
}

func TestAction_ResumeConversation(t *testing.T) {
	e, r := newEngine(t)
	r.agents = append(r.agents, &domain.AgentQueueRequest{ID: 7, FullName: "Maria Santos"})

	resp, err := e.Action(context.Background(), "resume_conversation", ActionRequest{
		SenderID: "tg-1",
		Slots:    map[string]string{"agent_request_id": "7"},
	})
	if err != nil {
		t.Fatalf("Action: %v", err)
	}
	if !r.agents[0].Resumed {
		t.Fatal("request not marked resumed")
	}
	if len(resp.Events) != 1 || resp.Events[0].Slot != "agent_request_id" || resp.Events[0].Value != nil {
		t.Fatalf("expected slot clear event: %+v", resp.Events)
	}
}

func TestAction_ResumeConversation_MissingRequest(t *testing.T) {
	e, r := newEngine(t)

	resp, err := e.Action(context.Background(), "resume_conversation", ActionRequest{
		Slots: map[string]string{"agent_request_id": "99"},
	})
	if err != nil {
		t.Fatalf("Action: %v", err)
	}
	if len(resp.Utterances) != 1 || !strings.Contains(resp.Utterances[0], "no longer in the queue") {
		t.Fatalf("unexpected utterances: %v", resp.Utterances)
	}
	if len(r.agents) != 0 {
		t.Fatal("fake mutated unexpectedly")
	}
}
