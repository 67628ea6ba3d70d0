// Package services – intake adapters.
//
// One service fronts every channel a complaint can arrive through: the
// chatbot conversations, the public web form, inbound SMS, and the
// cross-node webhook relay. All adapters share the same contract: validate
// fully before touching the store, never insert partially, and broadcast
// new_complaint (plus critical_alert for CRITICAL rows) only after the row
// is committed.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/ileco-one/triage-backend/internal/classify"
	"github.com/ileco-one/triage-backend/internal/domain"
	"github.com/ileco-one/triage-backend/internal/validate"
)

// Notifier is the event fan-out contract. The hub in internal/notify
// satisfies it; tests substitute a recorder.
type Notifier interface {
	Broadcast(event string, payload any)
}

// noopNotifier keeps the services usable without a hub wired in.
type noopNotifier struct{}

func (noopNotifier) Broadcast(string, any) {}

// IntakeRepo defines the repository contract required by IntakeService.
type IntakeRepo interface {
	CreateOutageReport(ctx context.Context, db *gorm.DB, r *domain.OutageReport) error
	CreateMeterConcern(ctx context.Context, db *gorm.DB, m *domain.MeterConcern) error
	CreateAgentRequest(ctx context.Context, db *gorm.DB, a *domain.AgentQueueRequest) error
	SetOutageRef(ctx context.Context, db *gorm.DB, id uint, ref string) error
	LatestOutageForAddressOn(ctx context.Context, db *gorm.DB, address string, day time.Time) (*domain.OutageReport, error)
	QueuePosition(ctx context.Context, db *gorm.DB, id uint) (int, error)
	MarkResumed(ctx context.Context, db *gorm.DB, id uint) error
}

// IntakeService persists new complaints arriving from any channel.
type IntakeService struct {
	// DB is the complaint store handle.
	DB *gorm.DB
	// Repo is the complaint repository used by this service.
	Repo IntakeRepo
	// Notify receives new_complaint / critical_alert events.
	Notify Notifier
	// Lifecycle, when set, auto-creates job orders for severe public web
	// form submissions.
	Lifecycle *LifecycleService
	// Now is the clock, overridable in tests.
	Now func() time.Time
}

// NewIntakeService constructs an IntakeService.
func NewIntakeService(db *gorm.DB, r IntakeRepo, n Notifier) *IntakeService {
	if n == nil {
		n = noopNotifier{}
	}
	return &IntakeService{DB: db, Repo: r, Notify: n, Now: func() time.Time { return time.Now().UTC() }}
}

// OutageSubmission is a chatbot power-outage report.
type OutageSubmission struct {
	UserID        string
	FullName      string
	ContactNumber string
	Address       string
	Landmark      string
	Details       string
	Source        string
}

// OutageResult is returned to the submitting conversation.
type OutageResult struct {
	ReportID  uint   `json:"report_id"`
	Reference string `json:"reference"`
	Priority  string `json:"priority"`
	Duplicate bool   `json:"duplicate"`
}

// SubmitOutageReport validates and stores a chatbot outage report.
//
// Same-day duplicate guard: when the exact address already reported today
// and that report is not resolved, the existing follow-up reference is
// returned with Duplicate=true and nothing is inserted. A failing dedup
// lookup degrades to "no duplicate" rather than blocking intake.
func (s *IntakeService) SubmitOutageReport(ctx context.Context, in OutageSubmission) (*OutageResult, error) {
	name, err := validate.FullName(in.FullName)
	if err != nil {
		return nil, validationf("%s", err)
	}
	phone, err := validate.Phone(in.ContactNumber)
	if err != nil {
		return nil, validationf("%s", err)
	}
	addr, err := validate.Address(in.Address)
	if err != nil {
		return nil, validationf("%s", err)
	}
	in.FullName, in.ContactNumber, in.Address = name, phone, addr

	now := s.Now()
	if prev, err := s.Repo.LatestOutageForAddressOn(ctx, s.DB, in.Address, now); err == nil {
		status := strings.ToUpper(strings.TrimSpace(prev.Status))
		if status != domain.StatusResolved && status != "FINISHED" && prev.JobOrderID != "" {
			return &OutageResult{
				ReportID:  prev.ID,
				Reference: prev.JobOrderID,
				Priority:  prev.Priority,
				Duplicate: true,
			}, nil
		}
	} else if !isNotFound(err) {
		log.Warn().Err(err).Msg("outage dedup lookup failed, proceeding with insert")
	}

	details := in.Details
	if details == "" {
		details = "Power outage reported via chatbot"
	}
	r := &domain.OutageReport{
		UserID:        in.UserID,
		FullName:      in.FullName,
		Address:       in.Address,
		ContactNumber: in.ContactNumber,
		Landmark:      in.Landmark,
		Details:       details,
		Priority:      domain.PriorityHigh,
		Status:        domain.StatusNew,
		Source:        sourceOr(in.Source, "Chatbot"),
		CreatedAt:     now,
	}
	if err := s.Repo.CreateOutageReport(ctx, s.DB, r); err != nil {
		return nil, mapStoreError(err)
	}

	ref := fmt.Sprintf("JO-%s-%04d", now.Format("20060102"), r.ID%10000)
	if err := s.Repo.SetOutageRef(ctx, s.DB, r.ID, ref); err != nil {
		log.Warn().Err(err).Uint("report_id", r.ID).Msg("could not store follow-up reference")
	} else {
		r.JobOrderID = ref
	}

	s.announce(OutageComplaint(r, true))
	return &OutageResult{ReportID: r.ID, Reference: ref, Priority: r.Priority}, nil
}

// MeterSubmission is a chatbot metering concern.
type MeterSubmission struct {
	UserID        string
	AccountNo     string
	Name          string
	Address       string
	ContactNumber string
	Concern       string
	Source        string
}

// SubmitMeterConcern validates and stores a meter concern at MEDIUM/NEW.
func (s *IntakeService) SubmitMeterConcern(ctx context.Context, in MeterSubmission) (uint, error) {
	acct, err := validate.AccountNo(in.AccountNo)
	if err != nil {
		return 0, validationf("%s", err)
	}
	name, err := validate.FullName(in.Name)
	if err != nil {
		return 0, validationf("%s", err)
	}
	phone, err := validate.Phone(in.ContactNumber)
	if err != nil {
		return 0, validationf("%s", err)
	}
	addr, err := validate.Address(in.Address)
	if err != nil {
		return 0, validationf("%s", err)
	}
	if _, err := validate.MeterConcern(in.Concern); err != nil {
		return 0, validationf("%s", err)
	}
	in.AccountNo, in.Name, in.ContactNumber, in.Address = acct, name, phone, addr

	m := &domain.MeterConcern{
		UserID:        in.UserID,
		AccountNo:     in.AccountNo,
		Name:          in.Name,
		Address:       in.Address,
		ContactNumber: in.ContactNumber,
		Concern:       in.Concern,
		Priority:      domain.PriorityMedium,
		Status:        domain.StatusNew,
		Source:        sourceOr(in.Source, "Chatbot"),
		CreatedAt:     s.Now(),
	}
	if err := s.Repo.CreateMeterConcern(ctx, s.DB, m); err != nil {
		return 0, mapStoreError(err)
	}
	s.announce(MeterComplaint(m, true))
	return m.ID, nil
}

// AgentSubmission is a request for a human agent.
type AgentSubmission struct {
	UserID        string
	FullName      string
	ContactNumber string
	Concern       string
	Source        string
}

// AgentResult carries the stored ID and the caller's place in line.
type AgentResult struct {
	RequestID     uint   `json:"request_id"`
	QueuePosition int    `json:"queue_position"`
	Priority      string `json:"priority"`
}

// SubmitAgentRequest stores an agent escalation, classifying its priority
// from the concern text, and reports the queue position back.
func (s *IntakeService) SubmitAgentRequest(ctx context.Context, in AgentSubmission) (*AgentResult, error) {
	name, err := validate.FullName(in.FullName)
	if err != nil {
		return nil, validationf("%s", err)
	}
	phone, err := validate.Phone(in.ContactNumber)
	if err != nil {
		return nil, validationf("%s", err)
	}
	if strings.TrimSpace(in.Concern) == "" {
		return nil, validationf("please describe your concern")
	}
	in.FullName, in.ContactNumber = name, phone

	a := &domain.AgentQueueRequest{
		UserID:        in.UserID,
		FullName:      in.FullName,
		ContactNumber: in.ContactNumber,
		Concern:       in.Concern,
		Priority:      classify.ConcernPriority(in.Concern),
		Status:        domain.StatusNew,
		Source:        sourceOr(in.Source, "Chatbot"),
		CreatedAt:     s.Now(),
	}
	if err := s.Repo.CreateAgentRequest(ctx, s.DB, a); err != nil {
		return nil, mapStoreError(err)
	}

	pos, err := s.Repo.QueuePosition(ctx, s.DB, a.ID)
	if err != nil {
		log.Warn().Err(err).Uint("request_id", a.ID).Msg("queue position lookup failed")
		pos = 1
	}

	s.announce(AgentComplaint(a, true))
	return &AgentResult{RequestID: a.ID, QueuePosition: pos, Priority: a.Priority}, nil
}

// ResumeAgentRequest marks an escalation as handed back to the bot. A
// resumed request drops out of the dashboard queue but keeps its row.
func (s *IntakeService) ResumeAgentRequest(ctx context.Context, id uint) error {
	if err := s.Repo.MarkResumed(ctx, s.DB, id); err != nil {
		if isNotFound(err) {
			return ErrNotFound
		}
		return mapStoreError(err)
	}
	return nil
}

// PublicOutageSubmission is the public web form payload, with the
// structured incident block and device geolocation.
type PublicOutageSubmission struct {
	FullName      string
	ContactNumber string
	Email         string
	AccountNumber string
	Address       string
	Landmark      string
	Details       string
	IncidentType  string
	AffectedArea  string
	IncidentTime  string
	Duration      string
	Latitude      *float64
	Longitude     *float64
	Accuracy      *float64
}

// PublicOutageResult reports the stored row and any auto-created job order.
type PublicOutageResult struct {
	ReportID   uint   `json:"report_id"`
	Priority   string `json:"priority"`
	JobOrderID string `json:"job_order_id,omitempty"`
}

// SubmitPublicOutage stores a public web form outage report. Priority
// comes from the outage classifier with the structured incident override.
// CRITICAL and HIGH rows get a job order auto-created best-effort: a
// failure there is logged, never surfaced to the submitter.
func (s *IntakeService) SubmitPublicOutage(ctx context.Context, in PublicOutageSubmission) (*PublicOutageResult, error) {
	if strings.TrimSpace(in.FullName) == "" {
		return nil, validationf("full name is required")
	}
	if _, err := validate.Phone(in.ContactNumber); err != nil {
		return nil, validationf("%s", err)
	}
	if strings.TrimSpace(in.Address) == "" {
		return nil, validationf("address is required")
	}
	if strings.TrimSpace(in.Details) == "" {
		return nil, validationf("please describe the outage")
	}
	if in.Latitude == nil || in.Longitude == nil {
		return nil, validationf("device location is required")
	}

	r := &domain.OutageReport{
		FullName:      in.FullName,
		Address:       in.Address,
		ContactNumber: in.ContactNumber,
		Email:         in.Email,
		AccountNumber: in.AccountNumber,
		Landmark:      in.Landmark,
		Details:       in.Details,
		IncidentType:  in.IncidentType,
		AffectedArea:  in.AffectedArea,
		IncidentTime:  in.IncidentTime,
		Duration:      in.Duration,
		Priority:      classify.OutagePriority(in.Details, in.IncidentType),
		Status:        domain.StatusNew,
		Source:        "Public Web Form",
		Latitude:      in.Latitude,
		Longitude:     in.Longitude,
		Accuracy:      in.Accuracy,
		CreatedAt:     s.Now(),
	}
	if err := s.Repo.CreateOutageReport(ctx, s.DB, r); err != nil {
		return nil, mapStoreError(err)
	}

	res := &PublicOutageResult{ReportID: r.ID, Priority: r.Priority}
	if s.Lifecycle != nil && (r.Priority == domain.PriorityCritical || r.Priority == domain.PriorityHigh) {
		joID, err := s.Lifecycle.AssignJobOrder(ctx, domain.FamilyOutage, r.ID)
		if err != nil {
			log.Error().Err(err).Uint("report_id", r.ID).Msg("auto job order creation failed")
		} else {
			res.JobOrderID = joID
			r.JobOrderID = joID
			r.Status = domain.StatusAssigned
		}
	}

	s.announce(OutageComplaint(r, true))
	return res, nil
}

// SMSSubmission is an inbound text message already parsed by the SMS
// gateway layer.
type SMSSubmission struct {
	From      string
	IssueType string
	Name      string
	Address   string
	Contact   string
	Details   string
}

// SubmitSMS routes a parsed SMS complaint to its family and returns the
// short reference quoted back to the sender.
func (s *IntakeService) SubmitSMS(ctx context.Context, in SMSSubmission) (string, error) {
	if strings.TrimSpace(in.Details) == "" {
		return "", validationf("empty message body")
	}
	name := in.Name
	if name == "" {
		name = "SMS Customer"
	}
	contact := in.Contact
	if contact == "" {
		contact = in.From
	}
	now := s.Now()

	switch in.IssueType {
	case "Billing":
		m := &domain.MeterConcern{
			AccountNo:     "SMS",
			Name:          name,
			Address:       in.Address,
			ContactNumber: contact,
			Concern:       in.Details,
			Priority:      classify.ConcernPriority(in.Details),
			Status:        domain.StatusNew,
			Source:        "SMS",
			CreatedAt:     now,
		}
		if err := s.Repo.CreateMeterConcern(ctx, s.DB, m); err != nil {
			return "", mapStoreError(err)
		}
		s.announce(MeterComplaint(m, true))
		return fmt.Sprintf("BC-%06d", m.ID), nil

	case "Service":
		a := &domain.AgentQueueRequest{
			UserID:        in.From,
			FullName:      name,
			ContactNumber: contact,
			Concern:       in.Details,
			Priority:      classify.ConcernPriority(in.Details),
			Status:        domain.StatusNew,
			Source:        "SMS",
			CreatedAt:     now,
		}
		if err := s.Repo.CreateAgentRequest(ctx, s.DB, a); err != nil {
			return "", mapStoreError(err)
		}
		s.announce(AgentComplaint(a, true))
		return fmt.Sprintf("SR-%06d", a.ID), nil

	default: // Power Outage
		r := &domain.OutageReport{
			UserID:        in.From,
			FullName:      name,
			Address:       in.Address,
			ContactNumber: contact,
			Details:       in.Details,
			Priority:      classify.OutagePriority(in.Details, ""),
			Status:        domain.StatusNew,
			Source:        "SMS",
			CreatedAt:     now,
		}
		if err := s.Repo.CreateOutageReport(ctx, s.DB, r); err != nil {
			return "", mapStoreError(err)
		}
		s.announce(OutageComplaint(r, true))
		return fmt.Sprintf("PO-%06d", r.ID), nil
	}
}

// RelayedSubmission is the sibling node's webhook payload.
type RelayedSubmission struct {
	Family        domain.Family `json:"family"`
	Name          string        `json:"name"`
	ContactNumber string        `json:"contact_number"`
	Address       string        `json:"address"`
	AccountNo     string        `json:"account_no"`
	Details       string        `json:"details"`
	Priority      string        `json:"priority"`
	Latitude      *float64      `json:"latitude,omitempty"`
	Longitude     *float64      `json:"longitude,omitempty"`
}

// SubmitRelayed stores a complaint synced from the sibling node. The
// remote's classification is trusted when present.
func (s *IntakeService) SubmitRelayed(ctx context.Context, in RelayedSubmission) (uint, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Details) == "" {
		return 0, validationf("relayed payload missing name or details")
	}
	const source = "AWS-EC2-Public"
	now := s.Now()

	switch in.Family {
	case domain.FamilyMeter:
		m := &domain.MeterConcern{
			AccountNo:     sourceOr(in.AccountNo, "RELAY"),
			Name:          in.Name,
			Address:       in.Address,
			ContactNumber: in.ContactNumber,
			Concern:       in.Details,
			Priority:      sourceOr(strings.ToUpper(in.Priority), domain.PriorityMedium),
			Status:        domain.StatusNew,
			Source:        source,
			Latitude:      in.Latitude,
			Longitude:     in.Longitude,
			CreatedAt:     now,
		}
		if err := s.Repo.CreateMeterConcern(ctx, s.DB, m); err != nil {
			return 0, mapStoreError(err)
		}
		s.announce(MeterComplaint(m, true))
		return m.ID, nil

	case domain.FamilyAgent:
		a := &domain.AgentQueueRequest{
			UserID:        "relay",
			FullName:      in.Name,
			ContactNumber: in.ContactNumber,
			Concern:       in.Details,
			Priority:      sourceOr(strings.ToUpper(in.Priority), domain.PriorityLow),
			Status:        domain.StatusNew,
			Source:        source,
			Latitude:      in.Latitude,
			Longitude:     in.Longitude,
			CreatedAt:     now,
		}
		if err := s.Repo.CreateAgentRequest(ctx, s.DB, a); err != nil {
			return 0, mapStoreError(err)
		}
		s.announce(AgentComplaint(a, true))
		return a.ID, nil

	default:
		r := &domain.OutageReport{
			FullName:      in.Name,
			Address:       in.Address,
			ContactNumber: in.ContactNumber,
			Details:       in.Details,
			Priority:      sourceOr(strings.ToUpper(in.Priority), domain.PriorityHigh),
			Status:        domain.StatusNew,
			Source:        source,
			Latitude:      in.Latitude,
			Longitude:     in.Longitude,
			CreatedAt:     now,
		}
		if err := s.Repo.CreateOutageReport(ctx, s.DB, r); err != nil {
			return 0, mapStoreError(err)
		}
		s.announce(OutageComplaint(r, true))
		return r.ID, nil
	}
}

// announce fires new_complaint and, for CRITICAL rows, critical_alert.
func (s *IntakeService) announce(c domain.Complaint) {
	s.Notify.Broadcast("new_complaint", c)
	if c.Priority == domain.PriorityCritical {
		s.Notify.Broadcast("critical_alert", c)
	}
}

func sourceOr(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func isNotFound(err error) bool {
	return err != nil && mapRepoError(err) == ErrNotFound
}

// mapStoreError classifies insert failures: context expiry means the pool
// or file was unavailable, anything else bubbles up as-is.
func mapStoreError(err error) error {
	if err == nil {
		return nil
	}
	if e := mapRepoError(err); e == ErrStoreUnavailable {
		return ErrStoreUnavailable
	}
	return err
}
