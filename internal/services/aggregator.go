// Package services – unified aggregator.
//
// The aggregator is the read model of the dashboard: it fans a single
// filter spec out over the three family tables, normalizes each row into
// the Complaint projection, and merges the results under the triage
// ordering. It deliberately never raises to its caller: a family that
// fails to read is logged and skipped so one bad table cannot blank the
// whole dashboard.
package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/ileco-one/triage-backend/internal/domain"
	"github.com/ileco-one/triage-backend/internal/repo"
)

// listDescriptionRunes caps the description shown in list views; the full
// text stays available through Get.
const listDescriptionRunes = 50

// Filters narrows an aggregation. Zero values mean "no filter".
type Filters struct {
	Status        string
	Priority      string
	IssueType     string
	Search        string
	From          *time.Time
	To            *time.Time
	IncludeHidden bool
}

// ComplaintRepo defines the repository contract required by Aggregator.
type ComplaintRepo interface {
	ListOutageReports(ctx context.Context, db *gorm.DB, f repo.ComplaintFilters) ([]domain.OutageReport, error)
	ListMeterConcerns(ctx context.Context, db *gorm.DB, f repo.ComplaintFilters) ([]domain.MeterConcern, error)
	ListAgentRequests(ctx context.Context, db *gorm.DB, f repo.ComplaintFilters) ([]domain.AgentQueueRequest, error)

	GetOutageReport(ctx context.Context, db *gorm.DB, id uint) (*domain.OutageReport, error)
	GetMeterConcern(ctx context.Context, db *gorm.DB, id uint) (*domain.MeterConcern, error)
	GetAgentRequest(ctx context.Context, db *gorm.DB, id uint) (*domain.AgentQueueRequest, error)
}

// Aggregator merges the three complaint families into one triage view.
type Aggregator struct {
	// DB is the complaint store handle.
	DB *gorm.DB
	// Repo is the complaint repository used by this service.
	Repo ComplaintRepo
}

// NewAggregator constructs an Aggregator.
func NewAggregator(db *gorm.DB, r ComplaintRepo) *Aggregator {
	return &Aggregator{DB: db, Repo: r}
}

// Aggregate returns the merged, filtered, triage-ordered complaint list.
// Per-family read failures are logged and skipped; a fully unreachable
// store yields an empty slice, never an error.
func (a *Aggregator) Aggregate(ctx context.Context, f Filters) []domain.Complaint {
	rf := repo.ComplaintFilters{
		Status:        f.Status,
		Priority:      f.Priority,
		Search:        f.Search,
		From:          f.From,
		To:            f.To,
		IncludeHidden: f.IncludeHidden,
	}.Normalize()

	out := make([]domain.Complaint, 0, 64)

	if familyMatchesType(domain.FamilyOutage, f.IssueType) {
		rows, err := a.Repo.ListOutageReports(ctx, a.DB, rf)
		if err != nil {
			log.Error().Err(err).Str("family", string(domain.FamilyOutage)).Msg("aggregate: family read failed, skipping")
		} else {
			for i := range rows {
				out = append(out, OutageComplaint(&rows[i], false))
			}
		}
	}
	if familyMatchesType(domain.FamilyMeter, f.IssueType) {
		rows, err := a.Repo.ListMeterConcerns(ctx, a.DB, rf)
		if err != nil {
			log.Error().Err(err).Str("family", string(domain.FamilyMeter)).Msg("aggregate: family read failed, skipping")
		} else {
			for i := range rows {
				out = append(out, MeterComplaint(&rows[i], false))
			}
		}
	}
	if familyMatchesType(domain.FamilyAgent, f.IssueType) {
		rows, err := a.Repo.ListAgentRequests(ctx, a.DB, rf)
		if err != nil {
			log.Error().Err(err).Str("family", string(domain.FamilyAgent)).Msg("aggregate: family read failed, skipping")
		} else {
			for i := range rows {
				out = append(out, AgentComplaint(&rows[i], false))
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Get returns the single-record detail view with the full description.
func (a *Aggregator) Get(ctx context.Context, f domain.Family, id uint) (*domain.Complaint, error) {
	var c domain.Complaint
	switch f {
	case domain.FamilyOutage:
		r, err := a.Repo.GetOutageReport(ctx, a.DB, id)
		if err != nil {
			return nil, mapRepoError(err)
		}
		c = OutageComplaint(r, true)
	case domain.FamilyMeter:
		m, err := a.Repo.GetMeterConcern(ctx, a.DB, id)
		if err != nil {
			return nil, mapRepoError(err)
		}
		c = MeterComplaint(m, true)
	case domain.FamilyAgent:
		q, err := a.Repo.GetAgentRequest(ctx, a.DB, id)
		if err != nil {
			return nil, mapRepoError(err)
		}
		c = AgentComplaint(q, true)
	default:
		return nil, validationf("unknown family %q", f)
	}
	return &c, nil
}

// familyMatchesType reports whether the family survives a non-empty issue
// type filter. Matching is case-insensitive on the derived type.
func familyMatchesType(f domain.Family, issueType string) bool {
	issueType = strings.TrimSpace(issueType)
	if issueType == "" || strings.EqualFold(issueType, "All Types") {
		return true
	}
	return strings.EqualFold(f.IssueType(), issueType)
}

// mapRepoError converts repository errors into service sentinels.
func mapRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repo.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrStoreUnavailable
	default:
		return err
	}
}

// OutageComplaint projects an outage report row into the normalized view.
func OutageComplaint(r *domain.OutageReport, full bool) domain.Complaint {
	return domain.Complaint{
		Family:      domain.FamilyOutage,
		RecordID:    r.ID,
		JobOrderID:  r.JobOrderID,
		CustomerRef: r.UserID,
		Name:        r.FullName,
		Phone:       r.ContactNumber,
		Address:     r.Address,
		IssueType:   domain.FamilyOutage.IssueType(),
		Description: displayText(r.Details, full),
		Priority:    fallback(r.Priority, domain.PriorityHigh),
		Status:      fallback(r.Status, domain.StatusNew),
		Source:      r.Source,
		Hidden:      r.Hidden,
		Location:    location(r.Latitude, r.Longitude, r.Accuracy),
		CreatedAt:   r.CreatedAt,
	}
}

// MeterComplaint projects a meter concern row into the normalized view.
func MeterComplaint(m *domain.MeterConcern, full bool) domain.Complaint {
	return domain.Complaint{
		Family:      domain.FamilyMeter,
		RecordID:    m.ID,
		JobOrderID:  m.JobOrderID,
		CustomerRef: m.AccountNo,
		Name:        m.Name,
		Phone:       m.ContactNumber,
		Address:     m.Address,
		IssueType:   domain.FamilyMeter.IssueType(),
		Description: displayText(m.Concern, full),
		Priority:    fallback(m.Priority, domain.PriorityMedium),
		Status:      fallback(m.Status, domain.StatusNew),
		Source:      m.Source,
		Hidden:      m.Hidden,
		Location:    location(m.Latitude, m.Longitude, m.Accuracy),
		CreatedAt:   m.CreatedAt,
	}
}

// AgentComplaint projects an agent queue row into the normalized view.
func AgentComplaint(a *domain.AgentQueueRequest, full bool) domain.Complaint {
	return domain.Complaint{
		Family:      domain.FamilyAgent,
		RecordID:    a.ID,
		JobOrderID:  a.JobOrderID,
		CustomerRef: a.UserID,
		Name:        a.FullName,
		Phone:       a.ContactNumber,
		IssueType:   domain.FamilyAgent.IssueType(),
		Description: displayText(a.Concern, full),
		Priority:    fallback(a.Priority, domain.PriorityLow),
		Status:      fallback(a.Status, domain.StatusNew),
		Source:      a.Source,
		Hidden:      a.Hidden,
		Location:    location(a.Latitude, a.Longitude, a.Accuracy),
		CreatedAt:   a.CreatedAt,
	}
}

func fallback(v, def string) string {
	v = strings.ToUpper(strings.TrimSpace(v))
	if v == "" {
		return def
	}
	return v
}

func displayText(s string, full bool) string {
	if full {
		return s
	}
	runes := []rune(s)
	if len(runes) <= listDescriptionRunes {
		return s
	}
	return string(runes[:listDescriptionRunes]) + "..."
}

func location(lat, lng, acc *float64) *domain.Location {
	if lat == nil || lng == nil {
		return nil
	}
	return &domain.Location{Latitude: *lat, Longitude: *lng, Accuracy: acc}
}
