// Complaint read endpoints.
//
// This file exposes the dashboard's read surface:
//   - GET /api/complaints                (filtered aggregate, paginated)
//   - GET /api/complaints_with_location  (map markers: rows with coordinates)
//   - GET /api/dashboard_stats           (headline counters)
//   - GET /view/:family/:id              (single record, full description)
//
// Handlers are transport-thin: they parse query/route input, call
// application services, and translate results into HTTP responses.
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ileco-one/triage-backend/internal/bot"
	"github.com/ileco-one/triage-backend/internal/domain"
	"github.com/ileco-one/triage-backend/internal/http/middleware"
	"github.com/ileco-one/triage-backend/internal/notify"
	"github.com/ileco-one/triage-backend/internal/relay"
	"github.com/ileco-one/triage-backend/internal/services"
	"github.com/ileco-one/triage-backend/internal/sms"
	"github.com/ileco-one/triage-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// ComplaintService defines the read operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type ComplaintService interface {
	// Aggregate returns the filtered, triage-ordered unified view.
	Aggregate(ctx context.Context, f services.Filters) []domain.Complaint
	// Get returns one record with its full description.
	Get(ctx context.Context, f domain.Family, id uint) (*domain.Complaint, error)
}

// StatsService computes the dashboard headline counters.
type StatsService interface {
	Snapshot(ctx context.Context) services.Stats
}

// LifecycleService defines the operator mutations consumed by handlers.
type LifecycleService interface {
	UpdateStatus(ctx context.Context, f domain.Family, id uint, status string) error
	Hide(ctx context.Context, f domain.Family, id uint) error
	AssignJobOrder(ctx context.Context, f domain.Family, id uint) (string, error)
}

// IntakeService defines the public submission operations consumed by handlers.
type IntakeService interface {
	SubmitPublicOutage(ctx context.Context, in services.PublicOutageSubmission) (*services.PublicOutageResult, error)
	SubmitSMS(ctx context.Context, in services.SMSSubmission) (string, error)
	SubmitRelayed(ctx context.Context, in services.RelayedSubmission) (uint, error)
}

// AuthService verifies dashboard credentials.
type AuthService interface {
	Login(ctx context.Context, username, password string) error
}

// BotEngine executes dialogue-engine actions and slot validations.
type BotEngine interface {
	Action(ctx context.Context, name string, req bot.ActionRequest) (*bot.ActionResponse, error)
	Validate(slot, value string) (*bot.ValidateResponse, error)
}

//
// Handler wiring
//

// Deps bundles everything the HTTP handlers need. Service fields are
// interfaces so tests can swap in fakes; the hub, SMS sender, and relay
// client are concrete infrastructure.
type Deps struct {
	Complaints ComplaintService
	Stats      StatsService
	Lifecycle  LifecycleService
	Intake     IntakeService
	Auth       AuthService
	Bot        BotEngine

	Sessions    *middleware.SessionStore
	Hub         *notify.Hub
	SMSSender   *sms.Sender
	Relay       *relay.Client
	RelaySecret string
}

// Handlers groups the HTTP endpoints for complaints, lifecycle mutations,
// intake webhooks, auth, export, and the event stream.
type Handlers struct {
	deps Deps
}

// New constructs a Handlers instance bound to the given dependencies.
func New(d Deps) *Handlers {
	return &Handlers{deps: d}
}

//
// DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// ComplaintListResponse is the paginated unified complaint list.
type ComplaintListResponse struct {
	Data       []domain.Complaint `json:"data"`
	Pagination Pagination         `json:"pagination"`
}

// parseListFilters reads the shared filter query parameters.
func parseListFilters(c *gin.Context) services.Filters {
	f := services.Filters{
		Status:    c.Query("status"),
		Priority:  c.Query("priority"),
		IssueType: c.Query("type"),
		Search:    c.Query("search"),
	}
	if v := c.Query("from"); v != "" {
		if ts, err := time.Parse("2006-01-02", v); err == nil {
			f.From = &ts
		}
	}
	if v := c.Query("to"); v != "" {
		if ts, err := time.Parse("2006-01-02", v); err == nil {
			// Inclusive upper bound: end of the named day.
			end := ts.Add(24*time.Hour - time.Nanosecond)
			f.To = &end
		}
	}
	return f
}

// ListComplaints handles GET /api/complaints.
//
// Query: status, priority, type, search, from, to (YYYY-MM-DD), page,
// page_size. The aggregate is computed in full and paginated in memory:
// triage order spans three tables, so the slice is cheap relative to the
// per-family reads.
func (h *Handlers) ListComplaints(c *gin.Context) {
	page := utils.AtoiDefault(c.Query("page"), 1)
	if page < 1 {
		page = 1
	}
	size := utils.AtoiDefault(c.Query("page_size"), 20)
	if size < 1 || size > 100 {
		size = 20
	}

	all := h.deps.Complaints.Aggregate(c.Request.Context(), parseListFilters(c))

	total := len(all)
	totalPages := (total + size - 1) / size
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	ok(c, http.StatusOK, ComplaintListResponse{
		Data: all[start:end],
		Pagination: Pagination{
			Page:       page,
			PageSize:   size,
			TotalItems: total,
			TotalPages: totalPages,
		},
	})
}

// ComplaintsWithLocation handles GET /api/complaints_with_location.
// Only rows carrying device coordinates are returned; the dashboard map
// plots them directly.
func (h *Handlers) ComplaintsWithLocation(c *gin.Context) {
	all := h.deps.Complaints.Aggregate(c.Request.Context(), parseListFilters(c))
	located := make([]domain.Complaint, 0, len(all))
	for _, row := range all {
		if row.Location != nil {
			located = append(located, row)
		}
	}
	ok(c, http.StatusOK, gin.H{"data": located, "count": len(located)})
}

// DashboardStats handles GET /api/dashboard_stats.
func (h *Handlers) DashboardStats(c *gin.Context) {
	ok(c, http.StatusOK, h.deps.Stats.Snapshot(c.Request.Context()))
}

// ViewComplaint handles GET /view/:family/:id with the full description.
func (h *Handlers) ViewComplaint(c *gin.Context) {
	family, id, valid := familyAndID(c)
	if !valid {
		return
	}
	row, err := h.deps.Complaints.Get(c.Request.Context(), family, id)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, row)
}

// familyAndID parses the :family/:id route pair shared by the detail and
// mutation endpoints. On failure it writes the 400 itself and returns
// valid=false.
func familyAndID(c *gin.Context) (domain.Family, uint, bool) {
	family, okf := domain.ParseFamily(c.Param("family"))
	if !okf {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unknown complaint family")
		return "", 0, false
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid record id")
		return "", 0, false
	}
	return family, uint(id), true
}
