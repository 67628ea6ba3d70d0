// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, sessions, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/ileco-one/triage-backend/internal/bot"
	"github.com/ileco-one/triage-backend/internal/config"
	"github.com/ileco-one/triage-backend/internal/domain"
	"github.com/ileco-one/triage-backend/internal/http/handlers"
	"github.com/ileco-one/triage-backend/internal/http/middleware"
	"github.com/ileco-one/triage-backend/internal/notify"
	"github.com/ileco-one/triage-backend/internal/relay"
	"github.com/ileco-one/triage-backend/internal/repo"
	"github.com/ileco-one/triage-backend/internal/services"
	"github.com/ileco-one/triage-backend/internal/sms"
)

// complaintRepoShim adapts the repository free functions to the
// services.ComplaintRepo interface expected by the Aggregator. This keeps
// services decoupled from the concrete repo package while reusing
// existing functions.
type complaintRepoShim struct{}

func (complaintRepoShim) ListOutageReports(ctx context.Context, db *gorm.DB, f repo.ComplaintFilters) ([]domain.OutageReport, error) {
	return repo.ListOutageReports(ctx, db, f)
}

func (complaintRepoShim) ListMeterConcerns(ctx context.Context, db *gorm.DB, f repo.ComplaintFilters) ([]domain.MeterConcern, error) {
	return repo.ListMeterConcerns(ctx, db, f)
}

func (complaintRepoShim) ListAgentRequests(ctx context.Context, db *gorm.DB, f repo.ComplaintFilters) ([]domain.AgentQueueRequest, error) {
	return repo.ListAgentRequests(ctx, db, f)
}

func (complaintRepoShim) GetOutageReport(ctx context.Context, db *gorm.DB, id uint) (*domain.OutageReport, error) {
	return repo.GetOutageReport(ctx, db, id)
}

func (complaintRepoShim) GetMeterConcern(ctx context.Context, db *gorm.DB, id uint) (*domain.MeterConcern, error) {
	return repo.GetMeterConcern(ctx, db, id)
}

func (complaintRepoShim) GetAgentRequest(ctx context.Context, db *gorm.DB, id uint) (*domain.AgentQueueRequest, error) {
	return repo.GetAgentRequest(ctx, db, id)
}

// ComplaintStore returns the repo-backed services.ComplaintRepo the
// router wires into its Aggregator. cmd/server uses it to build the
// aggregator behind the periodic stats broadcaster.
func ComplaintStore() services.ComplaintRepo { return complaintRepoShim{} }

// intakeRepoShim adapts repo functions to services.IntakeRepo.
type intakeRepoShim struct{}

func (intakeRepoShim) CreateOutageReport(ctx context.Context, db *gorm.DB, r *domain.OutageReport) error {
	return repo.CreateOutageReport(ctx, db, r)
}

func (intakeRepoShim) CreateMeterConcern(ctx context.Context, db *gorm.DB, m *domain.MeterConcern) error {
	return repo.CreateMeterConcern(ctx, db, m)
}

func (intakeRepoShim) CreateAgentRequest(ctx context.Context, db *gorm.DB, a *domain.AgentQueueRequest) error {
	return repo.CreateAgentRequest(ctx, db, a)
}

func (intakeRepoShim) SetOutageRef(ctx context.Context, db *gorm.DB, id uint, ref string) error {
	return repo.SetOutageRef(ctx, db, id, ref)
}

func (intakeRepoShim) LatestOutageForAddressOn(ctx context.Context, db *gorm.DB, address string, day time.Time) (*domain.OutageReport, error) {
	return repo.LatestOutageForAddressOn(ctx, db, address, day)
}

func (intakeRepoShim) QueuePosition(ctx context.Context, db *gorm.DB, id uint) (int, error) {
	return repo.QueuePosition(ctx, db, id)
}

func (intakeRepoShim) MarkResumed(ctx context.Context, db *gorm.DB, id uint) error {
	return repo.MarkResumed(ctx, db, id)
}

// lifecycleRepoShim adapts repo functions to services.LifecycleRepo.
type lifecycleRepoShim struct{}

func (lifecycleRepoShim) GetStatus(ctx context.Context, db *gorm.DB, f domain.Family, id uint) (string, error) {
	return repo.GetStatus(ctx, db, f, id)
}

func (lifecycleRepoShim) UpdateStatus(ctx context.Context, db *gorm.DB, f domain.Family, id uint, status string) error {
	return repo.UpdateStatus(ctx, db, f, id, status)
}

func (lifecycleRepoShim) SetHidden(ctx context.Context, db *gorm.DB, f domain.Family, id uint) error {
	return repo.SetHidden(ctx, db, f, id)
}

func (lifecycleRepoShim) LinkJobOrder(ctx context.Context, db *gorm.DB, f domain.Family, id uint, jobOrderID string) error {
	return repo.LinkJobOrder(ctx, db, f, id, jobOrderID)
}

func (lifecycleRepoShim) GetOutageReport(ctx context.Context, db *gorm.DB, id uint) (*domain.OutageReport, error) {
	return repo.GetOutageReport(ctx, db, id)
}

func (lifecycleRepoShim) GetMeterConcern(ctx context.Context, db *gorm.DB, id uint) (*domain.MeterConcern, error) {
	return repo.GetMeterConcern(ctx, db, id)
}

func (lifecycleRepoShim) GetAgentRequest(ctx context.Context, db *gorm.DB, id uint) (*domain.AgentQueueRequest, error) {
	return repo.GetAgentRequest(ctx, db, id)
}

// jobOrderRepoShim adapts repo functions to services.JobOrderRepo.
type jobOrderRepoShim struct{}

func (jobOrderRepoShim) CreateJobOrder(ctx context.Context, db *gorm.DB, jo *domain.JobOrder) error {
	return repo.CreateJobOrder(ctx, db, jo)
}

// userRepoShim adapts repo functions to services.UserRepo.
type userRepoShim struct{}

func (userRepoShim) GetUserByUsername(ctx context.Context, db *gorm.DB, username string) (*domain.User, error) {
	return repo.GetUserByUsername(ctx, db, username)
}

func (userRepoShim) RecordFailedLogin(ctx context.Context, db *gorm.DB, username string, threshold int, lockFor time.Duration) error {
	return repo.RecordFailedLogin(ctx, db, username, threshold, lockFor)
}

func (userRepoShim) ResetLoginState(ctx context.Context, db *gorm.DB, username string) error {
	return repo.ResetLoginState(ctx, db, username)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It wires the two stores, the notification hub, and the outbound
// SMS/relay clients into the services and mounts the public and
// session-guarded route groups.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Per-request deadline (bounds store waits)
//  7. Metrics
//  8. Rate limiter (per user/IP)
//  9. CORS and Security headers
func RegisterRoutes(r *gin.Engine, complaintDB, jobOrderDB *gorm.DB, hub *notify.Hub, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	if cfg.OTEL.Enabled {
		r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	}

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			"X-Relay-Secret",
		},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Per-request deadline so pool exhaustion surfaces as a store
	// error instead of a hang. The SSE stream is exempt: it stays open
	// until the client goes away.
	r.Use(func(c *gin.Context) {
		if c.FullPath() == "/api/events" {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Token-bucket rate limiter per user/IP. Gateway routes are
	// flagged for bypass first: the SMS provider and the sibling node
	// retry on 429 and would storm a throttled instance.
	r.Use(func(c *gin.Context) {
		switch c.FullPath() {
		case "/api/sms/webhook", "/api/webhook/new_complaint":
			middleware.MarkRateBypass(c)
		}
		c.Next()
	})
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 9) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Relay-Secret"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "Content-Disposition"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Relay-Secret"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Dependency injection: services ← repo/db/hub
	agg := services.NewAggregator(complaintDB, complaintRepoShim{})
	stats := services.NewStatsService(agg)

	lifecycle := services.NewLifecycleService(complaintDB, jobOrderDB, lifecycleRepoShim{}, jobOrderRepoShim{}, hub)
	lifecycle.Stats = stats

	intake := services.NewIntakeService(complaintDB, intakeRepoShim{}, hub)
	intake.Lifecycle = lifecycle

	auth := services.NewAuthService(complaintDB, userRepoShim{}, cfg.Auth.LockoutThreshold, cfg.Auth.LockoutDuration)

	engine := bot.NewEngine(intake, func(ctx context.Context, ref string) (*domain.OutageReport, error) {
		return repo.GetOutageReportByRef(ctx, complaintDB, ref)
	})

	sessions := middleware.NewSessionStore(cfg.Auth.SessionTTL)

	h := handlers.New(handlers.Deps{
		Complaints:  agg,
		Stats:       stats,
		Lifecycle:   lifecycle,
		Intake:      intake,
		Auth:        auth,
		Bot:         engine,
		Sessions:    sessions,
		Hub:         hub,
		SMSSender:   sms.NewSender(cfg.SMS.BaseURL, cfg.SMS.APIKey, cfg.SMS.Sender),
		Relay:       relay.NewClient(cfg.Relay.BaseURL, cfg.Relay.Secret),
		RelaySecret: cfg.Relay.Secret,
	})

	// Public intake and bot surface
	r.POST("/login", h.Login)
	r.GET("/logout", h.Logout)
	r.POST("/api/submit_power_outage", h.SubmitPublicOutage)
	r.POST("/api/sms/webhook", h.SMSWebhook)
	r.POST("/api/webhook/new_complaint", h.RelayWebhook)
	r.POST("/bot/action/:name", h.BotAction)
	r.POST("/bot/validate/:slot", h.BotValidate)

	// Dashboard surface (session-guarded)
	guarded := r.Group("", middleware.RequireSession(sessions))
	{
		guarded.GET("/api/complaints", h.ListComplaints)
		guarded.GET("/api/complaints_with_location", h.ComplaintsWithLocation)
		guarded.GET("/api/dashboard_stats", h.DashboardStats)
		guarded.GET("/view/:family/:id", h.ViewComplaint)

		guarded.POST("/update_status/:family/:id", h.UpdateStatus)
		guarded.POST("/api/bulk_update_status", h.BulkUpdateStatus)
		guarded.POST("/hide_complaint/:family/:id", h.HideComplaint)
		guarded.POST("/delete_complaint/:family/:id", h.HideComplaint) // legacy alias

		guarded.POST("/assign_job_order/:family/:id", h.AssignJobOrder)

		guarded.GET("/api/export_csv", h.ExportCSV)
		guarded.GET("/api/export_excel", h.ExportExcel)

		guarded.GET("/api/events", h.Events)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
