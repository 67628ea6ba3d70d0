// Public intake endpoints.
//
// This file exposes the unauthenticated submission surface:
//   - POST /api/submit_power_outage   (public web form, JSON)
//   - POST /api/sms/webhook           (gateway form post, plain-text reply)
//   - POST /api/webhook/new_complaint (sibling-node sync, shared secret)
//
// Webhook handlers never surface internal errors to the remote gateway:
// the SMS endpoint always answers 200 with a text body so the gateway
// does not retry-storm a struggling store.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/ileco-one/triage-backend/internal/domain"
	"github.com/ileco-one/triage-backend/internal/services"
	"github.com/ileco-one/triage-backend/internal/sms"
)

// PublicOutageRequest is the public web form payload.
type PublicOutageRequest struct {
	FullName      string   `json:"full_name" binding:"required"`
	ContactNumber string   `json:"contact_number" binding:"required"`
	Email         string   `json:"email"`
	AccountNumber string   `json:"account_number"`
	Address       string   `json:"address" binding:"required"`
	Landmark      string   `json:"landmark"`
	Details       string   `json:"details" binding:"required"`
	IncidentType  string   `json:"incident_type"`
	AffectedArea  string   `json:"affected_area"`
	IncidentTime  string   `json:"incident_time"`
	Duration      string   `json:"duration"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	Accuracy      *float64 `json:"accuracy"`
}

// SubmitPublicOutage handles POST /api/submit_power_outage.
func (h *Handlers) SubmitPublicOutage(c *gin.Context) {
	var req PublicOutageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "full_name, contact_number, address and details are required")
		return
	}

	res, err := h.deps.Intake.SubmitPublicOutage(c.Request.Context(), services.PublicOutageSubmission{
		FullName:      req.FullName,
		ContactNumber: req.ContactNumber,
		Email:         req.Email,
		AccountNumber: req.AccountNumber,
		Address:       req.Address,
		Landmark:      req.Landmark,
		Details:       req.Details,
		IncidentType:  req.IncidentType,
		AffectedArea:  req.AffectedArea,
		IncidentTime:  req.IncidentTime,
		Duration:      req.Duration,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		Accuracy:      req.Accuracy,
	})
	if err != nil {
		failService(c, err)
		return
	}

	// Best-effort sync to the sibling node; a dead peer never fails the
	// submitter.
	if h.deps.Relay != nil && h.deps.Relay.Enabled() {
		h.deps.Relay.ForwardAsync(services.RelayedSubmission{
			Family:        domain.FamilyOutage,
			Name:          req.FullName,
			ContactNumber: req.ContactNumber,
			Address:       req.Address,
			Details:       req.Details,
			Priority:      res.Priority,
			Latitude:      req.Latitude,
			Longitude:     req.Longitude,
		})
	}

	done(c, gin.H{
		"report_id":    res.ReportID,
		"priority":     res.Priority,
		"job_order_id": res.JobOrderID,
	})
}

// SMSWebhook handles POST /api/sms/webhook (form-encoded From/Body/
// MessageSid from the gateway). The response body is the plain-text
// reply shown to the sender.
func (h *Handlers) SMSWebhook(c *gin.Context) {
	from := c.PostForm("From")
	body := c.PostForm("Body")
	sid := c.PostForm("MessageSid")

	report, err := sms.Parse(from, body)
	if err != nil {
		// Not addressed to us; stay silent so the gateway drops it.
		c.String(http.StatusOK, "")
		return
	}

	ref, err := h.deps.Intake.SubmitSMS(c.Request.Context(), services.SMSSubmission{
		From:      report.From,
		IssueType: report.IssueType,
		Name:      report.Name,
		Address:   report.Address,
		Contact:   report.Contact,
		Details:   report.Details,
	})
	if err != nil {
		log.Error().Err(err).Str("message_sid", sid).Msg("sms webhook: intake failed")
		c.String(http.StatusOK, "ILECO: We could not process your report right now. Please try again later or call our hotline.")
		return
	}

	reply := sms.Confirmation(report.IssueType, ref)
	if h.deps.SMSSender != nil {
		if serr := h.deps.SMSSender.Send(c.Request.Context(), report.From, reply); serr != nil {
			log.Warn().Err(serr).Str("to", report.From).Msg("sms webhook: confirmation send failed")
		}
	}
	c.String(http.StatusOK, reply)
}

// RelayWebhook handles POST /api/webhook/new_complaint from the sibling
// node. Requests must carry the shared secret; the endpoint is disabled
// entirely when no secret is configured.
func (h *Handlers) RelayWebhook(c *gin.Context) {
	if h.deps.RelaySecret == "" || c.GetHeader("X-Relay-Secret") != h.deps.RelaySecret {
		fail(c, http.StatusForbidden, ErrCodeForbidden, "relay secret mismatch")
		return
	}

	var req services.RelayedSubmission
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "malformed relay payload")
		return
	}

	id, err := h.deps.Intake.SubmitRelayed(c.Request.Context(), req)
	if err != nil {
		failService(c, err)
		return
	}
	done(c, gin.H{"record_id": id})
}
