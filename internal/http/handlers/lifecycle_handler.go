// Operator mutation endpoints.
//
// This file exposes the session-guarded lifecycle mutations:
//   - POST /update_status/:family/:id    body {"status": "..."}
//   - POST /api/bulk_update_status       body {"status", "complaints"}
//   - POST /hide_complaint/:family/:id   (and /delete_complaint alias)
//   - POST /assign_job_order/:family/:id
//
// All mutations answer with the {"success": bool} envelope.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ileco-one/triage-backend/internal/domain"
	"github.com/ileco-one/triage-backend/internal/services"
)

// UpdateStatusRequest is the JSON payload for a status change.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required" example:"IN_PROGRESS"`
}

// UpdateStatus handles POST /update_status/:family/:id.
func (h *Handlers) UpdateStatus(c *gin.Context) {
	family, id, valid := familyAndID(c)
	if !valid {
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status is required")
		return
	}
	if err := h.deps.Lifecycle.UpdateStatus(c.Request.Context(), family, id, req.Status); err != nil {
		failService(c, err)
		return
	}
	done(c, gin.H{"status": req.Status})
}

// BulkUpdateItem addresses one record inside a bulk status change.
type BulkUpdateItem struct {
	Family   string `json:"family"`
	RecordID uint   `json:"record_id"`
}

// BulkUpdateStatusRequest is the JSON payload for a bulk status change.
type BulkUpdateStatusRequest struct {
	Status     string           `json:"status" binding:"required"`
	Complaints []BulkUpdateItem `json:"complaints" binding:"required,min=1"`
}

// BulkUpdateStatus handles POST /api/bulk_update_status. Every addressed
// record goes through the same transition path as a single update.
// Unknown families and missing records are skipped; the response reports
// how many rows actually changed. An invalid status value rejects the
// whole batch.
func (h *Handlers) BulkUpdateStatus(c *gin.Context) {
	var req BulkUpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status and complaints are required")
		return
	}
	updated := 0
	for _, item := range req.Complaints {
		family, ok := domain.ParseFamily(item.Family)
		if !ok {
			continue
		}
		if err := h.deps.Lifecycle.UpdateStatus(c.Request.Context(), family, item.RecordID, req.Status); err != nil {
			if errors.Is(err, services.ErrNotFound) {
				continue
			}
			failService(c, err)
			return
		}
		updated++
	}
	done(c, gin.H{"updated_count": updated})
}

// HideComplaint handles POST /hide_complaint/:family/:id. The record is
// soft-deleted: excluded from every list but kept in its table. The
// /delete_complaint route is an alias kept for older dashboard builds.
func (h *Handlers) HideComplaint(c *gin.Context) {
	family, id, valid := familyAndID(c)
	if !valid {
		return
	}
	if err := h.deps.Lifecycle.Hide(c.Request.Context(), family, id); err != nil {
		failService(c, err)
		return
	}
	done(c, nil)
}

// AssignJobOrder handles POST /assign_job_order/:family/:id.
//
// The job order is committed to its own store before the complaint is
// linked. When the link write fails the order still exists, so the
// response carries the order id alongside the error for reconciliation.
func (h *Handlers) AssignJobOrder(c *gin.Context) {
	family, id, valid := familyAndID(c)
	if !valid {
		return
	}
	orderID, err := h.deps.Lifecycle.AssignJobOrder(c.Request.Context(), family, id)
	if err != nil {
		if orderID != "" && !errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success":      false,
				"code":         ErrCodeInternal,
				"error":        "job order created but complaint link failed",
				"job_order_id": orderID,
			})
			return
		}
		failService(c, err)
		return
	}
	done(c, gin.H{"job_order_id": orderID})
}
