// Bulk export endpoints.
//
//   - GET /api/export_csv
//   - GET /api/export_excel
//
// Both honor the same filter query parameters as GET /api/complaints and
// export the full filtered aggregate, not the current page.
package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ileco-one/triage-backend/internal/export"
)

// ExportCSV handles GET /api/export_csv.
func (h *Handlers) ExportCSV(c *gin.Context) {
	rows := h.deps.Complaints.Aggregate(c.Request.Context(), parseListFilters(c))

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportName("csv")))
	if err := export.WriteCSV(c.Writer, rows); err != nil {
		// Headers are already out; all we can do is log via fail's path.
		fail(c, http.StatusInternalServerError, ErrCodeExportFailed, "csv export failed")
	}
}

// ExportExcel handles GET /api/export_excel.
func (h *Handlers) ExportExcel(c *gin.Context) {
	rows := h.deps.Complaints.Aggregate(c.Request.Context(), parseListFilters(c))

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportName("xlsx")))
	if err := export.WriteExcel(c.Writer, rows); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeExportFailed, "excel export failed")
	}
}

func exportName(ext string) string {
	return fmt.Sprintf("complaints_%s.%s", time.Now().Format("20060102"), ext)
}
