package api

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/goleads/internal/domain"
	"github.com/jonesrussell/goleads/internal/leads"
)

// LeadsHandler handles lead-related HTTP requests.
type LeadsHandler struct {
	aggregator *leads.Aggregator
}

// NewLeadsHandler creates a new leads handler.
func NewLeadsHandler(aggregator *leads.Aggregator) *LeadsHandler {
	return &LeadsHandler{aggregator: aggregator}
}

// ListLeads handles GET /api/leads
func (h *LeadsHandler) ListLeads(c *gin.Context) {
	all := h.aggregator.Export()

	// Optional filters
	target := c.Query("target")
	platform := c.Query("platform")
	if target != "" || platform != "" {
		filtered := make([]domain.Lead, 0, len(all))
		for _, lead := range all {
			if target != "" && lead.Target != target {
				continue
			}
			if platform != "" && lead.Platform != platform {
				continue
			}
			filtered = append(filtered, lead)
		}
		all = filtered
	}

	c.JSON(http.StatusOK, LeadsListResponse{
		Leads: all,
		Total: len(all),
	})
}

// ExportLeads handles GET /api/leads/export
func (h *LeadsHandler) ExportLeads(c *gin.Context) {
	rows := h.aggregator.Export()

	var buf bytes.Buffer
	if err := leads.WriteCSV(&buf, rows); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to export leads: " + err.Error(),
		})
		return
	}

	for _, lead := range rows {
		h.aggregator.MarkStatus(c.Request.Context(), lead.ID, domain.LeadExported)
	}

	filename := "leads-" + time.Now().UTC().Format("20060102-150405") + ".csv"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// GetStatistics handles GET /api/statistics
func (h *LeadsHandler) GetStatistics(c *gin.Context) {
	c.JSON(http.StatusOK, h.aggregator.Stats())
}
