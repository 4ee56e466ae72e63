package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/goleads/internal/campaign"
)

// CampaignsHandler handles campaign-related HTTP requests.
type CampaignsHandler struct {
	scheduler        *campaign.Scheduler
	defaultPlatforms []string
	defaultInterval  time.Duration
}

// NewCampaignsHandler creates a new campaigns handler. The defaults are
// applied to create requests that omit platforms or interval.
func NewCampaignsHandler(sched *campaign.Scheduler, defaultPlatforms []string, defaultInterval time.Duration) *CampaignsHandler {
	return &CampaignsHandler{
		scheduler:        sched,
		defaultPlatforms: defaultPlatforms,
		defaultInterval:  defaultInterval,
	}
}

// CreateCampaign handles POST /api/campaigns
func (h *CampaignsHandler) CreateCampaign(c *gin.Context) {
	var req CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	platforms := req.Platforms
	if len(platforms) == 0 {
		platforms = h.defaultPlatforms
	}

	interval := h.defaultInterval
	if req.Interval != "" {
		parsed, err := time.ParseDuration(req.Interval)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid interval: " + err.Error(),
			})
			return
		}
		interval = parsed
	}

	created, err := h.scheduler.Start(c.Request.Context(), req.ID, req.Targets, platforms, interval)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, campaign.ErrAlreadyRunning) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, created)
}

// ListCampaigns handles GET /api/campaigns
func (h *CampaignsHandler) ListCampaigns(c *gin.Context) {
	campaigns := h.scheduler.List()
	c.JSON(http.StatusOK, CampaignsListResponse{
		Campaigns: campaigns,
		Total:     len(campaigns),
	})
}

// GetCampaign handles GET /api/campaigns/:id
func (h *CampaignsHandler) GetCampaign(c *gin.Context) {
	id := c.Param("id")

	status, err := h.scheduler.Status(id)
	if err != nil {
		if errors.Is(err, campaign.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Campaign not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, status)
}

// StopCampaign handles POST /api/campaigns/:id/stop
func (h *CampaignsHandler) StopCampaign(c *gin.Context) {
	id := c.Param("id")

	stopped, err := h.scheduler.Stop(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, campaign.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Campaign not found",
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, stopped)
}
