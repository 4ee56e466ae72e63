// Package api implements the HTTP API for the lead generation service.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonesrussell/goleads/internal/logger"
	"github.com/jonesrussell/goleads/internal/sse"
)

// RouterParams holds the collaborators the router needs.
type RouterParams struct {
	Logger    logger.Logger
	Campaigns *CampaignsHandler
	Leads     *LeadsHandler
	Broker    *sse.Broker
	Gatherer  prometheus.Gatherer
	// Targets and Platforms back GET /api/targets.
	Targets   []string
	Platforms []string
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(p RouterParams) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(p.Logger))
	router.Use(corsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if p.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{})))
	}

	apiGroup := router.Group("/api")

	apiGroup.POST("/campaigns", p.Campaigns.CreateCampaign)
	apiGroup.GET("/campaigns", p.Campaigns.ListCampaigns)
	apiGroup.GET("/campaigns/:id", p.Campaigns.GetCampaign)
	apiGroup.POST("/campaigns/:id/stop", p.Campaigns.StopCampaign)

	apiGroup.GET("/leads", p.Leads.ListLeads)
	apiGroup.GET("/leads/export", p.Leads.ExportLeads)
	apiGroup.GET("/statistics", p.Leads.GetStatistics)

	apiGroup.GET("/targets", func(c *gin.Context) {
		c.JSON(http.StatusOK, TargetsResponse{
			Targets:   p.Targets,
			Platforms: p.Platforms,
		})
	})

	if p.Broker != nil {
		apiGroup.GET("/events", sse.Handler(p.Broker, p.Logger))
	}

	return router
}

// loggingMiddleware logs each request with latency and status.
func loggingMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log.Debug("HTTP request",
			logger.String("method", c.Request.Method),
			logger.String("path", path),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("latency", time.Since(start)),
		)
	}
}

// corsMiddleware allows cross-origin requests from dashboard frontends.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
