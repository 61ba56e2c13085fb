package handlers

import (
	"net/http"
	"strconv"
	"time"

	"ai-config-console/internal/service/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DashboardHandler serves aggregated generation metrics.
type DashboardHandler struct {
	metrics *metrics.Service
	logger  *zap.Logger
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(metricsService *metrics.Service, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		metrics: metricsService,
		logger:  logger,
	}
}

// timeRange reads the start/end query params, defaulting to the last 30 days.
func timeRange(c *gin.Context) (time.Time, time.Time, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -30)

	if v := c.Query("start"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return start, end, err
		}
		start = parsed
	}
	if v := c.Query("end"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return start, end, err
		}
		end = parsed
	}

	return start, end, nil
}

// Summary returns totals over a time range.
func (h *DashboardHandler) Summary(c *gin.Context) {
	start, end, err := timeRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start and end must be RFC3339 timestamps"})
		return
	}

	summary, err := h.metrics.GetSummary(c.Request.Context(), start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Daily returns per-day usage for the last N days (default 7).
func (h *DashboardHandler) Daily(c *gin.Context) {
	days := 7
	if v := c.Query("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
			return
		}
		days = parsed
	}

	usage, err := h.metrics.GetDailyUsage(c.Request.Context(), days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": usage})
}

// ByModel returns usage grouped by model over a time range.
func (h *DashboardHandler) ByModel(c *gin.Context) {
	start, end, err := timeRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start and end must be RFC3339 timestamps"})
		return
	}

	usage, err := h.metrics.GetUsageByModel(c.Request.Context(), start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": usage})
}
