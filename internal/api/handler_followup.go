package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet-maintenance-backend/internal/followup"
)

// GetFollowUp returns a page of the follow-up matrix.
func (h *Handler) GetFollowUp(c *gin.Context) {
	year, ok := yearParam(c)
	if !ok {
		return
	}
	var q followup.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page, err := h.engine.GetFollowUp(c.Request.Context(), year, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetStatistics returns the planned and realized counts of a year.
func (h *Handler) GetStatistics(c *gin.Context) {
	year, ok := yearParam(c)
	if !ok {
		return
	}
	stats, err := h.engine.GetStatistics(c.Request.Context(), year)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

type alertsQuery struct {
	Year       int `form:"year"`
	WindowDays int `form:"window_days"`
}

// GetAlerts lists unrealized interventions that are due soon or overdue.
func (h *Handler) GetAlerts(c *gin.Context) {
	var q alertsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	alerts, err := h.engine.Alerts(c.Request.Context(), q.Year, q.WindowDays)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, alerts)
}

// DispatchAlerts pushes the current alerts to subscribers.
func (h *Handler) DispatchAlerts(c *gin.Context) {
	var q alertsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	n, err := h.engine.DispatchAlerts(c.Request.Context(), q.WindowDays)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"equipment": n})
}
