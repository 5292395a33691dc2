package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ConsolidateHistory rebuilds the history from the raw logs.
func (h *Handler) ConsolidateHistory(c *gin.Context) {
	report, err := h.engine.ConsolidateHistory(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetEquipmentHistory lists the history events of one equipment.
func (h *Handler) GetEquipmentHistory(c *gin.Context) {
	events, err := h.engine.EquipmentHistory(c.Request.Context(), c.Param("matricule"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// GetHistoryGeneration reports the last consolidation run.
func (h *Handler) GetHistoryGeneration(c *gin.Context) {
	gen, err := h.engine.HistoryGeneration(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gen)
}
