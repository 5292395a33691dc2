package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet-maintenance-backend/internal/followup"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GeneratePlanning replaces the plan of a year.
func (h *Handler) GeneratePlanning(c *gin.Context) {
	year, ok := yearParam(c)
	if !ok {
		return
	}
	res, err := h.engine.GeneratePlanning(c.Request.Context(), year)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"year": year, "count": res.Count})
}

// GetPlan returns a page of the plan matrix.
func (h *Handler) GetPlan(c *gin.Context) {
	year, ok := yearParam(c)
	if !ok {
		return
	}
	var q followup.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page, err := h.engine.GetPlan(c.Request.Context(), year, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// ListPlanRows returns the stored plan rows of a year.
func (h *Handler) ListPlanRows(c *gin.Context) {
	year, ok := yearParam(c)
	if !ok {
		return
	}
	rows, err := h.engine.ListPlanRows(c.Request.Context(), year)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// ClearPlan deletes the plan of a year.
func (h *Handler) ClearPlan(c *gin.Context) {
	year, ok := yearParam(c)
	if !ok {
		return
	}
	if err := h.engine.ClearPlan(c.Request.Context(), &year); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearAllPlans deletes the plans of every year.
func (h *Handler) ClearAllPlans(c *gin.Context) {
	if err := h.engine.ClearPlan(c.Request.Context(), nil); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportPlan downloads the plan matrix of a year.
func (h *Handler) ExportPlan(c *gin.Context) {
	h.exportXLSX(c, "planning", h.engine.ExportPlanXLSX)
}

// ExportFollowUp downloads the follow-up matrix of a year.
func (h *Handler) ExportFollowUp(c *gin.Context) {
	h.exportXLSX(c, "suivi", h.engine.ExportFollowUpXLSX)
}

func (h *Handler) exportXLSX(c *gin.Context, name string, write func(context.Context, int, io.Writer) error) {
	year, ok := yearParam(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := write(c.Request.Context(), year, &buf); err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-%d.xlsx"`, name, year))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// GetPlanGeneration reports the last planning run of a year.
func (h *Handler) GetPlanGeneration(c *gin.Context) {
	year, ok := yearParam(c)
	if !ok {
		return
	}
	gen, err := h.engine.PlanGeneration(c.Request.Context(), year)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gen)
}
