package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet-maintenance-backend/internal/model"
)

// GetOperations lists the maintenance catalog.
func (h *Handler) GetOperations(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Operations())
}

// ListIntervalRules lists the interval rules.
func (h *Handler) ListIntervalRules(c *gin.Context) {
	list, err := h.engine.ListIntervalRules(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetRuleSchema returns the column layout the rules were imported with.
func (h *Handler) GetRuleSchema(c *gin.Context) {
	schema, err := h.engine.RuleSchema(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, schema)
}

// PutIntervalRule replaces the rule of one operation.
func (h *Handler) PutIntervalRule(c *gin.Context) {
	var rule model.IntervalRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rule.ID = 0
	rule.Operation = c.Param("operation")
	if err := h.engine.SaveIntervalRule(c.Request.Context(), &rule); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

// ListCategoryRules lists the category rules.
func (h *Handler) ListCategoryRules(c *gin.Context) {
	list, err := h.engine.ListCategoryRules(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

type putCategoryRuleRequest struct {
	Category  string `json:"category" binding:"required"`
	Operation string `json:"operation" binding:"required"`
	Active    *bool  `json:"is_active" binding:"required"`
}

// PutCategoryRule switches one operation on or off for a category.
func (h *Handler) PutCategoryRule(c *gin.Context) {
	var req putCategoryRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rule := model.CategoryRule{Category: req.Category, Operation: req.Operation, Active: *req.Active}
	if err := h.engine.SaveCategoryRule(c.Request.Context(), &rule); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

// SeedCategoryRules adds the default category rules that are missing.
func (h *Handler) SeedCategoryRules(c *gin.Context) {
	added, err := h.engine.SeedCategoryRules(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"added": added})
}

// ImportWorkbook loads reference data from an uploaded XLSX file.
func (h *Handler) ImportWorkbook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	summary, err := h.engine.ImportWorkbook(c.Request.Context(), f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
