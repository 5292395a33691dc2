package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"fleet-maintenance-backend/internal/engine"
	"fleet-maintenance-backend/internal/importer"
	"fleet-maintenance-backend/internal/rules"
	"fleet-maintenance-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	engine  *engine.Service
	store   store.Store
	webpush *webpush.Options
	// maxUpload bounds workbook uploads, in bytes.
	maxUpload int64
}

// NewHandler creates a new API handler.
func NewHandler(svc *engine.Service, s store.Store, webpushOptions *webpush.Options, maxUploadMB int) *Handler {
	if maxUploadMB <= 0 {
		maxUploadMB = 32
	}
	return &Handler{
		engine:    svc,
		store:     s,
		webpush:   webpushOptions,
		maxUpload: int64(maxUploadMB) << 20,
	}
}

// statusOf maps engine errors onto HTTP statuses.
func statusOf(err error) int {
	switch {
	case errors.Is(err, engine.ErrInvalidYear),
		errors.Is(err, engine.ErrUnknownOperation),
		errors.Is(err, engine.ErrInvalidRule),
		errors.Is(err, importer.ErrInvalidWorkbook),
		errors.Is(err, importer.ErrNoSheets):
		return http.StatusBadRequest
	case errors.Is(err, rules.ErrNoOperationColumn):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrPushDisabled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusOf(err), gin.H{"error": err.Error()})
}

// yearParam reads the :year path parameter, answering 400 when malformed.
func yearParam(c *gin.Context) (int, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid year %q", c.Param("year"))})
		return 0, false
	}
	return year, true
}
