package api

import (
	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"fleet-maintenance-backend/config"
	"fleet-maintenance-backend/internal/engine"
	"fleet-maintenance-backend/internal/mw"
	"fleet-maintenance-backend/internal/store"
)

// NewRouter creates and configures a new Gin router. Reference data GETs
// go through responses, which the engine flushes on every reference edit.
func NewRouter(svc *engine.Service, s store.Store, webpushOptions *webpush.Options, cfg config.ServerConfig, responses *mw.ResponseCache) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(svc, s, webpushOptions, cfg.MaxUploadMB)
	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)
	caching := responses.Handler()

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/operations", caching, handler.GetOperations)
		api.GET("/rules", caching, handler.ListIntervalRules)
		api.GET("/rules/schema", caching, handler.GetRuleSchema)
		api.PUT("/rules/:operation", handler.PutIntervalRule)
		api.GET("/category-rules", caching, handler.ListCategoryRules)
		api.PUT("/category-rules", handler.PutCategoryRule)
		api.POST("/category-rules/seed", handler.SeedCategoryRules)
		api.POST("/import", handler.ImportWorkbook)

		api.POST("/history/consolidate", handler.ConsolidateHistory)
		api.GET("/history/:matricule", handler.GetEquipmentHistory)
		api.GET("/generations/history", handler.GetHistoryGeneration)
		api.GET("/generations/plan/:year", handler.GetPlanGeneration)

		api.POST("/planning/:year", handler.GeneratePlanning)
		api.GET("/planning/:year", handler.GetPlan)
		api.GET("/planning/:year/rows", handler.ListPlanRows)
		api.GET("/planning/:year/export", handler.ExportPlan)
		api.DELETE("/planning/:year", handler.ClearPlan)
		api.DELETE("/planning", handler.ClearAllPlans)

		api.GET("/followup/:year", handler.GetFollowUp)
		api.GET("/followup/:year/export", handler.ExportFollowUp)
		api.GET("/statistics/:year", handler.GetStatistics)
		api.GET("/alerts", handler.GetAlerts)
		api.POST("/alerts/dispatch", handler.DispatchAlerts)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
