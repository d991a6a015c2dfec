package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/qsights/analytics-service/internal/services"
	"github.com/qsights/analytics-service/internal/utils"
)

type HandlerManager struct {
	analyticsHandler *AnalyticsHandler
	insightsHandler  *InsightsHandler
}

func NewHandlerManager(
	analytics services.AnalyticsService,
	insights services.AIInsightsService,
	export services.ReportExportService,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		analyticsHandler: NewAnalyticsHandler(analytics, export, logger),
		insightsHandler:  NewInsightsHandler(insights, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		activities := v1.Group("/activities")
		{
			activities.GET("/:id/analytics", hm.analyticsHandler.GetActivityAnalytics)
			activities.GET("/:id/analytics/export", hm.analyticsHandler.ExportActivityAnalytics)
			activities.GET("/:id/questions/:question_id/analytics", hm.analyticsHandler.GetQuestionAnalytics)
			activities.GET("/:id/insights", hm.insightsHandler.GetActivityInsights)
		}

		insights := v1.Group("/insights")
		{
			insights.DELETE("/expired", hm.insightsHandler.ClearExpiredInsights)
		}
	}
}
