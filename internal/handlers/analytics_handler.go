package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/qsights/analytics-service/internal/services"
	"github.com/qsights/analytics-service/internal/utils"
)

type AnalyticsHandler struct {
	BaseHandler
	analytics services.AnalyticsService
	export    services.ReportExportService
}

func NewAnalyticsHandler(analytics services.AnalyticsService, export services.ReportExportService, logger utils.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		BaseHandler: NewBaseHandler(logger),
		analytics:   analytics,
		export:      export,
	}
}

// GetActivityAnalytics handles GET /activities/:id/analytics
func (h *AnalyticsHandler) GetActivityAnalytics(c *gin.Context) {
	activityID, ok := ParseUintParam(c, "id")
	if !ok {
		return
	}
	filters, ok := ParseResponseFilters(c)
	if !ok {
		return
	}

	analytics, err := h.analytics.GetActivityAnalytics(c.Request.Context(), activityID, filters)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, analytics)
}

// GetQuestionAnalytics handles GET /activities/:id/questions/:question_id/analytics
func (h *AnalyticsHandler) GetQuestionAnalytics(c *gin.Context) {
	activityID, ok := ParseUintParam(c, "id")
	if !ok {
		return
	}
	questionID, ok := ParseUintParam(c, "question_id")
	if !ok {
		return
	}
	filters, ok := ParseResponseFilters(c)
	if !ok {
		return
	}

	analytics, err := h.analytics.GetQuestionAnalytics(c.Request.Context(), activityID, questionID, filters)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, analytics)
}

// ExportActivityAnalytics handles GET /activities/:id/analytics/export
func (h *AnalyticsHandler) ExportActivityAnalytics(c *gin.Context) {
	activityID, ok := ParseUintParam(c, "id")
	if !ok {
		return
	}
	filters, ok := ParseResponseFilters(c)
	if !ok {
		return
	}

	data, err := h.export.ExportActivityAnalytics(c.Request.Context(), activityID, filters)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	filename := fmt.Sprintf("activity-%d-analytics.xlsx", activityID)
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
