package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/qsights/analytics-service/internal/services"
	"github.com/qsights/analytics-service/internal/utils"
)

type InsightsHandler struct {
	BaseHandler
	insights services.AIInsightsService
}

func NewInsightsHandler(insights services.AIInsightsService, logger utils.Logger) *InsightsHandler {
	return &InsightsHandler{
		BaseHandler: NewBaseHandler(logger),
		insights:    insights,
	}
}

// GetActivityInsights handles GET /activities/:id/insights?use_cache=
func (h *InsightsHandler) GetActivityInsights(c *gin.Context) {
	activityID, ok := ParseUintParam(c, "id")
	if !ok {
		return
	}

	useCache := c.DefaultQuery("use_cache", "true") != "false"

	insights, err := h.insights.GenerateInsightsForActivity(c.Request.Context(), activityID, useCache)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"insights": insights, "count": len(insights)})
}

// ClearExpiredInsights handles DELETE /insights/expired
func (h *InsightsHandler) ClearExpiredInsights(c *gin.Context) {
	deleted, err := h.insights.ClearExpiredInsights(c.Request.Context())
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Expired insights cleared",
		Data:    gin.H{"deleted": deleted},
	})
}
