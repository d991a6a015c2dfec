package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	apperrors "github.com/qsights/analytics-service/internal/errors"
	"github.com/qsights/analytics-service/internal/models"
	"github.com/qsights/analytics-service/internal/repositories"
	"github.com/qsights/analytics-service/internal/utils"
)

var filterValidator = utils.NewValidator()

// ParseUintParam parses a numeric path parameter; on failure it writes the
// error response and returns ok=false.
func ParseUintParam(c *gin.Context, param string) (uint, bool) {
	idStr := c.Param(param)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "must be a positive integer",
		})
		return 0, false
	}
	return uint(id), true
}

// ParseResponseFilters reads the shared filter predicate from query params.
// Dates accept RFC3339 or plain YYYY-MM-DD.
func ParseResponseFilters(c *gin.Context) (repositories.ResponseFilters, bool) {
	var filters repositories.ResponseFilters

	if raw := c.Query("date_from"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid date_from", Details: err.Error()})
			return filters, false
		}
		filters.DateFrom = &t
	}
	if raw := c.Query("date_to"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid date_to", Details: err.Error()})
			return filters, false
		}
		filters.DateTo = &t
	}
	if raw := c.Query("status"); raw != "" {
		status := models.ResponseStatus(raw)
		filters.Status = &status
	}
	if raw := c.Query("participant_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid participant_id", Details: "must be a positive integer"})
			return filters, false
		}
		participantID := uint(id)
		filters.ParticipantID = &participantID
	}

	if err := filterValidator.ValidateStruct(filters); err != nil {
		verrs := apperrors.FromValidator(err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed", Details: verrs.Error()})
		return filters, false
	}

	return filters, true
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
