package repositories

import (
	"time"

	"github.com/qsights/analytics-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

// ResponseFilters is the single filter predicate applied to the Response base
// set of every analytics sub-metric. A nil field means "no constraint".
type ResponseFilters struct {
	DateFrom      *time.Time             `json:"date_from"`
	DateTo        *time.Time             `json:"date_to"`
	Status        *models.ResponseStatus `json:"status" validate:"omitempty,oneof=in_progress submitted"`
	ParticipantID *uint                  `json:"participant_id"`
}

// IsZero reports whether no constraint is set.
func (f ResponseFilters) IsZero() bool {
	return f.DateFrom == nil && f.DateTo == nil && f.Status == nil && f.ParticipantID == nil
}

type InsightFilters struct {
	Type     *models.InsightType     `json:"insight_type"`
	Priority *models.InsightPriority `json:"priority"`
	Limit    int                     `json:"limit"`
	Offset   int                     `json:"offset"`
}

// ===== AGGREGATE REPOSITORY =====

// Repository bundles the data-access interfaces the analytics core consumes.
// Response, Answer and Question access is read-only; only the insight cache
// is written by this service.
type Repository interface {
	Activity() ActivityRepository
	Response() ResponseRepository
	Insight() InsightRepository
}
