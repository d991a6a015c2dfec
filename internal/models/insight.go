package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type InsightType string

const (
	InsightTrend             InsightType = "trend"
	InsightSentiment         InsightType = "sentiment"
	InsightAnomaly           InsightType = "anomaly"
	InsightCompletionPattern InsightType = "completion_pattern"
	InsightSummary           InsightType = "summary"
)

type InsightPriority string

const (
	PriorityLow      InsightPriority = "low"
	PriorityMedium   InsightPriority = "medium"
	PriorityHigh     InsightPriority = "high"
	PriorityCritical InsightPriority = "critical"
)

// AIInsightCache is one computed insight for an activity. Rows are append-only:
// created on generation, never updated, and physically removed only by the
// expired-row sweep. A row is valid while ExpiresAt is null or in the future.
type AIInsightCache struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	ActivityID  uint            `json:"activity_id" gorm:"not null;index"`
	QuestionID  *uint           `json:"question_id" gorm:"index"` // set only for per-question insights
	Type        InsightType     `json:"insight_type" gorm:"column:insight_type;not null;size:32;index"`
	Title       string          `json:"title" gorm:"not null;size:200"`
	Description string          `json:"description" gorm:"type:text"`
	Data        datatypes.JSON  `json:"data" gorm:"type:jsonb"`
	Priority    InsightPriority `json:"priority" gorm:"not null;size:16"`

	// 0-100, two decimal places.
	ConfidenceScore float64 `json:"confidence_score" gorm:"not null"`

	ComputedAt time.Time  `json:"computed_at" gorm:"not null"`
	ExpiresAt  *time.Time `json:"expires_at" gorm:"index"` // nil means never expires

	// Snapshot of the activity's total response count at generation time,
	// for staleness reasoning by callers.
	ResponseCountAtComputation int `json:"response_count_at_computation" gorm:"not null;default:0"`

	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"` // reserved for external housekeeping
}

func (AIInsightCache) TableName() string {
	return "ai_insights_cache"
}

// Valid reports whether the cached insight is still usable at the given time.
func (i *AIInsightCache) Valid(now time.Time) bool {
	return i.ExpiresAt == nil || i.ExpiresAt.After(now)
}
