package events

import (
	"time"

	"github.com/qsights/analytics-service/internal/models"
)

// EventType represents the domain events emitted by the analytics service
type EventType string

const (
	// Insight events
	EventInsightsGenerated  EventType = "insights.generated"
	EventInsightsCacheSwept EventType = "insights.cache_swept"

	// Analytics events
	EventAnalyticsExported EventType = "analytics.exported"
)

// InsightEvent is the envelope for all analytics domain events
type InsightEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Event payloads

type InsightsGeneratedEvent struct {
	ActivityID    uint                 `json:"activity_id"`
	InsightCount  int                  `json:"insight_count"`
	InsightTypes  []models.InsightType `json:"insight_types"`
	ResponseCount int                  `json:"response_count"`
	GeneratedAt   time.Time            `json:"generated_at"`
}

type InsightsCacheSweptEvent struct {
	DeletedCount int64     `json:"deleted_count"`
	SweptAt      time.Time `json:"swept_at"`
}

type AnalyticsExportedEvent struct {
	ActivityID uint      `json:"activity_id"`
	Format     string    `json:"format"`
	ExportedAt time.Time `json:"exported_at"`
}
