package repositories

import (
	"context"
	"time"

	"github.com/qsights/analytics-service/internal/models"
)

// InsightRepository owns the ai_insights_cache table. Rows are append-only:
// Create and DeleteExpired are the only mutation paths.
type InsightRepository interface {
	Create(ctx context.Context, insight *models.AIInsightCache) error

	// ListValidByActivity returns cached insights for the activity whose
	// expires_at is null or after now, ordered by computed_at ascending.
	ListValidByActivity(ctx context.Context, activityID uint, now time.Time) ([]*models.AIInsightCache, error)

	// List returns cached insights for an activity regardless of validity.
	List(ctx context.Context, activityID uint, filters InsightFilters) ([]*models.AIInsightCache, int64, error)

	// DeleteExpired hard-deletes every row with expires_at before now and
	// returns the number of rows removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
