package repositories

import (
	"context"

	"github.com/qsights/analytics-service/internal/models"
)

// ResponseRepository is the read-only query surface over responses and
// answers. Aggregation happens in the service layer; the repository only
// narrows the base set by activity plus the shared filter predicate.
type ResponseRepository interface {
	// ListByActivity returns the filtered responses of an activity, ordered
	// by created_at ascending.
	ListByActivity(ctx context.Context, activityID uint, filters ResponseFilters) ([]*models.Response, error)

	// CountByActivity counts responses matching the filter predicate.
	CountByActivity(ctx context.Context, activityID uint, filters ResponseFilters) (int64, error)

	// ListAnswers returns answers for one question joined to the activity's
	// responses, applying the filter predicate on the response side. Ordered
	// by answer created_at ascending.
	ListAnswers(ctx context.Context, activityID, questionID uint, filters ResponseFilters) ([]*models.Answer, error)

	// CountAnswers counts non-null answers for one question under the same
	// join and predicate as ListAnswers.
	CountAnswers(ctx context.Context, activityID, questionID uint, filters ResponseFilters) (int64, error)
}
