package repositories

import (
	"context"

	"github.com/qsights/analytics-service/internal/models"
)

// ActivityRepository exposes the activity and questionnaire reads the
// analytics core needs. The analytics service is not the owner of this data.
type ActivityRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Activity, error)

	// GetByIDWithQuestionnaire loads the activity with its questionnaire,
	// sections (ordered), questions (ordered) and declared options (ordered).
	GetByIDWithQuestionnaire(ctx context.Context, id uint) (*models.Activity, error)

	// GetQuestion loads a single question with its options, verifying it
	// belongs to the given activity's questionnaire.
	GetQuestion(ctx context.Context, activityID, questionID uint) (*models.Question, error)

	// ListQuestions returns every question of the activity's questionnaire,
	// flattened across sections with order preserved.
	ListQuestions(ctx context.Context, activityID uint) ([]*models.Question, error)

	ExistsByID(ctx context.Context, id uint) (bool, error)
}
