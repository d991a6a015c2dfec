package postgres

import (
	"context"

	"github.com/qsights/analytics-service/internal/models"
	"github.com/qsights/analytics-service/internal/repositories"
	"gorm.io/gorm"
)

type ResponsePostgreSQL struct {
	db *gorm.DB
}

func NewResponsePostgreSQL(db *gorm.DB) repositories.ResponseRepository {
	return &ResponsePostgreSQL{db: db}
}

// applyResponseFilters narrows a query on the responses table by the shared
// filter predicate. Every analytics sub-metric goes through this, so a
// supplied filter is never silently ignored.
func applyResponseFilters(query *gorm.DB, filters repositories.ResponseFilters) *gorm.DB {
	if filters.DateFrom != nil {
		query = query.Where("responses.created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("responses.created_at <= ?", *filters.DateTo)
	}
	if filters.Status != nil {
		query = query.Where("responses.status = ?", *filters.Status)
	}
	if filters.ParticipantID != nil {
		query = query.Where("responses.participant_id = ?", *filters.ParticipantID)
	}
	return query
}

func (r *ResponsePostgreSQL) ListByActivity(ctx context.Context, activityID uint, filters repositories.ResponseFilters) ([]*models.Response, error) {
	var responses []*models.Response

	query := r.db.WithContext(ctx).
		Model(&models.Response{}).
		Where("responses.activity_id = ?", activityID)
	query = applyResponseFilters(query, filters)

	if err := query.Order("responses.created_at ASC").Find(&responses).Error; err != nil {
		return nil, err
	}
	return responses, nil
}

func (r *ResponsePostgreSQL) CountByActivity(ctx context.Context, activityID uint, filters repositories.ResponseFilters) (int64, error) {
	var count int64

	query := r.db.WithContext(ctx).
		Model(&models.Response{}).
		Where("responses.activity_id = ?", activityID)
	query = applyResponseFilters(query, filters)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ResponsePostgreSQL) ListAnswers(ctx context.Context, activityID, questionID uint, filters repositories.ResponseFilters) ([]*models.Answer, error) {
	var answers []*models.Answer

	query := r.db.WithContext(ctx).
		Model(&models.Answer{}).
		Joins("JOIN responses ON responses.id = answers.response_id").
		Where("responses.activity_id = ? AND answers.question_id = ?", activityID, questionID).
		Where("responses.deleted_at IS NULL")
	query = applyResponseFilters(query, filters)

	if err := query.Order("answers.created_at ASC").Find(&answers).Error; err != nil {
		return nil, err
	}
	return answers, nil
}

func (r *ResponsePostgreSQL) CountAnswers(ctx context.Context, activityID, questionID uint, filters repositories.ResponseFilters) (int64, error) {
	var count int64

	query := r.db.WithContext(ctx).
		Model(&models.Answer{}).
		Joins("JOIN responses ON responses.id = answers.response_id").
		Where("responses.activity_id = ? AND answers.question_id = ?", activityID, questionID).
		Where("responses.deleted_at IS NULL").
		Where("answers.answer_value IS NOT NULL AND answers.answer_value <> ''")
	query = applyResponseFilters(query, filters)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
