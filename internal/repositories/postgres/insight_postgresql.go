package postgres

import (
	"context"
	"time"

	"github.com/qsights/analytics-service/internal/models"
	"github.com/qsights/analytics-service/internal/repositories"
	"gorm.io/gorm"
)

type InsightPostgreSQL struct {
	db *gorm.DB
}

func NewInsightPostgreSQL(db *gorm.DB) repositories.InsightRepository {
	return &InsightPostgreSQL{db: db}
}

func (i *InsightPostgreSQL) Create(ctx context.Context, insight *models.AIInsightCache) error {
	return i.db.WithContext(ctx).Create(insight).Error
}

func (i *InsightPostgreSQL) ListValidByActivity(ctx context.Context, activityID uint, now time.Time) ([]*models.AIInsightCache, error) {
	var insights []*models.AIInsightCache
	if err := i.db.WithContext(ctx).
		Where("activity_id = ?", activityID).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Order("computed_at ASC").
		Find(&insights).Error; err != nil {
		return nil, err
	}
	return insights, nil
}

func (i *InsightPostgreSQL) List(ctx context.Context, activityID uint, filters repositories.InsightFilters) ([]*models.AIInsightCache, int64, error) {
	var insights []*models.AIInsightCache
	var total int64

	query := i.db.WithContext(ctx).
		Model(&models.AIInsightCache{}).
		Where("activity_id = ?", activityID)
	if filters.Type != nil {
		query = query.Where("insight_type = ?", *filters.Type)
	}
	if filters.Priority != nil {
		query = query.Where("priority = ?", *filters.Priority)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Order("computed_at DESC").Find(&insights).Error; err != nil {
		return nil, 0, err
	}
	return insights, total, nil
}

func (i *InsightPostgreSQL) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := i.db.WithContext(ctx).
		Unscoped().
		Where("expires_at IS NOT NULL AND expires_at < ?", now).
		Delete(&models.AIInsightCache{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
