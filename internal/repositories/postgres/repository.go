package postgres

import (
	"github.com/qsights/analytics-service/internal/repositories"
	"gorm.io/gorm"
)

type gormRepository struct {
	activity repositories.ActivityRepository
	response repositories.ResponseRepository
	insight  repositories.InsightRepository
}

// NewRepository builds the GORM-backed repository aggregate.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &gormRepository{
		activity: NewActivityPostgreSQL(db),
		response: NewResponsePostgreSQL(db),
		insight:  NewInsightPostgreSQL(db),
	}
}

func (r *gormRepository) Activity() repositories.ActivityRepository {
	return r.activity
}

func (r *gormRepository) Response() repositories.ResponseRepository {
	return r.response
}

func (r *gormRepository) Insight() repositories.InsightRepository {
	return r.insight
}
