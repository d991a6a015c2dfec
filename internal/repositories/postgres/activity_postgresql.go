package postgres

import (
	"context"
	"sort"

	"github.com/qsights/analytics-service/internal/models"
	"github.com/qsights/analytics-service/internal/repositories"
	"gorm.io/gorm"
)

type ActivityPostgreSQL struct {
	db *gorm.DB
}

func NewActivityPostgreSQL(db *gorm.DB) repositories.ActivityRepository {
	return &ActivityPostgreSQL{db: db}
}

func (a *ActivityPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Activity, error) {
	var activity models.Activity
	if err := a.db.WithContext(ctx).First(&activity, id).Error; err != nil {
		return nil, err
	}
	return &activity, nil
}

func (a *ActivityPostgreSQL) GetByIDWithQuestionnaire(ctx context.Context, id uint) (*models.Activity, error) {
	var activity models.Activity
	if err := a.db.WithContext(ctx).
		Preload("Questionnaire").
		Preload("Questionnaire.Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("questionnaire_sections.sort_order ASC")
		}).
		Preload("Questionnaire.Sections.Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.sort_order ASC")
		}).
		Preload("Questionnaire.Sections.Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_options.sort_order ASC")
		}).
		First(&activity, id).Error; err != nil {
		return nil, err
	}
	return &activity, nil
}

func (a *ActivityPostgreSQL) GetQuestion(ctx context.Context, activityID, questionID uint) (*models.Question, error) {
	var question models.Question
	if err := a.db.WithContext(ctx).
		Joins("JOIN questionnaire_sections ON questionnaire_sections.id = questions.section_id").
		Joins("JOIN activities ON activities.questionnaire_id = questionnaire_sections.questionnaire_id").
		Where("activities.id = ? AND questions.id = ?", activityID, questionID).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_options.sort_order ASC")
		}).
		First(&question).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (a *ActivityPostgreSQL) ListQuestions(ctx context.Context, activityID uint) ([]*models.Question, error) {
	activity, err := a.GetByIDWithQuestionnaire(ctx, activityID)
	if err != nil {
		return nil, err
	}

	sections := activity.Questionnaire.Sections
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].Order < sections[j].Order
	})

	var questions []*models.Question
	for i := range sections {
		for j := range sections[i].Questions {
			questions = append(questions, &sections[i].Questions[j])
		}
	}
	return questions, nil
}

func (a *ActivityPostgreSQL) ExistsByID(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := a.db.WithContext(ctx).
		Model(&models.Activity{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}
