package models

import (
	"time"

	"gorm.io/gorm"
)

type ActivityStatus string

const (
	ActivityDraft    ActivityStatus = "draft"
	ActivityLive     ActivityStatus = "live"
	ActivityClosed   ActivityStatus = "closed"
	ActivityArchived ActivityStatus = "archived"
)

// Activity is one run of a questionnaire (a survey, poll or evaluation campaign).
type Activity struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	Title           string         `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description     *string        `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	Status          ActivityStatus `json:"status" gorm:"default:draft;index" validate:"omitempty,oneof=draft live closed archived"`
	QuestionnaireID uint           `json:"questionnaire_id" gorm:"not null;index"`
	OrganizationID  uint           `json:"organization_id" gorm:"not null;index"`

	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`

	CreatedBy uint           `json:"created_by" gorm:"not null;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Questionnaire Questionnaire `json:"questionnaire" gorm:"foreignKey:QuestionnaireID"`
	Responses     []Response    `json:"responses" gorm:"foreignKey:ActivityID"`
}

type Questionnaire struct {
	ID    uint    `json:"id" gorm:"primaryKey"`
	Title string  `json:"title" gorm:"not null;size:200"`
	Notes *string `json:"notes" gorm:"type:text"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Sections []Section `json:"sections" gorm:"foreignKey:QuestionnaireID"`
}

// Section groups questions; questionnaire question order is section order
// first, then question order within the section.
type Section struct {
	ID              uint   `json:"id" gorm:"primaryKey"`
	QuestionnaireID uint   `json:"questionnaire_id" gorm:"not null;index"`
	Title           string `json:"title" gorm:"size:200"`
	Order           int    `json:"order" gorm:"column:sort_order;not null;default:0"`

	Questions []Question `json:"questions" gorm:"foreignKey:SectionID"`
}

func (Activity) TableName() string {
	return "activities"
}

func (Questionnaire) TableName() string {
	return "questionnaires"
}

func (Section) TableName() string {
	return "questionnaire_sections"
}
