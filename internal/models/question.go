package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionType string

const (
	QuestionRadio       QuestionType = "radio"
	QuestionSelect      QuestionType = "select"
	QuestionYesNo       QuestionType = "yesno"
	QuestionCheckbox    QuestionType = "checkbox"
	QuestionMultiSelect QuestionType = "multiselect"
	QuestionRating      QuestionType = "rating"
	QuestionScale       QuestionType = "scale"
	QuestionSliderScale QuestionType = "slider_scale"
	QuestionNPS         QuestionType = "nps"
	QuestionText        QuestionType = "text"
	QuestionTextarea    QuestionType = "textarea"
	QuestionMatrix      QuestionType = "matrix"
)

type Question struct {
	ID        uint         `json:"id" gorm:"primaryKey"`
	SectionID uint         `json:"section_id" gorm:"not null;index"`
	Title     string       `json:"title" gorm:"not null;type:text" validate:"required"`
	Type      QuestionType `json:"type" gorm:"not null;size:32" validate:"required,question_type"`
	Order     int          `json:"order" gorm:"column:sort_order;not null;default:0"`
	Required  bool         `json:"required" gorm:"default:false"`

	// Type-specific presentation settings (scale bounds, matrix rows, ...).
	Settings datatypes.JSON `json:"settings" gorm:"type:jsonb"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Options []QuestionOption `json:"options" gorm:"foreignKey:QuestionID"`
}

// QuestionOption is one declared choice; values are unique within a question
// and declaration order is the report order.
type QuestionOption struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Label      string `json:"label" gorm:"not null;size:500"`
	Value      string `json:"value" gorm:"not null;size:500"`
	Order      int    `json:"order" gorm:"column:sort_order;not null;default:0"`
}

func (Question) TableName() string {
	return "questions"
}

func (QuestionOption) TableName() string {
	return "question_options"
}
