package models

import (
	"time"

	"gorm.io/gorm"
)

type ResponseStatus string

const (
	ResponseInProgress ResponseStatus = "in_progress"
	ResponseSubmitted  ResponseStatus = "submitted"
)

// Response is one participant's attempt at one activity.
// SubmittedAt is non-null only when Status is "submitted".
type Response struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	ActivityID    uint           `json:"activity_id" gorm:"not null;index"`
	ParticipantID *uint          `json:"participant_id" gorm:"index"` // nil for anonymous/guest
	Status        ResponseStatus `json:"status" gorm:"default:in_progress;index" validate:"omitempty,oneof=in_progress submitted"`

	CompletionPercentage float64 `json:"completion_percentage" gorm:"default:0" validate:"min=0,max=100"`

	StartedAt   *time.Time `json:"started_at"`
	SubmittedAt *time.Time `json:"submitted_at"`

	CreatedAt time.Time      `json:"created_at" gorm:"index"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Answers []Answer `json:"answers" gorm:"foreignKey:ResponseID"`
}

// Answer holds one response's value for one question. Value is the raw stored
// form: a plain scalar, or a JSON-encoded array for multi-select questions.
// Legacy rows may hold arbitrary plain strings.
type Answer struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	ResponseID uint   `json:"response_id" gorm:"not null;index"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Value      string `json:"answer_value" gorm:"column:answer_value;type:text"`

	CreatedAt time.Time `json:"created_at"`
}

func (Response) TableName() string {
	return "responses"
}

func (Answer) TableName() string {
	return "answers"
}
