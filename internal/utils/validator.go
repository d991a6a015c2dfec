package utils

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/qsights/analytics-service/internal/models"
)

// Validator wraps a validator.Validate instance with the service's custom
// rules registered.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	validate := validator.New()
	RegisterCustomValidators(validate)
	return &Validator{validate: validate}
}

// ValidateStruct validates struct tags
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.validate.Struct(s)
}

// Custom validation functions

func ValidateQuestionType(fl validator.FieldLevel) bool {
	validTypes := []models.QuestionType{
		models.QuestionRadio,
		models.QuestionSelect,
		models.QuestionYesNo,
		models.QuestionCheckbox,
		models.QuestionMultiSelect,
		models.QuestionRating,
		models.QuestionScale,
		models.QuestionSliderScale,
		models.QuestionNPS,
		models.QuestionText,
		models.QuestionTextarea,
		models.QuestionMatrix,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}

func ValidateInsightType(fl validator.FieldLevel) bool {
	validTypes := []models.InsightType{
		models.InsightTrend,
		models.InsightSentiment,
		models.InsightAnomaly,
		models.InsightCompletionPattern,
		models.InsightSummary,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}

// RegisterCustomValidators registers all custom validators
func RegisterCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", ValidateQuestionType)
	validate.RegisterValidation("insight_type", ValidateInsightType)

	// Register custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}
