package errors

import (
	"testing"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("status", "must be one of: in_progress submitted", "done")

	if err.Field != "status" {
		t.Errorf("Expected field to be 'status', got '%s'", err.Field)
	}

	if err.Value != "done" {
		t.Errorf("Expected value to be 'done', got '%v'", err.Value)
	}

	expected := "validation error on field 'status': must be one of: in_progress submitted"
	if err.Error() != expected {
		t.Errorf("Expected error message to be '%s', got '%s'", expected, err.Error())
	}
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	if errs.Error() != "validation failed" {
		t.Errorf("Expected 'validation failed' for empty errors, got '%s'", errs.Error())
	}

	errs = append(errs, *NewValidationError("date_from", "is required", nil))
	expected := "validation failed: date_from is required"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for single error, got '%s'", expected, errs.Error())
	}

	errs = append(errs, *NewValidationError("date_to", "is required", nil))
	expected = "validation failed: 2 field errors"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for multiple errors, got '%s'", expected, errs.Error())
	}
}
