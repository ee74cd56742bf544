package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError_Single(t *testing.T) {
	t.Parallel()

	err := NewValidationError("title", "required")

	if got := err.Error(); got != "validation: title: required" {
		t.Errorf("Error(): got %q", got)
	}
	if !errors.Is(err, ErrValidation) {
		t.Error("ValidationError must unwrap to ErrValidation")
	}
}

func TestValidationError_Multiple(t *testing.T) {
	t.Parallel()

	err := NewValidationErrors([]FieldError{
		{Field: "title", Message: "required"},
		{Field: "url", Message: "too long"},
	})

	if got := err.Error(); got != "validation: 2 errors" {
		t.Errorf("Error(): got %q", got)
	}
}

func TestValidationError_WrappedIsStillMatchable(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("create submission: %w", NewValidationError("title", "required"))

	if !errors.Is(err, ErrValidation) {
		t.Error("wrapped validation error must match ErrValidation")
	}

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatal("wrapped error must expose *ValidationError")
	}
	if ve.Errors[0].Field != "title" {
		t.Errorf("field: got %q, want %q", ve.Errors[0].Field, "title")
	}
}

func TestConflictError(t *testing.T) {
	t.Parallel()

	err := NewConflictError("submission is already %s", "approved")

	if got := err.Error(); got != "submission is already approved" {
		t.Errorf("Error(): got %q", got)
	}
	if !errors.Is(err, ErrConflict) {
		t.Error("ConflictError must unwrap to ErrConflict")
	}
}
