package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestConstructorsMatchSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"NotFound", NotFound("title", "abc"), ErrNotFound},
		{"ValidationFailed", ValidationFailed("score", "out of range"), ErrValidation},
		{"Conflict", Conflict("duplicate review"), ErrConflict},
		{"Forbidden", Forbidden("not yours"), ErrForbidden},
		{"Unauthorized", Unauthorized("login first"), ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%v, sentinel) = false", tt.err)
			}
		})
	}
}

func TestErrorsIsThroughWrapping(t *testing.T) {
	// Services wrap with %w; the sentinel must stay matchable.
	wrapped := fmt.Errorf("creating review: %w", Conflict("duplicate"))
	if !errors.Is(wrapped, ErrConflict) {
		t.Error("sentinel lost through fmt.Errorf wrapping")
	}

	var appErr *AppError
	if !errors.As(wrapped, &appErr) {
		t.Fatal("errors.As failed to recover *AppError")
	}
	if appErr.Message != "duplicate" {
		t.Errorf("Message = %q, want %q", appErr.Message, "duplicate")
	}
}

func TestNotFoundMessage(t *testing.T) {
	err := NotFound("title", "abc123")
	if err.Error() != "title not found: abc123" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestValidationFailedCarriesField(t *testing.T) {
	err := ValidationFailed("score", "score must be between 1 and 10")
	if err.Field != "score" {
		t.Errorf("Field = %q, want score", err.Field)
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	if errors.Is(NotFound("x", "y"), ErrConflict) {
		t.Error("NotFound must not match ErrConflict")
	}
	if errors.Is(Forbidden("x"), ErrUnauthorized) {
		t.Error("Forbidden must not match ErrUnauthorized")
	}
}
