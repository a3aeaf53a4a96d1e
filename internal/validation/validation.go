// Package validation wraps go-playground/validator behind a single shared
// instance. Request DTOs declare their rules with `validate` struct tags and
// handlers call Struct before touching the service layer.
//
// The validator caches struct metadata internally, so one instance shared by
// all goroutines is both safe and faster than constructing per call.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/reviewhub/internal/apperror"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// slugPattern matches the URL-safe identifiers accepted for category and
// genre slugs: letters, digits, hyphens, and underscores.
var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Custom "slug" tag for catalog identifiers.
		_ = validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugPattern.MatchString(fl.Field().String())
		})
	})
	return validate
}

// Struct validates v against its `validate` tags and translates the first
// failure into an apperror validation error, so handlers can pass the result
// straight to writeError.
func Struct(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		// InvalidValidationError (nil or non-struct input) — a programming
		// error, not client input.
		return fmt.Errorf("validation: %w", err)
	}

	fe := verrs[0]
	return apperror.ValidationFailed(fieldName(fe), message(fe))
}

// fieldName lowercases the struct field so error payloads speak the API's
// JSON dialect ("username", not "Username").
func fieldName(fe validator.FieldError) string {
	return strings.ToLower(fe.Field())
}

// message renders a human-readable reason for the common tags used in this
// API. Anything else falls back to naming the failed rule.
func message(fe validator.FieldError) string {
	field := fieldName(fe)
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "slug":
		return fmt.Sprintf("%s may only contain letters, digits, hyphens, and underscores", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or greater", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be %s or less", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation rule %q", field, fe.Tag())
	}
}
