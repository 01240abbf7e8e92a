package service

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate

	usernameRe = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)
	// Digits with optional leading +, allowing the usual separators.
	phoneRe = regexp.MustCompile(`^\+?[0-9][0-9 ().-]{5,24}$`)
)

func inputValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			return f.Tag.Get("field")
		})
		_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernameRe.MatchString(fl.Field().String())
		})
		_ = validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return phoneRe.MatchString(fl.Field().String())
		})
	})
	return validate
}

// validateInput runs the struct tags of v and converts failures into a
// ValidationError.
func validateInput(v any) error {
	err := inputValidator().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldReason(fe)
	}
	return &ValidationError{Fields: fields}
}

func fieldReason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "username":
		return "must only contain a-z, A-Z, 0-9, _, . or -"
	case "phone":
		return "must be a phone number"
	case "datetime":
		return "must be a date formatted YYYY-MM-DD"
	default:
		return "invalid"
	}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
