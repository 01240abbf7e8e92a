package contactsdk

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
)

func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonFieldName)
		_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernameRe.MatchString(fl.Field().String())
		})
	})
	return validate
}

// jsonFieldName reports fields by their JSON name so client-side and
// server-side details use the same keys.
func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// Validate checks the request before it is sent. It returns field name to
// reason, or nil when the request is well formed.
func (r RegisterRequest) Validate() map[string]string { return validateRequest(r) }

// Validate checks the bootstrap request before it is sent.
func (r BootstrapRequest) Validate() map[string]string { return validateRequest(r) }

// Validate checks the new password before it is sent.
func (r PasswordResetConfirmRequest) Validate() map[string]string { return validateRequest(r) }

func validateRequest(v any) map[string]string {
	err := requestValidator().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = reason(fe)
	}
	return out
}

func reason(fe validator.FieldError) string {
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
	default:
		return "invalid"
	}
}
