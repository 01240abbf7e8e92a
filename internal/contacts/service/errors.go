package service

import (
	"errors"
	"maps"
	"slices"
	"strings"

	"github.com/aussiebroadwan/contacts/internal/contacts/domain"
)

var (
	ErrValidation      = errors.New("validation_error")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNotVerified     = errors.New("email_not_verified")
	ErrForbidden       = domain.ErrForbidden
	ErrNotFound        = errors.New("not_found")
	ErrConflict        = errors.New("conflict")
	ErrEmailDispatch   = errors.New("email_dispatch_failed")
	ErrUpload          = errors.New("upload_failed")
)

// ValidationError lists the offending fields (by JSON name) and the reason
// each was rejected. It matches ErrValidation under errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := slices.Sorted(maps.Keys(e.Fields))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation_error: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// invalid builds a single-field ValidationError.
func invalid(field, reason string) error {
	return &ValidationError{Fields: map[string]string{field: reason}}
}
