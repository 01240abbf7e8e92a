package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/contacts/internal/contacts/service"
	"github.com/aussiebroadwan/contacts/pkg/contactsdk"
	"github.com/aussiebroadwan/contacts/pkg/slogx"
)

// maxJSONBody bounds every JSON request body.
const maxJSONBody = 64 << 10

// writeServiceError maps a service error onto its API response. Anything
// unrecognised is logged and reported as a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		contactsdk.WriteValidationError(w, "validation failed for some fields", verr.Fields)
	case errors.Is(err, service.ErrUnauthenticated):
		contactsdk.ErrInvalidToken.WriteError(w)
	case errors.Is(err, service.ErrNotVerified):
		contactsdk.ErrEmailNotVerified.WriteError(w)
	case errors.Is(err, service.ErrForbidden):
		contactsdk.ErrAccessDenied.WriteError(w)
	case errors.Is(err, service.ErrNotFound):
		contactsdk.ErrNotFound.WriteError(w)
	case errors.Is(err, service.ErrConflict):
		contactsdk.ErrConflict.WriteError(w)
	case errors.Is(err, service.ErrEmailDispatch):
		contactsdk.ErrEmailDispatch.WriteError(w)
	case errors.Is(err, service.ErrUpload):
		contactsdk.ErrUploadFailed.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("request failed", "error", err)
		contactsdk.ErrServerError.WriteError(w)
	}
}

// writeGrantError is writeServiceError for the credential endpoints, where
// a failed authentication is a bad grant rather than a bad session.
func writeGrantError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, service.ErrUnauthenticated) {
		contactsdk.ErrInvalidGrant.WriteError(w)
		return
	}
	writeServiceError(w, r, err)
}

func writeBadJSON(w http.ResponseWriter) {
	contactsdk.NewAPIError(
		http.StatusBadRequest,
		contactsdk.ErrorCodeInvalidRequest,
		"request body must be valid JSON",
	).WriteError(w)
}
