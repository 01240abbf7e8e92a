package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/contacts/internal/contacts/domain"
	"github.com/aussiebroadwan/contacts/internal/contacts/service"
	"github.com/aussiebroadwan/contacts/pkg/contactsdk"
	"github.com/aussiebroadwan/contacts/pkg/httpx"
	"github.com/aussiebroadwan/contacts/pkg/slogx"
)

// BootstrapTokenHeader carries the one-time setup secret.
const BootstrapTokenHeader = "X-Bootstrap-Token"

type BootstrapHandler struct {
	BootstrapService *service.BootstrapService
}

// ServeHTTP creates the first admin account.
//
//	@Summary		Bootstrap the service
//	@Description	Creates the first, already verified, admin account. Only available while no account exists and a bootstrap token is configured.
//	@Tags			Bootstrap
//	@Accept			json
//	@Produce		json
//	@Param			X-Bootstrap-Token	header		string								true	"Bootstrap token"
//	@Param			request				body		contactsdk.BootstrapRequest			true	"Admin account"
//	@Success		201					{object}	contactsdk.BootstrapResponse		"Admin created"
//	@Failure		400					{object}	contactsdk.ValidationErrorResponse	"Invalid body"
//	@Failure		401					{object}	contactsdk.ErrorResponse			"Missing or wrong token, or already bootstrapped"
//	@Failure		404					{object}	contactsdk.ErrorResponse			"Bootstrap not enabled"
//	@Failure		500					{object}	contactsdk.ErrorResponse			"Internal error"
//	@Router			/v1/bootstrap [post].
func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l := slogx.FromContext(r.Context())
	l.Info("bootstrap requested")

	if h.BootstrapService.Token == "" {
		contactsdk.NewAPIError(http.StatusNotFound, contactsdk.ErrorCodeNotFound, "bootstrap endpoint is not enabled").WriteError(w)
		return
	}

	token := r.Header.Get(BootstrapTokenHeader)
	if token == "" {
		contactsdk.NewAPIError(http.StatusUnauthorized, contactsdk.ErrorCodeAccessDenied, "bootstrap token is required in the X-Bootstrap-Token header").WriteError(w)
		return
	}

	var req contactsdk.BootstrapRequest
	if err := httpx.DecodeJSON(w, r, maxJSONBody, &req); err != nil {
		writeBadJSON(w)
		return
	}
	if errs := req.Validate(); errs != nil {
		contactsdk.WriteValidationError(w, "validation failed for some fields", errs)
		return
	}

	userID, err := h.BootstrapService.Bootstrap(r.Context(), token, domain.BootstrapData{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBootstrapAlready):
			contactsdk.NewAPIError(http.StatusUnauthorized, contactsdk.ErrorCodeAccessDenied, "system has already been bootstrapped").WriteError(w)
		case errors.Is(err, service.ErrBootstrapUnauthorized):
			contactsdk.NewAPIError(http.StatusUnauthorized, contactsdk.ErrorCodeAccessDenied, "invalid bootstrap token").WriteError(w)
		default:
			writeServiceError(w, r, err)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, contactsdk.BootstrapResponse{UserID: userID})
}
