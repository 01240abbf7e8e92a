package http

import (
	"net/http"

	"github.com/aussiebroadwan/contacts/internal/contacts/service"
	"github.com/aussiebroadwan/contacts/pkg/contactsdk"
	"github.com/aussiebroadwan/contacts/pkg/httpx"
)

type AdminHandler struct {
	RolesService *service.RolesService
}

// HandleChangeRole sets the role of another account.
//
//	@Summary		Change a user's role
//	@Description	Sets the role of the account registered under email. Sessions of that user keep reporting the old role until their cached profile expires or they log in again.
//	@Tags			Admin
//	@Accept			json
//	@Param			request	body	contactsdk.ChangeRoleRequest	true	"Target email and role"
//	@Success		204		"Role changed"
//	@Failure		400		{object}	contactsdk.ValidationErrorResponse	"Unknown role"
//	@Failure		401		{object}	contactsdk.ErrorResponse			"Missing or invalid session"
//	@Failure		403		{object}	contactsdk.ErrorResponse			"Not an admin"
//	@Failure		404		{object}	contactsdk.ErrorResponse			"No account with that email"
//	@Security		BearerAuth
//	@Router			/v1/admin/users/role [post].
func (h *AdminHandler) HandleChangeRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, ok := principal(r)
	if !ok {
		contactsdk.ErrInvalidToken.WriteError(w)
		return
	}

	var req contactsdk.ChangeRoleRequest
	if err := httpx.DecodeJSON(w, r, maxJSONBody, &req); err != nil {
		writeBadJSON(w)
		return
	}

	_, err := h.RolesService.ChangeRole(ctx, p, req.Email, req.Role)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
