package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aussiebroadwan/contacts/internal/contacts/service"
	"github.com/aussiebroadwan/contacts/pkg/contactsdk"
	"github.com/aussiebroadwan/contacts/pkg/httpx"
	"github.com/aussiebroadwan/contacts/pkg/slogx"
)

// multipartOverhead is the slack allowed on top of the avatar limit for
// multipart boundaries and headers.
const multipartOverhead = 64 << 10

type UsersHandler struct {
	AvatarService *service.AvatarService
}

// HandleMe returns the caller's profile.
//
//	@Summary		Current user
//	@Description	Returns the profile the session resolves to. Profiles are cached for a few minutes, so a role change may take that long to show here.
//	@Tags			Users
//	@Produce		json
//	@Success		200	{object}	contactsdk.UserResponse		"Profile"
//	@Failure		401	{object}	contactsdk.ErrorResponse	"Missing or invalid session"
//	@Failure		429	{object}	contactsdk.ErrorResponse	"Too many requests"
//	@Security		BearerAuth
//	@Router			/v1/users/me [get].
func (h *UsersHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(r)
	if !ok {
		contactsdk.ErrInvalidToken.WriteError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(p.Profile))
}

// HandleUploadAvatar replaces the caller's avatar.
//
//	@Summary		Upload avatar
//	@Description	Stores a jpeg, png, gif or webp image as the caller's avatar. The type is detected from the content. Admin only.
//	@Tags			Users
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file								true	"Image"
//	@Success		200		{object}	contactsdk.UserResponse				"Updated profile"
//	@Failure		400		{object}	contactsdk.ValidationErrorResponse	"Missing, oversized or unsupported file"
//	@Failure		401		{object}	contactsdk.ErrorResponse			"Missing or invalid session"
//	@Failure		403		{object}	contactsdk.ErrorResponse			"Not an admin"
//	@Failure		502		{object}	contactsdk.ErrorResponse			"Storage backend failed"
//	@Security		BearerAuth
//	@Router			/v1/users/me/avatar [post].
func (h *UsersHandler) HandleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	p, ok := principal(r)
	if !ok {
		contactsdk.ErrInvalidToken.WriteError(w)
		return
	}

	limit := h.AvatarService.MaxSize()
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	file, _, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		reason := "required"
		if errors.As(err, &tooLarge) {
			reason = fmt.Sprintf("must be at most %d bytes", limit)
		}
		log.Debug("avatar form rejected", "error", err)
		contactsdk.WriteValidationError(w, "validation failed for some fields", map[string]string{"file": reason})
		return
	}
	defer func() { _ = file.Close() }()

	// One byte past the limit is enough for the service to reject it.
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		log.Error("failed to read avatar upload", "error", err)
		contactsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	profile, err := h.AvatarService.UploadAvatar(ctx, p, data)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(profile))
}
