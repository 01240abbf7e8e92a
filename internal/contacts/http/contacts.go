package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/aussiebroadwan/contacts/internal/contacts/domain"
	"github.com/aussiebroadwan/contacts/internal/contacts/service"
	"github.com/aussiebroadwan/contacts/pkg/contactsdk"
	"github.com/aussiebroadwan/contacts/pkg/httpx"
)

type ContactsHandler struct {
	ContactService *service.ContactService
	Today          func() time.Time
}

// HandleCreate stores a new contact.
//
//	@Summary		Create a contact
//	@Tags			Contacts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		contactsdk.ContactRequest			true	"Contact"
//	@Success		201		{object}	contactsdk.ContactResponse			"Created contact"
//	@Failure		400		{object}	contactsdk.ValidationErrorResponse	"Invalid input"
//	@Failure		401		{object}	contactsdk.ErrorResponse			"Missing or invalid session"
//	@Security		BearerAuth
//	@Router			/v1/contacts [post].
func (h *ContactsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	p, req, ok := decodeContactCall[contactsdk.ContactRequest](w, r)
	if !ok {
		return
	}

	c, err := h.ContactService.Create(r.Context(), p, fromContactRequest(req))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toContactResponse(c))
}

// HandleList returns one page of the caller's contacts.
//
//	@Summary		List contacts
//	@Description	Contacts in creation order. Pass next_cursor back as after to fetch the following page.
//	@Tags			Contacts
//	@Produce		json
//	@Param			after	query		string								false	"Cursor from the previous page"
//	@Param			limit	query		int									false	"Page size (1-100)"
//	@Success		200		{object}	contactsdk.ContactPage				"Page"
//	@Failure		400		{object}	contactsdk.ValidationErrorResponse	"Invalid cursor or limit"
//	@Failure		401		{object}	contactsdk.ErrorResponse			"Missing or invalid session"
//	@Security		BearerAuth
//	@Router			/v1/contacts [get].
func (h *ContactsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(r)
	if !ok {
		contactsdk.ErrInvalidToken.WriteError(w)
		return
	}

	q := r.URL.Query()
	limit := 0
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			contactsdk.WriteValidationError(w, "validation failed for some fields", map[string]string{"limit": "must be a positive integer"})
			return
		}
		limit = n
	}

	page, err := h.ContactService.List(r.Context(), p, q.Get("after"), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, contactsdk.ContactPage{
		Contacts:   toContactResponses(page.Contacts),
		NextCursor: page.NextCursor,
	})
}

// HandleSearch finds contacts by name or email.
//
//	@Summary		Search contacts
//	@Description	Case-insensitive substring match on first name, last name and email.
//	@Tags			Contacts
//	@Produce		json
//	@Param			query	query		string								true	"Search text"
//	@Success		200		{object}	contactsdk.ContactList				"Matches"
//	@Failure		400		{object}	contactsdk.ValidationErrorResponse	"Empty or overlong query"
//	@Failure		401		{object}	contactsdk.ErrorResponse			"Missing or invalid session"
//	@Security		BearerAuth
//	@Router			/v1/contacts/search [get].
func (h *ContactsHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(r)
	if !ok {
		contactsdk.ErrInvalidToken.WriteError(w)
		return
	}

	out := []contactsdk.ContactResponse{}
	for c, err := range h.ContactService.Search(r.Context(), p, r.URL.Query().Get("query")) {
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		out = append(out, toContactResponse(c))
	}
	httpx.WriteJSON(w, http.StatusOK, contactsdk.ContactList{Contacts: out})
}

// HandleBirthdays lists contacts with a birthday in the coming days.
//
//	@Summary		Upcoming birthdays
//	@Description	Contacts whose birthday falls within the configured window starting today, soonest first. Feb 29 birthdays are observed on Mar 1 in other years.
//	@Tags			Contacts
//	@Produce		json
//	@Success		200	{object}	contactsdk.ContactList		"Contacts"
//	@Failure		401	{object}	contactsdk.ErrorResponse	"Missing or invalid session"
//	@Security		BearerAuth
//	@Router			/v1/contacts/birthdays [get].
func (h *ContactsHandler) HandleBirthdays(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(r)
	if !ok {
		contactsdk.ErrInvalidToken.WriteError(w)
		return
	}

	cs, err := h.ContactService.UpcomingBirthdays(r.Context(), p, h.Today())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, contactsdk.ContactList{Contacts: toContactResponses(cs)})
}

// HandleGet returns a single contact.
//
//	@Summary		Get a contact
//	@Tags			Contacts
//	@Produce		json
//	@Param			id	path		string						true	"Contact ID"
//	@Success		200	{object}	contactsdk.ContactResponse	"Contact"
//	@Failure		401	{object}	contactsdk.ErrorResponse	"Missing or invalid session"
//	@Failure		404	{object}	contactsdk.ErrorResponse	"No such contact"
//	@Security		BearerAuth
//	@Router			/v1/contacts/{id} [get].
func (h *ContactsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(r)
	if !ok {
		contactsdk.ErrInvalidToken.WriteError(w)
		return
	}

	c, err := h.ContactService.Get(r.Context(), p, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toContactResponse(c))
}

// HandleReplace overwrites every field of a contact.
//
//	@Summary		Replace a contact
//	@Tags			Contacts
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string								true	"Contact ID"
//	@Param			request	body		contactsdk.ContactRequest			true	"Contact"
//	@Success		200		{object}	contactsdk.ContactResponse			"Updated contact"
//	@Failure		400		{object}	contactsdk.ValidationErrorResponse	"Invalid input"
//	@Failure		401		{object}	contactsdk.ErrorResponse			"Missing or invalid session"
//	@Failure		404		{object}	contactsdk.ErrorResponse			"No such contact"
//	@Security		BearerAuth
//	@Router			/v1/contacts/{id} [put].
func (h *ContactsHandler) HandleReplace(w http.ResponseWriter, r *http.Request) {
	p, req, ok := decodeContactCall[contactsdk.ContactRequest](w, r)
	if !ok {
		return
	}

	c, err := h.ContactService.Replace(r.Context(), p, r.PathValue("id"), fromContactRequest(req))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toContactResponse(c))
}

// HandlePatch changes the fields present in the body.
//
//	@Summary		Update a contact
//	@Description	Only fields present in the body change. An empty birthday or note clears it.
//	@Tags			Contacts
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string								true	"Contact ID"
//	@Param			request	body		contactsdk.ContactPatch				true	"Changed fields"
//	@Success		200		{object}	contactsdk.ContactResponse			"Updated contact"
//	@Failure		400		{object}	contactsdk.ValidationErrorResponse	"Invalid input"
//	@Failure		401		{object}	contactsdk.ErrorResponse			"Missing or invalid session"
//	@Failure		404		{object}	contactsdk.ErrorResponse			"No such contact"
//	@Security		BearerAuth
//	@Router			/v1/contacts/{id} [patch].
func (h *ContactsHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	p, req, ok := decodeContactCall[contactsdk.ContactPatch](w, r)
	if !ok {
		return
	}

	c, err := h.ContactService.Update(r.Context(), p, r.PathValue("id"), fromContactPatch(req))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toContactResponse(c))
}

// HandleDelete removes a contact.
//
//	@Summary		Delete a contact
//	@Tags			Contacts
//	@Param			id	path	string	true	"Contact ID"
//	@Success		204	"Deleted"
//	@Failure		401	{object}	contactsdk.ErrorResponse	"Missing or invalid session"
//	@Failure		404	{object}	contactsdk.ErrorResponse	"No such contact"
//	@Security		BearerAuth
//	@Router			/v1/contacts/{id} [delete].
func (h *ContactsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(r)
	if !ok {
		contactsdk.ErrInvalidToken.WriteError(w)
		return
	}

	if err := h.ContactService.Delete(r.Context(), p, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeContactCall resolves the caller and decodes a JSON body of type T.
// It writes the error response itself and reports false on failure.
func decodeContactCall[T any](w http.ResponseWriter, r *http.Request) (domain.Principal, T, bool) {
	var req T
	p, ok := principal(r)
	if !ok {
		contactsdk.ErrInvalidToken.WriteError(w)
		return p, req, false
	}
	if err := httpx.DecodeJSON(w, r, maxJSONBody, &req); err != nil {
		writeBadJSON(w)
		return p, req, false
	}
	return p, req, true
}
