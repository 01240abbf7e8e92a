package contactsdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

func (s *Session) CreateContact(ctx context.Context, req ContactRequest) (*ContactResponse, error) {
	resp, err := s.doAuthJSON(ctx, http.MethodPost, "/v1/contacts", req)
	if err != nil {
		return nil, err
	}

	var c ContactResponse
	if err := decodeJSON(resp, &c, http.StatusCreated); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Session) GetContact(ctx context.Context, id string) (*ContactResponse, error) {
	return s.contactCall(ctx, http.MethodGet, id, nil)
}

// ReplaceContact overwrites every field of the contact.
func (s *Session) ReplaceContact(ctx context.Context, id string, req ContactRequest) (*ContactResponse, error) {
	return s.contactCall(ctx, http.MethodPut, id, req)
}

// UpdateContact changes only the fields set in patch.
func (s *Session) UpdateContact(ctx context.Context, id string, patch ContactPatch) (*ContactResponse, error) {
	return s.contactCall(ctx, http.MethodPatch, id, patch)
}

func (s *Session) DeleteContact(ctx context.Context, id string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, "/v1/contacts/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return err
	}
	return expectStatus(resp, http.StatusNoContent)
}

func (s *Session) contactCall(ctx context.Context, method, id string, in any) (*ContactResponse, error) {
	resp, err := s.doAuthJSON(ctx, method, "/v1/contacts/"+url.PathEscape(id), in)
	if err != nil {
		return nil, err
	}

	var c ContactResponse
	if err := decodeJSON(resp, &c, http.StatusOK); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListContacts returns one page of contacts after cursor (empty for the
// first page). A zero limit uses the server default.
func (s *Session) ListContacts(ctx context.Context, cursor string, limit int) (*ContactPage, error) {
	q := url.Values{}
	if cursor != "" {
		q.Set("after", cursor)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	path := "/v1/contacts"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	resp, err := s.doAuthRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var page ContactPage
	if err := decodeJSON(resp, &page, http.StatusOK); err != nil {
		return nil, err
	}
	return &page, nil
}

// SearchContacts matches query case-insensitively against first name, last
// name and email.
func (s *Session) SearchContacts(ctx context.Context, query string) ([]ContactResponse, error) {
	return s.contactList(ctx, "/v1/contacts/search?"+url.Values{"query": {query}}.Encode())
}

// UpcomingBirthdays lists contacts whose birthday falls within the server's
// birthday window starting today.
func (s *Session) UpcomingBirthdays(ctx context.Context) ([]ContactResponse, error) {
	return s.contactList(ctx, "/v1/contacts/birthdays")
}

func (s *Session) contactList(ctx context.Context, path string) ([]ContactResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var list ContactList
	if err := decodeJSON(resp, &list, http.StatusOK); err != nil {
		return nil, err
	}
	return list.Contacts, nil
}
