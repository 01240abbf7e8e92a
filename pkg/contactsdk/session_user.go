package contactsdk

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
)

// Me returns the caller's profile. The server may serve it from a short
// lived cache, so a role change can take a few minutes to show.
func (s *Session) Me(ctx context.Context) (*UserResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/users/me", nil, nil)
	if err != nil {
		return nil, err
	}

	var user UserResponse
	if err := decodeJSON(resp, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}

// UploadAvatar replaces the caller's avatar. Admin only.
func (s *Session) UploadAvatar(ctx context.Context, filename string, content []byte) (*UserResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/users/me/avatar", &buf, map[string]string{
		"Content-Type": mw.FormDataContentType(),
	})
	if err != nil {
		return nil, err
	}

	var user UserResponse
	if err := decodeJSON(resp, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangeRole sets the role of the account registered under email. Admin only.
func (s *Session) ChangeRole(ctx context.Context, email, role string) error {
	resp, err := s.doAuthJSON(ctx, http.MethodPost, "/v1/admin/users/role", ChangeRoleRequest{Email: email, Role: role})
	if err != nil {
		return err
	}
	return expectStatus(resp, http.StatusNoContent)
}
