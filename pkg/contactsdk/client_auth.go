package contactsdk

import (
	"context"
	"net/http"
	"net/url"
)

// Register creates an unverified account; a verification link is emailed.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/auth/register", req)
	if err != nil {
		return nil, err
	}

	var user UserResponse
	if err := decodeJSON(resp, &user, http.StatusCreated); err != nil {
		return nil, err
	}
	return &user, nil
}

// VerifyEmail redeems the token from a verification link.
func (c *SDKClient) VerifyEmail(ctx context.Context, token string) error {
	path := "/v1/auth/verify-email?" + url.Values{"token": {token}}.Encode()
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return err
	}
	return expectStatus(resp, http.StatusOK)
}

// ResendVerification asks for a fresh verification link. The server answers
// the same way whether or not the address is known.
func (c *SDKClient) ResendVerification(ctx context.Context, email string) error {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/auth/resend-verification", EmailRequest{Email: email})
	if err != nil {
		return err
	}
	return expectStatus(resp, http.StatusAccepted)
}

// LoginTokens exchanges credentials for a token pair.
func (c *SDKClient) LoginTokens(ctx context.Context, email, password string) (*TokenResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/auth/login", LoginRequest{Username: email, Password: password})
	if err != nil {
		return nil, err
	}

	var tok TokenResponse
	if err := decodeJSON(resp, &tok, http.StatusOK); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Login exchanges credentials for a Session.
func (c *SDKClient) Login(ctx context.Context, email, password string) (*Session, error) {
	tok, err := c.LoginTokens(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return newSession(c, tok), nil
}

// Refresh rotates a refresh token. The old token stops working.
func (c *SDKClient) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/auth/refresh", RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, err
	}

	var tok TokenResponse
	if err := decodeJSON(resp, &tok, http.StatusOK); err != nil {
		return nil, err
	}
	return &tok, nil
}

// AuthenticateWithRefreshToken resumes a session from a stored refresh token.
func (c *SDKClient) AuthenticateWithRefreshToken(ctx context.Context, refreshToken string) (*Session, error) {
	tok, err := c.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	return newSession(c, tok), nil
}

// Logout revokes a refresh token.
func (c *SDKClient) Logout(ctx context.Context, refreshToken string) error {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/auth/logout", RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return err
	}
	return expectStatus(resp, http.StatusNoContent)
}

// RequestPasswordReset emails a reset link if the address is registered.
func (c *SDKClient) RequestPasswordReset(ctx context.Context, email string) error {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/auth/password-reset", EmailRequest{Email: email})
	if err != nil {
		return err
	}
	return expectStatus(resp, http.StatusAccepted)
}

// ResetPassword sets a new password using the emailed reset token. All
// refresh tokens and older access tokens of the account stop working.
func (c *SDKClient) ResetPassword(ctx context.Context, token, newPassword string) error {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/auth/password-reset/confirm", PasswordResetConfirmRequest{
		Token:       token,
		NewPassword: newPassword,
	})
	if err != nil {
		return err
	}
	return expectStatus(resp, http.StatusNoContent)
}

// Bootstrap creates the first admin. It only succeeds once, on an empty
// user table, with the configured bootstrap token.
func (c *SDKClient) Bootstrap(ctx context.Context, token string, req BootstrapRequest) (*BootstrapResponse, error) {
	body, headers, err := jsonBody(req)
	if err != nil {
		return nil, err
	}
	headers["X-Bootstrap-Token"] = token

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/bootstrap", body, headers)
	if err != nil {
		return nil, err
	}

	var out BootstrapResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}
