package http

import (
	"mime"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/contacts/internal/contacts/service"
	"github.com/aussiebroadwan/contacts/pkg/contactsdk"
	"github.com/aussiebroadwan/contacts/pkg/httpx"
	"github.com/aussiebroadwan/contacts/pkg/slogx"
)

type AuthHandler struct {
	AuthService *service.AuthService
}

// HandleRegister creates an account and mails a verification link.
//
//	@Summary		Register an account
//	@Description	Creates an unverified account and emails a verification link. Login is refused until the link is followed.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		contactsdk.RegisterRequest			true	"Account details"
//	@Success		201		{object}	contactsdk.UserResponse				"Created account"
//	@Failure		400		{object}	contactsdk.ValidationErrorResponse	"Invalid input"
//	@Failure		409		{object}	contactsdk.ErrorResponse			"Email or username already registered"
//	@Failure		502		{object}	contactsdk.ErrorResponse			"Verification email could not be sent"
//	@Router			/v1/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req contactsdk.RegisterRequest
	if err := httpx.DecodeJSON(w, r, maxJSONBody, &req); err != nil {
		writeBadJSON(w)
		return
	}

	u, err := h.AuthService.Register(ctx, service.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(u.Profile()))
}

// HandleVerifyEmail redeems a verification link.
//
//	@Summary		Verify an email address
//	@Description	Marks the account behind the verification token as verified. Following a link twice is harmless.
//	@Tags			Auth
//	@Produce		json
//	@Param			token	query		string						true	"Verification token from the email"
//	@Success		200		{object}	contactsdk.MessageResponse	"Email verified"
//	@Failure		401		{object}	contactsdk.ErrorResponse	"Token invalid or expired"
//	@Router			/v1/auth/verify-email [get].
func (h *AuthHandler) HandleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if err := h.AuthService.VerifyEmail(r.Context(), token); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, contactsdk.MessageResponse{Message: "email verified"})
}

// HandleResendVerification mails a new verification link.
//
//	@Summary		Resend the verification email
//	@Description	Always answers 202 so the endpoint cannot be used to discover accounts.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		contactsdk.EmailRequest		true	"Account email"
//	@Success		202		{object}	contactsdk.MessageResponse	"Accepted"
//	@Failure		400		{object}	contactsdk.ErrorResponse	"Malformed body"
//	@Failure		502		{object}	contactsdk.ErrorResponse	"Email could not be sent"
//	@Router			/v1/auth/resend-verification [post].
func (h *AuthHandler) HandleResendVerification(w http.ResponseWriter, r *http.Request) {
	var req contactsdk.EmailRequest
	if err := httpx.DecodeJSON(w, r, maxJSONBody, &req); err != nil {
		writeBadJSON(w)
		return
	}
	if err := h.AuthService.ResendVerification(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusAccepted, contactsdk.MessageResponse{Message: "if the account exists and is unverified, a link is on its way"})
}

// HandleLogin exchanges credentials for a token pair.
//
//	@Summary		Log in
//	@Description	Accepts a JSON body or an OAuth2 password form (username carries the email). A form login also sets the access_token cookie.
//	@Tags			Auth
//	@Accept			json,x-www-form-urlencoded
//	@Produce		json
//	@Param			request	body		contactsdk.LoginRequest		true	"Credentials"
//	@Success		200		{object}	contactsdk.TokenResponse	"Token pair"
//	@Failure		400		{object}	contactsdk.ErrorResponse	"Malformed body"
//	@Failure		401		{object}	contactsdk.ErrorResponse	"Invalid credentials"
//	@Failure		403		{object}	contactsdk.ErrorResponse	"Email not verified"
//	@Failure		429		{object}	contactsdk.ErrorResponse	"Too many attempts"
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req contactsdk.LoginRequest
	form := isForm(r)
	if form {
		if err := r.ParseForm(); err != nil {
			writeBadJSON(w)
			return
		}
		req.Username = r.PostFormValue("username")
		req.Password = r.PostFormValue("password")
	} else if err := httpx.DecodeJSON(w, r, maxJSONBody, &req); err != nil {
		writeBadJSON(w)
		return
	}

	pair, err := h.AuthService.Login(ctx, req.Username, req.Password)
	if err != nil {
		log.Info("login refused", "error", err)
		writeGrantError(w, r, err)
		return
	}

	if form {
		http.SetCookie(w, &http.Cookie{
			Name:     httpx.AccessTokenCookie,
			Value:    pair.AccessToken,
			Path:     "/",
			MaxAge:   int(pair.ExpiresIn.Seconds()),
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, toTokenResponse(pair))
}

// HandleRefresh rotates a refresh token.
//
//	@Summary		Refresh a session
//	@Description	Exchanges a refresh token for a new pair. The presented token is revoked.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		contactsdk.RefreshRequest	true	"Refresh token"
//	@Success		200		{object}	contactsdk.TokenResponse	"Token pair"
//	@Failure		400		{object}	contactsdk.ErrorResponse	"Malformed body"
//	@Failure		401		{object}	contactsdk.ErrorResponse	"Refresh token unknown, revoked or expired"
//	@Router			/v1/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req contactsdk.RefreshRequest
	if err := httpx.DecodeJSON(w, r, maxJSONBody, &req); err != nil {
		writeBadJSON(w)
		return
	}

	pair, err := h.AuthService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeGrantError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toTokenResponse(pair))
}

// HandleLogout revokes a refresh token and clears the session cookie.
//
//	@Summary		Log out
//	@Tags			Auth
//	@Accept			json
//	@Param			request	body	contactsdk.RefreshRequest	true	"Refresh token to revoke"
//	@Success		204		"Logged out"
//	@Failure		400		{object}	contactsdk.ErrorResponse	"Malformed body"
//	@Router			/v1/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	var req contactsdk.RefreshRequest
	if err := httpx.DecodeJSON(w, r, maxJSONBody, &req); err != nil {
		writeBadJSON(w)
		return
	}
	if err := h.AuthService.Logout(r.Context(), req.RefreshToken); err != nil {
		writeServiceError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     httpx.AccessTokenCookie,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusNoContent)
}

// HandlePasswordReset mails a password reset link.
//
//	@Summary		Request a password reset
//	@Description	Always answers 202 for well formed requests, whether or not the address is registered.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		contactsdk.EmailRequest		true	"Account email"
//	@Success		202		{object}	contactsdk.MessageResponse	"Accepted"
//	@Failure		400		{object}	contactsdk.ErrorResponse	"Malformed body"
//	@Failure		502		{object}	contactsdk.ErrorResponse	"Email could not be sent"
//	@Router			/v1/auth/password-reset [post].
func (h *AuthHandler) HandlePasswordReset(w http.ResponseWriter, r *http.Request) {
	var req contactsdk.EmailRequest
	if err := httpx.DecodeJSON(w, r, maxJSONBody, &req); err != nil {
		writeBadJSON(w)
		return
	}
	if err := h.AuthService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusAccepted, contactsdk.MessageResponse{Message: "if the account exists, a reset link is on its way"})
}

// HandlePasswordResetConfirm sets a new password from a reset token.
//
//	@Summary		Confirm a password reset
//	@Description	Sets the new password, revokes every refresh token and invalidates sessions issued before the change. A reset token works once.
//	@Tags			Auth
//	@Accept			json
//	@Param			request	body	contactsdk.PasswordResetConfirmRequest	true	"Reset token and new password"
//	@Success		204		"Password changed"
//	@Failure		400		{object}	contactsdk.ValidationErrorResponse	"Invalid password"
//	@Failure		401		{object}	contactsdk.ErrorResponse			"Token invalid, expired or already used"
//	@Router			/v1/auth/password-reset/confirm [post].
func (h *AuthHandler) HandlePasswordResetConfirm(w http.ResponseWriter, r *http.Request) {
	var req contactsdk.PasswordResetConfirmRequest
	if err := httpx.DecodeJSON(w, r, maxJSONBody, &req); err != nil {
		writeBadJSON(w)
		return
	}
	if errs := req.Validate(); errs != nil {
		contactsdk.WriteValidationError(w, "validation failed for some fields", errs)
		return
	}

	if err := h.AuthService.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func isForm(r *http.Request) bool {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return strings.EqualFold(ct, "application/x-www-form-urlencoded")
}
