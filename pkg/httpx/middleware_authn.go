package httpx

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/contacts/pkg/slogx"
)

// AccessTokenCookie is read when no Authorization header is present.
const AccessTokenCookie = "access_token"

// AuthnMiddleware authenticates the request with the Authenticator and
// stores the resulting identity on the request context. Requests without a
// valid token are rejected with 401 and a WWW-Authenticate challenge.
func AuthnMiddleware(auth Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			tok := BearerToken(r)
			if tok == "" {
				writeBearerError(w, "invalid_request", "missing bearer token")
				return
			}

			id, err := auth.Authenticate(ctx, tok)
			if err != nil {
				log.Debug("authentication failed", "error", err)
				writeBearerError(w, "invalid_token", "token is invalid or expired")
				return
			}

			ctx = WithIdentity(ctx, id)
			ctx = slogx.WithUser(ctx, id.SubjectID())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from "Authorization: Bearer <t>" or, as a
// fallback, the access_token cookie.
func BearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, tok, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(tok)
		}
		return ""
	}
	if c, err := r.Cookie(AccessTokenCookie); err == nil {
		return c.Value
	}
	return ""
}

func writeBearerError(w http.ResponseWriter, code, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="`+code+`", error_description="`+desc+`"`)
	WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"error":             code,
		"error_description": desc,
	})
}
