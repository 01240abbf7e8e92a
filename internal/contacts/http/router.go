package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/aussiebroadwan/contacts/api/contacts" // Swagger docs
	"github.com/aussiebroadwan/contacts/internal/contacts/domain"
	"github.com/aussiebroadwan/contacts/internal/contacts/service"
	"github.com/aussiebroadwan/contacts/internal/contacts/store"
	"github.com/aussiebroadwan/contacts/pkg/cachex"
	"github.com/aussiebroadwan/contacts/pkg/contactsdk"
	"github.com/aussiebroadwan/contacts/pkg/httpx"
	"github.com/aussiebroadwan/contacts/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store
	cache        cachex.Cache

	Guard            *service.Guard
	AuthService      *service.AuthService
	ContactService   *service.ContactService
	RolesService     *service.RolesService
	AvatarService    *service.AvatarService
	BootstrapService *service.BootstrapService

	// Media serves disk-stored uploads under /media/. Nil when uploads go
	// to object storage.
	Media http.Handler
	// Today returns the date birthdays are counted from.
	Today func() time.Time
}

func NewRouter(
	buildVersion string,
	st store.Store,
	cache cachex.Cache,
	logger *slog.Logger,
	corsOrigins []string,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
		cache:        cache,
		Today:        time.Now,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.CORS(corsOrigins...),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerAdmin()
	r.registerContacts()
	r.registerSystem()
	r.registerBootstrap()

	if r.Media != nil {
		r.Mux.Handle("GET /media/", r.Media)
	}
	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Contacts API
//	@version		0.1.0
//	@description	Personal contact book with email verified accounts. Sessions are HMAC signed JWTs sent as a Bearer token or the access_token cookie.
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/contacts
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) authn() httpx.Middleware {
	return httpx.AuthnMiddleware(guardAuthenticator{r.Guard})
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService}

	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("GET /v1/auth/verify-email",
		httpx.Chain(http.HandlerFunc(h.HandleVerifyEmail),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/resend-verification",
		httpx.Chain(http.HandlerFunc(h.HandleResendVerification),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// Login is limited by IP + username to slow down credential stuffing
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndField(httpx.StrictLimit, "username"),
		),
	)
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("POST /v1/auth/password-reset",
		httpx.Chain(http.HandlerFunc(h.HandlePasswordReset),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/password-reset/confirm",
		httpx.Chain(http.HandlerFunc(h.HandlePasswordResetConfirm),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{AvatarService: r.AvatarService}

	// GET /me - strict per user, as the profile is the hot path of the cache
	r.Mux.Handle("GET /v1/users/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			r.authn(),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/users/me/avatar",
		httpx.Chain(http.HandlerFunc(h.HandleUploadAvatar),
			r.authn(),
			RequireRole(domain.RoleAdmin),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerAdmin() {
	h := &AdminHandler{RolesService: r.RolesService}

	r.Mux.Handle("POST /v1/admin/users/role",
		httpx.Chain(http.HandlerFunc(h.HandleChangeRole),
			r.authn(),
			RequireRole(domain.RoleAdmin),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerContacts() {
	h := &ContactsHandler{ContactService: r.ContactService, Today: r.Today}

	secured := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn,
			r.authn(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		)
	}

	r.Mux.Handle("POST /v1/contacts", secured(h.HandleCreate))
	r.Mux.Handle("GET /v1/contacts", secured(h.HandleList))
	r.Mux.Handle("GET /v1/contacts/search", secured(h.HandleSearch))
	r.Mux.Handle("GET /v1/contacts/birthdays", secured(h.HandleBirthdays))
	r.Mux.Handle("GET /v1/contacts/{id}", secured(h.HandleGet))
	r.Mux.Handle("PUT /v1/contacts/{id}", secured(h.HandleReplace))
	r.Mux.Handle("PATCH /v1/contacts/{id}", secured(h.HandlePatch))
	r.Mux.Handle("DELETE /v1/contacts/{id}", secured(h.HandleDelete))
}

func (r *Router) registerBootstrap() {
	// POST /bootstrap - very strict rate limit by IP (one-time setup endpoint)
	h := &BootstrapHandler{BootstrapService: r.BootstrapService}
	r.Mux.Handle("POST /v1/bootstrap",
		httpx.Chain(h,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.cache),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

// guardAuthenticator adapts the service guard to the transport's
// Authenticator interface.
type guardAuthenticator struct{ guard *service.Guard }

func (a guardAuthenticator) Authenticate(ctx context.Context, token string) (httpx.Identity, error) {
	p, err := a.guard.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// RequireRole rejects callers whose role is not one of roles. It must run
// after the authentication middleware.
func RequireRole(roles ...domain.Role) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := principal(r)
			if !ok {
				contactsdk.ErrInvalidToken.WriteError(w)
				return
			}
			if err := domain.RequireRole(p, roles...); err != nil {
				slogx.FromContext(r.Context()).Info("role check failed", "role", p.Role)
				contactsdk.ErrAccessDenied.WriteError(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func principal(r *http.Request) (domain.Principal, bool) {
	return httpx.IdentityAs[domain.Principal](r.Context())
}
