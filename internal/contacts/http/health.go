package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/contacts/internal/contacts/store"
	"github.com/aussiebroadwan/contacts/pkg/cachex"
	"github.com/aussiebroadwan/contacts/pkg/contactsdk"
	"github.com/aussiebroadwan/contacts/pkg/httpx"
	"github.com/aussiebroadwan/contacts/pkg/slogx"
)

// pingTimeout bounds each readiness dependency check.
const pingTimeout = 2 * time.Second

// LivezHandler godoc
//
//	@Summary		Liveness check
//	@Description	Returns 200 with uptime and version for as long as the process is serving.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	contactsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, contactsdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: version,
		})
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness check
//	@Description	Pings the database and the profile cache. Answers 503 while either is unreachable.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	contactsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	contactsdk.HealthResponse	"service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, st store.Store, cache cachex.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := contactsdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: version,
			Checks: &contactsdk.HealthChecks{
				Database: ping(r.Context(), st.Ping),
				Cache:    "ok",
			},
		}
		if cache != nil {
			resp.Checks.Cache = ping(r.Context(), cache.Ping)
		}

		code := http.StatusOK
		if resp.Checks.Database != "ok" || resp.Checks.Cache != "ok" {
			resp.Status = "degraded"
			code = http.StatusServiceUnavailable
			slogx.FromContext(r.Context()).Warn("readiness check failed",
				"database", resp.Checks.Database, "cache", resp.Checks.Cache)
		}
		httpx.WriteJSON(w, code, resp)
	}
}

func ping(ctx context.Context, fn func(context.Context) error) string {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
