package httpx

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS allows browser clients from the given origins, with credentials so
// the access_token cookie is sent along.
func CORS(origins ...string) Middleware {
	allowed := make([]string, 0, len(origins))
	for _, o := range origins {
		if o != "" {
			allowed = append(allowed, o)
		}
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   allowed,
		AllowCredentials: true,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler
}
