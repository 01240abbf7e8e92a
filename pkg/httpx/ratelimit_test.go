package httpx_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/contacts/pkg/httpx"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestIPKeyExtractor(t *testing.T) {
	t.Run("remote addr", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		require.Equal(t, "192.168.1.1", httpx.IPKeyExtractor(req))
	})

	t.Run("first forwarded hop wins", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.1, 10.0.0.1")
		req.Header.Set("X-Real-IP", "203.0.113.9")
		require.Equal(t, "203.0.113.1", httpx.IPKeyExtractor(req))
	})

	t.Run("real ip", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Real-IP", " 203.0.113.2 ")
		require.Equal(t, "203.0.113.2", httpx.IPKeyExtractor(req))
	})
}

func TestFieldKeyExtractor(t *testing.T) {
	ex := httpx.FieldKeyExtractor("username")

	t.Run("form body", func(t *testing.T) {
		form := url.Values{"username": {"Bob@Example.com"}}
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		require.Equal(t, "bob@example.com", ex(req))
	})

	t.Run("json body is restored", func(t *testing.T) {
		body := `{"username":"alice@example.com","password":"x"}`
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json; charset=utf-8")

		require.Equal(t, "alice@example.com", ex(req))

		restored, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		require.Equal(t, body, string(restored))
	})

	t.Run("missing field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		require.Empty(t, ex(req))
	})
}

func TestCompositeKeyExtractor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?username=alice", nil)
	req.RemoteAddr = "192.168.1.1:12345"

	ex := httpx.CompositeKeyExtractor(":", httpx.IPKeyExtractor, httpx.FieldKeyExtractor("username"))
	require.Equal(t, "192.168.1.1:alice", ex(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	require.Equal(t, "192.168.1.1", ex(req))
}

func TestRateLimitMiddleware(t *testing.T) {
	cfg := httpx.RateLimitConfig{RequestsPerWindow: 3, Window: time.Minute, Burst: 3}
	h := httpx.RateLimitByIP(cfg)(okHandler)

	do := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	for i := range 3 {
		require.Equal(t, http.StatusOK, do("10.0.0.1:1").Code, "request %d", i)
	}

	rec := do("10.0.0.1:1")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
	require.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
	require.Contains(t, rec.Body.String(), "rate_limit_exceeded")

	// other clients have their own bucket
	require.Equal(t, http.StatusOK, do("10.0.0.2:1").Code)
}

func TestRateLimitMiddleware_EmptyKeyPassesThrough(t *testing.T) {
	cfg := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
	h := httpx.RateLimitMiddleware(cfg, func(*http.Request) string { return "" })(okHandler)

	for range 5 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimitByUser(t *testing.T) {
	cfg := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
	h := httpx.RateLimitByUser(cfg)(okHandler)

	do := func(user string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1"
		req = req.WithContext(httpx.WithIdentity(req.Context(), testIdentity{id: user, role: "user"}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, do("alice"))
	require.Equal(t, http.StatusTooManyRequests, do("alice"))
	require.Equal(t, http.StatusOK, do("bob"), "same address, different user")
}

func TestParseRateLimitFromEnv(t *testing.T) {
	def := httpx.RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}

	t.Setenv("RATELIMIT_TEST_REQUESTS", "50")
	t.Setenv("RATELIMIT_TEST_WINDOW_SEC", "10")
	t.Setenv("RATELIMIT_TEST_BURST", "-1")

	got := httpx.ParseRateLimitFromEnv("TEST", def)
	require.Equal(t, 50, got.RequestsPerWindow)
	require.Equal(t, 10*time.Second, got.Window)
	require.Equal(t, 5, got.Burst, "invalid values keep the default")

	require.Equal(t, def, httpx.ParseRateLimitFromEnv("UNSET", def))
}
