package slogx_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/contacts/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, slogx.ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, slogx.ParseLevel("warning"))
	require.Equal(t, slog.LevelError, slogx.ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, slogx.ParseLevel("bogus"))
}

func TestNew_RedactsCredentials(t *testing.T) {
	var buf bytes.Buffer
	logger := slogx.New(slogx.Config{Service: "contacts-api", Version: "test", Env: "test", Output: &buf})
	t.Cleanup(func() { slog.SetDefault(slogx.Discard()) })

	logger.Info("login", "email", "ada@example.com", "password", "hunter22", slog.Group("req", "Refresh_Token", "abc"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "contacts-api", line["service"])
	require.Equal(t, "ada@example.com", line["email"])
	require.Equal(t, "[redacted]", line["password"])
	require.Equal(t, map[string]any{"Refresh_Token": "[redacted]"}, line["req"])
}

func TestHTTPMiddleware(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	h := slogx.HTTPMiddleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := slogx.WithUser(r.Context(), "u-1")
		slogx.FromContext(ctx).Info("inside")
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(slogx.RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, "req-123", rec.Header().Get(slogx.RequestIDHeader))

	dec := json.NewDecoder(&buf)
	var inside, access map[string]any
	require.NoError(t, dec.Decode(&inside))
	require.NoError(t, dec.Decode(&access))

	require.Equal(t, "inside", inside["msg"])
	require.Equal(t, "req-123", inside["req_id"])
	require.Equal(t, "u-1", inside["user_id"])

	require.Equal(t, "http_request", access["msg"])
	require.EqualValues(t, http.StatusTeapot, access["status"])
	require.Equal(t, "/x", access["path"])
}

func TestHTTPMiddleware_GeneratesRequestID(t *testing.T) {
	h := slogx.HTTPMiddleware(slogx.Discard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Len(t, rec.Header().Get(slogx.RequestIDHeader), 26)
}
