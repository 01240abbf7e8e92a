package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/contacts/internal/contacts/mail"
	"github.com/aussiebroadwan/contacts/internal/contacts/media"
	"github.com/aussiebroadwan/contacts/internal/contacts/service"
	"github.com/aussiebroadwan/contacts/internal/contacts/store/drivers/sqlite"
	"github.com/aussiebroadwan/contacts/pkg/cachex"
	"github.com/aussiebroadwan/contacts/pkg/contactsdk"
	"github.com/aussiebroadwan/contacts/pkg/cryptox"
	"github.com/aussiebroadwan/contacts/pkg/httpx"
	"github.com/aussiebroadwan/contacts/pkg/jwtx"
	"github.com/aussiebroadwan/contacts/pkg/slogx"
)

const (
	testPassword  = "password123"
	testBootstrap = "bootstrap-secret"
)

func TestMain(m *testing.M) {
	cryptox.SetPepper("http-test-pepper")

	// Every request in these tests comes from the same address.
	relaxed := httpx.RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000}
	httpx.StrictLimit = relaxed
	httpx.ModerateLimit = relaxed
	os.Exit(m.Run())
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// outbox is a mail transport that keeps every message.
type outbox struct {
	mu   sync.Mutex
	msgs []mail.Message
}

func (o *outbox) Send(_ context.Context, m mail.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.msgs = append(o.msgs, m)
	return nil
}

// token returns the token of the last link mailed to to.
func (o *outbox) token(t *testing.T, to string) string {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := len(o.msgs) - 1; i >= 0; i-- {
		if o.msgs[i].To == to {
			u, err := url.Parse(o.msgs[i].Link)
			require.NoError(t, err)
			return u.Query().Get("token")
		}
	}
	t.Fatalf("no mail sent to %s", to)
	return ""
}

type testServer struct {
	Router *Router
	Clock  *testClock
	Outbox *outbox
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithLogger(t, slogx.Discard())
}

func newTestServerWithLogger(t *testing.T, logger *slog.Logger) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	clk := &testClock{t: time.Date(2025, 12, 28, 9, 0, 0, 0, time.UTC)}
	h, err := jwtx.NewHMAC("HS256", []byte("0123456789abcdef0123456789abcdef"), "contacts-test")
	require.NoError(t, err)
	h.WithClock(clk.Now)

	mem := cachex.NewMemory()
	mem.Now = clk.Now

	box := &outbox{}
	mailer := &mail.Mailer{Transport: box, AppName: "Contacts"}
	disk := &media.DiskUploader{Dir: t.TempDir(), BaseURL: "http://localhost:8080"}

	tokens := &service.TokenService{Signer: h, Verifier: h, Issuer: "contacts-test", Now: clk.Now}
	cache := &service.ProfileCache{Cache: mem, TTL: 5 * time.Minute}

	r := NewRouter("test", st, mem, logger, []string{"http://localhost:3000"})
	r.Guard = &service.Guard{Tokens: tokens, Store: st, Cache: cache}
	r.AuthService = &service.AuthService{
		Store:      st,
		Tokens:     tokens,
		Mail:       mailer,
		Cache:      cache,
		AccessTTL:  30 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
		VerifyTTL:  24 * time.Hour,
		ResetTTL:   time.Hour,
		VerifyURL:  "http://localhost:8080/v1/auth/verify-email",
		ResetURL:   "http://localhost:3000/reset-password",
		Now:        clk.Now,
	}
	r.ContactService = &service.ContactService{Store: st, Now: clk.Now}
	r.RolesService = &service.RolesService{Store: st, Now: clk.Now}
	r.AvatarService = &service.AvatarService{Store: st, Uploader: disk, Cache: cache, Now: clk.Now}
	r.BootstrapService = &service.BootstrapService{Store: st, Token: testBootstrap, Now: clk.Now}
	r.Media = disk.Handler()
	r.Today = clk.Now
	r.ApplyRoutes()

	return &testServer{Router: r, Clock: clk, Outbox: box}
}

type request struct {
	Method  string
	Path    string
	Body    any
	Token   string
	Headers map[string]string
}

func (s *testServer) do(t *testing.T, req request) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if req.Body != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(req.Body))
	}
	r := httptest.NewRequest(req.Method, req.Path, &body)
	if req.Body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if req.Token != "" {
		r.Header.Set("Authorization", "Bearer "+req.Token)
	}
	for k, v := range req.Headers {
		r.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// signup registers email, follows the verification link and logs in. It
// returns the access token.
func (s *testServer) signup(t *testing.T, email, username string) string {
	t.Helper()

	w := s.do(t, request{Method: http.MethodPost, Path: "/v1/auth/register", Body: contactsdk.RegisterRequest{
		Email: email, Username: username, Password: testPassword,
	}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, request{Method: http.MethodGet, Path: "/v1/auth/verify-email?token=" + s.Outbox.token(t, email)})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	return s.login(t, email).AccessToken
}

func (s *testServer) login(t *testing.T, email string) contactsdk.TokenResponse {
	t.Helper()
	w := s.do(t, request{Method: http.MethodPost, Path: "/v1/auth/login", Body: contactsdk.LoginRequest{
		Username: email, Password: testPassword,
	}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[contactsdk.TokenResponse](t, w)
}

// admin bootstraps root@example.com and returns its access token.
func (s *testServer) admin(t *testing.T) string {
	t.Helper()
	w := s.do(t, request{
		Method:  http.MethodPost,
		Path:    "/v1/bootstrap",
		Headers: map[string]string{BootstrapTokenHeader: testBootstrap},
		Body: contactsdk.BootstrapRequest{
			Email: "root@example.com", Username: "root", Password: testPassword,
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return s.login(t, "root@example.com").AccessToken
}
