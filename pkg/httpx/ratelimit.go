package httpx

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/contacts/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimitConfig is a token bucket expressed as "N requests per window".
type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
	Burst             int
}

// Built-in profiles. Each can be overridden through
// RATELIMIT_<PROFILE>_REQUESTS, RATELIMIT_<PROFILE>_WINDOW_SEC and
// RATELIMIT_<PROFILE>_BURST, which is how the e2e suite loosens them.
var (
	// StrictLimit guards credential endpoints and the profile lookup.
	StrictLimit = RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}

	// ModerateLimit guards token refresh and admin writes.
	ModerateLimit = RateLimitConfig{RequestsPerWindow: 20, Window: time.Minute, Burst: 20}

	// LenientLimit guards contact CRUD.
	LenientLimit = RateLimitConfig{RequestsPerWindow: 100, Window: time.Minute, Burst: 100}
)

func init() {
	StrictLimit = ParseRateLimitFromEnv("STRICT", StrictLimit)
	ModerateLimit = ParseRateLimitFromEnv("MODERATE", ModerateLimit)
	LenientLimit = ParseRateLimitFromEnv("LENIENT", LenientLimit)
}

// ParseRateLimitFromEnv overlays RATELIMIT_<prefix>_* variables on def.
// Non-positive or unparsable values are ignored.
func ParseRateLimitFromEnv(prefix string, def RateLimitConfig) RateLimitConfig {
	cfg := def
	if n, ok := positiveEnvInt("RATELIMIT_" + prefix + "_REQUESTS"); ok {
		cfg.RequestsPerWindow = n
	}
	if n, ok := positiveEnvInt("RATELIMIT_" + prefix + "_WINDOW_SEC"); ok {
		cfg.Window = time.Duration(n) * time.Second
	}
	if n, ok := positiveEnvInt("RATELIMIT_" + prefix + "_BURST"); ok {
		cfg.Burst = n
	}
	return cfg
}

func positiveEnvInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// KeyExtractor maps a request to the bucket it is charged against.
// An empty key means "do not limit this request".
type KeyExtractor func(*http.Request) string

// IPKeyExtractor uses the first X-Forwarded-For hop, then X-Real-IP, then
// the connection's remote address.
func IPKeyExtractor(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// UserKeyExtractor uses the subject of the authenticated identity. It must
// run after AuthnMiddleware.
func UserKeyExtractor(r *http.Request) string {
	if id, ok := IdentityFrom(r.Context()); ok {
		return "user:" + id.SubjectID()
	}
	return ""
}

// CompositeKeyExtractor joins the non-empty keys of every extractor.
func CompositeKeyExtractor(sep string, extractors ...KeyExtractor) KeyExtractor {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(extractors))
		for _, ex := range extractors {
			if k := ex(r); k != "" {
				parts = append(parts, k)
			}
		}
		return strings.Join(parts, sep)
	}
}

// maxPeekBody bounds how much of a JSON body FieldKeyExtractor will buffer.
const maxPeekBody = 64 << 10

// FieldKeyExtractor reads a field from the query string, a url-encoded form
// or a JSON object body. A JSON body is restored after reading so the
// handler can decode it again.
func FieldKeyExtractor(field string) KeyExtractor {
	return func(r *http.Request) string {
		ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if ct != "application/json" || r.Body == nil {
			if err := r.ParseForm(); err == nil {
				return strings.ToLower(strings.TrimSpace(r.FormValue(field)))
			}
			return ""
		}

		raw, err := io.ReadAll(io.LimitReader(r.Body, maxPeekBody))
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(raw))
		if err != nil {
			return ""
		}

		var obj map[string]any
		if json.Unmarshal(raw, &obj) != nil {
			return ""
		}
		s, _ := obj[field].(string)
		return strings.ToLower(strings.TrimSpace(s))
	}
}

// limiterSet holds one token bucket per key.
type limiterSet struct {
	buckets sync.Map // string -> *rate.Limiter
	limit   rate.Limit
	burst   int

	mu        sync.Mutex
	lastSweep time.Time
}

func (s *limiterSet) get(key string) *rate.Limiter {
	if l, ok := s.buckets.Load(key); ok {
		return l.(*rate.Limiter)
	}
	l, _ := s.buckets.LoadOrStore(key, rate.NewLimiter(s.limit, s.burst))
	s.sweep()
	return l.(*rate.Limiter)
}

// sweep drops full buckets at most every five minutes; a full bucket is
// indistinguishable from a new one, so nothing is lost.
func (s *limiterSet) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if time.Since(s.lastSweep) < 5*time.Minute {
		return
	}
	s.lastSweep = time.Now()

	s.buckets.Range(func(k, v any) bool {
		if v.(*rate.Limiter).Tokens() >= float64(s.burst) {
			s.buckets.Delete(k)
		}
		return true
	})
}

// RateLimitMiddleware limits requests per key. Rejected requests get 429
// with Retry-After and a rate_limit_exceeded JSON body.
func RateLimitMiddleware(cfg RateLimitConfig, keyFn KeyExtractor) Middleware {
	set := &limiterSet{
		limit:     rate.Limit(float64(cfg.RequestsPerWindow) / cfg.Window.Seconds()),
		burst:     cfg.Burst,
		lastSweep: time.Now(),
	}
	limitHeader := strconv.Itoa(cfg.RequestsPerWindow)
	windowHeader := cfg.Window.String()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := slogx.FromContext(r.Context())

			key := keyFn(r)
			if key == "" {
				log.Warn("rate limit key empty, request not limited", "path", r.URL.Path)
				next.ServeHTTP(w, r)
				return
			}

			lim := set.get(key)
			if lim.Allow() {
				next.ServeHTTP(w, r)
				return
			}

			res := lim.Reserve()
			retry := max(int(res.Delay().Seconds()), 1)
			res.Cancel()

			w.Header().Set("Retry-After", strconv.Itoa(retry))
			w.Header().Set("X-RateLimit-Limit", limitHeader)
			w.Header().Set("X-RateLimit-Window", windowHeader)

			log.Warn("rate limit exceeded", "key", key, "retry_after", retry)
			WriteJSON(w, http.StatusTooManyRequests, map[string]string{
				"error":             "rate_limit_exceeded",
				"error_description": "too many requests, retry later",
			})
		})
	}
}

// RateLimitByIP limits by client address.
func RateLimitByIP(cfg RateLimitConfig) Middleware {
	return RateLimitMiddleware(cfg, IPKeyExtractor)
}

// RateLimitByUser limits by authenticated subject, falling back to the
// client address for anonymous requests.
func RateLimitByUser(cfg RateLimitConfig) Middleware {
	return RateLimitMiddleware(cfg, func(r *http.Request) string {
		if k := UserKeyExtractor(r); k != "" {
			return k
		}
		return IPKeyExtractor(r)
	})
}

// RateLimitByIPAndField limits by client address plus a request field, so
// one address hammering many accounts is spread over separate buckets but a
// single account cannot be brute forced from it.
func RateLimitByIPAndField(cfg RateLimitConfig, field string) Middleware {
	return RateLimitMiddleware(cfg, CompositeKeyExtractor(":", IPKeyExtractor, FieldKeyExtractor(field)))
}
