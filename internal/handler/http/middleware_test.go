package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sitecms/internal/handler/http/requestid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/* ──────────────────────────────── helpers ──────────────────────────────── */

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

/* ──────────────────────────────── Chain ──────────────────────────────── */

func TestChain_FirstIsOutermost(t *testing.T) {
	var order []string
	mw := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(okHandler(), mw("a"), mw("b"), mw("c"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"a", "b", "c"}, order)
}

/* ──────────────────────────────── Logging ──────────────────────────────── */

func TestLogging_WritesRequestLine(t *testing.T) {
	logger, buf := bufferLogger()
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("created"))
	}), requestid.Middleware, Logging(logger))

	req := httptest.NewRequest(http.MethodPost, "/admin/draft/save", nil)
	req.Header.Set(requestid.RequestIDHeader, "req-42")
	h.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "request completed", line["msg"])
	assert.Equal(t, "req-42", line["request_id"])
	assert.Equal(t, "/admin/draft/save", line["path"])
	assert.EqualValues(t, http.StatusCreated, line["status"])
	assert.EqualValues(t, 7, line["bytes"])
}

func TestLogging_ServerErrorsLoggedAtErrorLevel(t *testing.T) {
	logger, buf := bufferLogger()
	h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/news", nil))

	assert.Contains(t, buf.String(), `"level":"ERROR"`)
}

/* ──────────────────────────────── Recover ──────────────────────────────── */

func TestRecover_PanicBecomes500(t *testing.T) {
	logger, buf := bufferLogger()
	h := Recover(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/news", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
	assert.Contains(t, buf.String(), "panic recovered")
}

func TestRecover_PassesThrough(t *testing.T) {
	logger, _ := bufferLogger()
	rec := httptest.NewRecorder()
	Recover(logger)(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

/* ──────────────────────────────── body limits ──────────────────────────────── */

func TestLimitRequestBody(t *testing.T) {
	h := LimitRequestBody(8)(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123")))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireJSON(t *testing.T) {
	tests := []struct {
		name   string
		method string
		ct     string
		body   string
		want   int
	}{
		{"json", http.MethodPost, "application/json; charset=utf-8", `{}`, http.StatusOK},
		{"multipart", http.MethodPost, "multipart/form-data; boundary=x", "--x--", http.StatusOK},
		{"form rejected", http.MethodPut, "application/x-www-form-urlencoded", "a=b", http.StatusUnsupportedMediaType},
		{"empty body", http.MethodPost, "text/plain", "", http.StatusOK},
		{"get ignored", http.MethodGet, "text/plain", "x", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.ct)
			rec := httptest.NewRecorder()
			RequireJSON(okHandler()).ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

/* ──────────────────────────────── rate limiting ──────────────────────────────── */

func TestRateLimiter_BurstThen429(t *testing.T) {
	rl := NewRateLimiter(60, 3)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	h := rl.Limit(okHandler())

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/news", nil)
		req.RemoteAddr = ip + ":5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, send("10.0.0.1").Code, "request %d", i)
	}
	rec := send("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))

	// another client has its own bucket
	assert.Equal(t, http.StatusOK, send("10.0.0.2").Code)

	// one token per second refills
	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, send("10.0.0.1").Code)
	assert.Equal(t, 2, rl.Visitors())
}

func TestRateLimiter_PrunesIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(60, 1)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.allow("10.0.0.1")
	rl.allow("10.0.0.2")
	require.Equal(t, 2, rl.Visitors())

	now = now.Add(11 * time.Minute)
	rl.allow("10.0.0.3")
	assert.Equal(t, 1, rl.Visitors())
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		xff     string
		realIP  string
		remote  string
		want    string
	}{
		{"forwarded first hop", "203.0.113.7, 10.0.0.1", "", "10.0.0.1:1", "203.0.113.7"},
		{"real ip", "", "198.51.100.2", "10.0.0.1:1", "198.51.100.2"},
		{"invalid forwarded falls back", "garbage", "", "192.0.2.1:443", "192.0.2.1"},
		{"remote without port", "", "", "192.0.2.9", "192.0.2.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}
