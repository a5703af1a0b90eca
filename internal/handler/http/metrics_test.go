package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("GET /news/{slug}", okHandler())
	h := MetricsMiddleware(mux)

	route := "GET /news/{slug}"
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, route, "200"))

	for _, slug := range []string{"a", "b", "c"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/news/"+slug, nil))
	}

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, route, "200"))
	assert.Equal(t, 3.0, after-before)
}

func TestMetricsMiddleware_UnmatchedRoute(t *testing.T) {
	h := MetricsMiddleware(http.NewServeMux())
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope/123", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404"))
	assert.Equal(t, 1.0, after-before)
}

func TestMetricsHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_in_flight")
}
