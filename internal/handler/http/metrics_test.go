package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"article-management/internal/observability/metrics"
)

func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /metrics-test/{id}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})
	h := MetricsMiddleware(mux)

	const route = "GET /metrics-test/{id}"
	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, route, "200")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"1", "2", "3"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics-test/"+id, nil))
	}

	assert.Equal(t, before+3, testutil.ToFloat64(counter))
	assert.Zero(t, testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/metrics-test/1", "200")),
		"raw paths must not become label values")
}

func TestMetricsMiddleware_Unmatched(t *testing.T) {
	h := MetricsMiddleware(http.NewServeMux())

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404")
	before := testutil.ToFloat64(counter)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/does-not-exist", nil))

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestMetricsMiddleware_InFlightReturnsToZero(t *testing.T) {
	before := testutil.ToFloat64(metrics.HTTPRequestsInFlight)
	var during float64
	h := MetricsMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		during = testutil.ToFloat64(metrics.HTTPRequestsInFlight)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, before+1, during)
	assert.Equal(t, before, testutil.ToFloat64(metrics.HTTPRequestsInFlight))
}

func TestMetricsHandler(t *testing.T) {
	metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "GET /exposed", "200").Inc()

	rec := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "http_requests_total"))
}
