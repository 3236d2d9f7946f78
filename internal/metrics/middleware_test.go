package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/get-document/{entity}/{category}/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("%PDF-1.4"))
	})

	req := httptest.NewRequest("GET", "/get-document/E/C/42", http.NoBody)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	pattern := "/get-document/{entity}/{category}/{id}"
	if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", pattern, "200")); v < 1 {
		t.Errorf("expected http_requests_total >= 1 for route pattern, got %f", v)
	}
	if v := testutil.ToFloat64(httpResponseBytes.WithLabelValues(pattern)); v < 8 {
		t.Errorf("expected response bytes >= 8, got %f", v)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected http_request_duration_seconds to have observations")
	}
}

func TestMetricsMiddleware_StatusCodes(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/upstream", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.WriteHeader(http.StatusOK) // ignored: first status wins
	})

	tests := []struct {
		path   string
		status string
	}{
		{"/ok", "200"},
		{"/missing", "404"},
		{"/upstream", "502"},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			req := httptest.NewRequest("GET", tc.path, http.NoBody)
			r.ServeHTTP(httptest.NewRecorder(), req)

			if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", tc.path, tc.status)); v < 1 {
				t.Errorf("expected requests_total for %s with status %s >= 1, got %f", tc.path, tc.status, v)
			}
		})
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "unknown"},
		{"/api/v1/document-request/entities", "/api/v1/document-request/entities"},
		{"/health", "/health"},
	}
	for _, tc := range tests {
		if got := normalizePath(tc.input); got != tc.expected {
			t.Errorf("normalizePath(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestObserveUpstream(t *testing.T) {
	before := testutil.ToFloat64(UpstreamRequestsTotal.WithLabelValues(TargetMetadata, "page_counts", "error"))

	ObserveUpstream(TargetMetadata, "page_counts", time.Now(), errors.New("db down"))
	ObserveUpstream(TargetMetadata, "page_counts", time.Now(), nil)

	after := testutil.ToFloat64(UpstreamRequestsTotal.WithLabelValues(TargetMetadata, "page_counts", "error"))
	if after-before != 1 {
		t.Errorf("error counter delta = %f, want 1", after-before)
	}
	if v := testutil.ToFloat64(UpstreamRequestsTotal.WithLabelValues(TargetMetadata, "page_counts", "success")); v < 1 {
		t.Errorf("success counter = %f, want >= 1", v)
	}
}

func TestRegisterUpstreamMetrics_Twice(t *testing.T) {
	RegisterUpstreamMetrics()
	RegisterUpstreamMetrics()
}
