package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"credit-portal/internal/infrastructure/monitoring"
)

func TestMetricsMiddleware(t *testing.T) {
	monitoring.HTTP.RequestsTotal.Reset()
	monitoring.HTTP.RequestDuration.Reset()

	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r := chi.NewRouter()
	r.Use(MetricsMiddleware())
	r.Get("/offers/{offerID}", testHandler)

	req := httptest.NewRequest(http.MethodGet, "/offers/abc", nil)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	// Labelled by route pattern, not the concrete path.
	count := testutil.ToFloat64(monitoring.HTTP.RequestsTotal.WithLabelValues(http.MethodGet, "/offers/{offerID}", "200"))
	if count != 1 {
		t.Errorf("expected 1 recorded request, got %v", count)
	}
}
