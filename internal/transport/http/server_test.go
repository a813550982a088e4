package http

import (
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/nplate/relay/internal/admin"
)

func TestAdminRouterServesRecentActivity(t *testing.T) {
	recent := admin.NewRecent(admin.DefaultCapacity)
	r := chi.NewRouter()
	mountAdmin(r, recent)
	srv := httptest.NewServer(r)
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/admin/recent")
	if err != nil {
		t.Fatalf("GET /admin/recent: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected application/json, got %q", ct)
	}
}

func TestMetricsRouterServesPrometheusText(t *testing.T) {
	r := chi.NewRouter()
	mountMetrics(r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestCoServedRoutersDoNotShadowEachOther(t *testing.T) {
	recent := admin.NewRecent(admin.DefaultCapacity)
	r := chi.NewRouter()
	mountAdmin(r, recent)
	mountMetrics(r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	for _, path := range []string{"/admin/recent", "/metrics"} {
		resp, err := srv.Client().Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != 200 {
			t.Fatalf("GET %s: expected 200, got %d", path, resp.StatusCode)
		}
	}
}
