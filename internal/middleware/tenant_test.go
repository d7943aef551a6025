package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/venably/venably/internal/domain"
	"github.com/venably/venably/internal/middleware"
)

func TestTenantIDFromHeader(t *testing.T) {
	var got string
	handler := middleware.TenantID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got, _ = middleware.TenantIDFromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", http.NoBody)
	req.Header.Set("X-Tenant-ID", "tenant-abc")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got != "tenant-abc" {
		t.Fatalf("expected tenant-abc, got %s", got)
	}
}

func TestTenantIDMissingRejected(t *testing.T) {
	called := false
	handler := middleware.TenantID(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", http.NoBody))

	if called {
		t.Fatal("handler should not run without a tenant ID")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTenantIDFromContextMissing(t *testing.T) {
	req := httptest.NewRequest("GET", "/", http.NoBody)
	_, err := middleware.TenantIDFromContext(req.Context())
	if !errors.Is(err, domain.ErrTenantRequired) {
		t.Fatalf("expected ErrTenantRequired, got %v", err)
	}
}
