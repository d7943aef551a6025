package middleware

import (
	"context"
	"net/http"

	"github.com/venably/venably/internal/domain"
)

const headerTenantID = "X-Tenant-ID"

type tenantCtxKey struct{}

// TenantID is middleware that extracts the tenant ID from the X-Tenant-ID
// header and stores it in the request context. Requests without a tenant ID
// are rejected with 400; there is no default tenant.
func TenantID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tid := r.Header.Get(headerTenantID)
		if tid == "" {
			http.Error(w, `{"error":"missing X-Tenant-ID header"}`, http.StatusBadRequest)
			return
		}
		ctx := context.WithValue(r.Context(), tenantCtxKey{}, tid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TenantIDFromContext returns the tenant ID stored in ctx. Returns
// domain.ErrTenantRequired if no tenant ID is set, so callers fail closed
// rather than reading another tenant's rows.
func TenantIDFromContext(ctx context.Context) (string, error) {
	tid, ok := ctx.Value(tenantCtxKey{}).(string)
	if !ok || tid == "" {
		return "", domain.ErrTenantRequired
	}
	return tid, nil
}
