// Package service implements business logic on top of ports.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/venably/venably/internal/domain"
	"github.com/venably/venably/internal/domain/tenant"
	"github.com/venably/venably/internal/port/cache"
	"github.com/venably/venably/internal/port/database"
)

// tenantCacheTTL bounds how long a suspended tenant can keep writing after
// suspension takes effect in the database.
const tenantCacheTTL = 30 * time.Second

// TenantService resolves and administers tenants. Resolve is on the hot path
// of every write, so lookups go through an in-process cache.
type TenantService struct {
	store database.Store
	cache cache.Cache
}

// NewTenantService creates a new TenantService. cache may be nil.
func NewTenantService(store database.Store, c cache.Cache) *TenantService {
	return &TenantService{store: store, cache: c}
}

// Resolve returns the active tenant for id. It fails closed: an empty id, an
// unknown tenant, and a suspended tenant are all errors, never a fallback to
// some default scope.
func (s *TenantService) Resolve(ctx context.Context, id string) (*tenant.Tenant, error) {
	if id == "" {
		return nil, domain.ErrTenantRequired
	}

	t, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.Active() {
		return nil, fmt.Errorf("%w: tenant %s", domain.ErrTenantSuspended, id)
	}
	return t, nil
}

func (s *TenantService) lookup(ctx context.Context, id string) (*tenant.Tenant, error) {
	key := "tenant:" + id
	if s.cache != nil {
		if data, ok, _ := s.cache.Get(ctx, key); ok {
			var t tenant.Tenant
			if err := json.Unmarshal(data, &t); err == nil {
				return &t, nil
			}
		}
	}

	t, err := s.store.GetTenant(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if data, err := json.Marshal(t); err == nil {
			_ = s.cache.Set(ctx, key, data, tenantCacheTTL)
		}
	}
	return t, nil
}

// Create registers a new tenant.
func (s *TenantService) Create(ctx context.Context, req tenant.CreateRequest) (*tenant.Tenant, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	return s.store.CreateTenant(ctx, req)
}

// Get returns a tenant by ID.
func (s *TenantService) Get(ctx context.Context, id string) (*tenant.Tenant, error) {
	return s.store.GetTenant(ctx, id)
}

// List returns all tenants.
func (s *TenantService) List(ctx context.Context) ([]tenant.Tenant, error) {
	return s.store.ListTenants(ctx)
}

// Update applies partial updates to a tenant and invalidates its cache entry,
// so a suspension is visible to Resolve within one cache TTL at most.
func (s *TenantService) Update(ctx context.Context, id string, req tenant.UpdateRequest) (*tenant.Tenant, error) {
	if req.Status != nil && *req.Status != tenant.StatusActive && *req.Status != tenant.StatusSuspended {
		return nil, fmt.Errorf("%w: unknown tenant status %q", domain.ErrValidation, *req.Status)
	}
	t, err := s.store.UpdateTenant(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, "tenant:"+id)
	}
	return t, nil
}
