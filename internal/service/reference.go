package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/venably/venably/internal/domain"
	"github.com/venably/venably/internal/domain/customer"
	"github.com/venably/venably/internal/domain/venue"
	"github.com/venably/venably/internal/port/cache"
	"github.com/venably/venably/internal/port/database"
)

// referenceCacheTTL keeps reference-data lookups cheap without letting stale
// rows linger; reference rows change rarely and never affect conflict math.
const referenceCacheTTL = time.Minute

// cachedGet serves a reference lookup from the L1 cache, falling back to
// load. c may be nil.
func cachedGet[T any](ctx context.Context, c cache.Cache, key string, load func() (*T, error)) (*T, error) {
	if c != nil {
		if data, ok, _ := c.Get(ctx, key); ok {
			var v T
			if err := json.Unmarshal(data, &v); err == nil {
				return &v, nil
			}
		}
	}
	v, err := load()
	if err != nil {
		return nil, err
	}
	if c != nil {
		if data, err := json.Marshal(v); err == nil {
			_ = c.Set(ctx, key, data, referenceCacheTTL)
		}
	}
	return v, nil
}

// CustomerService handles customer reference data.
type CustomerService struct {
	store database.Store
	cache cache.Cache
}

// NewCustomerService creates a new CustomerService. cache may be nil.
func NewCustomerService(store database.Store, c cache.Cache) *CustomerService {
	return &CustomerService{store: store, cache: c}
}

// Create creates a customer within the tenant.
func (s *CustomerService) Create(ctx context.Context, tenantID string, req customer.CreateRequest) (*customer.Customer, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	return s.store.CreateCustomer(ctx, tenantID, req)
}

// Get returns a customer by ID.
func (s *CustomerService) Get(ctx context.Context, tenantID, id string) (*customer.Customer, error) {
	return cachedGet(ctx, s.cache, "customer:"+tenantID+":"+id, func() (*customer.Customer, error) {
		return s.store.GetCustomer(ctx, tenantID, id)
	})
}

// List returns all customers of the tenant.
func (s *CustomerService) List(ctx context.Context, tenantID string) ([]customer.Customer, error) {
	return s.store.ListCustomers(ctx, tenantID)
}

// VenueService handles venues and their bookable spaces.
type VenueService struct {
	store database.Store
	cache cache.Cache
}

// NewVenueService creates a new VenueService. cache may be nil.
func NewVenueService(store database.Store, c cache.Cache) *VenueService {
	return &VenueService{store: store, cache: c}
}

// CreateVenue creates a venue within the tenant.
func (s *VenueService) CreateVenue(ctx context.Context, tenantID string, req venue.CreateVenueRequest) (*venue.Venue, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	return s.store.CreateVenue(ctx, tenantID, req)
}

// ListVenues returns all venues of the tenant.
func (s *VenueService) ListVenues(ctx context.Context, tenantID string) ([]venue.Venue, error) {
	return s.store.ListVenues(ctx, tenantID)
}

// CreateSpace creates a space under one of the tenant's venues.
func (s *VenueService) CreateSpace(ctx context.Context, tenantID string, req venue.CreateSpaceRequest) (*venue.Space, error) {
	if req.VenueID == "" || req.Name == "" {
		return nil, fmt.Errorf("%w: venue_id and name are required", domain.ErrValidation)
	}
	return s.store.CreateSpace(ctx, tenantID, req)
}

// GetSpace returns a space by ID.
func (s *VenueService) GetSpace(ctx context.Context, tenantID, id string) (*venue.Space, error) {
	return cachedGet(ctx, s.cache, "space:"+tenantID+":"+id, func() (*venue.Space, error) {
		return s.store.GetSpace(ctx, tenantID, id)
	})
}

// ListSpaces returns spaces of the tenant, optionally filtered by venue.
func (s *VenueService) ListSpaces(ctx context.Context, tenantID, venueID string) ([]venue.Space, error) {
	return s.store.ListSpaces(ctx, tenantID, venueID)
}
