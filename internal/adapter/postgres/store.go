package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/venably/venably/internal/domain"
	"github.com/venably/venably/internal/domain/customer"
	"github.com/venably/venably/internal/domain/tenant"
	"github.com/venably/venably/internal/domain/venue"
)

// Store implements database.Store using PostgreSQL. Every tenant-scoped
// query carries tenant_id as an equality predicate; the tenant ID is an
// explicit parameter on every method, never ambient state.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// --- Tenants (admin surface, deliberately unscoped) ---

func (s *Store) CreateTenant(ctx context.Context, req tenant.CreateRequest) (*tenant.Tenant, error) {
	var t tenant.Tenant
	err := s.pool.QueryRow(ctx,
		`INSERT INTO tenants (name, slug) VALUES ($1, $2)
		 RETURNING id, name, slug, status, created_at, updated_at`,
		req.Name, req.Slug,
	).Scan(&t.ID, &t.Name, &t.Slug, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create tenant: %w", err)
	}
	return &t, nil
}

func (s *Store) GetTenant(ctx context.Context, id string) (*tenant.Tenant, error) {
	var t tenant.Tenant
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, slug, status, created_at, updated_at
		 FROM tenants WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.Slug, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, notFoundWrap(err, "get tenant %s", id)
	}
	return &t, nil
}

func (s *Store) ListTenants(ctx context.Context) ([]tenant.Tenant, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, slug, status, created_at, updated_at
		 FROM tenants ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []tenant.Tenant
	for rows.Next() {
		var t tenant.Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

func (s *Store) UpdateTenant(ctx context.Context, id string, req tenant.UpdateRequest) (*tenant.Tenant, error) {
	t, err := s.GetTenant(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != "" {
		t.Name = req.Name
	}
	if req.Status != nil {
		t.Status = *req.Status
	}
	err = s.pool.QueryRow(ctx,
		`UPDATE tenants SET name = $2, status = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at`,
		t.ID, t.Name, t.Status,
	).Scan(&t.UpdatedAt)
	if err != nil {
		return nil, notFoundWrap(err, "update tenant %s", id)
	}
	return t, nil
}

// --- Customers ---

func (s *Store) CreateCustomer(ctx context.Context, tenantID string, req customer.CreateRequest) (*customer.Customer, error) {
	var c customer.Customer
	err := s.pool.QueryRow(ctx,
		`INSERT INTO customers (tenant_id, name, email, phone)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, tenant_id, name, email, phone, created_at, updated_at`,
		tenantID, req.Name, req.Email, req.Phone,
	).Scan(&c.ID, &c.TenantID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return &c, nil
}

func (s *Store) GetCustomer(ctx context.Context, tenantID, id string) (*customer.Customer, error) {
	var c customer.Customer
	err := s.pool.QueryRow(ctx,
		`SELECT id, tenant_id, name, email, phone, created_at, updated_at
		 FROM customers WHERE id = $1 AND tenant_id = $2`, id, tenantID,
	).Scan(&c.ID, &c.TenantID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, notFoundWrap(err, "get customer %s", id)
	}
	return &c, nil
}

func (s *Store) ListCustomers(ctx context.Context, tenantID string) ([]customer.Customer, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, tenant_id, name, email, phone, created_at, updated_at
		 FROM customers WHERE tenant_id = $1 ORDER BY name ASC`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var customers []customer.Customer
	for rows.Next() {
		var c customer.Customer
		if err := rows.Scan(&c.ID, &c.TenantID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// --- Venues and spaces ---

func (s *Store) CreateVenue(ctx context.Context, tenantID string, req venue.CreateVenueRequest) (*venue.Venue, error) {
	var v venue.Venue
	err := s.pool.QueryRow(ctx,
		`INSERT INTO venues (tenant_id, name, address)
		 VALUES ($1, $2, $3)
		 RETURNING id, tenant_id, name, address, created_at, updated_at`,
		tenantID, req.Name, req.Address,
	).Scan(&v.ID, &v.TenantID, &v.Name, &v.Address, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create venue: %w", err)
	}
	return &v, nil
}

func (s *Store) ListVenues(ctx context.Context, tenantID string) ([]venue.Venue, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, tenant_id, name, address, created_at, updated_at
		 FROM venues WHERE tenant_id = $1 ORDER BY name ASC`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	defer rows.Close()

	var venues []venue.Venue
	for rows.Next() {
		var v venue.Venue
		if err := rows.Scan(&v.ID, &v.TenantID, &v.Name, &v.Address, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan venue: %w", err)
		}
		venues = append(venues, v)
	}
	return venues, rows.Err()
}

func (s *Store) CreateSpace(ctx context.Context, tenantID string, req venue.CreateSpaceRequest) (*venue.Space, error) {
	// The venue must belong to the same tenant; a bare FK would accept a
	// venue from another tenant.
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM venues WHERE id = $1 AND tenant_id = $2)`,
		req.VenueID, tenantID,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check venue %s: %w", req.VenueID, err)
	}
	if !exists {
		return nil, fmt.Errorf("venue %s: %w", req.VenueID, domain.ErrNotFound)
	}

	var sp venue.Space
	err = s.pool.QueryRow(ctx,
		`INSERT INTO spaces (tenant_id, venue_id, name, capacity)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, tenant_id, venue_id, name, capacity, created_at, updated_at`,
		tenantID, req.VenueID, req.Name, req.Capacity,
	).Scan(&sp.ID, &sp.TenantID, &sp.VenueID, &sp.Name, &sp.Capacity, &sp.CreatedAt, &sp.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create space: %w", err)
	}
	return &sp, nil
}

func (s *Store) GetSpace(ctx context.Context, tenantID, id string) (*venue.Space, error) {
	var sp venue.Space
	err := s.pool.QueryRow(ctx,
		`SELECT id, tenant_id, venue_id, name, capacity, created_at, updated_at
		 FROM spaces WHERE id = $1 AND tenant_id = $2`, id, tenantID,
	).Scan(&sp.ID, &sp.TenantID, &sp.VenueID, &sp.Name, &sp.Capacity, &sp.CreatedAt, &sp.UpdatedAt)
	if err != nil {
		return nil, notFoundWrap(err, "get space %s", id)
	}
	return &sp, nil
}

func (s *Store) ListSpaces(ctx context.Context, tenantID, venueID string) ([]venue.Space, error) {
	query := `SELECT id, tenant_id, venue_id, name, capacity, created_at, updated_at
	          FROM spaces WHERE tenant_id = $1 ORDER BY name ASC`
	args := []any{tenantID}
	if venueID != "" {
		query = `SELECT id, tenant_id, venue_id, name, capacity, created_at, updated_at
		         FROM spaces WHERE tenant_id = $1 AND venue_id = $2 ORDER BY name ASC`
		args = append(args, venueID)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list spaces: %w", err)
	}
	defer rows.Close()

	var spaces []venue.Space
	for rows.Next() {
		var sp venue.Space
		if err := rows.Scan(&sp.ID, &sp.TenantID, &sp.VenueID, &sp.Name, &sp.Capacity, &sp.CreatedAt, &sp.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan space: %w", err)
		}
		spaces = append(spaces, sp)
	}
	return spaces, rows.Err()
}
