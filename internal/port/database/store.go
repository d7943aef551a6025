// Package database defines the database store port (interface).
package database

import (
	"context"
	"time"

	"github.com/venably/venably/internal/domain/booking"
	"github.com/venably/venably/internal/domain/contract"
	"github.com/venably/venably/internal/domain/customer"
	"github.com/venably/venably/internal/domain/tenant"
	"github.com/venably/venably/internal/domain/venue"
)

// Store is the port interface for database operations. Every tenant-scoped
// method takes the tenant ID as an explicit parameter: tenant isolation is a
// correctness invariant threaded through every call, not ambient state.
//
// Write methods that can collide (CreateBooking, UpdateBooking,
// CreateContract, UpdateContract) run their conflict check and their writes
// inside one serializable transaction. They return the full conflict set;
// when any conflict is blocking they perform no writes and return
// *booking.ConflictError. Serialization failures and constraint violations
// surface as domain.ErrRetryable for the coordinator to retry.
type Store interface {
	// Tenants (admin surface, not tenant-scoped)
	CreateTenant(ctx context.Context, req tenant.CreateRequest) (*tenant.Tenant, error)
	GetTenant(ctx context.Context, id string) (*tenant.Tenant, error)
	ListTenants(ctx context.Context) ([]tenant.Tenant, error)
	UpdateTenant(ctx context.Context, id string, req tenant.UpdateRequest) (*tenant.Tenant, error)

	// Customers
	CreateCustomer(ctx context.Context, tenantID string, req customer.CreateRequest) (*customer.Customer, error)
	GetCustomer(ctx context.Context, tenantID, id string) (*customer.Customer, error)
	ListCustomers(ctx context.Context, tenantID string) ([]customer.Customer, error)

	// Venues and spaces
	CreateVenue(ctx context.Context, tenantID string, req venue.CreateVenueRequest) (*venue.Venue, error)
	ListVenues(ctx context.Context, tenantID string) ([]venue.Venue, error)
	CreateSpace(ctx context.Context, tenantID string, req venue.CreateSpaceRequest) (*venue.Space, error)
	GetSpace(ctx context.Context, tenantID, id string) (*venue.Space, error)
	ListSpaces(ctx context.Context, tenantID, venueID string) ([]venue.Space, error)

	// Bookings
	GetBooking(ctx context.Context, tenantID, id string) (*booking.Booking, error)
	ListBookings(ctx context.Context, tenantID string, from, to time.Time) ([]booking.Booking, error)
	// LoadCandidates returns the non-cancelled bookings for one space on one
	// date, the candidate set for a read-only availability check.
	LoadCandidates(ctx context.Context, tenantID, spaceID string, date time.Time) ([]booking.Booking, error)
	CreateBooking(ctx context.Context, tenantID string, req booking.CreateRequest) (*booking.Booking, []booking.Conflict, error)
	UpdateBooking(ctx context.Context, tenantID, id string, req booking.UpdateRequest) (*booking.Booking, []booking.Conflict, error)
	// CancelBooking soft-cancels; cancelling an already-cancelled booking is
	// a no-op, not an error.
	CancelBooking(ctx context.Context, tenantID, id string) (*booking.Booking, error)

	// Contracts
	GetContract(ctx context.Context, tenantID, id string) (*contract.Contract, error)
	ListContracts(ctx context.Context, tenantID string) ([]contract.Contract, error)
	CreateContract(ctx context.Context, tenantID string, name, customerID string, members []contract.Member) (*contract.Contract, []booking.Conflict, error)
	UpdateContract(ctx context.Context, tenantID, id string, name *string, members []contract.Member) (*contract.Contract, []booking.Conflict, error)
	CancelContract(ctx context.Context, tenantID, id string) (*contract.Contract, error)
}
