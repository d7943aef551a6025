package service

import (
	"context"
	"fmt"
	"time"

	"github.com/venably/venably/internal/domain"
	"github.com/venably/venably/internal/domain/booking"
	"github.com/venably/venably/internal/domain/contract"
	"github.com/venably/venably/internal/domain/customer"
	"github.com/venably/venably/internal/domain/tenant"
	"github.com/venably/venably/internal/domain/venue"
	"github.com/venably/venably/internal/port/database"
	"github.com/venably/venably/internal/port/messagequeue"
)

// Ensure mockStore implements database.Store at compile time.
var _ database.Store = (*mockStore)(nil)

// mockStore is a minimal in-memory implementation of database.Store for
// testing. Booking writes run the same overlap check and tenant-scoped
// reference-ownership checks the real store runs inside its transaction.
type mockStore struct {
	tenants   []tenant.Tenant
	customers []customer.Customer
	spaces    []venue.Space
	bookings  []booking.Booking
	contracts []contract.Contract

	// Error hooks. Set these to inject failures; errs slices are consumed
	// one per call, so a run of retryable errors can precede success.
	getTenantErr      error
	loadCandidatesErr error
	createBookingErrs []error
	updateBookingErrs []error
	createContractErr error
	updateContractErr error

	createBookingCalls  int
	createContractCalls int
}

func (m *mockStore) popErr(errs *[]error) error {
	if len(*errs) == 0 {
		return nil
	}
	err := (*errs)[0]
	*errs = (*errs)[1:]
	return err
}

func (m *mockStore) CreateTenant(_ context.Context, req tenant.CreateRequest) (*tenant.Tenant, error) {
	t := tenant.Tenant{ID: fmt.Sprintf("ten-%d", len(m.tenants)+1), Name: req.Name, Slug: req.Slug, Status: tenant.StatusActive}
	m.tenants = append(m.tenants, t)
	return &t, nil
}

func (m *mockStore) GetTenant(_ context.Context, id string) (*tenant.Tenant, error) {
	if m.getTenantErr != nil {
		return nil, m.getTenantErr
	}
	for i := range m.tenants {
		if m.tenants[i].ID == id {
			return &m.tenants[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) ListTenants(_ context.Context) ([]tenant.Tenant, error) {
	return m.tenants, nil
}

func (m *mockStore) UpdateTenant(_ context.Context, id string, req tenant.UpdateRequest) (*tenant.Tenant, error) {
	for i := range m.tenants {
		if m.tenants[i].ID == id {
			if req.Name != "" {
				m.tenants[i].Name = req.Name
			}
			if req.Status != nil {
				m.tenants[i].Status = *req.Status
			}
			return &m.tenants[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) CreateCustomer(_ context.Context, tenantID string, req customer.CreateRequest) (*customer.Customer, error) {
	c := customer.Customer{ID: fmt.Sprintf("cus-%d", len(m.customers)+1), TenantID: tenantID, Name: req.Name, Email: req.Email}
	m.customers = append(m.customers, c)
	return &c, nil
}

func (m *mockStore) GetCustomer(_ context.Context, tenantID, id string) (*customer.Customer, error) {
	for i := range m.customers {
		if m.customers[i].ID == id && m.customers[i].TenantID == tenantID {
			return &m.customers[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) ListCustomers(_ context.Context, tenantID string) ([]customer.Customer, error) {
	var out []customer.Customer
	for _, c := range m.customers {
		if c.TenantID == tenantID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockStore) CreateVenue(_ context.Context, tenantID string, req venue.CreateVenueRequest) (*venue.Venue, error) {
	return &venue.Venue{ID: "ven-1", TenantID: tenantID, Name: req.Name}, nil
}

func (m *mockStore) ListVenues(_ context.Context, _ string) ([]venue.Venue, error) {
	return nil, nil
}

func (m *mockStore) CreateSpace(_ context.Context, tenantID string, req venue.CreateSpaceRequest) (*venue.Space, error) {
	s := venue.Space{ID: fmt.Sprintf("spc-%d", len(m.spaces)+1), TenantID: tenantID, VenueID: req.VenueID, Name: req.Name}
	m.spaces = append(m.spaces, s)
	return &s, nil
}

func (m *mockStore) GetSpace(_ context.Context, tenantID, id string) (*venue.Space, error) {
	for i := range m.spaces {
		if m.spaces[i].ID == id && m.spaces[i].TenantID == tenantID {
			return &m.spaces[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) ListSpaces(_ context.Context, tenantID, _ string) ([]venue.Space, error) {
	var out []venue.Space
	for _, s := range m.spaces {
		if s.TenantID == tenantID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockStore) GetBooking(_ context.Context, tenantID, id string) (*booking.Booking, error) {
	for i := range m.bookings {
		if m.bookings[i].ID == id && m.bookings[i].TenantID == tenantID {
			return &m.bookings[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) ListBookings(_ context.Context, tenantID string, from, to time.Time) ([]booking.Booking, error) {
	var out []booking.Booking
	for _, b := range m.bookings {
		if b.TenantID == tenantID && !b.EventDate.Before(from) && b.EventDate.Before(to) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockStore) LoadCandidates(_ context.Context, tenantID, spaceID string, date time.Time) ([]booking.Booking, error) {
	if m.loadCandidatesErr != nil {
		return nil, m.loadCandidatesErr
	}
	var out []booking.Booking
	for _, b := range m.bookings {
		if b.TenantID == tenantID && b.SpaceID == spaceID && booking.SameDate(b.EventDate, date) && b.Live() {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockStore) CreateBooking(ctx context.Context, tenantID string, req booking.CreateRequest) (*booking.Booking, []booking.Conflict, error) {
	m.createBookingCalls++
	if err := m.popErr(&m.createBookingErrs); err != nil {
		return nil, nil, err
	}

	slot, err := booking.ParseSlot(req.SpaceID, req.EventDate, req.StartTime, req.EndTime)
	if err != nil {
		return nil, nil, err
	}
	if _, err := m.GetCustomer(ctx, tenantID, req.CustomerID); err != nil {
		return nil, nil, fmt.Errorf("customer %s: %w", req.CustomerID, err)
	}
	venueID := req.VenueID
	if slot.SpaceID != "" {
		sp, err := m.GetSpace(ctx, tenantID, slot.SpaceID)
		if err != nil {
			return nil, nil, fmt.Errorf("space %s: %w", slot.SpaceID, err)
		}
		venueID = sp.VenueID
	}
	candidates, _ := m.LoadCandidates(ctx, tenantID, slot.SpaceID, slot.EventDate)
	conflicts := booking.FindConflicts(candidates, slot, "")
	if booking.HasBlocking(conflicts) {
		return nil, nil, &booking.ConflictError{Conflicts: conflicts}
	}

	status := req.Status
	if status == "" {
		status = booking.StatusInquiry
	}
	b := booking.Booking{
		ID:          fmt.Sprintf("bok-%d", len(m.bookings)+1),
		TenantID:    tenantID,
		SpaceID:     req.SpaceID,
		VenueID:     venueID,
		CustomerID:  req.CustomerID,
		EventDate:   slot.EventDate,
		StartMinute: slot.StartMinute,
		EndMinute:   slot.EndMinute,
		Status:      status,
		GuestCount:  req.GuestCount,
		AmountCents: req.AmountCents,
	}
	m.bookings = append(m.bookings, b)
	return &b, conflicts, nil
}

func (m *mockStore) UpdateBooking(ctx context.Context, tenantID, id string, req booking.UpdateRequest) (*booking.Booking, []booking.Conflict, error) {
	if err := m.popErr(&m.updateBookingErrs); err != nil {
		return nil, nil, err
	}
	for i := range m.bookings {
		if m.bookings[i].ID == id && m.bookings[i].TenantID == tenantID {
			b := &m.bookings[i]
			if req.Status != nil {
				b.Status = *req.Status
			}
			if req.AmountCents != nil {
				b.AmountCents = *req.AmountCents
			}
			if req.SpaceID != nil {
				if *req.SpaceID == "" {
					b.SpaceID, b.VenueID = "", ""
				} else {
					sp, err := m.GetSpace(ctx, tenantID, *req.SpaceID)
					if err != nil {
						return nil, nil, fmt.Errorf("space %s: %w", *req.SpaceID, err)
					}
					b.SpaceID, b.VenueID = sp.ID, sp.VenueID
				}
			}
			return b, nil, nil
		}
	}
	return nil, nil, domain.ErrNotFound
}

func (m *mockStore) CancelBooking(_ context.Context, tenantID, id string) (*booking.Booking, error) {
	for i := range m.bookings {
		if m.bookings[i].ID == id && m.bookings[i].TenantID == tenantID {
			m.bookings[i].Status = booking.StatusCancelled
			return &m.bookings[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) GetContract(_ context.Context, tenantID, id string) (*contract.Contract, error) {
	for i := range m.contracts {
		if m.contracts[i].ID == id && m.contracts[i].TenantID == tenantID {
			return &m.contracts[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) ListContracts(_ context.Context, tenantID string) ([]contract.Contract, error) {
	var out []contract.Contract
	for _, c := range m.contracts {
		if c.TenantID == tenantID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockStore) CreateContract(ctx context.Context, tenantID, name, customerID string, members []contract.Member) (*contract.Contract, []booking.Conflict, error) {
	m.createContractCalls++
	if m.createContractErr != nil {
		return nil, nil, m.createContractErr
	}

	if _, err := m.GetCustomer(ctx, tenantID, customerID); err != nil {
		return nil, nil, fmt.Errorf("customer %s: %w", customerID, err)
	}
	for _, mem := range members {
		if mem.Slot.SpaceID == "" {
			continue
		}
		if _, err := m.GetSpace(ctx, tenantID, mem.Slot.SpaceID); err != nil {
			return nil, nil, fmt.Errorf("space %s: %w", mem.Slot.SpaceID, err)
		}
	}

	var all []booking.Conflict
	for _, mem := range members {
		candidates, _ := m.LoadCandidates(ctx, tenantID, mem.Slot.SpaceID, mem.Slot.EventDate)
		all = append(all, booking.FindConflicts(candidates, mem.Slot, "")...)
	}
	if booking.HasBlocking(all) {
		return nil, nil, &booking.ConflictError{Conflicts: all}
	}

	c := contract.Contract{
		ID:         fmt.Sprintf("con-%d", len(m.contracts)+1),
		TenantID:   tenantID,
		CustomerID: customerID,
		Name:       name,
		Status:     contract.StatusActive,
	}
	for _, mem := range members {
		b := booking.Booking{
			ID:          fmt.Sprintf("bok-%d", len(m.bookings)+1),
			TenantID:    tenantID,
			ContractID:  c.ID,
			SpaceID:     mem.Slot.SpaceID,
			CustomerID:  customerID,
			EventDate:   mem.Slot.EventDate,
			StartMinute: mem.Slot.StartMinute,
			EndMinute:   mem.Slot.EndMinute,
			Status:      mem.Status,
			GuestCount:  mem.GuestCount,
			AmountCents: mem.AmountCents,
		}
		m.bookings = append(m.bookings, b)
		c.Members = append(c.Members, b)
	}
	c.TotalCents = contract.TotalCents(c.Members)
	m.contracts = append(m.contracts, c)
	return &c, all, nil
}

func (m *mockStore) UpdateContract(_ context.Context, tenantID, id string, name *string, _ []contract.Member) (*contract.Contract, []booking.Conflict, error) {
	if m.updateContractErr != nil {
		return nil, nil, m.updateContractErr
	}
	for i := range m.contracts {
		if m.contracts[i].ID == id && m.contracts[i].TenantID == tenantID {
			if name != nil {
				m.contracts[i].Name = *name
			}
			return &m.contracts[i], nil, nil
		}
	}
	return nil, nil, domain.ErrNotFound
}

func (m *mockStore) CancelContract(_ context.Context, tenantID, id string) (*contract.Contract, error) {
	for i := range m.contracts {
		if m.contracts[i].ID == id && m.contracts[i].TenantID == tenantID {
			m.contracts[i].Status = contract.StatusCancelled
			for j := range m.bookings {
				if m.bookings[j].ContractID == id && m.bookings[j].Status != booking.StatusCompleted {
					m.bookings[j].Status = booking.StatusCancelled
				}
			}
			return &m.contracts[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

// mockQueue records published messages.
type mockQueue struct {
	published []string
}

var _ messagequeue.Queue = (*mockQueue)(nil)

func (q *mockQueue) Publish(_ context.Context, subject string, _ []byte) error {
	q.published = append(q.published, subject)
	return nil
}

func (q *mockQueue) Subscribe(_ context.Context, _ string, _ messagequeue.Handler) (func(), error) {
	return func() {}, nil
}

func (q *mockQueue) Close() error { return nil }
