package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/venably/venably/internal/domain/booking"
	"github.com/venably/venably/internal/domain/contract"
	"github.com/venably/venably/internal/domain/customer"
	"github.com/venably/venably/internal/domain/tenant"
	"github.com/venably/venably/internal/domain/venue"
	"github.com/venably/venably/internal/middleware"
	"github.com/venably/venably/internal/service"
)

// Handlers bundles the services the HTTP layer dispatches to.
type Handlers struct {
	Tenants      *service.TenantService
	Customers    *service.CustomerService
	Venues       *service.VenueService
	Availability *service.AvailabilityService
	Bookings     *service.BookingService
	Contracts    *service.ContractService
}

// tenantID resolves the request's tenant or writes a 400 and returns false.
func tenantID(w http.ResponseWriter, r *http.Request) (string, bool) {
	tid, err := middleware.TenantIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusBadRequest, "tenant ID is required")
		return "", false
	}
	return tid, true
}

// bookingResponse pairs a committed booking with its advisory warnings.
type bookingResponse struct {
	Booking  *booking.Booking   `json:"booking"`
	Warnings []booking.Conflict `json:"warnings,omitempty"`
}

// contractResponse pairs a committed contract with its advisory warnings.
type contractResponse struct {
	Contract *contract.Contract `json:"contract"`
	Warnings []booking.Conflict `json:"warnings,omitempty"`
}

// CheckAvailability answers whether a slot is free on the listed spaces.
// Spaces arrive as repeated space_id params or one comma-separated space_ids.
func (h *Handlers) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	tid, ok := tenantID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	req := service.CheckRequest{
		SpaceIDs:         q["space_id"],
		EventDate:        q.Get("event_date"),
		StartTime:        q.Get("start_time"),
		EndTime:          q.Get("end_time"),
		ExcludeBookingID: q.Get("exclude_booking_id"),
	}
	if s := q.Get("space_ids"); s != "" {
		req.SpaceIDs = append(req.SpaceIDs, strings.Split(s, ",")...)
	}
	results, err := h.Availability.Check(r.Context(), tid, req)
	if err != nil {
		writeDomainError(w, err, "space not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// CreateBooking creates a single booking.
func (h *Handlers) CreateBooking(w http.ResponseWriter, r *http.Request) {
	tid, ok := tenantID(w, r)
	if !ok {
		return
	}
	req, ok := readJSON[booking.CreateRequest](w, r)
	if !ok {
		return
	}
	b, warnings, err := h.Bookings.Create(r.Context(), tid, &req)
	if err != nil {
		writeDomainError(w, err, "booking not found")
		return
	}
	writeJSON(w, http.StatusCreated, bookingResponse{Booking: b, Warnings: warnings})
}

// GetBooking returns a booking by ID.
func (h *Handlers) GetBooking(w http.ResponseWriter, r *http.Request) {
	tid, ok := tenantID(w, r)
	if !ok {
		return
	}
	b, err := h.Bookings.Get(r.Context(), tid, urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "booking not found")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// ListBookings returns the tenant's bookings, optionally bounded by
// from/to query parameters (inclusive/exclusive calendar dates).
func (h *Handlers) ListBookings(w http.ResponseWriter, r *http.Request) {
	tid, ok := tenantID(w, r)
	if !ok {
		return
	}

	from := time.Time{}
	to := time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)
	if s := r.URL.Query().Get("from"); s != "" {
		d, err := booking.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from date")
			return
		}
		from = d
	}
	if s := r.URL.Query().Get("to"); s != "" {
		d, err := booking.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to date")
			return
		}
		to = d
	}

	bookings, err := h.Bookings.List(r.Context(), tid, from, to)
	if err != nil {
		writeDomainError(w, err, "bookings not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

// UpdateBooking applies partial updates to a booking.
func (h *Handlers) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	tid, ok := tenantID(w, r)
	if !ok {
		return
	}
	req, ok := readJSON[booking.UpdateRequest](w, r)
	if !ok {
		return
	}
	b, warnings, err := h.Bookings.Update(r.Context(), tid, urlParam(r, "id"), req)
	if err != nil {
		writeDomainError(w, err, "booking not found")
		return
	}
	writeJSON(w, http.StatusOK, bookingResponse{Booking: b, Warnings: warnings})
}

// CancelBooking soft-cancels a booking.
func (h *Handlers) CancelBooking(w http.ResponseWriter, r *http.Request) {
	tid, ok := tenantID(w, r)
	if !ok {
		return
	}
	b, err := h.Bookings.Cancel(r.Context(), tid, urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "booking not found")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// CreateContract creates a contract and its member bookings atomically.
func (h *Handlers) CreateContract(w http.ResponseWriter, r *http.Request) {
	tid, ok := tenantID(w, r)
	if !ok {
		return
	}
	req, ok := readJSON[contract.CreateRequest](w, r)
	if !ok {
		return
	}
	c, warnings, err := h.Contracts.Create(r.Context(), tid, &req)
	if err != nil {
		writeDomainError(w, err, "contract not found")
		return
	}
	writeJSON(w, http.StatusCreated, contractResponse{Contract: c, Warnings: warnings})
}

// GetContract returns a contract with its members.
func (h *Handlers) GetContract(w http.ResponseWriter, r *http.Request) {
	tid, ok := tenantID(w, r)
	if !ok {
		return
	}
	c, err := h.Contracts.Get(r.Context(), tid, urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "contract not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// ListContracts returns the tenant's contracts.
func (h *Handlers) ListContracts(w http.ResponseWriter, r *http.Request) {
	tid, ok := tenantID(w, r)
	if !ok {
		return
	}
	contracts, err := h.Contracts.List(r.Context(), tid)
	if err != nil {
		writeDomainError(w, err, "contracts not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"contracts": contracts})
}

// UpdateContract replaces a contract's member set.
func (h *Handlers) UpdateContract(w http.ResponseWriter, r *http.Request) {
	tid, ok := tenantID(w, r)
	if !ok {
		return
	}
	req, ok := readJSON[contract.UpdateRequest](w, r)
	if !ok {
		return
	}
	c, warnings, err := h.Contracts.Update(r.Context(), tid, urlParam(r, "id"), &req)
	if err != nil {
		writeDomainError(w, err, "contract not found")
		return
	}
	writeJSON(w, http.StatusOK, contractResponse{Contract: c, Warnings: warnings})
}

// CancelContract cancels a contract and all of its live members.
func (h *Handlers) CancelContract(w http.ResponseWriter, r *http.Request) {
	tid, ok := tenantID(w, r)
	if !ok {
		return
	}
	c, err := h.Contracts.Cancel(r.Context(), tid, urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "contract not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CreateCustomer creates a customer.
func (h *Handlers) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	tid, ok := tenantID(w, r)
	if !ok {
		return
	}
	req, ok := readJSON[customer.CreateRequest](w, r)
	if !ok {
		return
	}
	c, err := h.Customers.Create(r.Context(), tid, req)
	if err != nil {
		writeDomainError(w, err, "customer not found")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// GetCustomer returns a customer by ID.
func (h *Handlers) GetCustomer(w http.ResponseWriter, r *http.Request) {
	tid, ok := tenantID(w, r)
	if !ok {
		return
	}
	c, err := h.Customers.Get(r.Context(), tid, urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "customer not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// ListCustomers returns the tenant's customers.
func (h *Handlers) ListCustomers(w http.ResponseWriter, r *http.Request) {
	tid, ok := tenantID(w, r)
	if !ok {
		return
	}
	customers, err := h.Customers.List(r.Context(), tid)
	if err != nil {
		writeDomainError(w, err, "customers not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customers": customers})
}

// CreateVenue creates a venue.
func (h *Handlers) CreateVenue(w http.ResponseWriter, r *http.Request) {
	tid, ok := tenantID(w, r)
	if !ok {
		return
	}
	req, ok := readJSON[venue.CreateVenueRequest](w, r)
	if !ok {
		return
	}
	v, err := h.Venues.CreateVenue(r.Context(), tid, req)
	if err != nil {
		writeDomainError(w, err, "venue not found")
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// ListVenues returns the tenant's venues.
func (h *Handlers) ListVenues(w http.ResponseWriter, r *http.Request) {
	tid, ok := tenantID(w, r)
	if !ok {
		return
	}
	venues, err := h.Venues.ListVenues(r.Context(), tid)
	if err != nil {
		writeDomainError(w, err, "venues not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"venues": venues})
}

// CreateSpace creates a bookable space under one of the tenant's venues.
func (h *Handlers) CreateSpace(w http.ResponseWriter, r *http.Request) {
	tid, ok := tenantID(w, r)
	if !ok {
		return
	}
	req, ok := readJSON[venue.CreateSpaceRequest](w, r)
	if !ok {
		return
	}
	s, err := h.Venues.CreateSpace(r.Context(), tid, req)
	if err != nil {
		writeDomainError(w, err, "venue not found")
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

// GetSpace returns a space by ID.
func (h *Handlers) GetSpace(w http.ResponseWriter, r *http.Request) {
	tid, ok := tenantID(w, r)
	if !ok {
		return
	}
	s, err := h.Venues.GetSpace(r.Context(), tid, urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "space not found")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// ListSpaces returns the tenant's spaces, optionally filtered by venue_id.
func (h *Handlers) ListSpaces(w http.ResponseWriter, r *http.Request) {
	tid, ok := tenantID(w, r)
	if !ok {
		return
	}
	spaces, err := h.Venues.ListSpaces(r.Context(), tid, r.URL.Query().Get("venue_id"))
	if err != nil {
		writeDomainError(w, err, "spaces not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"spaces": spaces})
}

// CreateTenant registers a new tenant. This is the admin surface and is not
// tenant-scoped itself.
func (h *Handlers) CreateTenant(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[tenant.CreateRequest](w, r)
	if !ok {
		return
	}
	t, err := h.Tenants.Create(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "tenant not found")
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// GetTenant returns a tenant by ID.
func (h *Handlers) GetTenant(w http.ResponseWriter, r *http.Request) {
	t, err := h.Tenants.Get(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "tenant not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// UpdateTenant applies partial updates to a tenant, including suspension.
func (h *Handlers) UpdateTenant(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[tenant.UpdateRequest](w, r)
	if !ok {
		return
	}
	t, err := h.Tenants.Update(r.Context(), urlParam(r, "id"), req)
	if err != nil {
		writeDomainError(w, err, "tenant not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}
