package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/venably/venably/internal/middleware"
)

// MountRoutes registers all API routes on the given chi router. Everything
// under /api/v1 except tenant administration requires an X-Tenant-ID header.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Route("/api/v1", func(r chi.Router) {
		// Version
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"version":"0.1.0"}`))
		})

		// Tenant administration (no tenant scope)
		r.Post("/tenants", h.CreateTenant)
		r.Get("/tenants/{id}", h.GetTenant)
		r.Put("/tenants/{id}", h.UpdateTenant)

		r.Group(func(r chi.Router) {
			r.Use(middleware.TenantID)

			// Availability
			r.Get("/availability", h.CheckAvailability)

			// Bookings
			r.Post("/bookings", h.CreateBooking)
			r.Get("/bookings", h.ListBookings)
			r.Get("/bookings/{id}", h.GetBooking)
			r.Put("/bookings/{id}", h.UpdateBooking)
			r.Post("/bookings/{id}/cancel", h.CancelBooking)

			// Contracts
			r.Post("/contracts", h.CreateContract)
			r.Get("/contracts", h.ListContracts)
			r.Get("/contracts/{id}", h.GetContract)
			r.Put("/contracts/{id}", h.UpdateContract)
			r.Post("/contracts/{id}/cancel", h.CancelContract)

			// Reference data
			r.Post("/customers", h.CreateCustomer)
			r.Get("/customers", h.ListCustomers)
			r.Get("/customers/{id}", h.GetCustomer)
			r.Post("/venues", h.CreateVenue)
			r.Get("/venues", h.ListVenues)
			r.Post("/spaces", h.CreateSpace)
			r.Get("/spaces", h.ListSpaces)
			r.Get("/spaces/{id}", h.GetSpace)
		})
	})
}
