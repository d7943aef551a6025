// Package venue defines venues and their bookable spaces. Spaces are
// referenced by the conflict engine but never mutated by it.
package venue

import "time"

// Venue is a physical location owned by a tenant.
type Venue struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Space is one bookable unit inside a venue; the unit of contention for
// overlap checks.
type Space struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	VenueID   string    `json:"venue_id"`
	Name      string    `json:"name"`
	Capacity  int       `json:"capacity,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateVenueRequest holds the fields required to create a venue.
type CreateVenueRequest struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// CreateSpaceRequest holds the fields required to create a space.
type CreateSpaceRequest struct {
	VenueID  string `json:"venue_id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity,omitempty"`
}
