// Package tenant defines the tenant domain model for multi-tenancy.
package tenant

import "time"

// Status of a tenant. Suspended tenants fail closed on every operation.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

// Tenant represents an isolated tenant in the system. Every other entity
// carries its tenant ID, and no query may omit the tenant predicate.
type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Active reports whether the tenant may issue reads and writes.
func (t *Tenant) Active() bool {
	return t.Status == StatusActive
}

// CreateRequest holds the fields required to create a new tenant.
type CreateRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// UpdateRequest holds the fields that can be updated on a tenant.
type UpdateRequest struct {
	Name   string  `json:"name,omitempty"`
	Status *Status `json:"status,omitempty"`
}
