package tenant

import (
	"time"
)

// Tenant represents one isolated venue. No data ever crosses a tenant
// boundary; every entity in the system carries a tenant ID.
type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Status constants
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)
