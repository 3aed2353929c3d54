package entity

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is the isolation boundary. Every other entity carries a tenant id
// and no query may cross it.
type Tenant struct {
	Id        uuid.UUID
	Name      string
	Subdomain string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
