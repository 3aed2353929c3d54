package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TenantOwnedBy scopes a query to a single tenant. Repositories for
// tenant-owned entities apply it unconditionally; it is a key component,
// not an optional filter.
type TenantOwnedBy struct {
	TenantID uuid.UUID
}

func (s TenantOwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("tenant_id = ?", s.TenantID)
}

// BySubdomain filters tenants by their unique subdomain.
type BySubdomain struct {
	Subdomain string
}

func (s BySubdomain) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("subdomain = ?", s.Subdomain)
}

// OwnedByUser filters by the owning user within a tenant.
type OwnedByUser struct {
	UserID uuid.UUID
}

func (s OwnedByUser) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("owner_user_id = ?", s.UserID)
}
