package tenants

import (
	"fmt"
	"time"
)

// Tenant represents an isolated organizational scope. Roles and most
// authorities are scoped to exactly one tenant.
type Tenant struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Machine-readable error kinds for tenant policy failures.
const (
	KindTenantNameRequired = "tenant_name_required"
	KindTenantNameExists   = "tenant_name_exists"
	KindTenantNotFound     = "tenant_not_found"
)

type sentinelError struct {
	kind    string
	message string
}

func (e *sentinelError) Error() string { return e.message }

// Kind returns the machine-readable error kind.
func (e *sentinelError) Kind() string { return e.kind }

// ErrNameRequired is returned when a tenant name is blank after
// normalization.
var ErrNameRequired = &sentinelError{
	kind:    KindTenantNameRequired,
	message: "tenant name must not be blank",
}

// NameExistsError is returned when a tenant name is already taken.
type NameExistsError struct {
	Name string
}

func (e *NameExistsError) Error() string {
	return fmt.Sprintf("tenant name %q is already in use", e.Name)
}

// Kind returns the machine-readable error kind.
func (e *NameExistsError) Kind() string { return KindTenantNameExists }

// NotFoundError is returned when the tenant being renamed does not exist.
type NotFoundError struct {
	TenantID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("tenant %d does not exist", e.TenantID)
}

// Kind returns the machine-readable error kind.
func (e *NotFoundError) Kind() string { return KindTenantNotFound }
