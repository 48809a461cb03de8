package users

import (
	"time"

	"github.com/platinummonkey/warden/pkg/roles"
)

// User represents an account. A user may hold roles across many tenants
// at once, plus any number of global roles. Principals are the external
// identity strings the fronting proxy authenticates (e-mail, subject).
type User struct {
	ID          int64        `json:"id"`
	Principals  []string     `json:"principals"`
	DisplayName string       `json:"display_name"`
	Roles       []roles.Role `json:"roles"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
