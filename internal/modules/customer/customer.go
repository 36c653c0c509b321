package customer

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is a customer's access level.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleCustomer Role = "CUSTOMER"
)

// Customer is the local record of an identity provider user.
type Customer struct {
	ID         uuid.UUID `json:"id"`
	ExternalID string    `json:"externalId"`
	Email      string    `json:"email"`
	Name       *string   `json:"name,omitempty"`
	Role       Role      `json:"role"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// AssignInitialRole returns the role of a newly provisioned customer given
// how many customers already exist. The first customer becomes admin.
func AssignInitialRole(existing int64) Role {
	if existing == 0 {
		return RoleAdmin
	}
	return RoleCustomer
}

// ReconcileRole promotes c to admin when its email is on the allowlist. It
// never demotes.
func ReconcileRole(c Customer, allowlist []string) Customer {
	if c.Role == RoleAdmin {
		return c
	}
	email := strings.ToLower(strings.TrimSpace(c.Email))
	if email == "" {
		return c
	}
	for _, allowed := range allowlist {
		if strings.ToLower(strings.TrimSpace(allowed)) == email {
			c.Role = RoleAdmin
			return c
		}
	}
	return c
}

// FallbackEmail is stored when the identity provider sends no address.
func FallbackEmail(externalID string) string {
	return externalID + "@example.invalid"
}
