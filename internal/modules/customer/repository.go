package customer

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines data access for customers. Missing rows return
// apperr.ErrNotFound.
type Repository interface {
	// InTx runs fn against a repository bound to one transaction.
	InTx(ctx context.Context, fn func(tx Repository) error) error
	GetByExternalID(ctx context.Context, externalID string) (*Customer, error)
	// Count returns the number of customers. Inside InTx it holds a table
	// lock until commit so concurrent provisioning cannot both see zero.
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, c *Customer) error
	UpdateProfile(ctx context.Context, c *Customer) error
	UpdateRole(ctx context.Context, id uuid.UUID, role Role) error
	// DeleteByExternalID removes the customer and reports whether one existed.
	DeleteByExternalID(ctx context.Context, externalID string) (bool, error)
}
