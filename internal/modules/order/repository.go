package order

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines data access for orders.
type Repository interface {
	// InTx runs fn against a repository bound to one transaction.
	InTx(ctx context.Context, fn func(tx Repository) error) error

	// Create persists a new order and its items atomically.
	Create(ctx context.Context, o *Order) error

	// Get retrieves an order with its items.
	Get(ctx context.Context, id uuid.UUID) (*Order, error)

	// GetForUpdate locks the order row for the rest of the transaction.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Order, error)

	// ListByCustomer returns a customer's orders, newest first.
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Order, error)

	// List returns all orders, newest first, optionally filtered by status.
	List(ctx context.Context, status Status) ([]*Order, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	SetPaymentRef(ctx context.Context, id uuid.UUID, ref string) error
}
