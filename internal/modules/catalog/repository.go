package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for product data storage. Missing rows
// return apperr.ErrNotFound.
type Repository interface {
	List(ctx context.Context, activeOnly bool) ([]*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	ListVariants(ctx context.Context, productID uuid.UUID) ([]*Variant, error)
	ListImages(ctx context.Context, productID uuid.UUID) ([]*Image, error)
	// Replace deletes any product with p.Slug and inserts p with its
	// variants and images in one transaction.
	Replace(ctx context.Context, p *Product) error
}
