package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/georgemunganga/printa-apparel/internal/apperr"
	"github.com/georgemunganga/printa-apparel/internal/platform/logger"
)

// Service defines catalog business logic.
type Service interface {
	ListProducts(ctx context.Context) ([]*Product, error)
	// GetProduct resolves a product by slug or id and loads its variants
	// and images.
	GetProduct(ctx context.Context, slugOrID string) (*Product, error)
	// BasePrice reports the base price of an active product.
	BasePrice(ctx context.Context, slugOrID string) (int64, bool, error)
	// Seed replaces the products in seeds, keyed by slug.
	Seed(ctx context.Context, seeds ...SeedProduct) error
}

type service struct{ repo Repository }

func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) ListProducts(ctx context.Context) ([]*Product, error) {
	return s.repo.List(ctx, true)
}

func (s *service) GetProduct(ctx context.Context, slugOrID string) (*Product, error) {
	p, err := s.lookup(ctx, slugOrID)
	if err != nil {
		return nil, err
	}
	if p.Variants, err = s.repo.ListVariants(ctx, p.ID); err != nil {
		return nil, err
	}
	if p.Images, err = s.repo.ListImages(ctx, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) BasePrice(ctx context.Context, slugOrID string) (int64, bool, error) {
	p, err := s.lookup(ctx, slugOrID)
	if errors.Is(err, apperr.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	if !p.IsActive {
		return 0, false, nil
	}
	return p.BasePrice, true, nil
}

func (s *service) lookup(ctx context.Context, slugOrID string) (*Product, error) {
	key := strings.TrimSpace(slugOrID)
	if key == "" {
		return nil, apperr.Invalid("product slug is required")
	}
	if id, err := uuid.Parse(key); err == nil {
		return s.repo.GetByID(ctx, id)
	}
	return s.repo.GetBySlug(ctx, key)
}

func (s *service) Seed(ctx context.Context, seeds ...SeedProduct) error {
	for _, seed := range seeds {
		p, err := seed.build()
		if err != nil {
			return err
		}
		if err := s.repo.Replace(ctx, p); err != nil {
			return fmt.Errorf("seed %s: %w", seed.Slug, err)
		}
		logger.FromContext(ctx).Info("product seeded",
			"slug", p.Slug, "variants", len(p.Variants), "images", len(p.Images))
	}
	return nil
}
