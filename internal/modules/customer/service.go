package customer

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/georgemunganga/printa-apparel/internal/apperr"
	"github.com/georgemunganga/printa-apparel/internal/platform/logger"
)

// Profile is the identity provider's view of a user.
type Profile struct {
	ExternalID string
	Email      string
	Name       *string
}

// Service defines customer provisioning and role resolution.
type Service interface {
	// Provision creates or updates the customer for p.ExternalID. Existing
	// customers keep their role.
	Provision(ctx context.Context, p Profile) (*Customer, error)
	// Remove deletes the customer; a missing one is not an error.
	Remove(ctx context.Context, externalID string) error
	// Ensure returns the customer, creating a plain CUSTOMER when absent.
	Ensure(ctx context.Context, externalID, email string) (*Customer, error)
	// IsAdmin applies the admin allowlist to the stored customer, persisting
	// a promotion. Callers without a customer record are never admins.
	IsAdmin(ctx context.Context, externalID, email string) (bool, error)
	Me(ctx context.Context, externalID string) (*Customer, error)
}

type service struct {
	repo      Repository
	allowlist []string
}

// NewService creates a customer service. allowlist holds admin emails.
func NewService(repo Repository, allowlist []string) Service {
	return &service{repo: repo, allowlist: allowlist}
}

func (s *service) Provision(ctx context.Context, p Profile) (*Customer, error) {
	if strings.TrimSpace(p.ExternalID) == "" {
		return nil, apperr.Invalid("user id is required")
	}
	email := strings.TrimSpace(p.Email)
	if email == "" {
		email = FallbackEmail(p.ExternalID)
	}

	var out *Customer
	created := false
	err := s.repo.InTx(ctx, func(tx Repository) error {
		existing, err := tx.GetByExternalID(ctx, p.ExternalID)
		switch {
		case err == nil:
			existing.Email = email
			if p.Name != nil {
				existing.Name = p.Name
			}
			if err := tx.UpdateProfile(ctx, existing); err != nil {
				return err
			}
			out = existing
			return nil
		case !errors.Is(err, apperr.ErrNotFound):
			return err
		}

		count, err := tx.Count(ctx)
		if err != nil {
			return err
		}
		c := &Customer{
			ID:         uuid.New(),
			ExternalID: p.ExternalID,
			Email:      email,
			Name:       p.Name,
			Role:       AssignInitialRole(count),
		}
		if err := tx.Create(ctx, c); err != nil {
			return err
		}
		out, created = c, true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if created {
		logger.FromContext(ctx).Info("customer provisioned",
			"customer_id", out.ID, "external_id", out.ExternalID, "role", out.Role)
	}
	return out, nil
}

func (s *service) Remove(ctx context.Context, externalID string) error {
	if strings.TrimSpace(externalID) == "" {
		return apperr.Invalid("user id is required")
	}
	removed, err := s.repo.DeleteByExternalID(ctx, externalID)
	if err != nil {
		return err
	}
	if removed {
		logger.FromContext(ctx).Info("customer removed", "external_id", externalID)
	}
	return nil
}

func (s *service) Ensure(ctx context.Context, externalID, email string) (*Customer, error) {
	c, err := s.repo.GetByExternalID(ctx, externalID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	if strings.TrimSpace(email) == "" {
		email = FallbackEmail(externalID)
	}
	c = &Customer{ID: uuid.New(), ExternalID: externalID, Email: email, Role: RoleCustomer}
	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			return s.repo.GetByExternalID(ctx, externalID)
		}
		return nil, err
	}
	return c, nil
}

func (s *service) IsAdmin(ctx context.Context, externalID, email string) (bool, error) {
	c, err := s.repo.GetByExternalID(ctx, externalID)
	if errors.Is(err, apperr.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if c.Email == "" || strings.HasSuffix(c.Email, "@example.invalid") {
		c.Email = email
	}

	reconciled := ReconcileRole(*c, s.allowlist)
	if reconciled.Role != c.Role {
		if err := s.repo.UpdateRole(ctx, c.ID, reconciled.Role); err != nil {
			return false, err
		}
		logger.FromContext(ctx).Info("customer promoted by allowlist", "customer_id", c.ID)
	}
	return reconciled.Role == RoleAdmin, nil
}

func (s *service) Me(ctx context.Context, externalID string) (*Customer, error) {
	if externalID == "" {
		return nil, apperr.ErrUnauthorized
	}
	return s.repo.GetByExternalID(ctx, externalID)
}
