package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/georgemunganga/printa-apparel/internal/apperr"
	"github.com/georgemunganga/printa-apparel/internal/modules/auth"
	"github.com/georgemunganga/printa-apparel/internal/modules/customer"
	"github.com/georgemunganga/printa-apparel/internal/modules/design"
	"github.com/georgemunganga/printa-apparel/internal/modules/payment"
	"github.com/georgemunganga/printa-apparel/internal/platform/logger"
	"github.com/georgemunganga/printa-apparel/internal/platform/metrics"
)

// Designs is the part of the design service checkout depends on.
type Designs interface {
	ForCheckout(ctx context.Context, actor design.Actor, id string) (*design.Design, []*design.LineItem, error)
	MarkOrdered(ctx context.Context, id uuid.UUID) error
}

// Customers resolves the customer record behind a caller.
type Customers interface {
	Ensure(ctx context.Context, externalID, email string) (*customer.Customer, error)
	Me(ctx context.Context, externalID string) (*customer.Customer, error)
}

// Service defines checkout and order management.
type Service interface {
	// Checkout turns an approved design with quantities into an order
	// awaiting payment and opens a payment session for it. origin is the
	// storefront base URL the shopper returns to.
	Checkout(ctx context.Context, caller auth.Caller, designID, origin string) (*CheckoutResult, error)

	// Get returns an order to its owner or an admin.
	Get(ctx context.Context, caller auth.Caller, id string) (*Order, error)

	// ListMine returns the caller's orders, newest first.
	ListMine(ctx context.Context, caller auth.Caller) ([]*Order, error)

	// AdminList returns all orders, optionally filtered by status.
	AdminList(ctx context.Context, status string) ([]*Order, error)

	// UpdateStatus advances an order. Moving to PAID marks its design ordered.
	UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*Order, error)
}

type service struct {
	repo      Repository
	designs   Designs
	customers Customers
	gateway   payment.Gateway
}

// NewService creates a new order service.
func NewService(repo Repository, designs Designs, customers Customers, gateway payment.Gateway) Service {
	return &service{repo: repo, designs: designs, customers: customers, gateway: gateway}
}

func (s *service) Checkout(ctx context.Context, caller auth.Caller, designID, origin string) (*CheckoutResult, error) {
	if caller.ID == "" {
		return nil, apperr.ErrUnauthorized
	}
	// Checkout is owner only, so the admin flag is not passed on.
	d, lines, err := s.designs.ForCheckout(ctx, design.Actor{UserID: caller.ID}, designID)
	if err != nil {
		return nil, err
	}
	c, err := s.customers.Ensure(ctx, caller.ID, caller.Email)
	if err != nil {
		return nil, err
	}

	o := &Order{
		ID:         uuid.New(),
		CustomerID: &c.ID,
		DesignID:   &d.ID,
		Currency:   Currency,
		Status:     StatusAwaitingPayment,
	}
	if c.Email != customer.FallbackEmail(c.ExternalID) {
		o.Email = c.Email
	}
	var sessionItems []payment.LineItem
	for _, li := range lines {
		if li.Qty <= 0 {
			continue
		}
		sku := li.VariantSKU
		if sku == "" {
			sku = fmt.Sprintf("%s-%s", d.VariantSKU, li.Size)
		}
		o.Items = append(o.Items, &Item{
			ID:        uuid.New(),
			OrderID:   o.ID,
			Name:      itemName(d.ProductID, string(li.Size), d.Color),
			SKU:       sku,
			Qty:       li.Qty,
			UnitPrice: li.UnitPrice,
		})
		o.Total += li.UnitPrice * int64(li.Qty)
		sessionItems = append(sessionItems, payment.LineItem{
			Name:        "Custom " + d.ProductID,
			Description: sizeLabel(string(li.Size), d.Color),
			SKU:         sku,
			Qty:         li.Qty,
			UnitPrice:   li.UnitPrice,
		})
	}
	if len(o.Items) == 0 {
		return nil, apperr.ErrEmptyCart
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}

	origin = strings.TrimRight(origin, "/")
	session, err := s.gateway.CreateSession(ctx, payment.SessionRequest{
		OrderID:    o.ID.String(),
		DesignID:   d.ID.String(),
		Currency:   o.Currency,
		Email:      o.Email,
		Items:      sessionItems,
		SuccessURL: fmt.Sprintf("%s/checkout/success?orderId=%s", origin, o.ID),
		CancelURL:  fmt.Sprintf("%s/checkout/cancel?orderId=%s", origin, o.ID),
	})
	if err != nil {
		// Leave no order waiting on a session that never opened.
		if cerr := s.repo.UpdateStatus(ctx, o.ID, StatusCancelled); cerr != nil {
			logger.FromContext(ctx).Error("cancel order after gateway failure",
				"order_id", o.ID, "error", cerr)
		}
		return nil, fmt.Errorf("open payment session: %w", err)
	}
	if session.Ref != "" {
		if err := s.repo.SetPaymentRef(ctx, o.ID, session.Ref); err != nil {
			return nil, err
		}
	}

	metrics.CheckoutOrders.WithLabelValues(string(s.gateway.Provider())).Inc()
	logger.FromContext(ctx).Info("order created",
		"order_id", o.ID, "design_id", d.ID, "total", o.Total, "gateway", s.gateway.Provider())
	return &CheckoutResult{URL: session.URL, OrderID: o.ID}, nil
}

func (s *service) Get(ctx context.Context, caller auth.Caller, id string) (*Order, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	o, err := s.repo.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if caller.Admin {
		return o, nil
	}
	c, err := s.customers.Me(ctx, caller.ID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.ErrForbidden
	}
	if err != nil {
		return nil, err
	}
	if o.CustomerID == nil || *o.CustomerID != c.ID {
		return nil, apperr.ErrForbidden
	}
	return o, nil
}

func (s *service) ListMine(ctx context.Context, caller auth.Caller) ([]*Order, error) {
	c, err := s.customers.Me(ctx, caller.ID)
	if errors.Is(err, apperr.ErrNotFound) {
		return []*Order{}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.repo.ListByCustomer(ctx, c.ID)
}

func (s *service) AdminList(ctx context.Context, status string) ([]*Order, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(status)))
	if st != "" && !st.Valid() {
		return nil, apperr.Invalid("unknown status %q", status)
	}
	return s.repo.List(ctx, st)
}

func (s *service) UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*Order, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	next := Status(strings.ToUpper(strings.TrimSpace(req.Status)))
	if !next.Valid() {
		return nil, apperr.Invalid("unknown status %q", req.Status)
	}

	var out *Order
	err = s.repo.InTx(ctx, func(tx Repository) error {
		o, err := tx.GetForUpdate(ctx, uid)
		if err != nil {
			return err
		}
		out = o
		// Repeating PAID finishes a payment whose design update failed.
		if o.Status == StatusPaid && next == StatusPaid {
			return nil
		}
		if !CanTransition(o.Status, next) {
			return fmt.Errorf("%w: cannot transition order from %s to %s",
				apperr.ErrInvalidState, o.Status, next)
		}
		if err := tx.UpdateStatus(ctx, uid, next); err != nil {
			return err
		}
		o.Status = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx)
	log.Info("order status changed", "order_id", uid, "status", next)

	// Runs after commit so the order lock and connection are released first.
	if next == StatusPaid && out.DesignID != nil {
		if err := s.designs.MarkOrdered(ctx, *out.DesignID); err != nil {
			log.Error("mark design ordered", "order_id", uid, "design_id", *out.DesignID, "error", err)
			return nil, fmt.Errorf("order %s is paid but its design was not marked ordered: %w", uid, err)
		}
	}
	return out, nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

// itemName renders "{product} • {size}" with an optional " • {color}".
func itemName(productID, size, color string) string {
	name := productID + " • " + size
	if color != "" {
		name += " • " + color
	}
	return name
}

func sizeLabel(size, color string) string {
	label := "Size " + size
	if color != "" {
		label += " • " + color
	}
	return label
}

func parseID(id string) (uuid.UUID, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: order %s", apperr.ErrNotFound, id)
	}
	return uid, nil
}
