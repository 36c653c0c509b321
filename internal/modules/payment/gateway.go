package payment

import (
	"context"
	"fmt"
)

// Gateway is the provider-agnostic interface every checkout adapter must
// implement.
type Gateway interface {
	Provider() Provider
	// CreateSession opens a hosted checkout for the request.
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
}

// NewGateway returns the Stripe gateway when a secret key is configured,
// otherwise the redirect gateway used in development.
func NewGateway(stripeKey string) Gateway {
	if stripeKey == "" {
		return NewRedirectGateway()
	}
	return NewStripeGateway(stripeKey)
}

// ── Redirect Adapter ──────────────────────────────────────────────────────────
// Without a payment provider the shopper is sent straight to the success page
// so the flow can be exercised end to end.

type redirectGateway struct{}

func NewRedirectGateway() Gateway { return redirectGateway{} }

func (redirectGateway) Provider() Provider { return ProviderRedirect }

func (redirectGateway) CreateSession(_ context.Context, req SessionRequest) (*Session, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	return &Session{Provider: ProviderRedirect, URL: req.SuccessURL}, nil
}

func validate(req SessionRequest) error {
	if req.OrderID == "" {
		return fmt.Errorf("order id is required")
	}
	if req.SuccessURL == "" || req.CancelURL == "" {
		return fmt.Errorf("success and cancel urls are required")
	}
	if len(req.Items) == 0 {
		return fmt.Errorf("at least one line item is required")
	}
	for _, it := range req.Items {
		if it.Qty <= 0 {
			return fmt.Errorf("quantity must be > 0 for %s", it.SKU)
		}
		if it.UnitPrice < 0 {
			return fmt.Errorf("unit price must not be negative for %s", it.SKU)
		}
	}
	return nil
}
