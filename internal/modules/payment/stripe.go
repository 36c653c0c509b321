package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// sessionCreator is the slice of the Stripe client the gateway needs.
type sessionCreator interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type stripeGateway struct {
	sessions sessionCreator
}

// NewStripeGateway creates a gateway backed by Stripe Checkout.
func NewStripeGateway(secretKey string) Gateway {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &stripeGateway{sessions: sc.CheckoutSessions}
}

func (g *stripeGateway) Provider() Provider { return ProviderStripe }

func (g *stripeGateway) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	params := sessionParams(req)
	params.Context = ctx

	s, err := g.sessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session: %w", err)
	}
	return &Session{Provider: ProviderStripe, Ref: s.ID, URL: s.URL}, nil
}

func sessionParams(req SessionRequest) *stripe.CheckoutSessionParams {
	currency := req.Currency
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(req.OrderID),
	}
	if req.Email != "" {
		params.CustomerEmail = stripe.String(req.Email)
	}
	for _, it := range req.Items {
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name:     stripe.String(it.Name),
			Metadata: map[string]string{"sku": it.SKU},
		}
		if it.Description != "" {
			product.Description = stripe.String(it.Description)
		}
		if req.DesignID != "" {
			product.Metadata["designId"] = req.DesignID
		}
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(int64(it.Qty)),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(currency),
				UnitAmount:  stripe.Int64(it.UnitPrice),
				ProductData: product,
			},
		})
	}
	params.AddMetadata("orderId", req.OrderID)
	if req.DesignID != "" {
		params.AddMetadata("designId", req.DesignID)
	}
	return params
}
