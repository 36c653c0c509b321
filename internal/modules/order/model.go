package order

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of an order.
type Status string

const (
	StatusAwaitingPayment Status = "AWAITING_PAYMENT"
	StatusPaid            Status = "PAID"
	StatusInProduction    Status = "IN_PRODUCTION"
	StatusShipped         Status = "SHIPPED"
	StatusCancelled       Status = "CANCELLED"
)

// Currency is the only currency orders are taken in.
const Currency = "usd"

// Order is a purchase of an approved design.
type Order struct {
	ID         uuid.UUID  `json:"id"`
	CustomerID *uuid.UUID `json:"customerId"`
	DesignID   *uuid.UUID `json:"designId"`
	Email      string     `json:"email,omitempty"`
	Total      int64      `json:"total"` // cents
	Currency   string     `json:"currency"`
	Status     Status     `json:"status"`
	PaymentRef string     `json:"paymentRef,omitempty"`
	Items      []*Item    `json:"items"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// Item is a single line of an order.
type Item struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"orderId"`
	Name      string    `json:"name"`
	SKU       string    `json:"sku"`
	Qty       int       `json:"qty"`
	UnitPrice int64     `json:"unitPrice"`
	CreatedAt time.Time `json:"createdAt"`
}

// CheckoutResult tells the storefront where to send the shopper.
type CheckoutResult struct {
	URL     string    `json:"url"`
	OrderID uuid.UUID `json:"orderId"`
}

// UpdateStatusRequest is the payload for advancing an order's status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}
