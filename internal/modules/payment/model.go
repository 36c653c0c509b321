package payment

// Provider names a checkout gateway.
type Provider string

const (
	ProviderStripe   Provider = "stripe"
	ProviderRedirect Provider = "redirect"
)

// LineItem is one priced row of a checkout session. Amounts are in cents.
type LineItem struct {
	Name        string
	Description string
	SKU         string
	Qty         int
	UnitPrice   int64
}

// SessionRequest describes the hosted checkout to open for an order.
type SessionRequest struct {
	OrderID    string
	DesignID   string
	Currency   string
	Email      string
	Items      []LineItem
	SuccessURL string
	CancelURL  string
}

// Session is the provider's answer: where to send the shopper, and the
// reference to store against the order.
type Session struct {
	Provider Provider
	Ref      string
	URL      string
}
