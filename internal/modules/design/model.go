package design

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/printa-apparel/internal/modules/pricing"
	"github.com/georgemunganga/printa-apparel/internal/modules/printarea"
)

// Design is a customer's customisation of a blank garment.
type Design struct {
	ID                 uuid.UUID       `json:"id"`
	UserID             *string         `json:"userId"` // nil for guest designs
	ProductID          string          `json:"productId"`
	VariantSKU         string          `json:"variantSku"`
	Color              string          `json:"color,omitempty"`
	Status             Status          `json:"status"`
	PricingBase        int64           `json:"pricingBase"`
	PricingFees        int64           `json:"pricingFees"`
	PricingTotal       int64           `json:"pricingTotal"`
	PrintSpec          json.RawMessage `json:"printSpec"`
	SubmissionSnapshot json.RawMessage `json:"submissionSnapshot,omitempty"`
	SubmittedAt        *time.Time      `json:"submittedAt,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`

	Placements []*Placement `json:"placements,omitempty"`
	Comments   []*Comment   `json:"comments,omitempty"`
	LineItems  []*LineItem  `json:"lineItems,omitempty"`
}

// Totals returns the stored pricing snapshot.
func (d *Design) Totals() pricing.Totals {
	return pricing.Totals{Base: d.PricingBase, Fees: d.PricingFees, Total: d.PricingTotal}
}

func (d *Design) setTotals(t pricing.Totals) {
	d.PricingBase, d.PricingFees, d.PricingTotal = t.Base, t.Fees, t.Total
}

// Geometry is the artwork transform inside its area's safe zone.
type Geometry struct {
	OffsetX  float64 `json:"offsetX"`
	OffsetY  float64 `json:"offsetY"`
	Scale    float64 `json:"scale"`
	Rotation float64 `json:"rotation"`
}

// DefaultGeometry is applied on every create or replace.
var DefaultGeometry = Geometry{OffsetX: 0, OffsetY: 0, Scale: 1, Rotation: 0}

// Placement is one artwork on one side of a design.
type Placement struct {
	ID       uuid.UUID      `json:"id"`
	DesignID uuid.UUID      `json:"designId"`
	Side     printarea.Side `json:"side"`
	AreaID   string         `json:"areaId"`
	AssetID  string         `json:"assetId"`
	URL      string         `json:"url"`
	WidthPx  int            `json:"widthPx"`
	HeightPx int            `json:"heightPx"`
	DPI      *int           `json:"dpi,omitempty"`
	Geometry
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LineItem is the stored quantity and price for one size.
type LineItem struct {
	ID         uuid.UUID    `json:"id"`
	DesignID   uuid.UUID    `json:"designId"`
	Size       pricing.Size `json:"size"`
	VariantSKU string       `json:"variantSku"`
	Qty        int          `json:"qty"`
	UnitPrice  int64        `json:"unitPrice"`
	Surcharge  int64        `json:"surcharge"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// Comment authors.
const (
	AuthorAdmin    = "admin"
	AuthorCustomer = "customer"
)

// Comment is an append-only review note.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	DesignID  uuid.UUID `json:"designId"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// AdminSummary is one row of the review queue.
type AdminSummary struct {
	ID              uuid.UUID  `json:"id"`
	ProductID       string     `json:"productId"`
	VariantSKU      string     `json:"variantSku"`
	UserID          *string    `json:"userId"`
	Status          Status     `json:"status"`
	PricingTotal    int64      `json:"pricingTotal"`
	PlacementsCount int        `json:"placementsCount"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	Comments        []*Comment `json:"comments"`
}

// QuantitiesView is the size breakdown of a design.
type QuantitiesView struct {
	Quantities pricing.Quantities `json:"quantities"`
	Items      []*LineItem        `json:"items"`
	Summary    pricing.Summary    `json:"summary"`
}

// Actor is the caller of a design operation.
type Actor struct {
	UserID string
	Admin  bool
}

func (a Actor) owns(d *Design) bool {
	return a.UserID != "" && d.UserID != nil && *d.UserID == a.UserID
}

// ── Request DTOs ──────────────────────────────────────────────────────────────

// CreateRequest is the payload for starting a draft.
type CreateRequest struct {
	ProductID  string `json:"productId"`
	VariantSKU string `json:"variantSku,omitempty"`
	BasePrice  *int64 `json:"basePrice"`
	Color      string `json:"color,omitempty"`
}

// PlacementRequest uploads artwork into an area. Side is optional and, when
// given, must match the area's side.
type PlacementRequest struct {
	Side     string `json:"side,omitempty"`
	AreaID   string `json:"areaId"`
	AssetID  string `json:"assetId"`
	URL      string `json:"url"`
	WidthPx  int    `json:"widthPx"`
	HeightPx int    `json:"heightPx"`
	DPI      *int   `json:"dpi,omitempty"`
}

// GeometryRequest adjusts an existing placement. Nil fields are unchanged.
type GeometryRequest struct {
	OffsetX  *float64 `json:"offsetX,omitempty"`
	OffsetY  *float64 `json:"offsetY,omitempty"`
	Scale    *float64 `json:"scale,omitempty"`
	Rotation *float64 `json:"rotation,omitempty"`
}

// QuantitiesRequest accepts either a size map or an item list.
type QuantitiesRequest struct {
	Quantities map[string]any `json:"quantities,omitempty"`
	Items      []QuantityItem `json:"items,omitempty"`
}

// QuantityItem is one entry of QuantitiesRequest.Items.
type QuantityItem struct {
	Size string `json:"size"`
	Qty  any    `json:"qty"`
}
