package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Product is a blank garment customers can design on.
type Product struct {
	ID          uuid.UUID `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	BasePrice   int64     `json:"basePrice"`
	Currency    string    `json:"currency"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Variants []*Variant `json:"variants,omitempty"`
	Images   []*Image   `json:"images,omitempty"`
}

// Variant is one color and size of a product.
type Variant struct {
	ID         uuid.UUID `json:"id"`
	ProductID  uuid.UUID `json:"productId"`
	SKU        string    `json:"sku"`
	Color      string    `json:"color"`
	Size       string    `json:"size"`
	Price      int64     `json:"price"`
	OfferPrice *int64    `json:"offerPrice,omitempty"`
}

// Image is a product photo, optionally tied to a color and a side tag.
type Image struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"productId"`
	URL       string    `json:"url"`
	Alt       string    `json:"alt,omitempty"`
	Tag       string    `json:"tag,omitempty"`
	Color     string    `json:"color,omitempty"`
	Position  int       `json:"position"`
}
