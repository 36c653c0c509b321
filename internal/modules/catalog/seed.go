package catalog

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/georgemunganga/printa-apparel/internal/apperr"
)

// SeedProduct describes a product and the color × size grid of its variants.
type SeedProduct struct {
	Slug       string
	Name       string
	BasePrice  int64
	Colors     []string
	Sizes      []string
	Price      int64
	OfferPrice int64 // 0 means no offer
	Images     []SeedImage
}

// SeedImage is a product photo for one color.
type SeedImage struct {
	Color string
	Tag   string
	URL   string
	Alt   string
}

// VariantSKU formats the sku of a color and size, e.g. "unisex-jersey-tee-white-M".
func VariantSKU(slug, color, size string) string {
	return fmt.Sprintf("%s-%s-%s", slug, strings.ToLower(color), size)
}

// DefaultSeed is the starter product of a fresh store.
func DefaultSeed() SeedProduct {
	return SeedProduct{
		Slug:       "unisex-jersey-tee",
		Name:       "Unisex Jersey Tee",
		BasePrice:  2800,
		Colors:     []string{"White", "Black", "Ash"},
		Sizes:      []string{"S", "M", "L"},
		Price:      2800,
		OfferPrice: 2500,
		Images: []SeedImage{
			{Color: "Black", Tag: "front", URL: "/media/black-front.jpg", Alt: "Black Front"},
			{Color: "Black", Tag: "back", URL: "/media/black-back.jpg", Alt: "Black Back"},
			{Color: "White", Tag: "front", URL: "/media/white-front.jpg", Alt: "White Front"},
			{Color: "White", Tag: "back", URL: "/media/white-back.jpg", Alt: "White Back"},
			{Color: "Ash", Tag: "front", URL: "/media/ash-front.jpg", Alt: "Ash Front"},
			{Color: "Ash", Tag: "back", URL: "/media/ash-back.jpg", Alt: "Ash Back"},
		},
	}
}

func (s SeedProduct) build() (*Product, error) {
	if s.Slug == "" || s.Name == "" {
		return nil, apperr.Invalid("seed product needs a slug and a name")
	}
	if s.BasePrice < 0 || s.Price < 0 || s.OfferPrice < 0 {
		return nil, apperr.Invalid("seed product %s has a negative price", s.Slug)
	}

	p := &Product{
		ID:        uuid.New(),
		Slug:      s.Slug,
		Name:      s.Name,
		BasePrice: s.BasePrice,
		Currency:  "usd",
		IsActive:  true,
	}
	for _, c := range s.Colors {
		for _, size := range s.Sizes {
			v := &Variant{
				ID:        uuid.New(),
				ProductID: p.ID,
				SKU:       VariantSKU(s.Slug, c, size),
				Color:     c,
				Size:      size,
				Price:     s.Price,
			}
			if s.OfferPrice > 0 {
				offer := s.OfferPrice
				v.OfferPrice = &offer
			}
			p.Variants = append(p.Variants, v)
		}
	}
	for i, img := range s.Images {
		p.Images = append(p.Images, &Image{
			ID:        uuid.New(),
			ProductID: p.ID,
			URL:       img.URL,
			Alt:       img.Alt,
			Tag:       img.Tag,
			Color:     img.Color,
			Position:  i,
		})
	}
	return p, nil
}
