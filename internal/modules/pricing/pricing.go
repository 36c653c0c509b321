// Package pricing computes design fees and per-size line pricing. Every
// function is pure and works in integer minor currency units.
package pricing

import (
	"github.com/georgemunganga/printa-apparel/internal/modules/printarea"
)

// Totals is the pricing snapshot persisted on a design.
type Totals struct {
	Base  int64 `json:"base"`
	Fees  int64 `json:"fees"`
	Total int64 `json:"total"`
}

// LineItemDraft is a line item ready to be written for a design.
type LineItemDraft struct {
	Size       Size   `json:"size"`
	VariantSKU string `json:"variantSku"`
	Qty        int    `json:"qty"`
	UnitPrice  int64  `json:"unitPrice"`
	Surcharge  int64  `json:"surcharge"`
}

// Summary is the total units and extended price of a quantity map.
type Summary struct {
	TotalQty   int   `json:"totalQty"`
	TotalCents int64 `json:"totalCents"`
}

// ComputePlacementFees sums the surcharge of every distinct area id.
func ComputePlacementFees(catalog *printarea.Catalog, areaIDs []string) (int64, error) {
	seen := make(map[string]struct{}, len(areaIDs))
	var fees int64
	for _, id := range areaIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		area, err := catalog.Lookup(id)
		if err != nil {
			return 0, err
		}
		fees += area.Surcharge
	}
	return fees, nil
}

// ComputeDesignTotal returns base, fees and their sum.
func ComputeDesignTotal(catalog *printarea.Catalog, base int64, areaIDs []string) (Totals, error) {
	fees, err := ComputePlacementFees(catalog, areaIDs)
	if err != nil {
		return Totals{}, err
	}
	return Totals{Base: base, Fees: fees, Total: base + fees}, nil
}

// BuildLineItems emits one draft per size with a positive quantity, in size
// order. Sizes at zero are omitted; callers delete their stored rows.
func BuildLineItems(base int64, variantSKU string, q Quantities) []LineItemDraft {
	items := []LineItemDraft{}
	for _, s := range SizeOrder {
		qty := q[s]
		if qty <= 0 {
			continue
		}
		surcharge := sizeSurcharge[s]
		items = append(items, LineItemDraft{
			Size:       s,
			VariantSKU: variantSKU,
			Qty:        qty,
			UnitPrice:  base + surcharge,
			Surcharge:  surcharge,
		})
	}
	return items
}

// Summarize totals units and extended price across sizes.
func Summarize(base int64, q Quantities) Summary {
	var sum Summary
	for _, s := range SizeOrder {
		qty := q[s]
		if qty <= 0 {
			continue
		}
		sum.TotalQty += qty
		sum.TotalCents += (base + sizeSurcharge[s]) * int64(qty)
	}
	return sum
}
