package pricing

import (
	"fmt"

	"github.com/georgemunganga/printa-apparel/internal/apperr"
)

// Size is a garment size code.
type Size string

const (
	SizeXS  Size = "XS"
	SizeS   Size = "S"
	SizeM   Size = "M"
	SizeL   Size = "L"
	SizeXL  Size = "XL"
	Size2XL Size = "2XL"
	Size3XL Size = "3XL"
	Size4XL Size = "4XL"
	Size5XL Size = "5XL"
)

// SizeOrder is the canonical display and storage order.
var SizeOrder = []Size{SizeXS, SizeS, SizeM, SizeL, SizeXL, Size2XL, Size3XL, Size4XL, Size5XL}

// sizeSurcharge is the per-unit bump in cents for larger sizes.
var sizeSurcharge = map[Size]int64{
	SizeXS:  0,
	SizeS:   0,
	SizeM:   0,
	SizeL:   0,
	SizeXL:  0,
	Size2XL: 175,
	Size3XL: 370,
	Size4XL: 575,
	Size5XL: 790,
}

// Index returns the position of s in SizeOrder, or -1.
func (s Size) Index() int {
	for i, o := range SizeOrder {
		if o == s {
			return i
		}
	}
	return -1
}

// SizeSurcharge returns the surcharge for size.
func SizeSurcharge(size Size) (int64, error) {
	c, ok := sizeSurcharge[size]
	if !ok {
		return 0, fmt.Errorf("%w: %q", apperr.ErrUnknownSize, size)
	}
	return c, nil
}

// UnitPriceForSize is base plus the size surcharge.
func UnitPriceForSize(base int64, size Size) (int64, error) {
	c, err := SizeSurcharge(size)
	if err != nil {
		return 0, err
	}
	return base + c, nil
}

// FormatUSD renders cents as "$1.75".
func FormatUSD(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
