package pricing

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/printa-apparel/internal/apperr"
	"github.com/georgemunganga/printa-apparel/internal/modules/printarea"
)

func TestUnitPriceForSize(t *testing.T) {
	want := map[Size]int64{
		SizeXS: 2500, SizeS: 2500, SizeM: 2500, SizeL: 2500, SizeXL: 2500,
		Size2XL: 2675, Size3XL: 2870, Size4XL: 3075, Size5XL: 3290,
	}
	for size, price := range want {
		got, err := UnitPriceForSize(2500, size)
		require.NoError(t, err)
		assert.Equal(t, price, got, size)
	}

	_, err := UnitPriceForSize(2500, "6XL")
	assert.ErrorIs(t, err, apperr.ErrUnknownSize)
}

func TestNormalizeQuantities(t *testing.T) {
	q, err := NormalizeQuantities(map[string]any{"M": float64(3), "XL": "2"})
	require.NoError(t, err)
	assert.Equal(t, Quantities{
		SizeXS: 0, SizeS: 0, SizeM: 3, SizeL: 0, SizeXL: 2,
		Size2XL: 0, Size3XL: 0, Size4XL: 0, Size5XL: 0,
	}, q)
	assert.Equal(t, 5, q.Total())
}

func TestNormalizeQuantitiesBlankValuesAreZero(t *testing.T) {
	q, err := NormalizeQuantities(map[string]any{"S": nil, "L": "", "XS": "  ", "2XL": json.Number("4")})
	require.NoError(t, err)
	assert.Equal(t, 0, q[SizeS])
	assert.Equal(t, 0, q[SizeL])
	assert.Equal(t, 4, q[Size2XL])
}

func TestNormalizeQuantitiesRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
	}{
		{"negative", map[string]any{"M": float64(-1)}},
		{"unknown key", map[string]any{"FOO": float64(1)}},
		{"lowercase key", map[string]any{"m": float64(1)}},
		{"fractional", map[string]any{"M": 1.5}},
		{"fractional string", map[string]any{"M": "2.5"}},
		{"non numeric", map[string]any{"M": "two"}},
		{"boolean", map[string]any{"M": true}},
		{"infinite", map[string]any{"M": math.Inf(1)}},
		{"nan string", map[string]any{"M": "NaN"}},
		{"too large", map[string]any{"M": float64(maxQuantity + 1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeQuantities(tt.raw)
			assert.ErrorIs(t, err, apperr.ErrInvalidQuantity)
		})
	}
}

func TestBuildLineItems(t *testing.T) {
	q := EmptyQuantities()
	q[SizeM] = 2
	q[Size2XL] = 1

	items := BuildLineItems(2500, "sku", q)
	assert.Equal(t, []LineItemDraft{
		{Size: SizeM, VariantSKU: "sku", Qty: 2, UnitPrice: 2500, Surcharge: 0},
		{Size: Size2XL, VariantSKU: "sku", Qty: 1, UnitPrice: 2675, Surcharge: 175},
	}, items)

	assert.Empty(t, BuildLineItems(2500, "sku", EmptyQuantities()))
}

func TestSummarize(t *testing.T) {
	q := EmptyQuantities()
	q[SizeM] = 2
	q[Size2XL] = 1
	q[Size5XL] = 3

	assert.Equal(t, Summary{TotalQty: 6, TotalCents: 2*2500 + 2675 + 3*3290}, Summarize(2500, q))
	assert.Equal(t, Summary{}, Summarize(2500, EmptyQuantities()))
}

func TestComputeDesignTotal(t *testing.T) {
	cat := printarea.Default()

	totals, err := ComputeDesignTotal(cat, 2800, []string{"fullFront", "upperBack", "leftSleeve"})
	require.NoError(t, err)
	assert.Equal(t, Totals{Base: 2800, Fees: 1000, Total: 3800}, totals)

	totals, err = ComputeDesignTotal(cat, 2800, nil)
	require.NoError(t, err)
	assert.Equal(t, Totals{Base: 2800, Fees: 0, Total: 2800}, totals)
}

func TestComputePlacementFeesCountsEachAreaOnce(t *testing.T) {
	fees, err := ComputePlacementFees(printarea.Default(), []string{"fullBack", "fullBack"})
	require.NoError(t, err)
	assert.EqualValues(t, 500, fees)

	_, err = ComputePlacementFees(printarea.Default(), []string{"fullBack", "hood"})
	assert.ErrorIs(t, err, apperr.ErrUnknownArea)
}

func TestFormatUSD(t *testing.T) {
	assert.Equal(t, "$1.75", FormatUSD(175))
	assert.Equal(t, "$28.00", FormatUSD(2800))
	assert.Equal(t, "$0.05", FormatUSD(5))
	assert.Equal(t, "-$3.10", FormatUSD(-310))
}
