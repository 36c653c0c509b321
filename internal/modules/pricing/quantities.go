package pricing

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/georgemunganga/printa-apparel/internal/apperr"
)

// maxQuantity bounds a single size so extended prices stay well inside int64.
const maxQuantity = 1_000_000

// Quantities maps every canonical size to a non-negative count.
type Quantities map[Size]int

// EmptyQuantities returns a map with every size set to zero.
func EmptyQuantities() Quantities {
	q := make(Quantities, len(SizeOrder))
	for _, s := range SizeOrder {
		q[s] = 0
	}
	return q
}

// NormalizeQuantities validates a raw size→qty map decoded from JSON.
// Keys must be exact size codes. Values may be numbers, numeric strings,
// null or the empty string (zero). Anything else fails with
// apperr.ErrInvalidQuantity.
func NormalizeQuantities(raw map[string]any) (Quantities, error) {
	for k := range raw {
		if _, ok := sizeSurcharge[Size(k)]; !ok {
			return nil, fmt.Errorf("%w: unknown size key %q", apperr.ErrInvalidQuantity, k)
		}
	}

	q := EmptyQuantities()
	for _, s := range SizeOrder {
		v, present := raw[string(s)]
		if !present {
			continue
		}
		n, err := toQuantity(v)
		if err != nil {
			return nil, fmt.Errorf("%w: size %q: %v", apperr.ErrInvalidQuantity, s, err)
		}
		q[s] = n
	}
	return q, nil
}

func toQuantity(v any) (int, error) {
	var f float64
	switch x := v.(type) {
	case nil:
		return 0, nil
	case float64:
		f = x
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		parsed, err := strconv.ParseFloat(string(x), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number")
		}
		f = parsed
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("not a number")
		}
		f = parsed
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}

	switch {
	case math.IsNaN(f) || math.IsInf(f, 0):
		return 0, fmt.Errorf("not finite")
	case f < 0:
		return 0, fmt.Errorf("negative")
	case math.Trunc(f) != f:
		return 0, fmt.Errorf("not a whole number")
	case f > maxQuantity:
		return 0, fmt.Errorf("exceeds %d", maxQuantity)
	}
	return int(f), nil
}

// Total returns the sum of all quantities.
func (q Quantities) Total() int {
	n := 0
	for _, s := range SizeOrder {
		n += q[s]
	}
	return n
}
