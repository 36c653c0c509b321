package printarea

import (
	"fmt"

	"github.com/georgemunganga/printa-apparel/internal/apperr"
)

// Side is a printable face of the garment.
type Side string

const (
	SideFront  Side = "front"
	SideBack   Side = "back"
	SideSleeve Side = "sleeve"
)

// Sides lists every side in display order.
var Sides = []Side{SideFront, SideBack, SideSleeve}

// Valid reports whether s is one of the known sides.
func (s Side) Valid() bool {
	switch s {
	case SideFront, SideBack, SideSleeve:
		return true
	}
	return false
}

// Box is a safe zone in normalised canvas coordinates (0..1).
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Mock is the garment image shown under the overlay.
type Mock struct {
	Src string `json:"src"`
	Alt string `json:"alt,omitempty"`
}

// Area is a print zone a customer can place artwork into.
type Area struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Side      Side   `json:"side"`
	Box       Box    `json:"box"`
	Surcharge int64  `json:"surchargeCents"`
	Mock      *Mock  `json:"mock,omitempty"`
}

// Catalog is an immutable lookup of print areas by id.
type Catalog struct {
	areas []Area
	byID  map[string]Area
}

// NewCatalog validates areas and indexes them. Declaration order is kept for
// AreasForSide and All.
func NewCatalog(areas ...Area) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]Area, len(areas))}
	for _, a := range areas {
		if a.ID == "" {
			return nil, fmt.Errorf("print area: empty id")
		}
		if _, dup := c.byID[a.ID]; dup {
			return nil, fmt.Errorf("print area %q: duplicate id", a.ID)
		}
		if !a.Side.Valid() {
			return nil, fmt.Errorf("print area %q: invalid side %q", a.ID, a.Side)
		}
		if a.Surcharge < 0 {
			return nil, fmt.Errorf("print area %q: negative surcharge", a.ID)
		}
		if !a.Box.valid() {
			return nil, fmt.Errorf("print area %q: box outside canvas", a.ID)
		}
		c.areas = append(c.areas, a)
		c.byID[a.ID] = a
	}
	return c, nil
}

// MustCatalog is NewCatalog for static tables.
func MustCatalog(areas ...Area) *Catalog {
	c, err := NewCatalog(areas...)
	if err != nil {
		panic(err)
	}
	return c
}

func (b Box) valid() bool {
	in := func(v float64) bool { return v >= 0 && v <= 1 }
	return in(b.X) && in(b.Y) && b.W > 0 && b.H > 0 && b.X+b.W <= 1 && b.Y+b.H <= 1
}

// Lookup returns the area for id or apperr.ErrUnknownArea.
func (c *Catalog) Lookup(id string) (Area, error) {
	a, ok := c.byID[id]
	if !ok {
		return Area{}, fmt.Errorf("%w: %q", apperr.ErrUnknownArea, id)
	}
	return a, nil
}

// AreasForSide returns the areas printable on side, in declaration order.
func (c *Catalog) AreasForSide(side Side) []Area {
	out := []Area{}
	for _, a := range c.areas {
		if a.Side == side {
			out = append(out, a)
		}
	}
	return out
}

// All returns a copy of every area.
func (c *Catalog) All() []Area {
	return append([]Area(nil), c.areas...)
}
