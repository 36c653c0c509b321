package catalog

import "strings"

// Color is a garment swatch.
type Color struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// Palette lists the swatches offered on product pages, in display order.
var Palette = []Color{
	{ID: "white", Name: "White", Hex: "#ffffff"},
	{ID: "black", Name: "Black", Hex: "#000000"},
	{ID: "ash", Name: "Ash", Hex: "#e5e7eb"},
	{ID: "gray", Name: "Gray", Hex: "#9ca3af"},
	{ID: "red", Name: "Red", Hex: "#ef4444"},
	{ID: "blue", Name: "Blue", Hex: "#3b82f6"},
	{ID: "green", Name: "Green", Hex: "#10b981"},
}

var colorHex = func() map[string]string {
	m := make(map[string]string, len(Palette))
	for _, c := range Palette {
		m[c.ID] = c.Hex
	}
	return m
}()

// KnownColor reports whether id names a palette swatch. Case is ignored.
func KnownColor(id string) bool {
	_, ok := colorHex[strings.ToLower(strings.TrimSpace(id))]
	return ok
}

// ResolveHex returns the hex value of a swatch id, or fallback.
func ResolveHex(id, fallback string) string {
	if hex, ok := colorHex[strings.ToLower(strings.TrimSpace(id))]; ok {
		return hex
	}
	return fallback
}
