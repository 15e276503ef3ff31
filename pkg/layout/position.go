package layout

// Position is the rectangle assigned to one item for the current layout.
// Coordinates are pixels relative to the grid's top-left corner.
type Position struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Bottom returns the bottom edge of the rectangle.
func (p Position) Bottom() float64 { return p.Top + p.Height }

// Right returns the right edge of the rectangle.
func (p Position) Right() float64 { return p.Left + p.Width }

// OverlapsHorizontally reports whether p and o share any horizontal extent.
func (p Position) OverlapsHorizontally(o Position) bool {
	return p.Left < o.Right() && o.Left < p.Right()
}

// Overlaps reports whether p and o intersect with a non-zero area.
func (p Position) Overlaps(o Position) bool {
	return p.OverlapsHorizontally(o) && p.Top < o.Bottom() && o.Top < p.Bottom()
}
