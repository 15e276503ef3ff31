// Package virtual filters a laid-out grid down to the items near the viewport.
package virtual

import "github.com/matzehuels/masonry/pkg/layout"

// DefaultMultiplier is the buffer above and below the viewport, as a
// fraction of the container height, when no explicit bounds are set.
const DefaultMultiplier = 0.7

// Viewport is the scroll geometry the filter runs against.
type Viewport struct {
	// ScrollTop is the scroll offset of the scroll container.
	ScrollTop float64
	// ContainerHeight is the visible height of the scroll container.
	ContainerHeight float64
	// ContainerOffset is the grid's offset from the top of the scroll
	// container's content.
	ContainerOffset float64
}

// Bounds configures the buffer around the viewport. Top and Bottom override
// the multiplier for their side when set.
type Bounds struct {
	Top        *float64 `json:"top,omitempty"`
	Bottom     *float64 `json:"bottom,omitempty"`
	Multiplier float64  `json:"multiplier,omitempty"`
}

// Window returns the visible band in grid coordinates.
func Window(v Viewport, b Bounds) (top, bottom float64) {
	mult := b.Multiplier
	if mult <= 0 {
		mult = DefaultMultiplier
	}
	buffer := v.ContainerHeight * mult
	offsetScroll := v.ScrollTop - v.ContainerOffset

	top = offsetScroll - buffer
	if b.Top != nil {
		top = offsetScroll - *b.Top
	}
	bottom = offsetScroll + v.ContainerHeight + buffer
	if b.Bottom != nil {
		bottom = offsetScroll + v.ContainerHeight + *b.Bottom
	}
	return top, bottom
}

// Visible reports whether pos intersects the band [top, bottom]. Items that
// end at or above top, or start at or below bottom, are not visible.
func Visible(pos layout.Position, top, bottom float64) bool {
	return pos.Bottom() > top && pos.Top < bottom
}

// Filter returns the entries of items whose position intersects the buffered
// viewport. pos extracts the rectangle from an entry. Filter never mutates
// its input; the returned slice keeps the input order.
func Filter[E any](items []E, pos func(E) layout.Position, v Viewport, b Bounds) []E {
	top, bottom := Window(v, b)
	out := make([]E, 0, len(items))
	for _, it := range items {
		if Visible(pos(it), top, bottom) {
			out = append(out, it)
		}
	}
	return out
}
