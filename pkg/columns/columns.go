// Package columns derives grid geometry from a container width.
//
// Resolve is the single entry point. It is pure: the same Params always
// produce the same Geometry.
//
// Fixed modes keep the nominal column width and leave the remainder as an
// outer margin (left aligned) or split it on both sides (centered). Flexible
// modes fit as many whole columns as they can and then widen every column
// equally so the grid fills the container.
package columns

import (
	"math"
	"strings"

	"github.com/matzehuels/masonry/pkg/errors"
)

// Mode selects how columns are sized and aligned.
type Mode int

const (
	// ModeFixed keeps the nominal column width, left aligned.
	ModeFixed Mode = iota
	// ModeFixedCentered keeps the nominal column width, centered.
	ModeFixedCentered
	// ModeFlexible widens columns to fill the container.
	ModeFlexible
	// ModeServerFlexible is ModeFlexible for grids whose first paint happens
	// before the container width is known.
	ModeServerFlexible
	// ModeUniformRow places items row-major with rows as tall as their tallest item.
	ModeUniformRow
)

var modeNames = map[Mode]string{
	ModeFixed:          "basic",
	ModeFixedCentered:  "basicCentered",
	ModeFlexible:       "flexible",
	ModeServerFlexible: "serverRenderedFlexible",
	ModeUniformRow:     "uniformRow",
}

// String returns the configuration name of the mode.
func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return "unknown"
}

// Flexible reports whether m belongs to the fill-width family.
func (m Mode) Flexible() bool {
	return m == ModeFlexible || m == ModeServerFlexible
}

// ParseMode parses a configuration name. Matching is case-insensitive and
// ignores '-' and '_' so "server-rendered-flexible" is accepted too.
func ParseMode(s string) (Mode, error) {
	norm := strings.ToLower(strings.NewReplacer("-", "", "_", "").Replace(s))
	for m, name := range modeNames {
		if strings.ToLower(name) == norm {
			return m, nil
		}
	}
	if norm == "" || norm == "default" {
		return ModeFixed, nil
	}
	return ModeFixed, errors.New(errors.ErrCodeInvalidMode,
		"invalid layout %q (must be one of: basic, basicCentered, flexible, serverRenderedFlexible, uniformRow)", s)
}

// Params are the inputs to Resolve.
type Params struct {
	Width       float64 // container width
	ColumnWidth float64 // nominal (fixed) or ideal (flexible) column width
	Gutter      float64
	MinCols     int
	Mode        Mode
}

// Geometry describes the columns of one layout pass.
type Geometry struct {
	Count       int
	ColumnWidth float64
	Gutter      float64
	// Offset is added to every item's left coordinate.
	Offset float64
}

// Resolve computes the grid geometry for p.
func Resolve(p Params) Geometry {
	minCols := p.MinCols
	if minCols < 1 {
		minCols = 1
	}
	if p.Mode.Flexible() {
		return resolveFlexible(p, minCols)
	}

	stride := p.ColumnWidth + p.Gutter
	count := minCols
	if stride > 0 {
		count = max(int(math.Floor((p.Width+p.Gutter)/stride)), minCols)
	}

	g := Geometry{Count: count, ColumnWidth: p.ColumnWidth, Gutter: p.Gutter}
	if p.Mode == ModeFixedCentered {
		content := float64(count)*stride - p.Gutter
		g.Offset = math.Max(math.Floor((p.Width-content)/2), 0)
	}
	return g
}

func resolveFlexible(p Params, minCols int) Geometry {
	if p.ColumnWidth <= 0 {
		return Geometry{Count: minCols, ColumnWidth: 0, Gutter: p.Gutter, Offset: p.Gutter / 2}
	}
	guess := math.Floor(p.Width / p.ColumnWidth)
	count := max(int(math.Floor((p.Width-guess*p.Gutter)/p.ColumnWidth)), minCols)
	width := math.Max(math.Floor(p.Width/float64(count))-p.Gutter, 0)
	return Geometry{Count: count, ColumnWidth: width, Gutter: p.Gutter, Offset: p.Gutter / 2}
}

// Count is a convenience for Resolve(p).Count.
func Count(p Params) int {
	return Resolve(p).Count
}

// Stride is the horizontal distance between the left edges of adjacent columns.
func (g Geometry) Stride() float64 { return g.ColumnWidth + g.Gutter }

// Left returns the left coordinate of column col.
func (g Geometry) Left(col int) float64 {
	return g.Offset + float64(col)*g.Stride()
}

// SpanWidth returns the width of an item spanning span columns.
func (g Geometry) SpanWidth(span int) float64 {
	if span < 1 {
		span = 1
	}
	return float64(span)*g.ColumnWidth + float64(span-1)*g.Gutter
}

// ColumnOf maps a left coordinate and width back to a column range.
// The result is clamped to the grid.
func (g Geometry) ColumnOf(left, width float64) (col, span int) {
	stride := g.Stride()
	if stride <= 0 || g.Count == 0 {
		return 0, 1
	}
	col = int(math.Round((left - g.Offset) / stride))
	span = int(math.Round((width + g.Gutter) / stride))
	col = min(max(col, 0), g.Count-1)
	span = min(max(span, 1), g.Count-col)
	return col, span
}
