package layout

import (
	"github.com/matzehuels/masonry/pkg/columns"
	"github.com/matzehuels/masonry/pkg/store"
)

// Variant selects the multi-column search.
type Variant int

const (
	V1 Variant = iota
	V2
)

// Config is the input to a placement pass.
type Config[T comparable] struct {
	Geometry     columns.Geometry
	Measurements store.Store[T, float64]
	Positions    store.Store[T, Position]

	// Uniform selects row-major uniform-row placement.
	Uniform bool

	// ColumnSpan returns the requested span of an item. Nil means every
	// item spans one column.
	ColumnSpan func(T) SpanConfig

	// ResponsiveSecondItem, if it reports true for the item at index 1,
	// sizes that item to fill the first row.
	ResponsiveSecondItem func(T) (ResponsiveSpan, bool)

	// Tuning configures the multi-column search per grid size and span.
	Tuning func(GridSize, int) Tuning

	Variant Variant

	// LogWhitespace receives the whitespace introduced by each multi-span
	// placement and the number of candidates evaluated. Diagnostic only.
	LogWhitespace func(additional float64, iterations int, span int)
}

// Result summarizes a placement pass.
type Result struct {
	// Heights are the running column heights after the pass.
	Heights []float64
	// Height is the tallest column.
	Height float64
	// Placed counts items positioned by this pass.
	Placed int
	// Deferred is set when a multi-span item was held back because items in
	// its lookahead window are not measured yet.
	Deferred bool
}

// pending is an item that is measured but not yet positioned.
type pending[T comparable] struct {
	item   T
	index  int
	height float64
	span   int
}

// Place positions every measured, unpositioned item in items and writes the
// new positions to cfg.Positions. items is the full logical sequence; its
// order decides placement order.
func Place[T comparable](items []T, cfg Config[T]) Result {
	if cfg.Geometry.Count < 1 {
		return Result{}
	}
	if cfg.Uniform {
		return placeUniform(items, cfg)
	}

	heights := ColumnHeights(items, cfg.Positions, cfg.Geometry)
	res := Result{Heights: heights}

	queue, deferred := collectPending(items, cfg)
	res.Deferred = deferred

	multi := false
	for _, p := range queue {
		if p.span > 1 {
			multi = true
			break
		}
	}

	if multi {
		res.Placed = placeMulti(queue, heights, cfg)
	} else {
		for _, p := range queue {
			cfg.Positions.Set(p.item, placeSingle(heights, p.height, cfg.Geometry))
		}
		res.Placed = len(queue)
	}

	res.Height = tallest(heights)
	return res
}

// collectPending returns the measured, unpositioned items in order, with
// their effective spans. A multi-span item whose lookahead window is not fully
// measured ends the queue.
func collectPending[T comparable](items []T, cfg Config[T]) ([]pending[T], bool) {
	cols := cfg.Geometry.Count
	gs := GridSizeFor(cols)
	var queue []pending[T]

	for i, item := range items {
		if cfg.Positions.Has(item) {
			continue
		}
		h, ok := cfg.Measurements.Get(item)
		if !ok {
			continue
		}
		span := spanOf(items, i, cfg, gs)
		if span > 1 && !lookaheadMeasured(items, i, cfg, gs, span) {
			return queue, true
		}
		queue = append(queue, pending[T]{item: item, index: i, height: h, span: span})
	}
	return queue, false
}

func lookaheadMeasured[T comparable](items []T, i int, cfg Config[T], gs GridSize, span int) bool {
	batch := tuningFor(cfg, gs, span).BatchSize
	for j := i + 1; j < len(items) && j <= i+batch; j++ {
		if !cfg.Positions.Has(items[j]) && !cfg.Measurements.Has(items[j]) {
			return false
		}
	}
	return true
}

// spanOf returns the effective, clamped span of items[i].
func spanOf[T comparable](items []T, i int, cfg Config[T], gs GridSize) int {
	cols := cfg.Geometry.Count
	if i == 1 && cfg.ResponsiveSecondItem != nil {
		if r, ok := cfg.ResponsiveSecondItem(items[1]); ok {
			first := 1
			if cfg.ColumnSpan != nil {
				first = clampSpan(cfg.ColumnSpan(items[0]).Resolve(gs), cols)
			}
			return r.fill(first, cols)
		}
	}
	if cfg.ColumnSpan == nil {
		return 1
	}
	return clampSpan(cfg.ColumnSpan(items[i]).Resolve(gs), cols)
}

// SpanOf returns the effective span of items[i] under cfg. It is what Place
// uses and lets callers predict whether a multi-column pass is coming.
func SpanOf[T comparable](items []T, i int, cfg Config[T]) int {
	if i < 0 || i >= len(items) || cfg.Geometry.Count < 1 {
		return 1
	}
	return spanOf(items, i, cfg, GridSizeFor(cfg.Geometry.Count))
}

// TuningFor returns the search tuning Place uses for an item of the given
// span under cfg.
func TuningFor[T comparable](cfg Config[T], span int) Tuning {
	return tuningFor(cfg, GridSizeFor(cfg.Geometry.Count), span)
}

func tuningFor[T comparable](cfg Config[T], gs GridSize, span int) Tuning {
	if cfg.Tuning == nil {
		return DefaultTuning(gs, span)
	}
	return cfg.Tuning(gs, span).withDefaults()
}

// ColumnHeights rebuilds running column heights from cached positions.
// Each column's height is the bottom-most edge (plus gutter) of any
// positioned item covering it.
func ColumnHeights[T comparable](items []T, positions store.Store[T, Position], g columns.Geometry) []float64 {
	heights := make([]float64, g.Count)
	for _, item := range items {
		pos, ok := positions.Get(item)
		if !ok {
			continue
		}
		col, span := g.ColumnOf(pos.Left, pos.Width)
		bottom := pos.Bottom() + g.Gutter
		for c := col; c < col+span; c++ {
			heights[c] = max(heights[c], bottom)
		}
	}
	return heights
}

func tallest(heights []float64) float64 {
	var h float64
	for _, v := range heights {
		h = max(h, v)
	}
	return h
}
