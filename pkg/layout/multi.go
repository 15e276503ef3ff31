package layout

import (
	"math"

	"github.com/matzehuels/masonry/pkg/columns"
)

const eps = 1e-6

// maxSubsetBatch bounds the batch V2 enumerates subsets of.
const maxSubsetBatch = 30

// window is a horizontal placement for a multi-span item.
type window struct {
	col        int
	top        float64
	whitespace float64 // top minus the shortest covered column
	total      float64 // whitespace summed over the covered columns
}

func (w window) better(o window, v Variant) bool {
	if v == V1 {
		return w.whitespace < o.whitespace
	}
	if d := w.whitespace - o.whitespace; math.Abs(d) > eps {
		return d < 0
	}
	if d := w.total - o.total; math.Abs(d) > eps {
		return d < 0
	}
	return false
}

// bestWindow scans every run of span adjacent columns left to right.
func bestWindow(heights []float64, span int, v Variant) window {
	var best window
	for c := 0; c+span <= len(heights); c++ {
		top, low := heights[c], heights[c]
		for j := c + 1; j < c+span; j++ {
			top = max(top, heights[j])
			low = min(low, heights[j])
		}
		w := window{col: c, top: top, whitespace: top - low}
		for j := c; j < c+span; j++ {
			w.total += top - heights[j]
		}
		if v == V1 {
			w.whitespace = math.Round(w.whitespace)
		}
		if c == 0 || w.better(best, v) {
			best = w
		}
	}
	return best
}

// candidate is one arrangement: the batch items (by bit) moved above the
// multi-span item, and the window the item lands on afterwards.
type candidate struct {
	pre uint64
	win window
}

type search struct {
	heights []float64
	scratch []float64
	batch   []float64
	span    int
	geom    columns.Geometry
	tune    Tuning
	variant Variant

	best       candidate
	found      bool
	iterations int
}

// evaluate scores placing the batch items in mask first.
func (s *search) evaluate(mask uint64) {
	copy(s.scratch, s.heights)
	for i, h := range s.batch {
		if mask&(1<<uint(i)) != 0 {
			placeSingle(s.scratch, h, s.geom)
		}
	}
	c := candidate{pre: mask, win: bestWindow(s.scratch, s.span, s.variant)}
	s.iterations++
	if !s.found || c.win.better(s.best.win, s.variant) {
		s.best = c
		s.found = true
	}
}

func (s *search) done() bool {
	return s.found && s.best.win.whitespace <= s.tune.WhitespaceThreshold
}

// prefixes evaluates moving the first k batch items, k = 0..len(batch).
func (s *search) prefixes() {
	for k := 0; k <= len(s.batch); k++ {
		s.evaluate(uint64(1)<<uint(k) - 1)
		if s.done() {
			return
		}
	}
}

// subsets evaluates order-preserving subsets by increasing size, and by
// earliest items first within a size.
func (s *search) subsets() {
	n := min(len(s.batch), maxSubsetBatch)
	limit := uint64(1) << uint(n)
	for k := 0; k <= n; k++ {
		if k == 0 {
			s.evaluate(0)
			if s.done() || s.iterations >= s.tune.IterationLimit {
				return
			}
			continue
		}
		for mask := uint64(1)<<uint(k) - 1; mask < limit; mask = nextCombination(mask) {
			s.evaluate(mask)
			if s.done() || s.iterations >= s.tune.IterationLimit {
				return
			}
		}
	}
}

// nextCombination returns the next larger integer with the same number of
// set bits.
func nextCombination(x uint64) uint64 {
	c := x & -x
	r := x + c
	return (((r ^ x) >> 2) / c) | r
}

// placeMulti places the queue, running the whitespace search for every
// multi-span item. It returns the number of items placed.
func placeMulti[T comparable](queue []pending[T], heights []float64, cfg Config[T]) int {
	g := cfg.Geometry
	gs := GridSizeFor(g.Count)

	for i := 0; i < len(queue); {
		p := queue[i]
		if p.span <= 1 {
			cfg.Positions.Set(p.item, placeSingle(heights, p.height, g))
			i++
			continue
		}

		tune := tuningFor(cfg, gs, p.span)
		size := min(tune.BatchSize, maxSubsetBatch)
		end := i + 1
		for end < len(queue) && end-(i+1) < size && queue[end].span == 1 {
			end++
		}
		batch := queue[i+1 : end]

		s := &search{
			heights: heights,
			scratch: make([]float64, len(heights)),
			batch:   make([]float64, len(batch)),
			span:    p.span,
			geom:    g,
			tune:    tune,
			variant: cfg.Variant,
		}
		for j, b := range batch {
			s.batch[j] = b.height
		}
		if cfg.Variant == V2 {
			s.subsets()
		} else {
			s.prefixes()
		}

		for j, b := range batch {
			if s.best.pre&(1<<uint(j)) != 0 {
				cfg.Positions.Set(b.item, placeSingle(heights, b.height, g))
			}
		}
		// Re-derive the window on the real heights; identical to the
		// scratch result because placement is deterministic.
		win := bestWindow(heights, p.span, cfg.Variant)
		cfg.Positions.Set(p.item, placeWindow(heights, win, p.span, p.height, g))
		for j, b := range batch {
			if s.best.pre&(1<<uint(j)) == 0 {
				cfg.Positions.Set(b.item, placeSingle(heights, b.height, g))
			}
		}

		if cfg.LogWhitespace != nil {
			cfg.LogWhitespace(win.whitespace, s.iterations, p.span)
		}
		i = end
	}
	return len(queue)
}

func placeWindow(heights []float64, w window, span int, height float64, g columns.Geometry) Position {
	pos := Position{
		Top:    w.top,
		Left:   g.Left(w.col),
		Width:  g.SpanWidth(span),
		Height: height,
	}
	for c := w.col; c < w.col+span; c++ {
		heights[c] = w.top + height + g.Gutter
	}
	return pos
}
