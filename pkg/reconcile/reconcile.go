// Package reconcile repairs a layout after an item's rendered height changes.
//
// When an item that is already on screen turns out taller or shorter than its
// cached measurement, only the items below it need to move. Both reconcilers
// update the measurement and the item's own rectangle, shift its followers,
// and report whether anything changed so the caller knows to re-render.
// Calling either one again with the same height is a no-op that returns false.
package reconcile

import (
	"sort"

	"github.com/matzehuels/masonry/pkg/columns"
	"github.com/matzehuels/masonry/pkg/layout"
	"github.com/matzehuels/masonry/pkg/store"
)

// Input describes one height change.
type Input[T comparable] struct {
	// Items is the grid's full item sequence.
	Items []T
	// Item is the item whose height changed.
	Item T
	// Height is the new measured height.
	Height float64

	Measurements store.Store[T, float64]
	Positions    store.Store[T, layout.Position]
	Geometry     columns.Geometry
}

// Func is a reconciler.
type Func[T comparable] func(Input[T]) bool

// For returns V2 when precise is true and V1 otherwise.
func For[T comparable](precise bool) Func[T] {
	if precise {
		return V2[T]
	}
	return V1[T]
}

// begin records the new height. It returns the item's previous rectangle and
// the height delta; shift is false when there is nothing to move.
func begin[T comparable](in Input[T]) (prev layout.Position, delta float64, changed, shift bool) {
	old, had := in.Measurements.Get(in.Item)
	if had && old == in.Height {
		return layout.Position{}, 0, false, false
	}
	in.Measurements.Set(in.Item, in.Height)

	prev, ok := in.Positions.Get(in.Item)
	if !ok {
		return layout.Position{}, 0, true, false
	}
	delta = in.Height - prev.Height
	if delta == 0 {
		return prev, 0, true, false
	}
	updated := prev
	updated.Height = in.Height
	in.Positions.Set(in.Item, updated)
	return prev, delta, true, true
}

// V1 moves followers by the full height delta without tracking columns.
//
// When the item grows, every follower that overlaps the moving band moves
// down and widens the band by its own extent, so a multi-span follower drags
// the items under all of its columns along. When the item shrinks, a follower
// moves up only if it lies entirely inside the band; one that sticks out stays
// where it is and closes the band beneath it.
func V1[T comparable](in Input[T]) bool {
	prev, delta, changed, shift := begin(in)
	if !shift {
		return changed
	}
	shiftBand(in, prev, delta)
	return true
}

func shiftBand[T comparable](in Input[T], prev layout.Position, delta float64) {
	band := []extent{{prev.Left, prev.Right()}}
	for _, f := range followers(in, prev) {
		e := extent{f.pos.Left, f.pos.Right()}
		if !e.overlapsAny(band) {
			continue
		}
		if delta > 0 {
			band = append(band, e)
		} else if !e.insideAny(band) {
			band = subtract(band, e)
			continue
		}
		f.pos.Top += delta
		in.Positions.Set(f.item, f.pos)
	}
}

// V2 visits followers top to bottom with a per-column shift. An item moves by
// the largest shift among the columns it covers and hands that shift on to
// all of them, so multi-span items carry neighbouring columns with them and
// columns the change never reaches keep their positions.
func V2[T comparable](in Input[T]) bool {
	prev, delta, changed, shift := begin(in)
	if !shift {
		return changed
	}
	g := in.Geometry
	if g.Count < 1 {
		shiftBand(in, prev, delta)
		return true
	}

	shifts := make([]float64, g.Count)
	col, span := g.ColumnOf(prev.Left, prev.Width)
	for c := col; c < col+span; c++ {
		shifts[c] = delta
	}

	for _, f := range followers(in, prev) {
		fc, fs := g.ColumnOf(f.pos.Left, f.pos.Width)
		s := shifts[fc]
		for c := fc + 1; c < fc+fs; c++ {
			s = max(s, shifts[c])
		}
		for c := fc; c < fc+fs; c++ {
			shifts[c] = s
		}
		if s != 0 {
			f.pos.Top += s
			in.Positions.Set(f.item, f.pos)
		}
	}
	return true
}

type follower[T comparable] struct {
	item T
	pos  layout.Position
}

// followers returns the positioned items starting below prev, top to bottom
// and left to right.
func followers[T comparable](in Input[T], prev layout.Position) []follower[T] {
	var out []follower[T]
	for _, other := range in.Items {
		if other == in.Item {
			continue
		}
		if pos, ok := in.Positions.Get(other); ok && pos.Top > prev.Top {
			out = append(out, follower[T]{other, pos})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].pos.Top != out[j].pos.Top {
			return out[i].pos.Top < out[j].pos.Top
		}
		return out[i].pos.Left < out[j].pos.Left
	})
	return out
}

// extent is a half-open horizontal interval.
type extent struct{ lo, hi float64 }

func (e extent) overlapsAny(band []extent) bool {
	for _, b := range band {
		if e.lo < b.hi && b.lo < e.hi {
			return true
		}
	}
	return false
}

func (e extent) insideAny(band []extent) bool {
	for _, b := range band {
		if b.lo <= e.lo && e.hi <= b.hi {
			return true
		}
	}
	return false
}

// subtract removes cut from every interval in band.
func subtract(band []extent, cut extent) []extent {
	var out []extent
	for _, b := range band {
		if cut.hi <= b.lo || b.hi <= cut.lo {
			out = append(out, b)
			continue
		}
		if b.lo < cut.lo {
			out = append(out, extent{b.lo, cut.lo})
		}
		if cut.hi < b.hi {
			out = append(out, extent{cut.hi, b.hi})
		}
	}
	return out
}
