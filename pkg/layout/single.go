package layout

import "github.com/matzehuels/masonry/pkg/columns"

// shortest returns the index of the shortest column; the lowest index wins ties.
func shortest(heights []float64) int {
	idx := 0
	for i := 1; i < len(heights); i++ {
		if heights[i] < heights[idx] {
			idx = i
		}
	}
	return idx
}

// placeSingle puts one span-1 item on the shortest column and grows it.
func placeSingle(heights []float64, height float64, g columns.Geometry) Position {
	col := shortest(heights)
	pos := Position{
		Top:    heights[col],
		Left:   g.Left(col),
		Width:  g.ColumnWidth,
		Height: height,
	}
	heights[col] += height + g.Gutter
	return pos
}

// PlaceSingle runs the greedy shortest-column rule over heights, one item per
// entry of itemHeights, and returns the positions. heights is updated in place.
func PlaceSingle(heights []float64, itemHeights []float64, g columns.Geometry) []Position {
	out := make([]Position, len(itemHeights))
	for i, h := range itemHeights {
		out[i] = placeSingle(heights, h, g)
	}
	return out
}
