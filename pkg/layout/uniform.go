package layout

// placeUniform lays measured items out row-major. Every row is as tall as its
// tallest item plus the gutter. Spans are ignored. Positions are recomputed
// on every pass because a late, taller item pushes later rows down.
func placeUniform[T comparable](items []T, cfg Config[T]) Result {
	g := cfg.Geometry
	res := Result{Heights: make([]float64, g.Count)}

	type cell struct {
		item   T
		height float64
	}
	var cells []cell
	for _, item := range items {
		if h, ok := cfg.Measurements.Get(item); ok {
			cells = append(cells, cell{item, h})
		}
	}

	var top float64
	for start := 0; start < len(cells); start += g.Count {
		end := min(start+g.Count, len(cells))
		var rowHeight float64
		for _, c := range cells[start:end] {
			rowHeight = max(rowHeight, c.height)
		}
		for i, c := range cells[start:end] {
			prev, had := cfg.Positions.Get(c.item)
			pos := Position{Top: top, Left: g.Left(i), Width: g.ColumnWidth, Height: c.height}
			if !had || prev != pos {
				cfg.Positions.Set(c.item, pos)
				if !had {
					res.Placed++
				}
			}
			res.Heights[i] = top + rowHeight + g.Gutter
		}
		top += rowHeight + g.Gutter
	}
	res.Height = top
	return res
}
