package grid

// Settle drives the grid to Stable by answering every measurement request
// with measure. It returns the final frame. Settle is for hosts that can
// measure synchronously, such as servers and command-line tools.
//
// A grid without a width never settles; Settle returns its AwaitingWidth
// frame.
func (g *Grid[T]) Settle(measure func(item T, width float64) float64) Frame[T] {
	frame := g.Layout()
	for guard := len(g.Items()) + 2; frame.State == Measuring && guard > 0; guard-- {
		if len(frame.Measure) == 0 {
			frame = g.Layout()
			continue
		}
		heights := make(map[T]float64, len(frame.Measure))
		for _, p := range frame.Measure {
			heights[p.Item] = measure(p.Item, p.Width)
		}
		g.Measured(heights)
		frame = g.Layout()
	}
	return frame
}
