package grid_test

import (
	"fmt"

	"github.com/matzehuels/masonry/pkg/grid"
)

type pin struct {
	title  string
	height float64
}

func ExampleGrid() {
	pins := []*pin{
		{"a", 100}, {"b", 150}, {"c", 80},
		{"d", 120}, {"e", 90}, {"f", 110},
	}

	g, err := grid.New(grid.Options[*pin]{ColumnWidth: 100, Gutter: 10, MinCols: 3})
	if err != nil {
		panic(err)
	}
	defer g.Close()

	g.SetItems(pins)
	g.SetWidth(330)

	frame := g.Layout()
	for frame.State == grid.Measuring {
		heights := map[*pin]float64{}
		for _, p := range frame.Measure {
			heights[p.Item] = p.Item.height
		}
		g.Measured(heights)
		frame = g.Layout()
	}

	fmt.Println("State:", frame.State)
	for _, p := range frame.Items {
		fmt.Printf("%s at (%.0f, %.0f)\n", p.Item.title, p.Position.Left, p.Position.Top)
	}
	fmt.Println("Height:", frame.Height)
	// Output:
	// State: stable
	// a at (0, 0)
	// b at (110, 0)
	// c at (220, 0)
	// d at (220, 90)
	// e at (0, 110)
	// f at (110, 160)
	// Height: 280
}
