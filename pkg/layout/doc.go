// Package layout implements the masonry placement strategies.
//
// # Strategies
//
// Single-column placement is greedy: every item goes to the currently
// shortest column (lowest index on ties), its top is that column's height,
// and the column grows by the item's height plus the gutter.
//
// Multi-column placement handles items spanning two or more columns. Before
// placing such an item, the strategy considers moving a small batch of the
// single-span items that follow it above it, and picks the arrangement that
// leaves the least whitespace under the wide item. Two variants exist:
// [V1] tries prefixes of the batch, [V2] tries every order-preserving subset
// within an iteration budget and breaks ties more precisely. Both are a
// bounded local search, not a global optimum.
//
// Uniform-row placement lays items out row-major with every row as tall as
// its tallest item.
//
// # Incremental placement
//
// [Place] never moves an item that already has a cached position. Column
// heights are rebuilt from the cached positions, and only unpositioned items
// with a measurement are placed. Appending items to a feed therefore costs
// time proportional to the new items.
//
// # Usage
//
//	geom := columns.Resolve(columns.Params{Width: 900, ColumnWidth: 236, Gutter: 14, MinCols: 2})
//	res := layout.Place(items, layout.Config[*Pin]{
//	    Geometry:     geom,
//	    Measurements: heights,
//	    Positions:    positions,
//	})
//	fmt.Println(res.Height)
package layout
