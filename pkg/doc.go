// Package pkg provides the libraries behind masonry, a masonry grid layout
// engine.
//
// # Overview
//
// Masonry places a stream of variably sized items into columns: each item
// goes on the currently shortest column, and items spanning several columns
// are placed where they leave the least whitespace. The engine is
// incremental, so appending items or changing one item's height only moves
// what has to move.
//
// The pkg directory is organized as:
//
//  1. [grid] - The controller hosts drive: items, width, scroll, measurements
//  2. [columns], [layout], [reconcile] - Geometry, placement and height changes
//  3. [store], [virtual], [scroll], [resize], [ratelimit] - Supporting state
//  4. [feed], [cache] - Feed files, demo data and computed-layout caching
//  5. [errors], [observability], [buildinfo] - Ambient infrastructure
//
// # Architecture
//
// The data flow of one layout pass:
//
//	Host items + container width
//	         ↓
//	    [columns] package (column count, width, offset)
//	         ↓
//	    [layout] package (place measured items, fill the position store)
//	         ↓
//	    [virtual] package (keep the items near the viewport)
//	         ↓
//	    grid.Frame (what the host renders and what it must measure)
//
// Height changes reported after rendering flow through [resize] into
// [reconcile], which moves the items below the changed one.
//
// # Quick Start
//
//	g, err := grid.New(grid.Options[*feed.Item]{ColumnWidth: 236, Gutter: 14})
//	if err != nil {
//	    return err
//	}
//	defer g.Close()
//
//	g.SetItems(items)
//	g.SetWidth(1024)
//	frame := g.Settle(func(it *feed.Item, width float64) float64 {
//	    return it.Height
//	})
//	for _, p := range frame.Items {
//	    fmt.Println(p.Item.Title, p.Position.Left, p.Position.Top)
//	}
//
// [grid]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/grid
// [columns]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/columns
// [layout]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/layout
// [reconcile]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/reconcile
// [store]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/store
// [virtual]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/virtual
// [scroll]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/scroll
// [resize]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/resize
// [ratelimit]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/ratelimit
// [feed]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/feed
// [cache]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/buildinfo
package pkg
