// Package grid is the masonry controller that hosts drive.
//
// A Grid holds an ordered item sequence and answers one question: where does
// each item go? The host feeds it triggers and renders the Frames it returns:
//
//	g, _ := grid.New(grid.Options[*Pin]{ColumnWidth: 236, Gutter: 14})
//	g.SetItems(pins)
//	g.SetWidth(containerWidth)
//	frame := g.Layout()
//
// # Lifecycle
//
// A new grid is AwaitingWidth. Once a width is known it is Measuring: each
// Frame lists a small batch of unmeasured items (Frame.Measure) that the host
// renders off-screen and reports back with Measured. When every item is
// measured and positioned the grid is Stable. Changing the item sequence,
// the width, or calling Reflow moves it back to Measuring; a width change
// also drops every cached measurement and position.
//
// # Caches
//
// Measurements and positions live in stores keyed by item identity. Hosts
// that keep a list across re-mounts pass their own stores (NewStore,
// NewPositionStore) in Options so nothing is measured twice.
//
// # Scrolling
//
// With a ScrollContainer configured, Scroll and ScrollNow feed the viewport.
// Virtualize limits Frame.Visible to items near the viewport, and LoadMore is
// requested once the viewport is within FetchMultiplier container heights of
// the bottom. Only one LoadMore is outstanding at a time; it is released when
// SetItems delivers at least as many items as were asked for.
//
// # Resizes
//
// Items in Frame.Visible are subscribed for height changes. The host passes
// observed changes to HandleResize in batches, and the grid shifts the items
// below each changed one without a full relayout.
package grid
