package grid

import (
	"context"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/masonry/pkg/columns"
	"github.com/matzehuels/masonry/pkg/layout"
	"github.com/matzehuels/masonry/pkg/observability"
	"github.com/matzehuels/masonry/pkg/ratelimit"
	"github.com/matzehuels/masonry/pkg/reconcile"
	"github.com/matzehuels/masonry/pkg/resize"
	"github.com/matzehuels/masonry/pkg/scroll"
	"github.com/matzehuels/masonry/pkg/virtual"
)

// Grid is a masonry layout controller. It owns the item sequence, the
// container width and the scroll state, and turns them into Frames.
//
// All methods are safe for concurrent use. OnChange and LoadMore are always
// invoked without the grid's lock held, so they may call back into the grid.
type Grid[T comparable] struct {
	opts Options[T]
	log  *log.Logger

	resizer   *ratelimit.Debouncer
	scroll    *scroll.Coordinator
	table     *resize.Table
	reconcile reconcile.Func[T]

	mu        sync.Mutex
	items     []T
	ids       map[T]ItemID
	byID      map[ItemID]T
	nextID    ItemID
	width     float64
	hasWidth  bool
	maxHeight float64
	state     State
	batches   int
	closed    bool
}

// New validates opts and creates a grid in the AwaitingWidth state.
func New[T comparable](opts Options[T]) (*Grid[T], error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	g := &Grid[T]{
		opts:      opts,
		log:       opts.Logger,
		resizer:   ratelimit.NewDebouncer(opts.ResizeDelay, opts.Scheduler),
		scroll:    scroll.NewCoordinator(opts.FetchMultiplier, opts.ScrollInterval, opts.Scheduler),
		reconcile: reconcile.For[T](opts.DynamicHeightsV2),
		ids:       make(map[T]ItemID),
		byID:      make(map[ItemID]T),
		state:     AwaitingWidth,
	}
	g.table = resize.NewTable(g.flushed)
	return g, nil
}

// =============================================================================
// Triggers
// =============================================================================

// SetItems replaces the item sequence. Appending to the previous sequence
// keeps every cached position; any other change drops cached positions so
// the grid is laid out again in the new order. Measurements are kept.
func (g *Grid[T]) SetItems(items []T) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}

	prev := g.items
	appended := len(items) >= len(prev) && slices.Equal(prev, items[:len(prev)])
	g.items = slices.Clone(items)
	g.assignIDs()

	if !appended {
		g.opts.Positions.Reset()
		observability.Layout().OnReflow(context.Background(), "items")
		g.log.Debug("items replaced", "previous", len(prev), "items", len(items))
	}
	if g.scroll.Observe(len(items)) {
		g.log.Debug("fetch complete", "items", len(items))
	}
	if g.hasWidth {
		g.setState(Measuring)
	}
	g.mu.Unlock()
	g.notify()
}

// assignIDs keeps the ids of retained items and issues new ones for the rest.
func (g *Grid[T]) assignIDs() {
	ids := make(map[T]ItemID, len(g.items))
	for _, item := range g.items {
		if _, seen := ids[item]; seen {
			continue
		}
		if id, ok := g.ids[item]; ok {
			ids[item] = id
			continue
		}
		g.nextID++
		ids[item] = g.nextID
		g.byID[g.nextID] = item
	}
	for item, id := range g.ids {
		if _, ok := ids[item]; !ok {
			delete(g.byID, id)
			g.table.Unsubscribe(int(id))
		}
	}
	g.ids = ids
}

// SetWidth sets the container width immediately. A width that differs from
// the current one resets both stores.
func (g *Grid[T]) SetWidth(width float64) {
	if width < 0 || math.IsNaN(width) || math.IsInf(width, 0) {
		g.log.Warn("ignoring invalid width", "width", width)
		return
	}

	g.mu.Lock()
	if g.closed || (g.hasWidth && g.width == width) {
		g.mu.Unlock()
		return
	}
	if g.hasWidth {
		g.opts.Measurements.Reset()
		g.opts.Positions.Reset()
		observability.Layout().OnReflow(context.Background(), "width")
		g.log.Debug("width changed", "from", g.width, "to", width)
	}
	g.width = width
	g.hasWidth = true
	g.setState(Measuring)
	g.mu.Unlock()
	g.notify()
}

// Resize sets the container width after ResizeDelay of quiet.
func (g *Grid[T]) Resize(width float64) {
	if g.isClosed() {
		return
	}
	g.resizer.Call(func() { g.SetWidth(width) })
}

// Scroll records the scroll state through the ScrollInterval throttle.
func (g *Grid[T]) Scroll(s scroll.State) {
	if g.isClosed() {
		return
	}
	g.scroll.Update(s, g.notify)
}

// ScrollNow records the scroll state immediately.
func (g *Grid[T]) ScrollNow(s scroll.State) {
	if g.isClosed() {
		return
	}
	g.scroll.Set(s)
	g.notify()
}

// Measured accepts off-screen measurements. Heights for items that are
// already laid out are treated as resizes. Unknown items and heights that are
// not positive and finite are ignored.
func (g *Grid[T]) Measured(heights map[T]float64) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	changed := false
	accepted := 0
	for item, h := range heights {
		if _, ok := g.ids[item]; !ok || !validHeight(h) {
			continue
		}
		accepted++
		if g.opts.Positions.Has(item) {
			changed = g.resizeItem(item, h) || changed
			continue
		}
		if old, had := g.opts.Measurements.Get(item); had && old == h {
			continue
		}
		g.opts.Measurements.Set(item, h)
		changed = true
	}
	if accepted > 0 {
		observability.Layout().OnMeasure(context.Background(), accepted)
	}
	g.mu.Unlock()
	if changed {
		g.notify()
	}
}

// ReportMeasurement is Measured for a single item.
func (g *Grid[T]) ReportMeasurement(item T, height float64) {
	g.Measured(map[T]float64{item: height})
}

// HandleResize delivers a batch of post-render height changes for rendered
// items. OnChange fires at most once for the whole batch.
func (g *Grid[T]) HandleResize(entries []resize.Entry) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	changed := g.table.Dispatch(entries)
	g.mu.Unlock()
	if changed {
		g.notify()
	}
}

// flushed runs once per dispatched resize batch, with the grid locked.
func (g *Grid[T]) flushed(changed bool) {
	g.batches++
	if changed {
		g.log.Debug("resize batch applied", "batch", g.batches)
	}
}

// Reflow drops every cached measurement and position.
func (g *Grid[T]) Reflow() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.opts.Measurements.Reset()
	g.opts.Positions.Reset()
	observability.Layout().OnReflow(context.Background(), "reflow")
	g.log.Debug("reflow", "items", len(g.items))
	if g.hasWidth {
		g.setState(Measuring)
	}
	g.mu.Unlock()
	g.notify()
}

// Close cancels pending timers and drops resize subscriptions. Later
// triggers are ignored.
func (g *Grid[T]) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.closed = true
	g.resizer.Cancel()
	g.scroll.Close()
	g.table.Clear()
}

// =============================================================================
// Read Side
// =============================================================================

// Layout places every newly measured item and returns the frame to render.
// It may request more items through LoadMore.
func (g *Grid[T]) Layout() Frame[T] {
	g.mu.Lock()
	frame, from, fetch := g.computeLayout()
	g.mu.Unlock()

	if fetch {
		observability.Layout().OnLoadMore(context.Background(), from)
		g.log.Debug("load more", "from", from)
		g.opts.LoadMore(from)
	}
	return frame
}

func (g *Grid[T]) computeLayout() (frame Frame[T], from int, fetch bool) {
	if g.closed {
		return Frame[T]{State: g.state}, 0, false
	}
	if !g.hasWidth {
		g.setState(AwaitingWidth)
		frame = Frame[T]{State: AwaitingWidth}
		if g.opts.Mode == columns.ModeServerFlexible {
			for i, item := range g.items {
				frame.Prerender = append(frame.Prerender, Probe[T]{
					ID: g.ids[item], Item: item, Index: i, Width: g.opts.ColumnWidth,
				})
			}
		}
		return frame, 0, false
	}

	geom := g.geometry()
	cfg := g.config(geom)
	mode := g.opts.Mode.String()

	hooks := observability.Layout()
	ctx := context.Background()
	hooks.OnLayoutStart(ctx, mode, len(g.items))
	start := time.Now()
	res := layout.Place(g.items, cfg)
	hooks.OnLayoutComplete(ctx, mode, res.Placed, time.Since(start))
	if res.Placed > 0 {
		g.log.Debug("layout pass", "placed", res.Placed, "columns", geom.Count, "height", res.Height)
	}

	placed := make([]Placed[T], 0, len(g.items))
	for i, item := range g.items {
		if pos, ok := g.opts.Positions.Get(item); ok {
			placed = append(placed, Placed[T]{ID: g.ids[item], Item: item, Index: i, Position: pos})
		}
	}
	g.maxHeight = max(g.maxHeight, res.Height)

	probes := g.measureBatch(cfg)
	pending := len(probes) > 0 || res.Deferred
	if pending {
		g.setState(Measuring)
	} else {
		g.setState(Stable)
	}

	visible := placed
	st, scrollable := g.scrollState()
	if g.opts.Virtualize && scrollable {
		visible = virtual.Filter(placed, func(p Placed[T]) layout.Position { return p.Position },
			st.Viewport(), g.opts.VirtualBounds)
	}
	g.subscribe(visible)

	if g.opts.LoadMore != nil && scrollable && !pending &&
		g.scroll.NearBottom(g.maxHeight) && g.scroll.Request(len(g.items)) {
		fetch, from = true, len(g.items)
	}

	return Frame[T]{
		State:        g.state,
		Geometry:     geom,
		Items:        placed,
		Visible:      visible,
		Measure:      probes,
		Height:       g.maxHeight,
		FetchPending: g.scroll.Fetching(),
	}, from, fetch
}

// measureBatch returns the next unmeasured items to probe. The batch holds
// MinCols items, or a multi-column batch plus one when a multi-span item is
// among the upcoming unpositioned items.
func (g *Grid[T]) measureBatch(cfg layout.Config[T]) []Probe[T] {
	size := g.opts.MinCols
	lookahead := layout.DefaultBatchSize + 1
	for i, item := range g.items {
		if lookahead == 0 {
			break
		}
		if g.opts.Positions.Has(item) {
			continue
		}
		lookahead--
		if span := layout.SpanOf(g.items, i, cfg); span > 1 {
			size = max(size, layout.TuningFor(cfg, span).BatchSize+1)
		}
	}

	var probes []Probe[T]
	for i, item := range g.items {
		if len(probes) == size {
			break
		}
		if g.opts.Measurements.Has(item) {
			continue
		}
		probes = append(probes, Probe[T]{
			ID:    g.ids[item],
			Item:  item,
			Index: i,
			Width: cfg.Geometry.SpanWidth(layout.SpanOf(g.items, i, cfg)),
		})
	}
	return probes
}

// subscribe keeps resize subscriptions in step with the rendered items.
func (g *Grid[T]) subscribe(rendered []Placed[T]) {
	keep := make(map[int]bool, len(rendered))
	for _, p := range rendered {
		id := int(p.ID)
		keep[id] = true
		if !g.table.Subscribed(id) {
			item := p.Item
			g.table.Subscribe(id, func(h float64) bool { return g.resizeItem(item, h) })
		}
	}
	for _, id := range g.table.IDs() {
		if !keep[id] {
			g.table.Unsubscribe(id)
		}
	}
}

// resizeItem reconciles a height change. The caller holds the lock.
func (g *Grid[T]) resizeItem(item T, height float64) bool {
	if !validHeight(height) {
		return false
	}
	changed := g.reconcile(reconcile.Input[T]{
		Items:        g.items,
		Item:         item,
		Height:       height,
		Measurements: g.opts.Measurements,
		Positions:    g.opts.Positions,
		Geometry:     g.geometry(),
	})
	if changed {
		heights := layout.ColumnHeights(g.items, g.opts.Positions, g.geometry())
		for _, h := range heights {
			g.maxHeight = max(g.maxHeight, h)
		}
	}
	return changed
}

// scrollState returns the known scroll state, asking ScrollContainer for an
// initial one. It reports false when the grid has no scroll container.
func (g *Grid[T]) scrollState() (scroll.State, bool) {
	if g.opts.ScrollContainer == nil {
		return scroll.State{}, false
	}
	if st, ok := g.scroll.State(); ok {
		return st, true
	}
	st, ok := g.opts.ScrollContainer()
	if !ok {
		return scroll.State{}, false
	}
	g.scroll.Set(st)
	return st, true
}

func (g *Grid[T]) geometry() columns.Geometry {
	return columns.Resolve(columns.Params{
		Width:       g.width,
		ColumnWidth: g.opts.ColumnWidth,
		Gutter:      g.opts.Gutter,
		MinCols:     g.opts.MinCols,
		Mode:        g.opts.Mode,
	})
}

func (g *Grid[T]) config(geom columns.Geometry) layout.Config[T] {
	variant := layout.V1
	if g.opts.MultiColumnV2 {
		variant = layout.V2
	}
	return layout.Config[T]{
		Geometry:             geom,
		Measurements:         g.opts.Measurements,
		Positions:            g.opts.Positions,
		Uniform:              g.opts.Mode == columns.ModeUniformRow,
		ColumnSpan:           g.opts.ColumnSpan,
		ResponsiveSecondItem: g.opts.ResponsiveSecondItem,
		Tuning:               g.opts.Tuning,
		Variant:              variant,
		LogWhitespace:        g.opts.LogWhitespace,
	}
}

func (g *Grid[T]) setState(s State) {
	if g.state == s {
		return
	}
	g.log.Debug("state", "from", g.state, "to", s, "items", len(g.items))
	g.state = s
}

func (g *Grid[T]) notify() {
	if g.opts.OnChange == nil || g.isClosed() {
		return
	}
	g.opts.OnChange()
}

func (g *Grid[T]) isClosed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closed
}

// =============================================================================
// Accessors
// =============================================================================

// State returns the state of the last layout pass or trigger.
func (g *Grid[T]) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Width returns the container width and whether one is known.
func (g *Grid[T]) Width() (float64, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.width, g.hasWidth
}

// Items returns a copy of the item sequence.
func (g *Grid[T]) Items() []T {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.items)
}

// ID returns the id assigned to item.
func (g *Grid[T]) ID(item T) (ItemID, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id, ok := g.ids[item]
	return id, ok
}

// Item returns the item with the given id.
func (g *Grid[T]) Item(id ItemID) (T, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	item, ok := g.byID[id]
	return item, ok
}

func validHeight(h float64) bool {
	return h > 0 && !math.IsInf(h, 0)
}
