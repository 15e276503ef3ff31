package grid

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/masonry/pkg/columns"
	"github.com/matzehuels/masonry/pkg/errors"
	"github.com/matzehuels/masonry/pkg/layout"
	"github.com/matzehuels/masonry/pkg/ratelimit"
	"github.com/matzehuels/masonry/pkg/scroll"
	"github.com/matzehuels/masonry/pkg/store"
	"github.com/matzehuels/masonry/pkg/virtual"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultColumnWidth is the nominal column width in pixels.
	DefaultColumnWidth = 236.0

	// DefaultGutter is the spacing between columns and stacked items.
	DefaultGutter = 14.0

	// DefaultMinCols is the column count floor.
	DefaultMinCols = 3

	// DefaultResizeDelay debounces container width changes.
	DefaultResizeDelay = 300 * time.Millisecond
)

// =============================================================================
// Options
// =============================================================================

// Options configures a Grid. The zero value plus ValidateAndSetDefaults gives
// a left-aligned grid of 236px columns with no virtualization.
type Options[T comparable] struct {
	ColumnWidth float64
	Gutter      float64
	MinCols     int
	Mode        columns.Mode

	// Measurements and Positions may be supplied to keep caches across grids.
	Measurements store.Store[T, float64]
	Positions    store.Store[T, layout.Position]

	// ScrollContainer returns the current scroll container geometry, or
	// false when there is none. Without a scroll container, virtualization
	// and load-more are disabled.
	ScrollContainer func() (scroll.State, bool)
	Virtualize      bool
	VirtualBounds   virtual.Bounds

	ColumnSpan           func(T) layout.SpanConfig
	ResponsiveSecondItem func(T) (layout.ResponsiveSpan, bool)
	Tuning               func(layout.GridSize, int) layout.Tuning
	MultiColumnV2        bool
	DynamicHeightsV2     bool
	LogWhitespace        func(additional float64, iterations int, span int)

	// LoadMore asks the host for items starting at index from. The host
	// answers, eventually, with SetItems.
	LoadMore func(from int)
	// FetchMultiplier is how many container heights of remaining content
	// trigger LoadMore.
	FetchMultiplier float64

	// OnChange requests a re-render. It is called without the grid's lock
	// held, at most once per trigger.
	OnChange func()

	Logger         *log.Logger
	Scheduler      ratelimit.Scheduler
	ResizeDelay    time.Duration
	ScrollInterval time.Duration

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks option values and fills in defaults.
// This method is idempotent.
func (o *Options[T]) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.ColumnWidth == 0 {
		o.ColumnWidth = DefaultColumnWidth
	}
	if err := errors.ValidatePositive("column width", o.ColumnWidth); err != nil {
		return err
	}
	if err := errors.ValidateDimension("gutter", o.Gutter); err != nil {
		return err
	}
	if o.MinCols == 0 {
		o.MinCols = DefaultMinCols
	}
	if o.MinCols < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "min cols must be >= 1, got %d", o.MinCols)
	}
	if o.Mode < columns.ModeFixed || o.Mode > columns.ModeUniformRow {
		return errors.New(errors.ErrCodeInvalidMode, "unknown layout mode %d", o.Mode)
	}
	if err := errors.ValidateDimension("virtual multiplier", o.VirtualBounds.Multiplier); err != nil {
		return err
	}
	if b := o.VirtualBounds.Top; b != nil {
		if err := errors.ValidateDimension("virtual top bound", *b); err != nil {
			return err
		}
	}
	if b := o.VirtualBounds.Bottom; b != nil {
		if err := errors.ValidateDimension("virtual bottom bound", *b); err != nil {
			return err
		}
	}

	if o.Measurements == nil {
		o.Measurements = NewStore[T]()
	}
	if o.Positions == nil {
		o.Positions = NewPositionStore[T]()
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	if o.ResizeDelay <= 0 {
		o.ResizeDelay = DefaultResizeDelay
	}
	if o.ScrollInterval <= 0 {
		o.ScrollInterval = scroll.DefaultInterval
	}

	o.validated = true
	return nil
}

// NewStore creates an empty measurement store for items of type T.
func NewStore[T comparable]() store.Store[T, float64] {
	return store.New[T, float64]("measurements")
}

// NewPositionStore creates an empty position store for items of type T.
func NewPositionStore[T comparable]() store.Store[T, layout.Position] {
	return store.New[T, layout.Position]("positions")
}
