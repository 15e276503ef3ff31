package layout

// GridSize buckets a column count so span configuration can be responsive.
type GridSize string

// Grid size buckets.
const (
	GridSM GridSize = "sm" // up to 2 columns
	GridMD GridSize = "md" // up to 4 columns
	GridLG GridSize = "lg" // up to 6 columns
	GridXL GridSize = "xl" // more than 6 columns
)

// GridSizeFor returns the bucket for a column count.
func GridSizeFor(columnCount int) GridSize {
	switch {
	case columnCount <= 2:
		return GridSM
	case columnCount <= 4:
		return GridMD
	case columnCount <= 6:
		return GridLG
	default:
		return GridXL
	}
}

// SpanConfig is the column span requested for one item. Either Fixed is set,
// or BySize gives the span per grid size bucket. A zero SpanConfig means a
// span of 1.
type SpanConfig struct {
	Fixed  int              `json:"fixed,omitempty" toml:"fixed"`
	BySize map[GridSize]int `json:"by_size,omitempty" toml:"by_size"`
}

// Span returns a fixed SpanConfig.
func Span(n int) SpanConfig { return SpanConfig{Fixed: n} }

// Resolve returns the span for grid size gs. Missing or invalid values
// resolve to 1. The result is not clamped to a column count.
func (c SpanConfig) Resolve(gs GridSize) int {
	if n, ok := c.BySize[gs]; ok && n > 0 {
		return n
	}
	if c.Fixed > 0 {
		return c.Fixed
	}
	return 1
}

// ResponsiveSpan lets the second item of a feed take any span in [Min, Max]
// so that together with the first item it fills the first row exactly.
type ResponsiveSpan struct {
	Min int `json:"min" toml:"min"`
	Max int `json:"max" toml:"max"`
}

// fill returns the span for the second item when the first item spans
// firstSpan of columnCount columns.
func (r ResponsiveSpan) fill(firstSpan, columnCount int) int {
	lo, hi := r.Min, r.Max
	if lo < 1 {
		lo = 1
	}
	if hi < lo {
		hi = columnCount
	}
	return clampSpan(min(max(columnCount-firstSpan, lo), hi), columnCount)
}

// Tuning controls the multi-column placement search.
type Tuning struct {
	// BatchSize is how many following single-span items may be moved above
	// a multi-span item.
	BatchSize int
	// WhitespaceThreshold stops the search once a candidate introduces at
	// most this much whitespace.
	WhitespaceThreshold float64
	// IterationLimit caps the number of candidates evaluated (v2 only;
	// v1 evaluates BatchSize+1 candidates at most).
	IterationLimit int
}

// Default tuning values.
const (
	DefaultBatchSize      = 5
	DefaultIterationLimit = 5000
)

// DefaultTuning is used when no tuning function is configured.
func DefaultTuning(GridSize, int) Tuning {
	return Tuning{BatchSize: DefaultBatchSize, IterationLimit: DefaultIterationLimit}
}

func (t Tuning) withDefaults() Tuning {
	if t.BatchSize < 0 {
		t.BatchSize = 0
	}
	if t.IterationLimit <= 0 {
		t.IterationLimit = DefaultIterationLimit
	}
	return t
}

func clampSpan(span, columnCount int) int {
	if span < 1 {
		return 1
	}
	if columnCount > 0 && span > columnCount {
		return columnCount
	}
	return span
}
