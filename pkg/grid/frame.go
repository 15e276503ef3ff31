package grid

import (
	"github.com/matzehuels/masonry/pkg/columns"
	"github.com/matzehuels/masonry/pkg/layout"
)

// State is the controller's lifecycle state.
type State int

const (
	// AwaitingWidth means no container width is known yet.
	AwaitingWidth State = iota
	// Measuring means some items still need a height from the host.
	Measuring
	// Stable means every item is measured and positioned.
	Stable
)

func (s State) String() string {
	switch s {
	case AwaitingWidth:
		return "awaiting-width"
	case Measuring:
		return "measuring"
	case Stable:
		return "stable"
	default:
		return "unknown"
	}
}

// ItemID is the stable identifier the grid assigns to each item. Hosts use it
// to key rendered elements and resize notifications.
type ItemID int

// Placed is a positioned item.
type Placed[T comparable] struct {
	ID       ItemID          `json:"id"`
	Item     T               `json:"item"`
	Index    int             `json:"index"`
	Position layout.Position `json:"position"`
}

// Probe is an item the host should render off-screen at Width and measure.
type Probe[T comparable] struct {
	ID    ItemID  `json:"id"`
	Item  T       `json:"item"`
	Index int     `json:"index"`
	Width float64 `json:"width"`
}

// Frame is what the host renders after a layout pass.
type Frame[T comparable] struct {
	State    State            `json:"state"`
	Geometry columns.Geometry `json:"geometry"`

	// Items holds every positioned item in logical order.
	Items []Placed[T] `json:"items"`
	// Visible is the subset of Items to render. It equals Items unless
	// virtualization is on and a scroll container is known.
	Visible []Placed[T] `json:"visible"`
	// Measure is the next batch of items to measure off-screen.
	Measure []Probe[T] `json:"measure,omitempty"`
	// Prerender lists items to render in normal flow while the width is
	// unknown. It is only filled in server-rendered flexible mode.
	Prerender []Probe[T] `json:"prerender,omitempty"`

	// Height is the container height. It never shrinks for the life of the
	// grid, across width changes and reflows included.
	Height float64 `json:"height"`
	// FetchPending is set while a LoadMore request is outstanding.
	FetchPending bool `json:"fetch_pending"`
}
