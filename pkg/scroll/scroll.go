// Package scroll tracks scroll container geometry and decides when to load
// more items.
//
// A Coordinator holds the last known scroll state, throttles incoming scroll
// events, and owns the fetch-in-flight flag. A fetch is requested at most once
// until the host delivers an item sequence at least as long as the offset the
// fetch was requested from. Failed or abandoned fetches are not retried; the
// next scroll event or item update that finds the user near the bottom asks
// again only after the flag is released.
package scroll

import (
	"sync"
	"time"

	"github.com/matzehuels/masonry/pkg/ratelimit"
	"github.com/matzehuels/masonry/pkg/virtual"
)

// Defaults.
const (
	// DefaultFetchMultiplier requests more items once less than three
	// container heights of content remain below the viewport.
	DefaultFetchMultiplier = 3.0
	// DefaultInterval is the scroll throttle interval.
	DefaultInterval = 100 * time.Millisecond
)

// State is the scroll container geometry.
type State struct {
	ScrollTop       float64 `json:"scroll_top"`
	ContainerHeight float64 `json:"container_height"`
	ContainerOffset float64 `json:"container_offset"`
}

// Viewport converts the state for the virtualizer.
func (s State) Viewport() virtual.Viewport {
	return virtual.Viewport{
		ScrollTop:       s.ScrollTop,
		ContainerHeight: s.ContainerHeight,
		ContainerOffset: s.ContainerOffset,
	}
}

// Coordinator tracks scroll state and the fetch flag. It is safe for
// concurrent use.
type Coordinator struct {
	multiplier float64
	throttle   *ratelimit.Throttler

	mu       sync.Mutex
	state    State
	known    bool
	fetching bool
	from     int
}

// NewCoordinator creates a coordinator. Zero values select the defaults; a
// nil scheduler uses real timers.
func NewCoordinator(multiplier float64, interval time.Duration, s ratelimit.Scheduler) *Coordinator {
	if multiplier <= 0 {
		multiplier = DefaultFetchMultiplier
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Coordinator{
		multiplier: multiplier,
		throttle:   ratelimit.NewThrottler(interval, s),
	}
}

// Update records s through the throttle and runs then after each applied
// update. Bursts apply the first and the last state.
func (c *Coordinator) Update(s State, then func()) {
	c.throttle.Call(func() {
		c.Set(s)
		if then != nil {
			then()
		}
	})
}

// Set records s immediately.
func (c *Coordinator) Set(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
	c.known = true
}

// State returns the last recorded state and whether one was recorded.
func (c *Coordinator) State() (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.known
}

// NearBottom reports whether the viewport is close enough to the bottom of a
// grid contentHeight tall to warrant loading more.
func (c *Coordinator) NearBottom(contentHeight float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.known {
		return false
	}
	contentBottom := c.state.ContainerOffset + contentHeight
	viewportBottom := c.state.ScrollTop + c.state.ContainerHeight
	return contentBottom-viewportBottom < c.multiplier*c.state.ContainerHeight
}

// Fetching reports whether a fetch is in flight.
func (c *Coordinator) Fetching() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetching
}

// Request marks a fetch from offset from as in flight. It returns false when
// a fetch is already in flight.
func (c *Coordinator) Request(from int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fetching {
		return false
	}
	c.fetching = true
	c.from = from
	return true
}

// Observe releases the fetch flag once an item sequence of length n >= the
// requested offset arrives. It reports whether the flag was released.
func (c *Coordinator) Observe(n int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.fetching || n < c.from {
		return false
	}
	c.fetching = false
	return true
}

// Close cancels any throttled update.
func (c *Coordinator) Close() {
	c.throttle.Cancel()
}
