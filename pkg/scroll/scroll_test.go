package scroll

import (
	"testing"
	"time"

	"github.com/matzehuels/masonry/pkg/ratelimit"
)

type stepScheduler struct {
	pending []func()
}

type stepTimer struct{ stopped *bool }

func (t stepTimer) Stop() bool {
	was := !*t.stopped
	*t.stopped = true
	return was
}

func (s *stepScheduler) AfterFunc(_ time.Duration, f func()) ratelimit.Timer {
	stopped := new(bool)
	s.pending = append(s.pending, func() {
		if !*stopped {
			*stopped = true
			f()
		}
	})
	return stepTimer{stopped}
}

// fire runs every timer scheduled so far.
func (s *stepScheduler) fire() {
	run := s.pending
	s.pending = nil
	for _, f := range run {
		f()
	}
}

func TestNearBottom(t *testing.T) {
	c := NewCoordinator(0, 0, nil)
	if c.NearBottom(100) {
		t.Error("NearBottom with unknown state")
	}

	tests := []struct {
		name    string
		state   State
		content float64
		want    bool
	}{
		{"short content", State{ContainerHeight: 500}, 1000, true},
		{"far from bottom", State{ContainerHeight: 500}, 5000, false},
		{"just inside", State{ScrollTop: 1001, ContainerHeight: 500}, 3000, true},
		{"exactly at threshold", State{ScrollTop: 1000, ContainerHeight: 500}, 3000, false},
		{"offset pushes content down", State{ScrollTop: 1001, ContainerHeight: 500, ContainerOffset: 400}, 3000, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c.Set(tt.state)
			if got := c.NearBottom(tt.content); got != tt.want {
				t.Errorf("NearBottom(%v) = %v, want %v", tt.content, got, tt.want)
			}
		})
	}
}

func TestFetchFlag(t *testing.T) {
	c := NewCoordinator(0, 0, nil)

	if !c.Request(20) {
		t.Fatal("first Request refused")
	}
	if c.Request(20) || c.Request(40) {
		t.Error("Request accepted while a fetch is in flight")
	}
	if !c.Fetching() {
		t.Error("Fetching() = false")
	}
	if c.Observe(19) {
		t.Error("released by a shorter sequence")
	}
	if !c.Observe(20) {
		t.Error("not released by a sequence reaching the offset")
	}
	if c.Fetching() || c.Observe(40) {
		t.Error("flag still held")
	}
	if !c.Request(40) {
		t.Error("Request refused after release")
	}
}

func TestUpdateThrottled(t *testing.T) {
	s := &stepScheduler{}
	c := NewCoordinator(0, 50*time.Millisecond, s)
	applied := 0
	then := func() { applied++ }

	c.Update(State{ScrollTop: 1}, then)
	c.Update(State{ScrollTop: 2}, then)
	c.Update(State{ScrollTop: 3}, then)
	if st, _ := c.State(); st.ScrollTop != 1 || applied != 1 {
		t.Fatalf("after burst: top=%v applied=%d", st.ScrollTop, applied)
	}

	s.fire()
	if st, _ := c.State(); st.ScrollTop != 3 || applied != 2 {
		t.Errorf("after interval: top=%v applied=%d, want 3/2", st.ScrollTop, applied)
	}

	c.Update(State{ScrollTop: 4}, then)
	c.Close()
	s.fire()
	if st, _ := c.State(); st.ScrollTop != 3 {
		t.Errorf("update applied after Close: %v", st.ScrollTop)
	}
}

func TestViewport(t *testing.T) {
	v := State{ScrollTop: 1, ContainerHeight: 2, ContainerOffset: 3}.Viewport()
	if v.ScrollTop != 1 || v.ContainerHeight != 2 || v.ContainerOffset != 3 {
		t.Errorf("Viewport() = %+v", v)
	}
}
