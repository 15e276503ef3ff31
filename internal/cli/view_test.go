package cli

import (
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/masonry/pkg/feed"
	"github.com/matzehuels/masonry/pkg/grid"
	"github.com/matzehuels/masonry/pkg/layout"
)

func newTestView(t *testing.T, width, height int) viewModel {
	t.Helper()
	m, err := newViewModel(viewConfig{
		ColumnWidth: 32,
		Gutter:      1,
		MinCols:     1,
		GrowBy:      2,
		Items:       feed.Generate(24, 1),
		Source:      demoSource(1, 24, 48),
		Logger:      log.New(io.Discard),
	})
	if err != nil {
		t.Fatalf("newViewModel: %v", err)
	}
	t.Cleanup(m.close)
	return update(m, tea.WindowSizeMsg{Width: width, Height: height})
}

func update(m viewModel, msg tea.Msg) viewModel {
	next, _ := m.Update(msg)
	return next.(viewModel)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func positions(f grid.Frame[*feed.Item]) []layout.Position {
	out := make([]layout.Position, len(f.Items))
	for i, p := range f.Items {
		out[i] = p.Position
	}
	return out
}

func TestViewLayout(t *testing.T) {
	m := newTestView(t, 100, 12)

	if m.frame.State != grid.Stable {
		t.Fatalf("state = %s, want stable", m.frame.State)
	}
	if len(m.frame.Items) != 24 {
		t.Fatalf("placed %d items, want 24", len(m.frame.Items))
	}
	if m.frame.Geometry.Count != 3 {
		t.Errorf("columns = %d, want 3", m.frame.Geometry.Count)
	}
	if len(m.frame.Visible) == 0 || len(m.frame.Visible) > len(m.frame.Items) {
		t.Errorf("visible = %d of %d", len(m.frame.Visible), len(m.frame.Items))
	}
	for _, p := range m.frame.Items {
		if want := cardHeight(p.Item, cells(p.Position.Width)); p.Position.Height != want {
			t.Errorf("item %d height = %v, want wrapped text height %v", p.Index, p.Position.Height, want)
		}
	}

	first := m.frame.Items[0].Item
	if view := m.View(); !strings.Contains(view, truncate(first.Title, contentWidth(32))) {
		t.Errorf("view does not show the first card:\n%s", view)
	}
}

func TestViewBeforeSize(t *testing.T) {
	m, err := newViewModel(viewConfig{ColumnWidth: 32, Gutter: 1, MinCols: 1, Items: feed.Generate(3, 1), Logger: log.New(io.Discard)})
	if err != nil {
		t.Fatal(err)
	}
	defer m.close()

	if !strings.Contains(m.View(), "waiting") {
		t.Errorf("unsized view = %q", m.View())
	}
	if m.grid.State() != grid.AwaitingWidth {
		t.Errorf("state = %s, want awaiting-width", m.grid.State())
	}
}

func TestViewScroll(t *testing.T) {
	m := newTestView(t, 100, 12)
	if m.maxTop() == 0 {
		t.Fatal("content should be taller than the screen")
	}

	m = update(m, key("j"))
	if m.top != 1 {
		t.Errorf("top after j = %d, want 1", m.top)
	}
	m = update(m, key("G"))
	if m.top != m.maxTop() {
		t.Errorf("top after G = %d, want %d", m.top, m.maxTop())
	}
	m = update(m, key("j"))
	if m.top != m.maxTop() {
		t.Errorf("scrolling past the end moved to %d", m.top)
	}
	m = update(m, key("g"))
	if m.top != 0 {
		t.Errorf("top after g = %d, want 0", m.top)
	}
}

func TestViewGrow(t *testing.T) {
	m := newTestView(t, 100, 12)
	before := m.frame.Items[0].Position.Height

	m = update(m, key("e"))
	if got := m.frame.Items[0].Position.Height; got != before+2 {
		t.Fatalf("height after grow = %v, want %v", got, before+2)
	}

	m = update(m, key("s"))
	if got := m.frame.Items[0].Position.Height; got != before {
		t.Errorf("height after shrink = %v, want %v", got, before)
	}
	m = update(m, key("s"))
	if got := m.frame.Items[0].Position.Height; got != before {
		t.Errorf("shrinking below the measured height changed it to %v", got)
	}
}

func TestViewGrowPushesColumn(t *testing.T) {
	m := newTestView(t, 100, 12)
	item0 := m.frame.Items[0]

	// The next item in the first item's column.
	var below *grid.Placed[*feed.Item]
	for i := range m.frame.Items[1:] {
		p := &m.frame.Items[i+1]
		if p.Position.Left == item0.Position.Left && p.Position.Top > item0.Position.Top {
			below = p
			break
		}
	}
	if below == nil {
		t.Skip("no item below the first one")
	}
	top := below.Position.Top

	m = update(m, key("e"))
	for _, p := range m.frame.Items {
		if p.ID == below.ID && p.Position.Top != top+2 {
			t.Errorf("follower top = %v, want %v", p.Position.Top, top+2)
		}
	}
}

func TestViewFocus(t *testing.T) {
	m := newTestView(t, 100, 12)
	m = update(m, key("tab"))
	if m.focus != 1 {
		t.Errorf("focus = %d, want 1", m.focus)
	}
	m = update(m, key("p"))
	m = update(m, key("p"))
	if m.focus != len(m.frame.Items)-1 {
		t.Errorf("focus should wrap to the last item, got %d", m.focus)
	}
	pos := m.frame.Items[m.focus].Position
	if cells(pos.Bottom()) > m.top+m.viewHeight() {
		t.Errorf("focused item at %v not scrolled into view (top %d)", pos, m.top)
	}
}

func TestViewReflow(t *testing.T) {
	m := newTestView(t, 100, 12)
	before := positions(m.frame)

	m = update(m, key("r"))
	if m.frame.State != grid.Stable {
		t.Fatalf("state after reflow = %s", m.frame.State)
	}
	after := positions(m.frame)
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("item %d moved on reflow: %v -> %v", i, before[i], after[i])
		}
	}
}

func TestViewLoadMore(t *testing.T) {
	m := newTestView(t, 100, 40)

	var from int
	select {
	case from = <-m.fetches:
	case <-time.After(time.Second):
		t.Fatal("near the bottom, the grid should ask for more items")
	}
	if from != 24 {
		t.Errorf("from = %d, want 24", from)
	}

	m = update(m, loadMoreMsg{from: from})
	if len(m.items) != 48 || len(m.frame.Items) != 48 {
		t.Fatalf("items = %d, placed = %d, want 48", len(m.items), len(m.frame.Items))
	}

	m = update(m, loadMoreMsg{from: 48})
	if !m.exhausted || len(m.items) != 48 {
		t.Errorf("exhausted = %v with %d items, want the source to be done at 48", m.exhausted, len(m.items))
	}
}

func TestViewResizeDebounced(t *testing.T) {
	m := newTestView(t, 100, 12)
	m = update(m, tea.WindowSizeMsg{Width: 60, Height: 12})

	if w, _ := m.grid.Width(); w != 100 {
		t.Errorf("width = %v right after resize, want the old width until the delay passes", w)
	}
	if m.width != 60 {
		t.Errorf("model width = %d, want 60", m.width)
	}
}

func TestViewQuit(t *testing.T) {
	m := newTestView(t, 100, 12)
	next, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
	if f := next.(viewModel).grid.Layout(); len(f.Items) != 0 {
		t.Error("grid should be closed after quit")
	}
}

func TestDemoSource(t *testing.T) {
	src := demoSource(1, 24, 30)
	if got := len(src(24)); got != 6 {
		t.Errorf("page at 24 = %d items, want 6", got)
	}
	if got := src(30); got != nil {
		t.Errorf("page at limit = %v, want nil", got)
	}
	if a, b := src(0)[5], feed.Generate(6, 1)[5]; a.ID != b.ID {
		t.Error("pages should continue the generated sequence")
	}
}

func TestScreenState(t *testing.T) {
	var s screen
	if _, ok := s.state(); ok {
		t.Error("a screen without height is not a scroll container")
	}
	s.set(5, 20)
	st, ok := s.state()
	if !ok || st.ScrollTop != 5 || st.ContainerHeight != 20 {
		t.Errorf("state = %+v, %v", st, ok)
	}
}
