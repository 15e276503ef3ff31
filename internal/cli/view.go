package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/masonry/pkg/feed"
	"github.com/matzehuels/masonry/pkg/grid"
	"github.com/matzehuels/masonry/pkg/resize"
	"github.com/matzehuels/masonry/pkg/scroll"
)

// Card styles
var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, cardPadding)
	focusedCardStyle = cardStyle.BorderForeground(colorCyan)
	cardTitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	cardTextStyle    = lipgloss.NewStyle().Foreground(colorGray)
)

// viewFlags are the options of the view command. Sizes are terminal cells.
type viewFlags struct {
	columnWidth float64
	gutter      float64
	minCols     int
	page        int
	maxItems    int
	seed        int64
	growBy      int
}

// viewCommand creates the interactive terminal viewer.
func (c *CLI) viewCommand() *cobra.Command {
	f := viewFlags{columnWidth: 32, gutter: 1, minCols: 1, page: defaultDemoItems, maxItems: 500, seed: 1, growBy: 2}

	cmd := &cobra.Command{
		Use:   "view [feed.json|feed.toml]",
		Short: "Browse a feed as a masonry grid in the terminal",
		Long: `Browse a feed as a masonry grid in the terminal.

Items are rendered as cards whose height is their wrapped text. Only cards near
the viewport are drawn. Without a feed, demo items are generated page by page
as you scroll towards the bottom.

Keys: j/k scroll, space/b page, g/G top/bottom, tab focus next, e grow the
focused card, s shrink it, r reflow, q quit.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return c.runView(cmd.Context(), path, f)
		},
	}

	cmd.Flags().Float64Var(&f.columnWidth, "column-width", f.columnWidth, "column width in cells")
	cmd.Flags().Float64Var(&f.gutter, "gutter", f.gutter, "spacing between cards in cells")
	cmd.Flags().IntVar(&f.minCols, "min-cols", f.minCols, "minimum column count")
	cmd.Flags().IntVar(&f.page, "page", f.page, "demo items per page")
	cmd.Flags().IntVar(&f.maxItems, "max", f.maxItems, "stop loading demo items after this many")
	cmd.Flags().Int64Var(&f.seed, "seed", f.seed, "demo item seed")
	cmd.Flags().IntVar(&f.growBy, "grow", f.growBy, "rows added or removed by e and s")

	return cmd
}

func (c *CLI) runView(ctx context.Context, path string, f viewFlags) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	items, err := loadItems(path, f.page, f.seed)
	if err != nil {
		return err
	}

	var source pageSource
	if path == "" {
		source = demoSource(f.seed, f.page, f.maxItems)
	}

	// Log lines would tear the alternate screen.
	logger := log.New(io.Discard)

	m, err := newViewModel(viewConfig{
		Grid:        cfg.Grid,
		ColumnWidth: f.columnWidth,
		Gutter:      f.gutter,
		MinCols:     f.minCols,
		GrowBy:      f.growBy,
		Items:       items,
		Source:      source,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	defer m.close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("run viewer: %w", err)
	}
	loggerFromContext(ctx).Debug("viewer closed", "items", len(items))
	return nil
}

// pageSource returns the items that follow offset from, or none when the
// source is exhausted.
type pageSource func(from int) []*feed.Item

// demoSource pages through generated items until limit.
func demoSource(seed int64, page, limit int) pageSource {
	return func(from int) []*feed.Item {
		n := min(page, limit-from)
		if n <= 0 {
			return nil
		}
		return feed.Page(seed, from, n)
	}
}

// =============================================================================
// Messages
// =============================================================================

// changedMsg asks the viewer to lay out and redraw.
type changedMsg struct{}

// loadMoreMsg asks the viewer for items from offset from.
type loadMoreMsg struct{ from int }

// =============================================================================
// Screen
// =============================================================================

// screen is the terminal viewport as the grid sees it. The grid may read it
// from timer goroutines.
type screen struct {
	mu     sync.Mutex
	top    float64
	height float64
}

func (s *screen) set(top, height float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.top, s.height = top, height
}

func (s *screen) state() (scroll.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.height <= 0 {
		return scroll.State{}, false
	}
	return scroll.State{ScrollTop: s.top, ContainerHeight: s.height}, true
}

// =============================================================================
// viewModel
// =============================================================================

type viewConfig struct {
	Grid        feed.GridConfig
	ColumnWidth float64
	Gutter      float64
	MinCols     int
	GrowBy      int
	Items       []*feed.Item
	Source      pageSource
	Logger      *log.Logger
}

// viewModel is the bubbletea model of the masonry viewer.
type viewModel struct {
	grid    *grid.Grid[*feed.Item]
	screen  *screen
	changes chan struct{}
	fetches chan int
	done    chan struct{}
	source  pageSource
	grown   map[*feed.Item]int
	growBy  int

	items     []*feed.Item
	frame     grid.Frame[*feed.Item]
	focus     int
	top       int
	width     int
	height    int
	sized     bool
	exhausted bool
}

func newViewModel(cfg viewConfig) (viewModel, error) {
	m := viewModel{
		screen:  &screen{},
		changes: make(chan struct{}, 1),
		fetches: make(chan int, 1),
		done:    make(chan struct{}),
		source:  cfg.Source,
		grown:   make(map[*feed.Item]int),
		growBy:  max(cfg.GrowBy, 1),
		items:   slices.Clone(cfg.Items),
	}

	gc := cfg.Grid
	gc.ColumnWidth = cfg.ColumnWidth
	gc.Gutter = &cfg.Gutter
	gc.MinCols = cfg.MinCols
	gc.Virtualize = true
	opts, err := gc.Options()
	if err != nil {
		return viewModel{}, err
	}
	opts.Logger = cfg.Logger
	opts.ScrollContainer = m.screen.state

	// At most one fetch is in flight, so fetches never blocks. Change
	// notifications coalesce.
	changes, fetches := m.changes, m.fetches
	opts.OnChange = func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	}
	opts.LoadMore = func(from int) {
		select {
		case fetches <- from:
		default:
		}
	}

	g, err := grid.New(opts)
	if err != nil {
		return viewModel{}, err
	}
	g.SetItems(m.items)
	m.grid = g
	return m, nil
}

func (m viewModel) Init() tea.Cmd {
	return m.wait()
}

// wait delivers the next grid notification as a message.
func (m viewModel) wait() tea.Cmd {
	changes, fetches, done := m.changes, m.fetches, m.done
	return func() tea.Msg {
		select {
		case <-changes:
			return changedMsg{}
		case from := <-fetches:
			return loadMoreMsg{from: from}
		case <-done:
			return nil
		}
	}
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.screen.set(float64(m.top), float64(m.viewHeight()))
		if !m.sized {
			m.sized = true
			m.grid.SetWidth(float64(msg.Width))
		} else {
			m.grid.Resize(float64(msg.Width))
		}
		m.grid.ScrollNow(m.scrollState())
		m.refresh()
	case tea.KeyMsg:
		return m.handleKey(msg)
	case changedMsg:
		m.refresh()
		return m, m.wait()
	case loadMoreMsg:
		m.loadMore(msg.from)
		m.refresh()
		return m, m.wait()
	}
	return m, nil
}

func (m viewModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.close()
		return m, tea.Quit
	case "down", "j":
		m.scrollTo(m.top + 1)
	case "up", "k":
		m.scrollTo(m.top - 1)
	case "pgdown", " ", "f":
		m.scrollTo(m.top + m.viewHeight())
	case "pgup", "b":
		m.scrollTo(m.top - m.viewHeight())
	case "home", "g":
		m.scrollTo(0)
	case "end", "G":
		m.scrollTo(m.maxTop())
	case "tab", "n":
		m.moveFocus(1)
	case "shift+tab", "p":
		m.moveFocus(-1)
	case "e":
		m.grow(m.growBy)
	case "s":
		m.grow(-m.growBy)
	case "r":
		m.grid.Reflow()
		m.refresh()
	}
	return m, nil
}

// refresh lays the grid out, measuring whatever it asks for.
func (m *viewModel) refresh() {
	m.frame = m.grid.Settle(m.measure)
	m.focus = min(m.focus, max(len(m.frame.Items)-1, 0))
	m.top = min(max(m.top, 0), m.maxTop())
}

func (m *viewModel) measure(it *feed.Item, width float64) float64 {
	return cardHeight(it, cells(width)) + float64(m.grown[it])
}

func (m *viewModel) loadMore(from int) {
	if m.source == nil || m.exhausted {
		return
	}
	more := m.source(from)
	if len(more) == 0 {
		m.exhausted = true
		return
	}
	items := make([]*feed.Item, 0, from+len(more))
	items = append(items, m.items[:min(from, len(m.items))]...)
	m.items = append(items, more...)
	m.grid.SetItems(m.items)
}

func (m *viewModel) scrollTo(top int) {
	top = min(max(top, 0), m.maxTop())
	if top == m.top {
		return
	}
	m.top = top
	m.screen.set(float64(top), float64(m.viewHeight()))
	m.grid.Scroll(m.scrollState())
	m.refresh()
}

func (m *viewModel) moveFocus(delta int) {
	n := len(m.frame.Items)
	if n == 0 {
		return
	}
	m.focus = (m.focus + delta + n) % n
	pos := m.frame.Items[m.focus].Position
	switch {
	case cells(pos.Top) < m.top:
		m.scrollTo(cells(pos.Top))
	case cells(pos.Bottom()) > m.top+m.viewHeight():
		m.scrollTo(cells(pos.Bottom()) - m.viewHeight())
	}
}

// grow changes the focused card's height the way a host reports an element
// that resized after rendering.
func (m *viewModel) grow(delta int) {
	if len(m.frame.Items) == 0 {
		return
	}
	p := m.frame.Items[m.focus]
	if m.grown[p.Item]+delta < 0 {
		return
	}
	m.grown[p.Item] += delta
	m.grid.HandleResize([]resize.Entry{{ID: int(p.ID), Height: p.Position.Height + float64(delta)}})
	m.refresh()
}

func (m *viewModel) close() {
	select {
	case <-m.done:
	default:
		close(m.done)
	}
	m.grid.Close()
}

func (m viewModel) scrollState() scroll.State {
	return scroll.State{ScrollTop: float64(m.top), ContainerHeight: float64(m.viewHeight())}
}

// viewHeight is the number of rows available for cards.
func (m viewModel) viewHeight() int {
	return max(m.height-1, 1)
}

func (m viewModel) maxTop() int {
	return max(cells(m.frame.Height)-m.viewHeight(), 0)
}

// =============================================================================
// Rendering
// =============================================================================

// segment is one card's slice of a screen row.
type segment struct {
	left  int
	width int
	text  string
}

func (m viewModel) View() string {
	if !m.sized {
		return StyleDim.Render("waiting for terminal size…")
	}

	h := m.viewHeight()
	rows := make([][]segment, h)
	var focused grid.ItemID
	if len(m.frame.Items) > 0 {
		focused = m.frame.Items[m.focus].ID
	}

	for _, p := range m.frame.Visible {
		top := cells(p.Position.Top) - m.top
		height := cells(p.Position.Height)
		if top+height <= 0 || top >= h {
			continue
		}
		left, width := cells(p.Position.Left), cells(p.Position.Width)
		card := renderCard(p.Item, width, height, p.ID == focused)
		for j, line := range strings.Split(card, "\n") {
			if r := top + j; r >= 0 && r < h {
				rows[r] = append(rows[r], segment{left: left, width: width, text: line})
			}
		}
	}

	var b strings.Builder
	for _, segs := range rows {
		slices.SortFunc(segs, func(x, y segment) int { return x.left - y.left })
		cursor := 0
		for _, s := range segs {
			if s.left < cursor {
				continue
			}
			b.WriteString(strings.Repeat(" ", s.left-cursor))
			b.WriteString(s.text)
			cursor = s.left + s.width
		}
		b.WriteByte('\n')
	}
	b.WriteString(m.statusLine())
	return b.String()
}

func renderCard(it *feed.Item, width, height int, focused bool) string {
	style := cardStyle
	if focused {
		style = focusedCardStyle
	}
	body := cardTitleStyle.Render(truncate(it.Title, contentWidth(width)))
	if it.Text != "" {
		body += "\n" + cardTextStyle.Render(it.Text)
	}
	return style.
		Width(max(width-2, 1)).
		Height(max(height-2, 1)).
		MaxHeight(height).
		Render(body)
}

func (m viewModel) statusLine() string {
	more := ""
	switch {
	case m.frame.FetchPending && !m.exhausted && m.source != nil:
		more = " · loading"
	case m.exhausted:
		more = " · end"
	}
	status := fmt.Sprintf(" %d/%d items · %d cols · %s · row %d/%d%s",
		len(m.frame.Items), len(m.items), m.frame.Geometry.Count, m.frame.State, m.top, m.maxTop(), more)
	help := "  j/k scroll · tab focus · e/s grow/shrink · r reflow · q quit"
	return lipgloss.NewStyle().MaxWidth(max(m.width, 1)).Render(StyleNumber.Render(status) + StyleDim.Render(help))
}
