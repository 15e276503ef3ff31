package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/masonry/pkg/errors"
	"github.com/matzehuels/masonry/pkg/feed"
	"github.com/matzehuels/masonry/pkg/grid"
)

// layoutFlags are the command-line overrides of the grid config.
type layoutFlags struct {
	width       float64
	columnWidth float64
	gutter      float64
	minCols     int
	mode        string
	v2          bool
	format      string
	count       int
	seed        int64
}

// apply copies every flag the user set onto cfg.
func (f *layoutFlags) apply(flags *pflag.FlagSet, cfg *feed.GridConfig) {
	if flags.Changed("column-width") {
		cfg.ColumnWidth = f.columnWidth
	}
	if flags.Changed("gutter") {
		g := f.gutter
		cfg.Gutter = &g
	}
	if flags.Changed("min-cols") {
		cfg.MinCols = f.minCols
	}
	if flags.Changed("layout") {
		cfg.Layout = f.mode
	}
	if flags.Changed("v2") {
		cfg.MultiColumnV2 = f.v2
		cfg.DynamicHeightsV2 = f.v2
	}
}

// layoutCommand creates the layout command for computing a static layout.
func (c *CLI) layoutCommand() *cobra.Command {
	f := layoutFlags{width: 1024, format: "table", count: defaultDemoItems, seed: 1}

	cmd := &cobra.Command{
		Use:   "layout [feed.json|feed.toml]",
		Short: "Compute item positions for a container width",
		Long: `Compute item positions for a container width.

The layout command reads a feed file, measures every item by its declared
height, and runs the grid until it is stable. Positions are printed as a table
or as JSON. Without a feed, generated demo items are laid out.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return c.runLayout(cmd.Context(), cmd.OutOrStdout(), cmd.Flags(), path, f)
		},
	}

	cmd.Flags().Float64VarP(&f.width, "width", "w", f.width, "container width")
	cmd.Flags().Float64Var(&f.columnWidth, "column-width", grid.DefaultColumnWidth, "nominal column width")
	cmd.Flags().Float64Var(&f.gutter, "gutter", grid.DefaultGutter, "spacing between items")
	cmd.Flags().IntVar(&f.minCols, "min-cols", grid.DefaultMinCols, "minimum column count")
	cmd.Flags().StringVarP(&f.mode, "layout", "l", "basic", "layout mode: basic, basic-centered, flexible, server-rendered-flexible, uniform-row")
	cmd.Flags().BoolVar(&f.v2, "v2", false, "use the v2 multi-column search and height reconciler")
	cmd.Flags().StringVarP(&f.format, "format", "f", f.format, "output format: table, json")
	cmd.Flags().IntVarP(&f.count, "count", "n", f.count, "number of demo items without a feed")
	cmd.Flags().Int64Var(&f.seed, "seed", f.seed, "demo item seed")

	return cmd
}

// layoutResult is the JSON output of the layout command.
type layoutResult struct {
	Width       float64      `json:"width"`
	Columns     int          `json:"columns"`
	ColumnWidth float64      `json:"column_width"`
	Offset      float64      `json:"offset"`
	Height      float64      `json:"height"`
	Items       []placedItem `json:"items"`
}

type placedItem struct {
	Index  int     `json:"index"`
	ID     string  `json:"id"`
	Title  string  `json:"title,omitempty"`
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// runLayout loads the items, settles a grid and writes the positions.
func (c *CLI) runLayout(ctx context.Context, w io.Writer, flags *pflag.FlagSet, path string, f layoutFlags) error {
	logger := loggerFromContext(ctx)

	if f.format != "table" && f.format != "json" {
		return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want table or json)", f.format)
	}
	if err := errors.ValidatePositive("width", f.width); err != nil {
		return err
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	f.apply(flags, &cfg.Grid)

	items, err := loadItems(path, f.count, f.seed)
	if err != nil {
		return err
	}

	opts, err := cfg.Grid.Options()
	if err != nil {
		return err
	}
	opts.Logger = logger
	opts.Virtualize = false

	g, err := grid.New(opts)
	if err != nil {
		return err
	}
	defer g.Close()

	prog := newProgress(logger)
	g.SetItems(items)
	g.SetWidth(f.width)
	frame := g.Settle(declaredHeight)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if frame.State != grid.Stable {
		return errors.New(errors.ErrCodeInternal, "layout did not settle (state %s)", frame.State)
	}
	prog.done(fmt.Sprintf("Placed %d items", len(frame.Items)))

	res := newLayoutResult(f.width, frame)
	if f.format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	if path == "" {
		printInfo(w, "No feed given, laid out %d demo items (seed %d)", len(items), f.seed)
	}
	if n := undeclared(items); n > 0 {
		printWarning(w, "%d items have no height, estimated from their text", n)
	}
	fmt.Fprintln(w, positionTable(res))
	printKeyValue(w, "columns", strconv.Itoa(res.Columns))
	printKeyValue(w, "column width", formatPx(res.ColumnWidth))
	printKeyValue(w, "offset", formatPx(res.Offset))
	printSuccess(w, "Layout complete")
	printStats(w, len(res.Items), res.Columns, res.Height)
	if path == "" {
		printNextStep(w, "Browse interactively", appName+" view")
	}
	return nil
}

// declaredHeight measures an item by its declared height, falling back to a
// text estimate for items without one.
func declaredHeight(it *feed.Item, width float64) float64 {
	if it.Height > 0 {
		return it.Height
	}
	return estimateHeight(it, width)
}

func undeclared(items []*feed.Item) int {
	n := 0
	for _, it := range items {
		if it.Height <= 0 {
			n++
		}
	}
	return n
}

func newLayoutResult(width float64, frame grid.Frame[*feed.Item]) layoutResult {
	res := layoutResult{
		Width:       width,
		Columns:     frame.Geometry.Count,
		ColumnWidth: frame.Geometry.ColumnWidth,
		Offset:      frame.Geometry.Offset,
		Height:      frame.Height,
		Items:       make([]placedItem, 0, len(frame.Items)),
	}
	for _, p := range frame.Items {
		res.Items = append(res.Items, placedItem{
			Index:  p.Index,
			ID:     p.Item.ID,
			Title:  p.Item.Title,
			Top:    p.Position.Top,
			Left:   p.Position.Left,
			Width:  p.Position.Width,
			Height: p.Position.Height,
		})
	}
	return res
}

// positionTable renders the placed items as a styled table.
func positionTable(res layoutResult) string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	numberStyle := cellStyle.Foreground(colorWhite).Align(lipgloss.Right)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "TITLE", "TOP", "LEFT", "WIDTH", "HEIGHT").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 1:
				return cellStyle.Foreground(colorGray)
			default:
				return numberStyle
			}
		})

	for _, it := range res.Items {
		t.Row(
			strconv.Itoa(it.Index),
			truncate(it.Title, 28),
			formatPx(it.Top),
			formatPx(it.Left),
			formatPx(it.Width),
			formatPx(it.Height),
		)
	}
	return t.String()
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
