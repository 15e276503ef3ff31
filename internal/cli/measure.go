package cli

import (
	"math"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/masonry/pkg/feed"
)

// Pixel metrics for estimating text height in the layout command.
const (
	charWidth  = 8.0
	lineHeight = 20.0
	cardChrome = 40.0
)

// cardPadding is the horizontal padding of a terminal card, per side.
const cardPadding = 1

// estimateHeight approximates the rendered height of an item without a
// declared height: a title line plus its text wrapped at width.
func estimateHeight(it *feed.Item, width float64) float64 {
	cols := max(int(width/charWidth), 1)
	return cardChrome + lineHeight*float64(wrappedLines(it.Text, cols))
}

// cardHeight is the height in terminal rows of an item rendered as a card
// width cells wide: border, title and wrapped text.
func cardHeight(it *feed.Item, width int) float64 {
	return float64(2 + 1 + wrappedLines(it.Text, contentWidth(width)))
}

// contentWidth is the text width inside a card of the given outer width.
func contentWidth(width int) int {
	return max(width-2-2*cardPadding, 1)
}

// wrappedLines counts the lines text occupies when wrapped at cols.
func wrappedLines(text string, cols int) int {
	if text == "" {
		return 0
	}
	return lipgloss.Height(lipgloss.NewStyle().Width(cols).Render(text))
}

// cells rounds a layout coordinate to a terminal cell.
func cells(v float64) int {
	return int(math.Round(v))
}
