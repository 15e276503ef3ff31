package feed

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"github.com/matzehuels/masonry/pkg/layout"
)

// demoNamespace scopes the ids of generated items.
var demoNamespace = uuid.MustParse("6f1c1c52-5c7a-4b1e-9d61-3f0e1d2a7b90")

var (
	adjectives = []string{
		"quiet", "amber", "northern", "salted", "hidden", "early", "copper",
		"wild", "paper", "velvet", "tidal", "lucky", "winter", "open",
	}
	nouns = []string{
		"harbor", "garden", "kitchen", "atlas", "studio", "orchard", "lantern",
		"market", "trail", "gallery", "workshop", "terrace", "library", "meadow",
	}
	words = strings.Fields(`light stone water linen bread morning wood glass
		path shelf rain clay field window salt thread basket river ink
		market coffee paint moss tile lamp cedar smoke wool honey`)
)

// Generate returns n deterministic demo items for seed.
func Generate(n int, seed int64) []*Item {
	return Page(seed, 0, n)
}

// Page returns n demo items starting at offset from. Pages of the same seed
// concatenate to the same sequence Generate would produce.
func Page(seed int64, from, n int) []*Item {
	items := make([]*Item, 0, max(n, 0))
	for i := from; i < from+n; i++ {
		items = append(items, demoItem(seed, i))
	}
	return items
}

func demoItem(seed int64, i int) *Item {
	rng := rand.New(rand.NewSource(seed*1_000_003 + int64(i)))

	it := &Item{
		ID:     uuid.NewSHA1(demoNamespace, []byte(fmt.Sprintf("%d/%d", seed, i))).String(),
		Title:  fmt.Sprintf("%s %s", adjectives[rng.Intn(len(adjectives))], nouns[rng.Intn(len(nouns))]),
		Height: float64(80 + 10*rng.Intn(25)),
	}

	count := 4 + rng.Intn(28)
	text := make([]string, count)
	for j := range text {
		text[j] = words[rng.Intn(len(words))]
	}
	it.Text = strings.Join(text, " ")

	switch {
	case i == 1:
		it.Responsive = &layout.ResponsiveSpan{Min: 1, Max: 2}
	case i > 0 && i%9 == 0:
		it.Span = Span{BySize: map[layout.GridSize]int{layout.GridMD: 2, layout.GridLG: 2, layout.GridXL: 3}}
	}
	return it
}
