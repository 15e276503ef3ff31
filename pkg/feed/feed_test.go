package feed

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/masonry/pkg/columns"
	"github.com/matzehuels/masonry/pkg/errors"
	"github.com/matzehuels/masonry/pkg/layout"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"object", `{"items": [{"id": "a", "title": "One", "height": 120}, {"title": "Two", "span": 2}]}`},
		{"array", `[{"id": "a", "title": "One", "height": 120}, {"title": "Two", "span": 2}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Load(writeFile(t, "feed.json", tt.content))
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if len(f.Items) != 2 {
				t.Fatalf("items = %d, want 2", len(f.Items))
			}
			if f.Items[0].ID != "a" || f.Items[0].Height != 120 {
				t.Errorf("item 0 = %+v", f.Items[0])
			}
			if f.Items[1].ID == "" {
				t.Error("missing id not generated")
			}
			if got := SpanFunc(f.Items[1]).Resolve(layout.GridMD); got != 2 {
				t.Errorf("span = %d, want 2", got)
			}
		})
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "feed.toml", `
[[items]]
title = "Harbor"
height = 240
span = 2

[[items]]
title = "Tart"
span = { md = 1, lg = 2 }
responsive = { min = 1, max = 3 }
`)
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(f.Items) != 2 {
		t.Fatalf("items = %d", len(f.Items))
	}
	if got := SpanFunc(f.Items[0]).Resolve(layout.GridXL); got != 2 {
		t.Errorf("fixed span = %d", got)
	}
	if got := SpanFunc(f.Items[1]).Resolve(layout.GridLG); got != 2 {
		t.Errorf("lg span = %d", got)
	}
	r, ok := ResponsiveFunc(f.Items[1])
	if !ok || r.Min != 1 || r.Max != 3 {
		t.Errorf("responsive = %+v, %v", r, ok)
	}
	if _, ok := ResponsiveFunc(f.Items[0]); ok {
		t.Error("item without responsive span reported one")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
		code errors.Code
	}{
		{"missing", func(t *testing.T) string { return filepath.Join(t.TempDir(), "none.json") }, errors.ErrCodeFileNotFound},
		{"extension", func(t *testing.T) string { return writeFile(t, "feed.yaml", "items: []") }, errors.ErrCodeInvalidFormat},
		{"bad json", func(t *testing.T) string { return writeFile(t, "feed.json", `{"items": [`) }, errors.ErrCodeInvalidFormat},
		{"bad toml", func(t *testing.T) string { return writeFile(t, "feed.toml", `[[items]`) }, errors.ErrCodeInvalidFormat},
		{"negative height", func(t *testing.T) string { return writeFile(t, "feed.json", `[{"height": -1}]`) }, errors.ErrCodeInvalidInput},
		{"null item", func(t *testing.T) string { return writeFile(t, "feed.json", `[null]`) }, errors.ErrCodeInvalidInput},
		{"bad span", func(t *testing.T) string { return writeFile(t, "feed.json", `[{"span": {"huge": 2}}]`) }, errors.ErrCodeInvalidFormat},
		{"bad toml span", func(t *testing.T) string { return writeFile(t, "feed.toml", "[[items]]\nspan = \"wide\"\n") }, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path(t))
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %s, want %s (%v)", got, tt.code, err)
			}
		})
	}
}

func TestSpanJSON(t *testing.T) {
	for _, in := range []string{`3`, `{"lg":2,"xl":3}`} {
		var s Span
		if err := json.Unmarshal([]byte(in), &s); err != nil {
			t.Fatalf("Unmarshal(%s): %v", in, err)
		}
		out, err := json.Marshal(s)
		if err != nil {
			t.Fatal(err)
		}
		if string(out) != in {
			t.Errorf("Marshal = %s, want %s", out, in)
		}
	}
}

func TestGenerate(t *testing.T) {
	a := Generate(30, 42)
	b := Generate(30, 42)
	if len(a) != 30 {
		t.Fatalf("len = %d", len(a))
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Title != b[i].Title || a[i].Text != b[i].Text || a[i].Height != b[i].Height {
			t.Fatalf("item %d differs between runs", i)
		}
		if a[i] == b[i] {
			t.Fatal("items shared between calls")
		}
		if a[i].Height < 80 || a[i].Height > 320 {
			t.Errorf("item %d height %v out of range", i, a[i].Height)
		}
	}
	if a[1].Responsive == nil {
		t.Error("second item is not responsive")
	}
	if SpanFunc(a[9]).Resolve(layout.GridXL) != 3 {
		t.Error("item 9 does not span")
	}

	page := append(Page(42, 0, 10), Page(42, 10, 20)...)
	for i := range a {
		if page[i].ID != a[i].ID {
			t.Fatalf("paged item %d differs", i)
		}
	}
	if Generate(1, 7)[0].ID == a[0].ID {
		t.Error("different seeds share ids")
	}
	if len(Generate(-1, 1)) != 0 {
		t.Error("negative count produced items")
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, "masonry.toml", `
[grid]
column_width = 200
gutter = 0
min_cols = 2
layout = "flexible"
virtualize = true
virtual_multiplier = 1.5
multi_column_v2 = true
batch_size = 8
whitespace_threshold = 12
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	opts, err := cfg.Grid.Options()
	if err != nil {
		t.Fatalf("Options() error: %v", err)
	}
	if opts.ColumnWidth != 200 || opts.Gutter != 0 || opts.MinCols != 2 {
		t.Errorf("geometry = %v/%v/%d", opts.ColumnWidth, opts.Gutter, opts.MinCols)
	}
	if opts.Mode != columns.ModeFlexible || !opts.Virtualize || !opts.MultiColumnV2 {
		t.Errorf("flags = %+v", opts)
	}
	if opts.VirtualBounds.Multiplier != 1.5 {
		t.Errorf("multiplier = %v", opts.VirtualBounds.Multiplier)
	}
	tuning := opts.Tuning(layout.GridMD, 2)
	if tuning.BatchSize != 8 || tuning.WhitespaceThreshold != 12 {
		t.Errorf("tuning = %+v", tuning)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := LoadConfig(writeFile(t, "c.toml", "[grid]\ncolumn_wdth = 3\n")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("unknown key: %v", err)
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "none.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: %v", err)
	}
	cfg, err := LoadConfig(writeFile(t, "c.toml", "[grid]\nlayout = \"mosaic\"\n"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := cfg.Grid.Options(); !errors.Is(err, errors.ErrCodeInvalidMode) {
		t.Errorf("bad layout: %v", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	opts, err := DefaultConfig().Grid.Options()
	if err != nil {
		t.Fatal(err)
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Tuning != nil {
		t.Error("default config overrides tuning")
	}
}
