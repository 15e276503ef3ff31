package feed

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/masonry/pkg/columns"
	"github.com/matzehuels/masonry/pkg/errors"
	"github.com/matzehuels/masonry/pkg/grid"
	"github.com/matzehuels/masonry/pkg/layout"
	"github.com/matzehuels/masonry/pkg/virtual"
)

// Config is the grid configuration file.
//
//	[grid]
//	column_width = 236
//	gutter = 14
//	min_cols = 2
//	layout = "flexible"
//	virtualize = true
//	multi_column_v2 = true
type Config struct {
	Grid GridConfig `toml:"grid"`
}

// GridConfig mirrors the grid options that make sense in a file. Unset
// values keep the grid defaults.
type GridConfig struct {
	ColumnWidth         float64  `toml:"column_width"`
	Gutter              *float64 `toml:"gutter"`
	MinCols             int      `toml:"min_cols"`
	Layout              string   `toml:"layout"`
	Virtualize          bool     `toml:"virtualize"`
	VirtualMultiplier   float64  `toml:"virtual_multiplier"`
	MultiColumnV2       bool     `toml:"multi_column_v2"`
	DynamicHeightsV2    bool     `toml:"dynamic_heights_v2"`
	BatchSize           *int     `toml:"batch_size"`
	WhitespaceThreshold float64  `toml:"whitespace_threshold"`
}

// LoadConfig reads a TOML config file. Unknown keys are rejected so typos do
// not silently fall back to defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read config %s", path)
	}
	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown config key %q in %s", undecoded[0].String(), path)
	}
	return &cfg, nil
}

// DefaultConfig returns the configuration the tools use without a file.
func DefaultConfig() *Config {
	gutter := grid.DefaultGutter
	return &Config{Grid: GridConfig{
		ColumnWidth: grid.DefaultColumnWidth,
		Gutter:      &gutter,
		MinCols:     grid.DefaultMinCols,
	}}
}

// Options converts the config into grid options for feed items. Callbacks,
// stores and runtime hooks are left for the caller.
func (c GridConfig) Options() (grid.Options[*Item], error) {
	mode, err := columns.ParseMode(c.Layout)
	if err != nil {
		return grid.Options[*Item]{}, err
	}
	opts := grid.Options[*Item]{
		ColumnWidth:          c.ColumnWidth,
		Gutter:               grid.DefaultGutter,
		MinCols:              c.MinCols,
		Mode:                 mode,
		Virtualize:           c.Virtualize,
		VirtualBounds:        virtual.Bounds{Multiplier: c.VirtualMultiplier},
		ColumnSpan:           SpanFunc,
		ResponsiveSecondItem: ResponsiveFunc,
		MultiColumnV2:        c.MultiColumnV2,
		DynamicHeightsV2:     c.DynamicHeightsV2,
	}
	if c.Gutter != nil {
		opts.Gutter = *c.Gutter
	}
	if c.BatchSize != nil || c.WhitespaceThreshold != 0 {
		if c.BatchSize != nil && *c.BatchSize < 0 {
			return grid.Options[*Item]{}, errors.New(errors.ErrCodeInvalidInput, "batch_size must be >= 0, got %d", *c.BatchSize)
		}
		if err := errors.ValidateDimension("whitespace_threshold", c.WhitespaceThreshold); err != nil {
			return grid.Options[*Item]{}, err
		}
		tuning := layout.Tuning{BatchSize: layout.DefaultBatchSize, WhitespaceThreshold: c.WhitespaceThreshold}
		if c.BatchSize != nil {
			tuning.BatchSize = *c.BatchSize
		}
		opts.Tuning = func(layout.GridSize, int) layout.Tuning { return tuning }
	}
	return opts, nil
}
