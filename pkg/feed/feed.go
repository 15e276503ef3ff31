package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	"github.com/matzehuels/masonry/pkg/errors"
	"github.com/matzehuels/masonry/pkg/layout"
)

// Item is one feed entry. Items are used by pointer so that each one is a
// distinct grid item even when two entries carry the same content.
type Item struct {
	ID         string                 `json:"id,omitempty" toml:"id"`
	Title      string                 `json:"title" toml:"title"`
	Text       string                 `json:"text,omitempty" toml:"text"`
	// Height is the declared height in pixels. Zero means undeclared: the
	// host measures the item instead.
	Height     float64                `json:"height,omitempty" toml:"height"`
	Span       Span                   `json:"span,omitempty" toml:"span"`
	Responsive *layout.ResponsiveSpan `json:"responsive,omitempty" toml:"responsive"`
}

// Feed is a decoded feed file.
type Feed struct {
	Items []*Item `json:"items" toml:"items"`
}

// SpanFunc adapts Item spans for grid.Options.ColumnSpan.
func SpanFunc(it *Item) layout.SpanConfig {
	return layout.SpanConfig(it.Span)
}

// ResponsiveFunc adapts Item responsive spans for
// grid.Options.ResponsiveSecondItem.
func ResponsiveFunc(it *Item) (layout.ResponsiveSpan, bool) {
	if it.Responsive == nil {
		return layout.ResponsiveSpan{}, false
	}
	return *it.Responsive, true
}

// Load reads a feed from a .json or .toml file.
func Load(path string) (*Feed, error) {
	if err := errors.ValidateFeedPath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "feed %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read feed %s", path)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return DecodeTOML(data)
	}
	return DecodeJSON(data)
}

// DecodeJSON decodes a feed from JSON. Both {"items": [...]} and a bare array
// of items are accepted.
func DecodeJSON(data []byte) (*Feed, error) {
	var f Feed
	trimmed := bytes.TrimSpace(data)
	var err error
	if len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &f.Items)
	} else {
		err = json.Unmarshal(trimmed, &f)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode JSON feed")
	}
	return finish(&f)
}

// DecodeTOML decodes a feed from TOML with an [[items]] array of tables.
func DecodeTOML(data []byte) (*Feed, error) {
	var f Feed
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode TOML feed")
	}
	return finish(&f)
}

// Normalize validates items decoded elsewhere, such as from a request body,
// and gives every item without an ID a new one.
func Normalize(items []*Item) ([]*Item, error) {
	f, err := finish(&Feed{Items: items})
	if err != nil {
		return nil, err
	}
	return f.Items, nil
}

func finish(f *Feed) (*Feed, error) {
	for i, it := range f.Items {
		if it == nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "item %d is empty", i)
		}
		if err := errors.ValidateDimension(fmt.Sprintf("item %d height", i), it.Height); err != nil {
			return nil, err
		}
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
	}
	return f, nil
}
