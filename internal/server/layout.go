package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/matzehuels/masonry/pkg/cache"
	"github.com/matzehuels/masonry/pkg/errors"
	"github.com/matzehuels/masonry/pkg/feed"
	"github.com/matzehuels/masonry/pkg/grid"
)

// LayoutRequest is the body of POST /v1/layout.
type LayoutRequest struct {
	Width float64      `json:"width"`
	Items []*feed.Item `json:"items"`
	// Grid overrides the server defaults field by field.
	Grid *GridOverrides `json:"grid,omitempty"`
}

// GridOverrides are per-request grid settings.
type GridOverrides struct {
	ColumnWidth      *float64 `json:"column_width,omitempty"`
	Gutter           *float64 `json:"gutter,omitempty"`
	MinCols          *int     `json:"min_cols,omitempty"`
	Layout           *string  `json:"layout,omitempty"`
	MultiColumnV2    *bool    `json:"multi_column_v2,omitempty"`
	DynamicHeightsV2 *bool    `json:"dynamic_heights_v2,omitempty"`
}

// LayoutResponse is the computed layout.
type LayoutResponse struct {
	ID          string       `json:"id"`
	State       string       `json:"state"`
	Columns     int          `json:"columns"`
	ColumnWidth float64      `json:"column_width"`
	Offset      float64      `json:"offset"`
	Height      float64      `json:"height"`
	Positions   []ItemLayout `json:"positions"`
}

// ItemLayout is one positioned item.
type ItemLayout struct {
	ID     string  `json:"id"`
	Index  int     `json:"index"`
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req LayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request"))
		return
	}
	// Keyed before ids are generated, so a repeated request without item ids
	// gets the ids of the first answer.
	s.respondCached(w, r, "layout", []any{req, s.grid}, func() (*LayoutResponse, error) {
		decoded, err := feed.Normalize(req.Items)
		if err != nil {
			return nil, err
		}
		return s.layout(r, req.Width, decoded, req.Grid)
	})
}

func (s *Server) handleDemo(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	n, err := intParam(q.Get("n"), 50)
	if err != nil {
		writeError(w, err)
		return
	}
	if n > s.maxItems {
		writeError(w, tooMany(n, s.maxItems))
		return
	}
	seed, err := intParam(q.Get("seed"), 1)
	if err != nil {
		writeError(w, err)
		return
	}
	width, err := strconv.ParseFloat(q.Get("width"), 64)
	if err != nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "width must be a number"))
		return
	}
	s.respondCached(w, r, "demo", []any{n, seed, width, s.grid}, func() (*LayoutResponse, error) {
		return s.layout(r, width, feed.Generate(n, int64(seed)), nil)
	})
}

// respondCached answers from the layout cache when it can and caches what
// compute returns otherwise. Errors are never cached.
func (s *Server) respondCached(w http.ResponseWriter, r *http.Request, prefix string, parts []any, compute func() (*LayoutResponse, error)) {
	ctx := r.Context()
	logger := loggerFor(r, s.logger)

	key, err := cache.Key(prefix, parts...)
	if err != nil {
		logger.Debug("layout not cacheable", "err", err)
	} else if data, ok, err := s.cache.Get(ctx, key); err != nil {
		logger.Warn("cache get failed", "err", err)
	} else if ok {
		w.Header().Set("X-Cache", "hit")
		writeRaw(w, http.StatusOK, data)
		return
	}

	resp, err := compute()
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "encode layout"))
		return
	}
	if key != "" {
		if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
			logger.Warn("cache set failed", "err", err)
		}
	}
	w.Header().Set("X-Cache", "miss")
	writeRaw(w, http.StatusOK, data)
}

func (s *Server) layout(r *http.Request, width float64, items []*feed.Item, o *GridOverrides) (*LayoutResponse, error) {
	if err := errors.ValidatePositive("width", width); err != nil {
		return nil, err
	}
	if len(items) > s.maxItems {
		return nil, tooMany(len(items), s.maxItems)
	}
	for i, it := range items {
		if err := errors.ValidatePositive(fmt.Sprintf("item %d height", i), it.Height); err != nil {
			return nil, err
		}
	}

	cfg := s.grid
	o.apply(&cfg)
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	opts.Logger = s.logger
	// Server-side layout has no viewport.
	opts.Virtualize = false

	g, err := grid.New(opts)
	if err != nil {
		return nil, err
	}
	defer g.Close()

	g.SetItems(items)
	g.SetWidth(width)
	frame := g.Settle(func(it *feed.Item, _ float64) float64 { return it.Height })

	resp := &LayoutResponse{
		ID:          uuid.NewString(),
		State:       frame.State.String(),
		Columns:     frame.Geometry.Count,
		ColumnWidth: frame.Geometry.ColumnWidth,
		Offset:      frame.Geometry.Offset,
		Height:      frame.Height,
		Positions:   make([]ItemLayout, 0, len(frame.Items)),
	}
	for _, p := range frame.Items {
		resp.Positions = append(resp.Positions, ItemLayout{
			ID:     p.Item.ID,
			Index:  p.Index,
			Top:    p.Position.Top,
			Left:   p.Position.Left,
			Width:  p.Position.Width,
			Height: p.Position.Height,
		})
	}
	loggerFor(r, s.logger).Debug("layout computed",
		"layout_id", resp.ID, "items", len(items), "columns", resp.Columns, "height", resp.Height)
	return resp, nil
}

func (o *GridOverrides) apply(cfg *feed.GridConfig) {
	if o == nil {
		return
	}
	if o.ColumnWidth != nil {
		cfg.ColumnWidth = *o.ColumnWidth
	}
	if o.Gutter != nil {
		cfg.Gutter = o.Gutter
	}
	if o.MinCols != nil {
		cfg.MinCols = *o.MinCols
	}
	if o.Layout != nil {
		cfg.Layout = *o.Layout
	}
	if o.MultiColumnV2 != nil {
		cfg.MultiColumnV2 = *o.MultiColumnV2
	}
	if o.DynamicHeightsV2 != nil {
		cfg.DynamicHeightsV2 = *o.DynamicHeightsV2
	}
}

func tooMany(n, limit int) error {
	return errors.New(errors.ErrCodeInvalidInput, "too many items: %d (max %d)", n, limit)
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid integer %q", raw)
	}
	return n, nil
}
