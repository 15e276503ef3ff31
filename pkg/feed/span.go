package feed

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/masonry/pkg/layout"
)

// Span is a column span as written in feed files: either a number, or a
// table of spans per grid size ("sm", "md", "lg", "xl").
type Span layout.SpanConfig

// UnmarshalJSON accepts 2 or {"lg": 2, "xl": 3}.
func (s *Span) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*s = Span{Fixed: n}
		return nil
	}
	var m map[layout.GridSize]int
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("span must be a number or an object of grid sizes: %w", err)
	}
	return s.setBySize(m)
}

// MarshalJSON writes fixed spans as numbers.
func (s Span) MarshalJSON() ([]byte, error) {
	if len(s.BySize) == 0 {
		return json.Marshal(s.Fixed)
	}
	return json.Marshal(s.BySize)
}

// UnmarshalTOML accepts span = 2 or span = { lg = 2 }.
func (s *Span) UnmarshalTOML(v any) error {
	switch v := v.(type) {
	case int64:
		*s = Span{Fixed: int(v)}
		return nil
	case map[string]any:
		m := make(map[layout.GridSize]int, len(v))
		for k, raw := range v {
			n, ok := raw.(int64)
			if !ok {
				return fmt.Errorf("span %q must be an integer, got %T", k, raw)
			}
			m[layout.GridSize(k)] = int(n)
		}
		return s.setBySize(m)
	default:
		return fmt.Errorf("span must be an integer or a table, got %T", v)
	}
}

func (s *Span) setBySize(m map[layout.GridSize]int) error {
	for k := range m {
		switch k {
		case layout.GridSM, layout.GridMD, layout.GridLG, layout.GridXL:
		default:
			return fmt.Errorf("unknown grid size %q (must be sm, md, lg or xl)", k)
		}
	}
	*s = Span{BySize: m}
	return nil
}
