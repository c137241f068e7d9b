package schema

import (
	"strings"

	"github.com/spektr-org/supplylens/engine"
)

// Binding maps each schema column to its position in a CSV header row.
type Binding struct {
	Dimensions map[string]int  `json:"dimensions"`
	Measures   map[string]int  `json:"measures"`
	Skipped    []SkippedColumn `json:"skipped,omitempty"`
}

// Resolve binds every column of c to a header. Candidates are tried in
// alias order, then the key itself; a header binds at most one column.
// Missing columns fail with engine.ErrMalformedInput.
func (c Config) Resolve(headers []string) (*Binding, error) {
	norm := make([]string, len(headers))
	for i, h := range headers {
		norm[i] = NormalizeHeader(strings.TrimPrefix(h, "\ufeff"))
	}

	used := make(map[int]bool)
	find := func(key string, aliases []string) int {
		candidates := make([]string, 0, len(aliases)+1)
		for _, a := range aliases {
			candidates = append(candidates, NormalizeHeader(a))
		}
		candidates = append(candidates, NormalizeHeader(key))
		for _, cand := range candidates {
			for i, h := range norm {
				if !used[i] && h == cand {
					used[i] = true
					return i
				}
			}
		}
		return -1
	}

	b := &Binding{
		Dimensions: make(map[string]int, len(c.Dimensions)),
		Measures:   make(map[string]int, len(c.Measures)),
	}
	var missing []string

	for _, d := range c.Dimensions {
		if idx := find(d.Key, d.Aliases); idx >= 0 {
			b.Dimensions[d.Key] = idx
		} else {
			missing = append(missing, d.Key)
		}
	}
	for _, m := range c.Measures {
		if idx := find(m.Key, m.Aliases); idx >= 0 {
			b.Measures[m.Key] = idx
		} else {
			missing = append(missing, m.Key)
		}
	}

	if len(missing) > 0 {
		return nil, &engine.InputError{
			Reason: "missing required columns: " + strings.Join(missing, ", "),
		}
	}

	for i, h := range headers {
		if !used[i] {
			b.Skipped = append(b.Skipped, SkippedColumn{
				Column: strings.TrimPrefix(h, "\ufeff"),
				Reason: "not read by the engine",
			})
		}
	}
	return b, nil
}
