package engine

// ============================================================================
// FILTERS — Categorical equality filtering via RecordView
// ============================================================================
// Single-pass filter: checks ALL active constraints per record in one loop.
// Returns a SubView (index list into parent) — zero data copy.
// ============================================================================

// Apply returns the records of view matching every active constraint of spec.
// Matching is exact and case-sensitive. Order of view is preserved.
// An unconstrained spec returns view itself.
func Apply(view RecordView, spec FilterSpec) (RecordView, error) {
	for col := range spec {
		if !hasDimension(view, col) {
			return nil, unknownColumn("filter", col)
		}
	}

	active := spec.Active()
	if len(active) == 0 {
		return view, nil
	}

	wanted := make([]string, len(active))
	for i, col := range active {
		wanted[i] = spec[col]
	}

	n := view.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		pass := true
		for j, col := range active {
			if view.Dimension(i, col) != wanted[j] {
				pass = false
				break
			}
		}
		if pass {
			indices = append(indices, i)
		}
	}

	return newSubView(view, indices), nil
}

// FilterOption lists the selectable values of one filter column.
type FilterOption struct {
	Column string   `json:"column"`
	Values []string `json:"values"` // All first, then first-seen order
}

// FilterOptions returns the selector values for each column: All followed
// by the distinct values of the column in view order.
func FilterOptions(view RecordView, columns []string) ([]FilterOption, error) {
	out := make([]FilterOption, 0, len(columns))
	for _, col := range columns {
		if !hasDimension(view, col) {
			return nil, unknownColumn("filter", col)
		}
		values := append([]string{All}, UniqueValues(view, col)...)
		out = append(out, FilterOption{Column: col, Values: values})
	}
	return out, nil
}

// UniqueValues returns distinct non-empty values of a column in view order.
func UniqueValues(view RecordView, dimension string) []string {
	seen := make(map[string]bool)
	var result []string
	for i := 0; i < view.Len(); i++ {
		val := view.Dimension(i, dimension)
		if val != "" && !seen[val] {
			seen[val] = true
			result = append(result, val)
		}
	}
	return result
}
