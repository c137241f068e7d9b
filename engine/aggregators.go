package engine

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ============================================================================
// AGGREGATORS — Grouping, Aggregation, and Sorting via RecordView
// ============================================================================
// Pipeline: validate → group → aggregate → sort → limit.
// Grouping produces SubViews (index lists into the parent view), so every
// Row can be drilled into without copying.
// ============================================================================

// Aggregate groups view by q.GroupBy and computes q.Op per group.
// Groups with no records never appear. An empty view yields an empty result.
func Aggregate(view RecordView, q Query) (*AggregationResult, error) {
	q, err := normalizeQuery(view, q)
	if err != nil {
		return nil, err
	}

	result := &AggregationResult{Query: q, Rows: []Row{}}
	if view.Len() == 0 {
		return result, nil
	}

	// 1. Group
	groups := groupRows(view, q.GroupBy)

	// 2. Aggregate
	rows := make([]Row, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, aggregateGroup(newSubView(view, g.indices), g.key, q))
	}

	// 3. Sort
	SortRows(rows, q.Order, numericColumns(view, q.GroupBy))

	// 4. Limit
	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}

	result.Rows = rows
	return result, nil
}

// normalizeQuery fills defaults and checks every referenced column.
func normalizeQuery(view RecordView, q Query) (Query, error) {
	if q.Op == "" {
		q.Op = OpSum
	}
	if q.Order == "" {
		q.Order = OrderDesc
	}
	if q.Limit < 0 {
		q.Limit = 0
	}

	switch q.Order {
	case OrderDesc, OrderAsc, OrderKey, OrderNone:
	default:
		return q, fmt.Errorf("%w: order %q", ErrUnsupportedOp, q.Order)
	}

	for _, col := range q.GroupBy {
		if !hasDimension(view, col) && !hasMeasure(view, col) {
			return q, unknownColumn("group", col)
		}
	}

	switch q.Op {
	case OpCount:
		q.Measure, q.Denominator = "", ""
	case OpSum, OpMean:
		if !hasMeasure(view, q.Measure) {
			return q, unknownColumn("measure", q.Measure)
		}
		q.Denominator = ""
	case OpRatio:
		if !hasMeasure(view, q.Measure) {
			return q, unknownColumn("measure", q.Measure)
		}
		if !hasMeasure(view, q.Denominator) {
			return q, unknownColumn("denominator", q.Denominator)
		}
	default:
		return q, fmt.Errorf("%w: %q", ErrUnsupportedOp, q.Op)
	}
	return q, nil
}

// ============================================================================
// GROUPING
// ============================================================================

type group struct {
	key     []string
	indices []int
}

// groupRows partitions view by the given columns, in first-seen order.
// Numeric columns are keyed by their shortest decimal representation.
func groupRows(view RecordView, columns []string) []group {
	n := view.Len()
	if len(columns) == 0 {
		indices := make([]int, n)
		for i := range indices {
			indices[i] = i
		}
		return []group{{key: []string{}, indices: indices}}
	}

	numeric := numericColumns(view, columns)
	byKey := make(map[string]int)
	var groups []group

	for i := 0; i < n; i++ {
		parts := make([]string, len(columns))
		for c, col := range columns {
			if numeric[c] {
				v := view.Measure(i, col)
				if v == 0 {
					v = 0 // -0 groups with 0
				}
				parts[c] = strconv.FormatFloat(v, 'f', -1, 64)
			} else {
				parts[c] = view.Dimension(i, col)
			}
		}
		joined := strings.Join(parts, "\x1f")
		idx, exists := byKey[joined]
		if !exists {
			idx = len(groups)
			byKey[joined] = idx
			groups = append(groups, group{key: parts})
		}
		groups[idx].indices = append(groups[idx].indices, i)
	}
	return groups
}

func numericColumns(view RecordView, columns []string) []bool {
	numeric := make([]bool, len(columns))
	for i, col := range columns {
		numeric[i] = !hasDimension(view, col) && hasMeasure(view, col)
	}
	return numeric
}

// ============================================================================
// AGGREGATION
// ============================================================================

func aggregateGroup(sub RecordView, key []string, q Query) Row {
	row := Row{Key: key, Count: sub.Len(), View: sub}

	switch q.Op {
	case OpSum:
		row.Value = SumMeasure(sub, q.Measure)
	case OpMean:
		row.Value = MeanMeasure(sub, q.Measure)
	case OpCount:
		row.Value = float64(row.Count)
	case OpRatio:
		row.Numerator = SumMeasure(sub, q.Measure)
		row.Denominator = SumMeasure(sub, q.Denominator)
		if row.Denominator == 0 {
			row.Undefined = true
		} else {
			row.Value = row.Numerator / row.Denominator
		}
	}
	return row
}

// SumMeasure sums a numeric column across a view.
func SumMeasure(view RecordView, measure string) float64 {
	var total float64
	for i := 0; i < view.Len(); i++ {
		total += view.Measure(i, measure)
	}
	return total
}

// MeanMeasure averages a numeric column across a view. Zero for an empty view.
func MeanMeasure(view RecordView, measure string) float64 {
	n := view.Len()
	if n == 0 {
		return 0
	}
	return SumMeasure(view, measure) / float64(n)
}

// ============================================================================
// SORTING
// ============================================================================

// SortRows orders rows in place. Value orders put undefined rows last and
// break ties by key; numeric[i] marks key part i as numeric.
func SortRows(rows []Row, order Order, numeric []bool) {
	byKey := func(i, j int) bool { return compareKeys(rows[i].Key, rows[j].Key, numeric) < 0 }

	switch order {
	case OrderDesc, OrderAsc:
		sort.SliceStable(rows, func(i, j int) bool {
			a, b := rows[i], rows[j]
			if a.Undefined != b.Undefined {
				return !a.Undefined
			}
			if !a.Undefined && a.Value != b.Value {
				if order == OrderDesc {
					return a.Value > b.Value
				}
				return a.Value < b.Value
			}
			return byKey(i, j)
		})
	case OrderKey:
		sort.SliceStable(rows, byKey)
	default:
		// preserve grouping order
	}
}

func compareKeys(a, b []string, numeric []bool) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if i < len(numeric) && numeric[i] {
			x, errX := strconv.ParseFloat(a[i], 64)
			y, errY := strconv.ParseFloat(b[i], 64)
			if errX == nil && errY == nil {
				if x < y {
					return -1
				}
				if x > y {
					return 1
				}
				continue
			}
		}
		if c := strings.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

// ============================================================================
// COMPARISON & SCATTER
// ============================================================================

// CompareSums computes sum(a) and sum(b) per group of groupBy, with the
// margin a−b rounded to 2 places. Rows are ordered by group key.
func CompareSums(view RecordView, groupBy, a, b string) ([]ComparisonRow, error) {
	if !hasDimension(view, groupBy) {
		return nil, unknownColumn("group", groupBy)
	}
	if !hasMeasure(view, a) {
		return nil, unknownColumn("measure", a)
	}
	if !hasMeasure(view, b) {
		return nil, unknownColumn("measure", b)
	}

	out := []ComparisonRow{}
	for _, g := range groupRows(view, []string{groupBy}) {
		sub := newSubView(view, g.indices)
		sa, sb := SumMeasure(sub, a), SumMeasure(sub, b)
		margin := decimal.NewFromFloat(sa).Sub(decimal.NewFromFloat(sb)).Round(2)
		out = append(out, ComparisonRow{
			Key:    g.key,
			A:      sa,
			B:      sb,
			Margin: margin.InexactFloat64(),
			Count:  len(g.indices),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key[0] < out[j].Key[0] })
	return out, nil
}

// Scatter projects each record onto x/y, sized by size and coloured by color.
func Scatter(view RecordView, x, y, size, color string) ([]ScatterPoint, error) {
	axes := [...]struct{ role, col string }{{"x", x}, {"y", y}, {"size", size}}
	for _, a := range axes {
		if !hasMeasure(view, a.col) {
			return nil, unknownColumn(a.role, a.col)
		}
	}
	if !hasDimension(view, color) {
		return nil, unknownColumn("color", color)
	}

	points := make([]ScatterPoint, view.Len())
	for i := range points {
		points[i] = ScatterPoint{
			X:     view.Measure(i, x),
			Y:     view.Measure(i, y),
			Size:  view.Measure(i, size),
			Color: view.Dimension(i, color),
		}
	}
	return points, nil
}

// ============================================================================
// FORMATTING UTILITIES
// ============================================================================

// LabelForColumn turns a column key into a title: "product_type" → "Product Type".
func LabelForColumn(column string) string {
	words := strings.Split(column, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
