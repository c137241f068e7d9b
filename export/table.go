package export

import (
	"fmt"
	"strings"

	"github.com/spektr-org/supplylens/engine"
)

// Table is a header plus rows of cell values. A nil cell is written empty.
type Table struct {
	Header []string
	Rows   [][]interface{}
}

// SummaryTable lays out the KPI totals as metric/value pairs.
func SummaryTable(s engine.SummaryTotals) Table {
	return Table{
		Header: []string{"Metric", "Value"},
		Rows: [][]interface{}{
			{"Records", s.Records},
			{"Total Revenue", s.Revenue.InexactFloat64()},
			{"Total Stock", s.StockLevels},
			{"Total Lead Time", s.LeadTimes.InexactFloat64()},
			{"Total Orders", s.Orders},
			{"Total Availability", s.Availability.InexactFloat64()},
			{"Total Manufacturing Cost", s.ManufacturingCosts.InexactFloat64()},
		},
	}
}

// ResultTable lays out an AggregationResult: key columns, value, count,
// and for ratios the numerator and denominator sums.
func ResultTable(res *engine.AggregationResult) Table {
	q := res.Query
	var t Table
	for _, col := range q.GroupBy {
		t.Header = append(t.Header, engine.LabelForColumn(col))
	}
	t.Header = append(t.Header, valueLabel(q), "Count")
	if q.Op == engine.OpRatio {
		t.Header = append(t.Header, engine.LabelForColumn(q.Measure), engine.LabelForColumn(q.Denominator))
	}

	for _, r := range res.Rows {
		row := make([]interface{}, 0, len(t.Header))
		for _, k := range r.Key {
			row = append(row, k)
		}
		if r.Undefined {
			row = append(row, nil)
		} else {
			row = append(row, r.Value)
		}
		row = append(row, r.Count)
		if q.Op == engine.OpRatio {
			row = append(row, r.Numerator, r.Denominator)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// WidgetTable lays out any widget kind. A failed widget becomes a single
// error row.
func WidgetTable(w engine.Widget) Table {
	if w.Error != "" {
		return Table{Header: []string{"Error"}, Rows: [][]interface{}{{w.Error}}}
	}

	switch w.Kind {
	case engine.KindComparison:
		t := Table{Header: []string{"Group", "A", "B", "Margin", "Count"}}
		for _, r := range w.Comparison {
			t.Rows = append(t.Rows, []interface{}{strings.Join(r.Key, " / "), r.A, r.B, r.Margin, r.Count})
		}
		return t
	case engine.KindScatter:
		t := Table{Header: []string{"X", "Y", "Size", "Color"}}
		for _, p := range w.Points {
			t.Rows = append(t.Rows, []interface{}{p.X, p.Y, p.Size, p.Color})
		}
		return t
	default:
		if w.Result == nil {
			return Table{Header: []string{"Error"}, Rows: [][]interface{}{{"no result"}}}
		}
		return ResultTable(w.Result)
	}
}

func valueLabel(q engine.Query) string {
	switch q.Op {
	case engine.OpCount:
		return "Frequency"
	case engine.OpMean:
		return "Average " + engine.LabelForColumn(q.Measure)
	case engine.OpRatio:
		return fmt.Sprintf("%s / %s", engine.LabelForColumn(q.Measure), engine.LabelForColumn(q.Denominator))
	default:
		return "Total " + engine.LabelForColumn(q.Measure)
	}
}
