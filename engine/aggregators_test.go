package engine

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
)

// ============================================================================
// AGGREGATION TESTS
// ============================================================================
// Tests cover:
//   1. sum / mean / count / ratio per group
//   2. Undefined ratio on a zero denominator
//   3. Ordering: desc, asc, key (numeric-aware), ties by key
//   4. Partition: groups cover every record exactly once
//   5. Validation: unknown columns, unsupported op/order
// ============================================================================

func TestAggregateSumByProductType(t *testing.T) {
	res, err := Aggregate(sampleDataset(), Query{
		GroupBy: []string{ColProductType},
		Op:      OpSum,
		Measure: ColRevenue,
		Order:   OrderDesc,
	})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	assertKeys(t, res, "skincare", "haircare", "cosmetics")
	assertFloat(t, res.Rows[0].Value, 320, "skincare revenue")
	assertFloat(t, res.Rows[1].Value, 150, "haircare revenue")
	assertFloat(t, res.Rows[2].Value, 80, "cosmetics revenue")
	assertInt(t, res.Rows[0].Count, 2, "skincare count")
}

func TestAggregateDefaultsToSumDesc(t *testing.T) {
	res, err := Aggregate(sampleDataset(), Query{GroupBy: []string{ColProductType}, Measure: ColRevenue})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if res.Query.Op != OpSum || res.Query.Order != OrderDesc {
		t.Errorf("defaults: got op=%s order=%s", res.Query.Op, res.Query.Order)
	}
	assertKeys(t, res, "skincare", "haircare", "cosmetics")
}

func TestAggregateMean(t *testing.T) {
	res, err := Aggregate(sampleDataset(), Query{
		GroupBy: []string{ColProductType},
		Op:      OpMean,
		Measure: ColDefectRate,
		Order:   OrderAsc,
	})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	assertKeys(t, res, "skincare", "haircare", "cosmetics")
	assertFloat(t, res.Rows[0].Value, 1.25, "skincare mean defect rate")
	assertFloat(t, res.Rows[1].Value, 2, "haircare mean defect rate")
	assertFloat(t, res.Rows[2].Value, 4, "cosmetics mean defect rate")
}

func TestAggregateCountTiesBreakByKey(t *testing.T) {
	ds := sampleDataset()

	desc, err := Aggregate(ds, Query{GroupBy: []string{ColRoute}, Op: OpCount, Order: OrderDesc})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	assertKeys(t, desc, "Route A", "Route B", "Route C")
	assertFloat(t, desc.Rows[0].Value, 2, "Route A frequency")
	if desc.Query.Measure != "" {
		t.Errorf("count should clear measure, got %q", desc.Query.Measure)
	}

	asc, err := Aggregate(ds, Query{GroupBy: []string{ColRoute}, Op: OpCount, Order: OrderAsc})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	assertKeys(t, asc, "Route C", "Route A", "Route B")
}

func TestAggregateRatio(t *testing.T) {
	// Supplier A: 300/100 = 3.0, Supplier B: 200/100 = 2.0
	ds := NewDataset([]Record{
		{SupplierName: "B", Revenue: 200, ManufacturingCost: 100},
		{SupplierName: "A", Revenue: 100, ManufacturingCost: 50},
		{SupplierName: "A", Revenue: 200, ManufacturingCost: 50},
	})

	res, err := Aggregate(ds, Query{
		GroupBy:     []string{ColSupplierName},
		Op:          OpRatio,
		Measure:     ColRevenue,
		Denominator: ColManufacturingCost,
		Order:       OrderDesc,
	})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	assertKeys(t, res, "A", "B")
	assertFloat(t, res.Rows[0].Value, 3.0, "A ratio")
	assertFloat(t, res.Rows[1].Value, 2.0, "B ratio")
	assertFloat(t, res.Rows[0].Numerator, 300, "A numerator")
	assertFloat(t, res.Rows[0].Denominator, 100, "A denominator")
}

func TestAggregateRatioZeroDenominatorIsUndefined(t *testing.T) {
	ds := sampleDataset()

	for _, order := range []Order{OrderDesc, OrderAsc} {
		res, err := Aggregate(ds, Query{
			GroupBy:     []string{ColSupplierName},
			Op:          OpRatio,
			Measure:     ColRevenue,
			Denominator: ColManufacturingCost,
			Order:       order,
		})
		if err != nil {
			t.Fatalf("Aggregate: %v", err)
		}
		row, ok := res.Lookup("Supplier 3")
		if !ok {
			t.Fatal("Supplier 3 missing")
		}
		if !row.Undefined {
			t.Errorf("Supplier 3 ratio should be undefined, got %v", row.Value)
		}
		if last := res.Rows[len(res.Rows)-1]; last.Label() != "Supplier 3" {
			t.Errorf("order %s: undefined row should sort last, got %v", order, rowLabels(res))
		}
		for _, r := range res.Rows {
			if r.Label() != "Supplier 3" && r.Undefined {
				t.Errorf("%s should be defined", r.Label())
			}
		}
	}
}

func TestRowJSONUndefinedIsNull(t *testing.T) {
	b, err := json.Marshal(Row{Key: []string{"Supplier 3"}, Undefined: true, Count: 1, Numerator: 80})
	if err != nil {
		t.Fatal(err)
	}
	s := string(b)
	if !strings.Contains(s, `"value":null`) || !strings.Contains(s, `"undefined":true`) {
		t.Errorf("undefined row JSON: %s", s)
	}

	b, _ = json.Marshal(Row{Key: []string{"x"}, Value: 0, Count: 1})
	if !strings.Contains(string(b), `"value":0`) {
		t.Errorf("zero value must not be null: %s", b)
	}
}

func TestRowJSONZeroOverZeroKeepsOperands(t *testing.T) {
	b, err := json.Marshal(Row{Key: []string{"Supplier 4"}, Undefined: true, Count: 1})
	if err != nil {
		t.Fatal(err)
	}
	s := string(b)
	if !strings.Contains(s, `"numerator":0`) || !strings.Contains(s, `"denominator":0`) {
		t.Errorf("0/0 row should carry its operands: %s", s)
	}
}

func TestAggregateNegativeZeroKeyMergesWithZero(t *testing.T) {
	ds := NewDataset([]Record{
		{ProductType: "a", Price: 0, Revenue: 1},
		{ProductType: "b", Price: math.Copysign(0, -1), Revenue: 2},
		{ProductType: "c", Price: math.Copysign(0, -1), Revenue: 3},
	})
	res, err := Aggregate(ds, Query{GroupBy: []string{ColPrice}, Op: OpCount})
	if err != nil {
		t.Fatal(err)
	}
	assertKeys(t, res, "0")
	assertInt(t, res.Rows[0].Count, 3, "zero price group")
}

func TestAggregatePartitionsView(t *testing.T) {
	ds := sampleDataset()
	total := SumMeasure(ds, ColOrderQuantity)

	for _, col := range []string{ColProductType, ColLocation, ColTransportMode, ColSupplierName} {
		res, err := Aggregate(ds, Query{GroupBy: []string{col}, Measure: ColOrderQuantity})
		if err != nil {
			t.Fatalf("Aggregate by %s: %v", col, err)
		}
		var count int
		var sum float64
		for _, r := range res.Rows {
			if r.Count == 0 {
				t.Errorf("%s: empty group %q", col, r.Label())
			}
			count += r.Count
			sum += r.Value
			assertInt(t, r.View.Len(), r.Count, "group view length")
		}
		assertInt(t, count, ds.Len(), col+" counts")
		assertFloat(t, sum, total, col+" sums")
	}
}

func TestAggregateMultiColumnKey(t *testing.T) {
	res, err := Aggregate(sampleDataset(), Query{
		GroupBy: []string{ColProductType, ColLocation},
		Op:      OpCount,
		Order:   OrderKey,
	})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	assertKeys(t, res,
		"cosmetics / Kolkata",
		"haircare / Delhi",
		"haircare / Mumbai",
		"skincare / Delhi",
		"skincare / Mumbai",
	)
}

func TestAggregateNumericKeyOrder(t *testing.T) {
	ds := NewDataset([]Record{
		{Price: 100, OrderQuantity: 1},
		{Price: 5, OrderQuantity: 2},
		{Price: 10, OrderQuantity: 3},
		{Price: 5, OrderQuantity: 4},
	})
	res, err := Aggregate(ds, Query{GroupBy: []string{ColPrice}, Measure: ColOrderQuantity, Order: OrderKey})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	assertKeys(t, res, "5", "10", "100")
	assertFloat(t, res.Rows[0].Value, 6, "demand at price 5")
}

func TestAggregateNoneKeepsFirstSeenOrder(t *testing.T) {
	res, err := Aggregate(sampleDataset(), Query{GroupBy: []string{ColLocation}, Op: OpCount, Order: OrderNone})
	if err != nil {
		t.Fatal(err)
	}
	assertKeys(t, res, "Mumbai", "Delhi", "Kolkata")
}

func TestAggregateLimit(t *testing.T) {
	res, err := Aggregate(sampleDataset(), Query{GroupBy: []string{ColProductType}, Measure: ColRevenue, Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	assertKeys(t, res, "skincare", "haircare")
}

func TestAggregateEmptyViewAndNoGroup(t *testing.T) {
	empty := NewDataset(nil)
	res, err := Aggregate(empty, Query{GroupBy: []string{ColProductType}, Measure: ColRevenue})
	if err != nil {
		t.Fatalf("Aggregate on empty view: %v", err)
	}
	if res.Len() != 0 || res.Rows == nil {
		t.Errorf("empty view: want zero non-nil rows, got %v", res.Rows)
	}

	all, err := Aggregate(sampleDataset(), Query{Measure: ColRevenue})
	if err != nil {
		t.Fatal(err)
	}
	assertInt(t, all.Len(), 1, "single group")
	assertFloat(t, all.Rows[0].Value, 550, "grand total")
}

func TestAggregateValidation(t *testing.T) {
	ds := sampleDataset()

	tests := []struct {
		name string
		q    Query
		want error
	}{
		{"unknown group", Query{GroupBy: []string{"warehouse"}, Measure: ColRevenue}, ErrUnknownColumn},
		{"unknown measure", Query{GroupBy: []string{ColRoute}, Measure: "profit"}, ErrUnknownColumn},
		{"categorical measure", Query{GroupBy: []string{ColRoute}, Measure: ColLocation}, ErrUnknownColumn},
		{"missing measure", Query{GroupBy: []string{ColRoute}, Op: OpMean}, ErrUnknownColumn},
		{"missing denominator", Query{GroupBy: []string{ColRoute}, Op: OpRatio, Measure: ColRevenue}, ErrUnknownColumn},
		{"unsupported op", Query{GroupBy: []string{ColRoute}, Op: "median", Measure: ColRevenue}, ErrUnsupportedOp},
		{"unsupported order", Query{GroupBy: []string{ColRoute}, Measure: ColRevenue, Order: "random"}, ErrUnsupportedOp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Aggregate(ds, tt.q)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCompareSums(t *testing.T) {
	rows, err := CompareSums(sampleDataset(), ColProductType, ColPrice, ColManufacturingCost)
	if err != nil {
		t.Fatalf("CompareSums: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	want := []struct {
		key       string
		a, b, mgn float64
	}{
		{"cosmetics", 30, 0, 30},
		{"haircare", 20, 50, -30},
		{"skincare", 40, 110, -70},
	}
	for i, w := range want {
		r := rows[i]
		if r.Key[0] != w.key {
			t.Errorf("row %d: got %q, want %q", i, r.Key[0], w.key)
		}
		assertFloat(t, r.A, w.a, w.key+" price")
		assertFloat(t, r.B, w.b, w.key+" cost")
		assertFloat(t, r.Margin, w.mgn, w.key+" margin")
	}

	if _, err := CompareSums(sampleDataset(), ColProductType, ColPrice, "tax"); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("want ErrUnknownColumn, got %v", err)
	}
}

func TestScatter(t *testing.T) {
	pts, err := Scatter(sampleDataset(), ColManufacturingCost, ColRevenue, ColPrice, ColProductType)
	if err != nil {
		t.Fatalf("Scatter: %v", err)
	}
	assertInt(t, len(pts), 5, "one point per record")
	p := pts[0]
	if p.X != 40 || p.Y != 100 || p.Size != 10 || p.Color != "haircare" {
		t.Errorf("first point: %+v", p)
	}

	_, err = Scatter(sampleDataset(), "weight", "height", ColPrice, ColProductType)
	var colErr *ColumnError
	if !errors.As(err, &colErr) || colErr.Role != "x" {
		t.Errorf("want x-axis ColumnError first, got %v", err)
	}
}

func TestLabelForColumn(t *testing.T) {
	if got := LabelForColumn(ColManufacturingCost); got != "Manufacturing Cost" {
		t.Errorf("got %q", got)
	}
}
