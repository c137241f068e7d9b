package engine

import (
	"math"
	"testing"
)

// --- Test Fixtures ---

func rec(product, location, mode, supplier, inspection, route string,
	revenue, cost, price float64, stock int64, lead float64, orders int64,
	availability, production, defect float64) Record {
	return Record{
		ProductType:       product,
		Location:          location,
		TransportMode:     mode,
		SupplierName:      supplier,
		InspectionResult:  inspection,
		Route:             route,
		Revenue:           revenue,
		ManufacturingCost: cost,
		Price:             price,
		StockLevel:        stock,
		LeadTime:          lead,
		OrderQuantity:     orders,
		Availability:      availability,
		ProductionVolume:  production,
		DefectRate:        defect,
	}
}

// sampleDataset: 5 rows, 3 product types, 3 suppliers. Supplier 3 has no
// manufacturing cost, so its cost-efficiency ratio is undefined.
func sampleDataset() *Dataset {
	return NewDataset([]Record{
		rec("haircare", "Mumbai", "Road", "Supplier 1", "Pass", "Route A", 100, 40, 10, 5, 3, 10, 50, 200, 1),
		rec("skincare", "Delhi", "Air", "Supplier 2", "Fail", "Route B", 200, 50, 20, 7, 5, 20, 60, 300, 2),
		rec("haircare", "Delhi", "Road", "Supplier 1", "Pending", "Route A", 50, 10, 10, 3, 4, 5, 40, 100, 3),
		rec("cosmetics", "Kolkata", "Sea", "Supplier 3", "Pass", "Route C", 80, 0, 30, 2, 6, 8, 20, 150, 4),
		rec("skincare", "Mumbai", "Rail", "Supplier 2", "Pass", "Route B", 120, 60, 20, 1, 2, 12, 10, 250, 0.5),
	})
}

// --- Assertions ---

func assertFloat(t *testing.T, got, want float64, msg string) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s: got %v, want %v", msg, got, want)
	}
}

func assertInt(t *testing.T, got, want int, msg string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: got %d, want %d", msg, got, want)
	}
}

func assertKeys(t *testing.T, res *AggregationResult, want ...string) {
	t.Helper()
	if len(res.Rows) != len(want) {
		t.Fatalf("got %d rows, want %d (%v)", len(res.Rows), len(want), rowLabels(res))
	}
	for i, r := range res.Rows {
		if r.Label() != want[i] {
			t.Errorf("row %d: got %q, want %q (all: %v)", i, r.Label(), want[i], rowLabels(res))
		}
	}
}

func rowLabels(res *AggregationResult) []string {
	out := make([]string, len(res.Rows))
	for i, r := range res.Rows {
		out[i] = r.Label()
	}
	return out
}
