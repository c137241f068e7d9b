package engine

import (
	"encoding/json"
	"sort"
	"strings"
)

// ============================================================================
// SUPPLYLENS ENGINE TYPES — Supply-Chain Analytics Core
// ============================================================================
// Record (typed row) → Dataset (immutable) → RecordView (read access)
// FilterSpec → Apply → filtered RecordView
// Query → Aggregate → AggregationResult
// Summarize → SummaryTotals
// ============================================================================

// ============================================================================
// COLUMNS
// ============================================================================

// Categorical columns.
const (
	ColProductType      = "product_type"
	ColLocation         = "location"
	ColTransportMode    = "transport_mode"
	ColSupplierName     = "supplier_name"
	ColInspectionResult = "inspection_result"
	ColRoute            = "route"
)

// Numeric columns.
const (
	ColRevenue           = "revenue"
	ColManufacturingCost = "manufacturing_cost"
	ColPrice             = "price"
	ColStockLevel        = "stock_level"
	ColLeadTime          = "lead_time"
	ColOrderQuantity     = "order_quantity"
	ColAvailability      = "availability"
	ColProductionVolume  = "production_volume"
	ColDefectRate        = "defect_rate"
)

// ============================================================================
// RECORD
// ============================================================================

// Record is one supply-chain transaction row.
type Record struct {
	ProductType      string `json:"product_type"`
	Location         string `json:"location"`
	TransportMode    string `json:"transport_mode"`
	SupplierName     string `json:"supplier_name"`
	InspectionResult string `json:"inspection_result"`
	Route            string `json:"route"`

	Revenue           float64 `json:"revenue"`
	ManufacturingCost float64 `json:"manufacturing_cost"`
	Price             float64 `json:"price"`
	StockLevel        int64   `json:"stock_level"`
	LeadTime          float64 `json:"lead_time"`
	OrderQuantity     int64   `json:"order_quantity"`
	Availability      float64 `json:"availability"`
	ProductionVolume  float64 `json:"production_volume"`
	DefectRate        float64 `json:"defect_rate"`
}

// ============================================================================
// FILTERSPEC
// ============================================================================

// All is the selector value meaning "no constraint on this column".
const All = "All"

// FilterSpec maps a categorical column to its selected value.
// A missing key, an empty value, or All leaves the column unconstrained.
type FilterSpec map[string]string

// Active returns the constrained columns in sorted order.
func (f FilterSpec) Active() []string {
	keys := make([]string, 0, len(f))
	for k, v := range f {
		if isActive(v) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// IsEmpty returns true if no column is constrained.
func (f FilterSpec) IsEmpty() bool {
	for _, v := range f {
		if isActive(v) {
			return false
		}
	}
	return true
}

// Key returns a canonical string for the active constraints.
// Two specs selecting the same rows by the same constraints share a key.
func (f FilterSpec) Key() string {
	active := f.Active()
	parts := make([]string, len(active))
	for i, k := range active {
		parts[i] = k + "=" + f[k]
	}
	return strings.Join(parts, "\x1f")
}

func isActive(v string) bool {
	return v != "" && v != All
}

// ============================================================================
// AGGREGATION
// ============================================================================

// Op is an aggregation operation.
type Op string

const (
	OpSum   Op = "sum"
	OpMean  Op = "mean"
	OpCount Op = "count"
	OpRatio Op = "ratio" // sum(Measure) / sum(Denominator)
)

// Order controls row ordering of an AggregationResult.
type Order string

const (
	OrderDesc Order = "desc" // by value, largest first
	OrderAsc  Order = "asc"  // by value, smallest first
	OrderKey  Order = "key"  // by group key only
	OrderNone Order = "none" // first-seen order
)

// Query describes one aggregation over a view.
type Query struct {
	GroupBy     []string `json:"groupBy"`
	Op          Op       `json:"op"`
	Measure     string   `json:"measure,omitempty"`     // sum, mean, ratio numerator
	Denominator string   `json:"denominator,omitempty"` // ratio only
	Order       Order    `json:"order,omitempty"`       // empty = desc
	Limit       int      `json:"limit,omitempty"`       // 0 = all
}

// Row is one group of an AggregationResult.
//
// Undefined is set for a ratio whose denominator sum is exactly zero;
// Value is then 0 and carries no meaning.
type Row struct {
	Key         []string
	Value       float64
	Undefined   bool
	Count       int
	Numerator   float64
	Denominator float64
	View        RecordView // records in this group (zero-copy)
}

// Label joins the key parts for display.
func (r Row) Label() string {
	return strings.Join(r.Key, " / ")
}

// MarshalJSON writes an undefined value as null.
func (r Row) MarshalJSON() ([]byte, error) {
	type rowJSON struct {
		Key         []string `json:"key"`
		Value       *float64 `json:"value"`
		Undefined   bool     `json:"undefined,omitempty"`
		Count       int      `json:"count"`
		Numerator   *float64 `json:"numerator,omitempty"`
		Denominator *float64 `json:"denominator,omitempty"`
	}
	out := rowJSON{Key: r.Key, Undefined: r.Undefined, Count: r.Count}
	if !r.Undefined {
		v := r.Value
		out.Value = &v
	}
	if r.Undefined || r.Numerator != 0 || r.Denominator != 0 {
		n, d := r.Numerator, r.Denominator
		out.Numerator = &n
		out.Denominator = &d
	}
	return json.Marshal(out)
}

// AggregationResult is an ordered, immutable list of grouped values.
type AggregationResult struct {
	Query Query `json:"query"`
	Rows  []Row `json:"rows"`
}

// Len returns the number of groups.
func (a *AggregationResult) Len() int {
	if a == nil {
		return 0
	}
	return len(a.Rows)
}

// Lookup returns the row for a group key.
func (a *AggregationResult) Lookup(key ...string) (Row, bool) {
	if a == nil {
		return Row{}, false
	}
	for _, r := range a.Rows {
		if equalKeys(r.Key, key) {
			return r, true
		}
	}
	return Row{}, false
}

func equalKeys(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ============================================================================
// COMPARISON & SCATTER
// ============================================================================

// ComparisonRow holds two per-group sums and their difference.
type ComparisonRow struct {
	Key    []string `json:"key"`
	A      float64  `json:"a"`
	B      float64  `json:"b"`
	Margin float64  `json:"margin"` // A - B, rounded to 2 places
	Count  int      `json:"count"`
}

// ScatterPoint is one record projected onto two axes.
type ScatterPoint struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Size  float64 `json:"size"`
	Color string  `json:"color"`
}
