package engine

import (
	"fmt"
	"log"
)

// ============================================================================
// DASHBOARD — Filter once, then summary + every widget
// ============================================================================
// Pipeline:
//   1. Apply FilterSpec → SubView (the only step that can fail the build)
//   2. Summarize the filtered view
//   3. Run each widget; a widget error is kept on that widget only
//
// The output is plain data. Colours, labels and layout belong to whoever
// renders it.
// ============================================================================

// WidgetKind names the shape of a widget's data.
type WidgetKind string

const (
	KindAggregation WidgetKind = "aggregation"
	KindComparison  WidgetKind = "comparison"
	KindScatter     WidgetKind = "scatter"
)

// CompareSpec configures a CompareSums widget.
type CompareSpec struct {
	GroupBy string `json:"groupBy"`
	A       string `json:"a"`
	B       string `json:"b"`
}

// ScatterSpec configures a Scatter widget.
type ScatterSpec struct {
	X     string `json:"x"`
	Y     string `json:"y"`
	Size  string `json:"size"`
	Color string `json:"color"`
}

// WidgetDef declares one widget. Exactly one of Query, Compare, Scatter is set.
type WidgetDef struct {
	Name    string
	Title   string
	Query   *Query
	Compare *CompareSpec
	Scatter *ScatterSpec
}

// Kind reports which computation the definition runs.
func (d WidgetDef) Kind() WidgetKind {
	switch {
	case d.Compare != nil:
		return KindComparison
	case d.Scatter != nil:
		return KindScatter
	default:
		return KindAggregation
	}
}

// Widget is a computed widget.
type Widget struct {
	Name       string             `json:"name"`
	Title      string             `json:"title"`
	Kind       WidgetKind         `json:"kind"`
	Result     *AggregationResult `json:"result,omitempty"`
	Comparison []ComparisonRow    `json:"comparison,omitempty"`
	Points     []ScatterPoint     `json:"points,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// Dashboard is the full computed output for one FilterSpec.
type Dashboard struct {
	Filters FilterSpec    `json:"filters"`
	Summary SummaryTotals `json:"summary"`
	Widgets []Widget      `json:"widgets"`
}

// Widget returns the widget with the given name.
func (d *Dashboard) Widget(name string) (Widget, bool) {
	for _, w := range d.Widgets {
		if w.Name == name {
			return w, true
		}
	}
	return Widget{}, false
}

// BuildDashboard filters view by spec and computes the summary and widgets.
func BuildDashboard(view RecordView, spec FilterSpec, opts ...Option) (*Dashboard, error) {
	cfg := applyOptions(opts)

	filtered, err := Apply(view, spec)
	if err != nil {
		return nil, err
	}
	if cfg.Verbose {
		log.Printf("🔧 Supplylens: %d records after filtering (from %d), filters=%v",
			filtered.Len(), view.Len(), spec.Active())
	}

	d := &Dashboard{
		Filters: copySpec(spec),
		Summary: Summarize(filtered),
		Widgets: make([]Widget, 0, len(cfg.Widgets)),
	}
	for _, def := range cfg.Widgets {
		w := runWidget(filtered, def, cfg.TopN)
		if w.Error != "" {
			log.Printf("⚠️ Supplylens: widget %s failed: %s", def.Name, w.Error)
		}
		d.Widgets = append(d.Widgets, w)
	}
	return d, nil
}

func runWidget(view RecordView, def WidgetDef, topN int) Widget {
	w := Widget{Name: def.Name, Title: def.Title, Kind: def.Kind()}

	var err error
	switch w.Kind {
	case KindComparison:
		w.Comparison, err = CompareSums(view, def.Compare.GroupBy, def.Compare.A, def.Compare.B)
	case KindScatter:
		s := def.Scatter
		w.Points, err = Scatter(view, s.X, s.Y, s.Size, s.Color)
	default:
		if def.Query == nil {
			err = fmt.Errorf("widget %q has no query", def.Name)
			break
		}
		q := *def.Query
		if q.Limit == 0 {
			q.Limit = topN
		}
		w.Result, err = Aggregate(view, q)
	}
	if err != nil {
		w.Error = err.Error()
	}
	return w
}

// copySpec keeps only the active constraints, so equivalent specs yield
// equal Filters.
func copySpec(spec FilterSpec) FilterSpec {
	out := make(FilterSpec, len(spec))
	for k, v := range spec {
		if isActive(v) {
			out[k] = v
		}
	}
	return out
}

// ============================================================================
// DEFAULT WIDGETS
// ============================================================================

// Widget names.
const (
	WidgetRevenueByProductType     = "revenue_by_product_type"
	WidgetCostByInspectionResult   = "cost_by_inspection_result"
	WidgetCostBySupplier           = "cost_by_supplier"
	WidgetCostVsRevenue            = "cost_vs_revenue"
	WidgetOrdersByTransportMode    = "orders_by_transport_mode"
	WidgetProductionByLocation     = "production_by_location"
	WidgetDefectRateByProductType  = "defect_rate_by_product_type"
	WidgetCostEfficiencyBySupplier = "cost_efficiency_by_supplier"
	WidgetDemandByPrice            = "demand_by_price"
	WidgetPriceVsCostByProductType = "price_vs_cost_by_product_type"
	WidgetLeadTimeByProductType    = "lead_time_by_product_type"
	WidgetRouteFrequency           = "route_frequency"
)

// DefaultWidgets returns the dashboard's widgets in display order.
func DefaultWidgets() []WidgetDef {
	sum := func(groupBy, measure string) *Query {
		return &Query{GroupBy: []string{groupBy}, Op: OpSum, Measure: measure, Order: OrderDesc}
	}
	mean := func(groupBy, measure string) *Query {
		return &Query{GroupBy: []string{groupBy}, Op: OpMean, Measure: measure, Order: OrderDesc}
	}

	return []WidgetDef{
		{Name: WidgetRevenueByProductType, Title: "Revenue by Product Type",
			Query: sum(ColProductType, ColRevenue)},
		{Name: WidgetCostByInspectionResult, Title: "Manufacturing Costs by Inspection Result",
			Query: sum(ColInspectionResult, ColManufacturingCost)},
		{Name: WidgetCostBySupplier, Title: "Costs by Supplier",
			Query: sum(ColSupplierName, ColManufacturingCost)},
		{Name: WidgetCostVsRevenue, Title: "Manufacturing Costs vs Revenue",
			Scatter: &ScatterSpec{X: ColManufacturingCost, Y: ColRevenue, Size: ColPrice, Color: ColProductType}},
		{Name: WidgetOrdersByTransportMode, Title: "Order Quantities by Transport Mode",
			Query: sum(ColTransportMode, ColOrderQuantity)},
		{Name: WidgetProductionByLocation, Title: "Production Volumes by Location",
			Query: sum(ColLocation, ColProductionVolume)},
		{Name: WidgetDefectRateByProductType, Title: "Average Defect Rates by Product",
			Query: mean(ColProductType, ColDefectRate)},
		{Name: WidgetCostEfficiencyBySupplier, Title: "Cost Efficiency by Supplier",
			Query: &Query{GroupBy: []string{ColSupplierName}, Op: OpRatio,
				Measure: ColRevenue, Denominator: ColManufacturingCost, Order: OrderDesc}},
		{Name: WidgetDemandByPrice, Title: "Demand by Price",
			Query: &Query{GroupBy: []string{ColPrice}, Op: OpSum, Measure: ColOrderQuantity, Order: OrderKey}},
		{Name: WidgetPriceVsCostByProductType, Title: "Price vs Manufacturing Costs by Product",
			Compare: &CompareSpec{GroupBy: ColProductType, A: ColPrice, B: ColManufacturingCost}},
		{Name: WidgetLeadTimeByProductType, Title: "Average Lead Time by Product Type",
			Query: mean(ColProductType, ColLeadTime)},
		{Name: WidgetRouteFrequency, Title: "Transportation Routes Frequency",
			Query: &Query{GroupBy: []string{ColRoute}, Op: OpCount, Order: OrderDesc}},
	}
}

// SelectWidgets returns the default widgets with the given names, in the
// order given. No names selects all.
func SelectWidgets(names ...string) ([]WidgetDef, error) {
	defaults := DefaultWidgets()
	if len(names) == 0 {
		return defaults, nil
	}
	byName := make(map[string]WidgetDef, len(defaults))
	for _, d := range defaults {
		byName[d.Name] = d
	}
	out := make([]WidgetDef, 0, len(names))
	for _, n := range names {
		d, ok := byName[n]
		if !ok {
			return nil, fmt.Errorf("unknown widget %q", n)
		}
		out = append(out, d)
	}
	return out, nil
}
