package engine

import (
	"github.com/shopspring/decimal"
)

// ============================================================================
// SUMMARY — Whole-view KPI totals
// ============================================================================
// Sums are accumulated as decimals so money totals do not drift with row
// count. Revenue is reported at two places, matching the KPI card.
// ============================================================================

// SummaryTotals holds the six whole-view totals.
type SummaryTotals struct {
	Records            int             `json:"records"`
	Revenue            decimal.Decimal `json:"total_revenue"`
	StockLevels        int64           `json:"total_stock"`
	LeadTimes          decimal.Decimal `json:"total_lead_time"`
	Orders             int64           `json:"total_orders"`
	Availability       decimal.Decimal `json:"total_availability"`
	ManufacturingCosts decimal.Decimal `json:"total_manufacturing_cost"`
}

// Summarize computes SummaryTotals over view. An empty view yields zeros.
func Summarize(view RecordView) SummaryTotals {
	var (
		revenue      = decimal.Zero
		leadTimes    = decimal.Zero
		availability = decimal.Zero
		costs        = decimal.Zero
		stock        int64
		orders       int64
	)

	n := view.Len()
	for i := 0; i < n; i++ {
		revenue = revenue.Add(decimal.NewFromFloat(view.Measure(i, ColRevenue)))
		leadTimes = leadTimes.Add(decimal.NewFromFloat(view.Measure(i, ColLeadTime)))
		availability = availability.Add(decimal.NewFromFloat(view.Measure(i, ColAvailability)))
		costs = costs.Add(decimal.NewFromFloat(view.Measure(i, ColManufacturingCost)))
		stock += int64(view.Measure(i, ColStockLevel))
		orders += int64(view.Measure(i, ColOrderQuantity))
	}

	return SummaryTotals{
		Records:            n,
		Revenue:            revenue.Round(2),
		StockLevels:        stock,
		LeadTimes:          leadTimes,
		Orders:             orders,
		Availability:       availability,
		ManufacturingCosts: costs,
	}
}

// IsZero reports whether every total is zero.
func (s SummaryTotals) IsZero() bool {
	return s.Revenue.IsZero() && s.StockLevels == 0 && s.LeadTimes.IsZero() &&
		s.Orders == 0 && s.Availability.IsZero() && s.ManufacturingCosts.IsZero()
}
