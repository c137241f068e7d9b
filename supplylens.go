// Package supplylens provides a supply-chain analytics engine.
//
// Usage:
//
//	import (
//	    "github.com/spektr-org/supplylens/engine"
//	    "github.com/spektr-org/supplylens/helpers"
//	    "github.com/spektr-org/supplylens/schema"
//	)
//
//	ds, err := helpers.LoadFile("supply_chain_data.csv", schema.SupplyChain())
//	dash, err := engine.BuildDashboard(ds, engine.FilterSpec{
//	    engine.ColProductType: "skincare",
//	    engine.ColLocation:    engine.All,
//	})
//
// The dataset is loaded once and never changes. Filtering, aggregation and
// the KPI summary are pure functions of it and return plain data; any
// chart, table or HTTP response is built by the caller from that data.
package supplylens
