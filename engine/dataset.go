package engine

// ============================================================================
// DATASET — Immutable, load-once table of Records
// ============================================================================
// Built once at process start (see helpers.LoadFile) and handed by reference
// to every consumer. Nothing in the engine mutates it.
// ============================================================================

var recordAdapter = NewDomainAdapter[Record]().
	Dimension(ColProductType, func(r Record) string { return r.ProductType }).
	Dimension(ColLocation, func(r Record) string { return r.Location }).
	Dimension(ColTransportMode, func(r Record) string { return r.TransportMode }).
	Dimension(ColSupplierName, func(r Record) string { return r.SupplierName }).
	Dimension(ColInspectionResult, func(r Record) string { return r.InspectionResult }).
	Dimension(ColRoute, func(r Record) string { return r.Route }).
	Measure(ColRevenue, func(r Record) float64 { return r.Revenue }).
	Measure(ColManufacturingCost, func(r Record) float64 { return r.ManufacturingCost }).
	Measure(ColPrice, func(r Record) float64 { return r.Price }).
	Measure(ColStockLevel, func(r Record) float64 { return float64(r.StockLevel) }).
	Measure(ColLeadTime, func(r Record) float64 { return r.LeadTime }).
	Measure(ColOrderQuantity, func(r Record) float64 { return float64(r.OrderQuantity) }).
	Measure(ColAvailability, func(r Record) float64 { return r.Availability }).
	Measure(ColProductionVolume, func(r Record) float64 { return r.ProductionVolume }).
	Measure(ColDefectRate, func(r Record) float64 { return r.DefectRate })

// Dataset is the full in-memory table. It implements RecordView.
type Dataset struct {
	RecordView
	records []Record
}

// NewDataset copies records into a new immutable Dataset.
func NewDataset(records []Record) *Dataset {
	owned := make([]Record, len(records))
	copy(owned, records)
	return &Dataset{
		RecordView: recordAdapter.Bind(owned),
		records:    owned,
	}
}

// Record returns a copy of the i-th record.
func (d *Dataset) Record(i int) Record {
	return d.records[i]
}
