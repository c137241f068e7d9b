package schema

import (
	"fmt"
	"strings"

	"github.com/spektr-org/supplylens/engine"
)

// ============================================================================
// SCHEMA — Column contract between the CSV file and the engine
// ============================================================================
// Each engine column is bound to one CSV header at load time. Headers are
// matched after snake-casing, aliases first, so the dashboard's source
// export ("Revenue generated", "Stock levels", ...) and a canonical file
// ("revenue", "stock_level", ...) both load.
// ============================================================================

// Config describes the columns a dataset must provide.
type Config struct {
	Name        string          `json:"name"`
	Version     string          `json:"version,omitempty"`
	Description string          `json:"description,omitempty"`
	Dimensions  []DimensionMeta `json:"dimensions"`
	Measures    []MeasureMeta   `json:"measures"`
}

// DimensionMeta describes a categorical column.
type DimensionMeta struct {
	Key         string   `json:"key"`
	DisplayName string   `json:"displayName"`
	Aliases     []string `json:"aliases,omitempty"`
	Filterable  bool     `json:"filterable"` // offered as a dashboard selector
}

// MeasureMeta describes a numeric column.
type MeasureMeta struct {
	Key         string   `json:"key"`
	DisplayName string   `json:"displayName"`
	Aliases     []string `json:"aliases,omitempty"`
	Unit        string   `json:"unit,omitempty"` // "currency", "units", "days", "percent"
	Integer     bool     `json:"integer,omitempty"`
}

// SkippedColumn records a CSV header that no column was bound to.
type SkippedColumn struct {
	Column string `json:"column"`
	Reason string `json:"reason"`
}

// SupplyChain returns the built-in supply-chain schema.
func SupplyChain() Config {
	dim := func(key string, filterable bool, aliases ...string) DimensionMeta {
		return DimensionMeta{
			Key:         key,
			DisplayName: engine.LabelForColumn(key),
			Aliases:     aliases,
			Filterable:  filterable,
		}
	}
	mes := func(key, unit string, integer bool, aliases ...string) MeasureMeta {
		return MeasureMeta{
			Key:         key,
			DisplayName: engine.LabelForColumn(key),
			Aliases:     aliases,
			Unit:        unit,
			Integer:     integer,
		}
	}

	return Config{
		Name:        "Supply Chain",
		Version:     "1.0",
		Description: "Supply-chain transactions: products, logistics, suppliers and quality",
		Dimensions: []DimensionMeta{
			dim(engine.ColProductType, true, "Product type"),
			dim(engine.ColLocation, true, "Location"),
			dim(engine.ColTransportMode, true, "Transportation modes", "Transport mode"),
			dim(engine.ColSupplierName, false, "Supplier name"),
			dim(engine.ColInspectionResult, false, "Inspection results"),
			dim(engine.ColRoute, false, "Routes"),
		},
		Measures: []MeasureMeta{
			mes(engine.ColRevenue, "currency", false, "Revenue generated"),
			mes(engine.ColManufacturingCost, "currency", false, "Manufacturing costs"),
			mes(engine.ColPrice, "currency", false, "Price"),
			mes(engine.ColStockLevel, "units", true, "Stock levels"),
			mes(engine.ColLeadTime, "days", false, "Lead times"),
			mes(engine.ColOrderQuantity, "units", true, "Order quantities"),
			mes(engine.ColAvailability, "units", false, "Availability"),
			mes(engine.ColProductionVolume, "units", false, "Production volumes"),
			mes(engine.ColDefectRate, "percent", false, "Defect rates"),
		},
	}
}

// DimensionKeys returns all dimension keys.
func (c Config) DimensionKeys() []string {
	keys := make([]string, len(c.Dimensions))
	for i, d := range c.Dimensions {
		keys[i] = d.Key
	}
	return keys
}

// MeasureKeys returns all measure keys.
func (c Config) MeasureKeys() []string {
	keys := make([]string, len(c.Measures))
	for i, m := range c.Measures {
		keys[i] = m.Key
	}
	return keys
}

// FilterColumns returns the keys of filterable dimensions.
func (c Config) FilterColumns() []string {
	var keys []string
	for _, d := range c.Dimensions {
		if d.Filterable {
			keys = append(keys, d.Key)
		}
	}
	return keys
}

// Measure returns the metadata for a measure key.
func (c Config) Measure(key string) (MeasureMeta, bool) {
	for _, m := range c.Measures {
		if m.Key == key {
			return m, true
		}
	}
	return MeasureMeta{}, false
}

// Validate checks that c declares every column the engine reads.
// A custom schema may rename aliases but not drop columns.
func (c Config) Validate() error {
	declared := make(map[string]bool)
	for _, k := range c.DimensionKeys() {
		declared[k] = true
	}
	for _, k := range c.MeasureKeys() {
		declared[k] = true
	}

	var missing []string
	ref := SupplyChain()
	for _, k := range append(ref.DimensionKeys(), ref.MeasureKeys()...) {
		if !declared[k] {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("schema %q does not declare %s", c.Name, strings.Join(missing, ", "))
	}
	return nil
}

// NormalizeHeader converts "Column Name" → "column_name".
func NormalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}
