package helpers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/spektr-org/supplylens/engine"
	"github.com/spektr-org/supplylens/schema"
)

// ============================================================================
// CSV HELPER — Loads a supply-chain CSV into an engine.Dataset
// ============================================================================
// A missing column, a ragged row or a non-numeric value in a numeric column
// aborts the load with engine.ErrMalformedInput. No row is skipped.
// ============================================================================

// LoadFile reads and parses the CSV at path.
func LoadFile(path string, sch schema.Config) (*engine.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer f.Close()

	ds, err := LoadCSV(f, sch)
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", path, err)
	}
	log.Printf("📊 Loaded %d records from %s", ds.Len(), path)
	return ds, nil
}

// LoadCSV parses CSV from r into an immutable Dataset.
func LoadCSV(r io.Reader, sch schema.Config) (*engine.Dataset, error) {
	records, err := ParseCSV(r, sch)
	if err != nil {
		return nil, err
	}
	return engine.NewDataset(records), nil
}

// ParseCSV parses CSV from r into Records using sch to bind headers.
func ParseCSV(r io.Reader, sch schema.Config) ([]engine.Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &engine.InputError{Reason: "empty file, no header row"}
	}
	if err != nil {
		return nil, &engine.InputError{Reason: fmt.Sprintf("read header: %v", err)}
	}

	binding, err := sch.Resolve(headers)
	if err != nil {
		return nil, err
	}
	for _, s := range binding.Skipped {
		log.Printf("🔍 Ignoring column %q (%s)", s.Column, s.Reason)
	}

	integer := make(map[string]bool)
	for _, m := range sch.Measures {
		integer[m.Key] = m.Integer
	}

	var records []engine.Record
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &engine.InputError{Row: line, Reason: err.Error()}
		}

		p := rowParser{row: row, line: line, binding: binding, integer: integer}
		rec := engine.Record{
			ProductType:      p.dim(engine.ColProductType),
			Location:         p.dim(engine.ColLocation),
			TransportMode:    p.dim(engine.ColTransportMode),
			SupplierName:     p.dim(engine.ColSupplierName),
			InspectionResult: p.dim(engine.ColInspectionResult),
			Route:            p.dim(engine.ColRoute),

			Revenue:           p.float(engine.ColRevenue),
			ManufacturingCost: p.float(engine.ColManufacturingCost),
			Price:             p.float(engine.ColPrice),
			StockLevel:        p.int(engine.ColStockLevel),
			LeadTime:          p.float(engine.ColLeadTime),
			OrderQuantity:     p.int(engine.ColOrderQuantity),
			Availability:      p.float(engine.ColAvailability),
			ProductionVolume:  p.float(engine.ColProductionVolume),
			DefectRate:        p.float(engine.ColDefectRate),
		}
		if p.err != nil {
			return nil, p.err
		}
		records = append(records, rec)
	}

	return records, nil
}

// maxExactInt is the largest integer a float64 holds exactly (2^53).
const maxExactInt = 1 << 53

// rowParser reads typed fields from one CSV row, keeping the first error.
type rowParser struct {
	row     []string
	line    int
	binding *schema.Binding
	integer map[string]bool
	err     error
}

func (p *rowParser) dim(key string) string {
	return strings.TrimSpace(p.row[p.binding.Dimensions[key]])
}

func (p *rowParser) float(key string) float64 {
	if p.err != nil {
		return 0
	}
	raw := strings.TrimSpace(p.row[p.binding.Measures[key]])
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		p.err = &engine.InputError{Row: p.line, Column: key, Reason: fmt.Sprintf("not a number: %q", raw)}
		return 0
	}
	if p.integer[key] && f != math.Trunc(f) {
		p.err = &engine.InputError{Row: p.line, Column: key, Reason: fmt.Sprintf("not an integer: %q", raw)}
		return 0
	}
	// Integer columns are also read back as float64 measures.
	if p.integer[key] && math.Abs(f) > maxExactInt {
		p.err = &engine.InputError{Row: p.line, Column: key, Reason: fmt.Sprintf("integer out of range: %q", raw)}
		return 0
	}
	return f
}

func (p *rowParser) int(key string) int64 {
	return int64(p.float(key))
}
