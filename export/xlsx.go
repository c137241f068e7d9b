package export

import (
	"fmt"
	"io"

	"github.com/spektr-org/supplylens/engine"
	"github.com/xuri/excelize/v2"
)

const summarySheet = "Summary"

// WriteXLSX writes d as a workbook: a Summary sheet with the KPI totals,
// then one sheet per widget in dashboard order.
func WriteXLSX(w io.Writer, d *engine.Dashboard) error {
	f, err := BuildWorkbook(d)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// BuildWorkbook lays d out in a new in-memory workbook. Callers close it.
func BuildWorkbook(d *engine.Dashboard) (*excelize.File, error) {
	f := excelize.NewFile()

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, summarySheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeTable(f, summarySheet, SummaryTable(d.Summary)); err != nil {
		_ = f.Close()
		return nil, err
	}

	for _, wdg := range d.Widgets {
		name := sheetName(wdg.Name)
		if _, err := f.NewSheet(name); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
		if err := writeTable(f, name, WidgetTable(wdg)); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

func writeTable(f *excelize.File, sheet string, t Table) error {
	header := make([]interface{}, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("sheet %s header: %w", sheet, err)
	}
	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := row
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}

// sheetName fits a widget name into Excel's 31-character sheet limit.
func sheetName(name string) string {
	if len(name) > 31 {
		return name[:31]
	}
	return name
}
