package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV writes t as CSV. Whole numbers print without decimals,
// fractional ones with two, nil cells as empty.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	for _, row := range t.Rows {
		out := make([]string, len(row))
		for i, v := range row {
			out[i] = formatCell(v)
		}
		if err := cw.Write(out); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatCell(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return fmtNum(x)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

func fmtNum(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
