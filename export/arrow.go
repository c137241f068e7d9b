package export

import (
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/spektr-org/supplylens/engine"
)

// ArrowSchema returns the columnar schema of view: categorical columns as
// utf8, numeric columns as float64, in view key order.
func ArrowSchema(view engine.RecordView) *arrow.Schema {
	dims, meas := view.DimensionKeys(), view.MeasureKeys()
	fields := make([]arrow.Field, 0, len(dims)+len(meas))
	for _, k := range dims {
		fields = append(fields, arrow.Field{Name: k, Type: arrow.BinaryTypes.String})
	}
	for _, k := range meas {
		fields = append(fields, arrow.Field{Name: k, Type: arrow.PrimitiveTypes.Float64})
	}
	return arrow.NewSchema(fields, nil)
}

// WriteArrow writes view as an Arrow IPC stream holding one record batch.
func WriteArrow(w io.Writer, view engine.RecordView) error {
	mem := memory.NewGoAllocator()
	sc := ArrowSchema(view)

	b := array.NewRecordBuilder(mem, sc)
	defer b.Release()

	dims, meas := view.DimensionKeys(), view.MeasureKeys()
	n := view.Len()
	for c, k := range dims {
		fb := b.Field(c).(*array.StringBuilder)
		fb.Reserve(n)
		for i := 0; i < n; i++ {
			fb.Append(view.Dimension(i, k))
		}
	}
	for c, k := range meas {
		fb := b.Field(len(dims) + c).(*array.Float64Builder)
		fb.Reserve(n)
		for i := 0; i < n; i++ {
			fb.Append(view.Measure(i, k))
		}
	}

	rec := b.NewRecord()
	defer rec.Release()

	wr := ipc.NewWriter(w, ipc.WithSchema(sc), ipc.WithAllocator(mem))
	if err := wr.Write(rec); err != nil {
		_ = wr.Close()
		return fmt.Errorf("write arrow batch: %w", err)
	}
	if err := wr.Close(); err != nil {
		return fmt.Errorf("close arrow stream: %w", err)
	}
	return nil
}
