package core

// arrow.go exports a sniffed document as an Arrow IPC stream: one record
// batch whose columns are typed from the column summary kinds. Cells that do
// not fit their column are null.

import (
	"context"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/JonMunkholm/typesniff/internal/classify"
	"github.com/JonMunkholm/typesniff/internal/sniff"
)

// ArrowType maps a column summary kind to an Arrow data type.
func ArrowType(kind classify.Kind) arrow.DataType {
	switch kind {
	case classify.KindInt, classify.KindHex:
		return arrow.PrimitiveTypes.Int64
	case classify.KindFloat:
		return arrow.PrimitiveTypes.Float64
	case classify.KindBool:
		return arrow.FixedWidthTypes.Boolean
	case classify.KindDate:
		return arrow.FixedWidthTypes.Date32
	case classify.KindTime:
		return arrow.FixedWidthTypes.Time64us
	case classify.KindDateTime:
		return &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}
	}
	return arrow.BinaryTypes.String
}

// ArrowSchema builds the Arrow schema of a sniffed document.
func ArrowSchema(schema *sniff.Schema) *arrow.Schema {
	cols := IngestColumns(schema)
	fields := make([]arrow.Field, len(schema.Columns))
	for i, c := range schema.Columns {
		fields[i] = arrow.Field{Name: cols[i].Name, Type: ArrowType(c.Type), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

// ExportArrow sniffs content and writes it to w as an Arrow IPC stream.
// It returns the number of rows written.
func (s *Service) ExportArrow(ctx context.Context, w io.Writer, content string, req SniffRequest) (int64, error) {
	sniffed, err := s.SniffContent(ctx, content, req)
	if err != nil {
		return 0, err
	}
	return WriteArrow(w, sniff.Records(content, sniffed.Schema), sniffed.Schema, s.classifier)
}

// WriteArrow writes records as a single-batch Arrow IPC stream.
func WriteArrow(w io.Writer, records [][]string, schema *sniff.Schema, c *classify.Classifier) (int64, error) {
	mem := memory.NewGoAllocator()
	as := ArrowSchema(schema)

	b := array.NewRecordBuilder(mem, as)
	defer b.Release()

	for _, rec := range records {
		for j, col := range schema.Columns {
			cell := ""
			if j < len(rec) {
				cell = rec[j]
			}
			appendArrow(b.Field(j), c.Classify(cell), col.Type)
		}
	}

	batch := b.NewRecord()
	defer batch.Release()

	writer := ipc.NewWriter(w, ipc.WithSchema(as), ipc.WithAllocator(mem))
	if err := writer.Write(batch); err != nil {
		writer.Close()
		return 0, fmt.Errorf("write arrow batch: %w", err)
	}
	if err := writer.Close(); err != nil {
		return 0, fmt.Errorf("close arrow stream: %w", err)
	}
	return batch.NumRows(), nil
}

func appendArrow(fb array.Builder, v classify.Value, target classify.Kind) {
	if v.Kind == classify.KindNull {
		fb.AppendNull()
		return
	}

	switch bld := fb.(type) {
	case *array.Int64Builder:
		switch v.Kind {
		case classify.KindInt:
			bld.Append(v.Int)
			return
		case classify.KindHex:
			bld.Append(int64(v.Hex))
			return
		}
	case *array.Float64Builder:
		switch v.Kind {
		case classify.KindFloat:
			bld.Append(v.Float)
			return
		case classify.KindInt:
			bld.Append(float64(v.Int))
			return
		}
	case *array.BooleanBuilder:
		if v.Kind == classify.KindBool {
			bld.Append(v.Bool)
			return
		}
	case *array.Date32Builder:
		if d, ok := calendarDate(v); ok {
			bld.Append(arrow.Date32FromTime(d))
			return
		}
	case *array.Time64Builder:
		if v.Kind == classify.KindTime {
			bld.Append(arrow.Time64(timeOfDayMicros(v.DateTime.Time())))
			return
		}
	case *array.TimestampBuilder:
		if v.Kind == classify.KindDateTime {
			bld.Append(arrow.Timestamp(v.DateTime.Time().UnixMicro()))
			return
		}
	case *array.StringBuilder:
		bld.Append(sniff.Unquote(v.Raw))
		return
	}
	fb.AppendNull()
}
