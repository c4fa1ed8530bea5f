package codec

// Shared helpers for the arrow-backed formats (parquet, feather): building
// an arrow schema/record from a table and converting arrow columns back.

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/nuh1233/DataPipeline/pkg/table"
)

func arrowSchema(t *table.Table) *arrow.Schema {
	fields := make([]arrow.Field, t.NumCols())
	for i, name := range t.Columns() {
		kind, _ := columnKind(t, i)
		var dt arrow.DataType
		switch kind {
		case table.KindFloat:
			dt = arrow.PrimitiveTypes.Float64
		case table.KindInt:
			dt = arrow.PrimitiveTypes.Int64
		case table.KindBool:
			dt = arrow.FixedWidthTypes.Boolean
		default:
			dt = arrow.BinaryTypes.String
		}
		fields[i] = arrow.Field{Name: name, Type: dt, Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

func buildArrowRecord(mem memory.Allocator, schema *arrow.Schema, t *table.Table) arrow.Record {
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	for i := 0; i < t.NumRows(); i++ {
		row := t.Row(i)
		for j := range schema.Fields() {
			v := row[j]
			if v.IsNull() {
				b.Field(j).AppendNull()
				continue
			}
			switch fb := b.Field(j).(type) {
			case *array.Float64Builder:
				fb.Append(v.Float())
			case *array.Int64Builder:
				fb.Append(v.Int())
			case *array.BooleanBuilder:
				fb.Append(v.Bool())
			case *array.StringBuilder:
				fb.Append(v.String())
			default:
				b.Field(j).AppendNull()
			}
		}
	}
	return b.NewRecord()
}

func tableFromArrow(at arrow.Table) (*table.Table, error) {
	schema := at.Schema()
	columns := make([]string, len(schema.Fields()))
	for i, f := range schema.Fields() {
		columns[i] = f.Name
	}

	rows := make([][]table.Value, at.NumRows())
	for i := range rows {
		rows[i] = make([]table.Value, len(columns))
	}
	for c := 0; c < int(at.NumCols()); c++ {
		offset := 0
		for _, chunk := range at.Column(c).Data().Chunks() {
			for i := 0; i < chunk.Len(); i++ {
				rows[offset+i][c] = arrowValue(chunk, i)
			}
			offset += chunk.Len()
		}
	}
	return table.New(columns, rows)
}

func arrowValue(arr arrow.Array, i int) table.Value {
	if arr.IsNull(i) {
		return table.Null()
	}
	switch a := arr.(type) {
	case *array.Boolean:
		return table.Bool(a.Value(i))
	case *array.Int8:
		return table.Int(int64(a.Value(i)))
	case *array.Int16:
		return table.Int(int64(a.Value(i)))
	case *array.Int32:
		return table.Int(int64(a.Value(i)))
	case *array.Int64:
		return table.Int(a.Value(i))
	case *array.Uint8:
		return table.Int(int64(a.Value(i)))
	case *array.Uint16:
		return table.Int(int64(a.Value(i)))
	case *array.Uint32:
		return table.Int(int64(a.Value(i)))
	case *array.Uint64:
		return table.Int(int64(a.Value(i)))
	case *array.Float32:
		return table.Float(float64(a.Value(i)))
	case *array.Float64:
		return table.Float(a.Value(i))
	case *array.String:
		return table.String(a.Value(i))
	case *array.LargeString:
		return table.String(a.Value(i))
	default:
		return table.String(arr.ValueStr(i))
	}
}
