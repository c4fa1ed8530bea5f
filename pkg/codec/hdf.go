package codec

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/hdf5"

	"github.com/nuh1233/DataPipeline/pkg/table"
)

// hdfCodec stores a table as one 1-D HDF5 dataset per column, plus two
// string datasets recording column order and storage types. Storage types:
// float64, int64, bool (as int8), string. Nulls are represented per type:
// NaN for floats, empty string for strings; int columns containing nulls
// are promoted to float, bool columns containing nulls to string.
type hdfCodec struct{}

const (
	hdfColumnsDataset = "__columns__"
	hdfTypesDataset   = "__types__"
)

func (hdfCodec) write(ctx context.Context, path string, t *table.Table, opts WriteOptions) error {
	f, err := hdf5.CreateFile(path, hdf5.F_ACC_TRUNC)
	if err != nil {
		return err
	}
	defer f.Close()

	cols := t.Columns()
	n := t.NumRows()
	typeNames := make([]string, len(cols))

	for c, name := range cols {
		kind, hasNull := columnKind(t, c)
		if kind == table.KindInt && hasNull {
			kind = table.KindFloat
		}
		if kind == table.KindBool && hasNull {
			kind = table.KindString
		}

		switch kind {
		case table.KindFloat:
			typeNames[c] = "float"
			data := make([]float64, n)
			for i := 0; i < n; i++ {
				if v := t.Row(i)[c]; v.IsNull() {
					data[i] = math.NaN()
				} else {
					data[i] = v.Float()
				}
			}
			err = writeHDFDataset(f, name, hdf5.T_NATIVE_DOUBLE, &data, n)
		case table.KindInt:
			typeNames[c] = "int"
			data := make([]int64, n)
			for i := 0; i < n; i++ {
				data[i] = t.Row(i)[c].Int()
			}
			err = writeHDFDataset(f, name, hdf5.T_NATIVE_INT64, &data, n)
		case table.KindBool:
			typeNames[c] = "bool"
			data := make([]int8, n)
			for i := 0; i < n; i++ {
				if t.Row(i)[c].Bool() {
					data[i] = 1
				}
			}
			err = writeHDFDataset(f, name, hdf5.T_NATIVE_INT8, &data, n)
		default:
			typeNames[c] = "string"
			data := make([]string, n)
			for i := 0; i < n; i++ {
				data[i] = t.Row(i)[c].String()
			}
			err = writeHDFDataset(f, name, hdf5.T_GO_STRING, &data, n)
		}
		if err != nil {
			return fmt.Errorf("failed to write column %q: %w", name, err)
		}
	}

	colsCopy := append([]string(nil), cols...)
	if err := writeHDFDataset(f, hdfColumnsDataset, hdf5.T_GO_STRING, &colsCopy, len(colsCopy)); err != nil {
		return err
	}
	return writeHDFDataset(f, hdfTypesDataset, hdf5.T_GO_STRING, &typeNames, len(typeNames))
}

func writeHDFDataset(f *hdf5.File, name string, dtype *hdf5.Datatype, data any, n int) error {
	dims := []uint{uint(n)}
	dspace, err := hdf5.CreateSimpleDataspace(dims, nil)
	if err != nil {
		return err
	}
	defer dspace.Close()
	dset, err := f.CreateDataset(name, dtype, dspace)
	if err != nil {
		return err
	}
	defer dset.Close()
	return dset.Write(data)
}

func (hdfCodec) read(ctx context.Context, path string) (*table.Table, error) {
	f, err := hdf5.OpenFile(path, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cols, err := readHDFStrings(f, hdfColumnsDataset)
	if err != nil {
		return nil, fmt.Errorf("missing column manifest: %w", err)
	}
	typeNames, err := readHDFStrings(f, hdfTypesDataset)
	if err != nil {
		return nil, fmt.Errorf("missing type manifest: %w", err)
	}
	if len(typeNames) != len(cols) {
		return nil, fmt.Errorf("type manifest has %d entries for %d columns", len(typeNames), len(cols))
	}

	var rows [][]table.Value
	for c, name := range cols {
		values, err := readHDFColumn(f, name, typeNames[c])
		if err != nil {
			return nil, fmt.Errorf("failed to read column %q: %w", name, err)
		}
		if rows == nil {
			rows = make([][]table.Value, len(values))
			for i := range rows {
				rows[i] = make([]table.Value, len(cols))
			}
		}
		if len(values) != len(rows) {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", name, len(values), len(rows))
		}
		for i, v := range values {
			rows[i][c] = v
		}
	}
	return table.New(cols, rows)
}

func readHDFColumn(f *hdf5.File, name, typeName string) ([]table.Value, error) {
	dset, err := f.OpenDataset(name)
	if err != nil {
		return nil, err
	}
	defer dset.Close()
	dims, _, err := dset.Space().SimpleExtentDims()
	if err != nil {
		return nil, err
	}
	n := 0
	if len(dims) > 0 {
		n = int(dims[0])
	}

	values := make([]table.Value, n)
	switch typeName {
	case "float":
		data := make([]float64, n)
		if err := dset.Read(&data); err != nil {
			return nil, err
		}
		for i, v := range data {
			if math.IsNaN(v) {
				values[i] = table.Null()
			} else {
				values[i] = table.Float(v)
			}
		}
	case "int":
		data := make([]int64, n)
		if err := dset.Read(&data); err != nil {
			return nil, err
		}
		for i, v := range data {
			values[i] = table.Int(v)
		}
	case "bool":
		data := make([]int8, n)
		if err := dset.Read(&data); err != nil {
			return nil, err
		}
		for i, v := range data {
			values[i] = table.Bool(v != 0)
		}
	case "string":
		data := make([]string, n)
		if err := dset.Read(&data); err != nil {
			return nil, err
		}
		for i, v := range data {
			// Empty strings were written for nulls; genuine empty strings
			// are indistinguishable and come back as null.
			if v == "" {
				values[i] = table.Null()
			} else {
				values[i] = table.String(v)
			}
		}
	default:
		return nil, fmt.Errorf("unknown storage type %q", typeName)
	}
	return values, nil
}

func readHDFStrings(f *hdf5.File, name string) ([]string, error) {
	dset, err := f.OpenDataset(name)
	if err != nil {
		return nil, err
	}
	defer dset.Close()
	dims, _, err := dset.Space().SimpleExtentDims()
	if err != nil {
		return nil, err
	}
	n := 0
	if len(dims) > 0 {
		n = int(dims[0])
	}
	data := make([]string, n)
	if err := dset.Read(&data); err != nil {
		return nil, err
	}
	return data, nil
}
