package codec

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/nuh1233/DataPipeline/pkg/table"
)

// csvCodec reads and writes delimited text with a header row. Cell types
// are inferred on read; writing renders every value in its display form, so
// a csv round-trip re-infers types from text.
type csvCodec struct{}

func (csvCodec) read(ctx context.Context, path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("missing header row")
	}

	header := records[0]
	rows := make([][]table.Value, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make([]table.Value, len(header))
		for i := range header {
			if i < len(rec) {
				row[i] = table.Infer(rec[i])
			}
		}
		rows = append(rows, row)
	}
	return table.New(header, rows)
}

func (csvCodec) write(ctx context.Context, path string, t *table.Table, opts WriteOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns()); err != nil {
		f.Close()
		return err
	}
	rec := make([]string, t.NumCols())
	for i := 0; i < t.NumRows(); i++ {
		for j, v := range t.Row(i) {
			rec[j] = v.String()
		}
		if err := w.Write(rec); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
