package codec

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/nuh1233/DataPipeline/pkg/table"
)

// featherCodec reads and writes the arrow IPC file format (feather v2).
// Kinds are preserved exactly across a round-trip.
type featherCodec struct{}

func (featherCodec) read(ctx context.Context, path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := ipc.NewFileReader(f, ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var recs []arrow.Record
	defer func() {
		for _, rec := range recs {
			rec.Release()
		}
	}()
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rec.Retain()
		recs = append(recs, rec)
	}

	if len(recs) == 0 {
		columns := make([]string, 0, len(r.Schema().Fields()))
		for _, f := range r.Schema().Fields() {
			columns = append(columns, f.Name)
		}
		return table.New(columns, nil)
	}
	at := array.NewTableFromRecords(r.Schema(), recs)
	defer at.Release()
	return tableFromArrow(at)
}

func (featherCodec) write(ctx context.Context, path string, t *table.Table, opts WriteOptions) error {
	mem := memory.DefaultAllocator
	schema := arrowSchema(t)
	rec := buildArrowRecord(mem, schema, t)
	defer rec.Release()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w, err := ipc.NewFileWriter(f, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	if err != nil {
		f.Close()
		return err
	}
	if err := w.Write(rec); err != nil {
		w.Close()
		f.Close()
		return err
	}
	if err := w.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
