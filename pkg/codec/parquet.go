package codec

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/nuh1233/DataPipeline/pkg/table"
)

// parquetCodec reads and writes columnar binary files via arrow's parquet
// support. Kinds are preserved exactly across a round-trip.
type parquetCodec struct{}

var parquetCompressions = map[string]compress.Compression{
	"":       compress.Codecs.Snappy,
	"snappy": compress.Codecs.Snappy,
	"gzip":   compress.Codecs.Gzip,
	"brotli": compress.Codecs.Brotli,
	"zstd":   compress.Codecs.Zstd,
	"none":   compress.Codecs.Uncompressed,
}

func (parquetCodec) read(ctx context.Context, path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	at, err := pqarrow.ReadTable(ctx, f,
		parquet.NewReaderProperties(memory.DefaultAllocator),
		pqarrow.ArrowReadProperties{},
		memory.DefaultAllocator,
	)
	if err != nil {
		return nil, err
	}
	defer at.Release()
	return tableFromArrow(at)
}

func (parquetCodec) write(ctx context.Context, path string, t *table.Table, opts WriteOptions) error {
	codec, ok := parquetCompressions[strings.ToLower(opts.Compression)]
	if !ok {
		return fmt.Errorf("%w: parquet compression %q (supported: snappy, gzip, brotli, zstd, none)",
			ErrUnsupportedOption, opts.Compression)
	}

	mem := memory.DefaultAllocator
	schema := arrowSchema(t)
	rec := buildArrowRecord(mem, schema, t)
	defer rec.Release()
	at := array.NewTableFromRecords(schema, []arrow.Record{rec})
	defer at.Release()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	chunkSize := int64(t.NumRows())
	if chunkSize == 0 {
		chunkSize = 1
	}
	props := parquet.NewWriterProperties(parquet.WithCompression(codec))
	if err := pqarrow.WriteTable(at, f, chunkSize, props, pqarrow.DefaultWriterProps()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
