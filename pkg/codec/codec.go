// Package codec reads and writes tables in the supported on-disk formats.
// Each format has a reader/writer pair behind a common interface; Load and
// Save pick the codec from an explicit format or from the path's extension.
package codec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nuh1233/DataPipeline/pkg/format"
	"github.com/nuh1233/DataPipeline/pkg/table"
)

var (
	// ErrFileNotFound is returned by Load when the input path does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrUnsupportedOption is returned by Save for invalid format/option
	// combinations, e.g. a compression codec on a format that has none.
	ErrUnsupportedOption = errors.New("unsupported option")
)

// WriteOptions carries format-specific save knobs.
type WriteOptions struct {
	// Compression selects the parquet compression codec (snappy, gzip,
	// brotli, zstd, none). Empty means the format default. Only valid for
	// parquet output.
	Compression string

	// JSONLines forces one-object-per-line output regardless of the path's
	// extension. Only valid for json output; a .jsonl extension implies it.
	JSONLines bool
}

type codec interface {
	read(ctx context.Context, path string) (*table.Table, error)
	write(ctx context.Context, path string, t *table.Table, opts WriteOptions) error
}

var codecs = map[format.Format]codec{
	format.CSV:     csvCodec{},
	format.JSON:    jsonCodec{},
	format.Parquet: parquetCodec{},
	format.Feather: featherCodec{},
	format.Excel:   excelCodec{},
	format.HDF:     hdfCodec{},
}

// Load reads the table at path. An empty format auto-detects from the
// path's extension.
func Load(ctx context.Context, log *slog.Logger, path string, f format.Format) (*table.Table, error) {
	if f == "" {
		var err error
		f, err = format.Detect(path)
		if err != nil {
			return nil, err
		}
		log.Debug("auto-detected input format", "format", f)
	}
	c, ok := codecs[f]
	if !ok {
		return nil, fmt.Errorf("%w: %q", format.ErrUnsupportedFormat, f)
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	log.Info("loading data", "path", path, "format", f)
	t, err := c.read(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s file %s: %w", f, path, err)
	}
	log.Info("loaded table", "rows", t.NumRows(), "columns", t.NumCols())
	return t, nil
}

// Save writes the table to path, creating missing parent directories. An
// empty format auto-detects from the path's extension.
func Save(ctx context.Context, log *slog.Logger, t *table.Table, path string, f format.Format, opts WriteOptions) error {
	if f == "" {
		var err error
		f, err = format.Detect(path)
		if err != nil {
			return err
		}
		log.Debug("auto-detected output format", "format", f)
	}
	c, ok := codecs[f]
	if !ok {
		return fmt.Errorf("%w: %q", format.ErrUnsupportedFormat, f)
	}
	if opts.Compression != "" && f != format.Parquet {
		return fmt.Errorf("%w: compression is only supported for parquet output, not %s", ErrUnsupportedOption, f)
	}
	if opts.JSONLines && f != format.JSON {
		return fmt.Errorf("%w: line-oriented output is only supported for json output, not %s", ErrUnsupportedOption, f)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}

	log.Info("saving data", "path", path, "format", f)
	if err := c.write(ctx, path, t, opts); err != nil {
		return fmt.Errorf("failed to write %s file %s: %w", f, path, err)
	}

	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat output %s: %w", path, err)
	}
	log.Info("saved table",
		"path", path,
		"size_mb", fmt.Sprintf("%.2f", float64(fi.Size())/(1024*1024)),
		"rows", t.NumRows(),
		"columns", t.NumCols(),
	)
	return nil
}
