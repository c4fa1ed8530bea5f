package format

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// ErrUnsupportedFormat is returned when a file extension or format name does
// not map to a known table format.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Format identifies a concrete on-disk table encoding.
type Format string

const (
	CSV     Format = "csv"
	Parquet Format = "parquet"
	JSON    Format = "json"
	Excel   Format = "excel"
	Feather Format = "feather"
	HDF     Format = "hdf"
)

// extensionFormats maps lowercase file extensions (without the dot) to their
// canonical format. Many-to-one: aliases like pq/jsonl/ftr resolve to the
// same format as their primary extension.
var extensionFormats = map[string]Format{
	"csv":     CSV,
	"parquet": Parquet,
	"pq":      Parquet,
	"json":    JSON,
	"jsonl":   JSON,
	"xlsx":    Excel,
	"xls":     Excel,
	"feather": Feather,
	"ftr":     Feather,
	"h5":      HDF,
	"hdf":     HDF,
	"hdf5":    HDF,
}

func (f Format) String() string {
	return string(f)
}

// Detect resolves a path's extension to a Format. The lookup is
// case-insensitive and ignores the leading dot.
func Detect(path string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	f, ok := extensionFormats[ext]
	if !ok {
		return "", fmt.Errorf("%w: cannot detect format for extension %q (supported extensions: %s)",
			ErrUnsupportedFormat, ext, strings.Join(SupportedExtensions(), ", "))
	}
	return f, nil
}

// Parse resolves an explicit format name, accepting both canonical names
// (csv, parquet, json, excel, feather, hdf) and the extension aliases.
func Parse(name string) (Format, error) {
	s := strings.ToLower(strings.TrimSpace(name))
	switch Format(s) {
	case CSV, Parquet, JSON, Excel, Feather, HDF:
		return Format(s), nil
	}
	if f, ok := extensionFormats[s]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: unknown format %q (supported formats: csv, parquet, json, excel, feather, hdf)",
		ErrUnsupportedFormat, name)
}

// SupportedExtensions returns the recognized extensions in sorted order.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(extensionFormats))
	for ext := range extensionFormats {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
