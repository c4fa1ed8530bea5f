package codec

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/nuh1233/DataPipeline/pkg/table"
)

// jsonCodec reads and writes line-oriented structured records. A .json file
// holds an array of objects (written with 2-space indentation); a .jsonl
// file, or any path written with WriteOptions.JSONLines set, holds one
// compact object per line. The column set on read is the union of all
// record keys, sorted for determinism (JSON objects carry no key order).
type jsonCodec struct{}

func (jsonCodec) read(ctx context.Context, path string) (*table.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var records []map[string]any
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		if err := dec.Decode(&records); err != nil {
			return nil, err
		}
	} else {
		sc := bufio.NewScanner(bytes.NewReader(data))
		sc.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			var rec map[string]any
			dec := json.NewDecoder(strings.NewReader(line))
			dec.UseNumber()
			if err := dec.Decode(&rec); err != nil {
				return nil, fmt.Errorf("invalid record on line %d: %w", len(records)+1, err)
			}
			records = append(records, rec)
		}
		if err := sc.Err(); err != nil {
			return nil, err
		}
	}

	seen := make(map[string]bool)
	var columns []string
	for _, rec := range records {
		for k := range rec {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
	}
	sort.Strings(columns)

	rows := make([][]table.Value, 0, len(records))
	for _, rec := range records {
		row := make([]table.Value, len(columns))
		for i, col := range columns {
			row[i] = jsonValue(rec[col])
		}
		rows = append(rows, row)
	}
	return table.New(columns, rows)
}

func jsonValue(v any) table.Value {
	switch vv := v.(type) {
	case nil:
		return table.Null()
	case bool:
		return table.Bool(vv)
	case string:
		return table.String(vv)
	case json.Number:
		if i, err := strconv.ParseInt(vv.String(), 10, 64); err == nil {
			return table.Int(i)
		}
		if f, err := vv.Float64(); err == nil {
			return table.Float(f)
		}
		return table.String(vv.String())
	case float64:
		return table.Float(vv)
	default:
		// Nested objects/arrays flatten to their JSON text.
		raw, err := json.Marshal(vv)
		if err != nil {
			return table.String(fmt.Sprint(vv))
		}
		return table.String(string(raw))
	}
}

func (jsonCodec) write(ctx context.Context, path string, t *table.Table, opts WriteOptions) error {
	lines := opts.JSONLines || strings.EqualFold(filepath.Ext(path), ".jsonl")

	var buf bytes.Buffer
	if lines {
		for i := 0; i < t.NumRows(); i++ {
			if err := writeJSONRecord(&buf, t, i, ""); err != nil {
				return err
			}
			buf.WriteByte('\n')
		}
	} else {
		buf.WriteByte('[')
		for i := 0; i < t.NumRows(); i++ {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString("\n  ")
			if err := writeJSONRecord(&buf, t, i, "  "); err != nil {
				return err
			}
		}
		if t.NumRows() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString("]\n")
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// writeJSONRecord renders one row as a JSON object, preserving column
// order (maps would marshal with sorted keys).
func writeJSONRecord(buf *bytes.Buffer, t *table.Table, row int, indent string) error {
	buf.WriteByte('{')
	for j, col := range t.Columns() {
		if j > 0 {
			buf.WriteByte(',')
		}
		if indent != "" {
			buf.WriteByte('\n')
			buf.WriteString(indent)
			buf.WriteString("  ")
		}
		key, err := json.Marshal(col)
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteString(": ")
		val, err := json.Marshal(t.Row(row)[j].Native())
		if err != nil {
			return err
		}
		buf.Write(val)
	}
	if indent != "" && t.NumCols() > 0 {
		buf.WriteByte('\n')
		buf.WriteString(indent)
	}
	buf.WriteByte('}')
	return nil
}
