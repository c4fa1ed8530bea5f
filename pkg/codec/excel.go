package codec

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/nuh1233/DataPipeline/pkg/table"
)

// excelCodec reads and writes the first worksheet of a spreadsheet with a
// header row. Spreadsheet cells come back as text, so types are re-inferred
// on read, like csv.
//
// Only the OOXML container (.xlsx) is supported; the legacy binary .xls
// layout is a different format entirely and is rejected up front.
type excelCodec struct{}

func checkLegacyExcel(path string) error {
	if strings.EqualFold(filepath.Ext(path), ".xls") {
		return fmt.Errorf("%w: legacy .xls workbooks are not supported, use .xlsx", ErrUnsupportedOption)
	}
	return nil
}

func (excelCodec) read(ctx context.Context, path string) (*table.Table, error) {
	if err := checkLegacyExcel(path); err != nil {
		return nil, err
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("missing header row")
	}

	header := records[0]
	rows := make([][]table.Value, 0, len(records)-1)
	for _, rec := range records[1:] {
		// GetRows trims trailing empty cells; pad back to the header width.
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

func (excelCodec) write(ctx context.Context, path string, t *table.Table, opts WriteOptions) error {
	if err := checkLegacyExcel(path); err != nil {
		return err
	}
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := make([]any, t.NumCols())
	for i, c := range t.Columns() {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i := 0; i < t.NumRows(); i++ {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		vals := make([]any, t.NumCols())
		for j, v := range t.Row(i) {
			vals[j] = v.Native()
		}
		if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}
