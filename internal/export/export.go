// Package export writes entry readings to a spreadsheet.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrFormat is returned for an output path with an unsupported extension.
var ErrFormat = errors.New("unsupported export format")

// Columns is the header row of every export.
var Columns = []string{
	"timestamp", "operator", "lot", "dut_id",
	"field_id", "label", "component_type", "value", "unit",
}

const sheetName = "Sheet1"

// Row is one exported field value.
type Row struct {
	Timestamp     string
	Operator      string
	Lot           string
	DUTID         string
	FieldID       string
	Label         string
	ComponentType string
	Value         string
	Unit          string
}

func (r Row) cells() []string {
	return []string{
		r.Timestamp, r.Operator, r.Lot, r.DUTID,
		r.FieldID, r.Label, r.ComponentType, r.Value, r.Unit,
	}
}

// Format is the output format selected by file extension.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// FormatOf returns the format for path's extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrFormat, filepath.Ext(path))
	}
}

// WriteTable writes rows with a header to path. The format follows the
// extension: .xlsx or .csv.
func WriteTable(rows []Row, path string) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	switch format {
	case FormatCSV:
		return writeCSV(rows, path)
	default:
		return writeXLSX(rows, path)
	}
}

func writeXLSX(rows []Row, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetRow(sheetName, "A1", &Columns); err != nil {
		return err
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		cells := r.cells()
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return err
		}
	}
	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}
	return f.SaveAs(path)
}

func writeCSV(rows []Row, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(file)
	if err := w.Write(Columns); err != nil {
		file.Close()
		return err
	}
	for _, r := range rows {
		if err := w.Write(r.cells()); err != nil {
			file.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// ReadTable reads back an export written by WriteTable.
func ReadTable(path string) ([]Row, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	var records [][]string
	switch format {
	case FormatCSV:
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		r := csv.NewReader(file)
		r.FieldsPerRecord = -1
		if records, err = r.ReadAll(); err != nil {
			return nil, err
		}
	default:
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if records, err = f.GetRows(sheetName); err != nil {
			return nil, err
		}
	}

	if len(records) == 0 {
		return nil, nil
	}
	out := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		// Spreadsheet readers drop trailing empty cells.
		for len(rec) < len(Columns) {
			rec = append(rec, "")
		}
		out = append(out, Row{
			Timestamp: rec[0], Operator: rec[1], Lot: rec[2], DUTID: rec[3],
			FieldID: rec[4], Label: rec[5], ComponentType: rec[6], Value: rec[7], Unit: rec[8],
		})
	}
	return out, nil
}
