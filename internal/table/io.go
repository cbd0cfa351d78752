package table

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// Read loads a delimited or spreadsheet file into a table. The first row is
// the header. Supported extensions: .csv, .xlsx, .xls.
func Read(path string) (*Table, error) {
	switch ext(path) {
	case ".csv":
		return readCSV(path)
	case ".xlsx", ".xls":
		return readXLSX(path)
	default:
		return nil, eris.Errorf("table: unsupported file format %q (use CSV or Excel)", filepath.Ext(path))
	}
}

// Write persists a table. The format follows the file extension.
func Write(path string, t *Table) error {
	switch ext(path) {
	case ".csv":
		return writeCSV(path, t)
	case ".xlsx", ".xls":
		return writeXLSX(path, t)
	default:
		return eris.Errorf("table: unsupported file format %q (use CSV or Excel)", filepath.Ext(path))
	}
}

func ext(path string) string {
	return strings.ToLower(filepath.Ext(strings.TrimSuffix(path, ".tmp")))
}

func readCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "table: open csv")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // allow variable fields

	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "table: read csv")
	}
	if len(records) == 0 {
		return nil, eris.New("table: empty file")
	}

	return fromRows(records[0], records[1:]), nil
}

func writeCSV(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "table: create csv")
	}

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns); err != nil {
		f.Close()
		return eris.Wrap(err, "table: write csv header")
	}
	for _, r := range t.Rows {
		row := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			row[i] = r.Get(col)
		}
		if err := w.Write(row); err != nil {
			f.Close()
			return eris.Wrap(err, "table: write csv row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return eris.Wrap(err, "table: flush csv")
	}
	return eris.Wrap(f.Close(), "table: close csv")
}

func readXLSX(path string) (*Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "table: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("table: xlsx has no sheets")
	}
	sheet := f.Sheets[0]

	var header []string
	var rows [][]string
	for i, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		empty := true
		for j, cell := range row.Cells {
			cells[j] = cell.String()
			if strings.TrimSpace(cells[j]) != "" {
				empty = false
			}
		}
		if i == 0 {
			header = cells
			continue
		}
		if empty {
			continue
		}
		rows = append(rows, cells)
	}
	if header == nil {
		return nil, eris.New("table: empty file")
	}

	return fromRows(header, rows), nil
}

func writeXLSX(path string, t *Table) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sheet1")
	if err != nil {
		return eris.Wrap(err, "table: add sheet")
	}

	hdr := sheet.AddRow()
	for _, col := range t.Columns {
		hdr.AddCell().SetString(col)
	}
	for _, r := range t.Rows {
		row := sheet.AddRow()
		for _, col := range t.Columns {
			row.AddCell().SetString(r.Get(col))
		}
	}

	return eris.Wrap(f.Save(path), "table: save xlsx")
}

func fromRows(header []string, rows [][]string) *Table {
	t := New(header)
	for _, cells := range rows {
		r := NewRecord()
		for i, col := range header {
			if i < len(cells) {
				r.Set(col, cells[i])
			} else {
				r.Set(col, "")
			}
		}
		t.Append(r)
	}
	return t
}
