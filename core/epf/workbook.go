package epf

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// WorkbookLayout describes how sheet columns map onto the tables.
type WorkbookLayout struct {
	// TargetColumn is the zero-based sheet column holding the target.
	// Column 0 is always the timestamp. Zero means 1.
	TargetColumn int
}

func (w WorkbookLayout) target() int {
	if w.TargetColumn <= 0 {
		return 1
	}
	return w.TargetColumn
}

// LoadWorkbook reads a spreadsheet where every sheet holds one region. The
// region id is the header of the first column, which holds the timestamps.
// All non-target columns become exogenous features in sheet order and all of
// them are kept in X. The result is a sorted panel with its static table.
func LoadWorkbook(path string, layout WorkbookLayout) (*Dataset, error) {
	parts, err := readWorkbook(path, layout)
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, &ParseError{Path: path, Err: errors.New("workbook has no data sheets")}
	}
	return assemble(parts), nil
}

// LoadWorkbookDir loads every *.xlsx file of dir, in name order, into a
// single panel.
func LoadWorkbookDir(dir string, layout WorkbookLayout) (*Dataset, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.xlsx"))
	if err != nil {
		return nil, &IOError{Op: "glob", Path: dir, Err: err}
	}
	slices.Sort(files)
	var parts []*Dataset
	for _, f := range files {
		p, err := readWorkbook(f, layout)
		if err != nil {
			return nil, err
		}
		parts = append(parts, p...)
	}
	if len(parts) == 0 {
		return nil, &IOError{Op: "load", Path: dir, Err: errors.New("no workbook data found")}
	}
	return assemble(parts), nil
}

func readWorkbook(path string, layout WorkbookLayout) ([]*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	var parts []*Dataset
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, &IOError{Op: "read sheet " + sheet, Path: path, Err: err}
		}
		if len(rows) == 0 {
			continue
		}
		ds, err := sheetDataset(rows, layout.target())
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				pe.Path = path + "#" + sheet
			}
			return nil, err
		}
		parts = append(parts, ds)
	}
	return parts, nil
}

func sheetDataset(rows [][]string, target int) (*Dataset, error) {
	header := rows[0]
	if len(header) == 0 || strings.TrimSpace(header[0]) == "" {
		return nil, &ParseError{Line: 1, Err: errors.New("first header cell must name the region")}
	}
	if target >= len(header) {
		return nil, &ParseError{Line: 1, Err: fmt.Errorf("target column %d out of range (%d columns)", target, len(header))}
	}
	region := strings.TrimSpace(header[0])
	nExo := len(header) - 2

	records := make([]rawRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		line := i + 2
		cell := func(c int) string {
			if c < len(row) {
				return row[c]
			}
			return ""
		}

		ts, err := parseSheetTimestamp(cell(0))
		if err != nil {
			return nil, &ParseError{Line: line, Column: ColTimestamp, Value: cell(0), Err: err}
		}
		y, err := parseFloat(cell(target))
		if err != nil {
			return nil, &ParseError{Line: line, Column: ColTarget, Value: cell(target), Err: err}
		}
		exo := make([]float64, 0, nExo)
		for c := 1; c < len(header); c++ {
			if c == target {
				continue
			}
			v, err := parseFloat(cell(c))
			if err != nil {
				return nil, &ParseError{Line: line, Column: ExogenousColumn(len(exo) + 1), Value: cell(c), Err: err}
			}
			exo = append(exo, v)
		}
		records = append(records, rawRecord{ts: ts, target: y, exogenous: exo})
	}

	y, x := buildTables(region, records, nExo, -1)
	return &Dataset{Y: y, X: x}, nil
}

// parseSheetTimestamp accepts text timestamps and Excel date serials.
func parseSheetTimestamp(s string) (time.Time, error) {
	if t, err := parseTimestamp(s); err == nil {
		return t, nil
	}
	serial, err := parseFloat(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognised timestamp format")
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC().Round(time.Second), nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
